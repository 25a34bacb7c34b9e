package fakeapi

import (
	"fmt"
	"time"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// seed fills the stores with a small catalogue. Callers hold no lock.
func (s *Server) seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stamp := func(r *domain.Record, age time.Duration) {
		r.ID = newID()
		r.CreatedAt = now.Add(-age)
		r.UpdatedAt = r.CreatedAt
	}

	categories := []*domain.Category{
		{Name: "Skincare", Slug: "skincare", DisplayOrder: 1},
		{Name: "Jewelry", Slug: "jewelry", DisplayOrder: 2},
		{Name: "Gift Sets", Slug: "gift-sets", DisplayOrder: 3},
	}
	for i, c := range categories {
		stamp(&c.Record, time.Duration(90-i)*24*time.Hour)
		s.categories.put(c.ID, c)
	}
	rings := &domain.Category{Name: "Rings", Slug: "rings", DisplayOrder: 4}
	stamp(&rings.Record, 80*24*time.Hour)
	parent := domain.RefID[domain.Category](categories[1].ID)
	rings.Parent = &parent
	s.categories.put(rings.ID, rings)

	type seedProduct struct {
		name     string
		price    float64
		sale     *float64
		stock    int
		category *domain.Category
		status   domain.ProductStatus
	}
	seeds := []seedProduct{
		{"Rose Hip Facial Oil", 890, nil, 42, categories[0], domain.ProductActive},
		{"Vitamin C Brightening Serum", 1290, ptr(990.0), 18, categories[0], domain.ProductActive},
		{"Aloe Soothing Gel", 350, nil, 3, categories[0], domain.ProductActive},
		{"Niacinamide Toner", 550, nil, 0, categories[0], domain.ProductInactive},
		{"Night Repair Cream", 1490, ptr(1290.0), 25, categories[0], domain.ProductActive},
		{"Moonstone Pendant", 3200, nil, 6, categories[1], domain.ProductActive},
		{"Silver Leaf Earrings", 1800, ptr(1500.0), 12, categories[1], domain.ProductActive},
		{"Rose Quartz Ring", 2500, nil, 4, rings, domain.ProductActive},
		{"Glow Starter Set", 1990, nil, 20, categories[2], domain.ProductActive},
		{"Bridal Glow Box", 4500, nil, 2, categories[2], domain.ProductDraft},
		{"Lavender Body Mist", 420, nil, 55, categories[0], domain.ProductActive},
		{"Gold Vermeil Bangle", 5200, nil, 8, categories[1], domain.ProductActive},
	}
	products := make([]*domain.Product, 0, len(seeds))
	for i, sp := range seeds {
		p := &domain.Product{
			Name:              sp.name,
			Slug:              slugify(sp.name),
			Description:       sp.name + " from the GlowNatura collection.",
			SKU:               s.nextSKU(),
			Price:             sp.price,
			SalePrice:         sp.sale,
			Stock:             sp.stock,
			LowStockThreshold: 5,
			Category:          domain.RefID[domain.Category](sp.category.ID),
			Status:            sp.status,
			Featured:          i%4 == 0,
		}
		stamp(&p.Record, time.Duration(60-i)*24*time.Hour)
		img := domain.ProductImage{
			URL:       fmt.Sprintf("%s/%s/%s.jpg", cdnBase, p.ID, p.Slug),
			PublicID:  "glownatura/" + p.ID,
			Alt:       p.Name,
			IsDefault: true,
		}
		p.Images = []domain.ProductImage{img}
		s.products.put(p.ID, p)
		products = append(products, p)

		if i < 3 {
			m := &domain.Media{
				CloudinaryURL: img.URL,
				PublicID:      img.PublicID,
				Filename:      p.Slug + ".jpg",
				Mimetype:      "image/jpeg",
				Size:          120_000,
				Width:         1200,
				Height:        1200,
				Alt:           p.Name,
			}
			stamp(&m.Record, time.Duration(60-i)*24*time.Hour)
			s.media.put(m.ID, m)
		}
	}
	orphan := &domain.Media{
		CloudinaryURL: cdnBase + "/unused/banner-old.png",
		PublicID:      "glownatura/unused",
		Filename:      "banner-old.png",
		Mimetype:      "image/png",
		Size:          300_000,
	}
	stamp(&orphan.Record, 100*24*time.Hour)
	s.media.put(orphan.ID, orphan)

	customers := []domain.Customer{
		{Name: "Anong Srisuk", Email: "anong@example.test", Phone: "0812345678",
			Address: domain.Address{Street: "12 Sukhumvit Rd", City: "Bangkok", State: "Bangkok", Country: "TH", PostalCode: "10110"}},
		{Name: "Mali Chaiyo", Email: "mali@example.test", Phone: "0823456789",
			Address: domain.Address{Street: "8 Nimman Rd", City: "Chiang Mai", State: "Chiang Mai", Country: "TH", PostalCode: "50200"}},
		{Name: "Dao Kittisak", Email: "dao@example.test", Phone: "0834567890",
			Address: domain.Address{Street: "3 Beach Rd", City: "Phuket", State: "Phuket", Country: "TH", PostalCode: "83000"}},
	}

	type seedOrder struct {
		customer int
		lines    map[int]int
		status   domain.OrderStatus
		payment  domain.PaymentStatus
		age      time.Duration
		tracking string
	}
	orderSeeds := []seedOrder{
		{0, map[int]int{0: 1, 2: 2}, domain.OrderPending, domain.PaymentPending, 2 * time.Hour, ""},
		{1, map[int]int{1: 1}, domain.OrderConfirmed, domain.PaymentPaid, 20 * time.Hour, ""},
		{2, map[int]int{5: 1}, domain.OrderProcessing, domain.PaymentPaid, 3 * 24 * time.Hour, ""},
		{0, map[int]int{6: 1, 10: 1}, domain.OrderShipped, domain.PaymentPaid, 5 * 24 * time.Hour, "TH0001234567"},
		{1, map[int]int{8: 2}, domain.OrderDelivered, domain.PaymentPaid, 12 * 24 * time.Hour, "TH0007654321"},
		{2, map[int]int{7: 1}, domain.OrderCancelled, domain.PaymentPending, 15 * 24 * time.Hour, ""},
		{0, map[int]int{4: 1, 0: 1}, domain.OrderDelivered, domain.PaymentPaid, 40 * 24 * time.Hour, "TH0001111111"},
		{1, map[int]int{11: 1}, domain.OrderPending, domain.PaymentPending, 30 * time.Minute, ""},
	}
	for _, so := range orderSeeds {
		o := &domain.Order{
			Customer:       customers[so.customer],
			Status:         so.status,
			PaymentStatus:  so.payment,
			PaymentMethod:  "bank_transfer",
			ShippingCost:   50,
			TrackingNumber: so.tracking,
		}
		for idx := 0; idx < len(products); idx++ {
			qty, ok := so.lines[idx]
			if !ok {
				continue
			}
			p := products[idx]
			line := domain.OrderItem{
				Product:  domain.RefID[domain.Product](p.ID),
				Name:     p.Name,
				SKU:      p.SKU,
				Price:    p.ActivePrice(),
				Quantity: qty,
				Total:    p.ActivePrice() * float64(qty),
				Image:    p.Images[0].URL,
			}
			o.Items = append(o.Items, line)
			o.Subtotal += line.Total
		}
		o.Total = o.Subtotal + o.ShippingCost
		if so.status == domain.OrderCancelled {
			o.CancelReason = "Customer request"
		}
		stamp(&o.Record, so.age)
		s.orderSeq++
		o.OrderNumber = fmt.Sprintf("GN%s%04d", o.CreatedAt.Format("060102"), s.orderSeq)
		s.orders.put(o.ID, o)
	}

	type seedReview struct {
		product  int
		customer int
		rating   int
		comment  string
		status   domain.ReviewStatus
	}
	reviewSeeds := []seedReview{
		{0, 0, 5, "My skin has never looked better.", domain.ReviewApproved},
		{1, 1, 4, "Bright and light, smells a little citrusy.", domain.ReviewApproved},
		{5, 2, 5, "Beautiful pendant, fast shipping.", domain.ReviewPending},
		{2, 0, 3, "Works but the bottle leaked.", domain.ReviewPending},
		{8, 1, 1, "Buy followers at spam.example", domain.ReviewRejected},
		{6, 2, 4, "Lovely earrings for daily wear.", domain.ReviewPending},
	}
	for i, sr := range reviewSeeds {
		r := &domain.Review{
			Product:  domain.RefID[domain.Product](products[sr.product].ID),
			User:     domain.Contact{Name: customers[sr.customer].Name, Email: customers[sr.customer].Email},
			Rating:   sr.rating,
			Comment:  sr.comment,
			Status:   sr.status,
			Verified: sr.status != domain.ReviewRejected,
		}
		stamp(&r.Record, time.Duration(10-i)*24*time.Hour)
		s.reviews.put(r.ID, r)
	}
}
