package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/pkg/response"
)

type bulkStatusRequest struct {
	ProductIDs []string `json:"productIds"`
	ReviewIDs  []string `json:"reviewIds"`
	Status     string   `json:"status" binding:"required"`
}

// populated returns a copy of p with its category expanded
func (s *Server) populated(p *domain.Product) domain.Product {
	out := *p
	if cat, ok := s.categories.get(p.CategoryID()); ok {
		c := *cat
		out.Category = domain.RefTo(c.ID, &c)
	}
	return out
}

func productLess(key string) func(a, b *domain.Product) bool {
	switch key {
	case "name":
		return func(a, b *domain.Product) bool { return a.Name < b.Name }
	case "price":
		return func(a, b *domain.Product) bool { return a.ActivePrice() < b.ActivePrice() }
	case "stock":
		return func(a, b *domain.Product) bool { return a.Stock < b.Stock }
	default:
		return func(a, b *domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

// GET /api/products
func (s *Server) listProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := c.Query("search")
	status := c.Query("status")
	category := c.Query("category")

	var matched []*domain.Product
	for _, p := range s.products.all() {
		if search != "" && !containsFold(p.Name, search) && !containsFold(p.SKU, search) {
			continue
		}
		if status != "" && string(p.Status) != status {
			continue
		}
		if category != "" && p.CategoryID() != category {
			continue
		}
		matched = append(matched, p)
	}

	less := productLess(c.Query("sortBy"))
	desc := descending(c)
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	page, p := paginate(c, matched)
	items := make([]domain.Product, 0, len(page))
	for _, row := range page {
		items = append(items, s.populated(row))
	}
	response.Paginated(c, items, p)
}

// GET /api/products/:id
func (s *Server) getProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Product not found")
		return
	}
	response.Success(c, s.populated(p))
}

func (s *Server) validateProduct(c *gin.Context, p *domain.Product) bool {
	switch {
	case strings.TrimSpace(p.Name) == "":
		response.BadRequest(c, "Product name is required")
	case p.Price < 0:
		response.BadRequest(c, "Price must not be negative")
	case p.SalePrice != nil && *p.SalePrice > p.Price:
		response.BadRequest(c, "Sale price must not exceed price")
	case p.Status != "" && !p.Status.Valid():
		response.BadRequest(c, fmt.Sprintf("Invalid product status %q", p.Status))
	case p.CategoryID() != "":
		if _, ok := s.categories.get(p.CategoryID()); !ok {
			response.BadRequest(c, "Category does not exist")
			return false
		}
		return true
	default:
		return true
	}
	return false
}

func (s *Server) skuTaken(sku, exceptID string) bool {
	for _, p := range s.products.all() {
		if p.ID != exceptID && strings.EqualFold(p.SKU, sku) {
			return true
		}
	}
	return false
}

func (s *Server) nextSKU() string {
	for {
		s.skuSeq++
		sku := fmt.Sprintf("GN-%05d", s.skuSeq)
		if !s.skuTaken(sku, "") {
			return sku
		}
	}
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// POST /api/products
func (s *Server) createProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.validateProduct(c, &p) {
		return
	}
	if p.SKU == "" {
		p.SKU = s.nextSKU()
	} else if s.skuTaken(p.SKU, "") {
		response.Error(c, http.StatusConflict, "DUPLICATE_SKU", "SKU already exists")
		return
	}
	if p.Status == "" {
		p.Status = domain.ProductDraft
	}
	if p.Slug == "" {
		p.Slug = slugify(p.Name)
	}
	if p.Images == nil {
		p.Images = []domain.ProductImage{}
	}

	now := s.now()
	p.ID = newID()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products.put(p.ID, &p)

	response.Created(c, s.populated(&p))
}

// PUT /api/products/:id
func (s *Server) updateProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Product not found")
		return
	}

	// decode the patch over a copy so absent fields keep their value
	next := *existing
	if err := c.ShouldBindJSON(&next); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !s.validateProduct(c, &next) {
		return
	}
	if s.skuTaken(next.SKU, existing.ID) {
		response.Error(c, http.StatusConflict, "DUPLICATE_SKU", "SKU already exists")
		return
	}
	next.Record = existing.Record
	next.UpdatedAt = s.now()
	s.products.put(next.ID, &next)

	response.Success(c, s.populated(&next))
}

// DELETE /api/products/:id
func (s *Server) deleteProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.products.remove(c.Param("id")) {
		response.NotFound(c, "Product not found")
		return
	}
	response.SuccessMessage(c, "Product deleted successfully", nil)
}

// GET /api/products/generate-sku
func (s *Server) generateSKU(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.Success(c, gin.H{"sku": s.nextSKU()})
}

// GET /api/products/low-stock
func (s *Server) lowStock(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []domain.Product{}
	for _, p := range s.products.all() {
		if p.IsLowStock() {
			items = append(items, s.populated(p))
		}
	}
	response.Success(c, items)
}

// PUT /api/products/bulk/status
func (s *Server) bulkProductStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	status := domain.ProductStatus(req.Status)
	if !status.Valid() {
		response.BadRequest(c, fmt.Sprintf("Invalid product status %q", req.Status))
		return
	}
	if len(req.ProductIDs) == 0 {
		response.BadRequest(c, "productIds must not be empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	now := s.now()
	for _, id := range req.ProductIDs {
		if p, ok := s.products.get(id); ok {
			p.Status = status
			p.UpdatedAt = now
			updated++
		}
	}
	response.SuccessMessage(c, fmt.Sprintf("%d products updated", updated), gin.H{"modifiedCount": updated})
}
