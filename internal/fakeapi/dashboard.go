package fakeapi

import (
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/pkg/response"
)

// window returns the start of the current and the previous period
func window(period domain.Period, now time.Time) (start, prevStart time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case domain.PeriodToday:
		return day, day.AddDate(0, 0, -1)
	case domain.PeriodWeek:
		return day.AddDate(0, 0, -6), day.AddDate(0, 0, -13)
	case domain.PeriodYear:
		return day.AddDate(-1, 0, 1), day.AddDate(-2, 0, 1)
	default:
		return day.AddDate(0, -1, 1), day.AddDate(0, -2, 1)
	}
}

func periodParam(c *gin.Context) domain.Period {
	if p := domain.Period(c.Query("period")); p != "" {
		return p
	}
	return domain.PeriodMonth
}

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 1 {
		return 10
	}
	if n > maxPageLimit {
		return maxPageLimit
	}
	return n
}

// counted reports whether an order contributes to revenue
func counted(o *domain.Order) bool {
	return !o.IsCancelled() && o.PaymentStatus != domain.PaymentRefunded
}

func change(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

// GET /api/dashboard/stats
func (s *Server) dashboardStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, prevStart := window(periodParam(c), s.now())

	var stats domain.DashboardStats
	var prevRevenue, prevOrders float64
	customers := map[string]bool{}
	for _, o := range s.orders.all() {
		customers[o.Customer.Email] = true
		if o.IsPending() {
			stats.PendingOrders++
		}
		switch {
		case !o.CreatedAt.Before(start):
			stats.TotalOrders++
			if counted(o) {
				stats.TotalRevenue += o.Total
			}
		case !o.CreatedAt.Before(prevStart):
			prevOrders++
			if counted(o) {
				prevRevenue += o.Total
			}
		}
	}
	stats.RevenueChange = change(stats.TotalRevenue, prevRevenue)
	stats.OrdersChange = change(float64(stats.TotalOrders), prevOrders)
	stats.TotalCustomers = len(customers)

	for _, p := range s.products.all() {
		stats.TotalProducts++
		if p.IsLowStock() {
			stats.LowStockProducts++
		}
	}
	for _, r := range s.reviews.all() {
		stats.TotalReviews++
		if r.IsPending() {
			stats.PendingReviews++
		}
	}
	response.Success(c, stats)
}

// GET /api/dashboard/recent-orders
func (s *Server) recentOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.orders.all()
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if n := limitParam(c); len(orders) > n {
		orders = orders[:n]
	}

	items := make([]domain.RecentOrder, 0, len(orders))
	for _, o := range orders {
		items = append(items, domain.RecentOrder{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Customer:    domain.Contact{Name: o.Customer.Name, Email: o.Customer.Email},
			Total:       o.Total,
			Status:      o.Status,
			CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		})
	}
	response.Success(c, items)
}

// GET /api/dashboard/top-products
func (s *Server) topProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, _ := window(periodParam(c), s.now())
	totals := map[string]*domain.TopProduct{}
	for _, o := range s.orders.all() {
		if o.CreatedAt.Before(start) || !counted(o) {
			continue
		}
		for _, it := range o.Items {
			id := it.Product.ID()
			tp, ok := totals[id]
			if !ok {
				tp = &domain.TopProduct{Product: domain.TopProductRef{ID: id, Name: it.Name, Images: []domain.ProductImage{}}}
				if p, found := s.products.get(id); found {
					tp.Product.Name = p.Name
					tp.Product.Images = p.Images
				}
				totals[id] = tp
			}
			tp.TotalSold += it.Quantity
			tp.Revenue += it.Total
		}
	}

	items := make([]domain.TopProduct, 0, len(totals))
	for _, tp := range totals {
		items = append(items, *tp)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].TotalSold != items[j].TotalSold {
			return items[i].TotalSold > items[j].TotalSold
		}
		return items[i].Product.ID < items[j].Product.ID
	})
	if n := limitParam(c); len(items) > n {
		items = items[:n]
	}
	response.Success(c, items)
}

func bucket(t time.Time, groupBy domain.GroupBy) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch groupBy {
	case domain.GroupByWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.GroupByMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

func advance(t time.Time, groupBy domain.GroupBy) time.Time {
	switch groupBy {
	case domain.GroupByWeek:
		return t.AddDate(0, 0, 7)
	case domain.GroupByMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func label(t time.Time, groupBy domain.GroupBy) string {
	if groupBy == domain.GroupByMonth {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

// GET /api/dashboard/sales-data
func (s *Server) salesData(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groupBy := domain.GroupBy(c.Query("groupBy"))
	if groupBy == "" {
		groupBy = domain.GroupByDay
	}
	now := s.now()
	start, _ := window(periodParam(c), now)

	data := domain.SalesData{Labels: []string{}, Revenue: []float64{}, Orders: []int{}}
	index := map[time.Time]int{}
	for t := bucket(start, groupBy); !t.After(now); t = advance(t, groupBy) {
		index[t] = len(data.Labels)
		data.Labels = append(data.Labels, label(t, groupBy))
		data.Revenue = append(data.Revenue, 0)
		data.Orders = append(data.Orders, 0)
	}

	for _, o := range s.orders.all() {
		if o.CreatedAt.Before(start) || !counted(o) {
			continue
		}
		i, ok := index[bucket(o.CreatedAt, groupBy)]
		if !ok {
			continue
		}
		data.Revenue[i] += o.Total
		data.Orders[i]++
	}
	response.Success(c, data)
}
