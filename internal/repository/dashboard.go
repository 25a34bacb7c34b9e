package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

const dashboardBase = "/api/dashboard"

// Dashboard serves the home screen aggregates
type Dashboard struct {
	client    *transport.Client
	endpoints resource.Endpoints
}

func NewDashboard(c *transport.Client) *Dashboard {
	return &Dashboard{client: c, endpoints: resource.Endpoints{Base: dashboardBase}}
}

func (r *Dashboard) Stats(ctx context.Context, period domain.Period) (*domain.DashboardStats, error) {
	if period == "" {
		period = domain.PeriodMonth
	}
	return resource.Call[domain.DashboardStats](ctx, r.client, http.MethodGet, r.endpoints.Sub("stats"), nil,
		transport.WithQuery(url.Values{"period": {string(period)}}))
}

func (r *Dashboard) RecentOrders(ctx context.Context, limit int) ([]domain.RecentOrder, error) {
	if limit <= 0 {
		limit = 10
	}
	data, err := resource.Call[[]domain.RecentOrder](ctx, r.client, http.MethodGet, r.endpoints.Sub("recent-orders"), nil,
		transport.WithQuery(url.Values{"limit": {strconv.Itoa(limit)}}))
	if err != nil {
		return nil, err
	}
	return *data, nil
}

func (r *Dashboard) TopProducts(ctx context.Context, period domain.Period, limit int) ([]domain.TopProduct, error) {
	if period == "" {
		period = domain.PeriodMonth
	}
	if limit <= 0 {
		limit = 10
	}
	data, err := resource.Call[[]domain.TopProduct](ctx, r.client, http.MethodGet, r.endpoints.Sub("top-products"), nil,
		transport.WithQuery(url.Values{"period": {string(period)}, "limit": {strconv.Itoa(limit)}}))
	if err != nil {
		return nil, err
	}
	return *data, nil
}

func (r *Dashboard) SalesData(ctx context.Context, period domain.Period, groupBy domain.GroupBy) (*domain.SalesData, error) {
	if period == "" {
		period = domain.PeriodMonth
	}
	if groupBy == "" {
		groupBy = domain.GroupByDay
	}
	return resource.Call[domain.SalesData](ctx, r.client, http.MethodGet, r.endpoints.Sub("sales-data"), nil,
		transport.WithQuery(url.Values{"period": {string(period)}, "groupBy": {string(groupBy)}}))
}
