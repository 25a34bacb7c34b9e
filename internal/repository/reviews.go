package repository

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

const reviewsBase = "/api/reviews"

// Reviews are customer product reviews awaiting or past moderation
type Reviews struct {
	resource.Collection[domain.Review]

	client    *transport.Client
	endpoints resource.Endpoints
}

func NewReviews(c *transport.Client) *Reviews {
	return &Reviews{
		Collection: resource.NewCollection[domain.Review](c, reviewsBase),
		client:     c,
		endpoints:  resource.Endpoints{Base: reviewsBase},
	}
}

func (r *Reviews) UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) (*domain.Review, error) {
	if id == "" {
		return nil, resource.ErrEmptyID
	}
	return resource.Call[domain.Review](ctx, r.client, http.MethodPut, r.endpoints.Sub(id, "status"), map[string]any{
		"status": status,
	})
}

func (r *Reviews) BulkUpdateStatus(ctx context.Context, ids []string, status domain.ReviewStatus) error {
	return resource.Exec(ctx, r.client, http.MethodPut, r.endpoints.Sub("bulk", "status"), map[string]any{
		"reviewIds": ids,
		"status":    status,
	})
}

func (r *Reviews) Delete(ctx context.Context, id string) error {
	if id == "" {
		return resource.ErrEmptyID
	}
	return resource.Exec(ctx, r.client, http.MethodDelete, r.endpoints.Item(id), nil)
}

type pendingCountBody struct {
	Pagination *resource.Pagination `json:"pagination"`
	Data       json.RawMessage      `json:"data"`
}

type pendingCountData struct {
	Total      int `json:"total"`
	Pagination struct {
		TotalItems int `json:"totalItems"`
	} `json:"pagination"`
}

// PendingCount returns how many reviews await moderation. The count is read
// from the pagination total, falling back to a total inside data.
func (r *Reviews) PendingCount(ctx context.Context) (int, error) {
	q := resource.Query{Limit: 1}.With("status", string(domain.ReviewPending))

	var body pendingCountBody
	if err := r.client.Get(ctx, r.endpoints.Base, &body, transport.WithQuery(q.Values())); err != nil {
		return 0, err
	}
	if body.Pagination != nil && body.Pagination.Total > 0 {
		return body.Pagination.Total, nil
	}

	var data pendingCountData
	if len(body.Data) > 0 && body.Data[0] == '{' && json.Unmarshal(body.Data, &data) == nil {
		if data.Pagination.TotalItems > 0 {
			return data.Pagination.TotalItems, nil
		}
		return data.Total, nil
	}
	return 0, nil
}
