package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

const (
	mediaBase = "/api/media"
	// UploadField is the multipart field the media endpoint reads
	UploadField = "image"
)

// Media is the uploaded asset library
type Media struct {
	resource.Collection[domain.Media]

	client    *transport.Client
	endpoints resource.Endpoints
}

func NewMedia(c *transport.Client) *Media {
	return &Media{
		Collection: resource.NewCollection[domain.Media](c, mediaBase),
		client:     c,
		endpoints:  resource.Endpoints{Base: mediaBase},
	}
}

type mediaListBody struct {
	Data       json.RawMessage     `json:"data"`
	Pagination resource.Pagination `json:"pagination"`
}

type mediaListObject struct {
	Media      []domain.Media      `json:"media"`
	Pagination resource.Pagination `json:"pagination"`
}

// List fetches one page of assets. The endpoint returns either a plain array
// in data or an object holding media and its own pagination.
func (r *Media) List(ctx context.Context, q resource.Query) (*resource.Page[domain.Media], error) {
	var body mediaListBody
	if err := r.client.Get(ctx, r.endpoints.Base, &body, transport.WithQuery(q.Values())); err != nil {
		return nil, err
	}

	page := &resource.Page[domain.Media]{Items: []domain.Media{}, Pagination: body.Pagination}
	if len(body.Data) == 0 || string(body.Data) == "null" {
		return page, nil
	}

	if body.Data[0] == '[' {
		if err := json.Unmarshal(body.Data, &page.Items); err != nil {
			return nil, fmt.Errorf("failed to decode media list: %w", err)
		}
		return page, nil
	}

	var obj mediaListObject
	if err := json.Unmarshal(body.Data, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode media list: %w", err)
	}
	if obj.Media != nil {
		page.Items = obj.Media
	}
	if obj.Pagination != (resource.Pagination{}) {
		page.Pagination = obj.Pagination
	}
	return page, nil
}

// Upload stores one file and returns the created assets
func (r *Media) Upload(ctx context.Context, filename string, content io.Reader) ([]domain.Media, error) {
	var env resource.Envelope[[]domain.Media]
	if err := r.client.Upload(ctx, r.endpoints.Base, UploadField, filename, content, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// UpdateAlt changes the alternative text of an asset
func (r *Media) UpdateAlt(ctx context.Context, id, alt string) (*domain.Media, error) {
	if id == "" {
		return nil, resource.ErrEmptyID
	}
	return resource.Call[domain.Media](ctx, r.client, http.MethodPut, r.endpoints.Item(id), map[string]any{"alt": alt})
}

func (r *Media) Delete(ctx context.Context, id string) error {
	if id == "" {
		return resource.ErrEmptyID
	}
	return resource.Exec(ctx, r.client, http.MethodDelete, r.endpoints.Item(id), nil)
}

type deleteUnusedData struct {
	DeletedCount int `json:"deletedCount"`
}

// DeleteUnused removes every asset no record references and returns how
// many were deleted.
func (r *Media) DeleteUnused(ctx context.Context) (int, error) {
	data, err := resource.Call[deleteUnusedData](ctx, r.client, http.MethodDelete, r.endpoints.Sub("bulk", "unused"), nil)
	if err != nil {
		return 0, err
	}
	return data.DeletedCount, nil
}
