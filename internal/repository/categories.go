package repository

import (
	"context"
	"net/http"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

const categoriesBase = "/api/categories"

// CategoryOrder is one entry of a reorder request
type CategoryOrder struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"displayOrder"`
}

// Categories is the category tree
type Categories struct {
	resource.Collection[domain.Category]
	resource.Creator[domain.Category]
	resource.Mutator[domain.Category]

	client    *transport.Client
	endpoints resource.Endpoints
}

func NewCategories(c *transport.Client) *Categories {
	return &Categories{
		Collection: resource.NewCollection[domain.Category](c, categoriesBase),
		Creator:    resource.NewCreator[domain.Category](c, categoriesBase),
		Mutator:    resource.NewMutator[domain.Category](c, categoriesBase),
		client:     c,
		endpoints:  resource.Endpoints{Base: categoriesBase},
	}
}

// Reorder stores a new display order
func (r *Categories) Reorder(ctx context.Context, order []CategoryOrder) error {
	if order == nil {
		order = []CategoryOrder{}
	}
	return resource.Exec(ctx, r.client, http.MethodPost, r.endpoints.Sub("reorder"), map[string]any{
		"categories": order,
	})
}
