package repository

import (
	"context"
	"net/http"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

const productsBase = "/api/products"

// Products is the product catalogue
type Products struct {
	resource.Collection[domain.Product]
	resource.Creator[domain.Product]
	resource.Mutator[domain.Product]

	client    *transport.Client
	endpoints resource.Endpoints
}

func NewProducts(c *transport.Client) *Products {
	return &Products{
		Collection: resource.NewCollection[domain.Product](c, productsBase),
		Creator:    resource.NewCreator[domain.Product](c, productsBase),
		Mutator:    resource.NewMutator[domain.Product](c, productsBase),
		client:     c,
		endpoints:  resource.Endpoints{Base: productsBase},
	}
}

type skuData struct {
	SKU string `json:"sku"`
}

// GenerateSKU asks the server for an unused SKU
func (r *Products) GenerateSKU(ctx context.Context) (string, error) {
	data, err := resource.Call[skuData](ctx, r.client, http.MethodGet, r.endpoints.Sub("generate-sku"), nil)
	if err != nil {
		return "", err
	}
	return data.SKU, nil
}

// LowStock lists products at or below their stock threshold
func (r *Products) LowStock(ctx context.Context) ([]domain.Product, error) {
	data, err := resource.Call[[]domain.Product](ctx, r.client, http.MethodGet, r.endpoints.Sub("low-stock"), nil)
	if err != nil {
		return nil, err
	}
	return *data, nil
}

// BulkUpdateStatus sets status on every product in ids
func (r *Products) BulkUpdateStatus(ctx context.Context, ids []string, status domain.ProductStatus) error {
	return resource.Exec(ctx, r.client, http.MethodPut, r.endpoints.Sub("bulk", "status"), map[string]any{
		"productIds": ids,
		"status":     status,
	})
}
