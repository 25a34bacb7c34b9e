package repository

import (
	"context"
	"net/http"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

const settingsPath = "/api/settings"

// Settings is the storefront configuration document
type Settings struct {
	client *transport.Client
}

func NewSettings(c *transport.Client) *Settings {
	return &Settings{client: c}
}

func (r *Settings) Get(ctx context.Context) (*domain.Settings, error) {
	return resource.Call[domain.Settings](ctx, r.client, http.MethodGet, settingsPath, nil)
}

func (r *Settings) Update(ctx context.Context, s *domain.Settings) (*domain.Settings, error) {
	return resource.Call[domain.Settings](ctx, r.client, http.MethodPut, settingsPath, s)
}
