package repository

import (
	"context"
	"net/http"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

const emailTemplatesBase = "/api/email-templates"

// EmailTemplates are the transactional email bodies, keyed by type
type EmailTemplates struct {
	client    *transport.Client
	endpoints resource.Endpoints
}

func NewEmailTemplates(c *transport.Client) *EmailTemplates {
	return &EmailTemplates{
		client:    c,
		endpoints: resource.Endpoints{Base: emailTemplatesBase},
	}
}

func (r *EmailTemplates) List(ctx context.Context) ([]domain.EmailTemplate, error) {
	data, err := resource.Call[[]domain.EmailTemplate](ctx, r.client, http.MethodGet, r.endpoints.Base, nil)
	if err != nil {
		return nil, err
	}
	return *data, nil
}

func (r *EmailTemplates) Get(ctx context.Context, templateType string) (*domain.EmailTemplate, error) {
	if templateType == "" {
		return nil, resource.ErrEmptyID
	}
	return resource.Call[domain.EmailTemplate](ctx, r.client, http.MethodGet, r.endpoints.Item(templateType), nil)
}

func (r *EmailTemplates) Update(ctx context.Context, templateType, subject, body string) (*domain.EmailTemplate, error) {
	if templateType == "" {
		return nil, resource.ErrEmptyID
	}
	return resource.Call[domain.EmailTemplate](ctx, r.client, http.MethodPut, r.endpoints.Item(templateType), map[string]any{
		"subject": subject,
		"body":    body,
	})
}

// Preview renders a template against sample data
func (r *EmailTemplates) Preview(ctx context.Context, templateType string, sampleData map[string]any) (*domain.EmailPreview, error) {
	return resource.Call[domain.EmailPreview](ctx, r.client, http.MethodPost, r.endpoints.Sub("preview"), map[string]any{
		"type":       templateType,
		"sampleData": sampleData,
	})
}

// TestSend mails a rendered template to a single address
func (r *EmailTemplates) TestSend(ctx context.Context, templateType, to string, sampleData map[string]any) error {
	return resource.Exec(ctx, r.client, http.MethodPost, r.endpoints.Sub("test-send"), map[string]any{
		"type":       templateType,
		"to":         to,
		"sampleData": sampleData,
	})
}

// Restore discards customizations and returns the default template
func (r *EmailTemplates) Restore(ctx context.Context, templateType string) (*domain.EmailTemplate, error) {
	if templateType == "" {
		return nil, resource.ErrEmptyID
	}
	return resource.Call[domain.EmailTemplate](ctx, r.client, http.MethodPost, r.endpoints.Sub(templateType, "restore"), nil)
}
