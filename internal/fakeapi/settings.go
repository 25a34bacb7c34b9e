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

type previewRequest struct {
	Type       string         `json:"type" binding:"required"`
	SampleData map[string]any `json:"sampleData"`
}

type testSendRequest struct {
	Type       string         `json:"type" binding:"required"`
	To         string         `json:"to" binding:"required"`
	SampleData map[string]any `json:"sampleData"`
}

type templateUpdateRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

func defaultSettings() domain.Settings {
	return domain.Settings{
		Store: domain.StoreSettings{
			Name:    "GlowNatura",
			Email:   "hello@glownatura.test",
			Phone:   "+66 2 000 0000",
			Address: "Bangkok, Thailand",
		},
		Email: domain.EmailSettings{
			OrderConfirmation: true,
			OrderStatusUpdate: true,
			LowStockAlert:     true,
		},
	}
}

func defaultTemplates() map[string]*domain.EmailTemplate {
	list := []domain.EmailTemplate{
		{
			Type:        "order_confirmation",
			Name:        "Order confirmation",
			Description: "Sent when a customer places an order",
			Subject:     "Your GlowNatura order {{orderNumber}}",
			Body:        "<p>Hi {{customerName}},</p><p>Thank you for your order {{orderNumber}} of {{total}}.</p>",
			Variables:   []string{"customerName", "orderNumber", "total"},
		},
		{
			Type:        "order_shipped",
			Name:        "Order shipped",
			Description: "Sent when an order is handed to the carrier",
			Subject:     "Order {{orderNumber}} is on its way",
			Body:        "<p>Hi {{customerName}},</p><p>Tracking number: {{trackingNumber}}.</p>",
			Variables:   []string{"customerName", "orderNumber", "trackingNumber"},
		},
		{
			Type:        "email_verification",
			Name:        "Email verification",
			Description: "Sent to new admin accounts",
			Subject:     "Verify your GlowNatura admin account",
			Body:        "<p>Hi {{name}},</p><p>Verify your email: {{verificationUrl}}</p>",
			Variables:   []string{"name", "verificationUrl"},
		},
		{
			Type:        "password_reset",
			Name:        "Password reset",
			Description: "Sent when an admin asks to reset a password",
			Subject:     "Reset your GlowNatura password",
			Body:        "<p>Hi {{name}},</p><p>Reset your password: {{resetUrl}}</p>",
			Variables:   []string{"name", "resetUrl"},
		},
	}

	out := make(map[string]*domain.EmailTemplate, len(list))
	for i := range list {
		out[list[i].Type] = &list[i]
	}
	return out
}

// render substitutes {{name}} placeholders
func render(text string, data map[string]any) string {
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// GET /api/settings
func (s *Server) getSettings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.Success(c, s.settings)
}

// PUT /api/settings
func (s *Server) updateSettings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if err := c.ShouldBindJSON(&next); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(next.Store.Name) == "" {
		response.BadRequest(c, "Store name is required")
		return
	}
	s.settings = next
	response.SuccessMessage(c, "Settings updated successfully", s.settings)
}

// GET /api/email-templates
func (s *Server) listTemplates(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.EmailTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		items = append(items, *t)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Type < items[j].Type })
	response.Success(c, items)
}

func (s *Server) template(c *gin.Context, templateType string) (*domain.EmailTemplate, bool) {
	t, ok := s.templates[templateType]
	if !ok {
		response.NotFound(c, fmt.Sprintf("Email template %q not found", templateType))
	}
	return t, ok
}

// GET /api/email-templates/:type
func (s *Server) getTemplate(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.template(c, c.Param("type")); ok {
		response.Success(c, *t)
	}
}

// PUT /api/email-templates/:type
func (s *Server) updateTemplate(c *gin.Context) {
	var req templateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Subject and body are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.template(c, c.Param("type"))
	if !ok {
		return
	}
	t.Subject = req.Subject
	t.Body = req.Body
	t.IsCustom = true
	response.SuccessMessage(c, "Email template updated", *t)
}

// POST /api/email-templates/preview
func (s *Server) previewTemplate(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Template type is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.template(c, req.Type)
	if !ok {
		return
	}
	response.Success(c, domain.EmailPreview{
		Subject: render(t.Subject, req.SampleData),
		HTML:    render(t.Body, req.SampleData),
	})
}

// POST /api/email-templates/test-send
func (s *Server) testSendTemplate(c *gin.Context) {
	var req testSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Template type and recipient are required")
		return
	}
	if !strings.Contains(req.To, "@") {
		response.Error(c, http.StatusBadRequest, "INVALID_EMAIL", "Invalid recipient address")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.template(c, req.Type)
	if !ok {
		return
	}
	s.sentEmails = append(s.sentEmails, SentEmail{To: req.To, Subject: render(t.Subject, req.SampleData)})
	response.SuccessMessage(c, "Test email sent to "+req.To, nil)
}

// POST /api/email-templates/:type/restore
func (s *Server) restoreTemplate(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templateType := c.Param("type")
	if _, ok := s.template(c, templateType); !ok {
		return
	}
	def := defaultTemplates()[templateType]
	s.templates[templateType] = def
	response.SuccessMessage(c, "Email template restored to default", *def)
}
