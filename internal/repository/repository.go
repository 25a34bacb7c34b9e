// Package repository exposes one repository per admin API entity. Every
// method is a pass-through to the transport: no validation, caching or
// retry happens here.
package repository

import (
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

// Repositories bundles every entity repository over one client
type Repositories struct {
	Auth           *Auth
	Products       *Products
	Categories     *Categories
	Orders         *Orders
	Reviews        *Reviews
	Media          *Media
	Settings       *Settings
	EmailTemplates *EmailTemplates
	Dashboard      *Dashboard
}

// New wires every repository to c. sess receives tokens issued by login and
// email verification.
func New(c *transport.Client, sess Session) *Repositories {
	return &Repositories{
		Auth:           NewAuth(c, sess),
		Products:       NewProducts(c),
		Categories:     NewCategories(c),
		Orders:         NewOrders(c),
		Reviews:        NewReviews(c),
		Media:          NewMedia(c),
		Settings:       NewSettings(c),
		EmailTemplates: NewEmailTemplates(c),
		Dashboard:      NewDashboard(c),
	}
}
