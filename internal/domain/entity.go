// Package domain holds the records served by the storefront admin API and
// the accessors the dashboard derives from them.
package domain

import (
	"math"
	"time"
)

// Record carries the server-owned identity and timestamps of every entity
type Record struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProductImage struct {
	URL       string `json:"url"`
	PublicID  string `json:"publicId"`
	Alt       string `json:"alt,omitempty"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

type Dimensions struct {
	Length float64 `json:"length,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

type MetalWeight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Stone struct {
	Type        string  `json:"type"`
	CaratWeight float64 `json:"caratWeight,omitempty"`
	Clarity     string  `json:"clarity,omitempty"`
	Color       string  `json:"color,omitempty"`
	Cut         string  `json:"cut,omitempty"`
}

type Size struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

type Certification struct {
	Available         bool   `json:"available"`
	IssuedBy          string `json:"issuedBy,omitempty"`
	CertificateNumber string `json:"certificateNumber,omitempty"`
}

// JewelryDetails describes the material of a jewelry product
type JewelryDetails struct {
	Material      string         `json:"material,omitempty"`
	Purity        string         `json:"purity,omitempty"`
	MetalWeight   *MetalWeight   `json:"metalWeight,omitempty"`
	Stone         *Stone         `json:"stone,omitempty"`
	Size          *Size          `json:"size,omitempty"`
	Certification *Certification `json:"certification,omitempty"`
	Gender        string         `json:"gender,omitempty"`
	Type          string         `json:"type,omitempty"`
}

type Product struct {
	Record
	Name              string          `json:"name"`
	Slug              string          `json:"slug"`
	Description       string          `json:"description"`
	ShortDescription  string          `json:"shortDescription,omitempty"`
	SKU               string          `json:"sku"`
	Price             float64         `json:"price"`
	SalePrice         *float64        `json:"salePrice,omitempty"`
	CostPrice         *float64        `json:"costPrice,omitempty"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	Category          Ref[Category]   `json:"category"`
	Images            []ProductImage  `json:"images"`
	Featured          bool            `json:"featured"`
	Status            ProductStatus   `json:"status"`
	Tags              []string        `json:"tags,omitempty"`
	MetaTitle         string          `json:"metaTitle,omitempty"`
	MetaDescription   string          `json:"metaDescription,omitempty"`
	Weight            float64         `json:"weight,omitempty"`
	Dimensions        *Dimensions     `json:"dimensions,omitempty"`
	Jewelry           *JewelryDetails `json:"jewelry,omitempty"`
}

// IsLowStock reports whether stock has fallen to the alert threshold
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// IsOnSale reports whether a sale price below the list price is set
func (p *Product) IsOnSale() bool {
	return p.SalePrice != nil && *p.SalePrice < p.Price
}

// DiscountPercentage is the rounded sale discount, 0 when not on sale
func (p *Product) DiscountPercentage() int {
	if !p.IsOnSale() || *p.SalePrice == 0 || p.Price == 0 {
		return 0
	}
	return int(math.Round((p.Price - *p.SalePrice) / p.Price * 100))
}

// ActivePrice is the sale price when set and nonzero, the list price otherwise
func (p *Product) ActivePrice() float64 {
	if p.SalePrice != nil && *p.SalePrice != 0 {
		return *p.SalePrice
	}
	return p.Price
}

// CategoryID returns the id of the product category
func (p *Product) CategoryID() string {
	return p.Category.ID()
}

type Category struct {
	Record
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	Description  string         `json:"description,omitempty"`
	Image        string         `json:"image,omitempty"`
	Parent       *Ref[Category] `json:"parent,omitempty"`
	DisplayOrder int            `json:"displayOrder"`
	ProductCount int            `json:"productCount"`
}

// IsTopLevel reports whether the category has no parent
func (c *Category) IsTopLevel() bool {
	return c.Parent == nil || c.Parent.ID() == ""
}

// ParentID returns the parent category id, "" for top level categories
func (c *Category) ParentID() string {
	if c.Parent == nil {
		return ""
	}
	return c.Parent.ID()
}

// Contact is a person's name and email
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Review struct {
	Record
	Product  Ref[Product] `json:"product"`
	User     Contact      `json:"user"`
	Rating   int          `json:"rating"`
	Title    string       `json:"title,omitempty"`
	Comment  string       `json:"comment"`
	Status   ReviewStatus `json:"status"`
	Helpful  int          `json:"helpful"`
	Verified bool         `json:"verified"`
}

func (r *Review) IsPending() bool  { return r.Status == ReviewPending }
func (r *Review) IsApproved() bool { return r.Status == ReviewApproved }
func (r *Review) IsRejected() bool { return r.Status == ReviewRejected }

// ProductID returns the id of the reviewed product
func (r *Review) ProductID() string {
	return r.Product.ID()
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode,omitempty"`
}

type Customer struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

type OrderItem struct {
	Product  Ref[Product] `json:"product"`
	Name     string       `json:"name"`
	SKU      string       `json:"sku"`
	Price    float64      `json:"price"`
	Quantity int          `json:"quantity"`
	Total    float64      `json:"total"`
	Image    string       `json:"image,omitempty"`
}

type OrderNote struct {
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

type Refund struct {
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requestedAt,omitempty"`
	ProcessedAt time.Time `json:"processedAt,omitempty"`
}

type Order struct {
	Record
	OrderNumber    string        `json:"orderNumber"`
	Customer       Customer      `json:"customer"`
	Items          []OrderItem   `json:"items"`
	Subtotal       float64       `json:"subtotal"`
	Discount       float64       `json:"discount"`
	Tax            float64       `json:"tax"`
	ShippingCost   float64       `json:"shippingCost"`
	Total          float64       `json:"total"`
	Status         OrderStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	PaymentMethod  string        `json:"paymentMethod"`
	PaymentProof   string        `json:"paymentProof,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	AdminNotes     []OrderNote   `json:"adminNotes,omitempty"`
	TrackingNumber string        `json:"trackingNumber,omitempty"`
	CancelReason   string        `json:"cancelReason,omitempty"`
	Refund         *Refund       `json:"refund,omitempty"`
}

func (o *Order) IsPending() bool    { return o.Status == OrderPending }
func (o *Order) IsConfirmed() bool  { return o.Status == OrderConfirmed }
func (o *Order) IsProcessing() bool { return o.Status == OrderProcessing }
func (o *Order) IsShipped() bool    { return o.Status == OrderShipped }
func (o *Order) IsDelivered() bool  { return o.Status == OrderDelivered }
func (o *Order) IsCancelled() bool  { return o.Status == OrderCancelled }
func (o *Order) IsPaid() bool       { return o.PaymentStatus == PaymentPaid }

// IsTerminal reports whether status changing actions are closed
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// AdminRole is the privilege level of a dashboard account
type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "superadmin"
)

type Admin struct {
	Record
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          AdminRole `json:"role"`
	Avatar        string    `json:"avatar,omitempty"`
	IsActive      bool      `json:"isActive"`
	EmailVerified bool      `json:"isEmailVerified,omitempty"`
}

func (a *Admin) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

type Media struct {
	Record
	URL           string   `json:"url,omitempty"`
	CloudinaryURL string   `json:"cloudinaryUrl,omitempty"`
	PublicID      string   `json:"publicId"`
	Filename      string   `json:"filename"`
	Mimetype      string   `json:"mimetype"`
	Size          int64    `json:"size"`
	Width         int      `json:"width,omitempty"`
	Height        int      `json:"height,omitempty"`
	Alt           string   `json:"alt,omitempty"`
	UsedIn        []string `json:"usedIn"`
}

// Location returns the public URL of the asset, whichever field carries it
func (m *Media) Location() string {
	if m.URL != "" {
		return m.URL
	}
	return m.CloudinaryURL
}

// IsUnused reports whether no product or category references the asset
func (m *Media) IsUnused() bool {
	return len(m.UsedIn) == 0
}
