package domain

type StoreSettings struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Logo    string `json:"logo,omitempty"`
	Favicon string `json:"favicon,omitempty"`
}

type EmailSettings struct {
	OrderConfirmation bool `json:"orderConfirmation"`
	OrderStatusUpdate bool `json:"orderStatusUpdate"`
	LowStockAlert     bool `json:"lowStockAlert"`
}

type SocialSettings struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"`
}

// Settings is the single storefront configuration document
type Settings struct {
	Store  StoreSettings  `json:"store"`
	Email  EmailSettings  `json:"email"`
	Social SocialSettings `json:"social"`
}

// EmailTemplate is a transactional email the admin can edit
type EmailTemplate struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Variables   []string `json:"variables,omitempty"`
	IsCustom    bool     `json:"isCustom"`
}

// EmailPreview is a rendered template
type EmailPreview struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Period selects the window of a dashboard aggregate
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// GroupBy selects the bucket size of a sales series
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

type DashboardStats struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalOrders      int     `json:"totalOrders"`
	PendingOrders    int     `json:"pendingOrders"`
	TotalProducts    int     `json:"totalProducts"`
	LowStockProducts int     `json:"lowStockProducts"`
	TotalCustomers   int     `json:"totalCustomers"`
	TotalReviews     int     `json:"totalReviews"`
	PendingReviews   int     `json:"pendingReviews"`
	RevenueChange    float64 `json:"revenueChange"`
	OrdersChange     float64 `json:"ordersChange"`
}

type RecentOrder struct {
	ID          string      `json:"_id"`
	OrderNumber string      `json:"orderNumber"`
	Customer    Contact     `json:"customer"`
	Total       float64     `json:"total"`
	Status      OrderStatus `json:"status"`
	CreatedAt   string      `json:"createdAt"`
}

type TopProductRef struct {
	ID     string         `json:"_id"`
	Name   string         `json:"name"`
	Images []ProductImage `json:"images"`
}

type TopProduct struct {
	Product   TopProductRef `json:"product"`
	TotalSold int           `json:"totalSold"`
	Revenue   float64       `json:"revenue"`
}

type SalesData struct {
	Labels  []string  `json:"labels"`
	Revenue []float64 `json:"revenue"`
	Orders  []int     `json:"orders"`
}
