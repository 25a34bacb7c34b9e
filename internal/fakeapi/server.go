// Package fakeapi is an in-memory stand-in for the storefront admin API.
// It serves the same endpoint families and envelopes as the real backend so
// the client can be exercised end to end without network access.
package fakeapi

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	"github.com/prohmpiriya/glownatura-admin/pkg/response"
	"github.com/prohmpiriya/glownatura-admin/pkg/telemetry"
	"go.uber.org/zap"
)

const (
	// DefaultTokenTTL matches the lifetime the client assumes for a session
	DefaultTokenTTL = 7 * 24 * time.Hour
	serviceName     = "glownatura-fakeapi"
	adminIDKey      = "admin_id"
)

// Config configures a Server
type Config struct {
	JWTSecret     string
	AdminEmail    string
	AdminPassword string
	TokenTTL      time.Duration
	// BcryptCost defaults to bcrypt.MinCost so tests stay fast
	BcryptCost int
	// Seed fills the catalogue with sample records
	Seed   bool
	Logger *logger.Logger
	Now    func() time.Time
}

// Fault is a canned failure answered instead of the real handler
type Fault struct {
	Status  int
	Code    string
	Message string
}

// Server is the fixture backend
type Server struct {
	cfg    Config
	log    *logger.Logger
	router *gin.Engine
	now    func() time.Time

	mu           sync.Mutex
	admins       *table[adminRow]
	products     *table[domain.Product]
	categories   *table[domain.Category]
	orders       *table[domain.Order]
	reviews      *table[domain.Review]
	media        *table[domain.Media]
	settings     domain.Settings
	templates    map[string]*domain.EmailTemplate
	verifyTokens map[string]string
	resetTokens  map[string]string
	revoked      map[string]bool
	sentEmails   []SentEmail
	skuSeq       int
	orderSeq     int
	faults       map[string]Fault
	latency      func(r *http.Request) time.Duration
}

// New creates a server with the admin account from cfg
func New(cfg Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("fakeapi: jwt secret is required")
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil, errors.New("fakeapi: admin credentials are required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	s := &Server{
		cfg:          cfg,
		log:          cfg.Logger.Named("fakeapi"),
		now:          cfg.Now,
		admins:       newTable[adminRow](),
		products:     newTable[domain.Product](),
		categories:   newTable[domain.Category](),
		orders:       newTable[domain.Order](),
		reviews:      newTable[domain.Review](),
		media:        newTable[domain.Media](),
		templates:    defaultTemplates(),
		verifyTokens: make(map[string]string),
		resetTokens:  make(map[string]string),
		revoked:      make(map[string]bool),
		faults:       make(map[string]Fault),
		settings:     defaultSettings(),
	}

	if _, err := s.createAdmin("Store Admin", cfg.AdminEmail, cfg.AdminPassword, domain.RoleSuperAdmin, true); err != nil {
		return nil, err
	}
	if cfg.Seed {
		s.seed()
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// InjectFault makes the next request to method and path fail with f
func (s *Server) InjectFault(method, path string, f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+path] = f
}

// SetLatency delays every request by the duration fn returns for it
func (s *Server) SetLatency(fn func(r *http.Request) time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = fn
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(serviceName))
	router.Use(s.requestLogger())
	router.Use(s.faultInjector())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", s.login)
		auth.POST("/register", s.register)
		auth.POST("/verify-email", s.verifyEmail)
		auth.POST("/resend-verification", s.resendVerification)
		auth.POST("/forgot-password", s.forgotPassword)
		auth.POST("/reset-password", s.resetPassword)

		protected := auth.Group("")
		protected.Use(s.authMiddleware())
		{
			protected.GET("/me", s.me)
			protected.POST("/logout", s.logout)
			protected.PUT("/change-password", s.changePassword)
			protected.PUT("/profile", s.updateProfile)
		}
	}

	admin := api.Group("")
	admin.Use(s.authMiddleware())
	{
		products := admin.Group("/products")
		products.GET("", s.listProducts)
		products.POST("", s.createProduct)
		products.GET("/generate-sku", s.generateSKU)
		products.GET("/low-stock", s.lowStock)
		products.PUT("/bulk/status", s.bulkProductStatus)
		products.GET("/:id", s.getProduct)
		products.PUT("/:id", s.updateProduct)
		products.DELETE("/:id", s.deleteProduct)

		categories := admin.Group("/categories")
		categories.GET("", s.listCategories)
		categories.POST("", s.createCategory)
		categories.POST("/reorder", s.reorderCategories)
		categories.GET("/:id", s.getCategory)
		categories.PUT("/:id", s.updateCategory)
		categories.DELETE("/:id", s.deleteCategory)

		orders := admin.Group("/orders")
		orders.GET("", s.listOrders)
		orders.GET("/export", s.exportOrders)
		orders.GET("/:id", s.getOrder)
		orders.PUT("/:id/status", s.updateOrderStatus)
		orders.PUT("/:id/confirm-payment", s.confirmPayment)
		orders.PUT("/:id/cancel", s.cancelOrder)
		orders.POST("/:id/notes", s.addOrderNote)
		orders.POST("/:id/refund/request", s.requestRefund)
		orders.POST("/:id/refund/process", s.processRefund)

		reviews := admin.Group("/reviews")
		reviews.GET("", s.listReviews)
		reviews.PUT("/bulk/status", s.bulkReviewStatus)
		reviews.GET("/:id", s.getReview)
		reviews.PUT("/:id/status", s.updateReviewStatus)
		reviews.DELETE("/:id", s.deleteReview)

		media := admin.Group("/media")
		media.GET("", s.listMedia)
		media.POST("", s.uploadMedia)
		media.DELETE("/bulk/unused", s.deleteUnusedMedia)
		media.GET("/:id", s.getMedia)
		media.PUT("/:id", s.updateMedia)
		media.DELETE("/:id", s.deleteMedia)

		admin.GET("/settings", s.getSettings)
		admin.PUT("/settings", s.updateSettings)

		templates := admin.Group("/email-templates")
		templates.GET("", s.listTemplates)
		templates.POST("/preview", s.previewTemplate)
		templates.POST("/test-send", s.testSendTemplate)
		templates.GET("/:type", s.getTemplate)
		templates.PUT("/:type", s.updateTemplate)
		templates.POST("/:type/restore", s.restoreTemplate)

		dashboard := admin.Group("/dashboard")
		dashboard.GET("/stats", s.dashboardStats)
		dashboard.GET("/recent-orders", s.recentOrders)
		dashboard.GET("/top-products", s.topProducts)
		dashboard.GET("/sales-data", s.salesData)
	}

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("trace_id", telemetry.GetTraceID(c.Request.Context())),
		)
	}
}

func (s *Server) faultInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		key := c.Request.Method + " " + c.Request.URL.Path
		f, ok := s.faults[key]
		if ok {
			delete(s.faults, key)
		}
		latency := s.latency
		s.mu.Unlock()

		if latency != nil {
			if d := latency(c.Request); d > 0 {
				select {
				case <-time.After(d):
				case <-c.Request.Context().Done():
					c.Abort()
					return
				}
			}
		}

		if ok {
			response.Error(c, f.Status, f.Code, f.Message)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Unauthorized(c, "Authentication required")
			return
		}

		adminID, err := s.parseToken(token)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(adminIDKey, adminID)
		c.Next()
	}
}
