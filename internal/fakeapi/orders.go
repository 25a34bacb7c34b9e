package fakeapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/pkg/response"
	"go.uber.org/zap"
)

// Refund states
const (
	RefundRequested = "requested"
	RefundApproved  = "approved"
	RefundRejected  = "rejected"
)

type orderStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

type confirmPaymentRequest struct {
	PaymentProof string `json:"paymentProof"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type noteRequest struct {
	Note string `json:"note" binding:"required"`
}

type processRefundRequest struct {
	Approved *bool  `json:"approved" binding:"required"`
	Note     string `json:"note"`
}

func (s *Server) filterOrders(c *gin.Context) []*domain.Order {
	search := c.Query("search")
	status := c.Query("status")
	payment := c.Query("paymentStatus")

	var matched []*domain.Order
	for _, o := range s.orders.all() {
		if search != "" && !containsFold(o.OrderNumber, search) &&
			!containsFold(o.Customer.Name, search) && !containsFold(o.Customer.Email, search) {
			continue
		}
		if status != "" && string(o.Status) != status {
			continue
		}
		if payment != "" && string(o.PaymentStatus) != payment {
			continue
		}
		matched = append(matched, o)
	}

	desc := descending(c)
	byTotal := c.Query("sortBy") == "total"
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if desc {
			a, b = b, a
		}
		if byTotal {
			return a.Total < b.Total
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return matched
}

func copyOrders(rows []*domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(rows))
	for _, o := range rows {
		out = append(out, *o)
	}
	return out
}

// GET /api/orders
func (s *Server) listOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, p := paginate(c, s.filterOrders(c))
	response.Paginated(c, copyOrders(page), p)
}

func (s *Server) order(c *gin.Context) (*domain.Order, bool) {
	o, ok := s.orders.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Order not found")
	}
	return o, ok
}

// GET /api/orders/:id
func (s *Server) getOrder(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.order(c)
	if !ok {
		return
	}
	response.Success(c, *o)
}

// PUT /api/orders/:id/status
func (s *Server) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Status is required")
		return
	}
	next := domain.OrderStatus(req.Status)
	if !next.Valid() {
		response.BadRequest(c, fmt.Sprintf("Invalid order status %q", req.Status))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.order(c)
	if !ok {
		return
	}
	if !o.Status.CanTransitionTo(next) {
		response.BadRequest(c, fmt.Sprintf("Cannot change order status from %s to %s", o.Status, next))
		return
	}
	if next.RequiresTracking() && strings.TrimSpace(req.TrackingNumber) == "" {
		response.BadRequest(c, "Tracking number is required when status is shipped")
		return
	}

	s.log.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)),
	)
	o.Status = next
	if req.TrackingNumber != "" {
		o.TrackingNumber = req.TrackingNumber
	}
	o.UpdatedAt = s.now()
	response.SuccessMessage(c, "Order status updated", *o)
}

// PUT /api/orders/:id/confirm-payment
func (s *Server) confirmPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.order(c)
	if !ok {
		return
	}
	if o.IsPaid() {
		response.BadRequest(c, "Payment is already confirmed")
		return
	}
	if o.IsCancelled() {
		response.BadRequest(c, "Cannot confirm payment of a cancelled order")
		return
	}

	o.PaymentStatus = domain.PaymentPaid
	if req.PaymentProof != "" {
		o.PaymentProof = req.PaymentProof
	}
	if o.IsPending() {
		o.Status = domain.OrderConfirmed
	}
	o.UpdatedAt = s.now()
	response.SuccessMessage(c, "Payment confirmed", *o)
}

// PUT /api/orders/:id/cancel
func (s *Server) cancelOrder(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.order(c)
	if !ok {
		return
	}
	if !o.Status.CanTransitionTo(domain.OrderCancelled) {
		response.BadRequest(c, fmt.Sprintf("Cannot cancel an order that is %s", o.Status))
		return
	}

	o.Status = domain.OrderCancelled
	o.CancelReason = req.Reason
	o.UpdatedAt = s.now()
	response.SuccessMessage(c, "Order cancelled", *o)
}

// POST /api/orders/:id/notes
func (s *Server) addOrderNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Note) == "" {
		response.BadRequest(c, "Note is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.order(c)
	if !ok {
		return
	}
	now := s.now()
	o.AdminNotes = append(o.AdminNotes, domain.OrderNote{Note: req.Note, CreatedAt: now})
	o.UpdatedAt = now
	response.SuccessMessage(c, "Note added", *o)
}

// POST /api/orders/:id/refund/request
func (s *Server) requestRefund(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		response.BadRequest(c, "Refund reason is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.order(c)
	if !ok {
		return
	}
	if !o.IsPaid() {
		response.BadRequest(c, "Only paid orders can be refunded")
		return
	}
	if o.Refund != nil && o.Refund.Status == RefundRequested {
		response.BadRequest(c, "A refund is already pending for this order")
		return
	}

	now := s.now()
	o.Refund = &domain.Refund{Status: RefundRequested, Reason: req.Reason, RequestedAt: now}
	o.UpdatedAt = now
	response.SuccessMessage(c, "Refund requested", *o)
}

// POST /api/orders/:id/refund/process
func (s *Server) processRefund(c *gin.Context) {
	var req processRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "approved must be true or false")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.order(c)
	if !ok {
		return
	}
	if o.Refund == nil || o.Refund.Status != RefundRequested {
		response.BadRequest(c, "No pending refund request")
		return
	}

	now := s.now()
	o.Refund.ProcessedAt = now
	if *req.Approved {
		o.Refund.Status = RefundApproved
		o.PaymentStatus = domain.PaymentRefunded
	} else {
		o.Refund.Status = RefundRejected
	}
	if req.Note != "" {
		o.AdminNotes = append(o.AdminNotes, domain.OrderNote{Note: req.Note, CreatedAt: now})
	}
	o.UpdatedAt = now
	response.SuccessMessage(c, "Refund processed", *o)
}

var exportHeader = []string{
	"Order Number", "Date", "Customer", "Email", "Phone", "Items", "Subtotal",
	"Shipping", "Discount", "Total", "Status", "Payment Status", "Tracking Number",
}

// GET /api/orders/export
func (s *Server) exportOrders(c *gin.Context) {
	s.mu.Lock()
	rows := copyOrders(s.filterOrders(c))
	now := s.now()
	s.mu.Unlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		response.InternalError(c, err)
		return
	}
	for _, o := range rows {
		items := 0
		for _, it := range o.Items {
			items += it.Quantity
		}
		record := []string{
			o.OrderNumber,
			o.CreatedAt.Format(time.RFC3339),
			o.Customer.Name,
			o.Customer.Email,
			o.Customer.Phone,
			strconv.Itoa(items),
			money(o.Subtotal),
			money(o.ShippingCost),
			money(o.Discount),
			money(o.Total),
			string(o.Status),
			string(o.PaymentStatus),
			o.TrackingNumber,
		}
		if err := w.Write(record); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		response.InternalError(c, err)
		return
	}

	filename := "orders-" + now.Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
