package repository

import (
	"context"
	"net/http"
	"time"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

const ordersBase = "/api/orders"

// Orders are created by the storefront; the admin API only reads and
// advances them.
type Orders struct {
	resource.Collection[domain.Order]

	client    *transport.Client
	endpoints resource.Endpoints
	now       func() time.Time
}

func NewOrders(c *transport.Client) *Orders {
	return &Orders{
		Collection: resource.NewCollection[domain.Order](c, ordersBase),
		client:     c,
		endpoints:  resource.Endpoints{Base: ordersBase},
		now:        time.Now,
	}
}

func (r *Orders) put(ctx context.Context, id string, action string, body any) (*domain.Order, error) {
	if id == "" {
		return nil, resource.ErrEmptyID
	}
	return resource.Call[domain.Order](ctx, r.client, http.MethodPut, r.endpoints.Sub(id, action), body)
}

func (r *Orders) post(ctx context.Context, body any, id string, segments ...string) (*domain.Order, error) {
	if id == "" {
		return nil, resource.ErrEmptyID
	}
	return resource.Call[domain.Order](ctx, r.client, http.MethodPost, r.endpoints.Sub(append([]string{id}, segments...)...), body)
}

// UpdateStatus moves an order to status. trackingNumber is sent only when
// non-empty; whether it is required is the server's decision.
func (r *Orders) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingNumber string) (*domain.Order, error) {
	body := map[string]any{"status": status}
	if trackingNumber != "" {
		body["trackingNumber"] = trackingNumber
	}
	return r.put(ctx, id, "status", body)
}

// ConfirmPayment marks the order paid, optionally attaching a proof reference
func (r *Orders) ConfirmPayment(ctx context.Context, id string, paymentProof string) (*domain.Order, error) {
	body := map[string]any{}
	if paymentProof != "" {
		body["paymentProof"] = paymentProof
	}
	return r.put(ctx, id, "confirm-payment", body)
}

func (r *Orders) Cancel(ctx context.Context, id string, reason string) (*domain.Order, error) {
	return r.put(ctx, id, "cancel", map[string]any{"reason": reason})
}

func (r *Orders) AddNote(ctx context.Context, id string, note string) (*domain.Order, error) {
	return r.post(ctx, map[string]any{"note": note}, id, "notes")
}

func (r *Orders) RequestRefund(ctx context.Context, id string, reason string) (*domain.Order, error) {
	return r.post(ctx, map[string]any{"reason": reason}, id, "refund", "request")
}

// ProcessRefund approves or rejects a pending refund request
func (r *Orders) ProcessRefund(ctx context.Context, id string, approve bool, note string) (*domain.Order, error) {
	body := map[string]any{"approved": approve}
	if note != "" {
		body["note"] = note
	}
	return r.post(ctx, body, id, "refund", "process")
}

// Export downloads the orders matching q as CSV. When the server suggests no
// filename one is derived from the current date.
func (r *Orders) Export(ctx context.Context, q resource.Query) (*transport.Download, error) {
	dl, err := r.client.Download(ctx, r.endpoints.Sub("export"), q.Values())
	if err != nil {
		return nil, err
	}
	if dl.Filename == "" {
		dl.Filename = "orders-export-" + r.now().Format("2006-01-02") + ".csv"
	}
	return dl, nil
}
