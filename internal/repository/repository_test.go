package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prohmpiriya/glownatura-admin/internal/apierror"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/session"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// recorder answers every request with one canned response and keeps the
// last request it saw
type recorder struct {
	mu     sync.Mutex
	last   captured
	status int
	body   string
	header http.Header
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	raw, _ := io.ReadAll(req.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	r.mu.Lock()
	r.last = captured{Method: req.Method, Path: req.URL.EscapedPath(), Query: req.URL.RawQuery, Body: body}
	status, resp := r.status, r.body
	for k, v := range r.header {
		w.Header()[k] = v
	}
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write([]byte(resp))
}

func (r *recorder) respond(status int, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status, r.body = status, body
}

func (r *recorder) setHeader(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header == nil {
		r.header = http.Header{}
	}
	r.header.Set(key, value)
}

func (r *recorder) Last() captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func setup(t *testing.T, body string) (*Repositories, *recorder, *session.Session) {
	t.Helper()
	rec := &recorder{body: body}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	sess := session.New(session.NewMemoryStore(), session.Options{})
	c := transport.New(transport.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, sess,
		transport.WithLogger(logger.NewNop()))
	return New(c, sess), rec, sess
}

func TestProducts_GenerateSKU(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true,"data":{"sku":"GN-0042"}}`)

	sku, err := repos.Products.GenerateSKU(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GN-0042", sku)
	assert.Equal(t, "/api/products/generate-sku", rec.Last().Path)
}

func TestProducts_BulkUpdateStatus(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true}`)

	err := repos.Products.BulkUpdateStatus(context.Background(), []string{"p1", "p2"}, domain.ProductInactive)
	require.NoError(t, err)

	last := rec.Last()
	assert.Equal(t, http.MethodPut, last.Method)
	assert.Equal(t, "/api/products/bulk/status", last.Path)
	assert.Equal(t, []any{"p1", "p2"}, last.Body["productIds"])
	assert.Equal(t, "inactive", last.Body["status"])
}

func TestProducts_ListAndDelete(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true,"data":[{"_id":"p1","name":"Rose Serum","price":890}],
		"pagination":{"page":1,"limit":10,"total":1,"totalPages":1}}`)

	page, err := repos.Products.List(context.Background(), resource.Query{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Rose Serum", page.Items[0].Name)
	assert.Equal(t, 1, page.Pagination.Total)

	rec.respond(http.StatusOK, `{"success":true,"message":"Product deleted"}`)
	require.NoError(t, repos.Products.Delete(context.Background(), "p1"))
	assert.Equal(t, http.MethodDelete, rec.Last().Method)
	assert.Equal(t, "/api/products/p1", rec.Last().Path)
}

func TestCategories_Reorder(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true}`)

	err := repos.Categories.Reorder(context.Background(), []CategoryOrder{{ID: "c1", DisplayOrder: 2}, {ID: "c2", DisplayOrder: 1}})
	require.NoError(t, err)

	last := rec.Last()
	assert.Equal(t, "/api/categories/reorder", last.Path)
	cats := last.Body["categories"].([]any)
	require.Len(t, cats, 2)
	assert.Equal(t, map[string]any{"id": "c1", "displayOrder": float64(2)}, cats[0])
}

func TestOrders_UpdateStatusTrackingNumber(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true,"data":{"_id":"o1","status":"shipped"}}`)
	ctx := context.Background()

	order, err := repos.Orders.UpdateStatus(ctx, "o1", domain.OrderShipped, "TH123")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, order.Status)
	assert.Equal(t, "/api/orders/o1/status", rec.Last().Path)
	assert.Equal(t, "TH123", rec.Last().Body["trackingNumber"])

	_, err = repos.Orders.UpdateStatus(ctx, "o1", domain.OrderConfirmed, "")
	require.NoError(t, err)
	assert.NotContains(t, rec.Last().Body, "trackingNumber")
}

func TestOrders_ServerRejectionPropagates(t *testing.T) {
	repos, rec, _ := setup(t, "")
	rec.respond(http.StatusBadRequest, `{"success":false,"error":"Tracking number is required","errorCode":"VALIDATION_ERROR"}`)

	_, err := repos.Orders.UpdateStatus(context.Background(), "o1", domain.OrderShipped, "")
	require.Error(t, err)
	assert.Equal(t, apierror.CodeValidation, apierror.CodeOf(err))
	assert.Equal(t, "Tracking number is required", apierror.MessageOf(err))
}

func TestOrders_Actions(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true,"data":{"_id":"o1"}}`)
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
		body   map[string]any
	}{
		{"confirm payment", func() error { _, err := repos.Orders.ConfirmPayment(ctx, "o1", "slip-1"); return err },
			http.MethodPut, "/api/orders/o1/confirm-payment", map[string]any{"paymentProof": "slip-1"}},
		{"cancel", func() error { _, err := repos.Orders.Cancel(ctx, "o1", "out of stock"); return err },
			http.MethodPut, "/api/orders/o1/cancel", map[string]any{"reason": "out of stock"}},
		{"note", func() error { _, err := repos.Orders.AddNote(ctx, "o1", "called customer"); return err },
			http.MethodPost, "/api/orders/o1/notes", map[string]any{"note": "called customer"}},
		{"refund request", func() error { _, err := repos.Orders.RequestRefund(ctx, "o1", "damaged"); return err },
			http.MethodPost, "/api/orders/o1/refund/request", map[string]any{"reason": "damaged"}},
		{"refund process", func() error { _, err := repos.Orders.ProcessRefund(ctx, "o1", true, ""); return err },
			http.MethodPost, "/api/orders/o1/refund/process", map[string]any{"approved": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			last := rec.Last()
			assert.Equal(t, tt.method, last.Method)
			assert.Equal(t, tt.path, last.Path)
			assert.Equal(t, tt.body, last.Body)
		})
	}
}

func TestOrders_EmptyID(t *testing.T) {
	repos, _, _ := setup(t, `{}`)
	_, err := repos.Orders.Cancel(context.Background(), "", "x")
	assert.ErrorIs(t, err, resource.ErrEmptyID)
}

func TestOrders_ExportDefaultsFilename(t *testing.T) {
	repos, rec, _ := setup(t, "orderNumber,total\nGN-1,890\n")
	rec.setHeader("Content-Type", "text/csv")
	repos.Orders.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	dl, err := repos.Orders.Export(context.Background(), resource.Query{}.With("status", "delivered"))
	require.NoError(t, err)
	assert.Equal(t, "orders-export-2026-03-01.csv", dl.Filename)
	assert.Equal(t, "orderNumber,total\nGN-1,890\n", string(dl.Body))
	assert.Equal(t, "status=delivered", rec.Last().Query)
}

func TestReviews_PendingCount(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"top level pagination", `{"success":true,"data":[{"_id":"r1"}],"pagination":{"total":7}}`, 7},
		{"nested pagination", `{"success":true,"data":{"reviews":[],"pagination":{"totalItems":4}}}`, 4},
		{"data total", `{"success":true,"data":{"total":3}}`, 3},
		{"nothing", `{"success":true,"data":[]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, rec, _ := setup(t, tt.body)
			n, err := repos.Reviews.PendingCount(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			assert.Equal(t, "limit=1&status=pending", rec.Last().Query)
		})
	}
}

func TestReviews_Moderation(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true,"data":{"_id":"r1","status":"approved"}}`)
	ctx := context.Background()

	review, err := repos.Reviews.UpdateStatus(ctx, "r1", domain.ReviewApproved)
	require.NoError(t, err)
	assert.True(t, review.IsApproved())
	assert.Equal(t, "/api/reviews/r1/status", rec.Last().Path)

	require.NoError(t, repos.Reviews.BulkUpdateStatus(ctx, []string{"r1"}, domain.ReviewRejected))
	assert.Equal(t, []any{"r1"}, rec.Last().Body["reviewIds"])
}

func TestMedia_ListShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		total int
	}{
		{"array", `{"success":true,"data":[{"_id":"m1","filename":"a.jpg"}],"pagination":{"total":1}}`, 1},
		{"object", `{"success":true,"data":{"media":[{"_id":"m1","filename":"a.jpg"}],"pagination":{"total":9}}}`, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, _, _ := setup(t, tt.body)
			page, err := repos.Media.List(context.Background(), resource.Query{})
			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.Equal(t, "a.jpg", page.Items[0].Filename)
			assert.Equal(t, tt.total, page.Pagination.Total)
		})
	}

	repos, _, _ := setup(t, `{"success":true,"data":null}`)
	page, err := repos.Media.List(context.Background(), resource.Query{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestMedia_UploadAndDeleteUnused(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true,"data":[{"_id":"m1","cloudinaryUrl":"https://cdn/x.png"}]}`)
	ctx := context.Background()

	media, err := repos.Media.Upload(ctx, "x.png", strings.NewReader("png"))
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, "https://cdn/x.png", media[0].Location())
	assert.Equal(t, http.MethodPost, rec.Last().Method)

	rec.respond(http.StatusOK, `{"success":true,"data":{"deletedCount":5}}`)
	n, err := repos.Media.DeleteUnused(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "/api/media/bulk/unused", rec.Last().Path)
}

func TestDashboard_QueryParams(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true,"data":[]}`)
	ctx := context.Background()

	_, err := repos.Dashboard.TopProducts(ctx, domain.PeriodWeek, 5)
	require.NoError(t, err)
	assert.Equal(t, "/api/dashboard/top-products", rec.Last().Path)
	assert.Equal(t, "limit=5&period=week", rec.Last().Query)

	_, err = repos.Dashboard.RecentOrders(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "limit=10", rec.Last().Query)

	rec.respond(http.StatusOK, `{"success":true,"data":{}}`)
	_, err = repos.Dashboard.SalesData(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "groupBy=day&period=month", rec.Last().Query)
}

func TestEmailTemplates_PreviewAndRestore(t *testing.T) {
	repos, rec, _ := setup(t, `{"success":true,"data":{"subject":"Hi Ann","html":"<p>Hi</p>"}}`)
	ctx := context.Background()

	preview, err := repos.EmailTemplates.Preview(ctx, "order_confirmation", map[string]any{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ann", preview.Subject)
	assert.Equal(t, "/api/email-templates/preview", rec.Last().Path)
	assert.Equal(t, "order_confirmation", rec.Last().Body["type"])

	rec.respond(http.StatusOK, `{"success":true,"data":{"type":"order_confirmation","isCustom":false}}`)
	tpl, err := repos.EmailTemplates.Restore(ctx, "order_confirmation")
	require.NoError(t, err)
	assert.False(t, tpl.IsCustom)
	assert.Equal(t, "/api/email-templates/order_confirmation/restore", rec.Last().Path)
}

func TestAuth_LoginStoresToken(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"token in data", `{"success":true,"data":{"token":"tok-1","admin":{"_id":"a1","email":"admin@glownatura.com"}}}`},
		{"token at top level", `{"success":true,"token":"tok-1","data":{"admin":{"_id":"a1","email":"admin@glownatura.com"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, rec, sess := setup(t, tt.body)

			res, err := repos.Auth.Login(context.Background(), Credentials{Email: "admin@glownatura.com", Password: "pw"})
			require.NoError(t, err)
			assert.Equal(t, "tok-1", res.Token)
			require.NotNil(t, res.Admin)
			assert.Equal(t, "a1", res.Admin.ID)
			assert.Equal(t, "tok-1", sess.Token())
			assert.True(t, repos.Auth.IsAuthenticated())
			assert.Equal(t, "/api/auth/login", rec.Last().Path)
		})
	}
}

func TestAuth_LoginFailureKeepsSessionEmpty(t *testing.T) {
	repos, rec, sess := setup(t, "")
	rec.respond(http.StatusForbidden, `{"success":false,"error":"Please verify your email","errorCode":"EMAIL_NOT_VERIFIED"}`)

	_, err := repos.Auth.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, apierror.CodeEmailNotVerified, apierror.CodeOf(err))
	assert.False(t, sess.HasToken())
}

func TestAuth_LogoutAlwaysClears(t *testing.T) {
	repos, rec, sess := setup(t, "")
	ctx := context.Background()
	require.NoError(t, sess.Set(ctx, "tok"))

	rec.respond(http.StatusInternalServerError, `{"success":false,"error":"boom"}`)
	err := repos.Auth.Logout(ctx)
	require.Error(t, err)
	assert.False(t, sess.HasToken())

	require.NoError(t, sess.Set(ctx, "tok"))
	rec.respond(http.StatusOK, `{"success":true}`)
	require.NoError(t, repos.Auth.Logout(ctx))
	assert.False(t, repos.Auth.IsAuthenticated())
}

func TestAuth_VerifyEmailWithoutToken(t *testing.T) {
	repos, _, sess := setup(t, `{"success":true,"message":"Email verified"}`)

	res, err := repos.Auth.VerifyEmail(context.Background(), "verify-abc")
	require.NoError(t, err)
	assert.Equal(t, "", res.Token)
	assert.False(t, sess.HasToken())
}
