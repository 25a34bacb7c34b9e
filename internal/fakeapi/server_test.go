package fakeapi

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret"
	testEmail    = "admin@glownatura.test"
	testPassword = "glownatura123"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{
		JWTSecret:     testSecret,
		AdminEmail:    testEmail,
		AdminPassword: testPassword,
		Seed:          true,
		Now:           func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return s
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	ErrorCode  string          `json:"errorCode"`
	Pagination *struct {
		Page        int  `json:"page"`
		Limit       int  `json:"limit"`
		Total       int  `json:"total"`
		TotalPages  int  `json:"totalPages"`
		HasNextPage bool `json:"hasNextPage"`
		HasPrevPage bool `json:"hasPrevPage"`
	} `json:"pagination"`
}

func do(t *testing.T, s *Server, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func login(t *testing.T, s *Server) string {
	t.Helper()
	w, env := do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{"email": testEmail, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestNew_RequiresSecretAndAdmin(t *testing.T) {
	_, err := New(Config{AdminEmail: "a@b.c", AdminPassword: "x"})
	assert.Error(t, err)

	_, err = New(Config{JWTSecret: "s"})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	w, env := do(t, newTestServer(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w, env := do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{"email": testEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.ErrorCode)
	assert.False(t, env.Success)

	token := login(t, s)
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(DefaultTokenTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	w, env := do(t, s, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", env.ErrorCode)

	w, _ = do(t, s, http.MethodGet, "/api/products", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, s)
	w, _ = do(t, s, http.MethodGet, "/api/products", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// logout revokes the token
	w, _ = do(t, s, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, s, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   map[string]string
		status int
		code   string
	}{
		{"invalid email", map[string]string{"name": "A", "email": "nope", "password": "longenough"}, http.StatusBadRequest, "INVALID_EMAIL"},
		{"weak password", map[string]string{"name": "A", "email": "a@b.c", "password": "short"}, http.StatusBadRequest, "WEAK_PASSWORD"},
		{"existing email", map[string]string{"name": "A", "email": testEmail, "password": "longenough"}, http.StatusConflict, "EMAIL_ALREADY_EXISTS"},
		{"missing fields", map[string]string{"email": "a@b.c"}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, s, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, env.ErrorCode)
		})
	}
}

func TestRegisterThenLoginRequiresVerification(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"name": "New Admin", "email": "new@glownatura.test", "password": "longenough"}

	w, _ := do(t, s, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{"email": body["email"], "password": body["password"]})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "EMAIL_NOT_VERIFIED", env.ErrorCode)

	sent := s.SentEmails()
	require.Len(t, sent, 1)
	w, _ = do(t, s, http.MethodPost, "/api/auth/verify-email", "", map[string]string{"token": sent[0].Token})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{"email": body["email"], "password": body["password"]})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListProducts_Pagination(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	w, env := do(t, s, http.MethodGet, "/api/products?page=2&limit=5", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Page)
	assert.Equal(t, 5, env.Pagination.Limit)
	assert.Equal(t, 12, env.Pagination.Total)
	assert.Equal(t, 3, env.Pagination.TotalPages)
	assert.True(t, env.Pagination.HasNextPage)
	assert.True(t, env.Pagination.HasPrevPage)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 5)
	// category is populated on the way out
	_, isObject := items[0]["category"].(map[string]any)
	assert.True(t, isObject)

	_, env = do(t, s, http.MethodGet, "/api/products?page=9&limit=5", token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Empty(t, items)
}

func firstOrderWithStatus(t *testing.T, s *Server, status string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders.all() {
		if string(o.Status) == status {
			return o.ID
		}
	}
	t.Fatalf("no seeded order with status %s", status)
	return ""
}

func TestOrderStatusStateMachine(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)
	id := firstOrderWithStatus(t, s, "processing")
	path := "/api/orders/" + id + "/status"

	w, env := do(t, s, http.MethodPut, path, token, map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "Cannot change order status")

	w, env = do(t, s, http.MethodPut, path, token, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Tracking number is required when status is shipped", env.Error)

	w, _ = do(t, s, http.MethodPut, path, token, map[string]string{"status": "shipped", "trackingNumber": "TH42"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, s, http.MethodPut, "/api/orders/"+id+"/cancel", token, map[string]string{"reason": "late"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportOrders_CSV(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	w, _ := do(t, s, http.MethodGet, "/api/orders/export?status=delivered", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="orders-2026-03-01.csv"`, w.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "delivered", records[1][10])
}

func TestInjectFault_IsOneShot(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	s.InjectFault(http.MethodGet, "/api/products", Fault{Status: http.StatusInternalServerError, Message: "Database unavailable"})

	w, env := do(t, s, http.MethodGet, "/api/products", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Database unavailable", env.Error)
	assert.Empty(t, env.ErrorCode)

	w, _ = do(t, s, http.MethodGet, "/api/products", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMediaDeleteUnused(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	w, env := do(t, s, http.MethodDelete, "/api/media/bulk/unused", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		DeletedCount int `json:"deletedCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.DeletedCount)
}

func TestDashboardStats(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	w, env := do(t, s, http.MethodGet, "/api/dashboard/stats?period=month", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		TotalOrders      int `json:"totalOrders"`
		PendingOrders    int `json:"pendingOrders"`
		TotalProducts    int `json:"totalProducts"`
		LowStockProducts int `json:"lowStockProducts"`
		PendingReviews   int `json:"pendingReviews"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 7, stats.TotalOrders)
	assert.Equal(t, 2, stats.PendingOrders)
	assert.Equal(t, 12, stats.TotalProducts)
	assert.Equal(t, 4, stats.LowStockProducts)
	assert.Equal(t, 3, stats.PendingReviews)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "rose-hip-facial-oil", slugify("  Rose Hip  Facial Oil! "))
	assert.Equal(t, "", slugify("!!"))
}
