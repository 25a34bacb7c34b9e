package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetwork(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Network(cause)

	assert.Equal(t, KindNetwork, err.Kind)
	assert.Equal(t, 0, err.Status)
	assert.Equal(t, CodeNetwork, err.Code)
	assert.Equal(t, MessageNetwork, err.Message)
	assert.True(t, err.IsNetwork())
	assert.ErrorIs(t, err, cause)
}

func TestHTTP_Fallbacks(t *testing.T) {
	err := HTTP(http.StatusInternalServerError, "", "Database unavailable", nil)
	assert.Equal(t, "HTTP_500", err.Code)
	assert.Equal(t, "Database unavailable", err.Message)
	assert.Equal(t, 500, err.Status)

	err = HTTP(http.StatusBadRequest, "", "", nil)
	assert.Equal(t, "HTTP_400", err.Code)
	assert.Equal(t, MessageDefault, err.Message)
}

func TestHTTP_BackendCodeWins(t *testing.T) {
	err := HTTP(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password", nil)
	assert.Equal(t, CodeInvalidCredentials, err.Code)
	assert.Equal(t, KindHTTP, err.Kind)
	assert.False(t, err.IsNetwork())
}

func TestHelpers_ThroughWrapping(t *testing.T) {
	base := HTTP(http.StatusNotFound, CodeNotFound, "Product not found", nil)
	wrapped := fmt.Errorf("load product: %w", base)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)

	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.Equal(t, http.StatusNotFound, StatusOf(wrapped))
	assert.Equal(t, "Product not found", MessageOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsUnauthorized(wrapped))
	assert.False(t, IsNetwork(wrapped))
}

func TestHelpers_PlainError(t *testing.T) {
	err := errors.New("boom")

	_, ok := As(err)
	assert.False(t, ok)
	assert.Equal(t, "", CodeOf(err))
	assert.Equal(t, 0, StatusOf(err))
	assert.Equal(t, "boom", MessageOf(err))
	assert.Equal(t, "", MessageOf(nil))
}

func TestError_String(t *testing.T) {
	assert.Equal(t, "NETWORK_ERROR: "+MessageNetwork, Network(nil).Error())
	assert.Equal(t, "HTTP_502 (status 502): An error occurred", HTTP(502, "", "", nil).Error())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name  string
		op    Operation
		err   error
		title string
	}{
		{"network always connection failed", OpLogin, Network(nil), "Connection failed"},
		{"login not verified", OpLogin, HTTP(403, CodeEmailNotVerified, "x", nil), "Email not verified"},
		{"login locked", OpLogin, HTTP(423, CodeAccountLocked, "x", nil), "Account locked"},
		{"login invalid by code", OpLogin, HTTP(401, CodeInvalidCredentials, "x", nil), "Invalid credentials"},
		{"login invalid by message", OpLogin, HTTP(401, "", "Invalid password", nil), "Invalid credentials"},
		{"login unknown", OpLogin, HTTP(500, "", "kaput", nil), "Login failed"},
		{"register exists", OpRegister, HTTP(409, CodeEmailExists, "x", nil), "Email already registered"},
		{"register weak", OpRegister, HTTP(400, CodeWeakPassword, "x", nil), "Password too weak"},
		{"register invalid email", OpRegister, HTTP(400, CodeInvalidEmail, "x", nil), "Invalid email address"},
		{"register email service", OpRegister, HTTP(502, CodeEmailService, "x", nil), "Registration successful, but email failed"},
		{"forgot not found", OpForgotPassword, HTTP(404, CodeUserNotFound, "x", nil), "Email not found"},
		{"forgot email service", OpForgotPassword, HTTP(502, CodeEmailService, "x", nil), "Email service unavailable"},
		{"generic", OpGeneric, HTTP(500, "", "Database unavailable", nil), "Request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.title, Describe(tt.op, tt.err).Title)
		})
	}
}

func TestDescribe_FallbackUsesRawMessage(t *testing.T) {
	d := Describe(OpGeneric, HTTP(500, "", "Database unavailable", nil))
	assert.Equal(t, "Database unavailable", d.Description)

	d = Describe(OpLogin, &Error{Kind: KindHTTP, Status: 500, Code: "HTTP_500"})
	assert.Equal(t, "Unable to sign in. Please try again.", d.Description)
}
