// Package apierror defines the normalized error every API call fails with.
//
// An *Error is either a network failure (no response reached the client,
// Status == 0) or an HTTP failure carrying the response status, the backend
// error code (or an HTTP_<status> fallback) and a message.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind discriminates the two failure shapes
type Kind int

const (
	// KindNetwork means no response was received
	KindNetwork Kind = iota + 1
	// KindHTTP means the server answered with a non-2xx status
	KindHTTP
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Error codes produced by the client or defined by the backend
const (
	CodeNetwork            = "NETWORK_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeEmailService       = "EMAIL_SERVICE_ERROR"
	CodeEmailExists        = "EMAIL_ALREADY_EXISTS"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeServer             = "SERVER_ERROR"
)

// Default messages
const (
	MessageNetwork = "Network error. Please check your internet connection."
	MessageDefault = "An error occurred"
)

// Error is the normalized API failure
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Status  int
	// Err is the raw cause, kept for diagnostics
	Err error
}

// Network builds a failure for a request that got no response
func Network(cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: MessageNetwork,
		Code:    CodeNetwork,
		Status:  0,
		Err:     cause,
	}
}

// HTTP builds a failure for a non-2xx response. Empty code and message fall
// back to HTTP_<status> and the default message.
func HTTP(status int, code, message string, cause error) *Error {
	if code == "" {
		code = StatusCode(status)
	}
	if message == "" {
		message = MessageDefault
	}
	return &Error{
		Kind:    KindHTTP,
		Message: message,
		Code:    code,
		Status:  status,
		Err:     cause,
	}
}

// StatusCode returns the synthesized HTTP_<status> code
func StatusCode(status int) string {
	return fmt.Sprintf("HTTP_%d", status)
}

func (e *Error) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether no response reached the client
func (e *Error) IsNetwork() bool {
	return e.Kind == KindNetwork
}

// As extracts the normalized error from an error chain
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// CodeOf returns the error code, or "" when err is not an API error
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

// StatusOf returns the HTTP status, 0 for network failures and non-API errors
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return 0
}

// MessageOf returns the user-facing message of err
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsNetwork reports whether err is a network failure
func IsNetwork(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindNetwork
}

// IsUnauthorized reports whether err is an HTTP 401
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is an HTTP 404 or carries NOT_FOUND
func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && (e.Status == http.StatusNotFound || e.Code == CodeNotFound)
}
