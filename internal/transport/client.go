// Package transport is the HTTP client for the storefront admin API. It
// injects the bearer token, propagates trace context and normalizes every
// failure into an *apierror.Error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/glownatura-admin/internal/apierror"
	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	"github.com/prohmpiriya/glownatura-admin/pkg/retry"
	"github.com/prohmpiriya/glownatura-admin/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ErrUnsupportedMethod is returned for methods outside GET, POST, PUT, PATCH and DELETE
var ErrUnsupportedMethod = errors.New("transport: unsupported method")

// RequestIDHeader carries a per-request correlation id
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds every request
const DefaultTimeout = 60 * time.Second

// Config holds client settings
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	UserAgent     string
	RedirectDelay time.Duration
	// Retry applies to network failures of GET requests only
	Retry retry.Config
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithNavigator sets the UI context redirected to login on 401
func WithNavigator(nav Navigator) Option {
	return func(c *Client) {
		c.navigator = nav
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// Client sends API requests
type Client struct {
	baseURL    string
	userAgent  string
	http       *http.Client
	session    Session
	navigator  Navigator
	normalizer *Normalizer
	retrier    *retry.Retrier
	log        *logger.Logger
}

// Response is a successful (2xx) API response, body untouched
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v any) error {
	if v == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// New creates a client. sess may be nil for anonymous use.
func New(cfg Config, sess Session, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		session:   sess,
		log:       logger.Get(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("transport")

	c.normalizer = NewNormalizer(sess, c.navigator, cfg.RedirectDelay, c.log)
	c.retrier = retry.New(cfg.Retry, apierror.IsNetwork)
	return c
}

// BaseURL returns the API origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

func supported(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Do sends a request. body is JSON encoded unless WithRawBody is given.
// Failures are *apierror.Error except for unsupported methods and bodies
// that cannot be encoded.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	if !supported(method) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	ro := newRequestOptions(opts)

	var payload []byte
	switch {
	case ro.raw != nil:
		data, err := io.ReadAll(ro.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		payload = data
	case body != nil:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = data
	}

	if method != http.MethodGet || !c.retrier.Config().Enabled() {
		return c.send(ctx, method, path, payload, ro)
	}

	var resp *Response
	_, err := c.retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.send(ctx, method, path, payload, ro)
		return err
	}, func(attempt int, err error, wait time.Duration) {
		c.log.Info("retrying request",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, ro *requestOptions) (*Response, error) {
	ctx, span := telemetry.StartClientSpan(ctx, method, path)
	defer span.End()

	target := c.baseURL + path
	if len(ro.query) > 0 {
		target += "?" + ro.query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, c.normalizer.Network(err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", ro.contentType)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, vs := range ro.header {
		req.Header[k] = vs
	}
	telemetry.InjectHeaders(ctx, req.Header)

	log := c.log.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		apiErr := c.normalizer.Network(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, apiErr.Code)
		span.SetAttributes(attribute.String("api.error_code", apiErr.Code))
		log.Warn("request failed", zap.Duration("latency", time.Since(start)), zap.Error(err))
		return nil, apiErr
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		apiErr := c.normalizer.Network(err)
		span.RecordError(err)
		log.Warn("failed to read response", zap.Int("status", res.StatusCode), zap.Error(err))
		return nil, apiErr
	}

	latency := time.Since(start)
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := c.normalizer.HTTP(ctx, res.StatusCode, data)
		span.SetStatus(codes.Error, apiErr.Code)
		span.SetAttributes(attribute.String("api.error_code", apiErr.Code))
		log.Warn("request rejected",
			zap.Int("status", res.StatusCode),
			zap.String("code", apiErr.Code),
			zap.Duration("latency", latency),
		)
		return nil, apiErr
	}

	log.Debug("request completed", zap.Int("status", res.StatusCode), zap.Duration("latency", latency))
	return &Response{Status: res.StatusCode, Header: res.Header, Body: data}, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any, opts []RequestOption) error {
	resp, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Get sends a GET and decodes the body into out (when non-nil)
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodGet, path, nil, out, opts)
}

// Post sends a POST
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPost, path, body, out, opts)
}

// Put sends a PUT
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPut, path, body, out, opts)
}

// Patch sends a PATCH
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPatch, path, body, out, opts)
}

// Delete sends a DELETE
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodDelete, path, nil, out, opts)
}

// Decode sends a request and decodes the response into a new T
func Decode[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (*T, error) {
	var out T
	if err := c.call(ctx, method, path, body, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}
