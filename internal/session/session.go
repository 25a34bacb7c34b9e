// Package session holds the process-wide bearer token and its durable store.
//
// A Session is created once at startup, loaded from the store with Init,
// written by login and email verification, and cleared by logout or by the
// transport when the backend answers 401.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	"go.uber.org/zap"
)

const (
	// DefaultKey is the well-known name the token is stored under
	DefaultKey = "auth_token"
	// DefaultTTL is the external lifetime of a session token
	DefaultTTL = 7 * 24 * time.Hour
)

// Options configures a Session
type Options struct {
	Key    string
	TTL    time.Duration
	Logger *logger.Logger
	// Now overrides the clock, for tests
	Now func() time.Time
}

// Session is the single owner of the bearer token
type Session struct {
	store Store
	key   string
	ttl   time.Duration
	now   func() time.Time
	log   *logger.Logger

	mu  sync.RWMutex
	rec *Record
}

// New creates an empty session backed by store. Call Init to load the
// persisted token.
func New(store Store, opts Options) *Session {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	return &Session{
		store: store,
		key:   opts.Key,
		ttl:   opts.TTL,
		now:   opts.Now,
		log:   opts.Logger.Named("session"),
	}
}

// Init loads the persisted token. A missing or expired token leaves the
// session empty and is not an error.
func (s *Session) Init(ctx context.Context) error {
	rec, err := s.store.Load(ctx, s.key)
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return err
	}

	if rec.Token == "" || rec.Expired(s.now()) {
		s.log.Debug("discarding expired session", zap.Time("expires_at", rec.ExpiresAt))
		return s.store.Delete(ctx, s.key)
	}

	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()

	s.log.Debug("session restored", zap.Time("expires_at", rec.ExpiresAt))
	return nil
}

// Token returns the current bearer token, or "" when there is none or it
// has expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil || s.rec.Expired(s.now()) {
		return ""
	}
	return s.rec.Token
}

// HasToken reports whether a usable token is held
func (s *Session) HasToken() bool {
	return s.Token() != ""
}

// ExpiresAt returns the expiry of the current token, zero when empty
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return time.Time{}
	}
	return s.rec.ExpiresAt
}

// Set stores a freshly issued token. Expiry is issuance plus the session
// TTL, or the token's own exp claim when it is a JWT expiring sooner.
func (s *Session) Set(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("session: empty token")
	}

	now := s.now()
	rec := &Record{
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if exp, ok := jwtExpiry(token); ok && exp.Before(rec.ExpiresAt) {
		rec.ExpiresAt = exp
	}

	if err := s.store.Save(ctx, s.key, rec); err != nil {
		return err
	}

	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()

	s.log.Debug("session stored", zap.Time("expires_at", rec.ExpiresAt))
	return nil
}

// Clear drops the token from memory and from the store. The in-memory copy
// is dropped even when the store fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.rec = nil
	s.mu.Unlock()

	return s.store.Delete(ctx, s.key)
}

// Logout tears the session down on explicit user request
func (s *Session) Logout(ctx context.Context) error {
	s.log.Info("logging out")
	return s.Clear(ctx)
}

func jwtExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
