package repository

import (
	"context"
	"net/http"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

const authBase = "/api/auth"

// Session is the token holder the auth service writes to
type Session interface {
	Token() string
	HasToken() bool
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdate struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// AuthResult is what login and email verification yield
type AuthResult struct {
	Token string        `json:"token"`
	Admin *domain.Admin `json:"admin,omitempty"`
}

type authBody struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	Message string     `json:"message"`
	Data    AuthResult `json:"data"`
}

// result accepts the token at top level or inside data
func (b *authBody) result() *AuthResult {
	res := b.Data
	if res.Token == "" {
		res.Token = b.Token
	}
	return &res
}

// Auth is the admin account service
type Auth struct {
	client    *transport.Client
	session   Session
	endpoints resource.Endpoints
}

func NewAuth(c *transport.Client, sess Session) *Auth {
	return &Auth{client: c, session: sess, endpoints: resource.Endpoints{Base: authBase}}
}

func (a *Auth) authenticate(ctx context.Context, path string, body any) (*AuthResult, error) {
	var env authBody
	if err := a.client.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}

	res := env.result()
	if res.Token != "" {
		if err := a.session.Set(ctx, res.Token); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Login exchanges credentials for a token and stores it in the session
func (a *Auth) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return a.authenticate(ctx, a.endpoints.Sub("login"), creds)
}

// Register creates an account. No token is issued until the email is verified.
func (a *Auth) Register(ctx context.Context, reg Registration) (*domain.Admin, error) {
	res, err := resource.Call[AuthResult](ctx, a.client, http.MethodPost, a.endpoints.Sub("register"), reg)
	if err != nil {
		return nil, err
	}
	return res.Admin, nil
}

// VerifyEmail confirms an address and signs the admin in when a token comes back
func (a *Auth) VerifyEmail(ctx context.Context, token string) (*AuthResult, error) {
	return a.authenticate(ctx, a.endpoints.Sub("verify-email"), map[string]any{"token": token})
}

func (a *Auth) ResendVerification(ctx context.Context, email string) error {
	return resource.Exec(ctx, a.client, http.MethodPost, a.endpoints.Sub("resend-verification"), map[string]any{"email": email})
}

func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	return resource.Exec(ctx, a.client, http.MethodPost, a.endpoints.Sub("forgot-password"), map[string]any{"email": email})
}

func (a *Auth) ResetPassword(ctx context.Context, token, password string) error {
	return resource.Exec(ctx, a.client, http.MethodPost, a.endpoints.Sub("reset-password"), map[string]any{
		"token":    token,
		"password": password,
	})
}

func (a *Auth) ChangePassword(ctx context.Context, current, next string) error {
	return resource.Exec(ctx, a.client, http.MethodPut, a.endpoints.Sub("change-password"), map[string]any{
		"currentPassword": current,
		"newPassword":     next,
	})
}

func (a *Auth) UpdateProfile(ctx context.Context, p ProfileUpdate) (*domain.Admin, error) {
	return resource.Call[domain.Admin](ctx, a.client, http.MethodPut, a.endpoints.Sub("profile"), p)
}

// Me returns the signed-in admin
func (a *Auth) Me(ctx context.Context) (*domain.Admin, error) {
	return resource.Call[domain.Admin](ctx, a.client, http.MethodGet, a.endpoints.Sub("me"), nil)
}

// Logout notifies the server and always clears the local session. The
// server error, if any, is still returned.
func (a *Auth) Logout(ctx context.Context) (err error) {
	defer func() {
		if clearErr := a.session.Clear(context.WithoutCancel(ctx)); err == nil {
			err = clearErr
		}
	}()
	return resource.Exec(ctx, a.client, http.MethodPost, a.endpoints.Sub("logout"), nil)
}

// IsAuthenticated reports whether a token is held locally. It does not
// contact the server.
func (a *Auth) IsAuthenticated() bool {
	return a.session.HasToken()
}
