package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/glownatura-admin/internal/apierror"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/pkg/response"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var errEmailTaken = errors.New("fakeapi: email already registered")

type adminRow struct {
	domain.Admin
	passwordHash []byte
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type profileRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// SentEmail is a message the server would have delivered
type SentEmail struct {
	To      string
	Subject string
	Token   string
}

func (s *Server) createAdmin(name, email, password string, role domain.AdminRole, verified bool) (*adminRow, error) {
	for _, a := range s.admins.all() {
		if strings.EqualFold(a.Email, email) {
			return nil, errEmailTaken
		}
	}

	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	row := &adminRow{
		Admin: domain.Admin{
			Name:          name,
			Email:         strings.ToLower(email),
			Role:          role,
			IsActive:      true,
			EmailVerified: verified,
		},
		passwordHash: hash,
	}
	row.ID = newID()
	row.CreatedAt = now
	row.UpdatedAt = now

	s.admins.put(row.ID, row)
	return row, nil
}

func (s *Server) findAdmin(email string) *adminRow {
	for _, a := range s.admins.all() {
		if strings.EqualFold(a.Email, email) {
			return a
		}
	}
	return nil
}

func (s *Server) issueToken(adminID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		ID:        newID(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) parseToken(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[claims.ID] {
		return "", errors.New("token revoked")
	}
	if _, ok := s.admins.get(claims.Subject); !ok {
		return "", errors.New("unknown admin")
	}
	return claims.Subject, nil
}

func (s *Server) currentAdmin(c *gin.Context) (*adminRow, bool) {
	row, ok := s.admins.get(c.GetString(adminIDKey))
	if !ok {
		response.Unauthorized(c, "Admin not found")
	}
	return row, ok
}

// POST /api/auth/login
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.findAdmin(req.Email)
	if row == nil || bcrypt.CompareHashAndPassword(row.passwordHash, []byte(req.Password)) != nil {
		response.Error(c, http.StatusUnauthorized, apierror.CodeInvalidCredentials, "Invalid email or password")
		return
	}
	if !row.IsActive {
		response.Error(c, http.StatusLocked, apierror.CodeAccountLocked, "Account is locked")
		return
	}
	if !row.EmailVerified {
		response.Error(c, http.StatusForbidden, apierror.CodeEmailNotVerified, "Please verify your email before logging in")
		return
	}

	token, err := s.issueToken(row.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	s.log.Info("admin logged in", zap.String("admin_id", row.ID))
	response.Success(c, gin.H{"token": token, "admin": row.Admin})
}

// POST /api/auth/register
func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Name, email and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		response.Error(c, http.StatusBadRequest, apierror.CodeInvalidEmail, "Invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		response.Error(c, http.StatusBadRequest, apierror.CodeWeakPassword,
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.createAdmin(req.Name, req.Email, req.Password, domain.RoleAdmin, false)
	if errors.Is(err, errEmailTaken) {
		response.Error(c, http.StatusConflict, apierror.CodeEmailExists, "Email is already registered")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	s.sendVerification(row)
	c.JSON(http.StatusCreated, response.Response{
		Success: true,
		Message: "Registration successful. Please check your email to verify your account.",
		Data:    gin.H{"admin": row.Admin},
	})
}

func (s *Server) sendVerification(row *adminRow) {
	token := newID()
	s.verifyTokens[token] = row.ID
	s.sentEmails = append(s.sentEmails, SentEmail{To: row.Email, Subject: "Verify your email", Token: token})
}

// POST /api/auth/verify-email
func (s *Server) verifyEmail(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Verification token is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.verifyTokens[req.Token]
	row, found := s.admins.get(id)
	if !ok || !found {
		response.Error(c, http.StatusBadRequest, apierror.CodeValidation, "Invalid or expired verification token")
		return
	}
	delete(s.verifyTokens, req.Token)
	row.EmailVerified = true
	row.UpdatedAt = s.now()

	token, err := s.issueToken(row.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Response{
		Success: true,
		Message: "Email verified successfully",
		Data:    gin.H{"token": token, "admin": row.Admin},
	})
}

// POST /api/auth/resend-verification
func (s *Server) resendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Email is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.findAdmin(req.Email)
	if row == nil {
		response.Error(c, http.StatusNotFound, apierror.CodeUserNotFound, "No account found with this email")
		return
	}
	if row.EmailVerified {
		response.BadRequest(c, "Email is already verified")
		return
	}
	s.sendVerification(row)
	response.SuccessMessage(c, "Verification email sent", nil)
}

// POST /api/auth/forgot-password
func (s *Server) forgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Email is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.findAdmin(req.Email)
	if row == nil {
		response.Error(c, http.StatusNotFound, apierror.CodeUserNotFound, "No account found with this email")
		return
	}

	token := newID()
	s.resetTokens[token] = row.ID
	s.sentEmails = append(s.sentEmails, SentEmail{To: row.Email, Subject: "Reset your password", Token: token})
	response.SuccessMessage(c, "Password reset email sent", nil)
}

// POST /api/auth/reset-password
func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Token and password are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		response.Error(c, http.StatusBadRequest, apierror.CodeWeakPassword,
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.resetTokens[req.Token]
	row, found := s.admins.get(id)
	if !ok || !found {
		response.BadRequest(c, "Invalid or expired reset token")
		return
	}
	if err := s.setPassword(row, req.Password); err != nil {
		response.InternalError(c, err)
		return
	}
	delete(s.resetTokens, req.Token)
	response.SuccessMessage(c, "Password has been reset", nil)
}

func (s *Server) setPassword(row *adminRow, password string) error {
	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	row.passwordHash = hash
	row.UpdatedAt = s.now()
	return nil
}

// GET /api/auth/me
func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.currentAdmin(c)
	if !ok {
		return
	}
	response.Success(c, row.Admin)
}

// POST /api/auth/logout
func (s *Server) logout(c *gin.Context) {
	var claims jwt.RegisteredClaims
	token := bearerToken(c.GetHeader("Authorization"))
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ID != "" {
		s.mu.Lock()
		s.revoked[claims.ID] = true
		s.mu.Unlock()
	}
	response.SuccessMessage(c, "Logged out successfully", nil)
}

// PUT /api/auth/change-password
func (s *Server) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Current and new password are required")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		response.Error(c, http.StatusBadRequest, apierror.CodeWeakPassword,
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.currentAdmin(c)
	if !ok {
		return
	}
	if bcrypt.CompareHashAndPassword(row.passwordHash, []byte(req.CurrentPassword)) != nil {
		response.BadRequest(c, "Current password is incorrect")
		return
	}
	if err := s.setPassword(row, req.NewPassword); err != nil {
		response.InternalError(c, err)
		return
	}
	response.SuccessMessage(c, "Password changed successfully", nil)
}

// PUT /api/auth/profile
func (s *Server) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.currentAdmin(c)
	if !ok {
		return
	}
	if req.Email != "" && !strings.EqualFold(req.Email, row.Email) {
		if s.findAdmin(req.Email) != nil {
			response.Error(c, http.StatusConflict, apierror.CodeEmailExists, "Email is already registered")
			return
		}
		row.Email = strings.ToLower(req.Email)
	}
	if req.Name != "" {
		row.Name = req.Name
	}
	if req.Avatar != "" {
		row.Avatar = req.Avatar
	}
	row.UpdatedAt = s.now()
	response.Success(c, row.Admin)
}

// SentEmails returns every message the server has sent, oldest first
func (s *Server) SentEmails() []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentEmail(nil), s.sentEmails...)
}
