package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ember-vale/api/internal/auth"
	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/middleware"
	"github.com/ember-vale/api/internal/presence"
	"github.com/ember-vale/api/internal/store"
)

// AuthHandler handles registration, login, logout, and token refresh.
type AuthHandler struct {
	accounts   store.AccountStore
	sessions   store.SessionStore
	presence   *presence.Tracker
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts store.AccountStore, sessions store.SessionStore, tracker *presence.Tracker, sessionTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		sessions:   sessions,
		presence:   tracker,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body. Credential may be a
// username or an email.
type LoginRequest struct {
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "username and email are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "email is not valid")
		return
	}
	if len(req.Password) < 8 {
		e := errs.WeakPassword()
		writeError(w, e.Status, e.Code, e.Message)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	user, err := h.accounts.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	writeOK(w, http.StatusCreated, map[string]any{
		"user": user,
		"next": "login_required",
	})
}

// Login handles POST /auth/login. A successful login issues an opaque
// session token (also set as a cookie) plus a JWT access/refresh pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Credential) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "credential and password are required")
		return
	}

	user, err := h.accounts.UserByCredential(r.Context(), req.Credential)
	if err != nil {
		// Unknown credential and wrong password report identically.
		e := errs.ErrInvalidCredentials
		writeError(w, e.Status, e.Code, e.Message)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		e := errs.ErrInvalidCredentials
		writeError(w, e.Status, e.Code, e.Message)
		return
	}

	banned, err := h.accounts.IsBanned(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if banned {
		e := errs.ErrBanned
		writeError(w, e.Status, e.Code, e.Message)
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), user.ID, h.sessionTTL)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if err := h.accounts.TouchLastLogin(r.Context(), user.ID); err != nil {
		h.logger.Warn("failed to record login time", zap.Error(err))
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("user logged in", zap.String("user_id", user.ID))

	writeOK(w, http.StatusOK, map[string]any{
		"session": map[string]any{
			"token":      session.Token,
			"expires_in": int(h.sessionTTL.Seconds()),
		},
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}

// Logout handles POST /auth/logout. It revokes the presented session and
// drops the user from presence. Logging out without a live session is fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := middleware.TokenFromRequest(r)
	if token != "" {
		if userID, err := h.sessions.ResolveSession(r.Context(), token); err == nil {
			h.presence.Disconnect(userID)
		}
		if err := h.sessions.RevokeSession(r.Context(), token); err != nil {
			h.logger.Warn("failed to revoke session", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeOK(w, http.StatusOK, map[string]any{"logged_out": true})
}

// Refresh handles POST /auth/refresh, exchanging a refresh token for a
// fresh JWT pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "refresh_token is required")
		return
	}

	claims, err := auth.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		e := errs.ErrUnauthorized
		writeError(w, e.Status, e.Code, e.Message)
		return
	}

	user, err := h.accounts.UserByID(r.Context(), claims.Subject)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	banned, err := h.accounts.IsBanned(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if banned {
		e := errs.ErrBanned
		writeError(w, e.Status, e.Code, e.Message)
		return
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}
