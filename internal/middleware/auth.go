package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ember-vale/api/internal/auth"
	"github.com/ember-vale/api/internal/store"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDContextKey is the key for storing the resolved user id in request context
	UserIDContextKey contextKey = "user_id"

	// TokenContextKey is the key for storing the presented token in request context
	TokenContextKey contextKey = "token"

	// SessionCookieName is the cookie carrying the opaque session token
	SessionCookieName = "session_id"
)

// Authenticator resolves inbound credentials to a trusted user id. It accepts
// either the session cookie or a Bearer token; a Bearer value may be an
// opaque session token or a JWT access token. Banned users resolve to
// nothing, exactly like a missing session.
type Authenticator struct {
	accounts store.AccountStore
	sessions store.SessionStore
}

// NewAuthenticator builds an Authenticator over the given stores.
func NewAuthenticator(accounts store.AccountStore, sessions store.SessionStore) *Authenticator {
	return &Authenticator{accounts: accounts, sessions: sessions}
}

// TokenFromRequest extracts the presented token: session cookie first, then
// the Authorization Bearer header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ResolveUserID maps a token to a non-banned user id, or fails.
func (a *Authenticator) ResolveUserID(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}

	userID, err := a.sessions.ResolveSession(ctx, token)
	if err != nil {
		// Not a live session; the bearer value may be a JWT access token.
		claims, jwtErr := auth.ValidateToken(token)
		if jwtErr != nil {
			return "", false
		}
		userID = claims.UserID
	}

	banned, err := a.accounts.IsBanned(ctx, userID)
	if err != nil || banned {
		return "", false
	}
	return userID, true
}

// RequireUser is a middleware that rejects requests without a resolvable,
// non-banned user.
func (a *Authenticator) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		userID, ok := a.ResolveUserID(r.Context(), token)
		if !ok {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		ctx = context.WithValue(ctx, TokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// UserID extracts the resolved user id from request context.
func UserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDContextKey).(string)
	return userID, ok
}

// Token extracts the presented token from request context.
func Token(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(TokenContextKey).(string)
	return token, ok
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"ok": false,
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": "valid non-banned session required",
		},
	})
}
