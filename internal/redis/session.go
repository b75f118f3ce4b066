package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ember-vale/api/internal/auth"
	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/models"
)

// sessionData is the JSON payload stored per session key.
type sessionData struct {
	UserID    string    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps opaque session tokens in Redis. The key TTL enforces
// expiry, so no lazy purge is needed; revocation deletes the key.
type SessionStore struct {
	client *Client
}

// NewSessionStore binds a session store to a connected client.
func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// CreateSession issues a fresh opaque token with the given TTL.
func (s *SessionStore) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	data := sessionData{UserID: userID, IssuedAt: now, ExpiresAt: now.Add(ttl)}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(token), payload, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to set session: %w", err)
	}

	return &models.Session{
		Token:     token,
		UserID:    userID,
		IssuedAt:  data.IssuedAt,
		ExpiresAt: data.ExpiresAt,
	}, nil
}

// ResolveSession returns the user id bound to a live token.
func (s *SessionStore) ResolveSession(ctx context.Context, token string) (string, error) {
	payload, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err == goredis.Nil {
		return "", errs.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	var data sessionData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return "", fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return data.UserID, nil
}

// RevokeSession deletes the session key; unknown tokens are a no-op.
func (s *SessionStore) RevokeSession(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
