// Package memory provides mutex-guarded in-memory store implementations.
// Every read and write on a store serializes through that store's single
// lock, so concurrent requests never observe partial writes. This is the
// default backend and the one the test suite runs against.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ember-vale/api/internal/auth"
	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/models"
)

// AccountStore holds user accounts, bans, and auth sessions behind one lock.
type AccountStore struct {
	mu       sync.Mutex
	users    map[string]*models.User    // by id
	bans     map[string][]*models.Ban   // by user id
	sessions map[string]*models.Session // by token

	now func() time.Time
}

// NewAccountStore returns an empty account/session store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		users:    make(map[string]*models.User),
		bans:     make(map[string][]*models.Ban),
		sessions: make(map[string]*models.Session),
		now:      time.Now,
	}
}

// CreateUser inserts a new account, enforcing case-insensitive uniqueness on
// username and email.
func (s *AccountStore) CreateUser(_ context.Context, username, email, passwordHash string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, email) {
			return nil, errs.ErrDuplicateUser
		}
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	s.users[user.ID] = user

	cpy := *user
	return &cpy, nil
}

// UserByCredential finds an account by username or email, case-insensitive.
func (s *AccountStore) UserByCredential(_ context.Context, credential string) (*models.User, error) {
	needle := strings.ToLower(strings.TrimSpace(credential))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.ToLower(u.Username) == needle || strings.ToLower(u.Email) == needle {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, errs.ErrUserNotFound
}

// UserByID finds an account by id.
func (s *AccountStore) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	cpy := *u
	return &cpy, nil
}

// TouchLastLogin records a successful login time.
func (s *AccountStore) TouchLastLogin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return errs.ErrUserNotFound
	}
	now := s.now()
	u.LastLoginAt = &now
	return nil
}

// IsBanned reports whether an active, non-expired ban exists for the user.
func (s *AccountStore) IsBanned(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, b := range s.bans[userID] {
		if !b.Active {
			continue
		}
		if b.ExpiresAt == nil || b.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// BanUser records a ban. A nil expiry is permanent.
func (s *AccountStore) BanUser(_ context.Context, userID, reason string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return errs.ErrUserNotFound
	}
	s.bans[userID] = append(s.bans[userID], &models.Ban{
		ID:        uuid.NewString(),
		UserID:    userID,
		Reason:    reason,
		BannedAt:  s.now(),
		ExpiresAt: expiresAt,
		Active:    true,
	})
	return nil
}

// CreateSession issues a fresh opaque token for the user.
func (s *AccountStore) CreateSession(_ context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &models.Session{
		Token:     token,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	s.sessions[token] = sess

	cpy := *sess
	return &cpy, nil
}

// ResolveSession returns the user id bound to a live token. Expired and
// revoked sessions are purged lazily on lookup.
func (s *AccountStore) ResolveSession(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return "", errs.ErrSessionNotFound
	}
	if sess.RevokedAt != nil || !sess.ExpiresAt.After(s.now()) {
		delete(s.sessions, token)
		return "", errs.ErrSessionNotFound
	}
	return sess.UserID, nil
}

// RevokeSession invalidates a token; unknown tokens are a no-op.
func (s *AccountStore) RevokeSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}
