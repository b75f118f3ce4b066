package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ember-vale/api/internal/auth"
	"github.com/ember-vale/api/internal/catalog"
	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/models"
)

// Store implements the account, session, and profile stores on one database.
type Store struct {
	db      *DB
	catalog *catalog.Catalog
}

// NewStore binds a store to a connected database and the game catalog.
func NewStore(db *DB, cat *catalog.Catalog) *Store {
	return &Store{db: db, catalog: cat}
}

// CreateUser inserts a new account. Uniqueness is enforced by the
// case-insensitive unique indexes on username and email.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
	}

	query := `
		INSERT INTO users (user_id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query, user.ID, user.Username, user.Email, passwordHash).Scan(&user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, errs.ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

// UserByCredential finds an account by username or email, case-insensitive.
func (s *Store) UserByCredential(ctx context.Context, credential string) (*models.User, error) {
	needle := strings.ToLower(strings.TrimSpace(credential))

	var user models.User
	query := `
		SELECT user_id, username, email, password_hash, created_at, last_login_at
		FROM users
		WHERE lower(username) = $1 OR lower(email) = $1
	`
	err := s.db.QueryRowContext(ctx, query, needle).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByID finds an account by id.
func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `
		SELECT user_id, username, email, password_hash, created_at, last_login_at
		FROM users
		WHERE user_id = $1
	`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastLogin records a successful login time.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE user_id = $1`, id)
	return err
}

// IsBanned reports whether an active, non-expired ban exists for the user.
func (s *Store) IsBanned(ctx context.Context, userID string) (bool, error) {
	var one int
	query := `
		SELECT 1 FROM user_bans
		WHERE user_id = $1
		  AND is_active
		  AND (expires_at IS NULL OR expires_at > NOW())
		LIMIT 1
	`
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// BanUser records a ban. A nil expiry is permanent.
func (s *Store) BanUser(ctx context.Context, userID, reason string, expiresAt *time.Time) error {
	query := `
		INSERT INTO user_bans (ban_id, user_id, reason, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), userID, reason, expiresAt)
	return err
}

// CreateSession issues a fresh opaque token for the user.
func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &models.Session{
		Token:     token,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	query := `
		INSERT INTO auth_sessions (session_id, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, query, sess.Token, sess.UserID, sess.IssuedAt, sess.ExpiresAt); err != nil {
		return nil, err
	}
	return sess, nil
}

// ResolveSession returns the user id bound to a live token. Expired and
// revoked sessions are purged lazily on lookup.
func (s *Store) ResolveSession(ctx context.Context, token string) (string, error) {
	var (
		userID    string
		expiresAt time.Time
		revokedAt *time.Time
	)
	query := `SELECT user_id, expires_at, revoked_at FROM auth_sessions WHERE session_id = $1`
	err := s.db.QueryRowContext(ctx, query, token).Scan(&userID, &expiresAt, &revokedAt)
	if err == sql.ErrNoRows {
		return "", errs.ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	if revokedAt != nil || !expiresAt.After(time.Now()) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE session_id = $1`, token)
		return "", errs.ErrSessionNotFound
	}
	return userID, nil
}

// RevokeSession invalidates a token; unknown tokens are a no-op.
func (s *Store) RevokeSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE auth_sessions SET revoked_at = NOW() WHERE session_id = $1 AND revoked_at IS NULL`, token)
	return err
}
