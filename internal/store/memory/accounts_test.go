package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-vale/api/internal/errs"
)

func TestCreateUserUniqueness(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	_, err = s.CreateUser(ctx, "ALICE", "other@example.com", "hash")
	assert.ErrorIs(t, err, errs.ErrDuplicateUser)

	_, err = s.CreateUser(ctx, "bob", "Alice@Example.com", "hash")
	assert.ErrorIs(t, err, errs.ErrDuplicateUser)
}

func TestUserByCredential(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	byName, err := s.UserByCredential(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := s.UserByCredential(ctx, "ALICE@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = s.UserByCredential(ctx, "nobody")
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestBans(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	banned, err := s.IsBanned(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, banned)

	require.NoError(t, s.BanUser(ctx, u.ID, "griefing", nil))
	banned, err = s.IsBanned(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestExpiredBanDoesNotCount(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, s.BanUser(ctx, u.ID, "old offense", &past))

	banned, err := s.IsBanned(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestSessionLifecycle(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "u1", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	userID, err := s.ResolveSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	require.NoError(t, s.RevokeSession(ctx, sess.Token))
	_, err = s.ResolveSession(ctx, sess.Token)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)

	// Revoking again is a no-op.
	require.NoError(t, s.RevokeSession(ctx, sess.Token))
}

func TestExpiredSessionPurgedOnLookup(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "u1", time.Hour)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.ResolveSession(ctx, sess.Token)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)

	s.mu.Lock()
	_, stillThere := s.sessions[sess.Token]
	s.mu.Unlock()
	assert.False(t, stillThere)
}

func TestTouchLastLogin(t *testing.T) {
	s := NewAccountStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	require.Nil(t, u.LastLoginAt)

	require.NoError(t, s.TouchLastLogin(ctx, u.ID))
	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)
}
