// Package store defines the storage interfaces the HTTP shell is wired
// against. Implementations live in the memory and postgres subpackages;
// sessions may alternatively be served by the redis package.
package store

import (
	"context"
	"time"

	"github.com/ember-vale/api/internal/models"
)

// AccountStore owns user accounts and bans.
type AccountStore interface {
	// CreateUser inserts a new account. Username and email are unique
	// case-insensitively; collisions return errs.ErrDuplicateUser.
	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)

	// UserByCredential finds an account by username or email, case-insensitive.
	UserByCredential(ctx context.Context, credential string) (*models.User, error)

	// UserByID finds an account by id.
	UserByID(ctx context.Context, id string) (*models.User, error)

	// TouchLastLogin records a successful login time.
	TouchLastLogin(ctx context.Context, id string) error

	// IsBanned reports whether an active, non-expired ban exists for the user.
	IsBanned(ctx context.Context, userID string) (bool, error)

	// BanUser records a ban. A nil expiry is permanent.
	BanUser(ctx context.Context, userID, reason string, expiresAt *time.Time) error
}

// SessionStore issues and resolves opaque session tokens.
type SessionStore interface {
	// CreateSession issues a fresh opaque token for the user.
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error)

	// ResolveSession returns the user id bound to a live token. Expired and
	// revoked sessions are purged on lookup and report errs.ErrSessionNotFound.
	ResolveSession(ctx context.Context, token string) (string, error)

	// RevokeSession invalidates a token. Revoking an unknown token is a no-op.
	RevokeSession(ctx context.Context, token string) error
}

// ProfileStore owns player profiles, weapon ownership, quest progress, and
// the combat hit log. All mutations on one store instance serialize through
// a single writer at a time; ResolveHit in particular runs its whole
// read-compute-mutate-log sequence as one critical section.
type ProfileStore interface {
	// CreateProfile creates a profile with the default attribute/asset bundle,
	// grants the starter weapons, and equips the first. An unknown skill id
	// returns errs.ErrSkillNotFound.
	CreateProfile(ctx context.Context, userID, displayName string, skillID *string) (*models.PlayerProfile, error)

	// Profile fetches one profile by player id.
	Profile(ctx context.Context, playerID string) (*models.PlayerProfile, error)

	// ProfilesByUser lists a user's profiles, oldest first.
	ProfilesByUser(ctx context.Context, userID string) ([]*models.PlayerProfile, error)

	// AllProfiles lists every profile, oldest first.
	AllProfiles(ctx context.Context) ([]*models.PlayerProfile, error)

	// SetPosition overwrites a profile's position. Ownership is the caller's
	// responsibility.
	SetPosition(ctx context.Context, playerID string, x, y float64) error

	// SetEquippedWeapon equips a weapon from the player's owned set;
	// anything else returns errs.ErrWeaponNotOwned.
	SetEquippedWeapon(ctx context.Context, playerID, weaponID string) error

	// AcceptQuest upserts quest progress to accepted with a fresh timestamp.
	AcceptQuest(ctx context.Context, playerID, questID string) error

	// ResolveHit resolves a PvP hit attempt from attacker to target, mutating
	// the target position and appending exactly one hit event when the attempt
	// passes validation. Failed validation leaves no trace.
	ResolveHit(ctx context.Context, attackerPlayerID, targetPlayerID string) (*models.HitOutcome, error)

	// HitEvents returns the most recent hit events involving the player,
	// newest first, capped at limit.
	HitEvents(ctx context.Context, playerID string, limit int) ([]*models.CombatHitEvent, error)
}

// HitLeaderboard ranks attackers by applied hits. Backed by Redis when
// configured; optional otherwise.
type HitLeaderboard interface {
	RecordHit(ctx context.Context, attackerPlayerID string) error
	TopHitters(ctx context.Context, limit int64) ([]models.LeaderboardEntry, error)
}
