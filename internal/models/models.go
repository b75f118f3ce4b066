package models

import "time"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// User represents a user account
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Ban represents an account ban. A user is banned while an active,
// non-expired ban row exists for them.
type Ban struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Reason    string     `json:"reason"`
	BannedAt  time.Time  `json:"banned_at"`
	ExpiresAt *time.Time `json:"expires_at"` // nil = permanent
	Active    bool       `json:"active"`
}

// Session is a server-side auth session identified by an opaque token.
// Resolvable only while not expired and not revoked.
type Session struct {
	Token     string     `json:"token"`
	UserID    string     `json:"user_id"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// PlayerProfile represents a player character owned by a user account.
// EquippedWeaponID, when set, is always a member of the player's owned
// weapon set.
type PlayerProfile struct {
	PlayerID               string         `json:"player_id"`
	UserID                 string         `json:"user_id"`
	DisplayName            string         `json:"display_name"`
	SkillID                *string        `json:"skill_id"`
	EquippedWeaponID       *string        `json:"equipped_weapon_id"`
	Position               Vec2           `json:"position"`
	CanReceivePvPKnockback bool           `json:"can_receive_pvp_knockback"`
	Attributes             map[string]any `json:"attributes"`
	Assets                 map[string]any `json:"assets"`
	CreatedAt              time.Time      `json:"created_at"`
}

// OwnedWeapon is a membership row in a player's weapon set.
type OwnedWeapon struct {
	PlayerID   string    `json:"player_id"`
	WeaponID   string    `json:"weapon_id"`
	ObtainedAt time.Time `json:"obtained_at"`
}

// Quest progress statuses.
const (
	QuestStatusAccepted = "accepted"
)

// QuestProgress tracks a player's state on a quest. Re-accepting a quest
// resets the status and advances UpdatedAt.
type QuestProgress struct {
	PlayerID   string    `json:"player_id"`
	QuestID    string    `json:"quest_id"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"accepted_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CombatHitEvent is an immutable audit record of a resolved hit. Exactly one
// is appended per resolved hit, applied or suppressed; none is written for
// rejected attempts.
type CombatHitEvent struct {
	HitID            string    `json:"hit_id"`
	AttackerPlayerID string    `json:"attacker_player_id"`
	TargetPlayerID   string    `json:"target_player_id"`
	WeaponID         string    `json:"weapon_id"`
	Knockback        Vec2      `json:"knockback_applied"`
	WasApplied       bool      `json:"was_applied"`
	ServerReason     *string   `json:"server_reason"`
	CreatedAt        time.Time `json:"created_at"`
}

// HitOutcome is what a resolved hit reports back to the attacker.
type HitOutcome struct {
	HitID      string  `json:"hit_id"`
	WeaponID   string  `json:"weapon_id"`
	Distance   float64 `json:"distance"`
	Knockback  Vec2    `json:"knockback"`
	WasApplied bool    `json:"was_applied"`
	Reason     *string `json:"reason"`
}

// PresenceInfo is the ephemeral online record for a connected user.
type PresenceInfo struct {
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// LeaderboardEntry is a row on the landed-hits leaderboard.
type LeaderboardEntry struct {
	PlayerID string  `json:"player_id"`
	Hits     float64 `json:"hits"`
	Rank     int64   `json:"rank"`
}
