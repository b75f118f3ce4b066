package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ember-vale/api/internal/catalog"
	"github.com/ember-vale/api/internal/combat"
	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/models"
)

const profileColumns = `player_id, user_id, display_name, skill_id, equipped_weapon_id,
	pos_x, pos_y, can_receive_pvp_knockback, attributes, assets, created_at`

// CreateProfile creates a profile with the default bundle, grants the starter
// weapons, and equips the first, all in one transaction.
func (s *Store) CreateProfile(ctx context.Context, userID, displayName string, skillID *string) (*models.PlayerProfile, error) {
	if skillID != nil {
		if _, ok := s.catalog.Skill(*skillID); !ok {
			return nil, errs.ErrSkillNotFound
		}
	}

	attributes, _ := json.Marshal(map[string]any{"power": 10, "agility": 10})
	assets, _ := json.Marshal(map[string]any{"coins": 100})
	playerID := uuid.NewString()
	equipped := catalog.StarterWeaponIDs[0]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	insertProfile := `
		INSERT INTO player_profiles (player_id, user_id, display_name, skill_id, equipped_weapon_id, attributes, assets)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, insertProfile, playerID, userID, displayName, skillID, equipped, attributes, assets); err != nil {
		return nil, err
	}

	for _, weaponID := range catalog.StarterWeaponIDs {
		insertOwned := `INSERT INTO player_weapons_owned (player_id, weapon_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, insertOwned, playerID, weaponID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.Profile(ctx, playerID)
}

// Profile fetches one profile by player id.
func (s *Store) Profile(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM player_profiles WHERE player_id = $1`, profileColumns)
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, playerID))
	if err == sql.ErrNoRows {
		return nil, errs.ErrProfileNotFound
	}
	return p, err
}

// ProfilesByUser lists a user's profiles, oldest first.
func (s *Store) ProfilesByUser(ctx context.Context, userID string) ([]*models.PlayerProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM player_profiles WHERE user_id = $1 ORDER BY created_at ASC`, profileColumns)
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

// AllProfiles lists every profile, oldest first.
func (s *Store) AllProfiles(ctx context.Context) ([]*models.PlayerProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM player_profiles ORDER BY created_at ASC`, profileColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

// SetPosition overwrites a profile's position.
func (s *Store) SetPosition(ctx context.Context, playerID string, x, y float64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE player_profiles SET pos_x = $1, pos_y = $2 WHERE player_id = $3`, x, y, playerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetEquippedWeapon equips a weapon from the player's owned set.
func (s *Store) SetEquippedWeapon(ctx context.Context, playerID, weaponID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM player_profiles WHERE player_id = $1`, playerID).Scan(&one)
	if err == sql.ErrNoRows {
		return errs.ErrProfileNotFound
	}
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `SELECT 1 FROM player_weapons_owned WHERE player_id = $1 AND weapon_id = $2`, playerID, weaponID).Scan(&one)
	if err == sql.ErrNoRows {
		return errs.ErrWeaponNotOwned
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE player_profiles SET equipped_weapon_id = $1 WHERE player_id = $2`, weaponID, playerID); err != nil {
		return err
	}
	return tx.Commit()
}

// AcceptQuest upserts quest progress to accepted with a fresh timestamp.
func (s *Store) AcceptQuest(ctx context.Context, playerID, questID string) error {
	if _, ok := s.catalog.Quest(questID); !ok {
		return errs.ErrQuestNotFound
	}

	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM player_profiles WHERE player_id = $1`, playerID).Scan(&one)
	if err == sql.ErrNoRows {
		return errs.ErrProfileNotFound
	}
	if err != nil {
		return err
	}

	query := `
		INSERT INTO player_quests (player_id, quest_id, status, accepted_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (player_id, quest_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, playerID, questID, models.QuestStatusAccepted)
	return err
}

// ResolveHit resolves a PvP hit attempt in one transaction. Both profile rows
// are locked in id order so two crossing hits cannot deadlock, then the
// validation, knockback computation, target mutation, and event append all
// commit or roll back together.
func (s *Store) ResolveHit(ctx context.Context, attackerPlayerID, targetPlayerID string) (*models.HitOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lockOrder := []string{attackerPlayerID, targetPlayerID}
	if lockOrder[1] < lockOrder[0] {
		lockOrder[0], lockOrder[1] = lockOrder[1], lockOrder[0]
	}
	for _, id := range lockOrder {
		if _, err := tx.ExecContext(ctx, `SELECT 1 FROM player_profiles WHERE player_id = $1 FOR UPDATE`, id); err != nil {
			return nil, err
		}
	}

	attacker, err := lockedProfile(ctx, tx, attackerPlayerID)
	if err != nil {
		return nil, err
	}
	target, err := lockedProfile(ctx, tx, targetPlayerID)
	if err != nil {
		return nil, err
	}

	res, weaponID, err := combat.ResolveProfiles(attacker, target, s.catalog)
	if err != nil {
		return nil, err
	}

	if res.Applied {
		update := `UPDATE player_profiles SET pos_x = pos_x + $1, pos_y = pos_y + $2 WHERE player_id = $3`
		if _, err := tx.ExecContext(ctx, update, res.Knockback.X, res.Knockback.Y, targetPlayerID); err != nil {
			return nil, err
		}
	}

	var reason *string
	if res.Reason != "" {
		r := res.Reason
		reason = &r
	}

	hitID := uuid.NewString()
	insertEvent := `
		INSERT INTO combat_hit_events (
			hit_id, attacker_player_id, target_player_id, weapon_id,
			knockback_applied_x, knockback_applied_y, was_applied, server_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, insertEvent,
		hitID, attackerPlayerID, targetPlayerID, weaponID,
		res.Knockback.X, res.Knockback.Y, res.Applied, reason,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.HitOutcome{
		HitID:      hitID,
		WeaponID:   weaponID,
		Distance:   res.Distance,
		Knockback:  res.Knockback,
		WasApplied: res.Applied,
		Reason:     reason,
	}, nil
}

// HitEvents returns the most recent events involving the player, newest first.
func (s *Store) HitEvents(ctx context.Context, playerID string, limit int) ([]*models.CombatHitEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT hit_id, attacker_player_id, target_player_id, weapon_id,
		       knockback_applied_x, knockback_applied_y, was_applied, server_reason, created_at
		FROM combat_hit_events
		WHERE attacker_player_id = $1 OR target_player_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.CombatHitEvent
	for rows.Next() {
		var e models.CombatHitEvent
		if err := rows.Scan(
			&e.HitID, &e.AttackerPlayerID, &e.TargetPlayerID, &e.WeaponID,
			&e.Knockback.X, &e.Knockback.Y, &e.WasApplied, &e.ServerReason, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// OwnedWeapons returns the player's weapon set ordered by weapon id.
func (s *Store) OwnedWeapons(ctx context.Context, playerID string) ([]models.OwnedWeapon, error) {
	query := `SELECT player_id, weapon_id, obtained_at FROM player_weapons_owned WHERE player_id = $1 ORDER BY weapon_id`
	rows, err := s.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OwnedWeapon
	for rows.Next() {
		var ow models.OwnedWeapon
		if err := rows.Scan(&ow.PlayerID, &ow.WeaponID, &ow.ObtainedAt); err != nil {
			return nil, err
		}
		out = append(out, ow)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.PlayerProfile, error) {
	var (
		p          models.PlayerProfile
		attributes []byte
		assets     []byte
	)
	err := row.Scan(
		&p.PlayerID, &p.UserID, &p.DisplayName, &p.SkillID, &p.EquippedWeaponID,
		&p.Position.X, &p.Position.Y, &p.CanReceivePvPKnockback, &attributes, &assets, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attributes, &p.Attributes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(assets, &p.Assets); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProfiles(rows *sql.Rows) ([]*models.PlayerProfile, error) {
	var out []*models.PlayerProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func lockedProfile(ctx context.Context, tx *sql.Tx, playerID string) (*models.PlayerProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM player_profiles WHERE player_id = $1`, profileColumns)
	p, err := scanProfile(tx.QueryRowContext(ctx, query, playerID))
	if err == sql.ErrNoRows {
		return nil, errs.ErrProfileNotFound
	}
	return p, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrProfileNotFound
	}
	return nil
}
