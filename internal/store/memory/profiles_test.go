package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-vale/api/internal/catalog"
	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/models"
)

func newProfileStore() *ProfileStore {
	return NewProfileStore(catalog.Default())
}

func mustProfile(t *testing.T, s *ProfileStore, userID, name string) *models.PlayerProfile {
	t.Helper()
	p, err := s.CreateProfile(context.Background(), userID, name, nil)
	require.NoError(t, err)
	return p
}

func TestCreateProfileGrantsStarterWeapons(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()

	p := mustProfile(t, s, "u1", "Knight")

	require.NotNil(t, p.EquippedWeaponID)
	assert.Equal(t, catalog.WeaponDiamondSword, *p.EquippedWeaponID)
	assert.True(t, p.CanReceivePvPKnockback)
	assert.Equal(t, models.Vec2{}, p.Position)
	assert.Equal(t, 10, p.Attributes["power"])
	assert.Equal(t, 100, p.Assets["coins"])

	owned, err := s.OwnedWeapons(ctx, p.PlayerID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, catalog.WeaponDiamondSword, owned[0].WeaponID)
	assert.Equal(t, catalog.WeaponNetheriteSword, owned[1].WeaponID)
}

func TestCreateProfileUnknownSkill(t *testing.T) {
	s := newProfileStore()
	bogus := "levitation"

	_, err := s.CreateProfile(context.Background(), "u1", "Knight", &bogus)
	assert.ErrorIs(t, err, errs.ErrSkillNotFound)
}

func TestSetEquippedWeapon(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()
	p := mustProfile(t, s, "u1", "Knight")

	err := s.SetEquippedWeapon(ctx, p.PlayerID, catalog.WeaponNetheriteSword)
	require.NoError(t, err)

	got, err := s.Profile(ctx, p.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, catalog.WeaponNetheriteSword, *got.EquippedWeaponID)

	err = s.SetEquippedWeapon(ctx, p.PlayerID, "excalibur")
	assert.ErrorIs(t, err, errs.ErrWeaponNotOwned)

	err = s.SetEquippedWeapon(ctx, "nobody", catalog.WeaponDiamondSword)
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)
}

func TestAcceptQuestUpsert(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()
	p := mustProfile(t, s, "u1", "Knight")

	err := s.AcceptQuest(ctx, p.PlayerID, "lost_cause")
	assert.ErrorIs(t, err, errs.ErrQuestNotFound)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.AcceptQuest(ctx, p.PlayerID, catalog.QuestWelcomeDuel))

	s.now = func() time.Time { return base.Add(time.Minute) }
	require.NoError(t, s.AcceptQuest(ctx, p.PlayerID, catalog.QuestWelcomeDuel))

	rows, err := s.QuestProgress(ctx, p.PlayerID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.QuestStatusAccepted, rows[0].Status)
	assert.Equal(t, base, rows[0].AcceptedAt)
	assert.Equal(t, base.Add(time.Minute), rows[0].UpdatedAt)
}

func TestSetPositionOverwrites(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()
	p := mustProfile(t, s, "u1", "Knight")

	require.NoError(t, s.SetPosition(ctx, p.PlayerID, 7.5, -2.0))
	got, err := s.Profile(ctx, p.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, models.Vec2{X: 7.5, Y: -2.0}, got.Position)
}

func TestResolveHitAppliesKnockback(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()

	heavy := catalog.SkillHeavyStrike
	attacker, err := s.CreateProfile(ctx, "u1", "Attacker", &heavy)
	require.NoError(t, err)
	target := mustProfile(t, s, "u2", "Target")

	require.NoError(t, s.SetPosition(ctx, target.PlayerID, 2, 0))

	outcome, err := s.ResolveHit(ctx, attacker.PlayerID, target.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, catalog.WeaponDiamondSword, outcome.WeaponID)
	assert.Equal(t, 2.0, outcome.Distance)
	assert.True(t, outcome.WasApplied)
	assert.Nil(t, outcome.Reason)
	assert.InDelta(t, 14.4, outcome.Knockback.X, 1e-9)
	assert.InDelta(t, 0.0, outcome.Knockback.Y, 1e-9)

	moved, err := s.Profile(ctx, target.PlayerID)
	require.NoError(t, err)
	assert.InDelta(t, 16.4, moved.Position.X, 1e-9)
	assert.InDelta(t, 0.0, moved.Position.Y, 1e-9)

	events, err := s.HitEvents(ctx, target.PlayerID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, outcome.HitID, events[0].HitID)
	assert.True(t, events[0].WasApplied)
	assert.Nil(t, events[0].ServerReason)
}

func TestResolveHitAccumulates(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()

	attacker := mustProfile(t, s, "u1", "Attacker")
	target := mustProfile(t, s, "u2", "Target")
	require.NoError(t, s.SetPosition(ctx, target.PlayerID, 1, 0))

	first, err := s.ResolveHit(ctx, attacker.PlayerID, target.PlayerID)
	require.NoError(t, err)
	assert.InDelta(t, 13.0, mustPos(t, s, target.PlayerID).X, 1e-9)

	// Target is now out of range; move back in and hit again.
	require.NoError(t, s.SetPosition(ctx, target.PlayerID, 1, 0))
	second, err := s.ResolveHit(ctx, attacker.PlayerID, target.PlayerID)
	require.NoError(t, err)
	assert.NotEqual(t, first.HitID, second.HitID)

	events, err := s.HitEvents(ctx, attacker.PlayerID, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestResolveHitOutOfRangeLeavesNoTrace(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()

	attacker := mustProfile(t, s, "u1", "Attacker")
	target := mustProfile(t, s, "u2", "Target")
	require.NoError(t, s.SetPosition(ctx, target.PlayerID, 5, 0))

	_, err := s.ResolveHit(ctx, attacker.PlayerID, target.PlayerID)
	assert.ErrorIs(t, err, errs.ErrTargetOutOfRange)

	unchanged := mustPos(t, s, target.PlayerID)
	assert.Equal(t, models.Vec2{X: 5, Y: 0}, unchanged)

	events, err := s.HitEvents(ctx, attacker.PlayerID, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestResolveHitSuppressedStillLogs(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()

	attacker := mustProfile(t, s, "u1", "Attacker")
	target := mustProfile(t, s, "u2", "Target")
	require.NoError(t, s.SetPosition(ctx, target.PlayerID, 2, 0))

	// Opt the target out of PvP knockback.
	s.mu.Lock()
	s.profiles[target.PlayerID].CanReceivePvPKnockback = false
	s.mu.Unlock()

	outcome, err := s.ResolveHit(ctx, attacker.PlayerID, target.PlayerID)
	require.NoError(t, err)
	assert.False(t, outcome.WasApplied)
	require.NotNil(t, outcome.Reason)
	assert.Equal(t, "target_pvp_disabled", *outcome.Reason)
	assert.Equal(t, models.Vec2{}, outcome.Knockback)

	assert.Equal(t, models.Vec2{X: 2, Y: 0}, mustPos(t, s, target.PlayerID))

	events, err := s.HitEvents(ctx, target.PlayerID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].WasApplied)
	require.NotNil(t, events[0].ServerReason)
	assert.Equal(t, "target_pvp_disabled", *events[0].ServerReason)
	assert.Equal(t, models.Vec2{}, events[0].Knockback)
}

func TestResolveHitMissingProfiles(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()
	p := mustProfile(t, s, "u1", "Knight")

	_, err := s.ResolveHit(ctx, p.PlayerID, "ghost")
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)

	_, err = s.ResolveHit(ctx, "ghost", p.PlayerID)
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)
}

func TestResolveHitNoEquippedWeapon(t *testing.T) {
	s := newProfileStore()
	ctx := context.Background()

	attacker := mustProfile(t, s, "u1", "Attacker")
	target := mustProfile(t, s, "u2", "Target")
	require.NoError(t, s.SetPosition(ctx, target.PlayerID, 1, 0))

	s.mu.Lock()
	s.profiles[attacker.PlayerID].EquippedWeaponID = nil
	s.mu.Unlock()

	_, err := s.ResolveHit(ctx, attacker.PlayerID, target.PlayerID)
	assert.ErrorIs(t, err, errs.ErrNoEquippedWeapon)
}

func mustPos(t *testing.T, s *ProfileStore, playerID string) models.Vec2 {
	t.Helper()
	p, err := s.Profile(context.Background(), playerID)
	require.NoError(t, err)
	return p.Position
}
