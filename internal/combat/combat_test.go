package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-vale/api/internal/catalog"
	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/models"
)

func strptr(s string) *string { return &s }

func profile(x, y float64, weaponID, skillID *string, acceptsKnockback bool) *models.PlayerProfile {
	return &models.PlayerProfile{
		PlayerID:               "p",
		Position:               models.Vec2{X: x, Y: y},
		EquippedWeaponID:       weaponID,
		SkillID:                skillID,
		CanReceivePvPKnockback: acceptsKnockback,
	}
}

func TestDisplacement(t *testing.T) {
	dx, dy, dist := Displacement(models.Vec2{X: 1, Y: 2}, models.Vec2{X: 4, Y: 6})
	assert.Equal(t, 3.0, dx)
	assert.Equal(t, 4.0, dy)
	assert.Equal(t, 5.0, dist)
}

func TestDirectionDegenerateDefaultsToUnitX(t *testing.T) {
	dir := Direction(0, 0, 0)
	assert.Equal(t, models.Vec2{X: 1.0, Y: 0.0}, dir)
}

func TestDirectionUnitVector(t *testing.T) {
	dir := Direction(0, 2, 2)
	assert.InDelta(t, 0.0, dir.X, 1e-9)
	assert.InDelta(t, 1.0, dir.Y, 1e-9)
}

func TestResolveSuppressedZeroesKnockback(t *testing.T) {
	res := Resolve(2, 0, 2, 14.4, false)
	assert.False(t, res.Applied)
	assert.Equal(t, ReasonTargetPvPDisabled, res.Reason)
	assert.Equal(t, models.Vec2{}, res.Knockback)
	assert.Equal(t, 2.0, res.Distance)
}

func TestResolveProfiles(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		name     string
		attacker *models.PlayerProfile
		target   *models.PlayerProfile
		wantErr  error
	}{
		{
			name:     "no equipped weapon",
			attacker: profile(0, 0, nil, nil, true),
			target:   profile(1, 0, nil, nil, true),
			wantErr:  errs.ErrNoEquippedWeapon,
		},
		{
			name:     "out of range",
			attacker: profile(0, 0, strptr(catalog.WeaponDiamondSword), nil, true),
			target:   profile(5, 0, nil, nil, true),
			wantErr:  errs.ErrTargetOutOfRange,
		},
		{
			name:     "unknown weapon",
			attacker: profile(0, 0, strptr("rubber_chicken"), nil, true),
			target:   profile(1, 0, nil, nil, true),
			wantErr:  errs.ErrWeaponNotFound,
		},
		{
			name:     "range check precedes weapon lookup",
			attacker: profile(0, 0, strptr("rubber_chicken"), nil, true),
			target:   profile(10, 0, nil, nil, true),
			wantErr:  errs.ErrTargetOutOfRange,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ResolveProfiles(tc.attacker, tc.target, cat)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestResolveProfilesForceComposition(t *testing.T) {
	cat := catalog.Default()

	// base_knockback 12.0 * heavy_strike 1.2 = 14.4 along +x.
	attacker := profile(0, 0, strptr(catalog.WeaponDiamondSword), strptr(catalog.SkillHeavyStrike), true)
	target := profile(2, 0, nil, nil, true)

	res, weaponID, err := ResolveProfiles(attacker, target, cat)
	require.NoError(t, err)
	assert.Equal(t, catalog.WeaponDiamondSword, weaponID)
	assert.Equal(t, 2.0, res.Distance)
	assert.True(t, res.Applied)
	assert.Empty(t, res.Reason)
	assert.InDelta(t, 14.4, res.Knockback.X, 1e-9)
	assert.InDelta(t, 0.0, res.Knockback.Y, 1e-9)
}

func TestResolveProfilesUnknownSkillDefaultsMultiplier(t *testing.T) {
	cat := catalog.Default()

	attacker := profile(0, 0, strptr(catalog.WeaponDiamondSword), strptr("lost_art"), true)
	target := profile(2, 0, nil, nil, true)

	res, _, err := ResolveProfiles(attacker, target, cat)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, res.Knockback.X, 1e-9)
}

func TestResolveProfilesExactRangeBoundaryHits(t *testing.T) {
	cat := catalog.Default()

	attacker := profile(0, 0, strptr(catalog.WeaponDiamondSword), nil, true)
	target := profile(3, 0, nil, nil, true)

	res, _, err := ResolveProfiles(attacker, target, cat)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Distance)
	assert.True(t, res.Applied)
}

func TestResolveProfilesSamePositionUsesDefaultDirection(t *testing.T) {
	cat := catalog.Default()

	attacker := profile(1, 1, strptr(catalog.WeaponNetheriteSword), nil, true)
	target := profile(1, 1, nil, nil, true)

	res, _, err := ResolveProfiles(attacker, target, cat)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Distance)
	assert.InDelta(t, 12.0, res.Knockback.X, 1e-9)
	assert.InDelta(t, 0.0, res.Knockback.Y, 1e-9)
}

func TestResolveProfilesSuppression(t *testing.T) {
	cat := catalog.Default()

	attacker := profile(0, 0, strptr(catalog.WeaponDiamondSword), nil, true)
	target := profile(2, 0, nil, nil, false)

	res, _, err := ResolveProfiles(attacker, target, cat)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, ReasonTargetPvPDisabled, res.Reason)
	assert.Equal(t, models.Vec2{}, res.Knockback)
}
