// Package combat implements PvP melee hit resolution: distance and range
// validation, force composition from weapon and skill, knockback direction,
// and the suppression rule for targets with PvP knockback disabled.
//
// Everything here is pure computation. Stores call into this package inside
// their own critical section and apply the resulting mutation and event
// append themselves, so two concurrent hits can never interleave.
package combat

import (
	"math"

	"github.com/ember-vale/api/internal/catalog"
	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/models"
)

// MaxHitDistance is the melee reach in world units. Hits on targets strictly
// farther than this are rejected without side effects.
const MaxHitDistance = 3.0

// ReasonTargetPvPDisabled is recorded on suppressed hits.
const ReasonTargetPvPDisabled = "target_pvp_disabled"

// Resolution is the computed outcome of an in-range hit.
type Resolution struct {
	Distance  float64
	Knockback models.Vec2
	Applied   bool
	Reason    string // empty when applied
}

// Displacement returns the vector from attacker to target and its length.
func Displacement(attacker, target models.Vec2) (dx, dy, distance float64) {
	dx = target.X - attacker.X
	dy = target.Y - attacker.Y
	distance = math.Sqrt(dx*dx + dy*dy)
	return dx, dy, distance
}

// Direction returns the unit vector of (dx, dy). When the displacement is
// degenerate (attacker and target occupy the same point) it defaults to
// (1, 0) instead of dividing by zero.
func Direction(dx, dy, distance float64) models.Vec2 {
	if distance == 0 {
		return models.Vec2{X: 1.0, Y: 0.0}
	}
	return models.Vec2{X: dx / distance, Y: dy / distance}
}

// Force composes knockback magnitude from weapon and skill.
func Force(baseKnockback, skillMultiplier float64) float64 {
	return baseKnockback * skillMultiplier
}

// Resolve computes the knockback for a hit that already passed the range
// check. Suppressed hits (target opted out of PvP knockback) carry a zero
// vector, both in the returned resolution and in whatever gets logged.
func Resolve(dx, dy, distance, force float64, targetAccepts bool) Resolution {
	res := Resolution{Distance: distance, Applied: targetAccepts}
	if !targetAccepts {
		res.Reason = ReasonTargetPvPDisabled
		return res
	}
	dir := Direction(dx, dy, distance)
	res.Knockback = models.Vec2{X: dir.X * force, Y: dir.Y * force}
	return res
}

// ResolveProfiles validates and computes a hit between two loaded profiles.
// It returns the weapon used alongside the resolution. Validation order:
// equipped weapon, range, catalog weapon lookup, then skill composition.
// A skill id that does not resolve in the catalog silently defaults the
// multiplier to 1.0; only profile creation treats that as an error.
func ResolveProfiles(attacker, target *models.PlayerProfile, cat *catalog.Catalog) (Resolution, string, error) {
	if attacker.EquippedWeaponID == nil || *attacker.EquippedWeaponID == "" {
		return Resolution{}, "", errs.ErrNoEquippedWeapon
	}

	dx, dy, distance := Displacement(attacker.Position, target.Position)
	if distance > MaxHitDistance {
		return Resolution{}, "", errs.ErrTargetOutOfRange
	}

	weaponID := *attacker.EquippedWeaponID
	weapon, ok := cat.Weapon(weaponID)
	if !ok {
		return Resolution{}, "", errs.ErrWeaponNotFound
	}

	multiplier := 1.0
	if attacker.SkillID != nil {
		if skill, ok := cat.Skill(*attacker.SkillID); ok {
			multiplier = skill.KnockbackMultiplier
		}
	}

	force := Force(weapon.BaseKnockback, multiplier)
	return Resolve(dx, dy, distance, force, target.CanReceivePvPKnockback), weaponID, nil
}
