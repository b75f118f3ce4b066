package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeedData(t *testing.T) {
	cat := Default()

	sword, ok := cat.Weapon(WeaponDiamondSword)
	require.True(t, ok)
	assert.Equal(t, 12.0, sword.BaseKnockback)

	netherite, ok := cat.Weapon(WeaponNetheriteSword)
	require.True(t, ok)
	assert.Equal(t, 12.0, netherite.BaseKnockback)

	novice, ok := cat.Skill(SkillNovice)
	require.True(t, ok)
	assert.Equal(t, 1.0, novice.KnockbackMultiplier)

	heavy, ok := cat.Skill(SkillHeavyStrike)
	require.True(t, ok)
	assert.Equal(t, 1.2, heavy.KnockbackMultiplier)

	_, ok = cat.Quest(QuestWelcomeDuel)
	assert.True(t, ok)
	_, ok = cat.Quest(QuestStepMaster)
	assert.True(t, ok)
}

func TestUnknownLookups(t *testing.T) {
	cat := Default()

	_, ok := cat.Weapon("wooden_stick")
	assert.False(t, ok)
	_, ok = cat.Skill("backflip")
	assert.False(t, ok)
	_, ok = cat.Quest("lost_scroll")
	assert.False(t, ok)
}

func TestListingsAreSorted(t *testing.T) {
	cat := Default()

	weapons := cat.Weapons()
	require.Len(t, weapons, 2)
	assert.Equal(t, WeaponDiamondSword, weapons[0].ID)
	assert.Equal(t, WeaponNetheriteSword, weapons[1].ID)

	skills := cat.Skills()
	require.Len(t, skills, 2)
	assert.Equal(t, SkillHeavyStrike, skills[0].ID)
	assert.Equal(t, SkillNovice, skills[1].ID)
}
