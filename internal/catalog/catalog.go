// Package catalog holds the static reference data for weapons, skills, and
// quests. The tables are loaded once at startup and never mutated, so lookups
// need no locking.
package catalog

import (
	"sort"

	"github.com/ember-vale/api/internal/models"
)

// Weapon ID constants
const (
	WeaponDiamondSword   = "diamond_sword"
	WeaponNetheriteSword = "netherite_sword"
)

// Skill ID constants
const (
	SkillNovice      = "novice"
	SkillHeavyStrike = "heavy_strike"
)

// Quest ID constants
const (
	QuestWelcomeDuel = "welcome_duel"
	QuestStepMaster  = "step_master"
)

// StarterWeaponIDs are granted to every new profile, first one equipped.
var StarterWeaponIDs = []string{WeaponDiamondSword, WeaponNetheriteSword}

// Catalog is an immutable set of lookup tables.
type Catalog struct {
	weapons map[string]models.Weapon
	skills  map[string]models.Skill
	quests  map[string]models.Quest
}

// Default returns the catalog shipped with the game.
func Default() *Catalog {
	return New(
		// Two swords from assets; same gameplay stats, different skin/name.
		[]models.Weapon{
			{ID: WeaponDiamondSword, Name: "Diamond Sword", BaseKnockback: 12.0},
			{ID: WeaponNetheriteSword, Name: "Netherite Sword", BaseKnockback: 12.0},
		},
		[]models.Skill{
			{ID: SkillNovice, Name: "Novice", KnockbackMultiplier: 1.0},
			{ID: SkillHeavyStrike, Name: "Heavy Strike", KnockbackMultiplier: 1.2},
		},
		[]models.Quest{
			{ID: QuestWelcomeDuel, Title: "Welcome Duel", Description: "Land one valid hit in PvP."},
			{ID: QuestStepMaster, Title: "Step Master", Description: "Reach position x=10, y=10."},
		},
	)
}

// New builds a catalog from explicit tables.
func New(weapons []models.Weapon, skills []models.Skill, quests []models.Quest) *Catalog {
	c := &Catalog{
		weapons: make(map[string]models.Weapon, len(weapons)),
		skills:  make(map[string]models.Skill, len(skills)),
		quests:  make(map[string]models.Quest, len(quests)),
	}
	for _, w := range weapons {
		c.weapons[w.ID] = w
	}
	for _, s := range skills {
		c.skills[s.ID] = s
	}
	for _, q := range quests {
		c.quests[q.ID] = q
	}
	return c
}

// Weapon looks up a weapon by id.
func (c *Catalog) Weapon(id string) (models.Weapon, bool) {
	w, ok := c.weapons[id]
	return w, ok
}

// Skill looks up a skill by id.
func (c *Catalog) Skill(id string) (models.Skill, bool) {
	s, ok := c.skills[id]
	return s, ok
}

// Quest looks up a quest by id.
func (c *Catalog) Quest(id string) (models.Quest, bool) {
	q, ok := c.quests[id]
	return q, ok
}

// Weapons returns all weapons ordered by id.
func (c *Catalog) Weapons() []models.Weapon {
	out := make([]models.Weapon, 0, len(c.weapons))
	for _, w := range c.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Skills returns all skills ordered by id.
func (c *Catalog) Skills() []models.Skill {
	out := make([]models.Skill, 0, len(c.skills))
	for _, s := range c.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Quests returns all quests ordered by id.
func (c *Catalog) Quests() []models.Quest {
	out := make([]models.Quest, 0, len(c.quests))
	for _, q := range c.quests {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
