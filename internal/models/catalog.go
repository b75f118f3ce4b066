package models

// Weapon is immutable catalog reference data.
type Weapon struct {
	ID            string  `json:"weapon_id"`
	Name          string  `json:"name"`
	BaseKnockback float64 `json:"base_knockback"`
}

// Skill is immutable catalog reference data.
type Skill struct {
	ID                  string  `json:"skill_id"`
	Name                string  `json:"name"`
	KnockbackMultiplier float64 `json:"knockback_multiplier"`
}

// Quest is immutable catalog reference data.
type Quest struct {
	ID          string `json:"quest_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
