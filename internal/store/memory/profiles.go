package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ember-vale/api/internal/catalog"
	"github.com/ember-vale/api/internal/combat"
	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/models"
)

// ProfileStore holds player profiles, weapon ownership, quest progress, and
// the combat hit log behind one lock. ResolveHit runs its whole
// read-compute-mutate-log sequence inside that lock.
type ProfileStore struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	profiles map[string]*models.PlayerProfile
	owned    map[string]map[string]models.OwnedWeapon  // player id -> weapon id
	quests   map[string]map[string]*models.QuestProgress // player id -> quest id
	events   []*models.CombatHitEvent

	now func() time.Time
}

// NewProfileStore returns an empty profile store bound to a catalog.
func NewProfileStore(cat *catalog.Catalog) *ProfileStore {
	return &ProfileStore{
		catalog:  cat,
		profiles: make(map[string]*models.PlayerProfile),
		owned:    make(map[string]map[string]models.OwnedWeapon),
		quests:   make(map[string]map[string]*models.QuestProgress),
		now:      time.Now,
	}
}

// CreateProfile creates a profile with the default bundle, grants the starter
// weapons, and equips the first.
func (s *ProfileStore) CreateProfile(_ context.Context, userID, displayName string, skillID *string) (*models.PlayerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if skillID != nil {
		if _, ok := s.catalog.Skill(*skillID); !ok {
			return nil, errs.ErrSkillNotFound
		}
	}

	now := s.now()
	p := &models.PlayerProfile{
		PlayerID:               uuid.NewString(),
		UserID:                 userID,
		DisplayName:            displayName,
		SkillID:                skillID,
		Position:               models.Vec2{},
		CanReceivePvPKnockback: true,
		Attributes:             map[string]any{"power": 10, "agility": 10},
		Assets:                 map[string]any{"coins": 100},
		CreatedAt:              now,
	}

	owned := make(map[string]models.OwnedWeapon, len(catalog.StarterWeaponIDs))
	for _, weaponID := range catalog.StarterWeaponIDs {
		owned[weaponID] = models.OwnedWeapon{PlayerID: p.PlayerID, WeaponID: weaponID, ObtainedAt: now}
	}
	equipped := catalog.StarterWeaponIDs[0]
	p.EquippedWeaponID = &equipped

	s.profiles[p.PlayerID] = p
	s.owned[p.PlayerID] = owned

	return copyProfile(p), nil
}

// Profile fetches one profile by player id.
func (s *ProfileStore) Profile(_ context.Context, playerID string) (*models.PlayerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[playerID]
	if !ok {
		return nil, errs.ErrProfileNotFound
	}
	return copyProfile(p), nil
}

// ProfilesByUser lists a user's profiles, oldest first.
func (s *ProfileStore) ProfilesByUser(_ context.Context, userID string) ([]*models.PlayerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.PlayerProfile
	for _, p := range s.profiles {
		if p.UserID == userID {
			out = append(out, copyProfile(p))
		}
	}
	sortProfiles(out)
	return out, nil
}

// AllProfiles lists every profile, oldest first.
func (s *ProfileStore) AllProfiles(_ context.Context) ([]*models.PlayerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.PlayerProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, copyProfile(p))
	}
	sortProfiles(out)
	return out, nil
}

// SetPosition overwrites a profile's position.
func (s *ProfileStore) SetPosition(_ context.Context, playerID string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[playerID]
	if !ok {
		return errs.ErrProfileNotFound
	}
	p.Position = models.Vec2{X: x, Y: y}
	return nil
}

// SetEquippedWeapon equips a weapon from the player's owned set.
func (s *ProfileStore) SetEquippedWeapon(_ context.Context, playerID, weaponID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[playerID]
	if !ok {
		return errs.ErrProfileNotFound
	}
	if _, owned := s.owned[playerID][weaponID]; !owned {
		return errs.ErrWeaponNotOwned
	}
	p.EquippedWeaponID = &weaponID
	return nil
}

// AcceptQuest upserts quest progress to accepted with a fresh timestamp.
func (s *ProfileStore) AcceptQuest(_ context.Context, playerID, questID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[playerID]; !ok {
		return errs.ErrProfileNotFound
	}
	if _, ok := s.catalog.Quest(questID); !ok {
		return errs.ErrQuestNotFound
	}

	now := s.now()
	byQuest, ok := s.quests[playerID]
	if !ok {
		byQuest = make(map[string]*models.QuestProgress)
		s.quests[playerID] = byQuest
	}
	if existing, ok := byQuest[questID]; ok {
		existing.Status = models.QuestStatusAccepted
		existing.UpdatedAt = now
		return nil
	}
	byQuest[questID] = &models.QuestProgress{
		PlayerID:   playerID,
		QuestID:    questID,
		Status:     models.QuestStatusAccepted,
		AcceptedAt: now,
		UpdatedAt:  now,
	}
	return nil
}

// QuestProgress returns the player's quest rows, most recently updated first.
func (s *ProfileStore) QuestProgress(_ context.Context, playerID string) ([]*models.QuestProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.QuestProgress
	for _, qp := range s.quests[playerID] {
		cpy := *qp
		out = append(out, &cpy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// ResolveHit resolves a PvP hit attempt as one critical section: validation,
// knockback computation, target mutation, and event append all happen under
// the store lock, so concurrent hits on overlapping players cannot interleave.
func (s *ProfileStore) ResolveHit(_ context.Context, attackerPlayerID, targetPlayerID string) (*models.HitOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attacker, okA := s.profiles[attackerPlayerID]
	target, okT := s.profiles[targetPlayerID]
	if !okA || !okT {
		return nil, errs.ErrProfileNotFound
	}

	res, weaponID, err := combat.ResolveProfiles(attacker, target, s.catalog)
	if err != nil {
		return nil, err
	}

	if res.Applied {
		target.Position.X += res.Knockback.X
		target.Position.Y += res.Knockback.Y
	}

	var reason *string
	if res.Reason != "" {
		r := res.Reason
		reason = &r
	}

	event := &models.CombatHitEvent{
		HitID:            uuid.NewString(),
		AttackerPlayerID: attackerPlayerID,
		TargetPlayerID:   targetPlayerID,
		WeaponID:         weaponID,
		Knockback:        res.Knockback,
		WasApplied:       res.Applied,
		ServerReason:     reason,
		CreatedAt:        s.now(),
	}
	s.events = append(s.events, event)

	return &models.HitOutcome{
		HitID:      event.HitID,
		WeaponID:   weaponID,
		Distance:   res.Distance,
		Knockback:  res.Knockback,
		WasApplied: res.Applied,
		Reason:     reason,
	}, nil
}

// HitEvents returns the most recent events involving the player, newest first.
func (s *ProfileStore) HitEvents(_ context.Context, playerID string, limit int) ([]*models.CombatHitEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.CombatHitEvent
	for i := len(s.events) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		e := s.events[i]
		if e.AttackerPlayerID == playerID || e.TargetPlayerID == playerID {
			cpy := *e
			out = append(out, &cpy)
		}
	}
	return out, nil
}

// OwnedWeapons returns the player's weapon set ordered by weapon id.
func (s *ProfileStore) OwnedWeapons(_ context.Context, playerID string) ([]models.OwnedWeapon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[playerID]; !ok {
		return nil, errs.ErrProfileNotFound
	}
	out := make([]models.OwnedWeapon, 0, len(s.owned[playerID]))
	for _, ow := range s.owned[playerID] {
		out = append(out, ow)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeaponID < out[j].WeaponID })
	return out, nil
}

func copyProfile(p *models.PlayerProfile) *models.PlayerProfile {
	cpy := *p
	if p.SkillID != nil {
		v := *p.SkillID
		cpy.SkillID = &v
	}
	if p.EquippedWeaponID != nil {
		v := *p.EquippedWeaponID
		cpy.EquippedWeaponID = &v
	}
	cpy.Attributes = make(map[string]any, len(p.Attributes))
	for k, v := range p.Attributes {
		cpy.Attributes[k] = v
	}
	cpy.Assets = make(map[string]any, len(p.Assets))
	for k, v := range p.Assets {
		cpy.Assets[k] = v
	}
	return &cpy
}

func sortProfiles(profiles []*models.PlayerProfile) {
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].PlayerID < profiles[j].PlayerID
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
}
