package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/middleware"
	"github.com/ember-vale/api/internal/models"
	"github.com/ember-vale/api/internal/store"
)

// ProfileHandler handles the account view and player profile operations.
type ProfileHandler struct {
	accounts store.AccountStore
	profiles store.ProfileStore
	logger   *zap.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(accounts store.AccountStore, profiles store.ProfileStore, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{accounts: accounts, profiles: profiles, logger: logger}
}

// CreateProfileRequest represents the profile creation request body
type CreateProfileRequest struct {
	DisplayName string  `json:"display_name"`
	SkillID     *string `json:"skill_id"`
}

// UpdatePositionRequest represents the position update request body. X and Y
// are pointers so a missing coordinate is distinguishable from zero.
type UpdatePositionRequest struct {
	PlayerID string   `json:"player_id"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
}

// EquipRequest represents the equip request body
type EquipRequest struct {
	PlayerID string `json:"player_id"`
	WeaponID string `json:"weapon_id"`
}

// AcceptQuestRequest represents the quest accept request body
type AcceptQuestRequest struct {
	PlayerID string `json:"player_id"`
	QuestID  string `json:"quest_id"`
}

// Me handles GET /profile/me, returning the calling account and how many
// player profiles it owns.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _ := middleware.UserID(r)
	user, err := h.accounts.UserByID(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	profiles, err := h.profiles.ProfilesByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]any{
		"user":           user,
		"profiles_count": len(profiles),
	})
}

// Profiles handles /profiles: GET lists the caller's profiles, POST creates
// one with the starter bundle.
func (h *ProfileHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	profiles, err := h.profiles.ProfilesByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if profiles == nil {
		profiles = []*models.PlayerProfile{}
	}

	writeOK(w, http.StatusOK, map[string]any{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "display_name is required")
		return
	}

	profile, err := h.profiles.CreateProfile(r.Context(), userID, req.DisplayName, req.SkillID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("profile created",
		zap.String("user_id", userID),
		zap.String("player_id", profile.PlayerID),
	)

	writeOK(w, http.StatusCreated, map[string]any{"profile": profile})
}

// UpdatePosition handles POST /profiles/position.
func (h *ProfileHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UpdatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	if req.PlayerID == "" || req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "player_id, x, and y are required")
		return
	}

	if _, err := h.requireOwned(r, req.PlayerID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.profiles.SetPosition(r.Context(), req.PlayerID, *req.X, *req.Y); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]any{
		"player_id": req.PlayerID,
		"position":  models.Vec2{X: *req.X, Y: *req.Y},
	})
}

// Equip handles POST /profiles/equip.
func (h *ProfileHandler) Equip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EquipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	if req.PlayerID == "" || req.WeaponID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "player_id and weapon_id are required")
		return
	}

	if _, err := h.requireOwned(r, req.PlayerID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.profiles.SetEquippedWeapon(r.Context(), req.PlayerID, req.WeaponID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]any{
		"player_id":          req.PlayerID,
		"equipped_weapon_id": req.WeaponID,
	})
}

// AcceptQuest handles POST /profiles/quests/accept.
func (h *ProfileHandler) AcceptQuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AcceptQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	if req.PlayerID == "" || req.QuestID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "player_id and quest_id are required")
		return
	}

	if _, err := h.requireOwned(r, req.PlayerID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if err := h.profiles.AcceptQuest(r.Context(), req.PlayerID, req.QuestID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]any{
		"player_id": req.PlayerID,
		"quest_id":  req.QuestID,
		"status":    models.QuestStatusAccepted,
	})
}

// requireOwned resolves a profile and checks it belongs to the caller.
func (h *ProfileHandler) requireOwned(r *http.Request, playerID string) (*models.PlayerProfile, error) {
	userID, _ := middleware.UserID(r)
	profile, err := h.profiles.Profile(r.Context(), playerID)
	if err != nil {
		return nil, err
	}
	if profile.UserID != userID {
		return nil, errs.ErrForbidden
	}
	return profile, nil
}
