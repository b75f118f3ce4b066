package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ember-vale/api/internal/errs"
	"github.com/ember-vale/api/internal/middleware"
	"github.com/ember-vale/api/internal/models"
	"github.com/ember-vale/api/internal/store"
)

// CombatHandler handles melee hit resolution and the hit log.
type CombatHandler struct {
	profiles    store.ProfileStore
	leaderboard store.HitLeaderboard // nil when no Redis is configured
	logger      *zap.Logger
}

// NewCombatHandler creates a new combat handler.
func NewCombatHandler(profiles store.ProfileStore, leaderboard store.HitLeaderboard, logger *zap.Logger) *CombatHandler {
	return &CombatHandler{profiles: profiles, leaderboard: leaderboard, logger: logger}
}

// HitRequest represents the hit attempt request body
type HitRequest struct {
	AttackerPlayerID string `json:"attacker_player_id"`
	TargetPlayerID   string `json:"target_player_id"`
}

// Hit handles POST /combat/hit. The attacker profile must belong to the
// caller; the target may belong to anyone.
func (h *CombatHandler) Hit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req HitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	if req.AttackerPlayerID == "" || req.TargetPlayerID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "attacker_player_id and target_player_id are required")
		return
	}

	// A missing attacker profile reports FORBIDDEN, same as one owned by
	// another user, so the endpoint does not leak which ids exist.
	userID, _ := middleware.UserID(r)
	attacker, err := h.profiles.Profile(r.Context(), req.AttackerPlayerID)
	if err != nil {
		writeDomainError(w, h.logger, errs.ErrForbidden)
		return
	}
	if attacker.UserID != userID {
		writeDomainError(w, h.logger, errs.ErrForbidden)
		return
	}

	outcome, err := h.profiles.ResolveHit(r.Context(), req.AttackerPlayerID, req.TargetPlayerID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if outcome.WasApplied && h.leaderboard != nil {
		// Best effort; the hit already committed.
		if err := h.leaderboard.RecordHit(r.Context(), req.AttackerPlayerID); err != nil {
			h.logger.Warn("failed to record leaderboard hit", zap.Error(err))
		}
	}

	h.logger.Info("hit resolved",
		zap.String("attacker", req.AttackerPlayerID),
		zap.String("target", req.TargetPlayerID),
		zap.Bool("applied", outcome.WasApplied),
		zap.Float64("distance", outcome.Distance),
	)

	writeOK(w, http.StatusOK, map[string]any{"combat": outcome})
}

// Log handles GET /combat/log?player_id=...&limit=N, returning the most
// recent hit events involving one of the caller's profiles.
func (h *CombatHandler) Log(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "player_id is required")
		return
	}

	userID, _ := middleware.UserID(r)
	profile, err := h.profiles.Profile(r.Context(), playerID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if profile.UserID != userID {
		writeDomainError(w, h.logger, errs.ErrForbidden)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.profiles.HitEvents(r.Context(), playerID, limit)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if events == nil {
		events = []*models.CombatHitEvent{}
	}

	writeOK(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}
