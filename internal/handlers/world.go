package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ember-vale/api/internal/middleware"
	"github.com/ember-vale/api/internal/models"
	"github.com/ember-vale/api/internal/presence"
	"github.com/ember-vale/api/internal/store"
)

// WorldHandler handles presence and the shared world snapshot.
type WorldHandler struct {
	accounts    store.AccountStore
	profiles    store.ProfileStore
	presence    *presence.Tracker
	leaderboard store.HitLeaderboard // nil when no Redis is configured
	logger      *zap.Logger
}

// NewWorldHandler creates a new world handler.
func NewWorldHandler(accounts store.AccountStore, profiles store.ProfileStore, tracker *presence.Tracker, leaderboard store.HitLeaderboard, logger *zap.Logger) *WorldHandler {
	return &WorldHandler{
		accounts:    accounts,
		profiles:    profiles,
		presence:    tracker,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// WorldPlayer is one entry in the world snapshot.
type WorldPlayer struct {
	PlayerID         string      `json:"player_id"`
	UserID           string      `json:"user_id"`
	DisplayName      string      `json:"display_name"`
	EquippedWeaponID *string     `json:"equipped_weapon_id"`
	Position         models.Vec2 `json:"position"`
	Online           bool        `json:"online"`
}

// Connect handles POST /session/connect, marking the caller online.
func (h *WorldHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _ := middleware.UserID(r)
	h.presence.Connect(userID)

	username := ""
	if user, err := h.accounts.UserByID(r.Context(), userID); err == nil {
		username = user.Username
	}

	writeOK(w, http.StatusOK, map[string]any{
		"connected": true,
		"user": map[string]string{
			"id":       userID,
			"username": username,
		},
	})
}

// Disconnect handles POST /session/disconnect. Disconnecting while offline
// is a no-op.
func (h *WorldHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _ := middleware.UserID(r)
	h.presence.Disconnect(userID)

	writeOK(w, http.StatusOK, map[string]any{"disconnected": true})
}

// Online handles GET /session/online, listing connected users. Reading the
// list refreshes the caller's own last-seen time.
func (h *WorldHandler) Online(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _ := middleware.UserID(r)
	h.presence.Touch(userID)

	online := make([]map[string]any, 0)
	for onlineUserID, info := range h.presence.Snapshot() {
		user, err := h.accounts.UserByID(r.Context(), onlineUserID)
		if err != nil {
			continue
		}
		online = append(online, map[string]any{
			"id":           onlineUserID,
			"username":     user.Username,
			"connected_at": info.ConnectedAt,
			"last_seen":    info.LastSeen,
		})
	}

	writeOK(w, http.StatusOK, map[string]any{
		"online": online,
		"count":  len(online),
	})
}

// State handles GET /world/state: every profile with its position, equipped
// weapon, and whether its owning user is online.
func (h *WorldHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _ := middleware.UserID(r)
	h.presence.Touch(userID)

	profiles, err := h.profiles.AllProfiles(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	onlineUsers := h.presence.Snapshot()
	players := make([]WorldPlayer, 0, len(profiles))
	for _, p := range profiles {
		_, online := onlineUsers[p.UserID]
		players = append(players, WorldPlayer{
			PlayerID:         p.PlayerID,
			UserID:           p.UserID,
			DisplayName:      p.DisplayName,
			EquippedWeaponID: p.EquippedWeaponID,
			Position:         p.Position,
			Online:           online,
		})
	}

	writeOK(w, http.StatusOK, map[string]any{
		"players": players,
		"count":   len(players),
	})
}

// Leaderboard handles GET /leaderboard/hits?limit=N. Without Redis the
// board is empty rather than an error.
func (h *WorldHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var limit int64 = 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	entries := []models.LeaderboardEntry{}
	if h.leaderboard != nil {
		var err error
		entries, err = h.leaderboard.TopHitters(r.Context(), limit)
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		if entries == nil {
			entries = []models.LeaderboardEntry{}
		}
	}

	writeOK(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
