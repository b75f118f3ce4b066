// Package presence tracks which users are currently connected. The map is
// process-local and purely push-driven: entries appear on connect, refresh on
// touch, and vanish on disconnect or logout. There is no TTL sweep.
package presence

import (
	"sync"
	"time"

	"github.com/ember-vale/api/internal/models"
)

// Tracker is a mutex-guarded user id -> presence map.
type Tracker struct {
	mu     sync.Mutex
	online map[string]models.PresenceInfo

	now func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		online: make(map[string]models.PresenceInfo),
		now:    time.Now,
	}
}

// Connect marks the user online, overwriting any prior entry.
func (t *Tracker) Connect(userID string) {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.online[userID] = models.PresenceInfo{ConnectedAt: now, LastSeen: now}
}

// Touch refreshes last_seen for a connected user; no-op otherwise.
func (t *Tracker) Touch(userID string) {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if info, ok := t.online[userID]; ok {
		info.LastSeen = now
		t.online[userID] = info
	}
}

// Disconnect removes the user's entry; idempotent if absent.
func (t *Tracker) Disconnect(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.online, userID)
}

// Snapshot returns a point-in-time copy of the presence map. The copy does
// not track later mutations.
func (t *Tracker) Snapshot() map[string]models.PresenceInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]models.PresenceInfo, len(t.online))
	for id, info := range t.online {
		out[id] = info
	}
	return out
}

// IsOnline reports whether the user has a presence entry.
func (t *Tracker) IsOnline(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.online[userID]
	return ok
}
