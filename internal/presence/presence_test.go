package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectTouchDisconnect(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return base }

	tr.Connect("u1")
	require.True(t, tr.IsOnline("u1"))

	tr.now = func() time.Time { return base.Add(30 * time.Second) }
	tr.Touch("u1")

	snap := tr.Snapshot()
	require.Contains(t, snap, "u1")
	assert.Equal(t, base, snap["u1"].ConnectedAt)
	assert.Equal(t, base.Add(30*time.Second), snap["u1"].LastSeen)

	tr.Disconnect("u1")
	assert.False(t, tr.IsOnline("u1"))

	// Disconnecting an absent user is fine.
	tr.Disconnect("u1")
}

func TestTouchUnknownUserIsNoOp(t *testing.T) {
	tr := NewTracker()
	tr.Touch("ghost")
	assert.Empty(t, tr.Snapshot())
}

func TestConnectOverwritesPriorEntry(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tr.now = func() time.Time { return base }
	tr.Connect("u1")

	tr.now = func() time.Time { return base.Add(time.Minute) }
	tr.Connect("u1")

	snap := tr.Snapshot()
	assert.Equal(t, base.Add(time.Minute), snap["u1"].ConnectedAt)
}

func TestSnapshotIsDetached(t *testing.T) {
	tr := NewTracker()
	tr.Connect("u1")

	snap := tr.Snapshot()
	tr.Disconnect("u1")

	assert.Contains(t, snap, "u1")
	assert.False(t, tr.IsOnline("u1"))
}
