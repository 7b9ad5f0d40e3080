package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// presenceTracker holds the live cursors on one board, keyed by client so
// two tabs of the same user each show their own cursor. Presence is
// ephemeral and never touches the document.
type presenceTracker struct {
	mu      sync.RWMutex
	cursors map[string]*PresencePayload // clientID -> presence
}

func newPresenceTracker() *presenceTracker {
	return &presenceTracker{cursors: make(map[string]*PresencePayload)}
}

func (pt *presenceTracker) Update(clientID string, p *PresencePayload) {
	p.UpdatedAt = time.Now().UnixMilli()
	pt.mu.Lock()
	pt.cursors[clientID] = p
	pt.mu.Unlock()
}

func (pt *presenceTracker) Remove(clientID string) {
	pt.mu.Lock()
	delete(pt.cursors, clientID)
	pt.mu.Unlock()
}

// Snapshot returns a copy of the current cursor map.
func (pt *presenceTracker) Snapshot() map[string]*PresencePayload {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	out := make(map[string]*PresencePayload, len(pt.cursors))
	for id, p := range pt.cursors {
		out[id] = p
	}
	return out
}

// StateMessage packages the full presence map for a newly joined client,
// or nil when the board has no one else on it.
func (pt *presenceTracker) StateMessage() *Message {
	snap := pt.Snapshot()
	if len(snap) == 0 {
		return nil
	}
	payload, err := json.Marshal(PresenceStatePayload{Presences: snap})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{Type: TypePresenceState, Payload: payload}
}
