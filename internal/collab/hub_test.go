package collab

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdeck/drawdeck/internal/element"
	"github.com/drawdeck/drawdeck/internal/scene"
)

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func newTestHub() (*Hub, *scene.Store) {
	store := scene.NewStore()
	hub := NewHub(func(string) (*scene.Store, error) { return store, nil })
	return hub, store
}

func TestSendAfterDisconnectIsDropped(t *testing.T) {
	c := NewClient(nil, nil, "user_u", "U", "board_b", "c1")
	c.closeOutbound()
	c.closeOutbound()

	// A broadcast racing the disconnect must drop the frame, not panic.
	require.NotPanics(t, func() {
		c.Send(&Message{Type: TypeDocSync})
	})
}

func TestRoomLifecycle(t *testing.T) {
	hub, store := newTestHub()
	c := NewClient(hub, nil, "user_u", "U", "board_b", "c1")

	hub.addClient(c)
	require.NotNil(t, c.machine)
	hub.mu.RLock()
	_, ok := hub.rooms["board_b"]
	hub.mu.RUnlock()
	require.True(t, ok)

	hub.removeClient(c)
	hub.mu.RLock()
	_, ok = hub.rooms["board_b"]
	hub.mu.RUnlock()
	assert.False(t, ok)

	// The empty room unsubscribed from the store and the client's queue is
	// closed: later mutations and sends are safe no-ops.
	require.NotPanics(t, func() {
		store.AddElement(element.New(element.TypeRectangle, 0, 0, element.DefaultStyle()))
		c.Send(&Message{Type: TypeDocSync})
	})
}

func TestAddClientWithoutStoreClosesQueue(t *testing.T) {
	hub := NewHub(func(string) (*scene.Store, error) { return nil, errors.New("no such board") })
	c := NewClient(hub, nil, "user_u", "U", "board_missing", "c1")

	hub.addClient(c)
	require.NotPanics(t, func() {
		c.Send(&Message{Type: TypeDocSync})
	})
}

func TestProcessMessageDrivesBoardStore(t *testing.T) {
	hub, store := newTestHub()
	c := NewClient(hub, nil, "user_u", "U", "board_b", "c1")
	hub.addClient(c)
	defer hub.removeClient(c)

	hub.mu.RLock()
	room := hub.rooms["board_b"]
	hub.mu.RUnlock()
	require.NotNil(t, room)

	hub.processMessage(room, c, &Message{
		Type:    TypeToolSelect,
		Payload: payload(t, ToolPayload{Tool: scene.ToolRectangle}),
	})
	hub.processMessage(room, c, &Message{
		Type:    TypePointerDown,
		Payload: payload(t, map[string]float64{"x": 0, "y": 0}),
	})
	hub.processMessage(room, c, &Message{
		Type:    TypePointerMove,
		Payload: payload(t, map[string]float64{"x": 80, "y": 60}),
	})
	hub.processMessage(room, c, &Message{
		Type:    TypePointerUp,
		Payload: payload(t, map[string]float64{"x": 80, "y": 60}),
	})

	require.Equal(t, 1, store.Len())
	assert.Equal(t, scene.ToolSelect, store.Tool())

	hub.processMessage(room, c, &Message{Type: TypeOpUndo})
	assert.Equal(t, 0, store.Len())
}
