package collab

import (
	"encoding/json"

	"github.com/drawdeck/drawdeck/internal/element"
	"github.com/drawdeck/drawdeck/internal/geometry"
	"github.com/drawdeck/drawdeck/internal/interaction"
	"github.com/drawdeck/drawdeck/internal/scene"
)

type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Document sync (server → clients)
	TypeDocSync    = "doc.sync"
	TypeDraftState = "draft.state"

	// Presence
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"

	// Gesture input (client → server)
	TypePointerDown  = "pointer.down"
	TypePointerMove  = "pointer.move"
	TypePointerUp    = "pointer.up"
	TypePointerLeave = "pointer.leave"
	TypeKeyDown      = "key.down"
	TypeToolSelect   = "tool.select"
	TypeWheelZoom    = "wheel.zoom"
	TypeResizeStart  = "resize.start"

	// Editing commands (client → server, the keyboard-shortcut surface)
	TypeOpUndo        = "op.undo"
	TypeOpRedo        = "op.redo"
	TypeOpDelete      = "op.delete"
	TypeOpDuplicate   = "op.duplicate"
	TypeOpSelectAll   = "op.selectAll"
	TypeOpCopy        = "op.copy"
	TypeOpCut         = "op.cut"
	TypeOpPaste       = "op.paste"
	TypeOpGroup       = "op.group"
	TypeOpUngroup     = "op.ungroup"
	TypeOpFront       = "op.bringToFront"
	TypeOpBack        = "op.sendToBack"
	TypeOpForward     = "op.bringForward"
	TypeOpBackward    = "op.sendBackward"
	TypeOpAlign       = "op.align"
	TypeOpDistribute  = "op.distribute"
	TypeOpZoomToFit   = "op.zoomToFit"
	TypeOpSetGrid     = "op.setGrid"
	TypeOpSetDefaults = "op.setDefaults"
)

// DocSyncPayload carries the authoritative document plus the shared
// editing state after every mutation.
type DocSyncPayload struct {
	Document    *scene.Document    `json:"document"`
	SelectedIDs []string           `json:"selectedIds"`
	Hovered     string             `json:"hovered,omitempty"`
	Tool        scene.Tool         `json:"tool"`
	Transform   geometry.Transform `json:"transform"`
	CanUndo     bool               `json:"canUndo"`
	CanRedo     bool               `json:"canRedo"`
}

// DraftStatePayload echoes the submitting client's ephemeral gesture
// state: the in-progress draft element and the marquee rectangle.
type DraftStatePayload struct {
	State   interaction.State `json:"state"`
	Draft   *element.Element  `json:"draft,omitempty"`
	Marquee *geometry.Rect    `json:"marquee,omitempty"`
}

type KeyPayload struct {
	Key string `json:"key"`
}

type ToolPayload struct {
	Tool scene.Tool `json:"tool"`
}

type WheelPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Delta float64 `json:"delta"`
}

type ResizeStartPayload struct {
	Handle geometry.Handle `json:"handle"`
}

type AlignPayload struct {
	Mode geometry.AlignMode `json:"mode"`
}

type DistributePayload struct {
	Axis geometry.Axis `json:"axis"`
}

type ZoomToFitPayload struct {
	ViewportWidth  float64 `json:"viewportWidth"`
	ViewportHeight float64 `json:"viewportHeight"`
}

type GridPayload struct {
	Size    float64 `json:"size"`
	Enabled bool    `json:"enabled"`
}

// Presence payloads

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	UpdatedAt   int64      `json:"updatedAt,omitempty"`
}

// PresenceStatePayload maps clientID to that connection's cursor state.
type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}
