package collab

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/drawdeck/drawdeck/internal/element"
	"github.com/drawdeck/drawdeck/internal/interaction"
	"github.com/drawdeck/drawdeck/internal/scene"
)

// StoreResolver looks up the live scene store for a board.
type StoreResolver func(boardID string) (*scene.Store, error)

// roomQueueDepth bounds a room's inbound event queue.
const roomQueueDepth = 512

type roomEvent struct {
	client *Client
	msg    *Message
}

// Room fans one board out to its connected clients. Every store mutation
// triggers a doc.sync broadcast. Inbound events are applied by a single
// goroutine per room, so gestures and edits on one board are strictly
// ordered no matter how many clients submit them.
type Room struct {
	boardID     string
	store       *scene.Store
	unsubscribe func()
	clients     map[string]*Client // clientID -> client
	presence    *presenceTracker
	inbound     chan roomEvent
	done        chan struct{}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	resolve    StoreResolver
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(resolve StoreResolver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		resolve:    resolve,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
	h.mu.Lock()
	for id, room := range h.rooms {
		room.unsubscribe()
		close(room.done)
		delete(h.rooms, id)
	}
	h.mu.Unlock()
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		store, err := h.resolve(client.BoardID)
		if err != nil {
			h.mu.Unlock()
			slog.Warn("no store for board", "board", client.BoardID, "error", err)
			client.closeOutbound()
			return
		}
		room = &Room{
			boardID:  client.BoardID,
			store:    store,
			clients:  make(map[string]*Client),
			presence: newPresenceTracker(),
			inbound:  make(chan roomEvent, roomQueueDepth),
			done:     make(chan struct{}),
		}
		boardID := client.BoardID
		room.unsubscribe = store.Subscribe(func() {
			h.broadcastDocSync(boardID)
		})
		h.rooms[client.BoardID] = room
		go h.runRoom(room)
	}
	client.machine = interaction.NewMachine(room.store)
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Initial document state, then presence.
	client.Send(h.docSyncMessage(room.store, TypeWelcome))
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(client.BoardID, &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "board", client.BoardID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeOutbound()
	room.presence.Remove(client.ClientID)

	if len(room.clients) == 0 {
		room.unsubscribe()
		close(room.done)
		delete(h.rooms, client.BoardID)
	}
	h.mu.Unlock()

	leavePayload, _ := json.Marshal(PresenceLeavePayload{UserID: client.UserID})
	h.broadcastToRoom(client.BoardID, &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}, "")

	slog.Info("client left", "user", client.UserID, "board", client.BoardID)
}

// handleMessage queues an inbound frame onto the board's room loop. Read
// pumps call this concurrently; the room goroutine applies the events one
// at a time.
func (h *Hub) handleMessage(sender *Client, msg *Message) {
	h.mu.RLock()
	room, ok := h.rooms[sender.BoardID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case room.inbound <- roomEvent{client: sender, msg: msg}:
	case <-room.done:
	}
}

func (h *Hub) runRoom(room *Room) {
	for {
		select {
		case ev := <-room.inbound:
			h.processMessage(room, ev.client, ev.msg)
		case <-room.done:
			return
		}
	}
}

func (h *Hub) processMessage(room *Room, sender *Client, msg *Message) {
	if sender.machine == nil {
		return
	}

	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(room, sender, msg)

	case TypePointerDown, TypePointerMove, TypePointerUp, TypePointerLeave:
		var ev interaction.PointerEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			slog.Warn("invalid pointer payload", "error", err, "user", sender.UserID)
			return
		}
		switch msg.Type {
		case TypePointerDown:
			sender.machine.PointerDown(ev)
		case TypePointerMove:
			sender.machine.PointerMove(ev)
		case TypePointerUp:
			sender.machine.PointerUp(ev)
		case TypePointerLeave:
			sender.machine.PointerLeave(ev)
		}
		h.sendDraftState(sender)

	case TypeResizeStart:
		var p ResizeStartPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		sender.machine.StartResize(p.Handle)

	case TypeKeyDown:
		var p KeyPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		sender.machine.KeyDown(p.Key)

	case TypeToolSelect:
		var p ToolPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		room.store.SetTool(p.Tool)

	case TypeWheelZoom:
		var p WheelPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		room.store.ZoomAround(element.Point{X: p.X, Y: p.Y}, p.Delta)

	default:
		h.handleEditCommand(room, sender, msg)
	}
}

func (h *Hub) handleEditCommand(room *Room, sender *Client, msg *Message) {
	store := room.store
	switch msg.Type {
	case TypeOpUndo:
		store.Undo()
	case TypeOpRedo:
		store.Redo()
	case TypeOpDelete:
		store.DeleteElements(store.SelectedIDs())
	case TypeOpDuplicate:
		store.DuplicateElements(store.SelectedIDs())
	case TypeOpSelectAll:
		store.SelectAll()
	case TypeOpCopy:
		store.Copy()
	case TypeOpCut:
		store.Cut()
	case TypeOpPaste:
		store.PasteDefault()
	case TypeOpGroup:
		store.Group(store.SelectedIDs())
	case TypeOpUngroup:
		for _, id := range store.SelectedIDs() {
			if e := store.Element(id); e != nil && e.GroupID != "" {
				store.Ungroup(e.GroupID)
			}
		}
	case TypeOpFront:
		store.BringToFront(store.SelectedIDs())
	case TypeOpBack:
		store.SendToBack(store.SelectedIDs())
	case TypeOpForward:
		store.BringForward(store.SelectedIDs())
	case TypeOpBackward:
		store.SendBackward(store.SelectedIDs())
	case TypeOpAlign:
		var p AlignPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		store.Align(store.SelectedIDs(), p.Mode)
	case TypeOpDistribute:
		var p DistributePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		store.Distribute(store.SelectedIDs(), p.Axis)
	case TypeOpZoomToFit:
		var p ZoomToFitPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		store.ZoomToFit(p.ViewportWidth, p.ViewportHeight)
	case TypeOpSetGrid:
		var p GridPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		store.SetGrid(scene.Grid{Size: p.Size, Enabled: p.Enabled})
	case TypeOpSetDefaults:
		var p element.Style
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		store.SetDefaults(p)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(room *Room, sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.UserID = sender.UserID
	presence.DisplayName = sender.DisplayName
	room.presence.Update(sender.ClientID, &presence)

	outPayload, _ := json.Marshal(presence)
	h.broadcastToRoom(sender.BoardID, &Message{
		Type:     TypePresenceUpdate,
		UserID:   sender.UserID,
		ClientID: sender.ClientID,
		Payload:  outPayload,
	}, sender.ClientID)
}

func (h *Hub) docSyncMessage(store *scene.Store, msgType string) *Message {
	payload, err := json.Marshal(DocSyncPayload{
		Document:    store.Export(),
		SelectedIDs: store.SelectedIDs(),
		Hovered:     store.Hovered(),
		Tool:        store.Tool(),
		Transform:   store.Transform(),
		CanUndo:     store.CanUndo(),
		CanRedo:     store.CanRedo(),
	})
	if err != nil {
		slog.Error("marshal doc sync", "error", err)
		return nil
	}
	return &Message{Type: msgType, Payload: payload}
}

func (h *Hub) broadcastDocSync(boardID string) {
	h.mu.RLock()
	room, ok := h.rooms[boardID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if msg := h.docSyncMessage(room.store, TypeDocSync); msg != nil {
		h.broadcastToRoom(boardID, msg, "")
	}
}

func (h *Hub) sendDraftState(client *Client) {
	payload, err := json.Marshal(DraftStatePayload{
		State:   client.machine.State(),
		Draft:   client.machine.Draft(),
		Marquee: client.machine.Marquee(),
	})
	if err != nil {
		return
	}
	client.Send(&Message{Type: TypeDraftState, Payload: payload})
}

func (h *Hub) broadcastToRoom(boardID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[boardID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
