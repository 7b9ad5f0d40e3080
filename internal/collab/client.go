package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/drawdeck/drawdeck/internal/interaction"
)

const (
	writeTimeout  = 10 * time.Second
	pingInterval  = 30 * time.Second
	readLimit     = 64 * 1024
	outboundDepth = 256
)

// Client is one websocket connection editing a board. Each client drives
// its own interaction machine; the board's store arbitrates the rest.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	machine *interaction.Machine

	mu       sync.Mutex // guards outbound closing
	closed   bool
	outbound chan []byte

	UserID      string
	DisplayName string
	BoardID     string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, boardID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		outbound:    make(chan []byte, outboundDepth),
		UserID:      userID,
		DisplayName: displayName,
		BoardID:     boardID,
		ClientID:    clientID,
	}
}

// ReadPump decodes inbound frames and hands them to the hub. It blocks
// until the connection drops, then unregisters the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(readLimit)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read error", "error", err, "user", c.UserID)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "user", c.UserID)
			continue
		}

		// Identity comes from the authenticated connection, never from
		// the frame.
		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.BoardID = c.BoardID

		c.hub.handleMessage(c, &msg)
	}
}

// WritePump drains the outbound queue and keeps the connection alive with
// pings. It exits when the queue closes or the context is cancelled.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case frame, ok := <-c.outbound:
			if !ok {
				return
			}
			if err := c.write(ctx, frame); err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, frame []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, frame)
}

// Send queues a message for delivery. A client that cannot keep up loses
// messages rather than stalling the board; a disconnected client drops
// them outright. Safe to call from any goroutine, including store
// observers racing the disconnect.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.outbound <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "user", c.UserID)
	}
}

// closeOutbound shuts the delivery queue exactly once, ending the write
// pump. Later Sends become no-ops.
func (c *Client) closeOutbound() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.outbound)
}
