package signaling

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rohan4324/Furever-App-sub000/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. 64 KB is enough for SDP
	// descriptors with a generous margin.
	maxMessageSize = 64 * 1024
)

// Client is a wrapper for a single websocket connection (one participant).
type Client struct {
	// Hub is the hub that manages this client.
	Hub *Hub

	// ID is the participant identifier issued server side when the
	// connection is accepted. Clients never choose their own.
	ID string

	// Conn is the websocket connection. Nil only in tests that drive the
	// hub directly.
	Conn *websocket.Conn

	// RoomID is the room the client is in, empty until a join.
	RoomID string

	// Send is a buffered channel for outbound messages. The hub writes to
	// it and WritePump drains it onto the websocket.
	Send chan *protocol.Envelope

	logger *zap.Logger
}

// NewClient builds a client around an accepted websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn, id string, logger *zap.Logger) *Client {
	return &Client{
		Hub:    hub,
		ID:     id,
		Conn:   conn,
		Send:   make(chan *protocol.Envelope, 256),
		logger: logger,
	}
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine, which
// guarantees at most one reader per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env protocol.Envelope
		if err := c.Conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("client read error", zap.String("participant", c.ID), zap.Error(err))
			}
			break
		}

		c.Hub.Inbound <- &Message{Envelope: &env, client: c}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection, which
// guarantees at most one writer per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(env); err != nil {
				c.logger.Debug("client write error", zap.String("participant", c.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
