package websocket

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"invdash/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Dashboards only send heartbeats
	maxMessageSize = 512

	sendBuffer = 64
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	id         string
	remoteAddr string
	pongWait   time.Duration
	pingPeriod time.Duration
	logger     *slog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, timing Timing, logger *slog.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		id:         id,
		remoteAddr: conn.RemoteAddr().String(),
		pongWait:   timing.PongWait,
		pingPeriod: timing.PingPeriod,
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
		),
	}
}

// readPump answers client frames and keeps the read deadline moving so
// dead peers are detected.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Unexpected WebSocket close",
					slog.String("error", err.Error()))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		c.handleFrame(data)
	}
}

// handleFrame accepts heartbeats silently, answers ping with pong and
// anything else with an error message.
func (c *Client) handleFrame(data []byte) {
	var in struct {
		Type events.MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &in); err == nil {
		switch in.Type {
		case events.TypeHeartbeat:
			c.logger.Debug("Heartbeat received")
			return
		case events.TypePing:
			c.hub.sendTo(c, events.NewMessage(events.TypePong, nil))
			return
		}
	}

	c.logger.Debug("Unsupported client message",
		slog.Int("bytes", len(data)))
	c.hub.sendTo(c, events.NewMessage(events.TypeError, events.ErrorInfo{
		Message: "unsupported message; send {\"type\":\"ping\"} or {\"type\":\"heartbeat\"}",
	}))
}

// writePump is the only writer of conn.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (c *Client) greet(apiVersion string) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(events.NewMessage(events.TypeConnection, events.ConnectionInfo{
		ClientID:   c.id,
		APIVersion: apiVersion,
	}))
}
