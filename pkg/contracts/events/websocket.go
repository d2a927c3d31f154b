// Package events contains the messages pushed to dashboard clients over WebSocket.
package events

import "time"

// MessageType identifies a WebSocket message
type MessageType string

const (
	TypeConnection            MessageType = "connection"
	TypeInventoryReloaded     MessageType = "inventory:reloaded"
	TypeInventoryReloadFailed MessageType = "inventory:reload_failed"
	TypePong                  MessageType = "pong"
	TypeError                 MessageType = "error"

	// Sent by clients.
	TypeHeartbeat MessageType = "heartbeat"
	TypePing      MessageType = "ping"
)

// Message is the envelope of every server-sent frame.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// NewMessage stamps a message with the current UTC time.
func NewMessage(t MessageType, data interface{}) Message {
	return Message{Type: t, Timestamp: time.Now().UTC(), Data: data}
}

// InventoryReloaded announces a freshly derived dataset. Clients refetch
// whatever view they hold.
type InventoryReloaded struct {
	DatasetID      string    `json:"dataset_id"`
	Source         string    `json:"source"`
	Strategy       string    `json:"strategy"`
	LoadedAt       time.Time `json:"loaded_at"`
	TotalItems     int       `json:"total_items"`
	SlowItems      int       `json:"slow_items"`
	ReorderItems   int       `json:"reorder_items"`
	UnstockedItems int       `json:"unstocked_items"`
}

// InventoryReloadFailed reports that the dashboard still serves its previous dataset.
type InventoryReloadFailed struct {
	Source string `json:"source"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

// ConnectionInfo is sent once after the upgrade.
type ConnectionInfo struct {
	ClientID   string `json:"client_id"`
	APIVersion string `json:"api_version"`
}

// ErrorInfo answers a client frame the server does not accept.
type ErrorInfo struct {
	Message string `json:"message"`
}
