package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"invdash/internal/dataprocessing"
	"invdash/internal/infrastructure"
	"invdash/pkg/contracts/domain"
	"invdash/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	done   chan struct{}
	logger *slog.Logger
}

// NewHub creates a new Hub. Call Run to start delivering messages.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Run delivers registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("Client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("Client unregistered",
				slog.String("client_id", client.id),
				slog.Int("total_clients", count))

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// deliver drops clients whose send buffer is full rather than stalling the hub.
func (h *Hub) deliver(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			h.logger.Warn("Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}
}

// Broadcast queues msg for every connected client. It returns without
// sending once the hub has stopped.
func (h *Hub) Broadcast(ctx context.Context, msg events.Message) {
	if msg.TraceID == "" {
		msg.TraceID = infrastructure.GetTraceID(ctx)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	case <-ctx.Done():
	}
}

// sendTo queues msg for one client. Unregistered clients and full buffers
// drop the message.
func (h *Hub) sendTo(c *Client, msg events.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn("Client send buffer full, reply dropped",
			slog.String("client_id", c.id))
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NotifyReloaded broadcasts inventory:reloaded so dashboards refetch.
func (h *Hub) NotifyReloaded(ctx context.Context, ds *domain.InventoryDataset, summary dataprocessing.Summary) {
	h.Broadcast(ctx, events.NewMessage(events.TypeInventoryReloaded, events.InventoryReloaded{
		DatasetID:      ds.ID,
		Source:         ds.Source,
		Strategy:       ds.Strategy,
		LoadedAt:       ds.LoadedAt,
		TotalItems:     summary.TotalItems,
		SlowItems:      summary.SlowItems,
		ReorderItems:   summary.ReorderItems,
		UnstockedItems: summary.UnstockedItems,
	}))
}

// NotifyReloadFailed broadcasts inventory:reload_failed with the failure kind.
func (h *Hub) NotifyReloadFailed(ctx context.Context, source string, err error) {
	h.Broadcast(ctx, events.NewMessage(events.TypeInventoryReloadFailed, events.InventoryReloadFailed{
		Source: source,
		Kind:   failureKind(err),
		Error:  err.Error(),
	}))
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrSchemaFailure):
		return "schema"
	case errors.Is(err, domain.ErrLoadFailure):
		return "load"
	default:
		return "internal"
	}
}
