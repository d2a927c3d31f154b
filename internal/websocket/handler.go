package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	apierrors "invdash/internal/errors"
	"invdash/pkg/contracts"
)

// Timing controls heartbeat behavior. PingPeriod must be shorter than PongWait.
type Timing struct {
	PingPeriod time.Duration
	PongWait   time.Duration
}

// HandlerConfig configures the upgrade endpoint
type HandlerConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	// AllowedOrigins lists browser origins allowed to connect; empty allows
	// same-host requests only
	AllowedOrigins []string
	Timing         Timing
}

// Handler upgrades GET /ws requests and attaches the connection to the hub.
type Handler struct {
	hub          *Hub
	upgrader     websocket.Upgrader
	timing       Timing
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHandler creates the /ws endpoint
func NewHandler(hub *Hub, cfg HandlerConfig, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		hub:          hub,
		timing:       cfg.Timing,
		errorHandler: errorHandler,
		logger:       logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
		// Rejections are rendered as problem documents below.
		Error: func(http.ResponseWriter, *http.Request, int, error) {},
	}
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.upgrader.CheckOrigin(r) {
		h.logger.WarnContext(r.Context(), "WebSocket origin rejected",
			slog.String("origin", r.Header.Get("Origin")))
		h.errorHandler.HandleError(w, r, apierrors.ErrOriginNotAllowed)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("origin", r.Header.Get("Origin")),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrWebSocketUpgrade)
		return
	}

	client := newClient(h.hub, conn, h.timing, h.logger)
	if err := client.greet(contracts.APIVersion); err != nil {
		conn.Close()
		return
	}
	if !h.hub.add(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
