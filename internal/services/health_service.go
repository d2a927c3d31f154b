package services

import (
	"context"
	"log/slog"
	"time"

	"invdash/internal/infrastructure"
	"invdash/pkg/contracts"
)

// ReadinessChecker is a dependency the server needs before taking traffic.
type ReadinessChecker interface {
	CheckReady(ctx context.Context) error
}

// ClientCounter reports connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	checks    map[string]ReadinessChecker
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Uptime    string                       `json:"uptime"`
	Checks    map[string]string            `json:"checks,omitempty"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Clients   int                          `json:"websocket_clients"`
}

// Status values
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// NewHealthService creates a health service. checks are keyed by the name
// reported in readiness responses; clients may be nil.
func NewHealthService(checks map[string]ReadinessChecker, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   contracts.Version,
		checks:    checks,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports liveness with runtime statistics.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	stats := infrastructure.CollectRuntimeStats(hs.startTime)
	status := hs.base(StatusOK)
	status.Runtime = &stats
	return status
}

// ReadinessCheck runs every registered check.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := hs.base(StatusReady)
	status.Checks = make(map[string]string, len(hs.checks))

	for name, check := range hs.checks {
		if err := check.CheckReady(ctx); err != nil {
			status.Checks[name] = err.Error()
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("check", name),
				slog.String("error", err.Error()))
			continue
		}
		status.Checks[name] = StatusOK
	}
	return status
}

// Version returns build information.
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) base(state string) HealthStatus {
	status := HealthStatus{
		Status:    state,
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
	}
	if hs.clients != nil {
		status.Clients = hs.clients.ClientCount()
	}
	return status
}
