package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"invdash/internal/config"
	apierrors "invdash/internal/errors"
	"invdash/internal/infrastructure"
	customMiddleware "invdash/internal/middleware"
	"invdash/internal/services"
	transport "invdash/internal/transport/http"
	"invdash/internal/validation"
	ws "invdash/internal/websocket"
	"invdash/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler

	logCloser io.Closer
	startedAt time.Time
	hubDone   chan struct{}
	stopHub   context.CancelFunc
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Inventory *services.InventoryService
	Health    *services.HealthService
	WebSocket *ws.Hub
}

// NewApplication loads configuration from the environment and the optional
// config file, then builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, err := New(cfg, logger)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	app.logCloser = closer
	return app, nil
}

// New wires an application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("inventory_file", cfg.Inventory.FilePath),
		slog.String("reload_policy", cfg.Inventory.ReloadPolicy))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
		startedAt:     time.Now(),
	}

	if err := app.initializeServices(); err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	if err := infrastructure.RegisterUptimeMetric(a.OTelProviders.Meter, a.startedAt); err != nil {
		return fmt.Errorf("failed to register uptime metric: %w", err)
	}

	hub := ws.NewHub(a.Logger)
	inventory := services.NewInventoryServiceWithLogger(a.Config.Inventory, metrics, a.Logger).
		WithNotifier(hub)
	health := services.NewHealthService(map[string]services.ReadinessChecker{
		"inventory": inventory,
	}, hub, a.Logger)

	a.Services = &ServiceContainer{
		Inventory: inventory,
		Health:    health,
		WebSocket: hub,
	}

	a.Logger.Info("Services initialized",
		slog.String("unstock_rule", a.Config.Inventory.UnstockRule),
		slog.Int("workers", a.Config.Inventory.Workers))
	return nil
}

// setupRouter configures the HTTP router
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Only middleware that leaves the ResponseWriter untouched runs before /ws.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Handle("/ws", ws.NewHandler(a.Services.WebSocket, ws.HandlerConfig{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		AllowedOrigins:  a.Config.Security.AllowedOrigins,
		Timing: ws.Timing{
			PingPeriod: a.Config.WebSocket.PingPeriod,
			PongWait:   a.Config.WebSocket.PongWait,
		},
	}, a.ErrorHandler, a.Logger))

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.Telemetry(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				ExposedHeaders: []string{customMiddleware.RequestIDHeader, "Content-Disposition"},
				MaxAge:         300,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.Compress(5))

		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	// Set last so the handlers reach every mounted subrouter.
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	inventoryHandler := transport.NewInventoryHandler(a.Services.Inventory, a.Logger, a.ErrorHandler)
	healthHandler := transport.NewHealthHandler(a.Services.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/inventory", inventoryHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Mount("/", healthHandler.Routes())
		})
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Start starts the hub and the HTTP server. A listener failure calls cancel
// so Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	hubCtx, stopHub := context.WithCancel(context.WithoutCancel(ctx))
	a.stopHub = stopHub
	a.hubDone = make(chan struct{})
	go func() {
		defer close(a.hubDone)
		a.Services.WebSocket.Run(hubCtx)
	}()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", a.Server.Addr))
	return nil
}

// performStartupHealthCheck loads the inventory once so a missing or broken
// export shows up in the log before the first request.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	source := validation.NewSourceValidator(a.Logger)
	if err := source.ValidateExportDir(a.Config.Inventory.ExportDir); err != nil {
		return err
	}
	if err := source.ValidateSource(a.Config.Inventory.FilePath); err != nil {
		return err
	}

	ds, err := a.Services.Inventory.Reload(ctx)
	if err != nil {
		return err
	}
	a.Logger.InfoContext(ctx, "Inventory loaded",
		slog.String("dataset_id", ds.ID),
		slog.String("strategy", ds.Strategy),
		slog.Int("rows", len(ds.Items)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.stopHub != nil {
		a.stopHub()
		select {
		case <-a.hubDone:
		case <-shutdownCtx.Done():
			a.Logger.WarnContext(ctx, "WebSocket hub did not stop in time")
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")

	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, stop); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")

	return a.Stop(ctx)
}
