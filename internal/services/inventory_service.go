package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"invdash/internal/config"
	"invdash/internal/dataprocessing"
	apierrors "invdash/internal/errors"
	"invdash/internal/exporter"
	"invdash/internal/validation"
	"invdash/pkg/contracts/domain"
)

// ReloadNotifier is told about every reload outcome.
type ReloadNotifier interface {
	NotifyReloaded(ctx context.Context, ds *domain.InventoryDataset, summary dataprocessing.Summary)
	NotifyReloadFailed(ctx context.Context, source string, err error)
}

// ItemsResult is one filtered page of the current dataset.
type ItemsResult struct {
	Dataset *domain.InventoryDataset
	Items   []domain.InventoryItem
	// Total counts matching rows before the limit was applied
	Total int
}

// InventoryService loads, derives and serves the inventory dataset.
//
// With the per_request policy every call reloads the export, so edits to the
// file show up on the next request. The cached policy keeps the last dataset
// for CacheTTL (forever when zero) until Reload is called. Concurrent reloads
// of either policy share one load.
type InventoryService struct {
	cfg        config.InventoryConfig
	loader     *dataprocessing.Loader
	normalizer *dataprocessing.Normalizer
	exporter   *exporter.InventoryExporter
	source     *validation.SourceValidator
	notifier   ReloadNotifier
	logger     *slog.Logger

	reloads singleflight.Group
	mu      sync.RWMutex
	current *domain.InventoryDataset
	now     func() time.Time
}

// NewInventoryService creates an inventory service using the default logger
func NewInventoryService(cfg config.InventoryConfig) *InventoryService {
	return NewInventoryServiceWithLogger(cfg, nil, slog.Default())
}

// NewInventoryServiceWithLogger creates an inventory service. observer may be nil.
func NewInventoryServiceWithLogger(cfg config.InventoryConfig, observer dataprocessing.LoadObserver, logger *slog.Logger) *InventoryService {
	if logger == nil {
		logger = slog.Default()
	}

	opts := dataprocessing.DefaultOptions()
	if cfg.UnstockRule != "" {
		opts.UnstockRule = dataprocessing.UnstockRule(cfg.UnstockRule)
	}
	if cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	if cfg.ParallelThreshold > 0 {
		opts.ParallelThreshold = cfg.ParallelThreshold
	}

	loader := dataprocessing.NewLoader(logger)
	if observer != nil {
		loader = loader.WithObserver(observer)
	}

	logger.Info("InventoryService initialized",
		slog.String("file_path", cfg.FilePath),
		slog.String("reload_policy", cfg.ReloadPolicy),
		slog.String("unstock_rule", string(opts.UnstockRule)),
		slog.Int("workers", opts.Workers))

	return &InventoryService{
		cfg:        cfg,
		loader:     loader,
		normalizer: dataprocessing.NewNormalizer(opts, logger),
		exporter:   exporter.NewInventoryExporter(cfg.ExportDir, logger),
		source:     validation.NewSourceValidator(logger),
		logger:     logger.With(slog.String("component", "inventory_service")),
		now:        time.Now,
	}
}

// WithNotifier registers the receiver of reload events.
func (s *InventoryService) WithNotifier(n ReloadNotifier) *InventoryService {
	s.notifier = n
	return s
}

// Dataset returns the dataset for the current request according to the reload policy.
func (s *InventoryService) Dataset(ctx context.Context) (*domain.InventoryDataset, error) {
	if s.cfg.ReloadPolicy == config.ReloadCached {
		if ds := s.cached(); ds != nil {
			return ds, nil
		}
	}
	return s.Reload(ctx)
}

func (s *InventoryService) cached() *domain.InventoryDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	if s.cfg.CacheTTL > 0 && s.now().Sub(s.current.LoadedAt) >= s.cfg.CacheTTL {
		return nil
	}
	return s.current
}

// Reload reads the export again. A failed reload leaves the previous dataset
// in place and returns an error matching domain.ErrLoadFailure or
// domain.ErrSchemaFailure.
func (s *InventoryService) Reload(ctx context.Context) (*domain.InventoryDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := s.reloads.DoChan("reload", func() (interface{}, error) {
		// A caller giving up must not fail the callers sharing this load.
		return s.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.InventoryDataset), nil
	}
}

func (s *InventoryService) load(ctx context.Context) (*domain.InventoryDataset, error) {
	ctx, span := otel.Tracer("invdash/services").Start(ctx, "inventory.reload")
	defer span.End()

	ds, err := s.loadAndNormalize(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "inventory reload failed",
			slog.String("path", s.cfg.FilePath),
			slog.String("error", err.Error()))
		if s.notifier != nil {
			s.notifier.NotifyReloadFailed(ctx, s.cfg.FilePath, err)
		}
		return nil, err
	}

	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()

	summary := dataprocessing.Summarize(ds.Items)
	span.SetAttributes(
		attribute.String("inventory.dataset_id", ds.ID),
		attribute.Int("inventory.rows", ds.Len()),
	)
	s.logger.InfoContext(ctx, "inventory reloaded",
		slog.String("dataset_id", ds.ID),
		slog.String("strategy", ds.Strategy),
		slog.Int("rows", ds.Len()),
		slog.Int("slow_items", summary.SlowItems),
		slog.Int("reorder_items", summary.ReorderItems))

	if s.notifier != nil {
		s.notifier.NotifyReloaded(ctx, ds, summary)
	}
	return ds, nil
}

func (s *InventoryService) loadAndNormalize(ctx context.Context) (*domain.InventoryDataset, error) {
	raw, err := s.loader.Load(ctx, s.cfg.FilePath)
	if err != nil {
		return nil, err
	}

	if s.cfg.PositionalColumns && dataprocessing.ApplyPositionalSchema(raw) {
		s.logger.DebugContext(ctx, "applied positional column names",
			slog.String("path", s.cfg.FilePath))
	}

	return s.normalizer.Normalize(ctx, raw)
}

// Items returns the rows matching f, at most limit of them when limit > 0.
func (s *InventoryService) Items(ctx context.Context, f dataprocessing.Filter, limit int) (*ItemsResult, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	items := f.Apply(ds.Items)
	result := &ItemsResult{Dataset: ds, Items: items, Total: len(items)}
	if limit > 0 && len(items) > limit {
		result.Items = items[:limit]
	}
	return result, nil
}

// Summary counts the items selected by the stock, brand and type of f. The
// view is ignored so the counts describe the whole selection.
func (s *InventoryService) Summary(ctx context.Context, f dataprocessing.Filter) (dataprocessing.Summary, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return dataprocessing.Summary{}, err
	}

	f.View = dataprocessing.ViewAll
	return dataprocessing.Summarize(f.Apply(ds.Items)), nil
}

// FilterOptions returns the brand and type choices available under f.
func (s *InventoryService) FilterOptions(ctx context.Context, f dataprocessing.Filter) (dataprocessing.FilterOptions, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return dataprocessing.FilterOptions{}, err
	}
	return f.Options(ds.Items), nil
}

// Analytics builds the chart aggregates over the items selected by f.
func (s *InventoryService) Analytics(ctx context.Context, f dataprocessing.Filter, opts dataprocessing.AnalysisOptions) (*dataprocessing.Report, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.Analyze(f.Apply(ds.Items), opts), nil
}

// Export writes the items selected by f to w.
func (s *InventoryService) Export(ctx context.Context, format exporter.Format, f dataprocessing.Filter, w io.Writer) error {
	if format != exporter.FormatCSV && format != exporter.FormatXLSX {
		return apierrors.NewAppValidationError(fmt.Sprintf("export format %q is not csv or xlsx", format), ErrUnsupportedFormat).
			WithContext("format", string(format))
	}

	ds, err := s.Dataset(ctx)
	if err != nil {
		return err
	}

	items := f.Apply(ds.Items)
	if err := s.exporter.Export(ctx, w, format, ds, items); err != nil {
		return apierrors.NewExportError("failed to export inventory", err).
			WithContext("format", string(format))
	}

	s.logger.InfoContext(ctx, "inventory exported",
		slog.String("format", string(format)),
		slog.Int("rows", len(items)))
	return nil
}

// ExportFile writes the items selected by f as CSV into the export directory.
func (s *InventoryService) ExportFile(ctx context.Context, f dataprocessing.Filter) (string, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return "", err
	}

	name := exporter.Filename("inventory", exporter.FormatCSV, s.now())
	path, err := s.exporter.ExportFile(ctx, name, ds, f.Apply(ds.Items))
	if err != nil {
		return "", apierrors.NewExportError("failed to write export file", err).
			WithContext("file", name)
	}
	return path, nil
}

// CheckReady reports whether the configured export file can be opened.
func (s *InventoryService) CheckReady(_ context.Context) error {
	if err := s.source.ValidateSource(s.cfg.FilePath); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return nil
}

// LastLoaded returns the most recent successful dataset, or nil.
func (s *InventoryService) LastLoaded() *domain.InventoryDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsLoadFailure reports whether err means the export could not be read or
// did not carry the expected columns.
func IsLoadFailure(err error) bool {
	return errors.Is(err, domain.ErrLoadFailure) || errors.Is(err, domain.ErrSchemaFailure)
}
