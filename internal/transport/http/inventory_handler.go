package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"invdash/internal/dataprocessing"
	apierrors "invdash/internal/errors"
	"invdash/internal/exporter"
	mw "invdash/internal/middleware"
	api "invdash/pkg/contracts/api/v1"
)

// InventoryHandler serves the dashboard views of the current inventory dataset
type InventoryHandler struct {
	service      InventoryServiceInterface
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service InventoryServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *InventoryHandler {
	return &InventoryHandler{
		service:      service,
		validator:    mw.NewValidator(),
		logger:       logger.With(slog.String("component", "inventory_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the inventory routes, mounted at /api/inventory
func (h *InventoryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/items", h.GetItems)
		r.Get("/summary", h.GetSummary)
		r.Get("/filters", h.GetFilters)
		r.Get("/analytics", h.GetAnalytics)
		r.Post("/reload", h.Reload)
	})

	r.Get("/export.csv", h.exportAs(exporter.FormatCSV))
	r.Get("/export.xlsx", h.exportAs(exporter.FormatXLSX))

	return r
}

// GetItems handles GET /api/inventory/items
func (h *InventoryHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	result, err := h.service.Items(r.Context(), toFilter(q), q.Limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ds := result.Dataset
	render.JSON(w, r, api.Success(api.ItemsResponse{
		Dataset: api.DatasetMeta{
			ID:       ds.ID,
			Source:   ds.Source,
			Strategy: ds.Strategy,
			LoadedAt: ds.LoadedAt,
			Rows:     ds.Len(),
		},
		Columns:  dataprocessing.EnrichedColumns(ds.Columns),
		Total:    result.Total,
		Returned: len(result.Items),
		Items:    result.Items,
	}))
}

// GetSummary handles GET /api/inventory/summary
func (h *InventoryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), toFilter(q))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(summary))
}

// GetFilters handles GET /api/inventory/filters. Brand choices follow the
// stock selection and type choices follow the brand as well.
func (h *InventoryHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	options, err := h.service.FilterOptions(r.Context(), toFilter(q))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(options))
}

// GetAnalytics handles GET /api/inventory/analytics
func (h *InventoryHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	aq := api.AnalyticsQuery{InventoryQuery: q}
	var err error
	if aq.DemandWeeks, err = intParam(r, "demand_weeks"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if aq.OverstockWeeks, err = intParam(r, "overstock_weeks"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if aq.TopMargin, err = intParam(r, "top"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.validator.Struct(aq); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	opts := dataprocessing.DefaultAnalysisOptions()
	if aq.DemandWeeks > 0 {
		opts.DemandWeeks = int64(aq.DemandWeeks)
	}
	if aq.OverstockWeeks > 0 {
		opts.OverstockWeeks = int64(aq.OverstockWeeks)
	}
	if aq.TopMargin > 0 {
		opts.TopMargin = aq.TopMargin
	}

	report, err := h.service.Analytics(r.Context(), toFilter(q), opts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(report))
}

// Reload handles POST /api/inventory/reload
func (h *InventoryHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "inventory reloaded on request",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("dataset_id", ds.ID),
		slog.Int("rows", ds.Len()))

	render.JSON(w, r, api.Success(api.DatasetMeta{
		ID:       ds.ID,
		Source:   ds.Source,
		Strategy: ds.Strategy,
		LoadedAt: ds.LoadedAt,
		Rows:     ds.Len(),
	}))
}

// exportAs handles GET /api/inventory/export.{csv,xlsx}. The file is built in
// memory first so a failure still produces a problem response.
func (h *InventoryHandler) exportAs(format exporter.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := h.parseQuery(w, r)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := h.service.Export(r.Context(), format, toFilter(q), &buf); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		filename := exporter.Filename("inventory", format, time.Now())
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.WarnContext(r.Context(), "export write interrupted",
				slog.String("format", string(format)),
				slog.String("error", err.Error()))
		}
	}
}

// parseQuery reads and validates the shared filter parameters. It writes the
// error response itself and reports whether the handler should continue.
func (h *InventoryHandler) parseQuery(w http.ResponseWriter, r *http.Request) (api.InventoryQuery, bool) {
	values := r.URL.Query()
	q := api.InventoryQuery{
		Stock: values.Get("stock"),
		Brand: values.Get("brand"),
		Type:  values.Get("type"),
		View:  values.Get("view"),
	}

	limit, err := intParam(r, "limit")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	q.Limit = limit

	if err := h.validator.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	return q, true
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.InvalidParameter(name, fmt.Sprintf("%s must be a valid integer", name))
	}
	return v, nil
}

// toFilter maps query parameters onto the shared filter. The dashboard opens
// on stocked items, so an absent stock parameter means stocked.
func toFilter(q api.InventoryQuery) dataprocessing.Filter {
	stock := dataprocessing.StockFilter(q.Stock)
	if stock == "" {
		stock = dataprocessing.StockStocked
	}
	return dataprocessing.Filter{
		Stock: stock,
		Brand: q.Brand,
		Type:  q.Type,
		View:  dataprocessing.View(q.View),
	}
}
