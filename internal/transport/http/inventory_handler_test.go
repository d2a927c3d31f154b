package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invdash/internal/config"
	"invdash/internal/dataprocessing"
	apierrors "invdash/internal/errors"
	"invdash/internal/exporter"
	"invdash/internal/infrastructure"
	"invdash/internal/services"
	"invdash/internal/shared/testutil"
	"invdash/pkg/contracts/domain"
)

func testDataset() *domain.InventoryDataset {
	return &domain.InventoryDataset{
		ID:       "ds-1",
		Source:   "Fi.txt",
		Strategy: string(dataprocessing.StrategyCommaHeader),
		LoadedAt: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
		Columns:  domain.ExpectedColumns,
		Items: []domain.InventoryItem{
			{Row: 0, Brand: "Acme", Type: "Bolt", QtyOnHand: 5, SlowItems: 1},
			{Row: 1, Brand: "Zenith", Type: "Nut", QtyOnHand: 1, NextOrder: 1},
		},
	}
}

func newTestRouter(svc *MockInventoryService) http.Handler {
	logger := infrastructure.NewDiscardLogger()
	return NewInventoryHandler(svc, logger, apierrors.NewErrorHandler(logger, false)).Routes()
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestInventoryHandler_GetItems(t *testing.T) {
	ds := testDataset()
	svc := &MockInventoryService{}
	want := dataprocessing.Filter{Stock: dataprocessing.StockStocked, Brand: "Acme", View: dataprocessing.ViewSlow}
	svc.On("Items", mock.Anything, want, 50).
		Return(&services.ItemsResult{Dataset: ds, Items: ds.Items[:1], Total: 1}, nil)

	rec := serve(newTestRouter(svc), http.MethodGet, "/items?brand=Acme&view=slow&limit=50")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["returned"])
	assert.Equal(t, "ds-1", data["dataset"].(map[string]interface{})["id"])

	columns := data["columns"].([]interface{})
	assert.Len(t, columns, len(domain.ExpectedColumns)+len(domain.DerivedColumns))
	assert.Equal(t, domain.ColNextOrder, columns[len(columns)-1])

	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Acme", items[0].(map[string]interface{})[domain.ColBrand])
	svc.AssertExpectations(t)
}

func TestInventoryHandler_GetItemsKeepsExtraColumns(t *testing.T) {
	cfg := config.Default().Inventory
	cfg.FilePath = filepath.Join(t.TempDir(), "Fi.txt")
	header := append(append([]string(nil), domain.ExpectedColumns...), "ITEM_NO")
	testutil.WriteInventory(t, cfg.FilePath, header,
		append(testutil.ExportRow("5", "1", "80.25", "Acme", "Bolt"), "SKU-123"),
		append(testutil.ExportRow("7", "1", "20", "Acme", "Nut"), ""),
	)

	logger := infrastructure.NewDiscardLogger()
	svc := services.NewInventoryServiceWithLogger(cfg, nil, logger)
	router := NewInventoryHandler(svc, logger, apierrors.NewErrorHandler(logger, false)).Routes()

	rec := serve(router, http.MethodGet, "/items?stock=all")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			Columns []string                 `json:"columns"`
			Items   []map[string]interface{} `json:"items"`
		} `json:"data"`
	}
	dec := json.NewDecoder(rec.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&body))

	assert.Contains(t, body.Data.Columns, "ITEM_NO")
	require.Len(t, body.Data.Items, 2)
	for _, item := range body.Data.Items {
		for _, col := range body.Data.Columns {
			assert.Contains(t, item, col)
		}
	}
	assert.Equal(t, "SKU-123", body.Data.Items[0]["ITEM_NO"])
	assert.Nil(t, body.Data.Items[1]["ITEM_NO"])
	assert.Equal(t, json.Number("80.25"), body.Data.Items[0][domain.ColPrice])
}

func TestInventoryHandler_QueryValidation(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{name: "unknown stock", query: "stock=some"},
		{name: "unknown view", query: "view=fast"},
		{name: "negative limit", query: "limit=-1"},
		{name: "non-numeric limit", query: "limit=ten", wantCode: apierrors.ErrInvalidParameter.ErrorCode},
		{name: "limit too large", query: "limit=10001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockInventoryService{}
			rec := serve(newTestRouter(svc), http.MethodGet, "/items?"+tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, apierrors.TypeValidation, body["type"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			svc.AssertNotCalled(t, "Items", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInventoryHandler_ServiceFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "load failure",
			err:        &dataprocessing.LoadError{Path: "Fi.txt", Cause: errors.New("no such file")},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   apierrors.TypeInventoryLoad,
		},
		{
			name:       "schema failure",
			err:        &dataprocessing.SchemaError{Missing: []string{domain.ColPrice}},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeInventorySchema,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   apierrors.TypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockInventoryService{}
			svc.On("Summary", mock.Anything, mock.Anything).Return(dataprocessing.Summary{}, tt.err)

			rec := serve(newTestRouter(svc), http.MethodGet, "/summary")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, decode(t, rec)["type"])
		})
	}
}

func TestInventoryHandler_SummaryAndFilters(t *testing.T) {
	svc := &MockInventoryService{}
	svc.On("Summary", mock.Anything, dataprocessing.Filter{Stock: dataprocessing.StockAll}).
		Return(dataprocessing.Summary{TotalItems: 2, SlowItems: 1, ReorderItems: 1}, nil)
	svc.On("FilterOptions", mock.Anything, dataprocessing.Filter{Stock: dataprocessing.StockStocked, Brand: "Acme"}).
		Return(dataprocessing.FilterOptions{Brands: []string{"Acme", "Zenith"}, Types: []string{"Bolt"}}, nil)

	router := newTestRouter(svc)

	rec := serve(router, http.MethodGet, "/summary?stock=all")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total_items"])

	rec = serve(router, http.MethodGet, "/filters?brand=Acme")
	require.Equal(t, http.StatusOK, rec.Code)
	data = decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Bolt"}, data["types"])
	svc.AssertExpectations(t)
}

func TestInventoryHandler_Analytics(t *testing.T) {
	svc := &MockInventoryService{}
	opts := dataprocessing.DefaultAnalysisOptions()
	opts.TopMargin = 5
	svc.On("Analytics", mock.Anything, mock.Anything, opts).
		Return(dataprocessing.Analyze(testDataset().Items, opts), nil)

	router := newTestRouter(svc)

	rec := serve(router, http.MethodGet, "/analytics?top=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["data"], "abc_counts")

	rec = serve(router, http.MethodGet, "/analytics?top=1000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}

func TestInventoryHandler_Reload(t *testing.T) {
	svc := &MockInventoryService{}
	svc.On("Reload", mock.Anything).Return(testDataset(), nil)

	router := newTestRouter(svc)

	rec := serve(router, http.MethodPost, "/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["rows"])

	rec = serve(router, http.MethodGet, "/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestInventoryHandler_Export(t *testing.T) {
	svc := &MockInventoryService{}
	svc.On("Export", mock.Anything, exporter.FormatCSV, dataprocessing.Filter{Stock: dataprocessing.StockStocked}, mock.Anything).
		Return(func(w io.Writer) error {
			_, err := io.WriteString(w, "QTY_ON_HND\n5\n")
			return err
		})
	svc.On("Export", mock.Anything, exporter.FormatXLSX, mock.Anything, mock.Anything).
		Return(errors.New("disk full"))

	router := newTestRouter(svc)

	rec := serve(router, http.MethodGet, "/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, exporter.FormatCSV.ContentType(), rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "inventory_")
	assert.Equal(t, "QTY_ON_HND\n5\n", rec.Body.String())

	rec = serve(router, http.MethodGet, "/export.xlsx")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
