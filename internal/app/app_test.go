package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invdash/internal/config"
	"invdash/internal/infrastructure"
	"invdash/internal/shared/testutil"
	"invdash/pkg/contracts/domain"
	"invdash/pkg/contracts/events"
)

func testConfig(t *testing.T, rows ...[]string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Inventory.FilePath = filepath.Join(dir, "Fi.txt")
	cfg.Inventory.ExportDir = filepath.Join(dir, "exports")
	cfg.Server.Host = "127.0.0.1"
	cfg.Telemetry.TracingEnabled = false
	cfg.Telemetry.MetricsEnabled = true

	if rows != nil {
		testutil.WriteInventory(t, cfg.Inventory.FilePath, domain.ExpectedColumns, rows...)
	}
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *httptest.Server) {
	t.Helper()
	app, err := New(cfg, infrastructure.NewDiscardLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app, srv
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestApplication_InventoryRoutes(t *testing.T) {
	cfg := testConfig(t,
		testutil.ExportRow("5", "0", "20", "Acme", "Bolt"),
		testutil.ExportRow("0", "0", "80", "Acme", "Nut"),
		testutil.ExportRow("1", "5", "80", "Zenith", "Bolt"),
	)
	_, srv := newTestApp(t, cfg)

	var items struct {
		Status string `json:"status"`
		Data   struct {
			Total    int                      `json:"total"`
			Returned int                      `json:"returned"`
			Items    []map[string]interface{} `json:"items"`
		} `json:"data"`
	}
	resp := getJSON(t, srv.URL+"/api/inventory/items", &items)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "success", items.Status)
	// Row 2 is unstocked: nothing on hand, nothing sold.
	assert.Equal(t, 2, items.Data.Total)
	assert.Len(t, items.Data.Items, 2)

	var summary struct {
		Data struct {
			TotalItems     int `json:"total_items"`
			UnstockedItems int `json:"unstocked_items"`
		} `json:"data"`
	}
	resp = getJSON(t, srv.URL+"/api/inventory/summary?stock=all", &summary)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, summary.Data.TotalItems)
	assert.Equal(t, 1, summary.Data.UnstockedItems)

	resp = getJSON(t, srv.URL+"/api/inventory/items?view=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/problem+json")

	csvResp, err := http.Get(srv.URL + "/api/inventory/export.csv?stock=all")
	require.NoError(t, err)
	defer csvResp.Body.Close()
	body, err := io.ReadAll(csvResp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, csvResp.StatusCode)
	assert.Contains(t, string(body), domain.ColNextOrder)
	assert.Len(t, strings.Split(strings.TrimSpace(string(body)), "\n"), 4)
}

func TestApplication_HealthAndMetrics(t *testing.T) {
	cfg := testConfig(t, testutil.ExportRow("5", "1", "20", "Acme", "Bolt"))
	_, srv := newTestApp(t, cfg)

	var health map[string]interface{}
	resp := getJSON(t, srv.URL+"/api/health", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])

	resp = getJSON(t, srv.URL+"/api/health/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/api/version", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	body, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestApplication_MissingExport(t *testing.T) {
	cfg := testConfig(t)
	_, srv := newTestApp(t, cfg)

	resp := getJSON(t, srv.URL+"/api/inventory/items", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/api/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/api/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/problem+json")
}

func TestApplication_ReloadBroadcast(t *testing.T) {
	cfg := testConfig(t, testutil.ExportRow("5", "1", "20", "Acme", "Bolt"))
	app, srv := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.Services.WebSocket.Run(ctx)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	type message struct {
		Type events.MessageType     `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	read := func() message {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var m message
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}

	assert.Equal(t, events.TypeConnection, read().Type)
	require.Eventually(t, func() bool { return app.Services.WebSocket.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/inventory/reload", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	msg := read()
	assert.Equal(t, events.TypeInventoryReloaded, msg.Type)
	assert.Equal(t, float64(1), msg.Data["total_items"])
}

func TestApplication_StartStop(t *testing.T) {
	cfg := testConfig(t, testutil.ExportRow("5", "1", "20", "Acme", "Bolt"))
	app, err := New(cfg, infrastructure.NewDiscardLogger())
	require.NoError(t, err)
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	assert.NotNil(t, app.Services.Inventory.LastLoaded())
	assert.DirExists(t, cfg.Inventory.ExportDir)

	assert.NoError(t, app.Stop(ctx))
	select {
	case <-app.hubDone:
	case <-time.After(2 * time.Second):
		t.Fatal("hub still running after Stop")
	}
}
