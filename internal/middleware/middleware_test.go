package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "invdash/internal/errors"
	"invdash/internal/infrastructure"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestID(t *testing.T) {
	var seen, trace string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		trace = infrastructure.GetTraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, seen, trace)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", seen)
	assert.Equal(t, "caller-id", rec.Header().Get(RequestIDHeader))
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/inventory/items?stock=all", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "http", entry["component"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, "stock=all", entry["query"])
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(apierrors.NewErrorHandler(infrastructure.NewDiscardLogger(), false))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
	)

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRateLimiter(t *testing.T) {
	logger := infrastructure.NewDiscardLogger()
	rl := NewRateLimiter(0.001, 2, logger, apierrors.NewErrorHandler(logger, false))
	h := rl.Handler(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestTimeout(t *testing.T) {
	var ctxErr error
	h := Timeout(10*time.Millisecond, infrastructure.NewDiscardLogger())(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
			ctxErr = r.Context().Err()
		}),
	)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, errors.Is(ctxErr, context.DeadlineExceeded))
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}})(http.HandlerFunc(okHandler))

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantOrigin string
		wantCode   int
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "http://localhost:3000", wantOrigin: "http://localhost:3000", wantCode: http.StatusOK},
		{name: "foreign origin", method: http.MethodGet, origin: "http://evil.test", wantOrigin: "", wantCode: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:3000", preflight: true, wantOrigin: "http://localhost:3000", wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/inventory/items", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestTelemetry_RecordsRoutePattern(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    "invdash-test",
		EnableMetrics:  true,
	}, infrastructure.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(Telemetry(metrics))
	r.Get("/api/inventory/items/{row}", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/items/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `route="/api/inventory/items/{row}"`)
	assert.NotContains(t, rec.Body.String(), "/api/inventory/items/42")
}

func TestValidator_UsesQueryNames(t *testing.T) {
	type params struct {
		View  string `query:"view" validate:"omitempty,oneof=all slow reorder"`
		Limit int    `json:"limit" validate:"min=0"`
	}

	err := NewValidator().Struct(params{View: "fast", Limit: -1})
	require.Error(t, err)

	var valErrs validator.ValidationErrors
	require.True(t, errors.As(err, &valErrs))
	fields := []string{valErrs[0].Field(), valErrs[1].Field()}
	assert.ElementsMatch(t, []string{"view", "limit"}, fields)

	assert.NoError(t, NewValidator().Struct(params{}))
}
