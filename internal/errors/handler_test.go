package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invdash/internal/dataprocessing"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	type query struct {
		View string `validate:"oneof=all slow reorder"`
	}
	valErr := validator.New().Struct(query{View: "fast"})
	require.Error(t, valErr)

	loadErr := &dataprocessing.LoadError{
		Path: "Fi.txt",
		Attempts: []dataprocessing.StrategyAttempt{
			{Strategy: dataprocessing.StrategyCommaHeader, Err: fmt.Errorf("bad header")},
		},
		Cause: fmt.Errorf("bad header"),
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantExt    string
	}{
		{name: "load failure", err: loadErr, wantStatus: http.StatusServiceUnavailable, wantType: TypeInventoryLoad, wantExt: "attempts"},
		{name: "wrapped load failure", err: fmt.Errorf("reload: %w", loadErr), wantStatus: http.StatusServiceUnavailable, wantType: TypeInventoryLoad},
		{name: "schema failure", err: &dataprocessing.SchemaError{Missing: []string{"PRICE"}}, wantStatus: http.StatusUnprocessableEntity, wantType: TypeInventorySchema, wantExt: "missing_columns"},
		{name: "validation", err: valErr, wantStatus: http.StatusBadRequest, wantType: TypeValidation, wantExt: "errors"},
		{name: "timeout", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout, wantType: TypeTimeout},
		{name: "invalid parameter", err: InvalidParameter("limit", "limit must be a valid integer"), wantStatus: http.StatusBadRequest, wantType: TypeValidation, wantExt: "details"},
		{name: "origin", err: ErrOriginNotAllowed, wantStatus: http.StatusForbidden, wantType: TypeForbidden, wantExt: "error_code"},
		{name: "validation app error", err: NewAppValidationError("bad format", nil), wantStatus: http.StatusBadRequest, wantType: TypeValidation},
		{name: "export app error", err: NewExportError("write failed", fs.ErrPermission), wantStatus: http.StatusInternalServerError, wantType: TypeInventoryExport},
		{name: "unknown", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantType: TypeInternal},
	}

	h := NewErrorHandler(nil, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/inventory/items", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/inventory/items", body["instance"])
			assert.Contains(t, body, "trace_id")
			if tt.wantExt != "" {
				assert.Contains(t, body, tt.wantExt)
			}
		})
	}
}

func TestErrorHandler_UnknownErrorHidesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	NewErrorHandler(nil, false).HandleError(rec, req, fmt.Errorf("password=hunter2"))

	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestErrorHandler_SchemaExtension(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/reload", nil)
	rec := httptest.NewRecorder()

	NewErrorHandler(nil, false).HandleError(rec, req, &dataprocessing.SchemaError{Missing: []string{"FIRST", "PRICE"}})

	body := decodeProblem(t, rec)
	assert.Equal(t, []interface{}{"FIRST", "PRICE"}, body["missing_columns"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)

	rec := httptest.NewRecorder()
	NewErrorHandler(nil, false).HandlePanic(rec, req, "kaboom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, decodeProblem(t, rec), "panic")

	rec = httptest.NewRecorder()
	NewErrorHandler(nil, true).HandlePanic(rec, req, "kaboom")
	body := decodeProblem(t, rec)
	assert.Equal(t, "kaboom", body["panic"])
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	h := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/inventory/items", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "DELETE")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusTeapot, "/errors/x", "Teapot", "", "").WithExtension("extra", 1)

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(418), body["status"])
	assert.Equal(t, float64(1), body["extra"])
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "instance")
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewExportError("write failed", fs.ErrInvalid).WithContext("format", "xlsx")

	assert.ErrorIs(t, err, fs.ErrInvalid)
	assert.Equal(t, "[EXPORT] write failed: invalid argument", err.Error())
	assert.Equal(t, "xlsx", err.Context["format"])
}

func TestInvalidParameter_LeavesPredefinedErrorUnchanged(t *testing.T) {
	err := InvalidParameter("top", "top must be a valid integer")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, ErrInvalidParameter.ErrorCode, err.ErrorCode)
	assert.Equal(t, []ValidationError{{Field: "top", Message: "top must be a valid integer"}}, err.Details)
	assert.Nil(t, ErrInvalidParameter.Details)
}
