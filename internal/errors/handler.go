package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"invdash/internal/dataprocessing"
	"invdash/pkg/contracts/domain"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeForbidden        = "/errors/forbidden"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
)

// Inventory error types
const (
	TypeInventoryLoad    = "/errors/inventory/load-failed"
	TypeInventorySchema  = "/errors/inventory/schema"
	TypeInventoryExport  = "/errors/inventory/export-failed"
	TypeWebSocketUpgrade = "/errors/websocket/upgrade-failed"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem.WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			"One or more query parameters are invalid",
			r.URL.Path,
		).WithExtension("errors", fieldErrors(valErrs))
	}

	switch {
	case errors.Is(err, domain.ErrSchemaFailure):
		problem := NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeInventorySchema,
			"Inventory Schema Mismatch",
			err.Error(),
			r.URL.Path,
		)
		var schemaErr *dataprocessing.SchemaError
		if errors.As(err, &schemaErr) {
			problem.WithExtension("missing_columns", schemaErr.Missing)
		}
		return problem

	case errors.Is(err, domain.ErrLoadFailure):
		problem := NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeInventoryLoad,
			"Inventory Unavailable",
			err.Error(),
			r.URL.Path,
		)
		var loadErr *dataprocessing.LoadError
		if errors.As(err, &loadErr) {
			attempts := make([]map[string]string, 0, len(loadErr.Attempts))
			for _, a := range loadErr.Attempts {
				attempts = append(attempts, map[string]string{
					"strategy": string(a.Strategy),
					"error":    a.Err.Error(),
				})
			}
			problem.WithExtension("attempts", attempts)
		}
		return problem
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case ErrInvalidParameter.ErrorCode:
		problemType = TypeValidation
	case ErrOriginNotAllowed.ErrorCode:
		problemType = TypeForbidden
	case ErrRateLimitExceeded.ErrorCode:
		problemType = TypeRateLimit
	case ErrWebSocketUpgrade.ErrorCode:
		problemType = TypeWebSocketUpgrade
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

func appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	status, problemType, title := http.StatusInternalServerError, TypeInternal, "Internal Server Error"
	switch appErr.Type {
	case ErrTypeValidation:
		status, problemType, title = http.StatusBadRequest, TypeValidation, "Validation Failed"
	case ErrTypeExport:
		problemType, title = TypeInventoryExport, "Export Failed"
	}

	problem := NewProblemDetails(status, problemType, title, appErr.Message, r.URL.Path)
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

func fieldErrors(errs validator.ValidationErrors) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, fe := range errs {
		msg := fmt.Sprintf("failed on '%s'", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed on '%s=%s'", fe.Tag(), fe.Param())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: msg})
	}
	return out
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
