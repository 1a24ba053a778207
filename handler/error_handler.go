package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/streamkit/platform/pkg/binder"
	"github.com/streamkit/platform/pkg/jwt"
	"github.com/streamkit/platform/pkg/logger"
	"github.com/streamkit/platform/pkg/scopes"
	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
	"github.com/streamkit/platform/pkg/validator"
)

// ErrorInfo is the classified, client-safe view of an error.
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
	// Internal marks errors that indicate a server defect rather than a bad
	// request. They are logged at error level.
	Internal bool
}

func (i ErrorInfo) Detail() *ErrorDetail {
	return &ErrorDetail{Code: i.Code, Message: i.Message, Details: i.Details}
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: wrapped conflicts carry both the tenant sentinel and
// store.ErrConflict, and the specific one must win.
var errorMappings = []errorMapping{
	{tenant.ErrSlugConflict, http.StatusConflict, "slug_conflict"},
	{tenant.ErrDomainConflict, http.StatusConflict, "domain_conflict"},
	{store.ErrConflict, http.StatusConflict, "conflict"},
	{tenant.ErrNotFound, http.StatusNotFound, "not_found"},
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
	{tenant.ErrTenantNotFound, http.StatusNotFound, "tenant_not_found"},
	{tenant.ErrCrossTenantViolation, http.StatusForbidden, "cross_tenant_violation"},
	{tenant.ErrInactiveTenant, http.StatusForbidden, "tenant_inactive"},
	{tenant.ErrTenantMismatch, http.StatusForbidden, "tenant_mismatch"},
	{tenant.ErrInvalidStatusTransition, http.StatusConflict, "invalid_status_transition"},
	{tenant.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{tenant.ErrInvalidIdentifier, http.StatusBadRequest, "invalid_tenant_identifier"},
	{scopes.ErrInsufficientScope, http.StatusForbidden, "insufficient_scope"},
	{jwt.ErrMissingToken, http.StatusUnauthorized, "unauthorized"},
	{jwt.ErrMissingClaims, http.StatusUnauthorized, "unauthorized"},
	{jwt.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{jwt.ErrExpiredToken, http.StatusUnauthorized, "token_expired"},
	{binder.ErrBodyTooLarge, http.StatusRequestEntityTooLarge, "request_entity_too_large"},
	{binder.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "unsupported_media_type"},
	{binder.ErrMissingContentType, http.StatusUnsupportedMediaType, "unsupported_media_type"},
	{binder.ErrFailedToParseJSON, http.StatusBadRequest, "bad_request"},
	{binder.ErrFailedToParseQuery, http.StatusBadRequest, "bad_request"},
	{binder.ErrFailedToParsePath, http.StatusBadRequest, "bad_request"},
}

// Classify maps err to a status code and a stable error code. A missing tenant
// context is a wiring defect and surfaces as 500.
func Classify(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{StatusCode: http.StatusOK}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{
			StatusCode: httpErr.Code,
			Code:       httpErr.Key,
			Message:    http.StatusText(httpErr.Code),
			Internal:   httpErr.Code >= http.StatusInternalServerError,
		}
	}

	if ve := validator.Extract(err); len(ve) > 0 {
		details := make(map[string][]string, len(ve))
		for _, e := range ve {
			details[e.Field] = append(details[e.Field], e.Message)
		}
		return ErrorInfo{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       "validation_error",
			Message:    validator.ErrValidationFailed.Error(),
			Details:    details,
		}
	}

	if errors.Is(err, tenant.ErrNoTenantContext) {
		return ErrorInfo{
			StatusCode: http.StatusInternalServerError,
			Code:       "internal_error",
			Message:    http.StatusText(http.StatusInternalServerError),
			Internal:   true,
		}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return ErrorInfo{StatusCode: m.status, Code: m.code, Message: m.target.Error()}
		}
	}

	return ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Code:       "internal_error",
		Message:    http.StatusText(http.StatusInternalServerError),
		Internal:   true,
	}
}

func logError(log *slog.Logger, r *http.Request, err error, info ErrorInfo) {
	attrs := []any{
		logger.Error(err),
		logger.Component("http"),
		slog.Int("status", info.StatusCode),
		slog.String("code", info.Code),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	if info.Internal {
		log.ErrorContext(r.Context(), "request failed", attrs...)
		return
	}
	log.DebugContext(r.Context(), "request rejected", attrs...)
}

// ErrorWriter returns a plain net/http error callback with the same
// classification and logging as NewErrorHandler. It plugs into
// jwt.MiddlewareConfig.ErrorHandler and tenant.WithErrorHandler.
func ErrorWriter(log *slog.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	if log == nil {
		log = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		info := Classify(err)
		logError(log, r, err, info)
		resp := jsonResponse{status: info.StatusCode, body: JSONResponse{Error: info.Detail()}}
		if renderErr := resp.Render(w, r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response",
				logger.Error(renderErr),
				logger.Event("render_error"),
			)
		}
	}
}

// NewErrorHandler creates the ErrorHandler passed to Wrap via WithErrorHandler.
// Configure it once in main and share it between services.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	write := ErrorWriter(log)
	return func(ctx Context, err error) {
		write(ctx.ResponseWriter(), ctx.Request(), err)
	}
}
