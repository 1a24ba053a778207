package tenant

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/logger"
)

// ErrorHandler handles errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ClaimFunc returns the tenant id asserted by a verified credential on the
// request, if any.
type ClaimFunc func(r *http.Request) (uuid.UUID, bool)

type config struct {
	errorHandler  ErrorHandler
	skipPaths     []string
	requireActive bool
	claim         ClaimFunc
	requireClaim  bool
	logger        *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithRequireActive rejects suspended and deleted tenants. It is on by default.
func WithRequireActive(require bool) Option {
	return func(c *config) {
		c.requireActive = require
	}
}

// WithClaimCheck rejects requests whose verified credential names a different
// tenant than the resolved one.
func WithClaimCheck(fn ClaimFunc) Option {
	return func(c *config) {
		c.claim = fn
	}
}

// WithRequireClaim is WithClaimCheck that also rejects requests carrying no
// verified tenant credential. The tenant context is then only built for callers
// the credential authorizes.
func WithRequireClaim(fn ClaimFunc) Option {
	return func(c *config) {
		c.claim = fn
		c.requireClaim = fn != nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func defaultConfig() *config {
	return &config{
		errorHandler:  defaultErrorHandler,
		requireActive: true,
		logger:        logger.Discard(),
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrInactiveTenant), errors.Is(err, ErrTenantMismatch):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "Invalid tenant identifier", http.StatusBadRequest)
	case errors.Is(err, ErrNoTenantContext):
		http.Error(w, "Tenant required", http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
