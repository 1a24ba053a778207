package tenant

import "errors"

var (
	// ErrNoTenantContext is returned by every scoped operation attempted without a
	// resolved tenant. It signals missing middleware wiring and must never be
	// turned into an empty result.
	ErrNoTenantContext = errors.New("no tenant context")

	// ErrCrossTenantViolation is returned when a write targets a record owned by a
	// tenant other than the one in context. Nothing is persisted.
	ErrCrossTenantViolation = errors.New("cross-tenant violation")

	// ErrNotFound is returned by scoped lookups both for ids that do not exist and
	// for ids owned by another tenant.
	ErrNotFound = errors.New("not found")

	ErrSlugConflict   = errors.New("tenant slug already taken")
	ErrDomainConflict = errors.New("tenant custom domain already taken")

	ErrTenantNotFound          = errors.New("tenant not found")
	ErrInvalidIdentifier       = errors.New("invalid tenant identifier")
	ErrInactiveTenant          = errors.New("tenant is inactive")
	ErrInvalidStatus           = errors.New("invalid tenant status")
	ErrInvalidStatusTransition = errors.New("invalid tenant status transition")

	// ErrTenantMismatch is returned when a verified token names a different tenant
	// than the one resolved from the request host.
	ErrTenantMismatch = errors.New("token tenant does not match request tenant")
)
