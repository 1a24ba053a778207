package tenant

import (
	"context"
	"log/slog"
)

// contextKey prevents collisions with other packages using context values
type contextKey struct{}

// WithTenant stores the resolved tenant record for handlers that need to
// display it. Authorization for data access comes from Inject, not from this.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok && t != nil
}

// LoggerExtractor returns a function that enriches log records with the tenant
// id of the operation.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := Current(ctx).TenantID(); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
