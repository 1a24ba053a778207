package jwt

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/scopes"
)

type claimsKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

// TenantClaim returns the tenant named by the verified token of r. It plugs
// into tenant.WithClaimCheck and tenant.WithRequireClaim.
func TenantClaim(r *http.Request) (uuid.UUID, bool) {
	c, ok := ClaimsFromContext(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	return c.Tenant()
}

// RequireScope fails with ErrMissingClaims when ctx carries no verified token
// and with scopes.ErrInsufficientScope when the token lacks scope.
func RequireScope(ctx context.Context, scope string) error {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return ErrMissingClaims
	}
	if !scopes.Has(c.Scopes(), scope) {
		return scopes.ErrInsufficientScope
	}
	return nil
}
