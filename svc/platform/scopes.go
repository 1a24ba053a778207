package platform

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/jwt"
	"github.com/streamkit/platform/pkg/scoped"
)

const (
	ScopeTenantsRead  = "platform.tenants.read"
	ScopeTenantsWrite = "platform.tenants.write"
)

// RequireScope fails unless the verified token in ctx grants scope. Grant
// "platform.tenants.*" for full operator access.
func RequireScope(ctx context.Context, scope string) error {
	return jwt.RequireScope(ctx, scope)
}

// authorizer lets operators with read scope into any existing tenant.
func (s *Service) authorizer() scoped.Authorizer {
	return func(ctx context.Context, tenantID uuid.UUID) error {
		if err := RequireScope(ctx, ScopeTenantsRead); err != nil {
			return err
		}
		_, err := s.registry.GetByID(ctx, tenantID)
		return err
	}
}
