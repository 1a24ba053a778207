// Package tenant defines the unit of data isolation and the per-operation value
// that says which tenant an operation acts for.
//
// # Tenant context
//
// Context is an immutable value holding an optional tenant id. It is built once
// per inbound operation, carried inside the operation's context.Context with
// Inject and read back with Current. There is no package-level current tenant:
// two goroutines serving different tenants each see only their own value.
//
//	ctx = tenant.Inject(ctx, tenant.New(id))
//	...
//	id, err := tenant.Current(ctx).Require() // ErrNoTenantContext when empty
//
// # Records
//
// Tenant is the account record managed by the registry. Tenant-owned entities
// embed Ownership, which provides the tenant_id column and implements Owned.
//
// # HTTP
//
// Middleware resolves the tenant of a request with a Resolver (subdomain or
// custom domain), loads it from a Provider, cross-checks or requires a verified
// token claim and injects both the record (WithTenant) and the Context.
// RequireTenant guards routes that need a tenant.
//
//	resolve := tenant.NewCompositeResolver(
//		tenant.NewSubdomainResolver("videos.example"),
//		tenant.NewCustomDomainResolver("videos.example"),
//	)
//	r.Use(tenant.Middleware(resolve, registry,
//		tenant.WithRequireClaim(jwt.TenantClaim),
//		tenant.WithSkipPaths("/healthz"),
//	))
//
// # Errors
//
// The sentinels in this package are shared by the whole isolation layer:
// ErrNoTenantContext, ErrCrossTenantViolation, ErrNotFound, ErrSlugConflict and
// ErrDomainConflict among them. Compare with errors.Is.
package tenant
