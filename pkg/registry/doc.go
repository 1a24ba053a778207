// Package registry stores and resolves tenants.
//
// The registry is the one repository that is deliberately not tenant-scoped:
// resolving "which tenant is this request for" happens before any tenant
// context exists. It reads and writes only the tenants table and refuses to
// start if that table is guarded by the tenant filter.
//
//	reg := registry.New(db,
//		registry.WithCache(registry.NewMemoryCache(1024, 5*time.Minute)),
//		registry.WithLogger(log),
//	)
//	mw := tenant.Middleware(resolver, reg)
//
// Lookups by id, slug and custom domain are read-through cached. Writes
// invalidate every key of both the old and the new version of a tenant.
// Slugs and custom domains are globally unique; violations surface as
// tenant.ErrSlugConflict and tenant.ErrDomainConflict whether they are caught
// by the pre-check or by the storage constraint.
//
// Tenants are never removed. Delete moves a tenant to the terminal deleted
// status, which keeps its slug and domain reserved.
package registry
