// Package scoped enforces tenant isolation on top of pkg/store.
//
// Three pieces cooperate:
//
//   - Installer registers every tenant-owned table once at startup and
//     produces Filters, the store.Filter that adds "<table>.tenant_id = ?"
//     to every statement using the tenant of the executing context.
//   - Repository is the application-facing CRUD surface for one tenant-owned
//     type. It fails with tenant.ErrNoTenantContext without a tenant, hides
//     other tenants' rows behind tenant.ErrNotFound and rejects writes of
//     foreign records with tenant.ErrCrossTenantViolation.
//   - StampingHook runs inside every batch commit, stamps new records with the
//     current tenant and rejects any foreign tenant-owned change that reached
//     the batch by another path.
//
// Wiring:
//
//	inst := scoped.NewInstaller()
//	scoped.Register[video.Video](inst)
//	db := store.New(sqlDB, sqlite.Dialect,
//		store.WithFilter(inst.Install()),
//		store.WithHooks(scoped.NewStampingHook()),
//	)
//	videos := scoped.NewRepository[video.Video](db)
//
// Operator is the explicit-tenant read path for platform tooling. It is a
// distinct type that requires an Authorizer, so code holding a Repository
// cannot reach it.
package scoped
