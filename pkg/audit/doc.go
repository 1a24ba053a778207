// Package audit records security-relevant actions: cross-tenant write
// attempts, operator reads of a tenant's data and tenant lifecycle changes.
//
// A Logger builds events from the request context (tenant, actor, request id)
// and hands them to a Storage. SQLStorage writes to the audit_events table,
// MongoStorage to a MongoDB collection and MemoryStorage keeps them in process.
// AsyncStorage wraps any of them with a buffered background writer.
//
//	storage := audit.NewAsyncStorage(audit.NewSQLStorage(db), audit.AsyncOptions{}, nil)
//	defer storage.Close(ctx)
//	log := audit.NewLogger(storage, audit.WithTenantIDExtractor(tenantID))
//	_ = log.LogError(ctx, "scoped.cross_tenant_write", err, audit.WithResource("videos", id))
package audit
