// Package logger builds *slog.Logger values with functional options and
// attribute helpers shared by the platform packages.
//
// New picks a text or JSON handler, attaches static attributes and wraps the
// handler with LogHandlerDecorator, which runs ContextExtractor callbacks on
// every record. Extractors are how per-operation values such as the request id
// or the current tenant reach the logs without being passed around:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "platformd"),
//		logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "video published", logger.RecordID(v.ID))
//
// Attribute helpers (Error, TenantID, Table, Operation, RecordID ...) keep key
// names consistent across packages.
package logger
