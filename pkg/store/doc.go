// Package store is the relational storage engine the rest of the platform sits on.
//
// It wraps a *sql.DB (through sqlx) and builds every statement with squirrel. The
// engine exposes exactly the three extension points the tenant isolation layer
// depends on:
//
//   - composable queries: Query is an immutable description of a SELECT; every
//     caller predicate is parenthesised and AND-ed with the others.
//   - a predicate injection point: a Filter, fixed when the DB is constructed,
//     supplies a mandatory predicate per table. It is evaluated for every query and
//     every UPDATE/DELETE against the context.Context of the executing call, never
//     against a value captured at startup.
//   - a pre-commit hook point: a Batch collects heterogeneous inserts, updates and
//     deletes; Commit runs all registered Hooks over the pending change set and then
//     applies it in a single transaction.
//
// # Usage
//
//	sdb := store.New(sqlDB, sqlite.Dialect,
//		store.WithFilter(filters),
//		store.WithHooks(stampingHook),
//		store.WithLogger(log),
//	)
//
//	var videos []*video.Video
//	err := sdb.Select(ctx, &videos, store.From("videos").
//		Where(sq.Eq{"status": "published"}).
//		OrderBy("created_at DESC").
//		Limit(20))
//
//	b := sdb.Batch()
//	b.Insert(v)
//	b.Update(p)
//	if err := b.Commit(ctx); err != nil {
//		return err
//	}
//
// # Errors
//
// ErrNotFound is returned for empty single-row reads and for updates or deletes
// that matched no row (including rows hidden by the filter). Unique constraint
// violations surface as *ConflictError, which matches ErrConflict with errors.Is.
// A Batch commits at most once; reuse returns ErrBatchDone.
package store
