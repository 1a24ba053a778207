// Package sqlite opens go-sqlite3 databases for local development and tests and
// adapts them to the store engine.
//
// Dialect classifies UNIQUE constraint failures (extended code 2067) so that
// store.DB can report them as *store.ConflictError keyed by "table.column".
// Migrate runs the same goose migrations used for Postgres.
package sqlite
