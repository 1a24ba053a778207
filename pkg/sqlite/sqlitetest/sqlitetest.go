// Package sqlitetest provides a migrated, throwaway SQLite database for tests.
package sqlitetest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/platform/migrations"
	"github.com/streamkit/platform/pkg/logger"
	"github.com/streamkit/platform/pkg/sqlite"
)

// Open returns a private in-memory database with the platform schema applied.
// Foreign keys are left off so tests can create owned rows for arbitrary tenant
// ids without provisioning the tenants first.
func Open(tb testing.TB) *sql.DB {
	tb.Helper()

	cfg := sqlite.Config{
		Path: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := sqlite.Open(context.Background(), cfg)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = db.Close() })

	require.NoError(tb, sqlite.Migrate(context.Background(), db, migrations.FS, logger.Discard()))
	return db
}
