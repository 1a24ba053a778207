package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the database described by cfg and verifies it with a ping.
// SQLite serialises writers, so the pool is capped at a single connection.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", DSN(cfg))
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDB, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrFailedToOpenDB, err)
	}
	return db, nil
}

// DSN renders cfg as a go-sqlite3 connection string.
func DSN(cfg Config) string {
	params := url.Values{}
	if cfg.BusyTimeout > 0 {
		params.Set("_busy_timeout", fmt.Sprint(cfg.BusyTimeout.Milliseconds()))
	}
	if cfg.ForeignKeys {
		params.Set("_foreign_keys", "1")
	}

	path := cfg.Path
	if path == "" || path == ":memory:" {
		path = ":memory:"
	} else if cfg.JournalMode != "" {
		params.Set("_journal_mode", cfg.JournalMode)
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		if len(params) == 0 {
			return path
		}
		return path + sep + params.Encode()
	}
	if len(params) == 0 {
		return "file:" + path
	}
	return "file:" + path + "?" + params.Encode()
}

func Healthcheck(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
