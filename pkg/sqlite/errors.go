package sqlite

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrFailedToOpenDB          = errors.New("failed to open sqlite database")
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
	ErrHealthcheckFailed       = errors.New("healthcheck failed, sqlite database is not available")
)

const uniquePrefix = "UNIQUE constraint failed: "

// IsDuplicateKeyError reports whether err is a UNIQUE constraint violation.
func IsDuplicateKeyError(err error) bool {
	_, ok := conflictKey(err)
	return ok
}

// conflictKey extracts "table.column" from a UNIQUE constraint violation.
func conflictKey(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var serr sqlite3.Error
	if !errors.As(err, &serr) || serr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return "", false
	}
	return strings.TrimPrefix(serr.Error(), uniquePrefix), true
}
