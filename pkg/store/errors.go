package store

import "errors"

var (
	ErrNotFound       = errors.New("store: record not found")
	ErrConflict       = errors.New("store: unique constraint violated")
	ErrBatchDone      = errors.New("store: batch already committed")
	ErrEmptyBatch     = errors.New("store: batch has no changes")
	ErrNilRecord      = errors.New("store: nil record")
	ErrBuildQuery     = errors.New("store: failed to build query")
	ErrBeginTx        = errors.New("store: failed to begin transaction")
	ErrCommitTx       = errors.New("store: failed to commit transaction")
	ErrHealthcheck    = errors.New("store: healthcheck failed")
	ErrMissingPrimary = errors.New("store: record has no primary key")
)

// ConflictError reports a unique constraint violation. Key names the violated
// constraint as reported by the dialect, e.g. "tenants_slug_key" on Postgres or
// "tenants.slug" on SQLite.
type ConflictError struct {
	Key string
	err error
}

func (e *ConflictError) Error() string {
	if e.Key == "" {
		return ErrConflict.Error()
	}
	return ErrConflict.Error() + ": " + e.Key
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func (e *ConflictError) Unwrap() error {
	return e.err
}
