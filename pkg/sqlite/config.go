package sqlite

import "time"

type Config struct {
	Path        string        `env:"SQLITE_PATH" envDefault:"platform.db"`  // Path is the database file. Use ":memory:" for a throwaway database.
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" envDefault:"5s"`   // BusyTimeout is how long a writer waits for a lock before failing.
	ForeignKeys bool          `env:"SQLITE_FOREIGN_KEYS" envDefault:"true"` // ForeignKeys enables REFERENCES enforcement.
	JournalMode string        `env:"SQLITE_JOURNAL_MODE" envDefault:"WAL"`  // JournalMode is passed to PRAGMA journal_mode.
}
