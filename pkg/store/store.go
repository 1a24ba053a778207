package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/streamkit/platform/pkg/logger"
)

// Dialect describes the SQL engine behind a DB.
type Dialect struct {
	// Name is the engine name, e.g. "postgres" or "sqlite3".
	Name string
	// Driver is the database/sql driver name, used by sqlx for bind vars.
	Driver string
	// Placeholder formats bind variables for the engine.
	Placeholder sq.PlaceholderFormat
	// Conflict reports whether err is a unique constraint violation and, if so,
	// the name of the violated key.
	Conflict func(err error) (key string, ok bool)
}

// DB is the storage engine. Its filter and hooks are fixed at construction and
// it is safe for concurrent use.
type DB struct {
	db      *sqlx.DB
	dialect Dialect
	filter  Filter
	hooks   []Hook
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a DB.
type Option func(*DB)

// WithFilter installs the mandatory per-table predicate source.
func WithFilter(f Filter) Option {
	return func(d *DB) {
		if f != nil {
			d.filter = f
		}
	}
}

// WithHooks registers pre-commit hooks. They run in registration order.
func WithHooks(hooks ...Hook) Option {
	return func(d *DB) {
		for _, h := range hooks {
			if h != nil {
				d.hooks = append(d.hooks, h)
			}
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.log = l
		}
	}
}

// WithClock overrides the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(d *DB) {
		if now != nil {
			d.now = now
		}
	}
}

// New wraps an open *sql.DB.
func New(db *sql.DB, dialect Dialect, opts ...Option) *DB {
	if dialect.Placeholder == nil {
		dialect.Placeholder = sq.Question
	}
	if dialect.Conflict == nil {
		dialect.Conflict = func(error) (string, bool) { return "", false }
	}
	d := &DB{
		db:      sqlx.NewDb(db, dialect.Driver),
		dialect: dialect,
		filter:  noFilter{},
		log:     logger.Discard(),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DB) Dialect() Dialect { return d.dialect }

// Guarded reports whether the installed filter guards table.
func (d *DB) Guarded(table string) bool {
	_, ok := d.filter.Column(table)
	return ok
}

// Get loads the first row matching q into dest.
// It returns ErrNotFound when no row matches.
func (d *DB) Get(ctx context.Context, dest any, q Query) error {
	query, args, err := d.selectSQL(ctx, q.Limit(1))
	if err != nil {
		return err
	}
	if err := d.db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Select loads every row matching q into dest, which must be a pointer to a slice.
func (d *DB) Select(ctx context.Context, dest any, q Query) error {
	query, args, err := d.selectSQL(ctx, q)
	if err != nil {
		return err
	}
	return d.db.SelectContext(ctx, dest, query, args...)
}

// Count returns the number of rows matching q. Ordering and paging are ignored.
func (d *DB) Count(ctx context.Context, q Query) (int64, error) {
	b := sq.Select("COUNT(*)").From(q.table).PlaceholderFormat(d.dialect.Placeholder)
	b, err := d.where(ctx, q.table, b, q.where)
	if err != nil {
		return 0, err
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Join(ErrBuildQuery, err)
	}
	var n int64
	if err := d.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// Batch starts a new unit of work.
func (d *DB) Batch() *Batch {
	return &Batch{db: d}
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Healthcheck returns a probe suitable for readiness endpoints.
func (d *DB) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if err := d.db.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheck, err)
		}
		return nil
	}
}

func (d *DB) selectSQL(ctx context.Context, q Query) (string, []any, error) {
	cols := q.columns
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	b := sq.Select(cols...).From(q.table).PlaceholderFormat(d.dialect.Placeholder)
	b, err := d.where(ctx, q.table, b, q.where)
	if err != nil {
		return "", nil, err
	}
	if len(q.orderBy) > 0 {
		b = b.OrderBy(q.orderBy...)
	}
	if q.limit > 0 {
		b = b.Limit(q.limit)
	}
	if q.offset > 0 {
		b = b.Offset(q.offset)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, errors.Join(ErrBuildQuery, err)
	}
	return query, args, nil
}

// where places the filter predicate first and the caller predicates after it.
func (d *DB) where(ctx context.Context, table string, b sq.SelectBuilder, preds []sq.Sqlizer) (sq.SelectBuilder, error) {
	pred, ok, err := d.filter.Predicate(ctx, table)
	if err != nil {
		return b, err
	}
	if ok {
		b = b.Where(group{pred: pred})
	}
	for _, p := range preds {
		b = b.Where(p)
	}
	return b, nil
}

func (d *DB) conflict(err error) error {
	if err == nil {
		return nil
	}
	if key, ok := d.dialect.Conflict(err); ok {
		return &ConflictError{Key: key, err: err}
	}
	return err
}
