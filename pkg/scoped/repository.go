package scoped

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
)

// Repository is the only way application code reads and writes a tenant-owned
// type. Every method requires a tenant in ctx and fails with
// tenant.ErrNoTenantContext otherwise; reads are filtered by the store and
// writes are checked against the tenant before anything is sent to storage.
type Repository[T any, PT Entity[T]] struct {
	db    *store.DB
	table string
	opts  options
}

// NewRepository panics when the entity table is not guarded by the filter
// installed on db.
func NewRepository[T any, PT Entity[T]](db *store.DB, opts ...Option) *Repository[T, PT] {
	var zero T
	table := PT(&zero).TableName()
	if !db.Guarded(table) {
		panic(fmt.Sprintf("scoped: table %q has no tenant filter installed", table))
	}
	return &Repository[T, PT]{db: db, table: table, opts: newOptions(opts)}
}

func (r *Repository[T, PT]) Table() string { return r.table }

// GetByID returns tenant.ErrNotFound both when id does not exist and when it
// belongs to another tenant.
func (r *Repository[T, PT]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	if _, err := require(ctx); err != nil {
		return nil, err
	}
	return r.Query().Where(r.byID(id)).First(ctx)
}

func (r *Repository[T, PT]) GetAll(ctx context.Context) ([]*T, error) {
	return r.Query().All(ctx)
}

// Find returns the records matching pred. pred is AND-ed with the tenant
// filter and cannot widen the result.
func (r *Repository[T, PT]) Find(ctx context.Context, pred sq.Sqlizer) ([]*T, error) {
	return r.Query().Where(pred).All(ctx)
}

func (r *Repository[T, PT]) Count(ctx context.Context) (int64, error) {
	return r.Query().Count(ctx)
}

func (r *Repository[T, PT]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.Query().Where(r.byID(id)).Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Query returns a composable handle over the table. The tenant predicate is
// applied when the handle is executed, under the executing context.
func (r *Repository[T, PT]) Query() *Query[T, PT] {
	return &Query[T, PT]{db: r.db, q: store.From(r.table)}
}

// NewBatch starts a unit of work on the repository's store. Stage writes with
// AddTo, UpdateIn and DeleteIn, possibly from several repositories, and finish
// with Commit.
func (r *Repository[T, PT]) NewBatch() *store.Batch {
	return r.db.Batch()
}

// Add inserts e, stamping it with the current tenant when its owner is unset.
func (r *Repository[T, PT]) Add(ctx context.Context, e PT) error {
	b := r.db.Batch()
	if err := r.AddTo(ctx, b, e); err != nil {
		return err
	}
	return Commit(ctx, b)
}

// AddTo stages an insert of e. An owner other than the current tenant fails
// with tenant.ErrCrossTenantViolation; it is never overwritten.
func (r *Repository[T, PT]) AddTo(ctx context.Context, b *store.Batch, e PT) error {
	tid, err := require(ctx)
	if err != nil {
		return err
	}
	switch owner := e.OwnerID(); owner {
	case tid:
	case uuid.Nil:
		e.SetOwnerID(tid)
		b.OnRollback(func() { e.SetOwnerID(uuid.Nil) })
	default:
		return r.opts.violation(ctx, "add", r.table, e.PrimaryKey(), owner)
	}
	b.Insert(e)
	return nil
}

func (r *Repository[T, PT]) Update(ctx context.Context, e PT) error {
	b := r.db.Batch()
	if err := r.UpdateIn(ctx, b, e); err != nil {
		return err
	}
	return Commit(ctx, b)
}

// UpdateIn stages an update of e after checking that e belongs to the current
// tenant. The tenant_id column is never part of the update.
func (r *Repository[T, PT]) UpdateIn(ctx context.Context, b *store.Batch, e PT) error {
	if err := r.checkOwner(ctx, "update", e); err != nil {
		return err
	}
	b.Update(e)
	return nil
}

func (r *Repository[T, PT]) Delete(ctx context.Context, e PT) error {
	b := r.db.Batch()
	if err := r.DeleteIn(ctx, b, e); err != nil {
		return err
	}
	return Commit(ctx, b)
}

func (r *Repository[T, PT]) DeleteIn(ctx context.Context, b *store.Batch, e PT) error {
	if err := r.checkOwner(ctx, "delete", e); err != nil {
		return err
	}
	b.Delete(e)
	return nil
}

func (r *Repository[T, PT]) checkOwner(ctx context.Context, op string, e PT) error {
	tid, err := require(ctx)
	if err != nil {
		return err
	}
	if owner := e.OwnerID(); owner != tid {
		return r.opts.violation(ctx, op, r.table, e.PrimaryKey(), owner)
	}
	return nil
}

func (r *Repository[T, PT]) byID(id uuid.UUID) sq.Sqlizer {
	return sq.Eq{r.table + ".id": id.String()}
}

// Commit commits b and reports a missing or foreign row as tenant.ErrNotFound.
func Commit(ctx context.Context, b *store.Batch) error {
	err := b.Commit(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return tenant.ErrNotFound
	}
	return err
}

func require(ctx context.Context) (uuid.UUID, error) {
	return tenant.Current(ctx).Require()
}
