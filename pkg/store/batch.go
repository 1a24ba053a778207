package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Batch is a unit of work over heterogeneous records. It is not safe for
// concurrent use; build it within a single operation and commit it once.
type Batch struct {
	db        *DB
	changes   []Change
	rollbacks []func()
	done      bool
}

func (b *Batch) Insert(r Record) *Batch { return b.add(OpInsert, r) }
func (b *Batch) Update(r Record) *Batch { return b.add(OpUpdate, r) }
func (b *Batch) Delete(r Record) *Batch { return b.add(OpDelete, r) }

func (b *Batch) add(op Op, r Record) *Batch {
	b.changes = append(b.changes, Change{Op: op, Record: r})
	return b
}

// Changes returns a copy of the pending change set in insertion order.
func (b *Batch) Changes() []Change {
	return slices.Clone(b.changes)
}

func (b *Batch) Len() int { return len(b.changes) }

// OnRollback registers fn to run if the commit fails for any reason, including
// cancellation. Callbacks run in reverse registration order. Hooks use it to
// undo in-memory mutations they made to pending records.
func (b *Batch) OnRollback(fn func()) {
	if fn != nil {
		b.rollbacks = append(b.rollbacks, fn)
	}
}

// Commit prepares generated columns, runs the hooks and applies every change in
// one transaction. Either all changes are persisted or none are; on failure the
// rollback callbacks run before Commit returns, so records get back the ids and
// timestamps they had before the call.
func (b *Batch) Commit(ctx context.Context) (err error) {
	if b.done {
		return ErrBatchDone
	}
	b.done = true

	defer func() {
		if err != nil {
			b.rollback()
			b.db.log.DebugContext(ctx, "batch rolled back", "changes", len(b.changes), "error", err)
		}
	}()

	if len(b.changes) == 0 {
		return ErrEmptyBatch
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := b.db.now()
	for _, c := range b.changes {
		if c.Record == nil {
			return ErrNilRecord
		}
		if p, ok := c.Record.(Preparer); ok {
			b.OnRollback(p.Prepare(c.Op, now))
		}
	}

	for _, h := range b.db.hooks {
		if err := h.BeforeCommit(ctx, b); err != nil {
			return err
		}
	}

	tx, err := b.db.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Join(ErrBeginTx, err)
	}

	for _, c := range b.changes {
		if err := b.db.apply(ctx, tx, c); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return b.db.conflict(errors.Join(ErrCommitTx, err))
	}
	return nil
}

func (b *Batch) rollback() {
	for i := len(b.rollbacks) - 1; i >= 0; i-- {
		b.rollbacks[i]()
	}
}

func (d *DB) apply(ctx context.Context, tx *sqlx.Tx, c Change) error {
	table := c.Record.TableName()
	id := c.Record.PrimaryKey()
	if id == uuid.Nil {
		return fmt.Errorf("%w: %s", ErrMissingPrimary, table)
	}

	var (
		query string
		args  []any
		err   error
	)

	switch c.Op {
	case OpInsert:
		query, args, err = sq.Insert(table).
			SetMap(c.Record.Fields()).
			PlaceholderFormat(d.dialect.Placeholder).
			ToSql()
	case OpUpdate:
		fields := c.Record.Fields()
		delete(fields, "id")
		delete(fields, "created_at")
		if col, ok := d.filter.Column(table); ok {
			delete(fields, col)
		}
		ub := sq.Update(table).SetMap(fields).Where(sq.Eq{"id": id.String()}).PlaceholderFormat(d.dialect.Placeholder)
		pred, ok, perr := d.filter.Predicate(ctx, table)
		if perr != nil {
			return perr
		}
		if ok {
			ub = ub.Where(group{pred: pred})
		}
		query, args, err = ub.ToSql()
	case OpDelete:
		del := sq.Delete(table).Where(sq.Eq{"id": id.String()}).PlaceholderFormat(d.dialect.Placeholder)
		pred, ok, perr := d.filter.Predicate(ctx, table)
		if perr != nil {
			return perr
		}
		if ok {
			del = del.Where(group{pred: pred})
		}
		query, args, err = del.ToSql()
	default:
		return fmt.Errorf("store: unsupported operation %d", c.Op)
	}
	if err != nil {
		return errors.Join(ErrBuildQuery, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return d.conflict(err)
	}
	if c.Op == OpInsert {
		return nil
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
