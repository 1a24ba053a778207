package scoped

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
)

// Query is a composable read over one tenant-owned table. Builder methods
// return a new handle; terminal methods take the context the query runs
// under, whose tenant the store turns into the leading predicate.
type Query[T any, PT Entity[T]] struct {
	db *store.DB
	q  store.Query
}

func (q *Query[T, PT]) with(next store.Query) *Query[T, PT] {
	return &Query[T, PT]{db: q.db, q: next}
}

// Where AND-s pred onto the query.
func (q *Query[T, PT]) Where(pred sq.Sqlizer) *Query[T, PT] {
	return q.with(q.q.Where(pred))
}

func (q *Query[T, PT]) OrderBy(exprs ...string) *Query[T, PT] {
	return q.with(q.q.OrderBy(exprs...))
}

func (q *Query[T, PT]) Limit(n uint64) *Query[T, PT] {
	return q.with(q.q.Limit(n))
}

func (q *Query[T, PT]) Offset(n uint64) *Query[T, PT] {
	return q.with(q.q.Offset(n))
}

func (q *Query[T, PT]) All(ctx context.Context) ([]*T, error) {
	if _, err := require(ctx); err != nil {
		return nil, err
	}
	var out []*T
	if err := q.db.Select(ctx, &out, q.q); err != nil {
		return nil, err
	}
	return out, nil
}

// First returns the first matching record or tenant.ErrNotFound.
func (q *Query[T, PT]) First(ctx context.Context) (*T, error) {
	if _, err := require(ctx); err != nil {
		return nil, err
	}
	var e T
	if err := q.db.Get(ctx, &e, q.q); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, tenant.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (q *Query[T, PT]) Count(ctx context.Context) (int64, error) {
	if _, err := require(ctx); err != nil {
		return 0, err
	}
	return q.db.Count(ctx, q.q)
}
