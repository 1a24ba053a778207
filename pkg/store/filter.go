package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// Filter supplies the mandatory predicate for a table.
//
// Predicate is called once per statement with the executing call's context.
// It returns ok=false for tables the filter does not guard. A non-nil error
// aborts the statement before any I/O.
type Filter interface {
	Predicate(ctx context.Context, table string) (pred sq.Sqlizer, ok bool, err error)
	// Column returns the column owned by the filter for table. UPDATE statements
	// never write it.
	Column(table string) (column string, ok bool)
}

// Hook runs over the pending change set of a Batch before it is applied.
// Returning an error aborts the commit and rolls the batch back.
type Hook interface {
	BeforeCommit(ctx context.Context, b *Batch) error
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, b *Batch) error

func (f HookFunc) BeforeCommit(ctx context.Context, b *Batch) error {
	return f(ctx, b)
}

type noFilter struct{}

func (noFilter) Predicate(context.Context, string) (sq.Sqlizer, bool, error) { return nil, false, nil }
func (noFilter) Column(string) (string, bool)                              { return "", false }

// group parenthesises a predicate so that an OR inside it cannot escape the
// surrounding AND chain.
type group struct {
	pred sq.Sqlizer
}

func (g group) ToSql() (string, []any, error) {
	sql, args, err := g.pred.ToSql()
	if err != nil {
		return "", nil, err
	}
	if sql == "" {
		return "(1=1)", args, nil
	}
	return "(" + sql + ")", args, nil
}
