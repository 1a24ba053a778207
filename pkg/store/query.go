package store

import (
	"slices"

	sq "github.com/Masterminds/squirrel"
)

// Query describes a SELECT against a single table. It is a value: every method
// returns a modified copy and leaves the receiver untouched, so a partially
// built query can be shared and extended safely.
type Query struct {
	table   string
	columns []string
	where   []sq.Sqlizer
	orderBy []string
	limit   uint64
	offset  uint64
}

// From starts a query against table.
func From(table string) Query {
	return Query{table: table}
}

func (q Query) Table() string { return q.table }

// Columns restricts the selected columns. The default is "*".
func (q Query) Columns(cols ...string) Query {
	q.columns = append(slices.Clip(q.columns), cols...)
	return q
}

// Where adds a predicate. Predicates are always combined with AND and each one
// is wrapped in parentheses. A nil predicate is ignored.
func (q Query) Where(pred sq.Sqlizer) Query {
	if pred == nil {
		return q
	}
	q.where = append(slices.Clip(q.where), group{pred: pred})
	return q
}

func (q Query) OrderBy(exprs ...string) Query {
	q.orderBy = append(slices.Clip(q.orderBy), exprs...)
	return q
}

func (q Query) Limit(n uint64) Query {
	q.limit = n
	return q
}

func (q Query) Offset(n uint64) Query {
	q.offset = n
	return q
}
