package store

import (
	"time"

	"github.com/google/uuid"
)

// Op is the kind of pending write in a Batch.
type Op int

const (
	OpInsert Op = iota + 1
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Record is a row that can be written through a Batch.
type Record interface {
	// TableName returns the table the record lives in.
	TableName() string
	// PrimaryKey returns the value of the "id" column.
	PrimaryKey() uuid.UUID
	// Fields returns column values for INSERT and UPDATE statements.
	Fields() map[string]any
}

// Preparer is implemented by records that fill generated columns right before
// hooks run. Model implements it. The returned func restores the previous
// values and is run when the commit fails.
type Preparer interface {
	Prepare(op Op, now time.Time) (undo func())
}

// Change is one pending write.
type Change struct {
	Op     Op
	Record Record
}

// Model carries the columns every platform table shares. Embed it by value.
type Model struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (m *Model) PrimaryKey() uuid.UUID { return m.ID }

// Prepare assigns the id and creation time of new rows and bumps updated_at.
func (m *Model) Prepare(op Op, now time.Time) func() {
	prev := *m
	switch op {
	case OpInsert:
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now
	case OpUpdate:
		m.UpdatedAt = now
	}
	return func() { *m = prev }
}

// Columns merges the shared columns into the entity specific ones.
// Identifiers are written in their canonical string form so that TEXT and UUID
// columns behave the same across drivers.
func (m *Model) Columns(fields map[string]any) map[string]any {
	if fields == nil {
		fields = make(map[string]any, 3)
	}
	fields["id"] = m.ID.String()
	fields["created_at"] = m.CreatedAt
	fields["updated_at"] = m.UpdatedAt
	return fields
}
