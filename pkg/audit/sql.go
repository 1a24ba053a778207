package audit

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/streamkit/platform/pkg/store"
)

// SQLStorage writes events to the audit_events table. The table is not
// tenant-scoped: operators query across tenants with Criteria.TenantID.
type SQLStorage struct {
	db *store.DB
}

func NewSQLStorage(db *store.DB) *SQLStorage {
	return &SQLStorage{db: db}
}

// Store inserts all events in one transaction.
func (s *SQLStorage) Store(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	b := s.db.Batch()
	for i := range events {
		e := events[i]
		b.Insert(&e)
	}
	return b.Commit(ctx)
}

func (s *SQLStorage) Query(ctx context.Context, c Criteria) ([]Event, error) {
	q := store.From("audit_events").OrderBy("created_at DESC", "id")
	if c.TenantID != "" {
		q = q.Where(sq.Eq{"tenant_id": c.TenantID})
	}
	if c.Action != "" {
		q = q.Where(sq.Eq{"action": c.Action})
	}
	if c.Result != "" {
		q = q.Where(sq.Eq{"result": string(c.Result)})
	}
	if !c.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": c.Since})
	}
	if !c.Until.IsZero() {
		q = q.Where(sq.Lt{"created_at": c.Until})
	}
	if c.Limit > 0 {
		q = q.Limit(uint64(c.Limit))
	}
	if c.Offset > 0 {
		q = q.Offset(uint64(c.Offset))
	}

	var events []Event
	if err := s.db.Select(ctx, &events, q); err != nil {
		return nil, err
	}
	return events, nil
}
