package scoped

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
)

// StampingHook is the last check on every batch. Tenant-owned inserts with no
// owner get the current tenant; any tenant-owned change whose owner differs
// from the current tenant fails the whole batch. Records that are not
// tenant-owned pass through untouched.
type StampingHook struct {
	opts options
}

var _ store.Hook = (*StampingHook)(nil)

func NewStampingHook(opts ...Option) *StampingHook {
	return &StampingHook{opts: newOptions(opts)}
}

// BeforeCommit validates the whole change set before stamping anything, so a
// rejected batch leaves no record modified. Stamps are undone if the commit
// fails afterwards.
func (h *StampingHook) BeforeCommit(ctx context.Context, b *store.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		tid     uuid.UUID
		pending []tenant.Owned
	)
	for _, c := range b.Changes() {
		owned, ok := c.Record.(tenant.Owned)
		if !ok {
			continue
		}
		if tid == uuid.Nil {
			id, err := tenant.Current(ctx).Require()
			if err != nil {
				return err
			}
			tid = id
		}

		switch owner := owned.OwnerID(); {
		case owner == tid:
		case owner == uuid.Nil && c.Op == store.OpInsert:
			pending = append(pending, owned)
		default:
			return h.opts.violation(ctx, c.Op.String(), c.Record.TableName(), c.Record.PrimaryKey(), owner)
		}
	}

	for _, owned := range pending {
		owned.SetOwnerID(tid)
		b.OnRollback(func() { owned.SetOwnerID(uuid.Nil) })
	}
	return nil
}
