package scoped

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/audit"
	"github.com/streamkit/platform/pkg/logger"
	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
)

// Authorizer decides whether the caller in ctx may read tenantID's data.
type Authorizer func(ctx context.Context, tenantID uuid.UUID) error

// Operator reads a tenant-owned type for an explicitly named tenant. It is a
// separate capability from Repository: it is only constructed for platform
// operator tooling, every call is authorized and audited, and it has no
// write methods.
type Operator[T any, PT Entity[T]] struct {
	repo      *Repository[T, PT]
	authorize Authorizer
	opts      options
}

// NewOperator panics when authorize is nil.
func NewOperator[T any, PT Entity[T]](db *store.DB, authorize Authorizer, opts ...Option) *Operator[T, PT] {
	if authorize == nil {
		panic("scoped: operator requires an authorizer")
	}
	return &Operator[T, PT]{
		repo:      NewRepository[T, PT](db, opts...),
		authorize: authorize,
		opts:      newOptions(opts),
	}
}

func (o *Operator[T, PT]) GetByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*T, error) {
	ctx, err := o.enter(ctx, tenantID, "get_by_id", id.String())
	if err != nil {
		return nil, err
	}
	return o.repo.GetByID(ctx, id)
}

func (o *Operator[T, PT]) FindForTenant(ctx context.Context, tenantID uuid.UUID, pred sq.Sqlizer) ([]*T, error) {
	ctx, err := o.enter(ctx, tenantID, "find", "")
	if err != nil {
		return nil, err
	}
	return o.repo.Find(ctx, pred)
}

func (o *Operator[T, PT]) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ctx, err := o.enter(ctx, tenantID, "count", "")
	if err != nil {
		return 0, err
	}
	return o.repo.Count(ctx)
}

// enter authorizes and audits the access and returns a context scoped to
// tenantID. Any tenant already present in ctx is replaced for this call only.
func (o *Operator[T, PT]) enter(ctx context.Context, tenantID uuid.UUID, op, recordID string) (context.Context, error) {
	if tenantID == uuid.Nil {
		return ctx, tenant.ErrNoTenantContext
	}

	table := o.repo.Table()
	attrs := []any{logger.Operation(op), logger.Table(table), logger.TenantID(tenantID.String())}

	if err := o.authorize(ctx, tenantID); err != nil {
		o.opts.log.WarnContext(ctx, "operator access denied", append(attrs, logger.Error(err))...)
		o.audit(ctx, o.opts.audit.LogError(ctx, ActionOperatorDenied, err,
			audit.WithResult(audit.ResultDenied),
			audit.WithTenant(tenantID.String()),
			audit.WithResource(table, recordID),
			audit.WithMetadata("operation", op),
		))
		return ctx, err
	}

	o.opts.log.InfoContext(ctx, "operator access", attrs...)
	o.audit(ctx, o.opts.audit.Log(ctx, ActionOperatorRead,
		audit.WithTenant(tenantID.String()),
		audit.WithResource(table, recordID),
		audit.WithMetadata("operation", op),
	))
	return tenant.Inject(ctx, tenant.New(tenantID)), nil
}

func (o *Operator[T, PT]) audit(ctx context.Context, err error) {
	if err != nil {
		o.opts.log.ErrorContext(ctx, "failed to audit operator access", logger.Error(err))
	}
}
