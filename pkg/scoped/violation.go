package scoped

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/audit"
	"github.com/streamkit/platform/pkg/logger"
	"github.com/streamkit/platform/pkg/tenant"
)

// Audit actions recorded by this package.
const (
	ActionCrossTenantWrite = "scoped.cross_tenant_write"
	ActionOperatorRead     = "scoped.operator_read"
	ActionOperatorDenied   = "scoped.operator_denied"
)

// violation logs and audits a write whose record belongs to another tenant
// and returns tenant.ErrCrossTenantViolation.
func (o options) violation(ctx context.Context, op, table string, id, owner uuid.UUID) error {
	err := tenant.ErrCrossTenantViolation
	o.log.WarnContext(ctx, "cross-tenant write rejected",
		logger.Operation(op),
		logger.Table(table),
		logger.RecordID(id.String()),
		"record_tenant_id", owner.String(),
	)
	if aerr := o.audit.LogError(ctx, ActionCrossTenantWrite, err,
		audit.WithResult(audit.ResultDenied),
		audit.WithResource(table, id.String()),
		audit.WithMetadata("operation", op),
		audit.WithMetadata("record_tenant_id", owner.String()),
	); aerr != nil {
		o.log.ErrorContext(ctx, "failed to audit cross-tenant write", logger.Error(aerr))
	}
	return err
}
