package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Column is the ownership column of every tenant-owned table.
const Column = "tenant_id"

// Context states which tenant, if any, is authorized for one operation.
//
// It is a small value with unexported fields: once built it cannot be changed,
// and every copy is independent. Build one per inbound operation from a trusted
// source and carry it with Inject.
type Context struct {
	id uuid.UUID
}

// New returns a Context for the given tenant. uuid.Nil yields an empty Context.
func New(id uuid.UUID) Context {
	return Context{id: id}
}

// None returns a Context without a tenant.
func None() Context {
	return Context{}
}

func (c Context) HasCurrentTenant() bool {
	return c.id != uuid.Nil
}

// TenantID returns the tenant id and whether one is present.
func (c Context) TenantID() (uuid.UUID, bool) {
	return c.id, c.HasCurrentTenant()
}

// Require returns the tenant id or ErrNoTenantContext.
func (c Context) Require() (uuid.UUID, error) {
	if !c.HasCurrentTenant() {
		return uuid.Nil, ErrNoTenantContext
	}
	return c.id, nil
}

func (c Context) String() string {
	if !c.HasCurrentTenant() {
		return "tenant:none"
	}
	return "tenant:" + c.id.String()
}

type scopeKey struct{}

// Inject returns a child of ctx carrying tc.
func Inject(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, tc)
}

// Current returns the Context carried by ctx, or an empty one.
func Current(ctx context.Context) Context {
	tc, _ := ctx.Value(scopeKey{}).(Context)
	return tc
}

// Owned is implemented by tenant-owned records.
type Owned interface {
	OwnerID() uuid.UUID
	SetOwnerID(id uuid.UUID)
}

// Ownership is embedded by tenant-owned entities. The tenant_id column is
// written once on insert and never by updates.
type Ownership struct {
	TenantID uuid.UUID `db:"tenant_id" json:"tenant_id"`
}

func (o *Ownership) OwnerID() uuid.UUID      { return o.TenantID }
func (o *Ownership) SetOwnerID(id uuid.UUID) { o.TenantID = id }
