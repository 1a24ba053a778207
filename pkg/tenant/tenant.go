package tenant

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/streamkit/platform/pkg/store"
)

// Status is the lifecycle state of a tenant.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusDeleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether a tenant may move from s to next.
// Deleted is terminal; tenants are never physically removed.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusSuspended || next == StatusDeleted
	case StatusSuspended:
		return next == StatusActive || next == StatusDeleted
	}
	return false
}

// Settings is a free-form JSON object stored with the tenant.
type Settings map[string]any

func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(s))
	if err != nil {
		return nil, fmt.Errorf("tenant: encode settings: %w", err)
	}
	return string(b), nil
}

func (s *Settings) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Settings{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("tenant: cannot scan %T into settings", src)
	}
	out := Settings{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("tenant: decode settings: %w", err)
		}
	}
	*s = out
	return nil
}

// Tenant is a top-level customer account, the unit of data isolation.
// Tenants describe themselves and are not owned by any tenant.
type Tenant struct {
	store.Model
	Slug         string   `db:"slug" json:"slug"`
	CustomDomain *string  `db:"custom_domain" json:"custom_domain,omitempty"`
	Name         string   `db:"name" json:"name"`
	Status       Status   `db:"status" json:"status"`
	Settings     Settings `db:"settings" json:"settings"`
}

func (t *Tenant) TableName() string { return "tenants" }

func (t *Tenant) Fields() map[string]any {
	return t.Columns(map[string]any{
		"slug":          t.Slug,
		"custom_domain": t.CustomDomain,
		"name":          t.Name,
		"status":        string(t.Status),
		"settings":      t.Settings,
	})
}

func (t *Tenant) Active() bool { return t.Status == StatusActive }

// Domain returns the custom domain or an empty string.
func (t *Tenant) Domain() string {
	if t.CustomDomain == nil {
		return ""
	}
	return *t.CustomDomain
}

// Clone returns a copy that shares no mutable state with t.
func (t *Tenant) Clone() *Tenant {
	if t == nil {
		return nil
	}
	c := *t
	if t.CustomDomain != nil {
		d := *t.CustomDomain
		c.CustomDomain = &d
	}
	if t.Settings != nil {
		c.Settings = maps.Clone(t.Settings)
	}
	return &c
}

// Provider loads tenants by any unique identifier: id, slug or custom domain.
// It returns ErrTenantNotFound if nothing matches.
type Provider interface {
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}
