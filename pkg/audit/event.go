package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultDenied  Result = "denied"
	ResultError   Result = "error"
)

// Metadata is free-form event context stored as a JSON document.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("audit: cannot scan %T into Metadata", src)
	}
	out := Metadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// Event is a single audit log entry. TenantID is empty for events that are not
// attributable to one tenant.
type Event struct {
	ID         uuid.UUID `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenant_id,omitempty"`
	Actor      string    `db:"actor" json:"actor,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource,omitempty"`
	ResourceID string    `db:"resource_id" json:"resource_id,omitempty"`
	Result     Result    `db:"result" json:"result"`
	Error      string    `db:"error" json:"error,omitempty"`
	RequestID  string    `db:"request_id" json:"request_id,omitempty"`
	Metadata   Metadata  `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	return nil
}

func (e *Event) TableName() string     { return "audit_events" }
func (e *Event) PrimaryKey() uuid.UUID { return e.ID }

func (e *Event) Fields() map[string]any {
	return map[string]any{
		"id":          e.ID.String(),
		"tenant_id":   e.TenantID,
		"actor":       e.Actor,
		"action":      e.Action,
		"resource":    e.Resource,
		"resource_id": e.ResourceID,
		"result":      string(e.Result),
		"error":       e.Error,
		"request_id":  e.RequestID,
		"metadata":    e.Metadata,
		"created_at":  e.CreatedAt,
	}
}

// EventOption customizes an event before it is stored.
type EventOption func(*Event)

func WithResource(resource, id string) EventOption {
	return func(e *Event) {
		e.Resource = resource
		e.ResourceID = id
	}
}

func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = Metadata{}
		}
		e.Metadata[key] = value
	}
}

func WithResult(r Result) EventOption {
	return func(e *Event) { e.Result = r }
}

// WithTenant overrides the tenant taken from the context, for operator
// actions that target a tenant explicitly.
func WithTenant(id string) EventOption {
	return func(e *Event) { e.TenantID = id }
}
