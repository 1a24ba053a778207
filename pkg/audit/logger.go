package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage persists and queries audit events.
type Storage interface {
	Store(ctx context.Context, events ...Event) error
	Query(ctx context.Context, c Criteria) ([]Event, error)
}

// Criteria filters events returned by Storage.Query. Zero fields match
// everything. Results are ordered newest first.
type Criteria struct {
	TenantID string
	Action   string
	Result   Result
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// Extractor reads one string value from a request context.
type Extractor func(context.Context) (string, bool)

// Logger records audit events. A nil *Logger discards everything, so
// components can hold one unconditionally.
type Logger struct {
	storage   Storage
	tenantID  Extractor
	actor     Extractor
	requestID Extractor
	now       func() time.Time
}

type Option func(*Logger)

func WithTenantIDExtractor(fn Extractor) Option {
	return func(l *Logger) { l.tenantID = fn }
}

func WithActorExtractor(fn Extractor) Option {
	return func(l *Logger) { l.actor = fn }
}

func WithRequestIDExtractor(fn Extractor) Option {
	return func(l *Logger) { l.requestID = fn }
}

func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// NewLogger panics if storage is nil.
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	l := &Logger{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log records a successful action unless an option sets another result.
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	if l == nil {
		return nil
	}
	return l.store(ctx, l.event(ctx, action, ResultSuccess, nil), opts)
}

// LogError records a failed action with err as its reason.
func (l *Logger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	if l == nil {
		return nil
	}
	return l.store(ctx, l.event(ctx, action, ResultError, err), opts)
}

func (l *Logger) event(ctx context.Context, action string, result Result, err error) Event {
	e := Event{
		ID:        uuid.New(),
		Action:    action,
		Result:    result,
		CreatedAt: l.now().UTC(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	for _, f := range []struct {
		ex  Extractor
		dst *string
	}{{l.tenantID, &e.TenantID}, {l.actor, &e.Actor}, {l.requestID, &e.RequestID}} {
		if f.ex == nil {
			continue
		}
		if v, ok := f.ex(ctx); ok {
			*f.dst = v
		}
	}
	return e
}

func (l *Logger) store(ctx context.Context, e Event, opts []EventOption) error {
	for _, opt := range opts {
		opt(&e)
	}
	if err := e.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, e)
}
