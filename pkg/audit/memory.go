package audit

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage keeps events in process. It backs tests and single-node
// development setups.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Store(_ context.Context, events ...Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MemoryStorage) Query(_ context.Context, c Criteria) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Event
	for i := len(m.events) - 1; i >= 0; i-- {
		if c.matches(m.events[i]) {
			out = append(out, m.events[i])
		}
	}
	return page(out, c), nil
}

func (c Criteria) matches(e Event) bool {
	switch {
	case c.TenantID != "" && e.TenantID != c.TenantID:
		return false
	case c.Action != "" && e.Action != c.Action:
		return false
	case c.Result != "" && e.Result != c.Result:
		return false
	case !c.Since.IsZero() && e.CreatedAt.Before(c.Since):
		return false
	case !c.Until.IsZero() && !e.CreatedAt.Before(c.Until):
		return false
	}
	return true
}

func page(events []Event, c Criteria) []Event {
	if c.Offset >= len(events) {
		return nil
	}
	events = events[c.Offset:]
	if c.Limit > 0 && c.Limit < len(events) {
		events = events[:c.Limit]
	}
	return slices.Clip(events)
}
