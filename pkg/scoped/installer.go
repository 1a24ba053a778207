package scoped

import (
	"context"
	"slices"
	"sync"

	sq "github.com/Masterminds/squirrel"

	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
)

// Entity is the constraint satisfied by pointers to tenant-owned records.
type Entity[T any] interface {
	*T
	store.Record
	tenant.Owned
}

// Installer collects the tenant-owned tables at startup. Install freezes it.
type Installer struct {
	mu        sync.Mutex
	tables    map[string]struct{}
	installed bool
}

func NewInstaller() *Installer {
	return &Installer{tables: make(map[string]struct{})}
}

// Register guards table by its tenant_id column. It panics once Install has
// been called or when table is empty.
func (i *Installer) Register(table string) *Installer {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.installed {
		panic("scoped: register after install: " + table)
	}
	if table == "" {
		panic("scoped: empty table name")
	}
	i.tables[table] = struct{}{}
	return i
}

// Register guards the table of entity type T.
func Register[T any, PT Entity[T]](i *Installer) {
	var zero T
	i.Register(PT(&zero).TableName())
}

// Install freezes the registrations and returns the filter to hand to
// store.WithFilter. Calling it twice returns equivalent filters.
func (i *Installer) Install() *Filters {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.installed = true
	tables := make(map[string]struct{}, len(i.tables))
	for t := range i.tables {
		tables[t] = struct{}{}
	}
	return &Filters{tables: tables}
}

// Filters is the installed, read-only tenant filter. It implements
// store.Filter and is safe for concurrent use.
type Filters struct {
	tables map[string]struct{}
}

var _ store.Filter = (*Filters)(nil)

// Predicate returns "<table>.tenant_id = <current tenant>" for guarded tables.
// The tenant is read from ctx on every call. A guarded table queried without a
// tenant fails with tenant.ErrNoTenantContext.
func (f *Filters) Predicate(ctx context.Context, table string) (sq.Sqlizer, bool, error) {
	if _, ok := f.tables[table]; !ok {
		return nil, false, nil
	}
	id, err := tenant.Current(ctx).Require()
	if err != nil {
		return nil, true, err
	}
	return sq.Eq{table + "." + tenant.Column: id.String()}, true, nil
}

func (f *Filters) Column(table string) (string, bool) {
	if _, ok := f.tables[table]; ok {
		return tenant.Column, true
	}
	return "", false
}

// Tables lists the guarded tables in sorted order.
func (f *Filters) Tables() []string {
	out := make([]string, 0, len(f.tables))
	for t := range f.tables {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
