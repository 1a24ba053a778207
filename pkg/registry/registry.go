package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/streamkit/platform/pkg/logger"
	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
)

const table = "tenants"

// Registry is the store of tenants themselves. It is not tenant-scoped: the
// middleware uses it to resolve the tenant of a request, and operator
// services use it to manage tenants. It never touches tenant-owned tables.
type Registry struct {
	db       *store.DB
	cache    Cache
	log      *slog.Logger
	reserved map[string]struct{}
}

var _ tenant.Provider = (*Registry)(nil)

// New panics when the tenants table is guarded by the tenant filter.
func New(db *store.DB, opts ...Option) *Registry {
	if db.Guarded(table) {
		panic("registry: tenants table must not be tenant-filtered")
	}
	r := &Registry{
		db:    db,
		cache: NoCache{},
		log:   logger.Discard(),
	}
	WithReservedSlugs(DefaultReservedSlugs...)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetByID returns tenant.ErrTenantNotFound when no tenant has id.
func (r *Registry) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return r.lookup(ctx, "id:"+id.String(), sq.Eq{"id": id.String()})
}

func (r *Registry) GetBySlug(ctx context.Context, s string) (*tenant.Tenant, error) {
	s = strings.ToLower(s)
	if !tenant.ValidLabel(s) {
		return nil, tenant.ErrInvalidIdentifier
	}
	return r.lookup(ctx, slugKey(s), sq.Eq{"slug": s})
}

func (r *Registry) GetByCustomDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	if !tenant.ValidDomain(domain) {
		return nil, tenant.ErrInvalidIdentifier
	}
	return r.lookup(ctx, domainKey(domain), sq.Eq{"custom_domain": domain})
}

// GetByIdentifier resolves a UUID as an id, a dotted name as a custom domain
// and anything else as a slug.
func (r *Registry) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return r.GetByID(ctx, id)
	}
	if strings.Contains(identifier, ".") {
		return r.GetByCustomDomain(ctx, identifier)
	}
	return r.GetBySlug(ctx, identifier)
}

func (r *Registry) lookup(ctx context.Context, key string, pred sq.Sqlizer) (*tenant.Tenant, error) {
	if t, ok, err := r.cache.Get(ctx, key); err != nil {
		r.log.WarnContext(ctx, "tenant cache read failed", "key", key, logger.Error(err))
	} else if ok {
		return t, nil
	}

	var t tenant.Tenant
	if err := r.db.Get(ctx, &t, store.From(table).Where(pred)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, err
	}

	if err := r.cache.Set(ctx, &t, keysOf(&t)...); err != nil {
		r.log.WarnContext(ctx, "tenant cache write failed", logger.TenantID(t.ID.String()), logger.Error(err))
	}
	return &t, nil
}

// Filter narrows List. Zero values mean no restriction.
type Filter struct {
	Status   tenant.Status
	Search   string // case-insensitive substring of the name or slug
	Page     int    // 1-based
	PageSize int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is one page of List results.
type Page struct {
	Items    []*tenant.Tenant `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// List returns tenants ordered by creation time.
func (r *Registry) List(ctx context.Context, f Filter) (*Page, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, tenant.ErrInvalidStatus
	}
	page := max(f.Page, 1)
	size := f.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	size = min(size, maxPageSize)

	q := store.From(table)
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where(sq.Or{
			sq.Expr("LOWER(name) LIKE ?", pattern),
			sq.Like{"slug": pattern},
		})
	}

	total, err := r.db.Count(ctx, q)
	if err != nil {
		return nil, err
	}

	items := []*tenant.Tenant{}
	q = q.OrderBy("created_at", "id").Limit(uint64(size)).Offset(uint64((page - 1) * size))
	if err := r.db.Select(ctx, &items, q); err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// Add validates and inserts t. An empty slug is derived from the name.
func (r *Registry) Add(ctx context.Context, t *tenant.Tenant) error {
	b := r.db.Batch()
	if err := r.Stage(ctx, b, t); err != nil {
		return err
	}
	if err := MapConflict(b.Commit(ctx)); err != nil {
		return err
	}
	r.log.InfoContext(ctx, "tenant created", logger.TenantID(t.ID.String()), "slug", t.Slug)
	return nil
}

// Stage validates t and queues its insert on b, so that a tenant and its
// initial owned records commit together. Uniqueness is checked now and again
// by the storage at commit; wrap the commit error with MapConflict.
func (r *Registry) Stage(ctx context.Context, b *store.Batch, t *tenant.Tenant) error {
	normalize(t)
	if err := r.validate(t); err != nil {
		return err
	}
	if t.Status != tenant.StatusActive {
		return fmt.Errorf("%w: new tenants start active", tenant.ErrInvalidStatus)
	}
	if err := r.checkUnique(ctx, t); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
		b.OnRollback(func() { t.ID = uuid.Nil })
	}
	b.Insert(t)
	return nil
}

// Update persists changes to name, slug, custom domain and settings. A status
// change must be a valid transition.
func (r *Registry) Update(ctx context.Context, t *tenant.Tenant) error {
	current, err := r.load(ctx, t.ID)
	if err != nil {
		return err
	}
	normalize(t)
	if err := r.validate(t); err != nil {
		return err
	}
	if t.Status != current.Status && !current.Status.CanTransitionTo(t.Status) {
		return fmt.Errorf("%w: %s to %s", tenant.ErrInvalidStatusTransition, current.Status, t.Status)
	}
	if err := r.checkUnique(ctx, t); err != nil {
		return err
	}

	t.CreatedAt = current.CreatedAt
	err = MapConflict(r.db.Batch().Update(t).Commit(ctx))
	r.invalidate(ctx, current, t)
	if errors.Is(err, store.ErrNotFound) {
		return tenant.ErrTenantNotFound
	}
	return err
}

// SetStatus moves the tenant to status and returns the updated tenant.
func (r *Registry) SetStatus(ctx context.Context, id uuid.UUID, status tenant.Status) (*tenant.Tenant, error) {
	if !status.Valid() {
		return nil, tenant.ErrInvalidStatus
	}
	t, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", tenant.ErrInvalidStatusTransition, t.Status, status)
	}
	t.Status = status
	if err := r.Update(ctx, t); err != nil {
		return nil, err
	}
	r.log.InfoContext(ctx, "tenant status changed", logger.TenantID(id.String()), "status", string(status))
	return t, nil
}

// Delete marks the tenant deleted. Tenants are never removed, so their slug
// and domain stay taken and their owned data stays addressable by operators.
func (r *Registry) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.SetStatus(ctx, id, tenant.StatusDeleted)
	return err
}

// load reads from storage, bypassing the cache.
func (r *Registry) load(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := r.db.Get(ctx, &t, store.From(table).Where(sq.Eq{"id": id.String()})); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Registry) checkUnique(ctx context.Context, t *tenant.Tenant) error {
	taken := func(pred sq.Sqlizer) (bool, error) {
		q := store.From(table).Where(pred)
		if t.ID != uuid.Nil {
			q = q.Where(sq.NotEq{"id": t.ID.String()})
		}
		n, err := r.db.Count(ctx, q)
		return n > 0, err
	}

	if ok, err := taken(sq.Eq{"slug": t.Slug}); err != nil {
		return err
	} else if ok {
		return tenant.ErrSlugConflict
	}
	if d := t.Domain(); d != "" {
		if ok, err := taken(sq.Eq{"custom_domain": d}); err != nil {
			return err
		} else if ok {
			return tenant.ErrDomainConflict
		}
	}
	return nil
}

// invalidate drops every cache key of the given tenant versions.
func (r *Registry) invalidate(ctx context.Context, versions ...*tenant.Tenant) {
	var keys []string
	for _, t := range versions {
		keys = append(keys, keysOf(t)...)
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.log.ErrorContext(ctx, "tenant cache invalidation failed", "keys", keys, logger.Error(err))
	}
}

// Invalidate drops the cached entries of t. Call it after committing a batch
// staged with Stage if lookups may have been cached meanwhile.
func (r *Registry) Invalidate(ctx context.Context, t *tenant.Tenant) {
	r.invalidate(ctx, t)
}
