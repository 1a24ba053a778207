package platform

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/streamkit/platform/handler"
	"github.com/streamkit/platform/pkg/audit"
	"github.com/streamkit/platform/pkg/logger"
	"github.com/streamkit/platform/pkg/registry"
	"github.com/streamkit/platform/pkg/scoped"
	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
	"github.com/streamkit/platform/svc/playlist"
	"github.com/streamkit/platform/svc/video"
)

const (
	ActionTenantProvisioned = "platform.tenant_provisioned"
	ActionTenantUpdated     = "platform.tenant_updated"
	ActionTenantStatus      = "platform.tenant_status_changed"
)

// Service is the operator tier. It manages tenants and reads tenant data on
// an operator's behalf. It is never mounted behind the tenant middleware and
// every method checks the operator's token scopes.
type Service struct {
	db           *store.DB
	registry     *registry.Registry
	playlists    *playlist.Service
	videos       *scoped.Operator[video.Video, *video.Video]
	log          *slog.Logger
	audit        *audit.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

type Option func(*config)

type config struct {
	log          *slog.Logger
	audit        *audit.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithAuditLogger records tenant lifecycle changes and operator reads.
func WithAuditLogger(a *audit.Logger) Option {
	return func(c *config) { c.audit = a }
}

func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func NewService(db *store.DB, reg *registry.Registry, playlists *playlist.Service, opts ...Option) *Service {
	cfg := config{log: logger.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.errorHandler == nil {
		cfg.errorHandler = handler.NewErrorHandler(cfg.log)
	}

	s := &Service{
		db:           db,
		registry:     reg,
		playlists:    playlists,
		log:          cfg.log.With(logger.Component("platform")),
		audit:        cfg.audit,
		errorHandler: cfg.errorHandler,
	}
	s.videos = scoped.NewOperator[video.Video](db, s.authorizer(),
		scoped.WithLogger(cfg.log),
		scoped.WithAuditLogger(cfg.audit),
	)
	return s
}

type ProvisionInput struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	CustomDomain string          `json:"custom_domain"`
	Settings     tenant.Settings `json:"settings"`
}

type Provisioned struct {
	Tenant          *tenant.Tenant     `json:"tenant"`
	DefaultPlaylist *playlist.Playlist `json:"default_playlist"`
}

// Provision creates a tenant together with its default playlist. Both rows
// commit in one batch or not at all.
func (s *Service) Provision(ctx context.Context, in ProvisionInput) (*Provisioned, error) {
	if err := RequireScope(ctx, ScopeTenantsWrite); err != nil {
		return nil, err
	}

	t := &tenant.Tenant{
		Name:     in.Name,
		Slug:     in.Slug,
		Settings: in.Settings,
	}
	if d := strings.TrimSpace(in.CustomDomain); d != "" {
		t.CustomDomain = &d
	}

	b := s.db.Batch()
	if err := s.registry.Stage(ctx, b, t); err != nil {
		return nil, err
	}
	tctx := tenant.Inject(ctx, tenant.New(t.ID))
	def, err := s.playlists.StageDefault(tctx, b)
	if err != nil {
		return nil, err
	}
	if err := registry.MapConflict(b.Commit(tctx)); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant provisioned", logger.TenantID(t.ID.String()), "slug", t.Slug)
	s.record(ctx, ActionTenantProvisioned, t.ID, nil)
	return &Provisioned{Tenant: t, DefaultPlaylist: def}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	if err := RequireScope(ctx, ScopeTenantsRead); err != nil {
		return nil, err
	}
	return s.registry.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f registry.Filter) (*registry.Page, error) {
	if err := RequireScope(ctx, ScopeTenantsRead); err != nil {
		return nil, err
	}
	return s.registry.List(ctx, f)
}

func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) (*tenant.Tenant, error) {
	return s.update(ctx, id, "rename", func(t *tenant.Tenant) { t.Name = name })
}

// UpdateSettings replaces the settings object of the tenant.
func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, settings tenant.Settings) (*tenant.Tenant, error) {
	return s.update(ctx, id, "settings", func(t *tenant.Tenant) { t.Settings = settings })
}

// SetCustomDomain assigns domain to the tenant. An empty domain removes it.
func (s *Service) SetCustomDomain(ctx context.Context, id uuid.UUID, domain string) (*tenant.Tenant, error) {
	return s.update(ctx, id, "custom_domain", func(t *tenant.Tenant) {
		if d := strings.TrimSpace(domain); d != "" {
			t.CustomDomain = &d
		} else {
			t.CustomDomain = nil
		}
	})
}

func (s *Service) update(ctx context.Context, id uuid.UUID, change string, apply func(*tenant.Tenant)) (*tenant.Tenant, error) {
	if err := RequireScope(ctx, ScopeTenantsWrite); err != nil {
		return nil, err
	}
	t, err := s.registry.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(t)
	if err := s.registry.Update(ctx, t); err != nil {
		return nil, err
	}
	s.record(ctx, ActionTenantUpdated, id, map[string]any{"change": change})
	return t, nil
}

func (s *Service) Suspend(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.setStatus(ctx, id, tenant.StatusSuspended)
}

func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.setStatus(ctx, id, tenant.StatusActive)
}

// Delete marks the tenant deleted. Its data is kept.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.setStatus(ctx, id, tenant.StatusDeleted)
	return err
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status tenant.Status) (*tenant.Tenant, error) {
	if err := RequireScope(ctx, ScopeTenantsWrite); err != nil {
		return nil, err
	}
	t, err := s.registry.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.record(ctx, ActionTenantStatus, id, map[string]any{"status": string(status)})
	return t, nil
}

// VideoForTenant reads one video of an explicitly named tenant. It is the only
// by-id read that does not take the tenant from ctx.
func (s *Service) VideoForTenant(ctx context.Context, tenantID, videoID uuid.UUID) (*video.Video, error) {
	return s.videos.GetByIDForTenant(ctx, tenantID, videoID)
}

// VideosForTenant lists the videos of tenantID, optionally by status.
func (s *Service) VideosForTenant(ctx context.Context, tenantID uuid.UUID, status video.Status) ([]*video.Video, error) {
	var pred sq.Sqlizer
	if status != "" {
		pred = sq.Eq{"status": string(status)}
	}
	return s.videos.FindForTenant(ctx, tenantID, pred)
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
	opts := []audit.EventOption{
		audit.WithTenant(id.String()),
		audit.WithResource("tenants", id.String()),
	}
	for k, v := range meta {
		opts = append(opts, audit.WithMetadata(k, v))
	}
	if err := s.audit.Log(ctx, action, opts...); err != nil && !errors.Is(err, context.Canceled) {
		s.log.ErrorContext(ctx, "failed to audit tenant change", logger.Error(err), "action", action)
	}
}
