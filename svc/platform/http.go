package platform

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/streamkit/platform/handler"
	"github.com/streamkit/platform/pkg/binder"
	"github.com/streamkit/platform/pkg/registry"
	"github.com/streamkit/platform/pkg/tenant"
	"github.com/streamkit/platform/svc/video"
)

// Handle mounts the operator API. It expects verified claims in the request
// context and must not run behind the tenant middleware.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	path := binder.Path(chi.URLParam)

	r.Get("/", handler.Wrap(s.list,
		handler.WithBinders[handler.Context, ListRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, ListRequest](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.provision,
		handler.WithBinders[handler.Context, ProvisionInput](binder.JSON()),
		handler.WithErrorHandler[handler.Context, ProvisionInput](s.errorHandler),
	))

	r.Route("/{id}", func(r chi.Router) {
		byID := handler.WithBinders[handler.Context, TenantRequest](path)
		onErr := handler.WithErrorHandler[handler.Context, TenantRequest](s.errorHandler)

		r.Get("/", handler.Wrap(s.get, byID, onErr))
		r.Delete("/", handler.Wrap(s.delete, byID, onErr))
		r.Post("/suspend", handler.Wrap(s.suspend, byID, onErr))
		r.Post("/reactivate", handler.Wrap(s.reactivate, byID, onErr))

		r.Put("/name", handler.Wrap(s.rename,
			handler.WithBinders[handler.Context, RenameRequest](path, binder.JSON()),
			handler.WithErrorHandler[handler.Context, RenameRequest](s.errorHandler),
		))
		r.Put("/settings", handler.Wrap(s.updateSettings,
			handler.WithBinders[handler.Context, SettingsRequest](path, binder.JSON()),
			handler.WithErrorHandler[handler.Context, SettingsRequest](s.errorHandler),
		))
		r.Put("/domain", handler.Wrap(s.setDomain,
			handler.WithBinders[handler.Context, DomainRequest](path, binder.JSON()),
			handler.WithErrorHandler[handler.Context, DomainRequest](s.errorHandler),
		))

		r.Get("/videos", handler.Wrap(s.tenantVideos,
			handler.WithBinders[handler.Context, TenantVideosRequest](path, binder.Query()),
			handler.WithErrorHandler[handler.Context, TenantVideosRequest](s.errorHandler),
		))
		r.Get("/videos/{videoID}", handler.Wrap(s.tenantVideo,
			handler.WithBinders[handler.Context, TenantVideoRequest](path),
			handler.WithErrorHandler[handler.Context, TenantVideoRequest](s.errorHandler),
		))
	})

	return r
}

type ListRequest struct {
	Status   tenant.Status `query:"status"`
	Search   string        `query:"q"`
	Page     int           `query:"page"`
	PageSize int           `query:"page_size"`
}

type TenantRequest struct {
	ID uuid.UUID `path:"id"`
}

type RenameRequest struct {
	ID   uuid.UUID `path:"id" json:"-"`
	Name string    `json:"name"`
}

type SettingsRequest struct {
	ID       uuid.UUID       `path:"id" json:"-"`
	Settings tenant.Settings `json:"settings"`
}

type DomainRequest struct {
	ID     uuid.UUID `path:"id" json:"-"`
	Domain string    `json:"domain"`
}

type TenantVideosRequest struct {
	ID     uuid.UUID    `path:"id"`
	Status video.Status `query:"status"`
}

type TenantVideoRequest struct {
	ID      uuid.UUID `path:"id"`
	VideoID uuid.UUID `path:"videoID"`
}

func (s *Service) list(ctx handler.Context, req ListRequest) handler.Response {
	page, err := s.List(ctx, registry.Filter{
		Status:   req.Status,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(page.Items, handler.WithJSONMeta(map[string]any{
		"total":     page.Total,
		"page":      page.Page,
		"page_size": page.PageSize,
	}))
}

func (s *Service) provision(ctx handler.Context, req ProvisionInput) handler.Response {
	p, err := s.Provision(ctx, req)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.Created(p)
}

func (s *Service) get(ctx handler.Context, req TenantRequest) handler.Response {
	return tenantResponse(s.Get(ctx, req.ID))
}

func (s *Service) rename(ctx handler.Context, req RenameRequest) handler.Response {
	return tenantResponse(s.Rename(ctx, req.ID, req.Name))
}

func (s *Service) updateSettings(ctx handler.Context, req SettingsRequest) handler.Response {
	return tenantResponse(s.UpdateSettings(ctx, req.ID, req.Settings))
}

func (s *Service) setDomain(ctx handler.Context, req DomainRequest) handler.Response {
	return tenantResponse(s.SetCustomDomain(ctx, req.ID, req.Domain))
}

func (s *Service) suspend(ctx handler.Context, req TenantRequest) handler.Response {
	return tenantResponse(s.Suspend(ctx, req.ID))
}

func (s *Service) reactivate(ctx handler.Context, req TenantRequest) handler.Response {
	return tenantResponse(s.Reactivate(ctx, req.ID))
}

func (s *Service) delete(ctx handler.Context, req TenantRequest) handler.Response {
	if err := s.Delete(ctx, req.ID); err != nil {
		return handler.Fail(err)
	}
	return handler.Empty()
}

func (s *Service) tenantVideos(ctx handler.Context, req TenantVideosRequest) handler.Response {
	videos, err := s.VideosForTenant(ctx, req.ID, req.Status)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(videos)
}

func (s *Service) tenantVideo(ctx handler.Context, req TenantVideoRequest) handler.Response {
	v, err := s.VideoForTenant(ctx, req.ID, req.VideoID)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(v)
}

func tenantResponse(t *tenant.Tenant, err error) handler.Response {
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(t)
}
