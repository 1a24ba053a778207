package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services the api module mounts. Every
// service is optional and is only mounted when provided.
type RouterOptions struct {
	// Tenant-facing services, reachable under /api once a tenant resolved.
	Videos    Mountable
	Playlists Mountable

	// Operator services, reachable under /admin.
	Tenants Mountable

	// TenantMiddlewares run before every /api route, in order.
	TenantMiddlewares []func(http.Handler) http.Handler
	// AdminMiddlewares run before every /admin route, in order.
	AdminMiddlewares []func(http.Handler) http.Handler
}

// Router creates the platform api router.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/", api.Router(api.RouterOptions{
//	    Videos:            videos,
//	    Playlists:         playlists,
//	    Tenants:           platformSvc,
//	    TenantMiddlewares: []func(http.Handler) http.Handler{tenantMW},
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Videos != nil || opts.Playlists != nil {
		r.Route("/api", func(api chi.Router) {
			api.Use(opts.TenantMiddlewares...)
			if opts.Videos != nil {
				api.Mount("/videos", opts.Videos.Handle())
			}
			if opts.Playlists != nil {
				api.Mount("/playlists", opts.Playlists.Handle())
			}
		})
	}

	if opts.Tenants != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(opts.AdminMiddlewares...)
			admin.Mount("/tenants", opts.Tenants.Handle())
		})
	}

	return r
}
