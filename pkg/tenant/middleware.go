package tenant

import (
	"net/http"
	"strings"
)

// Middleware resolves the tenant of each request and builds its Context.
//
// It is the only place where request tenant contexts are constructed. The
// identifier comes from resolve and is accepted only if provider knows it; when
// a claim check is configured, a verified credential naming another tenant is
// rejected. WithRequireClaim also rejects requests that carry no such
// credential. Requests without an identifier pass through with no tenant, and
// any scoped operation they attempt fails with ErrNoTenantContext.
func Middleware(resolve Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			identifier, err := resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if identifier == "" {
				next.ServeHTTP(w, r)
				return
			}

			t, err := provider.GetByIdentifier(r.Context(), identifier)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			if cfg.requireActive && !t.Active() {
				cfg.errorHandler(w, r, ErrInactiveTenant)
				return
			}

			if cfg.claim != nil {
				claimed, ok := cfg.claim(r)
				switch {
				case !ok && cfg.requireClaim:
					cfg.logger.WarnContext(r.Context(), "request carries no tenant credential",
						"tenant_id", t.ID.String(),
					)
					cfg.errorHandler(w, r, ErrTenantMismatch)
					return
				case ok && claimed != t.ID:
					cfg.logger.WarnContext(r.Context(), "token tenant does not match request tenant",
						"tenant_id", t.ID.String(),
						"claimed_tenant_id", claimed.String(),
					)
					cfg.errorHandler(w, r, ErrTenantMismatch)
					return
				}
			}

			ctx := WithTenant(r.Context(), t)
			ctx = Inject(ctx, New(t.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant rejects requests that reach it without a tenant context.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Current(r.Context()).HasCurrentTenant() {
				errorHandler(w, r, ErrNoTenantContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
