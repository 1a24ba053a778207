package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamkit/platform/modules/api"
)

type named string

func (n named) Handle() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Service", string(n))
		w.WriteHeader(http.StatusOK)
	})
}

func tag(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Middleware", name)
			next.ServeHTTP(w, r)
		})
	}
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("mounts services behind their middleware", func(t *testing.T) {
		t.Parallel()

		r := api.Router(api.RouterOptions{
			Videos:            named("videos"),
			Playlists:         named("playlists"),
			Tenants:           named("tenants"),
			TenantMiddlewares: []func(http.Handler) http.Handler{tag("tenant"), tag("require")},
			AdminMiddlewares:  []func(http.Handler) http.Handler{tag("jwt")},
		})

		w := get(r, "/api/videos/123")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "videos", w.Header().Get("X-Service"))
		assert.Equal(t, []string{"tenant", "require"}, w.Header().Values("X-Middleware"))

		w = get(r, "/api/playlists")
		assert.Equal(t, "playlists", w.Header().Get("X-Service"))

		w = get(r, "/admin/tenants")
		assert.Equal(t, "tenants", w.Header().Get("X-Service"))
		assert.Equal(t, []string{"jwt"}, w.Header().Values("X-Middleware"))
	})

	t.Run("skips missing services", func(t *testing.T) {
		t.Parallel()

		r := api.Router(api.RouterOptions{Videos: named("videos")})

		assert.Equal(t, http.StatusOK, get(r, "/api/videos").Code)
		assert.Equal(t, http.StatusNotFound, get(r, "/api/playlists").Code)
		assert.Equal(t, http.StatusNotFound, get(r, "/admin/tenants").Code)
	})
}
