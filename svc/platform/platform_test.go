package platform_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/platform/pkg/audit"
	"github.com/streamkit/platform/pkg/jwt"
	"github.com/streamkit/platform/pkg/registry"
	"github.com/streamkit/platform/pkg/scoped"
	"github.com/streamkit/platform/pkg/scopes"
	"github.com/streamkit/platform/pkg/sqlite"
	"github.com/streamkit/platform/pkg/sqlite/sqlitetest"
	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
	"github.com/streamkit/platform/pkg/validator"
	"github.com/streamkit/platform/svc/platform"
	"github.com/streamkit/platform/svc/playlist"
	"github.com/streamkit/platform/svc/video"
)

type fixture struct {
	svc       *platform.Service
	registry  *registry.Registry
	playlists *playlist.Service
	videos    *video.Service
	events    *audit.MemoryStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	inst := scoped.NewInstaller()
	video.RegisterTables(inst)
	playlist.RegisterTables(inst)
	db := store.New(sqlitetest.Open(t), sqlite.Dialect,
		store.WithFilter(inst.Install()),
		store.WithHooks(scoped.NewStampingHook()),
	)

	events := audit.NewMemoryStorage()
	reg := registry.New(db)
	playlists := playlist.NewService(db)
	return &fixture{
		svc:       platform.NewService(db, reg, playlists, platform.WithAuditLogger(audit.NewLogger(events))),
		registry:  reg,
		playlists: playlists,
		videos:    video.NewService(db),
		events:    events,
	}
}

func operator(scope ...string) context.Context {
	return jwt.WithClaims(context.Background(), &jwt.Claims{Scope: strings.Join(scope, " ")})
}

var admin = operator("platform.tenants.*")

func as(id uuid.UUID) context.Context {
	return tenant.Inject(context.Background(), tenant.New(id))
}

func (f *fixture) provision(t *testing.T, name string) *tenant.Tenant {
	t.Helper()
	p, err := f.svc.Provision(admin, platform.ProvisionInput{Name: name})
	require.NoError(t, err)
	return p.Tenant
}

func (f *fixture) count(t *testing.T, action string) int {
	t.Helper()
	events, err := f.events.Query(context.Background(), audit.Criteria{Action: action})
	require.NoError(t, err)
	return len(events)
}

func TestProvision(t *testing.T) {
	t.Parallel()

	t.Run("creates tenant and default playlist together", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p, err := f.svc.Provision(admin, platform.ProvisionInput{
			Name:         "Acme Studios",
			CustomDomain: "Watch.Acme.com",
			Settings:     tenant.Settings{"theme": "dark"},
		})
		require.NoError(t, err)

		assert.Equal(t, "acme-studios", p.Tenant.Slug)
		assert.Equal(t, "watch.acme.com", p.Tenant.Domain())
		assert.Equal(t, tenant.StatusActive, p.Tenant.Status)
		assert.Equal(t, p.Tenant.ID, p.DefaultPlaylist.TenantID)

		lists, err := f.playlists.List(as(p.Tenant.ID))
		require.NoError(t, err)
		require.Len(t, lists, 1)
		assert.True(t, lists[0].IsDefault)
		assert.Equal(t, playlist.DefaultName, lists[0].Name)

		got, err := f.registry.GetByIdentifier(context.Background(), "watch.acme.com")
		require.NoError(t, err)
		assert.Equal(t, p.Tenant.ID, got.ID)
		assert.Equal(t, 1, f.count(t, platform.ActionTenantProvisioned))
	})

	t.Run("rejected provisioning persists nothing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		first := f.provision(t, "Acme")

		_, err := f.svc.Provision(admin, platform.ProvisionInput{Name: "Other", Slug: "acme"})
		assert.ErrorIs(t, err, tenant.ErrSlugConflict)

		_, err = f.svc.Provision(admin, platform.ProvisionInput{Name: "Api", Slug: "api"})
		assert.ErrorIs(t, err, validator.ErrValidationFailed)

		page, err := f.registry.List(context.Background(), registry.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, first.ID, page.Items[0].ID)
	})

	t.Run("requires write scope", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.svc.Provision(context.Background(), platform.ProvisionInput{Name: "Acme"})
		assert.ErrorIs(t, err, jwt.ErrMissingClaims)

		_, err = f.svc.Provision(operator(platform.ScopeTenantsRead), platform.ProvisionInput{Name: "Acme"})
		assert.ErrorIs(t, err, scopes.ErrInsufficientScope)
	})
}

func TestTenantUpdates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	acme := f.provision(t, "Acme")
	globex := f.provision(t, "Globex")

	t.Run("rename", func(t *testing.T) {
		got, err := f.svc.Rename(admin, acme.ID, "Acme Corp")
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", got.Name)
		assert.Equal(t, "acme", got.Slug)
	})

	t.Run("settings", func(t *testing.T) {
		_, err := f.svc.UpdateSettings(admin, acme.ID, tenant.Settings{"max_upload_mb": 512})
		require.NoError(t, err)

		got, err := f.svc.Get(admin, acme.ID)
		require.NoError(t, err)
		assert.InDelta(t, 512, got.Settings["max_upload_mb"], 0)
	})

	t.Run("custom domain", func(t *testing.T) {
		got, err := f.svc.SetCustomDomain(admin, acme.ID, "videos.acme.com")
		require.NoError(t, err)
		assert.Equal(t, "videos.acme.com", got.Domain())

		_, err = f.svc.SetCustomDomain(admin, globex.ID, "videos.acme.com")
		assert.ErrorIs(t, err, tenant.ErrDomainConflict)

		got, err = f.svc.SetCustomDomain(admin, acme.ID, "")
		require.NoError(t, err)
		assert.Empty(t, got.Domain())
	})

	t.Run("read scope cannot write", func(t *testing.T) {
		_, err := f.svc.Rename(operator(platform.ScopeTenantsRead), acme.ID, "Nope")
		assert.ErrorIs(t, err, scopes.ErrInsufficientScope)

		_, err = f.svc.Get(operator(platform.ScopeTenantsRead), acme.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := f.svc.Rename(admin, uuid.New(), "Ghost")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	assert.Equal(t, 4, f.count(t, platform.ActionTenantUpdated))
}

func TestStatusLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	acme := f.provision(t, "Acme")

	got, err := f.svc.Suspend(admin, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusSuspended, got.Status)

	_, err = f.svc.Suspend(admin, acme.ID)
	assert.ErrorIs(t, err, tenant.ErrInvalidStatusTransition)

	got, err = f.svc.Reactivate(admin, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusActive, got.Status)

	require.NoError(t, f.svc.Delete(admin, acme.ID))
	_, err = f.svc.Reactivate(admin, acme.ID)
	assert.ErrorIs(t, err, tenant.ErrInvalidStatusTransition)

	page, err := f.svc.List(admin, registry.Filter{Status: tenant.StatusDeleted})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 3, f.count(t, platform.ActionTenantStatus))
}

func TestVideoForTenant(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	acme := f.provision(t, "Acme")
	globex := f.provision(t, "Globex")

	v, err := f.videos.Upload(as(acme.ID), video.UploadInput{Title: "keynote"})
	require.NoError(t, err)
	_, err = f.videos.Upload(as(globex.ID), video.UploadInput{Title: "other"})
	require.NoError(t, err)

	t.Run("operator reads the named tenant", func(t *testing.T) {
		got, err := f.svc.VideoForTenant(operator(platform.ScopeTenantsRead), acme.ID, v.ID)
		require.NoError(t, err)
		assert.Equal(t, acme.ID, got.TenantID)

		list, err := f.svc.VideosForTenant(admin, acme.ID, "")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, v.ID, list[0].ID)

		drafts, err := f.svc.VideosForTenant(admin, acme.ID, video.StatusPublished)
		require.NoError(t, err)
		assert.Empty(t, drafts)
	})

	t.Run("wrong tenant looks missing", func(t *testing.T) {
		_, err := f.svc.VideoForTenant(admin, globex.ID, v.ID)
		assert.ErrorIs(t, err, tenant.ErrNotFound)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := f.svc.VideoForTenant(admin, uuid.New(), v.ID)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("requires operator scope", func(t *testing.T) {
		_, err := f.svc.VideoForTenant(context.Background(), acme.ID, v.ID)
		assert.ErrorIs(t, err, jwt.ErrMissingClaims)

		_, err = f.svc.VideoForTenant(as(acme.ID), acme.ID, v.ID)
		assert.ErrorIs(t, err, jwt.ErrMissingClaims)

		assert.GreaterOrEqual(t, f.count(t, scoped.ActionOperatorDenied), 2)
	})

	assert.GreaterOrEqual(t, f.count(t, scoped.ActionOperatorRead), 3)
}

func TestHTTP(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	api := f.svc.Handle()

	serve := func(ctx context.Context, method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		w := httptest.NewRecorder()
		api.ServeHTTP(w, req.WithContext(ctx))
		return w
	}

	w := serve(admin, http.MethodPost, "/", `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data platform.Provisioned `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.Tenant.ID.String()

	w = serve(admin, http.MethodPost, "/", `{"name":"Acme"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "slug_conflict")

	w = serve(context.Background(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(operator(platform.ScopeTenantsRead), http.MethodPost, "/"+id+"/suspend", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(admin, http.MethodPost, "/"+id+"/suspend", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(admin, http.MethodPut, "/"+id+"/name", `{"name":"Acme Two"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(admin, http.MethodGet, "/?status=suspended&q=acme", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = serve(admin, http.MethodGet, "/"+id+"/videos/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(admin, http.MethodDelete, "/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(admin, http.MethodPost, "/"+id+"/reactivate", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
