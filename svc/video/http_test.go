package video_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/platform/pkg/tenant"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string              `json:"code"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

// withTenant stands in for tenant.Middleware.
func withTenant(id uuid.UUID, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id != uuid.Nil {
			r = r.WithContext(tenant.Inject(r.Context(), tenant.New(id)))
		}
		next.ServeHTTP(w, r)
	})
}

func call(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHTTP(t *testing.T) {
	t.Parallel()

	s := newService(t)
	acme, globex := uuid.New(), uuid.New()
	api := withTenant(acme, s.Handle())
	foreign := withTenant(globex, s.Handle())

	w, env := call(t, api, http.MethodPost, "/", `{"title":"Launch","duration_seconds":90}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID       uuid.UUID `json:"id"`
		TenantID uuid.UUID `json:"tenant_id"`
		Status   string    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, acme, created.TenantID)
	assert.Equal(t, "draft", created.Status)

	videoPath := "/" + created.ID.String()

	t.Run("get own video", func(t *testing.T) {
		w, _ := call(t, api, http.MethodGet, videoPath, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("foreign and missing are the same 404", func(t *testing.T) {
		wf, ef := call(t, foreign, http.MethodGet, videoPath, "")
		wm, em := call(t, foreign, http.MethodGet, "/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, wf.Code)
		assert.Equal(t, wm.Code, wf.Code)
		assert.Equal(t, em.Error.Code, ef.Error.Code)
	})

	t.Run("validation errors", func(t *testing.T) {
		w, env := call(t, api, http.MethodPost, "/", `{"title":""}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, env.Error.Details, "title")
	})

	t.Run("malformed id", func(t *testing.T) {
		w, _ := call(t, api, http.MethodGet, "/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("comments", func(t *testing.T) {
		w, _ := call(t, api, http.MethodPost, videoPath+"/comments", `{"author":"ann","body":"nice"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w, env := call(t, api, http.MethodGet, videoPath+"/comments", "")
		require.Equal(t, http.StatusOK, w.Code)
		var comments []map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &comments))
		assert.Len(t, comments, 1)

		w, _ = call(t, foreign, http.MethodPost, videoPath+"/comments", `{"author":"eve","body":"hi"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("archived video cannot be published", func(t *testing.T) {
		w, _ := call(t, api, http.MethodPost, videoPath+"/archive", "")
		require.Equal(t, http.StatusOK, w.Code)

		w, env := call(t, api, http.MethodPost, videoPath+"/publish", "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "invalid_transition", env.Error.Code)
	})

	t.Run("list with filter", func(t *testing.T) {
		w, env := call(t, api, http.MethodGet, "/?status=archived", "")
		require.Equal(t, http.StatusOK, w.Code)
		var videos []map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &videos))
		assert.Len(t, videos, 1)
	})

	t.Run("missing tenant is a server error", func(t *testing.T) {
		w, env := call(t, withTenant(uuid.Nil, s.Handle()), http.MethodGet, "/", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", env.Error.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w, _ := call(t, foreign, http.MethodDelete, videoPath, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = call(t, api, http.MethodDelete, videoPath, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w, _ = call(t, api, http.MethodGet, videoPath, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
