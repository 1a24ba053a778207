package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/platform/handler"
	"github.com/streamkit/platform/pkg/binder"
	"github.com/streamkit/platform/pkg/tenant"
)

type renameRequest struct {
	ID    uuid.UUID `path:"id"`
	Title string    `json:"title"`
	Dry   bool      `query:"dry"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.JSONResponse {
	t.Helper()
	var body handler.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("binds path query and body", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		h := handler.Wrap(func(ctx handler.Context, req renameRequest) handler.Response {
			assert.Equal(t, id, req.ID)
			assert.Equal(t, "Launch", req.Title)
			assert.True(t, req.Dry)
			return handler.JSON(map[string]string{"title": req.Title})
		}, handler.WithBinders[handler.Context, renameRequest](
			binder.Path(chi.URLParam),
			binder.Query(),
			binder.JSON(),
		))

		r := chi.NewRouter()
		r.Patch("/videos/{id}", h)

		req := httptest.NewRequest(http.MethodPatch, "/videos/"+id.String()+"?dry=true", strings.NewReader(`{"title":"Launch"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"data":{"title":"Launch"}}`, w.Body.String())
	})

	t.Run("bind failure goes to error handler", func(t *testing.T) {
		t.Parallel()

		called := false
		h := handler.Wrap(func(handler.Context, renameRequest) handler.Response {
			called = true
			return handler.Empty()
		}, handler.WithBinders[handler.Context, renameRequest](binder.JSON()))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decode(t, w).Error.Code)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		var seen error
		h := handler.Wrap(func(handler.Context, struct{}) handler.Response {
			return nil
		}, handler.WithErrorHandler[handler.Context, struct{}](func(ctx handler.Context, err error) {
			seen = err
			ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
		}))

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, seen, handler.ErrNilResponse)
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("decorators run outermost first", func(t *testing.T) {
		t.Parallel()

		var order []string
		mark := func(name string) handler.Decorator[handler.Context, struct{}] {
			return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
				return func(ctx handler.Context, req struct{}) handler.Response {
					order = append(order, name)
					return next(ctx, req)
				}
			}
		}

		h := handler.Wrap(func(handler.Context, struct{}) handler.Response {
			order = append(order, "handler")
			return handler.Empty()
		}, handler.WithDecorators(mark("outer"), mark("inner")))

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodDelete, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{"outer", "inner", "handler"}, order)
	})

	t.Run("context carries request values", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		h := handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
			got, err := tenant.Current(ctx).Require()
			if err != nil {
				return handler.JSONError(err)
			}
			return handler.JSON(got)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(tenant.Inject(req.Context(), tenant.New(id)))
		w := httptest.NewRecorder()
		h(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.String(), decode(t, w).Data)
	})

	t.Run("context follows request cancellation", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		cancel()

		h := handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
			assert.ErrorIs(t, ctx.Err(), context.Canceled)
			return handler.Empty()
		})
		h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(parent))
	})
}

func TestResponses(t *testing.T) {
	t.Parallel()

	t.Run("created with meta", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, handler.JSON([]int{1, 2},
			handler.WithJSONStatus(http.StatusCreated),
			handler.WithJSONMeta(map[string]any{"total": 2}),
		).Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"data":[1,2],"meta":{"total":2}}`, w.Body.String())
	})

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, handler.Created("ok").Render(w, nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("json of an error", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, handler.JSON(tenant.ErrNotFound).Render(w, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decode(t, w).Error.Code)
	})

	t.Run("json error hides internal messages", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, handler.JSONError(errors.New("dial tcp 10.0.0.5:5432: refused")).Render(w, nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
	})

	t.Run("empty with status", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, handler.EmptyWithStatus(http.StatusAccepted).Render(w, nil))
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestFail(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(func(handler.Context, struct{}) handler.Response {
		return handler.Fail(fmt.Errorf("get video: %w", tenant.ErrNotFound))
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w).Error.Code)
}
