package playlist

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/streamkit/platform/handler"
	"github.com/streamkit/platform/pkg/binder"
)

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, CreateRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, CreateRequest](s.errorHandler),
	))

	r.Route("/{id}", func(r chi.Router) {
		byID := handler.WithBinders[handler.Context, PlaylistRequest](binder.Path(chi.URLParam))
		onErr := handler.WithErrorHandler[handler.Context, PlaylistRequest](s.errorHandler)

		r.Get("/", handler.Wrap(s.get, byID, onErr))
		r.Delete("/", handler.Wrap(s.delete, byID, onErr))
		r.Get("/items", handler.Wrap(s.listItems, byID, onErr))
		r.Patch("/", handler.Wrap(s.rename,
			handler.WithBinders[handler.Context, RenameRequest](binder.Path(chi.URLParam), binder.JSON()),
			handler.WithErrorHandler[handler.Context, RenameRequest](s.errorHandler),
		))
		r.Post("/items", handler.Wrap(s.addVideo,
			handler.WithBinders[handler.Context, AddVideoRequest](binder.Path(chi.URLParam), binder.JSON()),
			handler.WithErrorHandler[handler.Context, AddVideoRequest](s.errorHandler),
		))
	})

	return r
}

type CreateRequest struct {
	Name string `json:"name"`
}

type PlaylistRequest struct {
	ID uuid.UUID `path:"id"`
}

type RenameRequest struct {
	ID   uuid.UUID `path:"id" json:"-"`
	Name string    `json:"name"`
}

type AddVideoRequest struct {
	PlaylistID uuid.UUID `path:"id" json:"-"`
	VideoID    uuid.UUID `json:"video_id"`
}

func (s *Service) list(ctx handler.Context, _ struct{}) handler.Response {
	playlists, err := s.List(ctx)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(playlists)
}

func (s *Service) create(ctx handler.Context, req CreateRequest) handler.Response {
	p, err := s.Create(ctx, req.Name)
	if err != nil {
		return errorResponse(err)
	}
	return handler.Created(p)
}

func (s *Service) get(ctx handler.Context, req PlaylistRequest) handler.Response {
	p, err := s.Get(ctx, req.ID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(p)
}

func (s *Service) rename(ctx handler.Context, req RenameRequest) handler.Response {
	p, err := s.Rename(ctx, req.ID, req.Name)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(p)
}

func (s *Service) delete(ctx handler.Context, req PlaylistRequest) handler.Response {
	if err := s.Delete(ctx, req.ID); err != nil {
		return errorResponse(err)
	}
	return handler.Empty()
}

func (s *Service) listItems(ctx handler.Context, req PlaylistRequest) handler.Response {
	items, err := s.Items(ctx, req.ID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(items)
}

func (s *Service) addVideo(ctx handler.Context, req AddVideoRequest) handler.Response {
	item, err := s.AddVideo(ctx, req.PlaylistID, req.VideoID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.Created(item)
}

func errorResponse(err error) handler.Response {
	if errors.Is(err, ErrDefaultPlaylist) {
		return handler.Fail(errors.Join(handler.NewHTTPError(http.StatusConflict, "default_playlist"), err))
	}
	return handler.Fail(err)
}
