package video

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/streamkit/platform/handler"
	"github.com/streamkit/platform/pkg/binder"
)

// Handle mounts the tenant video API. The router must run behind
// tenant.Middleware and tenant.RequireTenant.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithBinders[handler.Context, ListRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, ListRequest](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.upload,
		handler.WithBinders[handler.Context, UploadInput](binder.JSON()),
		handler.WithErrorHandler[handler.Context, UploadInput](s.errorHandler),
	))

	r.Route("/{id}", func(r chi.Router) {
		byID := handler.WithBinders[handler.Context, VideoRequest](binder.Path(chi.URLParam))
		onErr := handler.WithErrorHandler[handler.Context, VideoRequest](s.errorHandler)

		r.Get("/", handler.Wrap(s.get, byID, onErr))
		r.Delete("/", handler.Wrap(s.delete, byID, onErr))
		r.Post("/publish", handler.Wrap(s.publish, byID, onErr))
		r.Post("/archive", handler.Wrap(s.archive, byID, onErr))
		r.Get("/comments", handler.Wrap(s.listComments, byID, onErr))
		r.Post("/comments", handler.Wrap(s.addComment,
			handler.WithBinders[handler.Context, AddCommentRequest](binder.Path(chi.URLParam), binder.JSON()),
			handler.WithErrorHandler[handler.Context, AddCommentRequest](s.errorHandler),
		))
	})

	return r
}

type ListRequest struct {
	Status Status `query:"status"`
}

type VideoRequest struct {
	ID uuid.UUID `path:"id"`
}

type AddCommentRequest struct {
	VideoID uuid.UUID `path:"id" json:"-"`
	Author  string    `json:"author"`
	Body    string    `json:"body"`
}

func (s *Service) list(ctx handler.Context, req ListRequest) handler.Response {
	videos, err := s.List(ctx, req.Status)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(videos, handler.WithJSONMeta(map[string]any{"total": len(videos)}))
}

func (s *Service) upload(ctx handler.Context, req UploadInput) handler.Response {
	v, err := s.Upload(ctx, req)
	if err != nil {
		return errorResponse(err)
	}
	return handler.Created(v)
}

func (s *Service) get(ctx handler.Context, req VideoRequest) handler.Response {
	v, err := s.Get(ctx, req.ID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(v)
}

func (s *Service) delete(ctx handler.Context, req VideoRequest) handler.Response {
	if err := s.Delete(ctx, req.ID); err != nil {
		return errorResponse(err)
	}
	return handler.Empty()
}

func (s *Service) publish(ctx handler.Context, req VideoRequest) handler.Response {
	v, err := s.Publish(ctx, req.ID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(v)
}

func (s *Service) archive(ctx handler.Context, req VideoRequest) handler.Response {
	v, err := s.Archive(ctx, req.ID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(v)
}

func (s *Service) listComments(ctx handler.Context, req VideoRequest) handler.Response {
	comments, err := s.Comments(ctx, req.ID)
	if err != nil {
		return errorResponse(err)
	}
	return handler.JSON(comments)
}

func (s *Service) addComment(ctx handler.Context, req AddCommentRequest) handler.Response {
	c, err := s.AddComment(ctx, req.VideoID, CommentInput{Author: req.Author, Body: req.Body})
	if err != nil {
		return errorResponse(err)
	}
	return handler.Created(c)
}

func errorResponse(err error) handler.Response {
	if errors.Is(err, ErrInvalidTransition) {
		return handler.Fail(errors.Join(handler.NewHTTPError(http.StatusConflict, "invalid_transition"), err))
	}
	return handler.Fail(err)
}
