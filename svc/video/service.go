package video

import (
	"context"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/streamkit/platform/handler"
	"github.com/streamkit/platform/pkg/logger"
	"github.com/streamkit/platform/pkg/scoped"
	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
	"github.com/streamkit/platform/pkg/validator"
)

const maxTitleLength = 200

// Service is the video catalogue of the current tenant.
type Service struct {
	videos       *scoped.Repository[Video, *Video]
	comments     *scoped.Repository[Comment, *Comment]
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

type Option func(*config)

type config struct {
	repoOpts     []scoped.Option
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

// WithRepositoryOptions passes opts to the underlying scoped repositories.
func WithRepositoryOptions(opts ...scoped.Option) Option {
	return func(c *config) { c.repoOpts = append(c.repoOpts, opts...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// RegisterTables guards the tables owned by this service.
func RegisterTables(i *scoped.Installer) {
	scoped.Register[Video](i)
	scoped.Register[Comment](i)
}

func NewService(db *store.DB, opts ...Option) *Service {
	cfg := config{log: logger.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.errorHandler == nil {
		cfg.errorHandler = handler.NewErrorHandler(cfg.log)
	}
	return &Service{
		videos:       scoped.NewRepository[Video](db, cfg.repoOpts...),
		comments:     scoped.NewRepository[Comment](db, cfg.repoOpts...),
		log:          cfg.log.With(logger.Component("video")),
		errorHandler: cfg.errorHandler,
	}
}

type UploadInput struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// Upload registers a new draft video for the current tenant.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validator.Apply(
		validator.Required("title", in.Title),
		validator.MaxLen("title", in.Title, maxTitleLength),
		validator.NonNegative("duration_seconds", in.DurationSeconds),
	); err != nil {
		return nil, err
	}

	v := &Video{
		Title:           in.Title,
		Description:     strings.TrimSpace(in.Description),
		Status:          StatusDraft,
		DurationSeconds: in.DurationSeconds,
	}
	if err := s.videos.Add(ctx, v); err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "video uploaded", logger.RecordID(v.ID))
	return v, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Video, error) {
	return s.videos.GetByID(ctx, id)
}

// List returns the tenant's videos, newest first. An empty status lists all.
func (s *Service) List(ctx context.Context, status Status) ([]*Video, error) {
	q := s.videos.Query().OrderBy("created_at DESC", "id")
	if status != "" {
		if err := validator.Apply(
			validator.OneOf("status", status, StatusDraft, StatusPublished, StatusArchived),
		); err != nil {
			return nil, err
		}
		q = q.Where(sq.Eq{"status": string(status)})
	}
	return q.All(ctx)
}

// Publish makes a draft visible. Publishing a published video is a no-op;
// archived videos cannot be published again.
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (*Video, error) {
	return s.transition(ctx, id, StatusPublished)
}

func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*Video, error) {
	return s.transition(ctx, id, StatusArchived)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status) (*Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == to {
		return v, nil
	}
	if v.Status == StatusArchived {
		return nil, ErrInvalidTransition
	}
	v.Status = to
	if err := s.videos.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes the video together with its comments in one batch.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	comments, err := s.comments.Find(ctx, sq.Eq{"video_id": id.String()})
	if err != nil {
		return err
	}

	b := s.videos.NewBatch()
	for _, c := range comments {
		if err := s.comments.DeleteIn(ctx, b, c); err != nil {
			return err
		}
	}
	if err := s.videos.DeleteIn(ctx, b, v); err != nil {
		return err
	}
	if err := scoped.Commit(ctx, b); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "video deleted",
		logger.RecordID(id),
		slog.Int("comments", len(comments)),
	)
	return nil
}

type CommentInput struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// AddComment fails with tenant.ErrNotFound when the video is not visible to
// the current tenant.
func (s *Service) AddComment(ctx context.Context, videoID uuid.UUID, in CommentInput) (*Comment, error) {
	in.Author = strings.TrimSpace(in.Author)
	in.Body = strings.TrimSpace(in.Body)
	if err := validator.Apply(
		validator.Required("author", in.Author),
		validator.MaxLen("author", in.Author, 100),
		validator.Required("body", in.Body),
		validator.MaxLen("body", in.Body, 5000),
	); err != nil {
		return nil, err
	}

	if err := s.mustExist(ctx, videoID); err != nil {
		return nil, err
	}
	c := &Comment{VideoID: videoID, Author: in.Author, Body: in.Body}
	if err := s.comments.Add(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Comments lists the comments of a video, oldest first.
func (s *Service) Comments(ctx context.Context, videoID uuid.UUID) ([]*Comment, error) {
	if err := s.mustExist(ctx, videoID); err != nil {
		return nil, err
	}
	return s.comments.Query().
		Where(sq.Eq{"video_id": videoID.String()}).
		OrderBy("created_at", "id").
		All(ctx)
}

func (s *Service) mustExist(ctx context.Context, id uuid.UUID) error {
	ok, err := s.videos.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return tenant.ErrNotFound
	}
	return nil
}
