package video_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/platform/pkg/scoped"
	"github.com/streamkit/platform/pkg/sqlite"
	"github.com/streamkit/platform/pkg/sqlite/sqlitetest"
	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
	"github.com/streamkit/platform/pkg/validator"
	"github.com/streamkit/platform/svc/video"
)

func newService(t *testing.T) *video.Service {
	t.Helper()

	var tick atomic.Int64
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	inst := scoped.NewInstaller()
	video.RegisterTables(inst)
	db := store.New(sqlitetest.Open(t), sqlite.Dialect,
		store.WithFilter(inst.Install()),
		store.WithHooks(scoped.NewStampingHook()),
		store.WithClock(func() time.Time { return base.Add(time.Duration(tick.Add(1)) * time.Second) }),
	)
	return video.NewService(db)
}

func as(id uuid.UUID) context.Context {
	return tenant.Inject(context.Background(), tenant.New(id))
}

func upload(t *testing.T, s *video.Service, ctx context.Context, title string) *video.Video {
	t.Helper()
	v, err := s.Upload(ctx, video.UploadInput{Title: title, DurationSeconds: 60})
	require.NoError(t, err)
	return v
}

func TestUpload(t *testing.T) {
	t.Parallel()

	t.Run("creates a stamped draft", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		acme := uuid.New()
		v, err := s.Upload(as(acme), video.UploadInput{Title: "  Launch  ", Description: "keynote", DurationSeconds: 3600})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, v.ID)
		assert.Equal(t, acme, v.TenantID)
		assert.Equal(t, "Launch", v.Title)
		assert.Equal(t, video.StatusDraft, v.Status)

		got, err := s.Get(as(acme), v.ID)
		require.NoError(t, err)
		assert.Equal(t, acme, got.TenantID)
		assert.Equal(t, int64(3600), got.DurationSeconds)
	})

	t.Run("validates input", func(t *testing.T) {
		t.Parallel()

		s := newService(t)
		_, err := s.Upload(as(uuid.New()), video.UploadInput{Title: " ", DurationSeconds: -1})
		require.ErrorIs(t, err, validator.ErrValidationFailed)
		assert.ElementsMatch(t, []string{"title", "duration_seconds"}, validator.Extract(err).Fields())
	})

	t.Run("requires tenant", func(t *testing.T) {
		t.Parallel()

		_, err := newService(t).Upload(context.Background(), video.UploadInput{Title: "x"})
		assert.ErrorIs(t, err, tenant.ErrNoTenantContext)
	})
}

func TestIsolation(t *testing.T) {
	t.Parallel()

	s := newService(t)
	acme, globex := uuid.New(), uuid.New()
	mine := upload(t, s, as(acme), "acme intro")
	theirs := upload(t, s, as(globex), "globex intro")

	t.Run("foreign reads look missing", func(t *testing.T) {
		_, foreignErr := s.Get(as(acme), theirs.ID)
		_, missingErr := s.Get(as(acme), uuid.New())
		assert.ErrorIs(t, foreignErr, tenant.ErrNotFound)
		assert.Equal(t, missingErr, foreignErr)
	})

	t.Run("list is confined", func(t *testing.T) {
		videos, err := s.List(as(acme), "")
		require.NoError(t, err)
		require.Len(t, videos, 1)
		assert.Equal(t, mine.ID, videos[0].ID)
	})

	t.Run("foreign writes look missing", func(t *testing.T) {
		_, err := s.Publish(as(acme), theirs.ID)
		assert.ErrorIs(t, err, tenant.ErrNotFound)
		assert.ErrorIs(t, s.Delete(as(acme), theirs.ID), tenant.ErrNotFound)

		_, err = s.AddComment(as(acme), theirs.ID, video.CommentInput{Author: "eve", Body: "hi"})
		assert.ErrorIs(t, err, tenant.ErrNotFound)
		_, err = s.Comments(as(acme), theirs.ID)
		assert.ErrorIs(t, err, tenant.ErrNotFound)

		still, err := s.Get(as(globex), theirs.ID)
		require.NoError(t, err)
		assert.Equal(t, video.StatusDraft, still.Status)
	})

	t.Run("no tenant context", func(t *testing.T) {
		_, err := s.List(context.Background(), "")
		assert.ErrorIs(t, err, tenant.ErrNoTenantContext)
		_, err = s.Get(context.Background(), mine.ID)
		assert.ErrorIs(t, err, tenant.ErrNoTenantContext)
	})
}

func TestList(t *testing.T) {
	t.Parallel()

	s := newService(t)
	ctx := as(uuid.New())
	first := upload(t, s, ctx, "first")
	second := upload(t, s, ctx, "second")
	_, err := s.Publish(ctx, first.ID)
	require.NoError(t, err)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	published, err := s.List(ctx, video.StatusPublished)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, first.ID, published[0].ID)

	_, err = s.List(ctx, "deleted")
	assert.ErrorIs(t, err, validator.ErrValidationFailed)
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	s := newService(t)
	ctx := as(uuid.New())
	v := upload(t, s, ctx, "clip")

	got, err := s.Publish(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, video.StatusPublished, got.Status)

	got, err = s.Publish(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, video.StatusPublished, got.Status)

	got, err = s.Archive(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, video.StatusArchived, got.Status)

	_, err = s.Publish(ctx, v.ID)
	assert.ErrorIs(t, err, video.ErrInvalidTransition)

	stored, err := s.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, video.StatusArchived, stored.Status)
}

func TestComments(t *testing.T) {
	t.Parallel()

	s := newService(t)
	acme := uuid.New()
	ctx := as(acme)
	v := upload(t, s, ctx, "clip")
	other := upload(t, s, ctx, "other")

	c1, err := s.AddComment(ctx, v.ID, video.CommentInput{Author: "ann", Body: "first"})
	require.NoError(t, err)
	assert.Equal(t, acme, c1.TenantID)
	_, err = s.AddComment(ctx, v.ID, video.CommentInput{Author: "bob", Body: "second"})
	require.NoError(t, err)
	_, err = s.AddComment(ctx, other.ID, video.CommentInput{Author: "cat", Body: "elsewhere"})
	require.NoError(t, err)

	_, err = s.AddComment(ctx, v.ID, video.CommentInput{})
	assert.ElementsMatch(t, []string{"author", "body"}, validator.Extract(err).Fields())

	comments, err := s.Comments(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "second", comments[1].Body)

	t.Run("delete removes comments in the same batch", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, v.ID))

		_, err := s.Get(ctx, v.ID)
		assert.ErrorIs(t, err, tenant.ErrNotFound)

		left, err := s.Comments(ctx, other.ID)
		require.NoError(t, err)
		assert.Len(t, left, 1)
	})
}
