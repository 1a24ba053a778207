package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/platform/pkg/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with static attrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithAttr(slog.String("component", "test")))
		log.Info("hello", logger.Table("videos"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "hello", rec["msg"])
		assert.Equal(t, "test", rec["component"])
		assert.Equal(t, "videos", rec["table"])
	})

	t.Run("text output in development", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithEnvironment("dev", "svc"))
		log.Debug("details")

		out := buf.String()
		assert.Contains(t, out, "level=DEBUG")
		assert.Contains(t, out, "service=svc")
		assert.Contains(t, out, "env=development")
	})

	t.Run("production drops debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithEnvironment("prod", "svc"))
		log.Debug("hidden")
		assert.Empty(t, buf.String())

		log.Warn("shown")
		assert.Contains(t, buf.String(), `"env":"production"`)
	})

	t.Run("level by name", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevelName("ERROR"))
		log.Warn("hidden")
		assert.Empty(t, buf.String())

		_, ok := logger.ParseLevel("loud")
		assert.False(t, ok)
		lvl, ok := logger.ParseLevel("warn")
		assert.True(t, ok)
		assert.Equal(t, slog.LevelWarn, lvl)
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})
}

func TestContextExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextValue("request_id", ctxKey{}),
		logger.WithContextExtractors(nil, func(ctx context.Context) (slog.Attr, bool) {
			return slog.String("static", "yes"), true
		}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With("k", "v").InfoContext(ctx, "with context")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "yes", rec["static"])
	assert.Equal(t, "v", rec["k"])

	buf.Reset()
	log.Info("no request id")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(errors.New("x")).Key)
	assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))

	errs := logger.Errors(nil, errors.New("a"))
	assert.Equal(t, "errors", errs.Key)
	assert.Len(t, errs.Value.Group(), 1)

	assert.Equal(t, slog.Attr{}, logger.ActorID(""))
	assert.Equal(t, "tenant_id", logger.TenantID("t1").Key)
	assert.Equal(t, "operation", logger.Operation("update").Key)

	g := logger.Group("db", logger.Table("videos"), logger.RecordID(1))
	assert.Len(t, g.Value.Group(), 2)

	assert.NotNil(t, logger.Discard())
}
