package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/platform/pkg/config"
)

type serverConfig struct {
	Name    string        `env:"CONFIG_TEST_NAME" envDefault:"platform"`
	Port    int           `env:"CONFIG_TEST_PORT" envDefault:"8080"`
	Timeout time.Duration `env:"CONFIG_TEST_TIMEOUT" envDefault:"5s"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults and caching", func(t *testing.T) {
		config.Reset()
		t.Setenv("CONFIG_TEST_PORT", "9000")

		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "platform", cfg.Name)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, 5*time.Second, cfg.Timeout)

		t.Setenv("CONFIG_TEST_PORT", "9001")
		var again serverConfig
		require.NoError(t, config.Load(&again))
		assert.Equal(t, 9000, again.Port, "cached value is reused")

		fresh, err := config.Parse[serverConfig]()
		require.NoError(t, err)
		assert.Equal(t, 9001, fresh.Port)
	})

	t.Run("required field", func(t *testing.T) {
		config.Reset()

		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
		assert.Panics(t, func() { config.MustLoad(&cfg) })

		t.Setenv("CONFIG_TEST_SECRET", "s3cret")
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "s3cret", cfg.Secret)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[serverConfig](nil), config.ErrNilPointer)
	})
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_NAME", "")
	t.Setenv("CONFIG_TEST_PORT", "")

	require.NoError(t, config.LoadEnv("testdata/test.env"))
	cfg, err := config.Parse[serverConfig]()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)

	assert.ErrorIs(t, config.LoadEnv("testdata/missing.env"), config.ErrLoadingEnv)
}
