package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cache         sync.Map // reflect.Type -> parsed value
	loadDotenvOne sync.Once
)

// LoadEnv loads the given .env files into the process environment. Later files
// override earlier ones. Without arguments it loads ./.env if present.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		loadDotenvOne.Do(func() { _ = godotenv.Load() })
		return nil
	}
	if err := godotenv.Overload(paths...); err != nil {
		return errors.Join(ErrLoadingEnv, err)
	}
	return nil
}

// Load parses environment variables into v using `env` struct tags. Each
// config type is parsed once; later calls copy the cached value.
//
//	type DBConfig struct {
//		Driver string `env:"DB_DRIVER" envDefault:"sqlite3"`
//	}
//
//	var cfg DBConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	_ = LoadEnv()

	key := reflect.TypeFor[T]()
	if cached, ok := cache.Load(key); ok {
		*v = cached.(T)
		return nil
	}

	parsed, err := Parse[T]()
	if err != nil {
		return err
	}
	actual, _ := cache.LoadOrStore(key, parsed)
	*v = actual.(T)
	return nil
}

// Parse reads T from the environment without touching the cache.
func Parse[T any]() (T, error) {
	var v T
	if err := env.Parse(&v); err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

// MustLoad is Load that panics on failure.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Reset drops every cached config. Intended for tests.
func Reset() {
	cache.Clear()
}
