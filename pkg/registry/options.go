package registry

import (
	"log/slog"

	"github.com/streamkit/platform/pkg/logger"
)

type Option func(*Registry)

// WithCache enables read-through caching. The default is NoCache.
func WithCache(c Cache) Option {
	return func(r *Registry) {
		if c != nil {
			r.cache = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l.With(logger.Component("registry"))
		}
	}
}

// WithReservedSlugs replaces the slugs no tenant may take.
func WithReservedSlugs(slugs ...string) Option {
	return func(r *Registry) {
		r.reserved = make(map[string]struct{}, len(slugs))
		for _, s := range slugs {
			r.reserved[s] = struct{}{}
		}
	}
}
