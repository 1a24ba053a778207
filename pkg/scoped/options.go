package scoped

import (
	"log/slog"

	"github.com/streamkit/platform/pkg/audit"
	"github.com/streamkit/platform/pkg/logger"
)

// Option configures repositories, operators and the stamping hook.
type Option func(*options)

type options struct {
	log   *slog.Logger
	audit *audit.Logger
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithAuditLogger records cross-tenant write attempts and operator reads.
func WithAuditLogger(a *audit.Logger) Option {
	return func(o *options) { o.audit = a }
}

func newOptions(opts []Option) options {
	o := options{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.With(logger.Component("scoped"))
	return o
}
