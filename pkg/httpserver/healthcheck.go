package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/streamkit/platform/pkg/logger"
)

// Check is one named readiness dependency, e.g. the database or the cache.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves liveness when called without checks and readiness
// otherwise. Checks run concurrently, each bounded by timeout; any failure
// turns the response into 503.
func HealthHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		report := healthReport{Status: "ok"}
		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			results := make([]error, len(checks))
			var g errgroup.Group
			for i, c := range checks {
				g.Go(func() error {
					results[i] = c.Fn(ctx)
					return nil
				})
			}
			_ = g.Wait()

			report.Checks = make(map[string]string, len(checks))
			for i, c := range checks {
				if err := results[i]; err != nil {
					log.ErrorContext(r.Context(), "readiness check failed",
						logger.Component(c.Name),
						logger.Error(err),
					)
					report.Checks[c.Name] = "unavailable"
					report.Status = "unavailable"
					continue
				}
				report.Checks[c.Name] = "ok"
			}
		}

		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
	}
}
