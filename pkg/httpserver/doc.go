// Package httpserver runs the platform's HTTP listener with graceful shutdown
// and serves health probes.
//
//	cfg, _ := config.Load[httpserver.Config]()
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.HealthHandler(log, 2*time.Second))
//	r.Get("/readyz", httpserver.HealthHandler(log, 2*time.Second,
//		httpserver.Check{Name: "db", Fn: db.Healthcheck()},
//	))
//
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns when ctx is cancelled, Shutdown is called, or the process gets
// SIGINT/SIGTERM. Listen failures are wrapped in ErrStart and shutdown
// failures in ErrShutdown.
package httpserver
