// Command platformd serves the tenant-scoped video platform api.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/streamkit/platform/handler"
	"github.com/streamkit/platform/migrations"
	"github.com/streamkit/platform/modules/api"
	"github.com/streamkit/platform/pkg/audit"
	"github.com/streamkit/platform/pkg/config"
	"github.com/streamkit/platform/pkg/httpserver"
	"github.com/streamkit/platform/pkg/jwt"
	"github.com/streamkit/platform/pkg/logger"
	"github.com/streamkit/platform/pkg/mongo"
	"github.com/streamkit/platform/pkg/pg"
	"github.com/streamkit/platform/pkg/redis"
	"github.com/streamkit/platform/pkg/registry"
	"github.com/streamkit/platform/pkg/scoped"
	"github.com/streamkit/platform/pkg/sqlite"
	"github.com/streamkit/platform/pkg/store"
	"github.com/streamkit/platform/pkg/tenant"
	"github.com/streamkit/platform/svc/platform"
	"github.com/streamkit/platform/svc/playlist"
	"github.com/streamkit/platform/svc/video"
)

type appConfig struct {
	Env          string        `env:"APP_ENV" envDefault:"development"`
	LogLevel     string        `env:"LOG_LEVEL"`
	DBDriver     string        `env:"DB_DRIVER" envDefault:"sqlite3"`
	BaseDomain   string        `env:"BASE_DOMAIN,required"`
	TenantCache  string        `env:"TENANT_CACHE" envDefault:"memory"`
	CacheTTL     time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	CacheSize    int           `env:"TENANT_CACHE_SIZE" envDefault:"1024"`
	AuditBackend string        `env:"AUDIT_BACKEND" envDefault:"sql"`
	AuditAsync   bool          `env:"AUDIT_ASYNC" envDefault:"true"`
	ReadyTimeout time.Duration `env:"READY_TIMEOUT" envDefault:"2s"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "platformd"),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(tenant.LoggerExtractor(), requestIDAttr),
	)
	logger.SetAsDefault(log)

	var closers []func(context.Context) error
	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](ctx); err != nil {
				log.ErrorContext(ctx, "shutdown", logger.Error(err))
			}
		}
	}()

	db, dialect, dbCheck, closeDB, err := openDatabase(ctx, cfg.DBDriver, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeDB)
	checks := []httpserver.Check{{Name: "database", Fn: dbCheck}}

	storage, storageChecks, closeStorage, err := openAuditStorage(ctx, cfg, db, dialect, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeStorage)
	checks = append(checks, storageChecks...)

	auditLog := audit.NewLogger(storage,
		audit.WithTenantIDExtractor(auditTenant),
		audit.WithActorExtractor(auditActor),
		audit.WithRequestIDExtractor(auditRequestID),
	)

	inst := scoped.NewInstaller()
	video.RegisterTables(inst)
	playlist.RegisterTables(inst)

	sdb := store.New(db, dialect,
		store.WithFilter(inst.Install()),
		store.WithHooks(scoped.NewStampingHook(scoped.WithLogger(log), scoped.WithAuditLogger(auditLog))),
		store.WithLogger(log),
	)

	cache, cacheChecks, closeCache, err := openTenantCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeCache)
	checks = append(checks, cacheChecks...)

	reg := registry.New(sdb,
		registry.WithCache(cache),
		registry.WithLogger(log),
		registry.WithReservedSlugs("www", "api", "admin", "app", "static", "cdn"),
	)

	jwtCfg, err := config.Parse[jwt.Config]()
	if err != nil {
		return err
	}
	tokens, err := jwt.NewFromConfig(jwtCfg)
	if err != nil {
		return err
	}

	errorWriter := handler.ErrorWriter(log)
	errorHandler := handler.NewErrorHandler(log)
	repoOpts := []scoped.Option{scoped.WithLogger(log), scoped.WithAuditLogger(auditLog)}

	videos := video.NewService(sdb,
		video.WithRepositoryOptions(repoOpts...),
		video.WithLogger(log),
		video.WithErrorHandler(errorHandler),
	)
	playlists := playlist.NewService(sdb,
		playlist.WithRepositoryOptions(repoOpts...),
		playlist.WithLogger(log),
		playlist.WithErrorHandler(errorHandler),
	)
	tenants := platform.NewService(sdb, reg, playlists,
		platform.WithLogger(log),
		platform.WithAuditLogger(auditLog),
		platform.WithErrorHandler(errorHandler),
	)

	resolve := tenant.NewCompositeResolver(
		tenant.NewSubdomainResolver(cfg.BaseDomain),
		tenant.NewCustomDomainResolver(cfg.BaseDomain),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthHandler(log, cfg.ReadyTimeout))
	r.Get("/readyz", httpserver.HealthHandler(log, cfg.ReadyTimeout, checks...))
	r.Mount("/", api.Router(api.RouterOptions{
		Videos:    videos,
		Playlists: playlists,
		Tenants:   tenants,
		TenantMiddlewares: tenantMiddlewares(tokens, resolve, reg, log),
		AdminMiddlewares: []func(http.Handler) http.Handler{
			jwt.Middleware(tokens, jwt.MiddlewareConfig{ErrorHandler: errorWriter}),
		},
	}))

	httpCfg, err := config.Parse[httpserver.Config]()
	if err != nil {
		return err
	}
	srv := httpserver.New(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(addr string) {
			log.InfoContext(ctx, "platformd listening", "addr", addr, "db_driver", cfg.DBDriver, "base_domain", cfg.BaseDomain)
		}),
	)
	return srv.Run(ctx, r)
}

// tenantMiddlewares builds the /api chain. A verified token naming the host's
// tenant is required before a tenant context is built.
func tenantMiddlewares(tokens *jwt.Service, resolve tenant.Resolver, provider tenant.Provider, log *slog.Logger) []func(http.Handler) http.Handler {
	errorWriter := handler.ErrorWriter(log)
	return []func(http.Handler) http.Handler{
		jwt.Middleware(tokens, jwt.MiddlewareConfig{ErrorHandler: errorWriter}),
		tenant.Middleware(resolve, provider,
			tenant.WithRequireClaim(jwt.TenantClaim),
			tenant.WithErrorHandler(errorWriter),
			tenant.WithLogger(log),
		),
		tenant.RequireTenant(errorWriter),
	}
}

func openDatabase(ctx context.Context, driver string, log *slog.Logger) (*sql.DB, store.Dialect, func(context.Context) error, func(context.Context) error, error) {
	switch driver {
	case "sqlite3", "sqlite":
		var c sqlite.Config
		if err := config.Load(&c); err != nil {
			return nil, store.Dialect{}, nil, nil, err
		}
		db, err := sqlite.Open(ctx, c)
		if err != nil {
			return nil, store.Dialect{}, nil, nil, err
		}
		if err := sqlite.Migrate(ctx, db, migrations.FS, log); err != nil {
			return nil, store.Dialect{}, nil, nil, errors.Join(err, db.Close())
		}
		return db, sqlite.Dialect, sqlite.Healthcheck(db), func(context.Context) error { return db.Close() }, nil

	case "postgres", "pgx":
		var c pg.Config
		if err := config.Load(&c); err != nil {
			return nil, store.Dialect{}, nil, nil, err
		}
		pool, err := pg.Connect(ctx, c)
		if err != nil {
			return nil, store.Dialect{}, nil, nil, err
		}
		db := pg.Open(pool)
		if err := pg.Migrate(ctx, db, migrations.FS, log); err != nil {
			pool.Close()
			return nil, store.Dialect{}, nil, nil, err
		}
		return db, pg.Dialect, pg.Healthcheck(pool), func(context.Context) error {
			err := db.Close()
			pool.Close()
			return err
		}, nil
	}
	return nil, store.Dialect{}, nil, nil, fmt.Errorf("platformd: unsupported DB_DRIVER %q", driver)
}

func openAuditStorage(ctx context.Context, cfg appConfig, db *sql.DB, dialect store.Dialect, log *slog.Logger) (audit.Storage, []httpserver.Check, func(context.Context) error, error) {
	var (
		storage audit.Storage
		checks  []httpserver.Check
		closer  = func(context.Context) error { return nil }
	)

	switch cfg.AuditBackend {
	case "sql":
		// audit_events is not tenant-owned, so a plain store without filter or
		// stamping hook is enough.
		storage = audit.NewSQLStorage(store.New(db, dialect, store.WithLogger(log)))

	case "mongo":
		var c mongo.Config
		if err := config.Load(&c); err != nil {
			return nil, nil, nil, err
		}
		mdb, err := mongo.NewWithDatabase(ctx, c)
		if err != nil {
			return nil, nil, nil, err
		}
		ms := audit.NewMongoStorage(mdb, "audit_events")
		if err := ms.EnsureIndexes(ctx); err != nil {
			return nil, nil, nil, errors.Join(err, mdb.Client().Disconnect(ctx))
		}
		storage = ms
		checks = append(checks, httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(mdb.Client())})
		closer = func(ctx context.Context) error { return mdb.Client().Disconnect(ctx) }

	default:
		return nil, nil, nil, fmt.Errorf("platformd: unsupported AUDIT_BACKEND %q", cfg.AuditBackend)
	}

	if !cfg.AuditAsync {
		return storage, checks, closer, nil
	}

	async := audit.NewAsyncStorage(storage, audit.AsyncOptions{}, func(err error) {
		log.Error("audit write failed", logger.Component("audit"), logger.Error(err))
	})
	closeBackend := closer
	closer = func(ctx context.Context) error {
		return errors.Join(async.Close(ctx), closeBackend(ctx))
	}
	return async, checks, closer, nil
}

func openTenantCache(ctx context.Context, cfg appConfig, log *slog.Logger) (registry.Cache, []httpserver.Check, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.TenantCache {
	case "memory":
		return registry.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL), nil, noop, nil
	case "none":
		return registry.NoCache{}, nil, noop, nil
	case "redis":
		var c redis.Config
		if err := config.Load(&c); err != nil {
			return nil, nil, nil, err
		}
		client, err := redis.Connect(ctx, c)
		if err != nil {
			return nil, nil, nil, err
		}
		log.InfoContext(ctx, "tenant cache backed by redis", logger.Component("registry"))
		checks := []httpserver.Check{{Name: "redis", Fn: redis.Healthcheck(client)}}
		return registry.NewRedisCache(redis.NewStorage(client, c.KeyPrefix), cfg.CacheTTL), checks,
			func(context.Context) error { return client.Close() }, nil
	}
	return nil, nil, nil, fmt.Errorf("platformd: unsupported TENANT_CACHE %q", cfg.TenantCache)
}

func requestIDAttr(ctx context.Context) (slog.Attr, bool) {
	if id := middleware.GetReqID(ctx); id != "" {
		return slog.String("request_id", id), true
	}
	return slog.Attr{}, false
}

func auditTenant(ctx context.Context) (string, bool) {
	if id, ok := tenant.Current(ctx).TenantID(); ok {
		return id.String(), true
	}
	return "", false
}

func auditActor(ctx context.Context) (string, bool) {
	if c, ok := jwt.ClaimsFromContext(ctx); ok && c.Subject != "" {
		return c.Subject, true
	}
	return "", false
}

func auditRequestID(ctx context.Context) (string, bool) {
	id := middleware.GetReqID(ctx)
	return id, id != ""
}
