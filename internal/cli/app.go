package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/qualifica"
	"github.com/aretw0/qualifica/internal/config"
	"github.com/aretw0/qualifica/internal/logging"
	"github.com/aretw0/qualifica/pkg/catalog"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/observability"
	"github.com/aretw0/qualifica/pkg/qualifier"
	"github.com/aretw0/qualifica/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Options configures Build.
type Options struct {
	// Dir is the working directory holding catalogs/ and .qualifica/.
	Dir    string
	Config *config.Config
	Logger *slog.Logger
	// Debug installs logging lifecycle hooks.
	Debug bool
	// Registry enables metrics when non-nil.
	Registry prometheus.Registerer
}

// CatalogImporter replaces a tenant's catalog. SQL catalog sources implement it.
type CatalogImporter interface {
	Put(ctx context.Context, tenantID string, catalog domain.Catalog) error
}

// App is the wired application shared by every command.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Engine   *qualifica.Engine
	Service  *qualifier.Service
	Sessions *session.Manager
	Backend  *session.Manager // unwrapped store, set only when keys are pseudonymized
	Catalogs *catalog.Cache
	Importer CatalogImporter
	Metrics  *observability.Metrics

	closers []func() error
}

// Build wires the engine, stores and catalog source selected by the configuration.
// The caller must Close the App.
func Build(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Parse(nil); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	res := &resources{ctx: ctx, cfg: cfg, dir: dir, logger: logger}
	app := &App{Config: cfg, Logger: logger}

	fail := func(err error) (*App, error) {
		res.close()
		return nil, err
	}

	store, backend, err := newSessionStore(res)
	if err != nil {
		return fail(fmt.Errorf("session store %q: %w", cfg.Store.Backend, err))
	}

	source, importer, err := newCatalogSource(res)
	if err != nil {
		return fail(fmt.Errorf("catalog source %q: %w", cfg.Catalog.Source, err))
	}
	app.Importer = importer
	app.Catalogs = catalog.NewCache(source, cfg.Catalog.CacheTTL, catalog.WithCacheLogger(logger))

	var hooks []domain.LifecycleHooks
	if opts.Registry != nil {
		app.Metrics = observability.NewMetrics(opts.Registry)
		hooks = append(hooks, app.Metrics.Hooks())
	}
	if opts.Debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}
	app.Engine = qualifica.New(
		qualifica.WithLogger(logger),
		qualifica.WithLifecycleHooks(observability.Combine(hooks...)),
	)

	managerOpts := []session.Option{session.WithLogger(logger)}
	if cfg.Redis.Lock {
		locker, err := res.redisLocker()
		if err != nil {
			return fail(fmt.Errorf("redis lock: %w", err))
		}
		managerOpts = append(managerOpts, session.WithLocker(locker), session.WithLockTTL(cfg.Redis.LockTTL))
	}
	app.Sessions = session.NewManager(store, managerOpts...)
	if backend != nil {
		app.Backend = session.NewManager(backend, managerOpts...)
	}

	app.Service = qualifier.New(app.Engine, app.Sessions, app.Catalogs,
		qualifier.WithLogger(logger),
		qualifier.WithRetry(cfg.Retry),
	)

	app.closers = res.closers
	logger.Debug("Application wired",
		"store", cfg.Store.Backend,
		"catalog", cfg.Catalog.Source,
		"pseudonymized", cfg.PseudonymSecret != "",
		"distributed_lock", cfg.Redis.Lock,
	)
	return app, nil
}

// Close releases database pools and clients in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// defaultPath resolves an optional configured path against the working directory.
func defaultPath(dir, configured string, fallback ...string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(append([]string{dir}, fallback...)...)
}
