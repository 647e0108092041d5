package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/qualifica/internal/config"
	"github.com/aretw0/qualifica/pkg/adapters/file"
	"github.com/aretw0/qualifica/pkg/adapters/memory"
	"github.com/aretw0/qualifica/pkg/adapters/postgres"
	redisadapter "github.com/aretw0/qualifica/pkg/adapters/redis"
	"github.com/aretw0/qualifica/pkg/adapters/sqlite"
	"github.com/aretw0/qualifica/pkg/persistence/middleware"
	"github.com/aretw0/qualifica/pkg/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

// resources opens each backend at most once, so a store and a catalog source on the
// same database share one handle.
type resources struct {
	ctx    context.Context
	cfg    *config.Config
	dir    string
	logger *slog.Logger

	sqlite  *sqlite.DB
	pool    *pgxpool.Pool
	redis   *redisadapter.Store
	closers []func() error
}

func (r *resources) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
	r.closers = nil
}

func (r *resources) sqliteDB() (*sqlite.DB, error) {
	if r.sqlite != nil {
		return r.sqlite, nil
	}
	path := defaultPath(r.dir, r.cfg.SQLite.Path, ".qualifica", sqlite.DefaultFilename)
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("SQLite database opened", "path", path)
	r.sqlite = db
	r.closers = append(r.closers, db.Close)
	return db, nil
}

func (r *resources) postgresPool() (*pgxpool.Pool, error) {
	if r.pool != nil {
		return r.pool, nil
	}
	pg := r.cfg.Postgres
	if pg.Migrate {
		if err := postgres.Migrate(pg.URL); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(r.ctx, pg.URL, postgres.PoolConfig{
		MaxConns:          int32(pg.MaxConns),
		MinConns:          int32(pg.MinConns),
		MaxConnLifetime:   pg.MaxConnLifetime,
		MaxConnIdleTime:   pg.MaxConnIdleTime,
		HealthCheckPeriod: pg.HealthCheckPeriod,
	}, r.logger)
	if err != nil {
		return nil, err
	}
	r.pool = pool
	r.closers = append(r.closers, func() error {
		pool.Close()
		return nil
	})
	return pool, nil
}

func (r *resources) redisStore() *redisadapter.Store {
	if r.redis != nil {
		return r.redis
	}
	rc := r.cfg.Redis
	r.redis = redisadapter.New(rc.Addr, rc.Password, rc.DB,
		redisadapter.WithPrefix(rc.Prefix),
		redisadapter.WithTTL(rc.TTL),
	)
	r.closers = append(r.closers, r.redis.Close)
	return r.redis
}

func (r *resources) redisLocker() (*redisadapter.Locker, error) {
	store := r.redisStore()
	if err := store.Client().Ping(r.ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", r.cfg.Redis.Addr, err)
	}
	return redisadapter.NewLocker(store.Client(), r.cfg.Redis.Prefix), nil
}

// newSessionStore builds the configured store, wrapped by the pseudonymizer when a
// secret is set. backend is the unwrapped store in that case and nil otherwise.
func newSessionStore(r *resources) (store, backend ports.SessionStore, err error) {
	switch r.cfg.Store.Backend {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(defaultPath(r.dir, r.cfg.Store.Dir, ".qualifica", "sessions"))
	case config.StoreRedis:
		store = r.redisStore()
	case config.StoreSQLite:
		db, err := r.sqliteDB()
		if err != nil {
			return nil, nil, err
		}
		store = sqlite.NewStore(db)
	case config.StorePostgres:
		pool, err := r.postgresPool()
		if err != nil {
			return nil, nil, err
		}
		store = postgres.NewStore(pool)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", r.cfg.Store.Backend)
	}

	if r.cfg.PseudonymSecret != "" {
		return middleware.Chain(store, middleware.NewPseudonymizer([]byte(r.cfg.PseudonymSecret))), store, nil
	}
	return store, nil, nil
}

// newCatalogSource builds the configured source. SQL sources are also returned as importers.
func newCatalogSource(r *resources) (ports.CatalogSource, CatalogImporter, error) {
	switch r.cfg.Catalog.Source {
	case config.CatalogFile:
		return file.NewCatalogLoader(defaultPath(r.dir, r.cfg.Catalog.Dir, "catalogs")), nil, nil
	case config.CatalogSQLite:
		db, err := r.sqliteDB()
		if err != nil {
			return nil, nil, err
		}
		c := sqlite.NewCatalogs(db)
		return c, c, nil
	case config.CatalogPostgres:
		pool, err := r.postgresPool()
		if err != nil {
			return nil, nil, err
		}
		c := postgres.NewCatalogs(pool)
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", r.cfg.Catalog.Source)
	}
}
