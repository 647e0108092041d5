// Package config loads runtime settings from QUALIFICA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/aretw0/qualifica/internal/logging"
	"github.com/aretw0/qualifica/pkg/qualifier"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "QUALIFICA_"

// DefaultEnvFile is loaded when present and no other file is requested.
const DefaultEnvFile = ".env"

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Catalog sources.
const (
	CatalogFile     = "file"
	CatalogSQLite   = "sqlite"
	CatalogPostgres = "postgres"
)

var (
	storeBackends  = []string{StoreMemory, StoreFile, StoreRedis, StoreSQLite, StorePostgres}
	catalogSources = []string{CatalogFile, CatalogSQLite, CatalogPostgres}
)

// Config holds the application configuration
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	Addr    string `env:"ADDR" envDefault:":8080"`
	Metrics bool   `env:"METRICS" envDefault:"false"`

	// PseudonymSecret enables HMAC pseudonymization of conversation ids when set.
	PseudonymSecret string `env:"PSEUDONYM_SECRET"`

	Store    StoreConfig           `envPrefix:"STORE_"`
	Redis    RedisConfig           `envPrefix:"REDIS_"`
	SQLite   SQLiteConfig          `envPrefix:"SQLITE_"`
	Postgres PostgresConfig        `envPrefix:"POSTGRES_"`
	Catalog  CatalogConfig         `envPrefix:"CATALOG_"`
	Retry    qualifier.RetryConfig `envPrefix:"RETRY_"`
}

// StoreConfig selects the session store.
type StoreConfig struct {
	Backend string `env:"BACKEND" envDefault:"file"`
	// Dir overrides <dir>/.qualifica/sessions for the file backend.
	Dir string `env:"DIR"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	Prefix   string        `env:"PREFIX" envDefault:"qualifica:session:"`
	TTL      time.Duration `env:"TTL" envDefault:"0s"`
	Lock     bool          `env:"LOCK" envDefault:"false"`
	LockTTL  time.Duration `env:"LOCK_TTL" envDefault:"30s"`
}

type SQLiteConfig struct {
	// Path is a file or directory; empty means <dir>/.qualifica/qualifica.db.
	Path string `env:"PATH"`
}

type PostgresConfig struct {
	URL               string        `env:"URL"`
	Migrate           bool          `env:"MIGRATE" envDefault:"true"`
	MaxConns          int           `env:"MAX_CONNS" envDefault:"10"`
	MinConns          int           `env:"MIN_CONNS" envDefault:"0"`
	MaxConnLifetime   time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime   time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30m"`
	HealthCheckPeriod time.Duration `env:"HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// CatalogConfig selects where tenant catalogs come from.
type CatalogConfig struct {
	Source string `env:"SOURCE" envDefault:"file"`
	// Dir overrides <dir>/catalogs for the file source.
	Dir      string        `env:"DIR"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// Load reads envFile (or DefaultEnvFile when it exists) into the process environment,
// then parses and validates the configuration. An explicit envFile must exist.
func Load(envFile string) (*Config, error) {
	switch {
	case envFile != "":
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	default:
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			if err := godotenv.Load(DefaultEnvFile); err != nil {
				return nil, fmt.Errorf("load env file %s: %w", DefaultEnvFile, err)
			}
		}
	}
	return Parse(nil)
}

// Parse builds the configuration from environ, or from the process environment when nil.
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if !slices.Contains(storeBackends, cfg.Store.Backend) {
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be one of %v, got %q", storeBackends, cfg.Store.Backend))
	}
	if !slices.Contains(catalogSources, cfg.Catalog.Source) {
		errs = append(errs, fmt.Errorf("CATALOG_SOURCE must be one of %v, got %q", catalogSources, cfg.Catalog.Source))
	}

	if cfg.PseudonymSecret != "" && len(cfg.PseudonymSecret) < 16 {
		errs = append(errs, fmt.Errorf("PSEUDONYM_SECRET must be at least 16 bytes, got %d", len(cfg.PseudonymSecret)))
	}

	if cfg.Store.Backend == StoreRedis || cfg.Redis.Lock {
		if cfg.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis store or lock"))
		}
		if cfg.Redis.TTL < 0 {
			errs = append(errs, fmt.Errorf("REDIS_TTL must not be negative, got %s", cfg.Redis.TTL))
		}
		if cfg.Redis.LockTTL <= 0 {
			errs = append(errs, fmt.Errorf("REDIS_LOCK_TTL must be positive, got %s", cfg.Redis.LockTTL))
		}
	}

	if cfg.Store.Backend == StorePostgres || cfg.Catalog.Source == CatalogPostgres {
		if cfg.Postgres.URL == "" {
			errs = append(errs, errors.New("POSTGRES_URL is required for the postgres store or catalog"))
		}
		if cfg.Postgres.MaxConns < 1 || cfg.Postgres.MaxConns > 200 {
			errs = append(errs, fmt.Errorf("POSTGRES_MAX_CONNS must be between 1 and 200, got %d", cfg.Postgres.MaxConns))
		}
		if cfg.Postgres.MinConns < 0 || cfg.Postgres.MinConns > cfg.Postgres.MaxConns {
			errs = append(errs, fmt.Errorf("POSTGRES_MIN_CONNS must be between 0 and POSTGRES_MAX_CONNS(%d), got %d", cfg.Postgres.MaxConns, cfg.Postgres.MinConns))
		}
	}

	if cfg.Retry.Attempts < 1 || cfg.Retry.Attempts > 10 {
		errs = append(errs, fmt.Errorf("RETRY_ATTEMPTS must be between 1 and 10, got %d", cfg.Retry.Attempts))
	}
	if cfg.Retry.MaxDelay < cfg.Retry.Delay {
		errs = append(errs, fmt.Errorf("RETRY_MAX_DELAY (%s) must not be below RETRY_DELAY (%s)", cfg.Retry.MaxDelay, cfg.Retry.Delay))
	}

	return errors.Join(errs...)
}
