package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreFile, cfg.Store.Backend)
	assert.Equal(t, CatalogFile, cfg.Catalog.Source)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, "qualifica:session:", cfg.Redis.Prefix)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.True(t, cfg.Postgres.Migrate)
	assert.Equal(t, uint(3), cfg.Retry.Attempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, 2*time.Second, cfg.Retry.MaxDelay)
}

func TestParse_NestedPrefixes(t *testing.T) {
	cfg, err := Parse(map[string]string{
		"QUALIFICA_STORE_BACKEND":      "redis",
		"QUALIFICA_REDIS_ADDR":         "cache:6380",
		"QUALIFICA_REDIS_DB":           "2",
		"QUALIFICA_REDIS_TTL":          "72h",
		"QUALIFICA_REDIS_LOCK":         "true",
		"QUALIFICA_CATALOG_SOURCE":     "postgres",
		"QUALIFICA_POSTGRES_URL":       "postgres://localhost/qualifica",
		"QUALIFICA_POSTGRES_MAX_CONNS": "20",
		"QUALIFICA_RETRY_ATTEMPTS":     "5",
		"QUALIFICA_PSEUDONYM_SECRET":   "0123456789abcdef",
		"QUALIFICA_METRICS":            "true",
	})
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 72*time.Hour, cfg.Redis.TTL)
	assert.True(t, cfg.Redis.Lock)
	assert.Equal(t, CatalogPostgres, cfg.Catalog.Source)
	assert.Equal(t, 20, cfg.Postgres.MaxConns)
	assert.Equal(t, uint(5), cfg.Retry.Attempts)
	assert.True(t, cfg.Metrics)
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		want    string
	}{
		{"UnknownStore", map[string]string{"QUALIFICA_STORE_BACKEND": "mongo"}, "STORE_BACKEND must be one of"},
		{"UnknownCatalog", map[string]string{"QUALIFICA_CATALOG_SOURCE": "s3"}, "CATALOG_SOURCE must be one of"},
		{"LogLevel", map[string]string{"QUALIFICA_LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"ShortSecret", map[string]string{"QUALIFICA_PSEUDONYM_SECRET": "short"}, "PSEUDONYM_SECRET must be at least 16 bytes"},
		{"PostgresURL", map[string]string{"QUALIFICA_STORE_BACKEND": "postgres"}, "POSTGRES_URL is required"},
		{"RetryAttempts", map[string]string{"QUALIFICA_RETRY_ATTEMPTS": "0"}, "RETRY_ATTEMPTS must be between 1 and 10"},
		{"RetryDelays", map[string]string{"QUALIFICA_RETRY_DELAY": "5s", "QUALIFICA_RETRY_MAX_DELAY": "1s"}, "RETRY_MAX_DELAY"},
		{"BadDuration", map[string]string{"QUALIFICA_CATALOG_CACHE_TTL": "forever"}, "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.environ)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	_, err := Parse(map[string]string{
		"QUALIFICA_STORE_BACKEND":  "mongo",
		"QUALIFICA_CATALOG_SOURCE": "s3",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
	assert.Contains(t, err.Error(), "CATALOG_SOURCE")
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("QUALIFICA_ADDR=:9999\nQUALIFICA_STORE_BACKEND=memory\n"), 0o644))

	// godotenv never overrides variables that are already set; t.Setenv restores them afterwards.
	t.Setenv("QUALIFICA_ADDR", "")
	os.Unsetenv("QUALIFICA_ADDR")
	t.Setenv("QUALIFICA_STORE_BACKEND", "")
	os.Unsetenv("QUALIFICA_STORE_BACKEND")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
