package catalog

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/qualifica/internal/logging"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/ports"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a tenant's catalog is served without reloading.
const DefaultCacheTTL = 5 * time.Minute

// Cache implements ports.CatalogSource on top of another source.
// Misses for the same tenant are collapsed into one load; errors are never cached.
type Cache struct {
	source ports.CatalogSource
	items  *gocache.Cache
	group  singleflight.Group
	logger *slog.Logger
}

// CacheOption configures the Cache.
type CacheOption func(*Cache)

// WithCacheLogger configures a logger for cache misses.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache wraps source. A ttl <= 0 keeps entries until Invalidate is called.
func NewCache(source ports.CatalogSource, ttl time.Duration, opts ...CacheOption) *Cache {
	expiration, cleanup := ttl, 2*ttl
	if ttl <= 0 {
		expiration, cleanup = gocache.NoExpiration, 0
	}

	c := &Cache{
		source: source,
		items:  gocache.New(expiration, cleanup),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the cached catalog or loads it from the wrapped source.
func (c *Cache) Catalog(ctx context.Context, tenantID string) (domain.Catalog, error) {
	if v, ok := c.items.Get(tenantID); ok {
		return slices.Clone(v.(domain.Catalog)), nil
	}

	v, err, shared := c.group.Do(tenantID, func() (any, error) {
		catalog, err := c.source.Catalog(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		c.items.SetDefault(tenantID, catalog)
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Catalog loaded", "tenant_id", tenantID, "shared", shared)
	return slices.Clone(v.(domain.Catalog)), nil
}

// Invalidate drops the cached catalog of a tenant.
func (c *Cache) Invalidate(tenantID string) {
	c.items.Delete(tenantID)
}

// Flush drops every cached catalog.
func (c *Cache) Flush() {
	c.items.Flush()
}
