package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/qualifica/pkg/domain"
)

// Catalogs implements ports.CatalogSource using an in-memory map keyed by tenant.
type Catalogs struct {
	mu       sync.RWMutex
	catalogs map[string]domain.Catalog
}

// NewCatalogs creates a source with the given catalogs. The map is copied.
func NewCatalogs(catalogs map[string]domain.Catalog) *Catalogs {
	c := &Catalogs{catalogs: make(map[string]domain.Catalog, len(catalogs))}
	for tenant, catalog := range catalogs {
		c.catalogs[tenant] = slices.Clone(catalog)
	}
	return c
}

// Set replaces the catalog of a tenant.
func (c *Catalogs) Set(tenantID string, catalog domain.Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalogs[tenantID] = slices.Clone(catalog)
}

// Catalog returns a copy of the tenant's catalog.
func (c *Catalogs) Catalog(ctx context.Context, tenantID string) (domain.Catalog, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	catalog, ok := c.catalogs[tenantID]
	if !ok {
		return nil, domain.ErrCatalogNotFound
	}
	return slices.Clone(catalog), nil
}
