package ports

import (
	"context"

	"github.com/aretw0/qualifica/pkg/domain"
)

// CatalogSource loads the qualification questions of a tenant.
type CatalogSource interface {
	// Catalog returns the tenant's questions in source order; the engine sorts them.
	// Returns domain.ErrCatalogNotFound if the tenant has no catalog.
	Catalog(ctx context.Context, tenantID string) (domain.Catalog, error)
}
