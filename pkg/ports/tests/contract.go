package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/ports"
)

// CatalogSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.CatalogSource.
// The source must already hold want for tenantID.
func CatalogSourceContractTest(t *testing.T, source ports.CatalogSource, tenantID string, want domain.Catalog) {
	t.Helper()
	ctx := context.Background()

	t.Run("Catalog_Success", func(t *testing.T) {
		got, err := source.Catalog(ctx, tenantID)
		if err != nil {
			t.Fatalf("unexpected error loading catalog for %s: %v", tenantID, err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d questions, got %d", len(want), len(got))
		}

		// Sources may return rows in any order; compare by text.
		lookup := make(map[string]domain.Question, len(got))
		for _, q := range got {
			lookup[q.Text] = q
		}
		for _, w := range want {
			g, ok := lookup[w.Text]
			if !ok {
				t.Errorf("question %q missing from catalog", w.Text)
				continue
			}
			if g.Order != w.Order || g.Weight != w.Weight ||
				g.HotCriteria != w.HotCriteria || g.WarmCriteria != w.WarmCriteria || g.ColdCriteria != w.ColdCriteria {
				t.Errorf("question %q mismatch. got %+v, want %+v", w.Text, g, w)
			}
			if !equalThreshold(g.HotThreshold, w.HotThreshold) || !equalThreshold(g.WarmThreshold, w.WarmThreshold) {
				t.Errorf("question %q thresholds mismatch", w.Text)
			}
		}
	})

	t.Run("Catalog_NotFound", func(t *testing.T) {
		_, err := source.Catalog(ctx, "non-existent-tenant")
		if !errors.Is(err, domain.ErrCatalogNotFound) {
			t.Errorf("expected ErrCatalogNotFound, got %v", err)
		}
	})
}

func equalThreshold(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
