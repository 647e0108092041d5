package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/qualifica/pkg/adapters/memory"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/ports"
	"github.com/aretw0/qualifica/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryCatalogs_Contract(t *testing.T) {
	catalog := domain.Catalog{
		{Order: 1, Text: "Qual o seu orçamento?", HotCriteria: "acima de 10 mil", Weight: 3},
		{Order: 0, Text: "Você é o decisor?", HotCriteria: "sim", ColdCriteria: "não", HotThreshold: domain.IntPtr(20)},
	}
	source := memory.NewCatalogs(map[string]domain.Catalog{"acme": catalog})
	tests.CatalogSourceContractTest(t, source, "acme", catalog)
}

func TestMemoryCatalogs_ReturnsCopies(t *testing.T) {
	source := memory.NewCatalogs(nil)
	source.Set("acme", domain.Catalog{{Text: "original"}})

	got, err := source.Catalog(context.Background(), "acme")
	require.NoError(t, err)
	got[0].Text = "mutated"

	again, err := source.Catalog(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Text)
}
