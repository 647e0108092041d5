package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// LeadCatalogYAML is a three question catalog used across command tests.
// Answering "sim", "acima de 10 mil" and "este mês" scores 10 + 20 + 30 = 60 (Warm).
const LeadCatalogYAML = `questions:
  - order: 0
    text: Você é o decisor?
    hot_criteria: sim
    cold_criteria: não
  - order: 1
    text: Qual o orçamento?
    hot_criteria: acima de 10 mil
    warm_criteria: até 10 mil
    weight: 2
  - order: 2
    text: Quando pretende começar?
    hot_criteria: este mês
    cold_criteria: sem previsão
    weight: 3
`

// SetupWorkspace creates a temporary working directory with a catalogs/ folder holding
// one <tenant>.yaml file per entry. It returns the absolute path of the directory.
func SetupWorkspace(t *testing.T, catalogs map[string]string) string {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	catalogDir := filepath.Join(dir, "catalogs")
	require.NoError(t, os.MkdirAll(catalogDir, 0o755))
	for tenant, body := range catalogs {
		require.NoError(t, os.WriteFile(filepath.Join(catalogDir, tenant+".yaml"), []byte(body), 0o644))
	}
	return dir
}
