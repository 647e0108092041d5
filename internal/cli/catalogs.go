package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/qualifica/internal/config"
	"github.com/aretw0/qualifica/internal/scoring"
	"github.com/aretw0/qualifica/pkg/adapters/file"
	"github.com/aretw0/qualifica/pkg/catalog"
	"github.com/aretw0/qualifica/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrCatalogProblems is returned by ValidateCatalogFile when the linter reports problems.
var ErrCatalogProblems = errors.New("catalog has problems")

// ValidateCatalogFile lints a catalog file and prints each problem.
func ValidateCatalogFile(path string, w io.Writer) error {
	c, err := file.LoadCatalogFile(path)
	if err != nil {
		return err
	}

	problems := catalogProblems(c)
	if len(problems) == 0 {
		fmt.Fprintf(w, "✓ %s: %d questions, no problems found.\n", path, len(c))
		return nil
	}
	for _, p := range problems {
		fmt.Fprintf(w, "✗ %s\n", p)
	}
	return fmt.Errorf("%w: %d in %s", ErrCatalogProblems, len(problems), path)
}

// ShowCatalog prints a tenant's catalog in presentation order, as YAML or JSON.
func ShowCatalog(ctx context.Context, app *App, tenantID string, asJSON bool, w io.Writer) error {
	c, err := app.Catalogs.Catalog(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return err
	}
	sorted := scoring.SortCatalog(c)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sorted)
	}

	t := scoring.ThresholdsFor(sorted)
	fmt.Fprintf(w, "# tenant: %s, hot >= %d, warm >= %d\n", tenantID, t.Warm, t.Hot)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sorted); err != nil {
		return err
	}
	return enc.Close()
}

// ImportCatalog replaces a tenant's catalog in a SQL catalog source with the contents of a file.
// Lint problems are printed but do not block the import.
func ImportCatalog(ctx context.Context, app *App, tenantID, path string, w io.Writer) error {
	if app.Importer == nil {
		return fmt.Errorf("catalog source %q does not support import; use %q or %q",
			app.Config.Catalog.Source, config.CatalogSQLite, config.CatalogPostgres)
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return errors.New("tenant is required")
	}

	c, err := file.LoadCatalogFile(path)
	if err != nil {
		return err
	}
	for _, p := range catalogProblems(c) {
		fmt.Fprintf(w, "warning: %s\n", p)
	}

	if err := app.Importer.Put(ctx, tenantID, c); err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}
	app.Catalogs.Invalidate(tenantID)

	fmt.Fprintf(w, "Imported %d questions for tenant '%s'.\n", len(c), tenantID)
	return nil
}

// catalogProblems unpacks the joined errors of catalog.Validate.
func catalogProblems(c domain.Catalog) []string {
	err := catalog.Validate(c)
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
