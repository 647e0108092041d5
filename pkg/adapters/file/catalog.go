package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/qualifica/pkg/catalog"
	"github.com/aretw0/qualifica/pkg/domain"
	"gopkg.in/yaml.v3"
)

// catalogExts are tried in order when resolving a tenant's catalog file.
var catalogExts = []string{".yaml", ".yml", ".json"}

// CatalogLoader implements ports.CatalogSource over a directory holding one
// <tenant>.yaml (or .yml, .json) file per tenant.
type CatalogLoader struct {
	Dir string
}

// NewCatalogLoader creates a loader rooted at dir.
// If dir is empty, it defaults to ".qualifica/catalogs".
func NewCatalogLoader(dir string) *CatalogLoader {
	if dir == "" {
		dir = filepath.Join(".qualifica", "catalogs")
	}
	return &CatalogLoader{Dir: dir}
}

// Catalog loads the tenant's catalog file.
func (l *CatalogLoader) Catalog(ctx context.Context, tenantID string) (domain.Catalog, error) {
	if tenantID == "" || tenantID != filepath.Base(tenantID) || strings.HasPrefix(tenantID, ".") {
		return nil, fmt.Errorf("tenant %q: %w", tenantID, domain.ErrCatalogNotFound)
	}

	for _, ext := range catalogExts {
		path := filepath.Join(l.Dir, tenantID+ext)
		c, err := LoadCatalogFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("tenant %q: %w", tenantID, domain.ErrCatalogNotFound)
}

// LoadCatalogFile reads a YAML or JSON catalog. The document is either a list of questions
// or a mapping with a "questions" list.
func LoadCatalogFile(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	rows, err := questionRows(doc)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	c, err := catalog.Decode(rows)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func questionRows(doc any) ([]map[string]any, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return questionRows(v["questions"])
	case []any:
		rows := make([]map[string]any, 0, len(v))
		for i, item := range v {
			row, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("question %d is not a mapping", i)
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("expected a list of questions, got %T", doc)
	}
}
