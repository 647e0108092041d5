package catalog

import (
	"fmt"
	"strings"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// numericKeys are dropped when blank so that "" or null means "absent" rather than 0.
var numericKeys = map[string]bool{
	"order":         true,
	"weight":        true,
	"hotthreshold":  true,
	"warmthreshold": true,
}

// Decode converts loosely typed rows into questions.
func Decode(rows []map[string]any) (domain.Catalog, error) {
	catalog := make(domain.Catalog, 0, len(rows))
	for i, row := range rows {
		q, err := DecodeQuestion(row)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		catalog = append(catalog, q)
	}
	return catalog, nil
}

// DecodeQuestion converts a single row into a question.
func DecodeQuestion(row map[string]any) (domain.Question, error) {
	var q domain.Question

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &q,
	})
	if err != nil {
		return q, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(canonical(row)); err != nil {
		return q, fmt.Errorf("failed to decode question: %w", err)
	}
	return q, nil
}

// canonical folds "hot_criteria" and "Hot-Criteria" into "hotcriteria", which mapstructure
// matches case-insensitively against the json tag.
func canonical(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		key := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(k))
		if numericKeys[key] && blank(v) {
			continue
		}
		out[key] = v
	}
	return out
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
