package catalog_test

import (
	"testing"

	"github.com/aretw0/qualifica/pkg/catalog"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Clean(t *testing.T) {
	c := domain.Catalog{
		{Order: 0, Text: "Você é o decisor?", HotCriteria: "sim", ColdCriteria: "não", HotThreshold: domain.IntPtr(20), WarmThreshold: domain.IntPtr(40)},
		{Order: 1, Text: "Qual o orçamento?", WarmCriteria: "até 5 mil", Weight: 2},
	}
	assert.NoError(t, catalog.Validate(c))
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name    string
		catalog domain.Catalog
		want    string
	}{
		{
			name:    "missing text",
			catalog: domain.Catalog{{HotCriteria: "sim"}},
			want:    "Text is required",
		},
		{
			name:    "criteria without phrases",
			catalog: domain.Catalog{{Text: "q", HotCriteria: " | "}},
			want:    "HotCriteria has no trigger phrases",
		},
		{
			name:    "weight out of range",
			catalog: domain.Catalog{{Text: "q", HotCriteria: "sim", Weight: 9}},
			want:    "will be clamped",
		},
		{
			name:    "no criteria",
			catalog: domain.Catalog{{Text: "q"}},
			want:    "every answer scores Warm",
		},
		{
			name: "thresholds on later question",
			catalog: domain.Catalog{
				{Order: 5, Text: "late", HotCriteria: "sim", HotThreshold: domain.IntPtr(10)},
				{Order: 1, Text: "first", HotCriteria: "sim"},
			},
			want: "question 1 (order 5): thresholds are only read from the first question",
		},
		{
			name:    "inverted thresholds",
			catalog: domain.Catalog{{Text: "q", HotCriteria: "sim", HotThreshold: domain.IntPtr(80), WarmThreshold: domain.IntPtr(40)}},
			want:    "hotThreshold 80 is above warmThreshold 40",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := catalog.Validate(tt.catalog)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_EmptyCatalog(t *testing.T) {
	assert.NoError(t, catalog.Validate(nil))
}
