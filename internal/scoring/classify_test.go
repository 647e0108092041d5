package scoring_test

import (
	"testing"

	"github.com/aretw0/qualifica/internal/scoring"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	q := domain.Question{
		HotCriteria:  "sim | Claro |",
		WarmCriteria: "talvez|depende",
		ColdCriteria: "não|nunca",
	}

	tests := []struct {
		name   string
		answer string
		want   domain.Bucket
	}{
		{"answer contains hot trigger", "Sim, com certeza", domain.Hot},
		{"trigger contains abbreviated answer", "cla", domain.Hot},
		{"warm trigger", "  TALVEZ semana que vem ", domain.Warm},
		{"cold trigger", "nunca mais", domain.Cold},
		{"no match falls back to warm", "vou pensar", domain.Warm},
		{"blank answer is warm", "   ", domain.Warm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.Classify(tt.answer, q))
		})
	}
}

func TestClassify_HotWinsOverWarm(t *testing.T) {
	q := domain.Question{
		HotCriteria:  "sim",
		WarmCriteria: "sim, talvez",
	}
	// "sim" is contained in both trigger sets.
	assert.Equal(t, domain.Hot, scoring.Classify("sim", q))
}

func TestClassify_EmptyTriggerSetsAreSkipped(t *testing.T) {
	t.Run("all empty", func(t *testing.T) {
		assert.Equal(t, domain.Warm, scoring.Classify("qualquer coisa", domain.Question{}))
	})

	t.Run("separators only", func(t *testing.T) {
		q := domain.Question{HotCriteria: "||", ColdCriteria: "não"}
		assert.Equal(t, domain.Cold, scoring.Classify("não", q))
		assert.Equal(t, domain.Warm, scoring.Classify("sim", q))
	})
}

func TestParseTriggers(t *testing.T) {
	assert.Equal(t, []string{"sim", "claro"}, scoring.ParseTriggers(" SIM|| claro |"))
	assert.Empty(t, scoring.ParseTriggers(""))
	assert.Empty(t, scoring.ParseTriggers(" | "))
}

func TestPoints_WeightClamping(t *testing.T) {
	assert.Equal(t, scoring.Points(domain.Hot, 3), scoring.Points(domain.Hot, 5))
	assert.Equal(t, scoring.Points(domain.Hot, 1), scoring.Points(domain.Hot, 0))
	assert.Equal(t, scoring.Points(domain.Hot, 1), scoring.Points(domain.Hot, -4))

	assert.Equal(t, 30, scoring.Points(domain.Hot, 5))
	assert.Equal(t, 10, scoring.Points(domain.Warm, 2))
	assert.Equal(t, 1, scoring.Points(domain.Cold, 0))
}

func TestClassifyScore_Boundaries(t *testing.T) {
	th := domain.Thresholds{Hot: 35, Warm: 70}

	assert.Equal(t, domain.Hot, scoring.ClassifyScore(70, th))
	assert.Equal(t, domain.Hot, scoring.ClassifyScore(120, th))
	assert.Equal(t, domain.Warm, scoring.ClassifyScore(69, th))
	assert.Equal(t, domain.Warm, scoring.ClassifyScore(35, th))
	assert.Equal(t, domain.Cold, scoring.ClassifyScore(34, th))
	assert.Equal(t, domain.Cold, scoring.ClassifyScore(0, th))
}

func TestThresholdsFor(t *testing.T) {
	t.Run("defaults for empty catalog", func(t *testing.T) {
		assert.Equal(t, domain.DefaultThresholds(), scoring.ThresholdsFor(nil))
	})

	t.Run("only first question counts", func(t *testing.T) {
		c := domain.Catalog{
			{HotThreshold: domain.IntPtr(10)},
			{HotThreshold: domain.IntPtr(1), WarmThreshold: domain.IntPtr(2)},
		}
		assert.Equal(t, domain.Thresholds{Hot: 10, Warm: domain.DefaultWarmThreshold}, scoring.ThresholdsFor(c))
	})
}

func TestSortCatalog_StableAndCopy(t *testing.T) {
	c := domain.Catalog{
		{Text: "b", Order: 1},
		{Text: "a1"},
		{Text: "c", Order: 2},
		{Text: "a2"},
	}

	sorted := scoring.SortCatalog(c)

	var texts []string
	for _, q := range sorted {
		texts = append(texts, q.Text)
	}
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, texts)
	assert.Equal(t, "b", c[0].Text, "input catalog must not be reordered")
}
