package scoring

import (
	"cmp"
	"slices"
	"strings"

	"github.com/aretw0/qualifica/pkg/domain"
)

// rule pairs a bucket with its trigger phrases.
type rule struct {
	bucket   domain.Bucket
	triggers []string
}

// matches uses bidirectional substring containment: the answer may contain a trigger,
// or a trigger may contain the whole answer.
func (r rule) matches(answer string) bool {
	for _, t := range r.triggers {
		if strings.Contains(answer, t) || strings.Contains(t, answer) {
			return true
		}
	}
	return false
}

// rulesFor returns the question's rules in priority order. Hot wins over Warm, Warm over Cold.
func rulesFor(q domain.Question) []rule {
	return []rule{
		{bucket: domain.Hot, triggers: ParseTriggers(q.HotCriteria)},
		{bucket: domain.Warm, triggers: ParseTriggers(q.WarmCriteria)},
		{bucket: domain.Cold, triggers: ParseTriggers(q.ColdCriteria)},
	}
}

// Classify grades a free-text answer against a question's criteria.
// Unmatched and empty answers fall back to Warm.
func Classify(answer string, q domain.Question) domain.Bucket {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	if normalized == "" {
		return domain.Warm
	}

	for _, r := range rulesFor(q) {
		if len(r.triggers) == 0 {
			continue
		}
		if r.matches(normalized) {
			return r.bucket
		}
	}
	return domain.Warm
}

// ParseTriggers splits a "|" separated criteria field into lowercase phrases.
// Blank phrases are dropped.
func ParseTriggers(field string) []string {
	if field == "" {
		return nil
	}
	parts := strings.Split(field, "|")
	triggers := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			triggers = append(triggers, p)
		}
	}
	return triggers
}

// ClampWeight bounds a question weight to [domain.MinWeight, domain.MaxWeight].
func ClampWeight(weight int) int {
	return min(max(weight, domain.MinWeight), domain.MaxWeight)
}

// Points returns the score awarded for an answer in bucket b to a question of the given weight.
func Points(b domain.Bucket, weight int) int {
	return b.BasePoints() * ClampWeight(weight)
}

// ClassifyScore turns an accumulated score into the final classification.
//
// The comparison keeps the catalog naming: reaching Warm classifies as Hot,
// reaching Hot classifies as Warm.
func ClassifyScore(score int, t domain.Thresholds) domain.Bucket {
	switch {
	case score >= t.Warm:
		return domain.Hot
	case score >= t.Hot:
		return domain.Warm
	default:
		return domain.Cold
	}
}

// ThresholdsFor reads the thresholds from the first question of a sorted catalog.
// Later questions are ignored.
func ThresholdsFor(sorted domain.Catalog) domain.Thresholds {
	t := domain.DefaultThresholds()
	if len(sorted) == 0 {
		return t
	}
	if v := sorted[0].HotThreshold; v != nil {
		t.Hot = *v
	}
	if v := sorted[0].WarmThreshold; v != nil {
		t.Warm = *v
	}
	return t
}

// SortCatalog returns a copy of c stable-sorted by Order.
func SortCatalog(c domain.Catalog) domain.Catalog {
	sorted := slices.Clone(c)
	slices.SortStableFunc(sorted, func(a, b domain.Question) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return sorted
}
