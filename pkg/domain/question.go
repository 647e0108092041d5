package domain

const (
	// DefaultHotThreshold is the Cold/Warm boundary used when the first question does not set one.
	DefaultHotThreshold = 35
	// DefaultWarmThreshold is the Warm/Hot boundary used when the first question does not set one.
	DefaultWarmThreshold = 70

	// MinWeight and MaxWeight bound the multiplier applied to an answer's base points.
	MinWeight = 1
	MaxWeight = 3
)

// Question is a single entry of a tenant's qualification catalog.
type Question struct {
	// ID is an optional identifier assigned by the catalog source. It is never used for scoring.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Order defines the presentation sequence. Missing means 0.
	Order int `json:"order" yaml:"order"`

	// Text is the prompt shown to the end user.
	Text string `json:"text" yaml:"text" validate:"required"`

	// HotCriteria, WarmCriteria and ColdCriteria are "|" separated trigger phrases.
	HotCriteria  string `json:"hotCriteria,omitempty" yaml:"hotCriteria,omitempty" validate:"omitempty,triggers"`
	WarmCriteria string `json:"warmCriteria,omitempty" yaml:"warmCriteria,omitempty" validate:"omitempty,triggers"`
	ColdCriteria string `json:"coldCriteria,omitempty" yaml:"coldCriteria,omitempty" validate:"omitempty,triggers"`

	// Weight multiplies the answer's base points. It is clamped to [MinWeight, MaxWeight]; 0 means absent.
	Weight int `json:"weight,omitempty" yaml:"weight,omitempty" validate:"gte=0,lte=3"`

	// Thresholds are only read from the first question of the sorted catalog.
	HotThreshold  *int `json:"hotThreshold,omitempty" yaml:"hotThreshold,omitempty"`
	WarmThreshold *int `json:"warmThreshold,omitempty" yaml:"warmThreshold,omitempty"`
}

// HasCriteria reports whether at least one criteria field is set.
func (q Question) HasCriteria() bool {
	return q.HotCriteria != "" || q.WarmCriteria != "" || q.ColdCriteria != ""
}

// Catalog is the ordered list of questions configured for a tenant.
type Catalog []Question

// Thresholds are the score boundaries used for the final classification.
//
// The names follow the catalog fields: Hot gates the lower (Cold/Warm) boundary and
// Warm gates the upper (Warm/Hot) one.
type Thresholds struct {
	Hot  int `json:"hotThreshold"`
	Warm int `json:"warmThreshold"`
}

// DefaultThresholds returns the boundaries used when a catalog does not configure any.
func DefaultThresholds() Thresholds {
	return Thresholds{Hot: DefaultHotThreshold, Warm: DefaultWarmThreshold}
}

// IntPtr is a small helper for building questions with optional thresholds.
func IntPtr(v int) *int {
	return &v
}
