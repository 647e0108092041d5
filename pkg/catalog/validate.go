package catalog

import (
	"errors"
	"fmt"

	"github.com/aretw0/qualifica/internal/scoring"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// validate is the validator instance for catalog questions.
// Initialized in init() with the custom "triggers" rule.
var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("triggers", validateTriggers); err != nil {
		panic(fmt.Sprintf("failed to register triggers validator: %v", err))
	}
}

// validateTriggers rejects criteria fields that are set but hold no phrase, like "||".
func validateTriggers(fl validator.FieldLevel) bool {
	return len(scoring.ParseTriggers(fl.Field().String())) > 0
}

// Validate reports catalog problems an author should fix. Questions are numbered in sorted
// order. A nil error means the catalog is clean; scoring works either way.
func Validate(c domain.Catalog) error {
	sorted := scoring.SortCatalog(c)

	var problems []error
	for i, q := range sorted {
		label := fmt.Sprintf("question %d (order %d)", i, q.Order)

		if err := validate.Struct(q); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				return fmt.Errorf("%s: %w", label, err)
			}
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Errorf("%s: %s", label, describe(fe)))
			}
		}

		if !q.HasCriteria() {
			problems = append(problems, fmt.Errorf("%s: no criteria configured, every answer scores Warm", label))
		}

		if i > 0 && (q.HotThreshold != nil || q.WarmThreshold != nil) {
			problems = append(problems, fmt.Errorf("%s: thresholds are only read from the first question", label))
		}
	}

	if t := scoring.ThresholdsFor(sorted); t.Hot > t.Warm {
		problems = append(problems, fmt.Errorf("hotThreshold %d is above warmThreshold %d; no score can classify as Warm", t.Hot, t.Warm))
	}

	return errors.Join(problems...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "triggers":
		return fmt.Sprintf("%s has no trigger phrases", fe.Field())
	case "gte", "lte":
		return fmt.Sprintf("%s %v is outside 0..%d and will be clamped", fe.Field(), fe.Value(), domain.MaxWeight)
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}
