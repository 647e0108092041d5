package qualifier

import (
	"errors"
	"time"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 100 * time.Millisecond
	defaultMaxDelay = 2 * time.Second
)

// RetryConfig bounds retries of catalog loads and session saves.
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"100ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

// DefaultRetryConfig returns the retry policy used when none is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// ToRetryOptions converts the config into retry-go options. Errors that another attempt
// cannot fix are not retried.
func (rc RetryConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(max(rc.Attempts, 1)),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	}
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrCatalogNotFound),
		errors.Is(err, domain.ErrSessionConflict),
		errors.Is(err, domain.ErrInvalidSessionKey):
		return false
	default:
		return true
	}
}
