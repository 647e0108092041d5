package ports

import (
	"context"

	"github.com/aretw0/qualifica/pkg/domain"
)

// Advancer is the engine contract used by adapters.
// Implementations must be pure with respect to storage: the returned Session is persisted by the caller.
type Advancer interface {
	Advance(ctx context.Context, req domain.Request) domain.Result
}
