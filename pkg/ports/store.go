package ports

import (
	"context"

	"github.com/aretw0/qualifica/pkg/domain"
)

// SessionStore defines the interface for persisting conversation progress.
//
// A store only guarantees single-operation consistency. Read-modify-write atomicity for one
// conversation (load the prior session, advance, save) is the caller's job, usually through
// session.Manager.WithLock.
type SessionStore interface {
	// Save persists the session for a key built with domain.SessionKey.
	Save(ctx context.Context, key string, session *domain.Session) error

	// Load retrieves the session for a key.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, key string) (*domain.Session, error)

	// Delete removes the session. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
