package domain

import "errors"

// ErrSessionNotFound is returned when a session key cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionConflict is returned by versioned stores when the session changed since it was loaded.
var ErrSessionConflict = errors.New("session was modified concurrently")

// ErrCatalogNotFound is returned when a tenant has no catalog configured.
var ErrCatalogNotFound = errors.New("catalog not found")

// ErrInvalidSessionKey is returned when a key does not have the "<tenant>:<conversation>" shape.
var ErrInvalidSessionKey = errors.New("invalid session key")

// ValidationError reports missing request identifiers.
// The engine returns it as data inside a Result; Result.Err exposes it as an error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
