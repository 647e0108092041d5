package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/qualifica"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/persistence/middleware"
	"github.com/aretw0/qualifica/pkg/session"
)

// storeKey validates a "<tenant>:<conversation>" argument and normalizes the conversation id.
func storeKey(arg string) (string, error) {
	tenantID, conversationID, err := domain.ParseSessionKey(strings.TrimSpace(arg))
	if err != nil {
		return "", err
	}
	return domain.SessionKey(tenantID, qualifica.NormalizeConversationID(conversationID)), nil
}

// sessionsFor picks the manager that addresses key. Listed pseudonymized keys are
// already backend keys, so they skip the pseudonymizer.
func sessionsFor(app *App, key string) *session.Manager {
	if app.Backend != nil && middleware.IsPseudonymized(key) {
		return app.Backend
	}
	return app.Sessions
}

// ListSessions prints every stored session key, one per line.
func ListSessions(ctx context.Context, app *App, w io.Writer) error {
	keys, err := app.Sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}
	for _, key := range keys {
		fmt.Fprintln(w, key)
	}
	return nil
}

// InspectSession prints the stored session as indented JSON.
func InspectSession(ctx context.Context, app *App, arg string, w io.Writer) error {
	key, err := storeKey(arg)
	if err != nil {
		return err
	}
	s, err := sessionsFor(app, key).Load(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", key, err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// RemoveSessions deletes each key. Missing sessions are not an error.
func RemoveSessions(ctx context.Context, app *App, args []string, w io.Writer) error {
	var errs []error
	for _, arg := range args {
		key, err := storeKey(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := sessionsFor(app, key).Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %q: %w", key, err))
			continue
		}
		fmt.Fprintf(w, "Session '%s' removed.\n", key)
	}
	return errors.Join(errs...)
}
