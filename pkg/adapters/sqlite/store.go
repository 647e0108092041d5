package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/persistence"
)

// Store implements ports.SessionStore on the sessions table.
//
// A Save that follows a Load of the same key is conditional on the row version read by
// that Load; if another writer got there first it fails with domain.ErrSessionConflict.
type Store struct {
	db       *sql.DB
	versions *persistence.Versions
}

// NewStore creates a session store on d.
func NewStore(d *DB) *Store {
	return &Store{db: d.db, versions: persistence.NewVersions(0)}
}

// Save upserts the session.
func (s *Store) Save(ctx context.Context, key string, session *domain.Session) error {
	if key == "" {
		return fmt.Errorf("session key cannot be empty")
	}

	var (
		version int64
		err     error
	)
	if seen, ok := s.versions.Seen(key); ok {
		err = s.db.QueryRowContext(ctx, `
			UPDATE sessions
			SET current_step = ?, score_total = ?, status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
			WHERE session_key = ? AND version = ?
			RETURNING version`,
			session.CurrentStep, session.ScoreTotal, string(session.Status), key, seen,
		).Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			s.versions.Forget(key)
			return fmt.Errorf("session %s changed since version %d: %w", key, seen, domain.ErrSessionConflict)
		}
	} else {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO sessions (session_key, current_step, score_total, status)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (session_key) DO UPDATE SET
				current_step = excluded.current_step,
				score_total  = excluded.score_total,
				status       = excluded.status,
				version      = sessions.version + 1,
				updated_at   = CURRENT_TIMESTAMP
			RETURNING version`,
			key, session.CurrentStep, session.ScoreTotal, string(session.Status),
		).Scan(&version)
	}
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	s.versions.Remember(key, version)
	return nil
}

// Load reads the session and remembers its version.
func (s *Store) Load(ctx context.Context, key string) (*domain.Session, error) {
	var (
		session domain.Session
		status  string
		version int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT current_step, score_total, status, version FROM sessions WHERE session_key = ?", key,
	).Scan(&session.CurrentStep, &session.ScoreTotal, &status, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.versions.Forget(key)
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	session.Status = domain.Status(status)
	s.versions.Remember(key, version)
	return &session, nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_key = ?", key); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	s.versions.Forget(key)
	return nil
}

// List returns all session keys, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT session_key FROM sessions ORDER BY session_key")
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning session key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
