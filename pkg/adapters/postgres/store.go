package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements ports.SessionStore on the lead_sessions table, with the same
// optimistic version check as the sqlite store.
type Store struct {
	pool     *pgxpool.Pool
	versions *persistence.Versions
}

// NewStore creates a session store on pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, versions: persistence.NewVersions(0)}
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
		err = s.pool.QueryRow(ctx, `
			UPDATE lead_sessions
			SET current_step = $1, score_total = $2, status = $3, version = version + 1, updated_at = now()
			WHERE session_key = $4 AND version = $5
			RETURNING version`,
			session.CurrentStep, session.ScoreTotal, string(session.Status), key, seen,
		).Scan(&version)
		if errors.Is(err, pgx.ErrNoRows) {
			s.versions.Forget(key)
			return fmt.Errorf("session %s changed since version %d: %w", key, seen, domain.ErrSessionConflict)
		}
	} else {
		err = s.pool.QueryRow(ctx, `
			INSERT INTO lead_sessions (session_key, current_step, score_total, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (session_key) DO UPDATE SET
				current_step = EXCLUDED.current_step,
				score_total  = EXCLUDED.score_total,
				status       = EXCLUDED.status,
				version      = lead_sessions.version + 1,
				updated_at   = now()
			RETURNING version`,
			key, session.CurrentStep, session.ScoreTotal, string(session.Status),
		).Scan(&version)
	}
	if err != nil {
		return fmt.Errorf("save session: %w", err)
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
	err := s.pool.QueryRow(ctx,
		"SELECT current_step, score_total, status, version FROM lead_sessions WHERE session_key = $1", key,
	).Scan(&session.CurrentStep, &session.ScoreTotal, &status, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.versions.Forget(key)
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	session.Status = domain.Status(status)
	s.versions.Remember(key, version)
	return &session, nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM lead_sessions WHERE session_key = $1", key); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.versions.Forget(key)
	return nil
}

// List returns all session keys, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT session_key FROM lead_sessions ORDER BY session_key")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan session keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}
