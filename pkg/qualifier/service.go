package qualifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/qualifica/internal/logging"
	"github.com/aretw0/qualifica/internal/scoring"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/ports"
	"github.com/aretw0/qualifica/pkg/runner"
	"github.com/aretw0/qualifica/pkg/session"
	"github.com/avast/retry-go/v4"
)

// Service is the stateful front of the engine: it resolves the tenant's catalog and the
// stored session, advances, and persists the new session.
//
// Answers for the same conversation are serialized by the session.Manager lock (and its
// distributed locker, when configured). Service is safe for concurrent use.
type Service struct {
	engine   ports.Advancer
	sessions *session.Manager
	catalogs ports.CatalogSource
	retry    RetryConfig
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRetry replaces the default retry policy.
func WithRetry(cfg RetryConfig) Option {
	return func(s *Service) {
		s.retry = cfg
	}
}

// New creates a Service.
func New(engine ports.Advancer, sessions *session.Manager, catalogs ports.CatalogSource, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		sessions: sessions,
		catalogs: catalogs,
		retry:    DefaultRetryConfig(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer records one answer of a conversation and returns the engine result.
//
// A validation error result is returned with a nil error and nothing is stored. input
// rejected by runner.SanitizeInput and infrastructure failures are returned as errors.
func (s *Service) Answer(ctx context.Context, tenantID, conversationID, rawAnswer string) (domain.Result, error) {
	answer, err := runner.SanitizeInput(rawAnswer)
	if err != nil {
		return domain.Result{}, fmt.Errorf("answer rejected: %w", err)
	}

	req := domain.Request{
		TenantID:       tenantID,
		ConversationID: conversationID,
		RawAnswer:      answer,
	}

	// Bad identifiers never reach storage; the engine still reports them.
	if scoring.CheckIdentifiers(tenantID, conversationID) != nil {
		return s.engine.Advance(ctx, req), nil
	}

	tenantID = strings.TrimSpace(tenantID)
	conversationID = scoring.NormalizeConversationID(conversationID)
	req.TenantID = tenantID
	req.ConversationID = conversationID

	catalog, err := s.loadCatalog(ctx, tenantID)
	if err != nil {
		return domain.Result{}, err
	}
	req.Catalog = catalog

	key := domain.SessionKey(tenantID, conversationID)
	var result domain.Result
	// A failed attempt saved nothing, so the next one reloads and advances again.
	err = retry.Do(func() error {
		return s.sessions.Update(ctx, key, func(ctx context.Context, prior *domain.Session) (*domain.Session, error) {
			req.PriorSession = prior
			result = s.engine.Advance(ctx, req)
			if !result.Persistable() {
				return nil, nil
			}
			next := result.Session
			return &next, nil
		})
	}, s.retryOptions(ctx, "update session", key)...)
	if err != nil {
		return domain.Result{}, err
	}
	return result, nil
}

// Session returns the stored session of a conversation.
func (s *Service) Session(ctx context.Context, tenantID, conversationID string) (*domain.Session, error) {
	key, err := s.key(tenantID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.sessions.Load(ctx, key)
}

// Reset deletes the stored session, so the next answer starts from scratch.
func (s *Service) Reset(ctx context.Context, tenantID, conversationID string) error {
	key, err := s.key(tenantID, conversationID)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, key)
}

// Sessions lists every stored session key.
func (s *Service) Sessions(ctx context.Context) ([]string, error) {
	return s.sessions.List(ctx)
}

// Catalog returns the tenant's catalog through the same retry policy as Answer.
func (s *Service) Catalog(ctx context.Context, tenantID string) (domain.Catalog, error) {
	return s.loadCatalog(ctx, strings.TrimSpace(tenantID))
}

// key rejects the identifiers Answer would refuse, so lookups never cross tenants.
func (s *Service) key(tenantID, conversationID string) (string, error) {
	if verr := scoring.CheckIdentifiers(tenantID, conversationID); verr != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidSessionKey, verr.Message)
	}
	return domain.SessionKey(strings.TrimSpace(tenantID), scoring.NormalizeConversationID(conversationID)), nil
}

func (s *Service) loadCatalog(ctx context.Context, tenantID string) (domain.Catalog, error) {
	var catalog domain.Catalog
	err := retry.Do(func() error {
		var err error
		catalog, err = s.catalogs.Catalog(ctx, tenantID)
		return err
	}, s.retryOptions(ctx, "load catalog", tenantID)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog for tenant %q: %w", tenantID, err)
	}
	return catalog, nil
}

func (s *Service) retryOptions(ctx context.Context, op, subject string) []retry.Option {
	return append(s.retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("Retrying "+op,
				"subject", subject,
				"attempt", n+1,
				"err", err,
			)
		}),
	)
}
