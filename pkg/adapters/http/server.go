package http

import (
	"context"
	"net/http"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Conversations is the stateful side of the API, implemented by qualifier.Service.
type Conversations interface {
	Answer(ctx context.Context, tenantID, conversationID, rawAnswer string) (domain.Result, error)
	Session(ctx context.Context, tenantID, conversationID string) (*domain.Session, error)
	Reset(ctx context.Context, tenantID, conversationID string) error
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Engine        ports.Advancer
	Conversations Conversations
	Streams       *StreamManager

	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithConversations enables the tenant/conversation routes.
func WithConversations(c Conversations) Option {
	return func(s *Server) {
		s.Conversations = c
	}
}

// WithMetrics exposes h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Advancer, opts ...Option) http.Handler {
	server := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
	}
	for _, opt := range opts {
		opt(server)
	}
	return server.Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", s.GetHealth)
	r.Get("/v1/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Post("/v1/advance", s.Advance)

	if s.Conversations != nil {
		r.Route("/v1/tenants/{tenantID}/conversations/{conversationID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.ResetSession)
			r.Post("/answers", s.PostAnswer)
			r.Get("/events", s.SubscribeEvents)
		})
	}

	return r
}
