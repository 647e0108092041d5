package qualifica

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/qualifica/internal/logging"
	"github.com/aretw0/qualifica/internal/scoring"
	"github.com/aretw0/qualifica/pkg/domain"
)

// Version is overridden at build time with -ldflags "-X github.com/aretw0/qualifica.Version=...".
var Version = "0.1.0-dev"

// Engine is the high-level entry point of the library.
// It wraps the pure scoring state machine with logging and lifecycle hooks.
type Engine struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.now == nil {
		eng.now = time.Now
	}
	return eng
}

// Advance processes one answer for a conversation.
//
// It never fails: missing identifiers are reported as a validation_error Outcome, which
// callers must not persist (see domain.Result.Persistable).
func (e *Engine) Advance(ctx context.Context, req domain.Request) domain.Result {
	ev := scoring.Evaluate(req)
	e.emit(ctx, ev)
	return ev.Result
}

// NormalizeConversationID strips the channel suffix ("@s.whatsapp.net") from a conversation id.
func NormalizeConversationID(id string) string {
	return scoring.NormalizeConversationID(id)
}

func (e *Engine) emit(ctx context.Context, ev scoring.Evaluation) {
	res := ev.Result
	base := func(t domain.EventType) domain.EventBase {
		return domain.EventBase{
			Timestamp:      e.now(),
			Type:           t,
			TenantID:       res.TenantID,
			ConversationID: res.ConversationID,
		}
	}
	log := e.logger.With("tenant_id", res.TenantID, "conversation_id", res.ConversationID)

	switch ev.Branch {
	case scoring.BranchInvalid:
		log.Warn("Request rejected", "reason", res.Outcome.Message)
		if e.hooks.OnValidationFailed != nil {
			e.hooks.OnValidationFailed(ctx, &domain.ValidationEvent{
				EventBase: base(domain.EventValidationFailed),
				Message:   res.Outcome.Message,
			})
		}
		return

	case scoring.BranchReset:
		log.Debug("Conversation reset", "outcome", res.Outcome.Kind)
		if e.hooks.OnReset != nil {
			e.hooks.OnReset(ctx, &domain.ResetEvent{
				EventBase:   base(domain.EventReset),
				CatalogSize: ev.CatalogSize,
			})
		}

	case scoring.BranchScored:
		log.Debug("Answer scored",
			"step", ev.Step,
			"bucket", ev.Bucket,
			"points", ev.Points,
			"score_total", res.Session.ScoreTotal,
		)
		if e.hooks.OnAnswerScored != nil {
			e.hooks.OnAnswerScored(ctx, &domain.AnswerEvent{
				EventBase:  base(domain.EventAnswerScored),
				Step:       ev.Step,
				QuestionID: ev.Question.ID,
				Bucket:     ev.Bucket,
				Points:     ev.Points,
				ScoreTotal: res.Session.ScoreTotal,
			})
		}
	}

	if res.Outcome.Kind == domain.OutcomeCompleted {
		log.Info("Lead classified",
			"classification", res.Outcome.Classification,
			"score_total", res.Outcome.ScoreTotal,
			"replay", ev.Branch == scoring.BranchReplay,
		)
		if e.hooks.OnCompleted != nil {
			e.hooks.OnCompleted(ctx, &domain.CompletionEvent{
				EventBase:      base(domain.EventCompleted),
				Classification: res.Outcome.Classification,
				ScoreTotal:     res.Outcome.ScoreTotal,
				Replay:         ev.Branch == scoring.BranchReplay,
			})
		}
	}
}
