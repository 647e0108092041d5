package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/qualifica/pkg/domain"
)

// Combine returns hooks that call every non-nil hook of each set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks

	for _, set := range sets {
		if set.OnReset != nil {
			prev, next := combined.OnReset, set.OnReset
			combined.OnReset = func(ctx context.Context, e *domain.ResetEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if set.OnAnswerScored != nil {
			prev, next := combined.OnAnswerScored, set.OnAnswerScored
			combined.OnAnswerScored = func(ctx context.Context, e *domain.AnswerEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if set.OnCompleted != nil {
			prev, next := combined.OnCompleted, set.OnCompleted
			combined.OnCompleted = func(ctx context.Context, e *domain.CompletionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if set.OnValidationFailed != nil {
			prev, next := combined.OnValidationFailed, set.OnValidationFailed
			combined.OnValidationFailed = func(ctx context.Context, e *domain.ValidationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return combined
}

// LoggingHooks writes every lifecycle event to logger at Info level, for audit trails.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReset: func(ctx context.Context, e *domain.ResetEvent) {
			logger.InfoContext(ctx, "lead_reset",
				"tenant_id", e.TenantID,
				"conversation_id", e.ConversationID,
				"catalog_size", e.CatalogSize,
			)
		},
		OnAnswerScored: func(ctx context.Context, e *domain.AnswerEvent) {
			logger.InfoContext(ctx, "lead_answer_scored",
				"tenant_id", e.TenantID,
				"conversation_id", e.ConversationID,
				"step", e.Step,
				"bucket", e.Bucket,
				"points", e.Points,
				"score_total", e.ScoreTotal,
			)
		},
		OnCompleted: func(ctx context.Context, e *domain.CompletionEvent) {
			logger.InfoContext(ctx, "lead_completed",
				"tenant_id", e.TenantID,
				"conversation_id", e.ConversationID,
				"classification", e.Classification,
				"score_total", e.ScoreTotal,
				"replay", e.Replay,
			)
		},
		OnValidationFailed: func(ctx context.Context, e *domain.ValidationEvent) {
			logger.WarnContext(ctx, "lead_validation_failed",
				"tenant_id", e.TenantID,
				"conversation_id", e.ConversationID,
				"message", e.Message,
			)
		},
	}
}
