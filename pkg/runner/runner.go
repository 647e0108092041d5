package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/qualifica/internal/logging"
	"github.com/aretw0/qualifica/pkg/domain"
)

// Commands recognized on the input line.
const (
	CommandQuit  = "/quit"
	CommandReset = "/reset"
)

// Runner handles the conversation loop using the provided IO strategy.
type Runner struct {
	Handler IOHandler
	Logger  *slog.Logger
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures a custom IOHandler.
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// New creates a Runner. Without options it talks to Stdin/Stdout in text mode.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run restarts the conversation and loops until the lead is classified, the input ends,
// or the user types /quit. It returns the last result shown.
//
// Blank lines are not sent: an empty answer would restart the conversation. Use /reset
// for that.
func (r *Runner) Run(ctx context.Context, a Answerer, tenantID, conversationID string) (domain.Result, error) {
	logger := r.Logger.With("tenant_id", tenantID, "conversation_id", conversationID)

	result, err := r.step(ctx, a, tenantID, conversationID, "")
	if err != nil {
		return result, err
	}

	for {
		switch result.Outcome.Kind {
		case domain.OutcomeCompleted:
			logger.Debug("Conversation completed",
				"classification", result.Outcome.Classification,
				"score_total", result.Outcome.ScoreTotal,
			)
			return result, nil
		case domain.OutcomeValidationError:
			return result, result.Err()
		}

		line, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("Input closed before completion", "step", result.Session.CurrentStep)
				return result, nil
			}
			return result, fmt.Errorf("input error: %w", err)
		}

		switch strings.TrimSpace(line) {
		case "":
			if err := r.Handler.SystemOutput(ctx, "Please type an answer ("+CommandReset+" restarts, "+CommandQuit+" leaves)."); err != nil {
				return result, err
			}
			continue
		case CommandQuit:
			return result, nil
		case CommandReset:
			if err := r.Handler.SystemOutput(ctx, "Conversation restarted."); err != nil {
				return result, err
			}
			line = ""
		}

		result, err = r.step(ctx, a, tenantID, conversationID, line)
		if err != nil {
			return result, err
		}
	}
}

func (r *Runner) step(ctx context.Context, a Answerer, tenantID, conversationID, answer string) (domain.Result, error) {
	result, err := a.Answer(ctx, tenantID, conversationID, answer)
	if err != nil {
		return result, err
	}
	if err := r.Handler.Output(ctx, result); err != nil {
		return result, fmt.Errorf("output error: %w", err)
	}
	return result, nil
}
