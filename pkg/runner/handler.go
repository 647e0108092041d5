package runner

import (
	"context"

	"github.com/aretw0/qualifica/pkg/domain"
)

// Answerer feeds one answer into a stored conversation. qualifier.Service implements it.
type Answerer interface {
	Answer(ctx context.Context, tenantID, conversationID, rawAnswer string) (domain.Result, error)
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents a result to the user.
	Output(ctx context.Context, result domain.Result) error

	// Input reads the next answer. io.EOF ends the conversation.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (e.g. "conversation restarted").
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is printed (e.g. glamour in a TTY).
type ContentRenderer func(string) (string, error)
