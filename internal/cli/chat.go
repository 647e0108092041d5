package cli

import (
	"context"
	"io"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/runner"
)

// ChatOptions configures RunChat.
type ChatOptions struct {
	TenantID       string
	ConversationID string
	// JSON switches to JSON lines on both sides.
	JSON bool
	// Quiet suppresses system messages (text mode only).
	Quiet bool

	In       io.Reader
	Out      io.Writer
	Renderer runner.ContentRenderer
}

// RunChat drives an interactive conversation through the application's Service.
func RunChat(ctx context.Context, app *App, opts ChatOptions) error {
	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		text := runner.NewTextHandler(opts.In, opts.Out, runner.WithTextRenderer(opts.Renderer))
		defer text.Close()
		handler = text
	}
	quiet := opts.Quiet || opts.JSON

	if !quiet {
		printSystemMessage(opts.Out, "Qualifying conversation '%s' of tenant '%s'. Type %s to leave, %s to restart.",
			opts.ConversationID, opts.TenantID, runner.CommandQuit, runner.CommandReset)
	}

	r := runner.New(
		runner.WithHandler(handler),
		runner.WithLogger(app.Logger),
	)
	result, err := r.Run(ctx, app.Service, opts.TenantID, opts.ConversationID)

	if !quiet && result.Outcome.Kind != "" && result.Persistable() {
		s := result.Session
		if s.Status == domain.StatusDone {
			printSystemMessage(opts.Out, "Finished with score %d.", s.ScoreTotal)
		} else {
			printSystemMessage(opts.Out, "Stopped before question %d (score %d).", s.CurrentStep+1, s.ScoreTotal)
		}
	}

	return handleExecutionError(err)
}
