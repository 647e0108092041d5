/*
Package runner drives a qualification conversation from a terminal or a pipe.

The Runner starts the conversation with an empty answer, shows each outcome through an
IOHandler and feeds the user's lines back until the lead is classified. Two handlers
ship with the package: TextHandler for people and JSONHandler for scripts.

SanitizeInput is shared by every transport and applied before the engine sees an answer.

# Usage

	r := runner.New(
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout, runner.WithTextRenderer(render))),
		runner.WithLogger(logger),
	)
	result, err := r.Run(ctx, service, "acme", "5511999999999")
*/
package runner
