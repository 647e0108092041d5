package main

import (
	"os"

	"github.com/aretw0/qualifica"
	"github.com/aretw0/qualifica/internal/cli"
	"github.com/aretw0/qualifica/internal/presentation/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <tenant> [conversation]",
	Short: "Answer a tenant's questionnaire interactively",
	Long: `Starts a conversation against the tenant's catalog, persisting progress in the
configured store. Without a conversation id a fresh one is generated.

Use --json for JSON lines on stdin/stdout ({"answer": "..."} in, results out).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		conversationID := "cli-" + uuid.NewString()
		if len(args) > 1 {
			conversationID = args[1]
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")

		opts := cli.ChatOptions{
			TenantID:       args[0],
			ConversationID: conversationID,
			JSON:           asJSON,
			Quiet:          quiet,
			In:             os.Stdin,
			Out:            os.Stdout,
		}
		if !asJSON {
			opts.Renderer = tui.RendererFor(os.Stdout)
			if !quiet && tui.IsTerminal(os.Stdout) {
				tui.PrintBanner(os.Stdout, qualifica.Version)
			}
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunChat(ctx, app, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("json", false, "Use JSON lines for input and output")
	chatCmd.Flags().BoolP("quiet", "q", false, "Hide system messages")
}
