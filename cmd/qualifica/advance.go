package main

import (
	"io"
	"os"

	"github.com/aretw0/qualifica"
	"github.com/aretw0/qualifica/internal/cli"
	"github.com/spf13/cobra"
)

var advanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Run one stateless engine step",
	Long: `Reads a request as JSON ({"tenantId", "conversationId", "rawAnswer", "catalog",
"priorSession"}) from --file or stdin and prints the result. Nothing is stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = os.Stdin
		if path, _ := cmd.Flags().GetString("file"); path != "" && path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		debug, _ := cmd.Flags().GetBool("debug")
		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = "warn"
		}
		logger, err := cli.CreateLogger(level, debug)
		if err != nil {
			return err
		}

		engine := qualifica.New(qualifica.WithLogger(logger))
		return cli.RunAdvance(cmd.Context(), engine, in, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(advanceCmd)
	advanceCmd.Flags().StringP("file", "f", "", "Request file (default stdin)")
}
