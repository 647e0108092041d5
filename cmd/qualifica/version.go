package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/qualifica"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of qualifica",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "qualifica version %s\n", strings.TrimSpace(qualifica.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
