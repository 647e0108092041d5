package main

import (
	"github.com/aretw0/qualifica/internal/cli"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Lint, show and import question catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Report problems in catalog files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed error
		for _, path := range args {
			if err := cli.ValidateCatalogFile(path, cmd.OutOrStdout()); err != nil {
				failed = err
			}
		}
		return failed
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <tenant>",
	Short: "Print a tenant's catalog in presentation order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		asJSON, _ := cmd.Flags().GetBool("json")
		return cli.ShowCatalog(cmd.Context(), app, args[0], asJSON, cmd.OutOrStdout())
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <tenant> <file>",
	Short: "Replace a tenant's catalog in the SQLite or Postgres catalog source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.ImportCatalog(cmd.Context(), app, args[0], args[1], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogShowCmd.Flags().Bool("json", false, "Print JSON instead of YAML")
}
