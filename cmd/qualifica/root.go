package main

import (
	"fmt"
	"os"

	"github.com/aretw0/qualifica/internal/cli"
	"github.com/aretw0/qualifica/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qualifica",
	Short: "Qualifica scores sales leads through a short questionnaire",
	Long: `Qualifica asks a tenant's catalog of questions one at a time, scores every answer
against the configured trigger phrases and classifies the lead as Hot, Warm or Cold.

Configuration is read from QUALIFICA_* environment variables and an optional .env file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Working directory holding catalogs/ and .qualifica/")
	rootCmd.PersistentFlags().String("env-file", "", "Env file to load (default .env when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides QUALIFICA_LOG_LEVEL)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logs and lifecycle tracing")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file, redis, sqlite or postgres (overrides QUALIFICA_STORE_BACKEND)")
	rootCmd.PersistentFlags().String("catalog", "", "Catalog source: file, sqlite or postgres (overrides QUALIFICA_CATALOG_SOURCE)")
}

// loadConfig reads the configuration and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	overridden := false
	for flag, field := range map[string]*string{
		"log-level": &cfg.LogLevel,
		"store":     &cfg.Store.Backend,
		"catalog":   &cfg.Catalog.Source,
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			*field = v
			overridden = true
		}
	}
	if overridden {
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// buildApp wires the application for a command without metrics.
func buildApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return buildAppWith(cmd, cfg, nil)
}

// buildAppWith wires the application from an already loaded configuration. reg may be nil.
func buildAppWith(cmd *cobra.Command, cfg *config.Config, reg prometheus.Registerer) (*cli.App, error) {
	dir, _ := cmd.Flags().GetString("dir")
	debug, _ := cmd.Flags().GetBool("debug")

	logger, err := cli.CreateLogger(cfg.LogLevel, debug)
	if err != nil {
		return nil, err
	}

	return cli.Build(cmd.Context(), cli.Options{
		Dir:      dir,
		Config:   cfg,
		Logger:   logger,
		Debug:    debug,
		Registry: reg,
	})
}
