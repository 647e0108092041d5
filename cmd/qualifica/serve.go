package main

import (
	"net/http"

	"github.com/aretw0/qualifica/internal/cli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API: the stateless POST /v1/advance endpoint plus the stateful
conversation routes under /v1/tenants/{tenant}/conversations/{conversation}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Addr
		}
		withMetrics := cfg.Metrics
		if cmd.Flags().Changed("metrics") {
			withMetrics, _ = cmd.Flags().GetBool("metrics")
		}

		var reg prometheus.Registerer
		var metrics http.Handler
		if withMetrics {
			r := prometheus.NewRegistry()
			r.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			reg = r
			metrics = promhttp.HandlerFor(r, promhttp.HandlerOpts{Registry: r})
		}

		app, err := buildAppWith(cmd, cfg, reg)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := cli.Serve(ctx, app, addr, metrics); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			app.Logger.Info("Server stopped", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides QUALIFICA_ADDR)")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics (overrides QUALIFICA_METRICS)")
}
