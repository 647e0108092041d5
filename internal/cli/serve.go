package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	qhttp "github.com/aretw0/qualifica/pkg/adapters/http"
	"github.com/aretw0/qualifica/pkg/adapters/mcp"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// Handler builds the HTTP API of the application. metrics may be nil.
func Handler(app *App, metrics http.Handler) http.Handler {
	opts := []qhttp.Option{qhttp.WithConversations(app.Service)}
	if metrics != nil {
		opts = append(opts, qhttp.WithMetrics(metrics))
	}
	return qhttp.NewHandler(app.Engine, opts...)
}

// Serve runs the HTTP API on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, app *App, addr string, metrics http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(app, metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("HTTP server listening", "address", addr, "metrics", metrics != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		app.Logger.Info("Shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// NewMCPServer exposes the engine, the Service and the catalogs over MCP.
func NewMCPServer(app *App) *mcp.Server {
	return mcp.NewServer(app.Engine,
		mcp.WithConversations(app.Service),
		mcp.WithCatalogs(app.Catalogs),
	)
}

// ServeMCP runs the MCP server on the chosen transport until ctx is done.
func ServeMCP(ctx context.Context, app *App, transport string, port int) error {
	s := NewMCPServer(app)
	switch transport {
	case TransportStdio:
		return s.ServeStdio(ctx)
	case TransportSSE:
		return s.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", transport, TransportStdio, TransportSSE)
	}
}
