package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/shuv1824/weatherwise/internal/config"
	"github.com/shuv1824/weatherwise/internal/handler"
	"github.com/shuv1824/weatherwise/internal/services/units"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server (default command)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)

	// Make serve the default command.
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, cache := newServices(cfg)

	unit, err := units.ParseUnit(cfg.Dashboard.Unit)
	if err != nil {
		return err
	}
	dashboardHandler := handler.NewDashboardHandler(svc, unit, cfg.Dashboard.PageSize, cfg.API.Timeout+5*time.Second)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           wrap(handler.NewRouter(dashboardHandler), cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting api server",
		"addr", cfg.ListenAddr,
		"unit", unit,
		"cache_ttl", cfg.Cache.TTL,
		"default_location", cfg.Dashboard.DefaultLocation != nil,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cache.Run(gctx) })
	g.Go(func() error { return startServer(gctx, server) })

	if err := g.Wait(); err != nil {
		return err
	}

	hits, misses := cache.Stats()
	slog.Info("server stopped gracefully", "cache_hits", hits, "cache_misses", misses)
	return nil
}

// wrap applies recovery, CORS and access logging around the router.
func wrap(r http.Handler, cfg *config.Config) http.Handler {
	h := r

	// Recovery (catches panics)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)

	// CORS
	h = handlers.CORS(
		handlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet}),
		handlers.ExposedHeaders([]string{"X-Request-ID", "X-Response-Time"}),
	)(h)

	// Logging
	h = handlers.LoggingHandler(os.Stdout, h)

	return h
}

// startServer serves until ctx is done, then shuts down gracefully.
func startServer(ctx context.Context, server *http.Server) error {
	serverError := make(chan error, 1)

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case err := <-serverError:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
