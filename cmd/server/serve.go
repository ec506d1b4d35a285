package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/retail-dashboard/api"
	"github.com/warp/retail-dashboard/config"
	"github.com/warp/retail-dashboard/dataset"
	"github.com/warp/retail-dashboard/demos"
	"github.com/warp/retail-dashboard/store/sqlite"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the dashboard API and the built-in viewer.

On SIGINT/SIGTERM the server stops accepting connections, waits up to 30s
for active requests, then closes the database.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	source, store, err := openSource()
	if err != nil {
		return err
	}
	// With a CSV source the store is still opened for POST /api/dataset/import.
	if store == nil && cfg.Store.Path != "" {
		if store, err = sqlite.New(cfg.Store.Path); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
	}
	if store != nil {
		defer store.Close()
	}

	cache := dataset.NewCache(source, logger.Named("dataset"))
	registry := demos.NewRegistry(cache, demos.WithLogger(logger.Named("demos")))
	handler := api.NewHandler(registry, cache, store, logger.Named("api"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing file is not fatal: requests report 503 until a reload works.
	if err := handler.Warm(ctx); err != nil {
		logger.Warn("initial dataset load failed", zap.Error(err))
	}

	if cfg.Watch.Enabled && cfg.Data.Source == config.SourceCSV {
		refresher, err := api.NewRefresher(cache, fileSource().Paths(), cfg.Watch.Debounce, logger.Named("refresher"))
		if err != nil {
			return err
		}
		refresher.Start(ctx)
		defer refresher.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)),
			zap.String("source", cfg.Data.Source))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
