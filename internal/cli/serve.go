package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/statement-reconciler/internal/api"
	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/logging"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// APIConfig maps the api section of the config onto api.Config.
// A positive port flag wins over the config file.
func APIConfig(cfg *config.Config, flags *ServeFlags) api.Config {
	apiCfg := api.Config{
		Port:               cfg.API.Port,
		AllowedOrigins:     cfg.API.AllowedOrigins,
		RateLimitPerSecond: cfg.API.RateLimitPerSecond,
		RateBurst:          cfg.API.RateBurst,
		ReportCacheTTL:     cfg.API.ReportCacheTTL,
	}
	if flags != nil && flags.Port > 0 {
		apiCfg.Port = flags.Port
	}
	return apiCfg
}

// RunServe runs the API server.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	// Initialize storage
	store, err := storage.NewStorageWithLogger(cfg.Storage.DatabasePath, logging.NewLoggerWithSystem(loggingCfg, "storage"))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Wire the engine
	engine := reconcile.NewEngine(cfg.MatcherConfig(), logging.NewLoggerWithSystem(loggingCfg, "reconcile"))
	service := reconcile.NewService(engine, store, cfg.DuplicateConfig(), logger)

	// Create and start server
	server := api.NewServer(APIConfig(cfg, flags), service, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
