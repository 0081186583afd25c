package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/designmart/payment-service/internal/config"
	"github.com/designmart/payment-service/internal/infrastructure/database"
	httpServer "github.com/designmart/payment-service/internal/infrastructure/http"
	"github.com/designmart/payment-service/internal/infrastructure/notify"
	"github.com/designmart/payment-service/internal/infrastructure/provider"
	"github.com/designmart/payment-service/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	// Build the provider adapter registry
	registry, err := provider.NewRegistry(&cfg.Service, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to build provider registry", zap.Error(err))
	}

	// Downstream notification delivery with bounded retries
	notifier := notify.NewHTTPNotifier(cfg.Service.Notify.URL, cfg.Service.Notify.Timeout, zapLogger)
	queue := notify.NewRetryQueue(notifier, cfg.Service.Notify.MaxAttempts, cfg.Service.Notify.Timeout, zapLogger)

	httpSrv := httpServer.NewServer(cfg, zapLogger, repos, registry, queue)

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Server shut down successfully")
}
