package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dstanfill/parley/internal"
	aimock "github.com/dstanfill/parley/internal/ai/mock"
	"github.com/dstanfill/parley/internal/handler"
	"github.com/dstanfill/parley/internal/metrics"
	"github.com/dstanfill/parley/internal/middleware"
	"github.com/dstanfill/parley/internal/repository"
	"github.com/dstanfill/parley/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-retry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	// Retry only the startup connectivity check; requests are never retried
	pingCtx, cancel := context.WithTimeout(ctx, cfg.DBPingTimeout)
	defer cancel()
	backoff := retry.NewFibonacci(500 * time.Millisecond)
	if err := retry.Do(pingCtx, retry.WithMaxDuration(cfg.DBPingTimeout, backoff), func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Database not reachable yet, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize the stubbed answer producer
	responder := aimock.New(logger)

	// Initialize services
	chatService := service.NewChatService(db, repo, responder, logger)
	subscriptionService := service.NewSubscriptionService(db, repo, logger)
	settingsService := service.NewSettingsService(db, repo, logger)

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics endpoint (optionally protected with basic auth)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	chatHandler.RegisterRoutes(mux)
	subscriptionHandler.RegisterRoutes(mux)
	settingsHandler.RegisterRoutes(mux)

	// Middleware stack: metrics outermost so it observes logged requests too
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	root := middleware.Stack(metrics.Middleware, loggingMw.Handler)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
