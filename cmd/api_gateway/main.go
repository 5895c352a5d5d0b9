package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blueshark0/pas/internal/api_gateway"
	"github.com/blueshark0/pas/internal/api_gateway/service"
	"github.com/blueshark0/pas/internal/config"
	"github.com/blueshark0/pas/internal/data/mongo"
	"github.com/blueshark0/pas/internal/data/postgres"
	"github.com/blueshark0/pas/internal/ledger_engine/components"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/blueshark0/pas/internal/platform/messaging/producers"
	"github.com/blueshark0/pas/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context; migrations run before the pool opens
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Sweep requests are published for the scheduler binary
	sweepProducer, err := producers.NewSweepRequestProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize sweep request producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := components.Repositories{
		Accounts: postgres.NewAccountRepository(log, postgresDB),
		Entries:  postgres.NewEntryRepository(log, postgresDB),
		Presets:  postgres.NewPresetRepository(log, postgresDB),
		History:  postgres.NewHistoryRepository(log, postgresDB),
		Outbox:   postgres.NewOutboxRepository(log, postgresDB),
	}
	activityRepo := mongo.NewActivityRepository(log, mongoDB.Database())

	engine, err := components.CreateEngine(postgresDB, repos, log, cfg)
	if err != nil {
		log.Error("Failed to create ledger engine", "error", err)
		os.Exit(1)
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, api_gateway.Dependencies{
		Accounts: service.NewAccountService(log, repos.Accounts, activityRepo),
		Presets:  service.NewPresetService(log, repos.Presets, repos.Accounts, engine.Lifecycle, sweepProducer),
		Entries:  service.NewEntryService(engine.Entries, repos.Entries),
		History:  service.NewHistoryService(engine.History),
		Operator: engine.Operator,
		Executor: engine.Executor,
		Health: func(ctx context.Context) error {
			return postgresDB.Pool().Ping(ctx)
		},
	})
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Graceful shutdown sequence: stop taking requests before closing storage
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(context.Background()); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	cancelAppCtx()
	engine.Shutdown()

	if err = sweepProducer.Close(); err != nil {
		log.Error("Error closing sweep request producer", "error", err)
	}

	postgresDB.Close()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
