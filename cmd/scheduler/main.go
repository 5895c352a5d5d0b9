package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blueshark0/pas/internal/config"
	"github.com/blueshark0/pas/internal/data/mongo"
	"github.com/blueshark0/pas/internal/data/postgres"
	"github.com/blueshark0/pas/internal/ledger_engine/components"
	"github.com/blueshark0/pas/internal/ledger_engine/consumer"
	"github.com/blueshark0/pas/internal/ledger_engine/outbox_poller"
	"github.com/blueshark0/pas/internal/ledger_engine/scheduler"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/blueshark0/pas/internal/platform/messaging/consumers"
	"github.com/blueshark0/pas/internal/platform/messaging/producers"
	"github.com/blueshark0/pas/internal/platform/persistence"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Cancelled on SIGINT, SIGTERM or SIGQUIT
	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	// Initialize configuration
	cfg, err := config.LoadConfig("scheduler")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting scheduler",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
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
	// Replayed outbox messages must land on the same activity document
	if err := mongoDB.EnsureUniqueIndex(appCtx, mongo.ActivityCollectionName, "event_id"); err != nil {
		log.Error("Failed to ensure activity index", "error", err)
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

	// Initialize Kafka consumer and DLQ producer. The DLQ producer is a no-op when no topic is configured.
	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	sweepHandler := consumer.NewSweepRequestHandler(
		log.With("component", "sweep_request_handler"),
		engine.Executor,
		dlqProducer,
		cfg.Ledger.Location(),
	)
	sweeper := scheduler.NewSweeper(&cfg.Ledger, engine.Executor, engine.Entries, log.With("component", "sweeper"))

	activityPublisher := outbox_poller.NewActivityPublisher(repos.Outbox, activityRepo, log.With("component", "activity_publisher"))
	poller := outbox_poller.NewPoller(&cfg.Outbox, repos.Outbox, activityPublisher, log.With("component", "outbox_poller"))

	// Any component failing cancels the others
	g, gctx := errgroup.WithContext(appCtx)
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.SweepTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Run(gctx, sweepHandler.HandleMessage); err != nil {
			return fmt.Errorf("kafka consumer error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return poller.Run(gctx)
	})

	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Scheduler component failed", "error", runErr)
	} else {
		log.Info("Shutdown signal received")
	}

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")
	log.Info("Shutting down worker pool", "running_workers", engine.Pool.Running())
	engine.Shutdown()

	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	postgresDB.Close()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Scheduler shutdown completed with errors")
	} else {
		log.Info("Scheduler shutdown completed successfully")
	}
}
