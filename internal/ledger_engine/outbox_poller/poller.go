package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/config"
	"github.com/blueshark0/pas/internal/domain/outbox"
	"github.com/blueshark0/pas/internal/domain/shared"
)

// Poller drains pending outbox messages into the activity projection
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        ActivityPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher ActivityPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Run polls until ctx is canceled
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return nil
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error("Outbox batch failed", "error", err)
			}
		}
	}
}

// ProcessBatch publishes one batch of pending messages and returns how many
// were projected. A message that keeps failing is parked as FAILED_TO_PUBLISH
// after maxRetryAttempts.
func (p *Poller) ProcessBatch(ctx context.Context) (int, error) {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}
	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	published := 0
	for _, msg := range messages {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		if err := p.publisher.Publish(ctx, msg); err != nil {
			p.recordFailure(ctx, msg, err)
			continue
		}
		published++
	}
	return published, nil
}

func (p *Poller) recordFailure(ctx context.Context, msg *outbox.Message, cause error) {
	log := p.logger.With("outbox_id", msg.ID, "event_id", msg.EventID)
	log.Error("Failed to publish outbox message", "attempts", msg.Attempts, "error", cause)

	if err := p.outboxRepo.IncrementAttempts(ctx, msg.ID); err != nil {
		log.Error("Failed to increment outbox attempts", "error", err)
		return
	}
	msg.IncrementAttempts()

	if msg.Exhausted(p.maxRetryAttempts) {
		log.Warn("Outbox message exhausted its attempts, marking FAILED_TO_PUBLISH", "attempts", msg.Attempts)
		if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
			log.Error("Failed to mark outbox message as FAILED_TO_PUBLISH", "error", err)
		}
	}
}
