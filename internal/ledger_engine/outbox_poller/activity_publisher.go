package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blueshark0/pas/internal/domain/activity"
	"github.com/blueshark0/pas/internal/domain/outbox"
	"github.com/blueshark0/pas/internal/domain/shared"
)

// ActivityPublisher projects one outbox message into the activity read model
type ActivityPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

type ActivityPublisherImpl struct {
	outboxRepo   outbox.Repository
	activityRepo activity.Repository
	logger       *slog.Logger
}

func NewActivityPublisher(
	outboxRepo outbox.Repository,
	activityRepo activity.Repository,
	logger *slog.Logger,
) *ActivityPublisherImpl {
	return &ActivityPublisherImpl{
		outboxRepo:   outboxRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Publish upserts the projected event and marks the message processed. The
// upsert is keyed by event id, so a message redelivered after a failed status
// update projects to the same document.
func (p *ActivityPublisherImpl) Publish(ctx context.Context, message *outbox.Message) error {
	log := p.logger.With("outbox_id", message.ID, "event_id", message.EventID)

	event, err := message.HistoryEvent()
	if err != nil {
		log.Error("Undecodable outbox payload", "error", err)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			log.Error("Failed to mark outbox message as FAILED_TO_PUBLISH", "error", updateErr)
		}
		return fmt.Errorf("failed to decode payload of outbox message %d: %w", message.ID, err)
	}

	if err := p.activityRepo.Upsert(ctx, activity.FromEvent(event)); err != nil {
		return fmt.Errorf("failed to project event %d: %w", message.EventID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		return fmt.Errorf("event %d projected but failed to mark outbox %d as PROCESSED: %w", message.EventID, message.ID, err)
	}

	log.Debug("Outbox message projected", "account_id", event.AccountID, "change_type", event.ChangeType)
	return nil
}
