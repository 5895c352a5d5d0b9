package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/outbox"
	"github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/jackc/pgx/v5"
)

// HistoryLogImpl writes history events and their outbox messages in the caller's transaction
type HistoryLogImpl struct {
	historyRepo history.Repository
	outboxRepo  outbox.Repository
	logger      *slog.Logger
}

func NewHistoryLog(historyRepo history.Repository, outboxRepo outbox.Repository, logger *slog.Logger) service.HistoryLog {
	return &HistoryLogImpl{
		historyRepo: historyRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// Append records event and enqueues it for the activity projection. Both
// writes belong to tx, so a rollback removes them together.
func (m *HistoryLogImpl) Append(ctx context.Context, tx pgx.Tx, event *history.Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := m.historyRepo.WithTx(tx).Append(ctx, event); err != nil {
		return err
	}

	message, err := outbox.NewMessage(event)
	if err != nil {
		m.logger.Error("Failed to marshal outbox payload", "event_id", event.ID, "error", err)
		return fmt.Errorf("failed to create outbox message payload for event %d: %w", event.ID, err)
	}
	if err := m.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		return fmt.Errorf("failed to create outbox message for event %d: %w", event.ID, err)
	}

	m.logger.Debug("History event appended",
		"event_id", event.ID,
		"account_id", event.AccountID,
		"change_type", string(event.ChangeType),
		"outbox_id", message.ID,
	)
	return nil
}

// List returns a page of events, newest first, with the total match count
func (m *HistoryLogImpl) List(ctx context.Context, filter history.Filter, limit, offset int) ([]*history.Event, int64, error) {
	events, err := m.historyRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := m.historyRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (m *HistoryLogImpl) ListByAccount(ctx context.Context, accountID int64) ([]*history.Event, error) {
	return m.historyRepo.ListByAccount(ctx, accountID)
}
