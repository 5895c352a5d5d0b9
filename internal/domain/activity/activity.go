package activity

import (
	"context"
	"strconv"
	"time"

	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Record is the read-model projection of a history event
type Record struct {
	EventID              int64             `json:"event_id"`
	AccountID            int64             `json:"account_id"`
	ChangeType           shared.ChangeType `json:"change_type"`
	AmountChange         decimal.Decimal   `json:"amount_change"`
	BalanceAfter         decimal.Decimal   `json:"balance_after"`
	RelatedTransactionID *int64            `json:"related_transaction_id,omitempty"`
	RelatedEntryID       *int64            `json:"related_entry_id,omitempty"`
	Description          string            `json:"description,omitempty"`
	OccurredAt           time.Time         `json:"occurred_at"`
	ProjectedAt          time.Time         `json:"projected_at"`
}

// FromEvent projects a history event
func FromEvent(e *history.Event) *Record {
	return &Record{
		EventID:              e.ID,
		AccountID:            e.AccountID,
		ChangeType:           e.ChangeType,
		AmountChange:         e.AmountChange,
		BalanceAfter:         e.BalanceAfter,
		RelatedTransactionID: e.RelatedTransactionID,
		RelatedEntryID:       e.RelatedEntryID,
		Description:          e.Description,
		OccurredAt:           e.OccurredAt,
		ProjectedAt:          time.Now(),
	}
}

// Repository stores the projection. Upsert is keyed by event id so replays are harmless.
type Repository interface {
	Upsert(ctx context.Context, record *Record) error
	GetByEventID(ctx context.Context, eventID int64) (*Record, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*Record, error)
	CountByAccount(ctx context.Context, accountID int64) (int64, error)
}

// ErrRecordNotFound indicates a missing projection record
type ErrRecordNotFound struct {
	EventID int64
}

func (e ErrRecordNotFound) Error() string {
	return "activity record not found for event " + strconv.FormatInt(e.EventID, 10)
}

func (e ErrRecordNotFound) Is(target error) bool {
	return target == shared.ErrNotFound
}
