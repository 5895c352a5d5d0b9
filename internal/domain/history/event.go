package history

import (
	"time"

	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event is an immutable record of one balance change
type Event struct {
	ID                   int64             `json:"id"`
	AccountID            int64             `json:"account_id"`
	OccurredAt           time.Time         `json:"occurred_at"`
	ChangeType           shared.ChangeType `json:"change_type"`
	RelatedTransactionID *int64            `json:"related_transaction_id,omitempty"` // Weak reference to a preset transaction
	RelatedEntryID       *int64            `json:"related_entry_id,omitempty"`
	AmountChange         decimal.Decimal   `json:"amount_change"`
	BalanceAfter         decimal.Decimal   `json:"balance_after"`
	Description          string            `json:"description,omitempty"`
}

// Filter narrows history listings; nil fields are ignored
type Filter struct {
	AccountID            *int64
	ChangeType           *shared.ChangeType
	From                 *time.Time
	To                   *time.Time
	RelatedTransactionID *int64
}

// Replay is the result of folding an account's events over its initial balance
type Replay struct {
	AccountID      int64           `json:"account_id"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	ReplayedAmount decimal.Decimal `json:"replayed_amount"`
	CurrentAmount  decimal.Decimal `json:"current_amount"`
	Events         int             `json:"events"`
	// FirstMismatchID is the first event whose balance_after disagrees with the running sum
	FirstMismatchID *int64 `json:"first_mismatch_id,omitempty"`
	Consistent      bool   `json:"consistent"`
}

// ReplayEvents sums amount changes in order starting from initial and checks every
// balance_after along the way. Events must be sorted oldest first.
func ReplayEvents(accountID int64, initial, current decimal.Decimal, events []*Event) *Replay {
	running := initial
	r := &Replay{
		AccountID:      accountID,
		InitialBalance: initial,
		CurrentAmount:  current,
		Events:         len(events),
	}
	for _, e := range events {
		running = running.Add(e.AmountChange)
		if r.FirstMismatchID == nil && !running.Equal(e.BalanceAfter) {
			id := e.ID
			r.FirstMismatchID = &id
		}
	}
	r.ReplayedAmount = running
	r.Consistent = r.FirstMismatchID == nil && running.Equal(current)
	return r
}
