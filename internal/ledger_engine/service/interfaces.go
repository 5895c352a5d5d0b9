package service

import (
	"context"
	"time"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/entry"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Executor runs due preset transactions
type Executor interface {
	ExecuteDue(ctx context.Context, asOf time.Time) (*ExecutionResult, error)
}

// Operator moves money between accounts and reconciles balances
type Operator interface {
	Balance(ctx context.Context, accountID int64) (*account.Account, error)
	InitBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (*account.Account, error)
	EditBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (*AdjustmentResult, error)
	AdjustBalance(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	VerifyAccount(ctx context.Context, accountID int64) (*history.Replay, error)
}

// EntryManager keeps ledger entries and account balances in step
type EntryManager interface {
	Create(ctx context.Context, draft entry.Draft) (*entry.Entry, error)
	Update(ctx context.Context, id int64, patch entry.Patch) (*entry.Entry, error)
	Delete(ctx context.Context, id int64) error
	GeneratePeriodicEntries(ctx context.Context, asOf time.Time) (*GenerationResult, error)
}

// LedgerStore owns the current amount of every account. Every mutation is a
// signed delta applied under the account's row lock.
type LedgerStore interface {
	Read(ctx context.Context, accountID int64) (*account.Account, error)
	Lock(ctx context.Context, tx pgx.Tx, accountID int64) (*account.Account, error)
	ApplyDelta(ctx context.Context, tx pgx.Tx, accountID int64, delta decimal.Decimal) (*account.Account, error)
	SetAbsolute(ctx context.Context, tx pgx.Tx, accountID int64, target decimal.Decimal) (*account.Account, decimal.Decimal, error)
}

// HistoryLog appends balance events in the same transaction as the mutation they document
type HistoryLog interface {
	Append(ctx context.Context, tx pgx.Tx, event *history.Event) error
	List(ctx context.Context, filter history.Filter, limit, offset int) ([]*history.Event, int64, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*history.Event, error)
}

// PresetLifecycle drives the preset transaction state machine against storage
type PresetLifecycle interface {
	// Claim moves the row to EXECUTING inside tx and returns it as locked.
	// nil means another sweep got it first or it is no longer due on asOf.
	Claim(ctx context.Context, tx pgx.Tx, t *preset.Transaction, asOf time.Time) (*preset.Transaction, error)

	// Complete marks the row EXECUTED and stores its successor, if any
	Complete(ctx context.Context, tx pgx.Tx, t *preset.Transaction) (*preset.Transaction, error)
	Terminate(ctx context.Context, id int64) (*preset.Transaction, error)
}
