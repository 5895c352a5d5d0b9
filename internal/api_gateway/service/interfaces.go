package service

import (
	"context"
	"time"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/activity"
	"github.com/blueshark0/pas/internal/domain/entry"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/recurrence"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// NewAccountInput carries the fields of a new account
type NewAccountInput struct {
	Name           string
	Kind           account.Kind
	InitialBalance decimal.Decimal
	OpenedOn       time.Time
	Description    string
}

// NewPresetInput carries the fields of a new preset transaction
type NewPresetInput struct {
	AccountID     *int64
	Type          shared.TransactionType
	Amount        decimal.Decimal
	ExecutionDate time.Time
	Description   string
	Recurrence    recurrence.Rule
}

// AccountService manages accounts and serves their activity projection
type AccountService interface {
	CreateAccount(ctx context.Context, input NewAccountInput) (*account.Account, error)
	// GetAccount returns ErrAccountNotFound if the account doesn't exist
	GetAccount(ctx context.Context, id int64) (*account.Account, error)
	ListAccounts(ctx context.Context) ([]*account.Account, error)
	// DeleteAccount returns ErrAccountInUse while entries or history reference the account
	DeleteAccount(ctx context.Context, id int64) error
	ListActivity(ctx context.Context, accountID int64, page, perPage int) ([]*activity.Record, int64, error)
}

// PresetService manages preset transaction definitions
type PresetService interface {
	AddPreset(ctx context.Context, input NewPresetInput) (*preset.Transaction, error)
	GetPreset(ctx context.Context, id int64) (*preset.Transaction, error)
	ListPresets(ctx context.Context, status *preset.Status, page, perPage int) ([]*preset.Transaction, int64, error)
	// UpdatePreset and DeletePreset only accept pending rows
	UpdatePreset(ctx context.Context, id int64, patch preset.Patch) (*preset.Transaction, error)
	DeletePreset(ctx context.Context, id int64) error
	CancelPreset(ctx context.Context, id int64) (*preset.Transaction, error)
	// RequestSweep publishes an asynchronous ExecuteDue request
	RequestSweep(ctx context.Context, asOfDate string) (*shared.SweepRequest, error)
}

// EntryService manages income and expense entries
type EntryService interface {
	CreateEntry(ctx context.Context, draft entry.Draft) (*entry.Entry, error)
	UpdateEntry(ctx context.Context, id int64, patch entry.Patch) (*entry.Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
	ListEntries(ctx context.Context, filter entry.Filter, page, perPage int) ([]*entry.Entry, int64, error)
}

// HistoryService lists balance history events
type HistoryService interface {
	ListHistory(ctx context.Context, filter history.Filter, page, perPage int) ([]*history.Event, int64, error)
}

func offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
