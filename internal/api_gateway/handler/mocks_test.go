package handler

import (
	"context"
	"time"

	"github.com/blueshark0/pas/internal/api_gateway/service"
	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/activity"
	"github.com/blueshark0/pas/internal/domain/entry"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/shared"
	engine "github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, input service.NewAccountInput) (*account.Account, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountService) ListActivity(ctx context.Context, accountID int64, page, perPage int) ([]*activity.Record, int64, error) {
	args := m.Called(ctx, accountID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*activity.Record), args.Get(1).(int64), args.Error(2)
}

type MockOperator struct {
	mock.Mock
}

func (m *MockOperator) Balance(ctx context.Context, accountID int64) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockOperator) InitBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (*account.Account, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockOperator) EditBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (*engine.AdjustmentResult, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.AdjustmentResult), args.Error(1)
}

func (m *MockOperator) AdjustBalance(ctx context.Context, req engine.AdjustmentRequest) (*engine.AdjustmentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.AdjustmentResult), args.Error(1)
}

func (m *MockOperator) Transfer(ctx context.Context, req engine.TransferRequest) (*engine.TransferResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.TransferResult), args.Error(1)
}

func (m *MockOperator) VerifyAccount(ctx context.Context, accountID int64) (*history.Replay, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.Replay), args.Error(1)
}

type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) ExecuteDue(ctx context.Context, asOf time.Time) (*engine.ExecutionResult, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.ExecutionResult), args.Error(1)
}

type MockPresetService struct {
	mock.Mock
}

func (m *MockPresetService) AddPreset(ctx context.Context, input service.NewPresetInput) (*preset.Transaction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preset.Transaction), args.Error(1)
}

func (m *MockPresetService) GetPreset(ctx context.Context, id int64) (*preset.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preset.Transaction), args.Error(1)
}

func (m *MockPresetService) ListPresets(ctx context.Context, status *preset.Status, page, perPage int) ([]*preset.Transaction, int64, error) {
	args := m.Called(ctx, status, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*preset.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockPresetService) UpdatePreset(ctx context.Context, id int64, patch preset.Patch) (*preset.Transaction, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preset.Transaction), args.Error(1)
}

func (m *MockPresetService) DeletePreset(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPresetService) CancelPreset(ctx context.Context, id int64) (*preset.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preset.Transaction), args.Error(1)
}

func (m *MockPresetService) RequestSweep(ctx context.Context, asOfDate string) (*shared.SweepRequest, error) {
	args := m.Called(ctx, asOfDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.SweepRequest), args.Error(1)
}

type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) CreateEntry(ctx context.Context, draft entry.Draft) (*entry.Entry, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.Entry), args.Error(1)
}

func (m *MockEntryService) UpdateEntry(ctx context.Context, id int64, patch entry.Patch) (*entry.Entry, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.Entry), args.Error(1)
}

func (m *MockEntryService) DeleteEntry(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEntryService) ListEntries(ctx context.Context, filter entry.Filter, page, perPage int) ([]*entry.Entry, int64, error) {
	args := m.Called(ctx, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entry.Entry), args.Get(1).(int64), args.Error(2)
}

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) ListHistory(ctx context.Context, filter history.Filter, page, perPage int) ([]*history.Event, int64, error) {
	args := m.Called(ctx, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*history.Event), args.Get(1).(int64), args.Error(2)
}
