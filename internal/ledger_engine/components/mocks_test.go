package components

import (
	"context"
	"time"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/outbox"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) List(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepo) ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal, version int) error {
	return m.Called(ctx, id, delta, version).Error(0)
}

func (m *MockAccountRepo) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) HasReferences(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountRepo) WithTx(tx pgx.Tx) account.Repository {
	return m
}

type MockHistoryRepo struct {
	mock.Mock
}

func (m *MockHistoryRepo) Append(ctx context.Context, event *history.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockHistoryRepo) List(ctx context.Context, filter history.Filter, limit, offset int) ([]*history.Event, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.Event), args.Error(1)
}

func (m *MockHistoryRepo) Count(ctx context.Context, filter history.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryRepo) ListByAccount(ctx context.Context, accountID int64) ([]*history.Event, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.Event), args.Error(1)
}

func (m *MockHistoryRepo) WithTx(tx pgx.Tx) history.Repository {
	return m
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type MockPresetRepo struct {
	mock.Mock
}

func (m *MockPresetRepo) Create(ctx context.Context, t *preset.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockPresetRepo) GetByID(ctx context.Context, id int64) (*preset.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preset.Transaction), args.Error(1)
}

func (m *MockPresetRepo) List(ctx context.Context, status *preset.Status, limit, offset int) ([]*preset.Transaction, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*preset.Transaction), args.Error(1)
}

func (m *MockPresetRepo) Count(ctx context.Context, status *preset.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPresetRepo) ListDue(ctx context.Context, asOf time.Time) ([]*preset.Transaction, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*preset.Transaction), args.Error(1)
}

func (m *MockPresetRepo) Claim(ctx context.Context, id int64, asOf time.Time) (*preset.Transaction, error) {
	args := m.Called(ctx, id, asOf)
	claimed, _ := args.Get(0).(*preset.Transaction)
	return claimed, args.Error(1)
}

func (m *MockPresetRepo) UpdateStatus(ctx context.Context, id int64, from, to preset.Status) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockPresetRepo) Update(ctx context.Context, t *preset.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockPresetRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPresetRepo) WithTx(tx pgx.Tx) preset.Repository {
	return m
}
