package service

import (
	"context"
	"time"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/activity"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]*account.Account)
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal, version int) error {
	return m.Called(ctx, id, delta, version).Error(0)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountRepository) HasReferences(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountRepository) WithTx(pgx.Tx) account.Repository {
	return m
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Upsert(ctx context.Context, record *activity.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockActivityRepository) GetByEventID(ctx context.Context, eventID int64) (*activity.Record, error) {
	args := m.Called(ctx, eventID)
	record, _ := args.Get(0).(*activity.Record)
	return record, args.Error(1)
}

func (m *MockActivityRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*activity.Record, error) {
	args := m.Called(ctx, accountID, limit, offset)
	records, _ := args.Get(0).([]*activity.Record)
	return records, args.Error(1)
}

func (m *MockActivityRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPresetRepository struct {
	mock.Mock
}

func (m *MockPresetRepository) Create(ctx context.Context, t *preset.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockPresetRepository) GetByID(ctx context.Context, id int64) (*preset.Transaction, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*preset.Transaction)
	return t, args.Error(1)
}

func (m *MockPresetRepository) List(ctx context.Context, status *preset.Status, limit, offset int) ([]*preset.Transaction, error) {
	args := m.Called(ctx, status, limit, offset)
	items, _ := args.Get(0).([]*preset.Transaction)
	return items, args.Error(1)
}

func (m *MockPresetRepository) Count(ctx context.Context, status *preset.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPresetRepository) ListDue(ctx context.Context, asOf time.Time) ([]*preset.Transaction, error) {
	args := m.Called(ctx, asOf)
	items, _ := args.Get(0).([]*preset.Transaction)
	return items, args.Error(1)
}

func (m *MockPresetRepository) Claim(ctx context.Context, id int64, asOf time.Time) (*preset.Transaction, error) {
	args := m.Called(ctx, id, asOf)
	claimed, _ := args.Get(0).(*preset.Transaction)
	return claimed, args.Error(1)
}

func (m *MockPresetRepository) UpdateStatus(ctx context.Context, id int64, from, to preset.Status) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockPresetRepository) Update(ctx context.Context, t *preset.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockPresetRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPresetRepository) WithTx(pgx.Tx) preset.Repository {
	return m
}

type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) Claim(ctx context.Context, tx pgx.Tx, t *preset.Transaction, asOf time.Time) (*preset.Transaction, error) {
	args := m.Called(ctx, tx, t, asOf)
	claimed, _ := args.Get(0).(*preset.Transaction)
	return claimed, args.Error(1)
}

func (m *MockLifecycle) Complete(ctx context.Context, tx pgx.Tx, t *preset.Transaction) (*preset.Transaction, error) {
	args := m.Called(ctx, tx, t)
	successor, _ := args.Get(0).(*preset.Transaction)
	return successor, args.Error(1)
}

func (m *MockLifecycle) Terminate(ctx context.Context, id int64) (*preset.Transaction, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*preset.Transaction)
	return t, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value any) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockHistoryLog struct {
	mock.Mock
}

func (m *MockHistoryLog) Append(ctx context.Context, tx pgx.Tx, event *history.Event) error {
	return m.Called(ctx, tx, event).Error(0)
}

func (m *MockHistoryLog) List(ctx context.Context, filter history.Filter, limit, offset int) ([]*history.Event, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	events, _ := args.Get(0).([]*history.Event)
	return events, args.Get(1).(int64), args.Error(2)
}

func (m *MockHistoryLog) ListByAccount(ctx context.Context, accountID int64) ([]*history.Event, error) {
	args := m.Called(ctx, accountID)
	events, _ := args.Get(0).([]*history.Event)
	return events, args.Error(1)
}
