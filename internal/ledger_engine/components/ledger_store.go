package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerStoreImpl implements service.LedgerStore on top of the account repository
type LedgerStoreImpl struct {
	accountRepo account.Repository
	logger      *slog.Logger
}

func NewLedgerStore(accountRepo account.Repository, logger *slog.Logger) service.LedgerStore {
	return &LedgerStoreImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (m *LedgerStoreImpl) Read(ctx context.Context, accountID int64) (*account.Account, error) {
	return m.accountRepo.GetByID(ctx, accountID)
}

// Lock takes the account's row lock for the rest of tx
func (m *LedgerStoreImpl) Lock(ctx context.Context, tx pgx.Tx, accountID int64) (*account.Account, error) {
	acc, err := m.accountRepo.WithTx(tx).LockForUpdate(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{AccountID: accountID}) {
			m.logger.Warn("Account not found for lock", "account_id", accountID)
			return nil, err
		}
		m.logger.Error("Failed to lock account", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to lock account %d: %w", accountID, err)
	}
	return acc, nil
}

// ApplyDelta locks the account, adds delta and returns the updated aggregate
func (m *LedgerStoreImpl) ApplyDelta(ctx context.Context, tx pgx.Tx, accountID int64, delta decimal.Decimal) (*account.Account, error) {
	acc, err := m.Lock(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	version := acc.Version
	acc.ApplyDelta(delta)
	if err := m.accountRepo.WithTx(tx).ApplyDelta(ctx, accountID, delta, version); err != nil {
		if errors.Is(err, account.ErrConcurrentModification{AccountID: accountID}) {
			m.logger.Warn("Concurrent modification on account update", "account_id", accountID)
		} else {
			m.logger.Error("Failed to apply account delta", "account_id", accountID, "error", err)
		}
		return nil, err
	}

	m.logger.Debug("Account delta applied", "account_id", accountID, "delta", delta, "amount", acc.Amount, "version", acc.Version)
	return acc, nil
}

// SetAbsolute moves the account to target by applying the implied delta.
// A zero delta leaves the row untouched.
func (m *LedgerStoreImpl) SetAbsolute(ctx context.Context, tx pgx.Tx, accountID int64, target decimal.Decimal) (*account.Account, decimal.Decimal, error) {
	acc, err := m.Lock(ctx, tx, accountID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	delta := acc.DeltaTo(target)
	if delta.IsZero() {
		return acc, delta, nil
	}

	updated, err := m.ApplyDelta(ctx, tx, accountID, delta)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return updated, delta, nil
}
