package account

import (
	"context"
	"fmt"

	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context) ([]*Account, error)

	// ApplyDelta adds delta to the stored amount guarded by the version read under lock
	ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal, version int) error

	// LockForUpdate acquires a row lock held until the surrounding transaction ends
	LockForUpdate(ctx context.Context, id int64) (*Account, error)

	// HasReferences reports whether ledger entries or history events point at the account
	HasReferences(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	WithTx(tx pgx.Tx) Repository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	AccountID int64
}

func (e ErrConcurrentModification) Error() string {
	return fmt.Sprintf("concurrent modification detected for account: %d", e.AccountID)
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID int64
}

func (e ErrAccountNotFound) Error() string {
	return fmt.Sprintf("account not found: %d", e.AccountID)
}

func (e ErrAccountNotFound) Is(target error) bool {
	return target == shared.ErrNotFound
}

// ErrAccountInUse is returned when deleting an account that is still referenced
type ErrAccountInUse struct {
	AccountID int64
}

func (e ErrAccountInUse) Error() string {
	return fmt.Sprintf("account %d is referenced by ledger entries or history", e.AccountID)
}

func (e ErrAccountInUse) Is(target error) bool {
	return target == shared.ErrInvalidStateTransition
}

// ErrInsufficientFunds reports a debit larger than the available amount
type ErrInsufficientFunds struct {
	AccountID int64
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds in account %d: available %s, requested %s",
		e.AccountID, e.Available.StringFixed(shared.MoneyScale), e.Requested.StringFixed(shared.MoneyScale))
}

func (e ErrInsufficientFunds) Is(target error) bool {
	return target == shared.ErrInsufficientFunds
}
