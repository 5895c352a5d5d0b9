package entry

import (
	"context"
	"fmt"
	"time"

	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

// Filter narrows entry listings; nil fields are ignored
type Filter struct {
	AccountID *int64
	Type      *shared.TransactionType
	From      *time.Time
	To        *time.Time
}

// Repository defines ledger entry persistence operations
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id int64) (*Entry, error)

	// LockForUpdate reads the entry under a row lock
	LockForUpdate(ctx context.Context, id int64) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// ListDueTemplates returns settled periodic entries whose next occurrence is on or before asOf
	ListDueTemplates(ctx context.Context, asOf time.Time) ([]*Entry, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates a missing ledger entry
type ErrEntryNotFound struct {
	ID int64
}

func (e ErrEntryNotFound) Error() string {
	return fmt.Sprintf("ledger entry not found: %d", e.ID)
}

// Is matches any ErrEntryNotFound when the target id is zero, and the NotFound category
func (e ErrEntryNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	return t.ID == 0 || t.ID == e.ID
}
