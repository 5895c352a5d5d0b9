package preset

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Repository defines preset transaction persistence operations
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	List(ctx context.Context, status *Status, limit, offset int) ([]*Transaction, error)
	Count(ctx context.Context, status *Status) (int64, error)

	// ListDue returns pending rows due on or before asOf, ordered by execution date then id
	ListDue(ctx context.Context, asOf time.Time) ([]*Transaction, error)

	// Claim moves a row from PENDING to EXECUTING only if it is still pending
	// and due on asOf, returning the row as stored at the moment of the claim.
	// A nil row means it was claimed, edited past asOf, or removed meanwhile.
	Claim(ctx context.Context, id int64, asOf time.Time) (*Transaction, error)

	// UpdateStatus is a compare-and-swap on the status column
	UpdateStatus(ctx context.Context, id int64, from, to Status) error

	// Update rewrites the editable fields of a pending row
	Update(ctx context.Context, t *Transaction) error

	// Delete removes a pending row
	Delete(ctx context.Context, id int64) error
	WithTx(tx pgx.Tx) Repository
}
