package history

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository is the append-only store of balance history events
type Repository interface {
	Append(ctx context.Context, event *Event) error

	// List returns events newest first
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Event, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// ListByAccount returns every event of the account oldest first
	ListByAccount(ctx context.Context, accountID int64) ([]*Event, error)
	WithTx(tx pgx.Tx) Repository
}
