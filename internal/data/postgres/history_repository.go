package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const historyColumns = `id, account_id, occurred_at, change_type, related_transaction_id, related_entry_id,
	amount_change, balance_after, description`

// historyFilter keeps the placeholders of List and Count aligned
const historyFilter = `
	WHERE ($1::bigint IS NULL OR account_id = $1)
		AND ($2::text IS NULL OR change_type = $2)
		AND ($3::timestamptz IS NULL OR occurred_at >= $3)
		AND ($4::timestamptz IS NULL OR occurred_at <= $4)
		AND ($5::bigint IS NULL OR related_transaction_id = $5)
`

// HistoryRepository implements the append-only history.Repository for PostgreSQL
type HistoryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewHistoryRepository(logger *slog.Logger, db *persistence.PostgresDB) history.Repository {
	return &HistoryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *HistoryRepository) WithTx(tx pgx.Tx) history.Repository {
	if tx == nil {
		return r
	}
	return &HistoryRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append inserts the event and fills in its id
func (r *HistoryRepository) Append(ctx context.Context, event *history.Event) error {
	query := `
		INSERT INTO balance_history (account_id, occurred_at, change_type, related_transaction_id, related_entry_id,
			amount_change, balance_after, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		event.AccountID,
		event.OccurredAt,
		event.ChangeType,
		event.RelatedTransactionID,
		event.RelatedEntryID,
		event.AmountChange,
		event.BalanceAfter,
		event.Description,
	).Scan(&event.ID)
	if err != nil {
		r.logger.Error("Failed to append history event", "account_id", event.AccountID, "error", err)
		return fmt.Errorf("failed to append history event: %w", err)
	}

	return nil
}

func (r *HistoryRepository) List(ctx context.Context, filter history.Filter, limit, offset int) ([]*history.Event, error) {
	query := `SELECT ` + historyColumns + ` FROM balance_history` + historyFilter + `
		ORDER BY occurred_at DESC, id DESC
		LIMIT $6 OFFSET $7
	`

	args := append(filterArgs(filter), limit, offset)
	return r.queryEvents(ctx, query, args...)
}

func (r *HistoryRepository) Count(ctx context.Context, filter history.Filter) (int64, error) {
	query := `SELECT COUNT(*) FROM balance_history` + historyFilter

	var count int64
	if err := r.querier.QueryRow(ctx, query, filterArgs(filter)...).Scan(&count); err != nil {
		r.logger.Error("Failed to count history events", "error", err)
		return 0, fmt.Errorf("failed to count history events: %w", err)
	}

	return count, nil
}

// ListByAccount returns the account's events in append order
func (r *HistoryRepository) ListByAccount(ctx context.Context, accountID int64) ([]*history.Event, error) {
	query := `SELECT ` + historyColumns + ` FROM balance_history WHERE account_id = $1 ORDER BY id ASC`

	return r.queryEvents(ctx, query, accountID)
}

func (r *HistoryRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*history.Event, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query history events", "error", err)
		return nil, fmt.Errorf("failed to query history events: %w", err)
	}
	defer rows.Close()

	var events []*history.Event
	for rows.Next() {
		var e history.Event
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.OccurredAt,
			&e.ChangeType,
			&e.RelatedTransactionID,
			&e.RelatedEntryID,
			&e.AmountChange,
			&e.BalanceAfter,
			&e.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history events: %w", err)
	}

	return events, nil
}

func filterArgs(f history.Filter) []any {
	return []any{f.AccountID, f.ChangeType, f.From, f.To, f.RelatedTransactionID}
}
