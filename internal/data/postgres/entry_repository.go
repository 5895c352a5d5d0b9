package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/domain/entry"
	"github.com/blueshark0/pas/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const entryColumns = `id, account_id, type, amount, entry_date, category, description, kind, period,
	installment_total_amount, installment_total_periods, installment_current_period,
	status, source, next_occurrence, template_id, created_at, updated_at`

const entryFilter = `
	WHERE ($1::bigint IS NULL OR account_id = $1)
		AND ($2::text IS NULL OR type = $2)
		AND ($3::date IS NULL OR entry_date >= $3)
		AND ($4::date IS NULL OR entry_date <= $4)
`

// EntryRepository implements the entry.Repository interface for PostgreSQL
type EntryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewEntryRepository(logger *slog.Logger, db *persistence.PostgresDB) entry.Repository {
	return &EntryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *EntryRepository) WithTx(tx pgx.Tx) entry.Repository {
	if tx == nil {
		return r
	}
	return &EntryRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *EntryRepository) Create(ctx context.Context, e *entry.Entry) error {
	query := `
		INSERT INTO ledger_entries (account_id, type, amount, entry_date, category, description, kind, period,
			installment_total_amount, installment_total_periods, installment_current_period,
			status, source, next_occurrence, template_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`

	total, periods, current := installmentArgs(e.Installment)
	err := r.querier.QueryRow(ctx, query,
		e.AccountID,
		e.Type,
		e.Amount,
		e.Date,
		e.Category,
		e.Description,
		e.Kind,
		e.Period,
		total,
		periods,
		current,
		e.Status,
		e.Source,
		e.NextOccurrence,
		e.TemplateID,
		e.CreatedAt,
		e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		r.logger.Error("Failed to create ledger entry", "account_id", e.AccountID, "error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*entry.Entry, error) {
	return r.getOne(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, id)
}

func (r *EntryRepository) LockForUpdate(ctx context.Context, id int64) (*entry.Entry, error) {
	return r.getOne(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1 FOR UPDATE`, id)
}

func (r *EntryRepository) getOne(ctx context.Context, query string, id int64) (*entry.Entry, error) {
	e, err := scanEntry(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entry.ErrEntryNotFound{ID: id}
		}
		r.logger.Error("Failed to get ledger entry", "entry_id", id, "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return e, nil
}

// Update rewrites the mutable fields. The owning account never changes.
func (r *EntryRepository) Update(ctx context.Context, e *entry.Entry) error {
	query := `
		UPDATE ledger_entries
		SET type = $1, amount = $2, entry_date = $3, category = $4, description = $5,
			status = $6, next_occurrence = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := r.querier.Exec(ctx, query,
		e.Type,
		e.Amount,
		e.Date,
		e.Category,
		e.Description,
		e.Status,
		e.NextOccurrence,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update ledger entry", "entry_id", e.ID, "error", err)
		return fmt.Errorf("failed to update ledger entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entry.ErrEntryNotFound{ID: e.ID}
	}

	return nil
}

func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.querier.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete ledger entry", "entry_id", id, "error", err)
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entry.ErrEntryNotFound{ID: id}
	}

	return nil
}

func (r *EntryRepository) List(ctx context.Context, filter entry.Filter, limit, offset int) ([]*entry.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries` + entryFilter + `
		ORDER BY entry_date DESC, id DESC
		LIMIT $5 OFFSET $6
	`

	return r.queryEntries(ctx, query, filter.AccountID, filter.Type, filter.From, filter.To, limit, offset)
}

func (r *EntryRepository) Count(ctx context.Context, filter entry.Filter) (int64, error) {
	query := `SELECT COUNT(*) FROM ledger_entries` + entryFilter

	var count int64
	err := r.querier.QueryRow(ctx, query, filter.AccountID, filter.Type, filter.From, filter.To).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count ledger entries", "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

func (r *EntryRepository) ListDueTemplates(ctx context.Context, asOf time.Time) ([]*entry.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE kind = $1 AND status = $2 AND next_occurrence <= $3
		ORDER BY next_occurrence ASC, id ASC
	`

	return r.queryEntries(ctx, query, entry.KindPeriodic, entry.StatusSettled, asOf)
}

func (r *EntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*entry.Entry, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query ledger entries", "error", err)
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}

func scanEntry(row pgx.Row) (*entry.Entry, error) {
	var (
		e       entry.Entry
		total   *decimal.Decimal
		periods *int
		current *int
	)
	err := row.Scan(
		&e.ID,
		&e.AccountID,
		&e.Type,
		&e.Amount,
		&e.Date,
		&e.Category,
		&e.Description,
		&e.Kind,
		&e.Period,
		&total,
		&periods,
		&current,
		&e.Status,
		&e.Source,
		&e.NextOccurrence,
		&e.TemplateID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if total != nil && periods != nil && current != nil {
		e.Installment = &entry.Installment{
			TotalAmount:   *total,
			TotalPeriods:  *periods,
			CurrentPeriod: *current,
		}
	}
	return &e, nil
}

func installmentArgs(i *entry.Installment) (*decimal.Decimal, *int, *int) {
	if i == nil {
		return nil, nil, nil
	}
	return &i.TotalAmount, &i.TotalPeriods, &i.CurrentPeriod
}
