package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const presetColumns = `id, account_id, type, amount, execution_date, description, status,
	recurrence_type, recurrence_interval, recurrence_end_date, previous_id, executed_at, created_at, updated_at`

// PresetRepository implements the preset.Repository interface for PostgreSQL
type PresetRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewPresetRepository(logger *slog.Logger, db *persistence.PostgresDB) preset.Repository {
	return &PresetRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *PresetRepository) WithTx(tx pgx.Tx) preset.Repository {
	if tx == nil {
		return r
	}
	return &PresetRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *PresetRepository) Create(ctx context.Context, t *preset.Transaction) error {
	query := `
		INSERT INTO preset_transactions (account_id, type, amount, execution_date, description, status,
			recurrence_type, recurrence_interval, recurrence_end_date, previous_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		t.AccountID,
		t.Type,
		t.Amount,
		t.ExecutionDate,
		t.Description,
		t.Status,
		t.Recurrence.Type,
		t.Recurrence.Interval,
		t.Recurrence.EndDate,
		t.PreviousID,
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		r.logger.Error("Failed to create preset transaction", "error", err)
		return fmt.Errorf("failed to create preset transaction: %w", err)
	}

	return nil
}

func (r *PresetRepository) GetByID(ctx context.Context, id int64) (*preset.Transaction, error) {
	query := `SELECT ` + presetColumns + ` FROM preset_transactions WHERE id = $1`

	t, err := scanPreset(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, preset.ErrPresetNotFound{ID: id}
		}
		r.logger.Error("Failed to get preset transaction", "preset_id", id, "error", err)
		return nil, fmt.Errorf("failed to get preset transaction: %w", err)
	}

	return t, nil
}

// List returns rows newest execution date first, optionally filtered by status
func (r *PresetRepository) List(ctx context.Context, status *preset.Status, limit, offset int) ([]*preset.Transaction, error) {
	query := `
		SELECT ` + presetColumns + `
		FROM preset_transactions
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY execution_date DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryPresets(ctx, "list", query, status, limit, offset)
}

func (r *PresetRepository) Count(ctx context.Context, status *preset.Status) (int64, error) {
	query := `SELECT COUNT(*) FROM preset_transactions WHERE ($1::text IS NULL OR status = $1)`

	var count int64
	if err := r.querier.QueryRow(ctx, query, status).Scan(&count); err != nil {
		r.logger.Error("Failed to count preset transactions", "error", err)
		return 0, fmt.Errorf("failed to count preset transactions: %w", err)
	}

	return count, nil
}

func (r *PresetRepository) ListDue(ctx context.Context, asOf time.Time) ([]*preset.Transaction, error) {
	query := `
		SELECT ` + presetColumns + `
		FROM preset_transactions
		WHERE status = $1 AND execution_date <= $2
		ORDER BY execution_date ASC, id ASC
	`

	return r.queryPresets(ctx, "list due", query, preset.StatusPending, asOf)
}

// Claim is the compare-and-swap that guards against double execution. A
// concurrent claimer blocks on the row lock and then sees zero rows. The
// returned row is what the executor applies, never the unlocked due listing.
func (r *PresetRepository) Claim(ctx context.Context, id int64, asOf time.Time) (*preset.Transaction, error) {
	query := `
		UPDATE preset_transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND execution_date <= $4
		RETURNING ` + presetColumns

	t, err := scanPreset(r.querier.QueryRow(ctx, query, preset.StatusExecuting, id, preset.StatusPending, asOf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to claim preset transaction", "preset_id", id, "error", err)
		return nil, fmt.Errorf("failed to claim preset transaction: %w", err)
	}

	return t, nil
}

func (r *PresetRepository) UpdateStatus(ctx context.Context, id int64, from, to preset.Status) error {
	if !preset.CanTransition(from, to) {
		return preset.ErrInvalidTransition{ID: id, From: from, To: to}
	}

	query := `
		UPDATE preset_transactions
		SET status = $1,
			executed_at = CASE WHEN $1 = 'EXECUTED' THEN NOW() ELSE executed_at END,
			updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.querier.Exec(ctx, query, to, id, from)
	if err != nil {
		r.logger.Error("Failed to update preset status", "preset_id", id, "error", err)
		return fmt.Errorf("failed to update preset status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return preset.ErrInvalidTransition{ID: id, From: from, To: to}
	}

	return nil
}

// Update rewrites editable fields; the status guard keeps executed rows immutable
func (r *PresetRepository) Update(ctx context.Context, t *preset.Transaction) error {
	query := `
		UPDATE preset_transactions
		SET account_id = $1, type = $2, amount = $3, execution_date = $4, description = $5,
			recurrence_type = $6, recurrence_interval = $7, recurrence_end_date = $8, updated_at = $9
		WHERE id = $10 AND status = $11
	`

	result, err := r.querier.Exec(ctx, query,
		t.AccountID,
		t.Type,
		t.Amount,
		t.ExecutionDate,
		t.Description,
		t.Recurrence.Type,
		t.Recurrence.Interval,
		t.Recurrence.EndDate,
		t.UpdatedAt,
		t.ID,
		preset.StatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to update preset transaction", "preset_id", t.ID, "error", err)
		return fmt.Errorf("failed to update preset transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return preset.ErrInvalidTransition{ID: t.ID, From: t.Status, To: preset.StatusPending}
	}

	return nil
}

func (r *PresetRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM preset_transactions WHERE id = $1 AND status = $2`

	result, err := r.querier.Exec(ctx, query, id, preset.StatusPending)
	if err != nil {
		r.logger.Error("Failed to delete preset transaction", "preset_id", id, "error", err)
		return fmt.Errorf("failed to delete preset transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return preset.ErrInvalidTransition{ID: id, From: "", To: "DELETED"}
	}

	return nil
}

func (r *PresetRepository) queryPresets(ctx context.Context, op, query string, args ...any) ([]*preset.Transaction, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query preset transactions", "op", op, "error", err)
		return nil, fmt.Errorf("failed to %s preset transactions: %w", op, err)
	}
	defer rows.Close()

	var result []*preset.Transaction
	for rows.Next() {
		t, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preset transaction: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preset transactions: %w", err)
	}

	return result, nil
}

func scanPreset(row pgx.Row) (*preset.Transaction, error) {
	var t preset.Transaction
	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Type,
		&t.Amount,
		&t.ExecutionDate,
		&t.Description,
		&t.Status,
		&t.Recurrence.Type,
		&t.Recurrence.Interval,
		&t.Recurrence.EndDate,
		&t.PreviousID,
		&t.ExecutedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
