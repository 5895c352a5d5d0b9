package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/jackc/pgx/v5"
)

// PresetLifecycleImpl persists preset state transitions
type PresetLifecycleImpl struct {
	presetRepo preset.Repository
	logger     *slog.Logger
}

func NewPresetLifecycle(presetRepo preset.Repository, logger *slog.Logger) service.PresetLifecycle {
	return &PresetLifecycleImpl{
		presetRepo: presetRepo,
		logger:     logger,
	}
}

// Claim performs the PENDING -> EXECUTING compare-and-swap inside tx and
// returns the locked row. Callers must execute the returned row rather than
// t, which may have been edited since it was listed. The claim is never
// visible outside tx: a rollback leaves the row pending.
func (m *PresetLifecycleImpl) Claim(ctx context.Context, tx pgx.Tx, t *preset.Transaction, asOf time.Time) (*preset.Transaction, error) {
	if !preset.CanTransition(t.Status, preset.StatusExecuting) {
		return nil, preset.ErrInvalidTransition{ID: t.ID, From: t.Status, To: preset.StatusExecuting}
	}

	claimed, err := m.presetRepo.WithTx(tx).Claim(ctx, t.ID, asOf)
	if err != nil || claimed == nil {
		return nil, err
	}
	if claimed.Status != preset.StatusExecuting {
		return nil, preset.ErrInvalidTransition{ID: t.ID, From: claimed.Status, To: preset.StatusExecuting}
	}
	return claimed, nil
}

// Complete moves the row to EXECUTED and creates the next occurrence of a recurring row
func (m *PresetLifecycleImpl) Complete(ctx context.Context, tx pgx.Tx, t *preset.Transaction) (*preset.Transaction, error) {
	repo := m.presetRepo.WithTx(tx)
	if err := repo.UpdateStatus(ctx, t.ID, preset.StatusExecuting, preset.StatusExecuted); err != nil {
		return nil, err
	}
	if err := t.Transition(preset.StatusExecuted); err != nil {
		return nil, err
	}

	successor := t.Successor()
	if successor == nil {
		return nil, nil
	}
	if err := repo.Create(ctx, successor); err != nil {
		return nil, err
	}

	m.logger.Info("Scheduled next occurrence",
		"preset_id", t.ID,
		"successor_id", successor.ID,
		"execution_date", successor.ExecutionDate.Format(shared.DateLayout),
	)
	return successor, nil
}

// Terminate cancels a pending row
func (m *PresetLifecycleImpl) Terminate(ctx context.Context, id int64) (*preset.Transaction, error) {
	t, err := m.presetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := t.Status
	if err := t.Transition(preset.StatusTerminated); err != nil {
		return nil, err
	}
	if err := m.presetRepo.UpdateStatus(ctx, id, from, preset.StatusTerminated); err != nil {
		return nil, err
	}

	m.logger.Info("Preset transaction terminated", "preset_id", id)
	return t, nil
}
