// Package scheduler runs the periodic sweep that executes due preset
// transactions and materializes periodic ledger entries.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/config"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/google/uuid"
)

// Sweeper triggers ExecuteDue and GeneratePeriodicEntries on a fixed interval
type Sweeper struct {
	executor service.Executor
	entries  service.EntryManager
	interval time.Duration
	onStart  bool
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewSweeper(cfg *config.LedgerConfig, executor service.Executor, entries service.EntryManager, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		executor: executor,
		entries:  entries,
		interval: cfg.SweepInterval,
		onStart:  cfg.SweepOnStart,
		location: cfg.Location(),
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps until ctx is canceled. Only an unavailable store stops it;
// row level failures are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("Starting sweeper", "interval", s.interval.String(), "sweep_on_start", s.onStart)

	if s.onStart {
		if err := s.Sweep(ctx); err != nil && errors.Is(err, shared.ErrStorageUnavailable) {
			return err
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return nil
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil && errors.Is(err, shared.ErrStorageUnavailable) {
				return err
			}
		}
	}
}

// Sweep runs one pass as of today in the configured zone
func (s *Sweeper) Sweep(ctx context.Context) error {
	ctx = logger.WithCorrelationID(ctx, uuid.NewString())
	log := logger.FromContext(ctx, s.logger)
	asOf := shared.DateOnly(s.now().In(s.location))

	res, err := s.executor.ExecuteDue(ctx, asOf)
	if err != nil {
		log.Error("Sweep aborted", "as_of", asOf.Format(shared.DateLayout), "error", err)
		return err
	}
	if perr := res.Err(); perr != nil {
		log.Warn("Sweep finished with failures", "executed", len(res.Executed), "failed", len(res.Failed), "error", perr)
	} else {
		log.Info("Sweep finished", "executed", len(res.Executed), "skipped", len(res.Skipped))
	}

	gen, err := s.entries.GeneratePeriodicEntries(ctx, asOf)
	if err != nil {
		log.Error("Periodic entry generation aborted", "as_of", asOf.Format(shared.DateLayout), "error", err)
		return err
	}
	if len(gen.Generated) > 0 || len(gen.Failed) > 0 {
		log.Info("Periodic entries generated", "generated", len(gen.Generated), "failed", len(gen.Failed))
	}
	return nil
}
