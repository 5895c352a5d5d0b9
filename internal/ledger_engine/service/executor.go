package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/blueshark0/pas/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ExecutedItem describes one preset transaction applied by a sweep
type ExecutedItem struct {
	PresetID      int64           `json:"preset_id"`
	AccountID     int64           `json:"account_id"`
	ExecutionDate time.Time       `json:"execution_date"`
	AmountChange  decimal.Decimal `json:"amount_change"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	EventID       int64           `json:"history_event_id"`
	SuccessorID   *int64          `json:"successor_id,omitempty"`
}

// FailedItem describes a due row that was rolled back and left pending
type FailedItem struct {
	PresetID      int64     `json:"preset_id"`
	AccountID     int64     `json:"account_id"`
	ExecutionDate time.Time `json:"execution_date"`
	Reason        string    `json:"reason"`
	err           error
}

// Err is the error that made the row fail
func (f FailedItem) Err() error {
	return f.err
}

// ExecutionResult is the outcome of one ExecuteDue sweep
type ExecutionResult struct {
	AsOf          time.Time                 `json:"as_of"`
	Executed      []ExecutedItem            `json:"executed"`
	Failed        []FailedItem              `json:"failed"`
	Skipped       []int64                   `json:"skipped,omitempty"` // Claimed by a concurrent sweep or no longer due
	FinalBalances map[int64]decimal.Decimal `json:"final_balances"`
}

// Err returns ErrPartialExecutionFailure when any row failed
func (r *ExecutionResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d due transactions failed",
		shared.ErrPartialExecutionFailure, len(r.Failed), len(r.Failed)+len(r.Executed))
}

// ExecutorService executes due preset transactions. Rows of different
// accounts run concurrently on the worker pool; rows of one account run in
// execution order, each in its own transaction.
type ExecutorService struct {
	txRunner         persistence.TxRunner
	presetRepo       preset.Repository
	ledger           LedgerStore
	history          HistoryLog
	lifecycle        PresetLifecycle
	pool             *WorkerPool
	defaultAccountID int64
	logger           *slog.Logger
}

func NewExecutorService(
	txRunner persistence.TxRunner,
	presetRepo preset.Repository,
	ledger LedgerStore,
	historyLog HistoryLog,
	lifecycle PresetLifecycle,
	pool *WorkerPool,
	defaultAccountID int64,
	logger *slog.Logger,
) *ExecutorService {
	return &ExecutorService{
		txRunner:         txRunner,
		presetRepo:       presetRepo,
		ledger:           ledger,
		history:          historyLog,
		lifecycle:        lifecycle,
		pool:             pool,
		defaultAccountID: defaultAccountID,
		logger:           logger,
	}
}

// ExecuteDue applies every pending row due on or before asOf. Failed rows are
// isolated and reported; the returned error is non-nil only when storage
// became unavailable, in which case the partial result is still returned.
func (s *ExecutorService) ExecuteDue(ctx context.Context, asOf time.Time) (*ExecutionResult, error) {
	log := logger.FromContext(ctx, s.logger)
	asOf = shared.DateOnly(asOf)

	due, err := s.presetRepo.ListDue(ctx, asOf)
	if err != nil {
		log.Error("Failed to list due preset transactions", "as_of", asOf.Format(shared.DateLayout), "error", err)
		return nil, fmt.Errorf("failed to list due preset transactions: %w", err)
	}
	log.Info("Executing due preset transactions", "as_of", asOf.Format(shared.DateLayout), "due", len(due))

	result := &ExecutionResult{
		AsOf:          asOf,
		Executed:      []ExecutedItem{},
		Failed:        []FailedItem{},
		FinalBalances: map[int64]decimal.Decimal{},
	}

	groups, order := s.groupByAccount(due)

	var (
		mu       sync.Mutex
		halted   atomic.Bool
		fatalErr error
		// accounts a row was re-pointed to after the due list was read
		moved []int64
	)
	tasks := make([]func(), 0, len(order))
	for _, accountID := range order {
		accountID := accountID
		rows := groups[accountID]
		tasks = append(tasks, func() {
			for _, row := range rows {
				if halted.Load() {
					return
				}
				item, skipped, err := s.executeOne(ctx, row, asOf)

				mu.Lock()
				switch {
				case err != nil:
					result.Failed = append(result.Failed, FailedItem{
						PresetID:      row.ID,
						AccountID:     accountID,
						ExecutionDate: row.ExecutionDate,
						Reason:        err.Error(),
						err:           err,
					})
					if errors.Is(err, shared.ErrStorageUnavailable) && fatalErr == nil {
						fatalErr = err
						halted.Store(true)
					}
				case skipped:
					result.Skipped = append(result.Skipped, row.ID)
				default:
					result.Executed = append(result.Executed, *item)
					result.FinalBalances[item.AccountID] = item.BalanceAfter
					if _, listed := groups[item.AccountID]; !listed && !slices.Contains(moved, item.AccountID) {
						moved = append(moved, item.AccountID)
					}
				}
				mu.Unlock()
			}
		})
	}
	s.pool.RunAll(tasks)

	sort.Slice(result.Executed, func(i, j int) bool {
		return itemLess(result.Executed[i].ExecutionDate, result.Executed[i].PresetID,
			result.Executed[j].ExecutionDate, result.Executed[j].PresetID)
	})
	sort.Slice(result.Failed, func(i, j int) bool {
		return itemLess(result.Failed[i].ExecutionDate, result.Failed[i].PresetID,
			result.Failed[j].ExecutionDate, result.Failed[j].PresetID)
	})
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i] < result.Skipped[j] })

	if fatalErr == nil {
		s.readFinalBalances(ctx, append(order, moved...), result)
	}

	log.Info("Preset transaction sweep finished",
		"as_of", asOf.Format(shared.DateLayout),
		"executed", len(result.Executed),
		"failed", len(result.Failed),
		"skipped", len(result.Skipped),
	)
	return result, fatalErr
}

func (s *ExecutorService) groupByAccount(due []*preset.Transaction) (map[int64][]*preset.Transaction, []int64) {
	groups := make(map[int64][]*preset.Transaction)
	var order []int64
	for _, t := range due {
		accountID := s.accountFor(t)
		if _, ok := groups[accountID]; !ok {
			order = append(order, accountID)
		}
		groups[accountID] = append(groups[accountID], t)
	}
	return groups, order
}

func (s *ExecutorService) accountFor(t *preset.Transaction) int64 {
	if t.AccountID != nil {
		return *t.AccountID
	}
	return s.defaultAccountID
}

// executeOne claims, applies and completes a single row in one transaction.
// Everything that moves money comes from the row returned by the claim, so an
// edit committed after the due list was read is either applied in full or,
// when it moved the row past asOf, leaves the row for a later sweep.
// skipped is true when the row is no longer claimable.
func (s *ExecutorService) executeOne(ctx context.Context, listed *preset.Transaction, asOf time.Time) (*ExecutedItem, bool, error) {
	log := logger.FromContext(ctx, s.logger).With("preset_id", listed.ID)

	var (
		item    *ExecutedItem
		skipped bool
	)
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		t, err := s.lifecycle.Claim(ctx, tx, listed, asOf)
		if err != nil {
			return err
		}
		if t == nil {
			skipped = true
			return nil
		}

		accountID := s.accountFor(t)
		if accountID <= 0 {
			return shared.NewValidationError("account_id", "preset names no account and no default account is configured")
		}

		delta := t.SignedAmount()
		acc, err := s.ledger.ApplyDelta(ctx, tx, accountID, delta)
		if err != nil {
			return err
		}

		presetID := t.ID
		event := &history.Event{
			AccountID:            accountID,
			ChangeType:           shared.ExecutionChangeType(t.Type),
			RelatedTransactionID: &presetID,
			AmountChange:         delta,
			BalanceAfter:         acc.Amount,
			Description:          t.Description,
		}
		if err := s.history.Append(ctx, tx, event); err != nil {
			return err
		}

		successor, err := s.lifecycle.Complete(ctx, tx, t)
		if err != nil {
			return err
		}

		item = &ExecutedItem{
			PresetID:      t.ID,
			AccountID:     accountID,
			ExecutionDate: t.ExecutionDate,
			AmountChange:  delta,
			BalanceAfter:  acc.Amount,
			EventID:       event.ID,
		}
		if successor != nil {
			successorID := successor.ID
			item.SuccessorID = &successorID
		}
		return nil
	})
	if err != nil {
		log.Warn("Preset transaction rolled back", "error", err)
		return nil, false, err
	}
	if skipped {
		log.Info("Preset transaction no longer claimable, left to its current owner")
		return nil, true, nil
	}

	log.Info("Preset transaction executed",
		"account_id", item.AccountID,
		"amount_change", item.AmountChange,
		"balance_after", item.BalanceAfter,
	)
	return item, false, nil
}

// readFinalBalances refreshes the balance of every account the sweep touched
func (s *ExecutorService) readFinalBalances(ctx context.Context, accounts []int64, result *ExecutionResult) {
	for _, accountID := range accounts {
		if accountID <= 0 {
			continue
		}
		acc, err := s.ledger.Read(ctx, accountID)
		if err != nil {
			s.logger.Warn("Failed to read final balance", "account_id", accountID, "error", err)
			continue
		}
		result.FinalBalances[accountID] = acc.Amount
	}
}

func itemLess(dateA time.Time, idA int64, dateB time.Time, idB int64) bool {
	if !dateA.Equal(dateB) {
		return dateA.Before(dateB)
	}
	return idA < idB
}
