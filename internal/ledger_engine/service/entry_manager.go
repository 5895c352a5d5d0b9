package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/domain/entry"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/blueshark0/pas/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// maxCatchUp bounds how many occurrences one template may generate in a single run
const maxCatchUp = 366

// GenerationResult is the outcome of one periodic entry run
type GenerationResult struct {
	AsOf      time.Time      `json:"as_of"`
	Generated []*entry.Entry `json:"generated"`
	Failed    []FailedEntry  `json:"failed"`
}

// FailedEntry names a template whose occurrences were rolled back
type FailedEntry struct {
	TemplateID int64  `json:"template_id"`
	Reason     string `json:"reason"`
}

// EntryManagerService applies ledger entry changes to account balances
type EntryManagerService struct {
	txRunner  persistence.TxRunner
	entryRepo entry.Repository
	ledger    LedgerStore
	history   HistoryLog
	logger    *slog.Logger
}

func NewEntryManagerService(
	txRunner persistence.TxRunner,
	entryRepo entry.Repository,
	ledger LedgerStore,
	historyLog HistoryLog,
	logger *slog.Logger,
) *EntryManagerService {
	return &EntryManagerService{
		txRunner:  txRunner,
		entryRepo: entryRepo,
		ledger:    ledger,
		history:   historyLog,
		logger:    logger,
	}
}

// Create stores a new entry and applies its contribution when settled
func (s *EntryManagerService) Create(ctx context.Context, draft entry.Draft) (*entry.Entry, error) {
	e, err := entry.New(draft)
	if err != nil {
		return nil, err
	}

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.ledger.Lock(ctx, tx, e.AccountID); err != nil {
			return err
		}
		if err := s.entryRepo.WithTx(tx).Create(ctx, e); err != nil {
			return err
		}
		return s.applyContribution(ctx, tx, e, e.Contribution())
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Ledger entry created", "entry_id", e.ID, "account_id", e.AccountID)
	return e, nil
}

// Update edits an entry. When type, amount or status change, the old contribution
// is reversed and the new one applied as a single delta.
func (s *EntryManagerService) Update(ctx context.Context, id int64, patch entry.Patch) (*entry.Entry, error) {
	var updated *entry.Entry
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.entryRepo.WithTx(tx)
		e, err := repo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Lock(ctx, tx, e.AccountID); err != nil {
			return err
		}

		delta, err := e.Apply(patch)
		if err != nil {
			return err
		}
		if err := repo.Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return s.applyContribution(ctx, tx, e, delta)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Ledger entry updated", "entry_id", id)
	return updated, nil
}

// Delete reverses the entry's contribution and removes it
func (s *EntryManagerService) Delete(ctx context.Context, id int64) error {
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.entryRepo.WithTx(tx)
		e, err := repo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Lock(ctx, tx, e.AccountID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.applyContribution(ctx, tx, e, e.Contribution().Neg())
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx, s.logger).Info("Ledger entry deleted", "entry_id", id)
	return nil
}

// GeneratePeriodicEntries creates the occurrences of every periodic template
// due on or before asOf. Each template is processed in its own transaction.
func (s *EntryManagerService) GeneratePeriodicEntries(ctx context.Context, asOf time.Time) (*GenerationResult, error) {
	log := logger.FromContext(ctx, s.logger)
	asOf = shared.DateOnly(asOf)

	templates, err := s.entryRepo.ListDueTemplates(ctx, asOf)
	if err != nil {
		log.Error("Failed to list periodic entry templates", "error", err)
		return nil, fmt.Errorf("failed to list periodic entry templates: %w", err)
	}

	result := &GenerationResult{AsOf: asOf, Generated: []*entry.Entry{}, Failed: []FailedEntry{}}
	for _, template := range templates {
		generated, err := s.generateFor(ctx, template.ID, asOf)
		if err != nil {
			log.Warn("Periodic entry generation rolled back", "template_id", template.ID, "error", err)
			result.Failed = append(result.Failed, FailedEntry{TemplateID: template.ID, Reason: err.Error()})
			if errors.Is(err, shared.ErrStorageUnavailable) {
				return result, err
			}
			continue
		}
		result.Generated = append(result.Generated, generated...)
	}

	log.Info("Periodic entries generated", "as_of", asOf.Format(shared.DateLayout),
		"generated", len(result.Generated), "failed", len(result.Failed))
	return result, nil
}

func (s *EntryManagerService) generateFor(ctx context.Context, templateID int64, asOf time.Time) ([]*entry.Entry, error) {
	var generated []*entry.Entry
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		generated = nil
		repo := s.entryRepo.WithTx(tx)
		template, err := repo.LockForUpdate(ctx, templateID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Lock(ctx, tx, template.AccountID); err != nil {
			return err
		}

		for i := 0; i < maxCatchUp && template.IsDueTemplate(asOf); i++ {
			occurrence := template.Occurrence()
			if err := repo.Create(ctx, occurrence); err != nil {
				return err
			}
			if err := s.applyContribution(ctx, tx, occurrence, occurrence.Contribution()); err != nil {
				return err
			}
			generated = append(generated, occurrence)
		}
		if len(generated) == 0 {
			return nil
		}
		return repo.Update(ctx, template)
	})
	if err != nil {
		return nil, err
	}
	return generated, nil
}

// applyContribution applies delta for e and documents it as an ENTRY event
func (s *EntryManagerService) applyContribution(ctx context.Context, tx pgx.Tx, e *entry.Entry, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	acc, err := s.ledger.ApplyDelta(ctx, tx, e.AccountID, delta)
	if err != nil {
		return err
	}

	entryID := e.ID
	return s.history.Append(ctx, tx, &history.Event{
		AccountID:      e.AccountID,
		ChangeType:     shared.ChangeTypeEntry,
		RelatedEntryID: &entryID,
		AmountChange:   delta,
		BalanceAfter:   acc.Amount,
		Description:    e.Description,
	})
}
