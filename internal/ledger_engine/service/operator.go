package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/entry"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/recurrence"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/blueshark0/pas/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransferRequest moves Amount from one account to another
type TransferRequest struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
}

// TransferResult carries both balances after the transfer
type TransferResult struct {
	From        *account.Account `json:"from"`
	To          *account.Account `json:"to"`
	FromEntryID int64            `json:"from_entry_id"`
	ToEntryID   int64            `json:"to_entry_id"`
}

// AdjustmentRequest reconciles an account to an externally known amount
type AdjustmentRequest struct {
	AccountID   int64
	Target      decimal.Decimal
	Date        time.Time
	Description string
}

// AdjustmentResult reports the applied delta; Adjusted is false for a no-op
type AdjustmentResult struct {
	Account  *account.Account `json:"account"`
	Delta    decimal.Decimal  `json:"delta"`
	Adjusted bool             `json:"adjusted"`
	EntryID  *int64           `json:"entry_id,omitempty"`
	EventID  *int64           `json:"history_event_id,omitempty"`
}

// OperatorService implements transfers, adjustments and balance initialisation
type OperatorService struct {
	txRunner  persistence.TxRunner
	ledger    LedgerStore
	history   HistoryLog
	entryRepo entry.Repository
	location  *time.Location
	logger    *slog.Logger
}

func NewOperatorService(
	txRunner persistence.TxRunner,
	ledger LedgerStore,
	historyLog HistoryLog,
	entryRepo entry.Repository,
	location *time.Location,
	logger *slog.Logger,
) *OperatorService {
	if location == nil {
		location = time.UTC
	}
	return &OperatorService{
		txRunner:  txRunner,
		ledger:    ledger,
		history:   historyLog,
		entryRepo: entryRepo,
		location:  location,
		logger:    logger,
	}
}

func (s *OperatorService) Balance(ctx context.Context, accountID int64) (*account.Account, error) {
	return s.ledger.Read(ctx, accountID)
}

// InitBalance sets the account to amount and records the change as INIT
func (s *OperatorService) InitBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (*account.Account, error) {
	if err := shared.RequireNonNegative("amount", amount); err != nil {
		return nil, err
	}

	var acc *account.Account
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		updated, delta, err := s.ledger.SetAbsolute(ctx, tx, accountID, amount)
		if err != nil {
			return err
		}
		acc = updated
		return s.history.Append(ctx, tx, &history.Event{
			AccountID:    accountID,
			ChangeType:   shared.ChangeTypeInit,
			AmountChange: delta,
			BalanceAfter: updated.Amount,
			Description:  "balance initialised",
		})
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Balance initialised", "account_id", accountID, "amount", acc.Amount)
	return acc, nil
}

// EditBalance is the external entry point for manual corrections
func (s *OperatorService) EditBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (*AdjustmentResult, error) {
	if err := shared.RequireNonNegative("amount", amount); err != nil {
		return nil, err
	}
	return s.AdjustBalance(ctx, AdjustmentRequest{AccountID: accountID, Target: amount})
}

// AdjustBalance moves the account to req.Target. A zero delta is reported as
// a no-op and writes nothing.
func (s *OperatorService) AdjustBalance(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error) {
	log := logger.FromContext(ctx, s.logger).With("account_id", req.AccountID)
	if !req.Target.Equal(shared.RoundMoney(req.Target)) {
		return nil, shared.NewValidationError("target", "must have at most 2 decimal places")
	}
	date := s.dateOrToday(req.Date)

	result := &AdjustmentResult{}
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		acc, delta, err := s.ledger.SetAbsolute(ctx, tx, req.AccountID, req.Target)
		if err != nil {
			return err
		}
		result.Account = acc
		result.Delta = delta
		if delta.IsZero() {
			return nil
		}

		entryType := shared.TransactionTypeIncome
		if delta.IsNegative() {
			entryType = shared.TransactionTypeExpense
		}
		adjustment := &entry.Entry{
			AccountID:   req.AccountID,
			Type:        entryType,
			Amount:      delta.Abs(),
			Date:        date,
			Description: withSuffix(req.Description, "[balance adjustment]"),
			Kind:        entry.KindSingle,
			Period:      recurrence.TypeNone,
			Status:      entry.StatusSettled,
			Source:      entry.SourceAdjustment,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := s.entryRepo.WithTx(tx).Create(ctx, adjustment); err != nil {
			return err
		}

		entryID := adjustment.ID
		event := &history.Event{
			AccountID:      req.AccountID,
			ChangeType:     shared.ChangeTypeManualEdit,
			RelatedEntryID: &entryID,
			AmountChange:   delta,
			BalanceAfter:   acc.Amount,
			Description:    adjustment.Description,
		}
		if err := s.history.Append(ctx, tx, event); err != nil {
			return err
		}

		eventID := event.ID
		result.Adjusted = true
		result.EntryID = &entryID
		result.EventID = &eventID
		return nil
	})
	if err != nil {
		log.Warn("Balance adjustment failed", "error", err)
		return nil, err
	}

	if result.Adjusted {
		log.Info("Balance adjusted", "delta", result.Delta, "amount", result.Account.Amount)
	} else {
		log.Info("No balance adjustment needed", "amount", result.Account.Amount)
	}
	return result, nil
}

// Transfer moves money between two accounts in one transaction. Funds are
// checked before the transaction starts and again under the row locks.
func (s *OperatorService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	log := logger.FromContext(ctx, s.logger).With("from_account_id", req.FromAccountID, "to_account_id", req.ToAccountID)

	if req.FromAccountID == req.ToAccountID {
		return nil, shared.NewValidationError("to_account_id", "must differ from from_account_id")
	}
	if err := shared.RequirePositive("amount", req.Amount); err != nil {
		return nil, err
	}
	date := s.dateOrToday(req.Date)

	source, err := s.ledger.Read(ctx, req.FromAccountID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.Read(ctx, req.ToAccountID); err != nil {
		return nil, err
	}
	if !source.CanWithdraw(req.Amount) {
		log.Warn("Transfer rejected", "available", source.Amount, "requested", req.Amount)
		return nil, account.ErrInsufficientFunds{AccountID: source.ID, Available: source.Amount, Requested: req.Amount}
	}

	result := &TransferResult{}
	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		from, to, err := s.lockPair(ctx, tx, req.FromAccountID, req.ToAccountID)
		if err != nil {
			return err
		}
		if !from.CanWithdraw(req.Amount) {
			return account.ErrInsufficientFunds{AccountID: from.ID, Available: from.Amount, Requested: req.Amount}
		}

		fromEntry, err := s.transferLeg(ctx, tx, from.ID, shared.TransactionTypeExpense, req, date,
			fmt.Sprintf("[transfer to %s]", to.Name))
		if err != nil {
			return err
		}
		toEntry, err := s.transferLeg(ctx, tx, to.ID, shared.TransactionTypeIncome, req, date,
			fmt.Sprintf("[transfer from %s]", from.Name))
		if err != nil {
			return err
		}

		result.From = fromEntry.account
		result.To = toEntry.account
		result.FromEntryID = fromEntry.entryID
		result.ToEntryID = toEntry.entryID
		return nil
	})
	if err != nil {
		log.Warn("Transfer failed", "error", err)
		return nil, err
	}

	log.Info("Transfer completed", "amount", req.Amount, "from_balance", result.From.Amount, "to_balance", result.To.Amount)
	return result, nil
}

// lockPair locks both accounts in ascending id order so opposite transfers cannot deadlock
func (s *OperatorService) lockPair(ctx context.Context, tx pgx.Tx, fromID, toID int64) (*account.Account, *account.Account, error) {
	firstID, secondID := fromID, toID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.ledger.Lock(ctx, tx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := s.ledger.Lock(ctx, tx, secondID)
	if err != nil {
		return nil, nil, err
	}
	if first.ID == fromID {
		return first, second, nil
	}
	return second, first, nil
}

type leg struct {
	account *account.Account
	entryID int64
}

func (s *OperatorService) transferLeg(ctx context.Context, tx pgx.Tx, accountID int64, entryType shared.TransactionType,
	req TransferRequest, date time.Time, suffix string) (*leg, error) {
	e := &entry.Entry{
		AccountID:   accountID,
		Type:        entryType,
		Amount:      req.Amount,
		Date:        date,
		Description: withSuffix(req.Description, suffix),
		Kind:        entry.KindSingle,
		Period:      recurrence.TypeNone,
		Status:      entry.StatusSettled,
		Source:      entry.SourceTransfer,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.entryRepo.WithTx(tx).Create(ctx, e); err != nil {
		return nil, err
	}

	delta := e.Contribution()
	acc, err := s.ledger.ApplyDelta(ctx, tx, accountID, delta)
	if err != nil {
		return nil, err
	}

	entryID := e.ID
	if err := s.history.Append(ctx, tx, &history.Event{
		AccountID:      accountID,
		ChangeType:     shared.ChangeTypeTransfer,
		RelatedEntryID: &entryID,
		AmountChange:   delta,
		BalanceAfter:   acc.Amount,
		Description:    e.Description,
	}); err != nil {
		return nil, err
	}

	return &leg{account: acc, entryID: e.ID}, nil
}

// VerifyAccount replays the account's history and compares it with the stored amount
func (s *OperatorService) VerifyAccount(ctx context.Context, accountID int64) (*history.Replay, error) {
	acc, err := s.ledger.Read(ctx, accountID)
	if err != nil {
		return nil, err
	}
	events, err := s.history.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	replay := history.ReplayEvents(accountID, acc.InitialBalance, acc.Amount, events)
	if !replay.Consistent {
		logger.FromContext(ctx, s.logger).Error("Account history does not reconcile",
			"account_id", accountID,
			"replayed", replay.ReplayedAmount,
			"current", replay.CurrentAmount,
		)
	}
	return replay, nil
}

func (s *OperatorService) dateOrToday(d time.Time) time.Time {
	if d.IsZero() {
		d = time.Now().In(s.location)
	}
	return shared.DateOnly(d)
}

func withSuffix(description, suffix string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return suffix
	}
	return description + " " + suffix
}
