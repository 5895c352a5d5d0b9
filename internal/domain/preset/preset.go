package preset

import (
	"fmt"
	"strings"
	"time"

	"github.com/blueshark0/pas/internal/domain/recurrence"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a preset transaction
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusExecuting  Status = "EXECUTING"
	StatusExecuted   Status = "EXECUTED"
	StatusTerminated Status = "TERMINATED"
)

// ParseStatus validates a status filter value
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(s)); st {
	case StatusPending, StatusExecuting, StatusExecuted, StatusTerminated:
		return st, nil
	}
	return "", shared.NewValidationError("status", "unknown status "+s)
}

// transitions lists every legal move; anything absent is rejected
var transitions = map[Status][]Status{
	StatusPending:   {StatusExecuting, StatusTerminated},
	StatusExecuting: {StatusExecuted, StatusPending},
}

// CanTransition reports whether from -> to is a legal lifecycle move
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transaction is a scheduled, possibly recurring, income or expense definition
type Transaction struct {
	ID            int64                  `json:"id"`
	AccountID     *int64                 `json:"account_id,omitempty"`
	Type          shared.TransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	ExecutionDate time.Time              `json:"execution_date"`
	Description   string                 `json:"description"`
	Status        Status                 `json:"status"`
	Recurrence    recurrence.Rule        `json:"recurrence"`
	PreviousID    *int64                 `json:"previous_id,omitempty"` // Row this occurrence continues
	ExecutedAt    *time.Time             `json:"executed_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// NewTransaction validates input and creates a pending definition
func NewTransaction(txType shared.TransactionType, amount decimal.Decimal, executionDate time.Time,
	description string, rule recurrence.Rule, accountID *int64) (*Transaction, error) {
	if !txType.Valid() {
		return nil, shared.NewValidationError("type", "must be INCOME or EXPENSE")
	}
	if err := shared.RequirePositive("amount", amount); err != nil {
		return nil, err
	}
	if executionDate.IsZero() {
		return nil, shared.NewValidationError("execution_date", "is required")
	}
	if rule.Type == "" {
		rule = recurrence.None()
	}
	if rule.Interval == 0 && !rule.IsRecurring() {
		rule.Interval = 1
	}
	if err := rule.Validate(executionDate); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Transaction{
		AccountID:     accountID,
		Type:          txType,
		Amount:        amount,
		ExecutionDate: shared.DateOnly(executionDate),
		Description:   strings.TrimSpace(description),
		Status:        StatusPending,
		Recurrence:    rule,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsRecurring reports whether executing this row schedules a successor
func (t *Transaction) IsRecurring() bool {
	return t.Recurrence.IsRecurring()
}

// SignedAmount is the delta this definition applies to its account
func (t *Transaction) SignedAmount() decimal.Decimal {
	return t.Type.Signed(t.Amount)
}

// Transition moves the row to another state if the lifecycle allows it
func (t *Transaction) Transition(to Status) error {
	if !CanTransition(t.Status, to) {
		return ErrInvalidTransition{ID: t.ID, From: t.Status, To: to}
	}
	t.Status = to
	t.UpdatedAt = time.Now()
	if to == StatusExecuted {
		executedAt := t.UpdatedAt
		t.ExecutedAt = &executedAt
	}
	return nil
}

// Successor builds the next pending occurrence of an executed recurring row.
// It returns nil when the row does not recur or the next date is past the end date.
func (t *Transaction) Successor() *Transaction {
	if t.Status != StatusExecuted {
		return nil
	}
	next, ok := t.Recurrence.Next(t.ExecutionDate)
	if !ok {
		return nil
	}

	now := time.Now()
	previousID := t.ID
	return &Transaction{
		AccountID:     t.AccountID,
		Type:          t.Type,
		Amount:        t.Amount,
		ExecutionDate: next,
		Description:   t.Description,
		Status:        StatusPending,
		Recurrence:    t.Recurrence,
		PreviousID:    &previousID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Patch carries the optional fields of an update request
type Patch struct {
	Type          *shared.TransactionType
	Amount        *decimal.Decimal
	ExecutionDate *time.Time
	Description   *string
	Recurrence    *recurrence.Rule
	AccountID     *int64
}

// Apply edits a pending definition; executed, executing and terminated rows are immutable
func (t *Transaction) Apply(p Patch) error {
	if t.Status != StatusPending {
		return ErrInvalidTransition{ID: t.ID, From: t.Status, To: StatusPending}
	}

	updated := *t
	if p.Type != nil {
		if !p.Type.Valid() {
			return shared.NewValidationError("type", "must be INCOME or EXPENSE")
		}
		updated.Type = *p.Type
	}
	if p.Amount != nil {
		if err := shared.RequirePositive("amount", *p.Amount); err != nil {
			return err
		}
		updated.Amount = *p.Amount
	}
	if p.ExecutionDate != nil {
		updated.ExecutionDate = shared.DateOnly(*p.ExecutionDate)
	}
	if p.Description != nil {
		updated.Description = strings.TrimSpace(*p.Description)
	}
	if p.Recurrence != nil {
		updated.Recurrence = *p.Recurrence
	}
	if p.AccountID != nil {
		updated.AccountID = p.AccountID
	}
	if err := updated.Recurrence.Validate(updated.ExecutionDate); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now()
	*t = updated
	return nil
}

// CanDelete reports whether the row may be removed
func (t *Transaction) CanDelete() error {
	if t.Status != StatusPending {
		return ErrInvalidTransition{ID: t.ID, From: t.Status, To: "DELETED"}
	}
	return nil
}

// ErrInvalidTransition reports an illegal lifecycle move
type ErrInvalidTransition struct {
	ID   int64
	From Status
	To   Status
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("preset transaction %d cannot move from %s to %s", e.ID, e.From, e.To)
}

func (e ErrInvalidTransition) Is(target error) bool {
	return target == shared.ErrInvalidStateTransition
}

// ErrPresetNotFound indicates a missing preset transaction
type ErrPresetNotFound struct {
	ID int64
}

func (e ErrPresetNotFound) Error() string {
	return fmt.Sprintf("preset transaction not found: %d", e.ID)
}

func (e ErrPresetNotFound) Is(target error) bool {
	return target == shared.ErrNotFound
}
