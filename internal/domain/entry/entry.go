package entry

import (
	"fmt"
	"strings"
	"time"

	"github.com/blueshark0/pas/internal/domain/recurrence"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Kind tells how an entry repeats
type Kind string

const (
	KindSingle      Kind = "SINGLE"
	KindPeriodic    Kind = "PERIODIC"
	KindInstallment Kind = "INSTALLMENT"
)

// Status is the settlement state; only settled entries affect the balance
type Status string

const (
	StatusSettled   Status = "SETTLED"
	StatusUnsettled Status = "UNSETTLED"
)

// Source records which path created the entry
type Source string

const (
	SourceManual     Source = "MANUAL"
	SourceTransfer   Source = "TRANSFER"
	SourceAdjustment Source = "ADJUSTMENT"
	SourceGenerated  Source = "GENERATED"
)

// Installment describes one instalment of a larger purchase
type Installment struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalPeriods  int             `json:"total_periods"`
	CurrentPeriod int             `json:"current_period"`
}

func (i *Installment) validate() error {
	if i == nil {
		return nil
	}
	if err := shared.RequirePositive("installment.total_amount", i.TotalAmount); err != nil {
		return err
	}
	if i.TotalPeriods < 1 {
		return shared.NewValidationError("installment.total_periods", "must be at least 1")
	}
	if i.CurrentPeriod < 1 || i.CurrentPeriod > i.TotalPeriods {
		return shared.NewValidationError("installment.current_period", "must be between 1 and total_periods")
	}
	return nil
}

// Entry is an income or expense record owned by an account
type Entry struct {
	ID             int64                  `json:"id"`
	AccountID      int64                  `json:"account_id"`
	Type           shared.TransactionType `json:"type"`
	Amount         decimal.Decimal        `json:"amount"`
	Date           time.Time              `json:"date"`
	Category       string                 `json:"category,omitempty"`
	Description    string                 `json:"description,omitempty"`
	Kind           Kind                   `json:"kind"`
	Period         recurrence.Type        `json:"period"`
	Installment    *Installment           `json:"installment,omitempty"`
	Status         Status                 `json:"status"`
	Source         Source                 `json:"source"`
	NextOccurrence *time.Time             `json:"next_occurrence,omitempty"`
	TemplateID     *int64                 `json:"template_id,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Draft carries the caller supplied fields of a new entry
type Draft struct {
	AccountID   int64
	Type        shared.TransactionType
	Amount      decimal.Decimal
	Date        time.Time
	Category    string
	Description string
	Kind        Kind
	Period      recurrence.Type
	Installment *Installment
	Status      Status
	Source      Source
}

// New validates a draft and builds the entry. Settled periodic entries get
// their next occurrence scheduled from the entry date.
func New(d Draft) (*Entry, error) {
	if d.AccountID <= 0 {
		return nil, shared.NewValidationError("account_id", "is required")
	}
	if !d.Type.Valid() {
		return nil, shared.NewValidationError("type", "must be INCOME or EXPENSE")
	}
	if err := shared.RequirePositive("amount", d.Amount); err != nil {
		return nil, err
	}
	if d.Date.IsZero() {
		return nil, shared.NewValidationError("date", "is required")
	}
	if d.Kind == "" {
		d.Kind = KindSingle
	}
	if d.Period == "" {
		d.Period = recurrence.TypeNone
	}
	if d.Status == "" {
		d.Status = StatusSettled
	}
	if d.Source == "" {
		d.Source = SourceManual
	}

	switch d.Kind {
	case KindSingle:
	case KindPeriodic:
		if !(recurrence.Rule{Type: d.Period}).IsRecurring() {
			return nil, shared.NewValidationError("period", "is required for periodic entries")
		}
	case KindInstallment:
		if d.Installment == nil {
			return nil, shared.NewValidationError("installment", "is required for installment entries")
		}
	default:
		return nil, shared.NewValidationError("kind", fmt.Sprintf("unknown kind %s", d.Kind))
	}
	if err := d.Installment.validate(); err != nil {
		return nil, err
	}
	if d.Status != StatusSettled && d.Status != StatusUnsettled {
		return nil, shared.NewValidationError("status", "must be SETTLED or UNSETTLED")
	}

	now := time.Now()
	e := &Entry{
		AccountID:   d.AccountID,
		Type:        d.Type,
		Amount:      d.Amount,
		Date:        shared.DateOnly(d.Date),
		Category:    strings.TrimSpace(d.Category),
		Description: strings.TrimSpace(d.Description),
		Kind:        d.Kind,
		Period:      d.Period,
		Installment: d.Installment,
		Status:      d.Status,
		Source:      d.Source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if e.Kind == KindPeriodic {
		next := recurrence.NextDate(e.Date, e.Period, 1)
		e.NextOccurrence = &next
	}
	return e, nil
}

// Contribution is the signed delta this entry currently holds in its account
func (e *Entry) Contribution() decimal.Decimal {
	if e.Status != StatusSettled {
		return decimal.Zero
	}
	return e.Type.Signed(e.Amount)
}

// Patch carries the optional fields of an update request
type Patch struct {
	Type        *shared.TransactionType
	Amount      *decimal.Decimal
	Date        *time.Time
	Category    *string
	Description *string
	Status      *Status
}

// Apply updates the entry and returns the delta between its old and new contribution
func (e *Entry) Apply(p Patch) (decimal.Decimal, error) {
	before := e.Contribution()
	updated := *e

	if p.Type != nil {
		if !p.Type.Valid() {
			return decimal.Zero, shared.NewValidationError("type", "must be INCOME or EXPENSE")
		}
		updated.Type = *p.Type
	}
	if p.Amount != nil {
		if err := shared.RequirePositive("amount", *p.Amount); err != nil {
			return decimal.Zero, err
		}
		updated.Amount = *p.Amount
	}
	if p.Date != nil {
		updated.Date = shared.DateOnly(*p.Date)
	}
	if p.Category != nil {
		updated.Category = strings.TrimSpace(*p.Category)
	}
	if p.Description != nil {
		updated.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		if *p.Status != StatusSettled && *p.Status != StatusUnsettled {
			return decimal.Zero, shared.NewValidationError("status", "must be SETTLED or UNSETTLED")
		}
		updated.Status = *p.Status
	}

	updated.UpdatedAt = time.Now()
	*e = updated
	return e.Contribution().Sub(before), nil
}

// IsDueTemplate reports whether a periodic entry should generate an occurrence on asOf
func (e *Entry) IsDueTemplate(asOf time.Time) bool {
	return e.Kind == KindPeriodic && e.Status == StatusSettled &&
		e.NextOccurrence != nil && !e.NextOccurrence.After(asOf)
}

// Occurrence builds the generated entry for the template's next occurrence and
// advances the template's schedule
func (e *Entry) Occurrence() *Entry {
	if e.NextOccurrence == nil {
		return nil
	}
	templateID := e.ID
	now := time.Now()
	occurrence := &Entry{
		AccountID:   e.AccountID,
		Type:        e.Type,
		Amount:      e.Amount,
		Date:        *e.NextOccurrence,
		Category:    e.Category,
		Description: e.Description,
		Kind:        KindSingle,
		Period:      recurrence.TypeNone,
		Status:      StatusSettled,
		Source:      SourceGenerated,
		TemplateID:  &templateID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := recurrence.NextDate(*e.NextOccurrence, e.Period, 1)
	e.NextOccurrence = &next
	e.UpdatedAt = now
	return occurrence
}
