package account

import (
	"strings"
	"time"

	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Kind is an open enumeration of account kinds; unknown values are stored as KindOther
type Kind string

const (
	KindCash    Kind = "CASH"
	KindCard    Kind = "CARD"
	KindCredit  Kind = "CREDIT"
	KindVirtual Kind = "VIRTUAL"
	KindOther   Kind = "OTHER"
)

// ParseKind normalizes a free-form kind
func ParseKind(s string) Kind {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case KindCash, KindCard, KindCredit, KindVirtual:
		return k
	}
	return KindOther
}

// Account is a ledger account. Amount only changes through the ledger store.
type Account struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Kind           Kind            `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Description    string          `json:"description,omitempty"`
	OpenedOn       time.Time       `json:"opened_on"`
	Version        int             `json:"version"` // For optimistic locking
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewAccount creates an account whose current amount starts at the initial balance
func NewAccount(name string, kind Kind, initialBalance decimal.Decimal, openedOn time.Time, description string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "cannot be empty")
	}
	if err := shared.RequireNonNegative("initial_balance", initialBalance); err != nil {
		return nil, err
	}
	if openedOn.IsZero() {
		openedOn = time.Now()
	}

	now := time.Now()
	return &Account{
		Name:           name,
		Kind:           ParseKind(string(kind)),
		Amount:         initialBalance,
		InitialBalance: initialBalance,
		Description:    description,
		OpenedOn:       shared.DateOnly(openedOn),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanWithdraw checks if the account covers the given amount
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Amount.GreaterThanOrEqual(amount)
}

// DeltaTo returns the signed delta that moves the current amount to target
func (a *Account) DeltaTo(target decimal.Decimal) decimal.Decimal {
	return target.Sub(a.Amount)
}

// ApplyDelta accumulates a signed delta into the in-memory aggregate
func (a *Account) ApplyDelta(delta decimal.Decimal) {
	a.Amount = shared.RoundMoney(a.Amount.Add(delta))
	a.Version++
	a.UpdatedAt = time.Now()
}
