package shared

import "github.com/shopspring/decimal"

// TransactionType is the sign convention shared by ledger entries and preset transactions
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Signed returns +amount for income and -amount for expense
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// ParseTransactionType accepts the canonical upper-case names and their lower-case forms
func ParseTransactionType(s string) (TransactionType, error) {
	switch s {
	case "INCOME", "income":
		return TransactionTypeIncome, nil
	case "EXPENSE", "expense":
		return TransactionTypeExpense, nil
	}
	return "", NewValidationError("type", "must be INCOME or EXPENSE")
}

// ChangeType classifies a balance history event
type ChangeType string

const (
	ChangeTypeInit             ChangeType = "INIT"
	ChangeTypeIncomeExecution  ChangeType = "INCOME_EXECUTION"
	ChangeTypeExpenseExecution ChangeType = "EXPENSE_EXECUTION"
	ChangeTypeManualEdit       ChangeType = "MANUAL_EDIT"
	ChangeTypeTransfer         ChangeType = "TRANSFER"
	ChangeTypeEntry            ChangeType = "ENTRY"
)

// ParseChangeType validates a change type filter value
func ParseChangeType(s string) (ChangeType, error) {
	switch ct := ChangeType(s); ct {
	case ChangeTypeInit, ChangeTypeIncomeExecution, ChangeTypeExpenseExecution,
		ChangeTypeManualEdit, ChangeTypeTransfer, ChangeTypeEntry:
		return ct, nil
	}
	return "", NewValidationError("change_type", "unknown change type "+s)
}

// ExecutionChangeType maps a preset transaction type to its history change type
func ExecutionChangeType(t TransactionType) ChangeType {
	if t == TransactionTypeExpense {
		return ChangeTypeExpenseExecution
	}
	return ChangeTypeIncomeExecution
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
