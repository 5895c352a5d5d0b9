package shared

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for every amount
const MoneyScale = 2

// RoundMoney normalizes an amount to MoneyScale places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// RequirePositive rejects zero, negative, or over-precise amounts
func RequirePositive(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return NewValidationError(field, "must be greater than zero")
	}
	if !d.Equal(RoundMoney(d)) {
		return NewValidationError(field, "must have at most 2 decimal places")
	}
	return nil
}

// RequireNonNegative rejects negative amounts with ErrNegativeAmount
func RequireNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return &ValidationError{Field: field, Reason: "must not be negative", negative: true}
	}
	if !d.Equal(RoundMoney(d)) {
		return NewValidationError(field, "must have at most 2 decimal places")
	}
	return nil
}

// DateLayout is the calendar date format used on the wire
const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar date in t's location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewValidationError(field, "malformed date, expected YYYY-MM-DD")
	}
	return t, nil
}

// EndOfDay returns the last representable instant of t's calendar date
func EndOfDay(t time.Time) time.Time {
	return DateOnly(t).Add(24*time.Hour - time.Nanosecond)
}
