// Package recurrence computes successive occurrence dates for periodic
// entries and recurring preset transactions.
package recurrence

import (
	"strings"
	"time"

	"github.com/blueshark0/pas/internal/domain/shared"
)

// Type is the unit a recurrence interval is counted in
type Type string

const (
	TypeNone      Type = "NONE"
	TypeDaily     Type = "DAILY"
	TypeWeekly    Type = "WEEKLY"
	TypeMonthly   Type = "MONTHLY"
	TypeQuarterly Type = "QUARTERLY"
	TypeYearly    Type = "YEARLY"
)

// ParseType fails closed on anything outside the known set; an empty value means TypeNone
func ParseType(s string) (Type, error) {
	if strings.TrimSpace(s) == "" {
		return TypeNone, nil
	}
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeNone, TypeDaily, TypeWeekly, TypeMonthly, TypeQuarterly, TypeYearly:
		return t, nil
	}
	return "", shared.NewValidationError("recurrence_type", "unknown recurrence type "+s)
}

// NextDate adds interval units of t to current. Month based units clamp the
// day of month to the last valid day of the target month. Types outside the
// known set are treated as monthly; an interval below one counts as one.
func NextDate(current time.Time, t Type, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}

	switch t {
	case TypeDaily:
		return current.AddDate(0, 0, interval)
	case TypeWeekly:
		return current.AddDate(0, 0, 7*interval)
	case TypeQuarterly:
		return addMonthsClamped(current, 3*interval)
	case TypeYearly:
		return addMonthsClamped(current, 12*interval)
	default:
		return addMonthsClamped(current, interval)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Rule describes how a recurring definition repeats
type Rule struct {
	Type     Type       `json:"type"`
	Interval int        `json:"interval"`
	EndDate  *time.Time `json:"end_date,omitempty"`
}

// None is the rule of a one-off definition
func None() Rule {
	return Rule{Type: TypeNone, Interval: 1}
}

// IsRecurring reports whether the rule produces further occurrences
func (r Rule) IsRecurring() bool {
	return r.Type != TypeNone && r.Type != ""
}

// Validate checks the interval and that the end date does not precede start
func (r Rule) Validate(start time.Time) error {
	if !r.IsRecurring() {
		return nil
	}
	if r.Interval < 1 {
		return shared.NewValidationError("recurrence_interval", "must be a positive integer")
	}
	if r.EndDate != nil && r.EndDate.Before(shared.DateOnly(start)) {
		return shared.NewValidationError("recurrence_end_date", "must not be before the execution date")
	}
	return nil
}

// Next returns the occurrence following current, or false when the rule is
// not recurring or the next date falls after the end date.
func (r Rule) Next(current time.Time) (time.Time, bool) {
	if !r.IsRecurring() {
		return time.Time{}, false
	}
	next := NextDate(current, r.Type, r.Interval)
	if r.EndDate != nil && next.After(*r.EndDate) {
		return time.Time{}, false
	}
	return next, true
}
