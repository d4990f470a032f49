/*
Package engine provides the net-worth simulation core.

PURPOSE:
  This package contains the types and algorithms for projecting an
  individual's net worth forward in time: named accounts that accrue
  interest or pay down loans, recurring cashflows driven by cron-style
  schedules, threshold-triggered sweeps between accounts, and the
  day-stepping simulation loop that ties them together.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: A calendar day (UTC midnight), used as event-queue keys
  - Money helpers: decimal.Decimal constructors for balances/amounts

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Determinism: With variance disabled, identical inputs produce
     bit-identical outputs; variance is driven by a seedable source
  3. Explicit state: Schedules are immutable rules; cursors are plain
     Date values passed in and out, never hidden iterator state

SEE ALSO:
  - schedule.go: Cron-backed recurrence rules
  - account.go: Account and Preciate
  - ledger.go: Account registry, aggregates, sweeps
  - loop.go: The day-stepping simulation driver
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Calendar day, comparable, usable as a map key
// =============================================================================

// Date is a calendar day. The embedded instant is always UTC midnight,
// so Date values compare with == and key event queues.
type Date struct {
	t time.Time
}

// DateLayout is the wire format for dates in configuration and output.
const DateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{t: d.t.AddDate(n, 0, 0)} }

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Time returns the UTC midnight instant for this day.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format(DateLayout) }

// =============================================================================
// MONEY - decimal helpers
// =============================================================================

// DaysPerYear converts day spans into year fractions for APR math.
const DaysPerYear = 365.25

// Money builds a decimal dollar amount from a float configuration value.
func Money(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// MustMoney parses a decimal string and panics on malformed input.
// For tests and constants only.
func MustMoney(s string) decimal.Decimal { return decimal.RequireFromString(s) }
