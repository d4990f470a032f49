/*
account.go - Accounts, sweep rules, and preciation

PURPOSE:
  An Account is a named balance: checking, brokerage, mortgage. It can
  appreciate or depreciate on a schedule (preciation), carry a fixed-rate
  loan amortization table, and define sweep rules that move money to or
  from a paired account when the balance crosses a watermark.

PRECIATION:
  One period's growth or decline. Two modes:
  - Amortized: if the amortization table has an entry for the current
    occurrence, apply its principal component and stop. The generic rate
    formula does not also apply for that period.
  - Rate-based: days between this occurrence and the next, as a fraction
    of a year, times the APR (optionally perturbed by variance).

OWNERSHIP:
  Accounts are owned by the Ledger's registry. Balances change only
  through Ledger credit/debit, sweeps, or the account's own Preciate.
*/
package engine

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// normalizeName lowercases account names so registry lookups, sweep
// destinations, and cashflow bindings all agree.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// =============================================================================
// SWEEP RULE - Threshold transfer binding
// =============================================================================

// SweepRule pairs an account with a destination and a watermark.
// For sweep_out the watermark is a high-water mark: balance above it is
// moved to the destination. For sweep_in it is a low-water mark: the
// shortfall is pulled from the destination. Immutable after construction.
type SweepRule struct {
	Destination string
	Watermark   decimal.Decimal
}

func NewSweepRule(destination string, watermark decimal.Decimal) *SweepRule {
	return &SweepRule{Destination: normalizeName(destination), Watermark: watermark}
}

// =============================================================================
// ACCOUNT
// =============================================================================

// Account is an asset or debt with an optional growth schedule.
type Account struct {
	Name  string
	Value decimal.Decimal

	// Optional, loaded from configuration.
	Rate       float64 // APR
	StdDev     float64 // rate variance when variance mode is on
	Liquidity  float64 // days required to turn into cash
	Schedule   *Schedule
	SweepOut   *SweepRule
	SweepIn    *SweepRule
	StartDate  *Date // loan origination; triggers amortization
	LoanMonths int   // fixed term; zero means interest-only

	// Populated by BuildAmortization.
	amortization map[Date]AmortizationEntry
	payment      decimal.Decimal
}

// NewAccount creates an account. Names are case-normalized; the registry
// treats "Checking" and "checking" as the same account.
func NewAccount(name string, value decimal.Decimal) *Account {
	return &Account{Name: normalizeName(name), Value: value}
}

// AmortizationEntry returns the table entry for a date, if present.
func (a *Account) AmortizationEntry(d Date) (AmortizationEntry, bool) {
	e, ok := a.amortization[d]
	return e, ok
}

// AmortizationLength returns the number of precomputed payment entries.
func (a *Account) AmortizationLength() int { return len(a.amortization) }

// Payment returns the fixed monthly payment computed by BuildAmortization.
func (a *Account) Payment() decimal.Decimal { return a.payment }

// Preciate applies one period's growth or decline for the occurrence on
// `current`, and returns the schedule's next occurrence so the caller can
// re-enqueue the account. The balance is mutated in place; no other state
// changes.
//
// A loan account (non-empty amortization table) with no entry for the
// current occurrence is a configuration gap: it is reported at warn level
// and the cycle is skipped, but the simulation continues.
func (a *Account) Preciate(current Date, variance *VarianceSource, log *logrus.Logger) (Date, error) {
	next, err := a.Schedule.Next(current)
	if err != nil {
		var stalled *ScheduleStalledError
		if errors.As(err, &stalled) {
			stalled.Name = a.Name
		}
		return Date{}, err
	}

	if entry, ok := a.amortization[current]; ok {
		a.Value = a.Value.Add(entry.Principal)
		log.WithFields(logrus.Fields{
			"account":   a.Name,
			"date":      current.String(),
			"principal": entry.Principal.StringFixed(2),
			"remaining": a.Value.Neg().StringFixed(2),
		}).Debug("amortization entry applied")
		return next, nil
	}
	if len(a.amortization) > 0 {
		log.WithFields(logrus.Fields{
			"account": a.Name,
			"date":    current.String(),
		}).Warn("no amortization entry for due date, skipping preciation cycle")
		return next, nil
	}

	fraction := a.rateFraction(current, next, variance)
	a.Value = a.Value.Mul(decimal.NewFromFloat(1 + fraction))
	return next, nil
}

// rateFraction converts the APR into the rate for the span between two
// occurrences. The effective rate is drawn fresh on every call when
// variance is enabled and the account has a stddev.
func (a *Account) rateFraction(current, next Date, variance *VarianceSource) float64 {
	rate := a.Rate
	if variance != nil {
		rate = variance.Normal(a.Rate, a.StdDev)
	}
	days := current.DaysUntil(next)
	return float64(days) / DaysPerYear * rate
}
