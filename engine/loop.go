/*
loop.go - The day-stepping simulation driver

PURPOSE:
  Steps one calendar day at a time from the ledger's start date
  (exclusive) to its end date (inclusive). Each day:

    1. Dispatch every cashflow due today (insertion order), apply its
       signed amount to the bound account, and re-enqueue it under its
       next occurrence unless it has passed its end bound.
    2. Dispatch every preciation due today (insertion order), and
       re-enqueue the account under its next occurrence. A schedule that
       fails to advance aborts the run with a ScheduleStalledError.
    3. Run sweeps.

ORDERING:
  Within a day, cashflows run before preciations, and preciations before
  sweeps. Same-day events within one category dispatch in insertion
  order (FIFO) - an explicit contract, pinned by tests.

DETERMINISM:
  With variance disabled a run is bit-identical for identical inputs.
  With variance enabled, the seed recorded on the Result replays the run.
*/
package engine

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// SimulationOptions configures a run. The zero value is a deterministic
// run with no variance and no daily series.
type SimulationOptions struct {
	// Variance enables normal-distribution perturbation of rates and
	// cashflow amounts that carry a stddev.
	Variance bool

	// Seed for the variance source. Zero picks a time-based seed; the
	// effective seed is recorded on the Result.
	Seed int64

	// RecordDaily captures a worth/assets/debt snapshot for every
	// simulated day.
	RecordDaily bool

	Logger *logrus.Logger
}

// AccountBalance is one line of the simulation's output listing.
type AccountBalance struct {
	Name  string
	Value decimal.Decimal
}

// DailySnapshot is the ledger's aggregate state at the end of one day.
type DailySnapshot struct {
	Date   Date
	Worth  decimal.Decimal
	Assets decimal.Decimal
	Debt   decimal.Decimal
}

// Result is the simulation's output: final aggregates and per-account
// balances, plus the optional daily series.
type Result struct {
	Start    Date
	End      Date
	Worth    decimal.Decimal
	Assets   decimal.Decimal
	Debt     decimal.Decimal
	Balances []AccountBalance
	Daily    []DailySnapshot
	Variance bool
	Seed     int64
}

// =============================================================================
// SIMULATOR
// =============================================================================

// Simulator drives one ledger through its date range.
type Simulator struct {
	ledger      *Ledger
	variance    *VarianceSource
	recordDaily bool
	log         *logrus.Logger
}

// NewSimulator binds a ledger to its run options.
func NewSimulator(l *Ledger, opts SimulationOptions) *Simulator {
	log := opts.Logger
	if log == nil {
		log = l.log
	}
	return &Simulator{
		ledger:      l,
		variance:    NewVarianceSource(opts.Variance, opts.Seed),
		recordDaily: opts.RecordDaily,
		log:         log,
	}
}

// Run validates sweeps, then steps from the day after the start date
// through the end date. Errors inside the loop abort immediately with
// full context; the ledger state at that point is not meaningful.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	l := s.ledger
	if err := l.ValidateSweeps(); err != nil {
		return nil, err
	}

	var daily []DailySnapshot
	for day := l.StartDate.AddDays(1); !day.After(l.EndDate); day = day.AddDays(1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.step(day); err != nil {
			return nil, err
		}
		if s.recordDaily {
			daily = append(daily, DailySnapshot{
				Date:   day,
				Worth:  l.Worth(),
				Assets: l.Assets(),
				Debt:   l.Debt(),
			})
		}
	}

	balances := make([]AccountBalance, 0, len(l.order))
	for _, a := range l.Accounts() {
		balances = append(balances, AccountBalance{Name: a.Name, Value: a.Value})
	}
	return &Result{
		Start:    l.StartDate,
		End:      l.EndDate,
		Worth:    l.Worth(),
		Assets:   l.Assets(),
		Debt:     l.Debt(),
		Balances: balances,
		Daily:    daily,
		Variance: s.variance.Enabled(),
		Seed:     s.variance.Seed(),
	}, nil
}

// step runs one simulated day: cashflows, then preciations, then sweeps.
func (s *Simulator) step(day Date) error {
	l := s.ledger

	for _, flow := range l.cashflows.pop(day) {
		if err := s.dispatchCashflow(day, flow); err != nil {
			return err
		}
	}

	for _, account := range l.preciations.pop(day) {
		s.log.WithFields(logrus.Fields{
			"account": account.Name,
			"date":    day.String(),
		}).Debug("preciating")
		next, err := account.Preciate(day, s.variance, s.log)
		if err != nil {
			return err
		}
		l.preciations.push(next, account)
	}

	l.Sweep()
	return nil
}

// dispatchCashflow applies one occurrence of a flow and re-enqueues it.
func (s *Simulator) dispatchCashflow(day Date, flow *Cashflow) error {
	l := s.ledger

	amount := flow.Amount
	if s.variance.Enabled() && flow.StdDev > 0 {
		amount = decimal.NewFromFloat(s.variance.Normal(flow.Amount.InexactFloat64(), flow.StdDev))
	}
	if amount.IsNegative() {
		if err := l.DebitAccount(flow.AccountName, amount.Neg()); err != nil {
			return err
		}
	} else {
		if err := l.CreditAccount(flow.AccountName, amount); err != nil {
			return err
		}
	}
	s.log.WithFields(logrus.Fields{
		"cashflow": flow.Name,
		"date":     day.String(),
		"amount":   amount.StringFixed(2),
		"worth":    l.Worth().StringFixed(2),
	}).Debug("cashflow dispatched")

	next, err := flow.Schedule.Next(day)
	if err != nil {
		var stalled *ScheduleStalledError
		if errors.As(err, &stalled) {
			stalled.Name = flow.Name
		}
		return err
	}
	if flow.Retired(next) {
		s.log.WithField("cashflow", flow.Name).Debug("cashflow retired")
		return nil
	}
	l.cashflows.push(next, flow)
	return nil
}
