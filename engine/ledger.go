/*
ledger.go - Account registry, aggregates, and sweep execution

PURPOSE:
  The Ledger owns the set of accounts for one simulation run, the
  date-keyed queues of pending cashflow and preciation events, and the
  derived aggregates (worth, assets, debt). It also validates and
  executes sweep rules.

INVARIANTS:
  - worth = assets + debt, always; all three are computed on demand from
    account balances, never cached.
  - Accounts are registered once at load time. Duplicate names are an
    explicit error, never a silent overwrite.
  - Iteration over accounts (sweeps, aggregates, output) follows
    registration order, which makes runs reproducible. Go map order
    would not.

SWEEPS:
  Run once per simulated day, one pass in registration order. Cycle
  detection between mutually dependent accounts is an explicit non-goal;
  the single pass bounds any cycle to one transfer per account per day.
  ValidateSweeps rejects dangling and self-referencing rules before the
  run starts.
*/
package engine

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Ledger is the bundle of holdings for one simulation run.
type Ledger struct {
	accounts map[string]*Account
	order    []string // registration order, the documented iteration order

	cashflows   *eventQueue[*Cashflow]
	preciations *eventQueue[*Account]

	StartDate   Date
	EndDate     Date
	Inflation   float64
	PropertyTax float64

	log *logrus.Logger
}

// NewLedger creates an empty ledger for the given simulation window.
func NewLedger(start, end Date, log *logrus.Logger) *Ledger {
	if log == nil {
		log = logrus.New()
	}
	return &Ledger{
		accounts:    make(map[string]*Account),
		cashflows:   newEventQueue[*Cashflow](),
		preciations: newEventQueue[*Account](),
		StartDate:   start,
		EndDate:     end,
		log:         log,
	}
}

// =============================================================================
// REGISTRATION
// =============================================================================

// AddAccount registers an account by normalized name. An account with a
// start date gets its amortization table built first; an account with a
// schedule is enqueued for its first preciation after the simulation
// start. Registering the same name twice is a DuplicateAccountError.
func (l *Ledger) AddAccount(a *Account) error {
	if _, exists := l.accounts[a.Name]; exists {
		return &DuplicateAccountError{Name: a.Name}
	}

	if a.StartDate != nil {
		if err := a.BuildAmortization(l.log); err != nil {
			return err
		}
	}

	l.accounts[a.Name] = a
	l.order = append(l.order, a.Name)

	if a.Schedule != nil {
		first, err := a.Schedule.Next(l.StartDate)
		if err != nil {
			return &ScheduleStalledError{Name: a.Name, Expr: a.Schedule.Expr(), On: l.StartDate}
		}
		l.preciations.push(first, a)
		l.log.WithFields(logrus.Fields{
			"account": a.Name,
			"first":   first.String(),
		}).Debug("preciation scheduled")
	}
	return nil
}

// AddCashflow enqueues a flow at its first occurrence after the
// simulation start, honoring the flow's own start bound. A flow already
// past its end bound is dropped.
func (l *Ledger) AddCashflow(c *Cashflow) error {
	first, err := c.FirstDue(l.StartDate)
	if err != nil {
		return &ScheduleStalledError{Name: c.Name, Expr: c.Schedule.Expr(), On: l.StartDate}
	}
	if c.Retired(first) {
		l.log.WithField("cashflow", c.Name).Debug("cashflow already ended, dropped")
		return nil
	}
	l.cashflows.push(first, c)
	l.log.WithFields(logrus.Fields{
		"cashflow": c.Name,
		"first":    first.String(),
	}).Debug("cashflow scheduled")
	return nil
}

// Account returns a registered account, or an UnknownAccountError.
func (l *Ledger) Account(name string) (*Account, error) {
	a, ok := l.accounts[normalizeName(name)]
	if !ok {
		return nil, &UnknownAccountError{Name: name}
	}
	return a, nil
}

// Accounts returns all accounts in registration order.
func (l *Ledger) Accounts() []*Account {
	out := make([]*Account, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.accounts[name])
	}
	return out
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateSweeps confirms every sweep rule points at a registered
// account other than its own. Must be called before the simulation
// starts; a dangling reference is an InvalidSweepError and prevents the
// run entirely. Transfer cycles between accounts are not detected.
func (l *Ledger) ValidateSweeps() error {
	for _, name := range l.order {
		a := l.accounts[name]
		if err := l.checkSweep(name, a.SweepOut, "sweep_out"); err != nil {
			return err
		}
		if err := l.checkSweep(name, a.SweepIn, "sweep_in"); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) checkSweep(owner string, rule *SweepRule, direction string) error {
	if rule == nil {
		return nil
	}
	if _, ok := l.accounts[rule.Destination]; !ok || rule.Destination == owner {
		return &InvalidSweepError{Account: owner, Destination: rule.Destination, Direction: direction}
	}
	return nil
}

// =============================================================================
// SWEEP EXECUTION
// =============================================================================

// Sweep rebalances accounts against their watermarks: excess above a
// sweep_out watermark moves to the destination, and a shortfall below a
// sweep_in watermark is pulled from the destination. One pass, in
// registration order.
func (l *Ledger) Sweep() {
	for _, name := range l.order {
		a := l.accounts[name]
		if a.SweepOut != nil && a.Value.GreaterThan(a.SweepOut.Watermark) {
			dest := l.accounts[a.SweepOut.Destination]
			move := a.Value.Sub(a.SweepOut.Watermark)
			a.Value = a.Value.Sub(move)
			dest.Value = dest.Value.Add(move)
			l.log.WithFields(logrus.Fields{
				"from":   a.Name,
				"to":     dest.Name,
				"amount": move.StringFixed(2),
			}).Debug("sweep out")
		}
		if a.SweepIn != nil && a.Value.LessThan(a.SweepIn.Watermark) {
			dest := l.accounts[a.SweepIn.Destination]
			move := a.SweepIn.Watermark.Sub(a.Value)
			a.Value = a.Value.Add(move)
			dest.Value = dest.Value.Sub(move)
			l.log.WithFields(logrus.Fields{
				"from":   dest.Name,
				"to":     a.Name,
				"amount": move.StringFixed(2),
			}).Debug("sweep in")
		}
	}
}

// =============================================================================
// BALANCE MUTATION
// =============================================================================

// CreditAccount adds funds to a named account.
func (l *Ledger) CreditAccount(name string, amount decimal.Decimal) error {
	a, err := l.Account(name)
	if err != nil {
		return err
	}
	a.Value = a.Value.Add(amount)
	return nil
}

// DebitAccount removes funds from a named account.
func (l *Ledger) DebitAccount(name string, amount decimal.Decimal) error {
	a, err := l.Account(name)
	if err != nil {
		return err
	}
	a.Value = a.Value.Sub(amount)
	return nil
}

// =============================================================================
// AGGREGATES - computed on demand, never cached
// =============================================================================

// Worth is the sum of all holdings.
func (l *Ledger) Worth() decimal.Decimal {
	sum := decimal.Zero
	for _, name := range l.order {
		sum = sum.Add(l.accounts[name].Value)
	}
	return sum
}

// Assets is the sum of positive balances.
func (l *Ledger) Assets() decimal.Decimal {
	sum := decimal.Zero
	for _, name := range l.order {
		if v := l.accounts[name].Value; v.IsPositive() {
			sum = sum.Add(v)
		}
	}
	return sum
}

// Debt is the sum of negative balances.
func (l *Ledger) Debt() decimal.Decimal {
	sum := decimal.Zero
	for _, name := range l.order {
		if v := l.accounts[name].Value; v.IsNegative() {
			sum = sum.Add(v)
		}
	}
	return sum
}
