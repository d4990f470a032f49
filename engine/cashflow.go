package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CASHFLOW - Recurring money movement
// =============================================================================

// Category tags a flow for downstream analysis (emergency-fund sizing,
// inflation adjustment). It does not change dispatch behavior.
type Category string

const (
	CategoryIncome  Category = "income"
	CategoryExpense Category = "expense"
)

// Cashflow is a named recurring transfer: payday, rent, daycare, IRA
// contributions. The amount is signed; deposits are positive and
// withdrawals negative. One Cashflow object persists for the whole
// simulation and is re-enqueued under its next occurrence after each
// dispatch.
type Cashflow struct {
	Name        string
	AccountName string
	Schedule    Schedule
	Amount      decimal.Decimal
	Start       *Date // no occurrences before this day
	End         *Date // the flow retires after this day
	Category    Category
	StdDev      float64 // variance for variable bills and income
}

// NewCashflow creates a flow bound to the named account.
func NewCashflow(name, account string, sched Schedule, amount decimal.Decimal) *Cashflow {
	return &Cashflow{
		Name:        name,
		AccountName: normalizeName(account),
		Schedule:    sched,
		Amount:      amount,
	}
}

// FirstDue returns the flow's first occurrence strictly after the
// simulation start, honoring the flow's own start bound.
func (c *Cashflow) FirstDue(simStart Date) (Date, error) {
	anchor := simStart
	if c.Start != nil && c.Start.After(simStart) {
		// A flow starting later should fire on its start date if that
		// day matches the schedule.
		anchor = c.Start.AddDays(-1)
	}
	return c.Schedule.Next(anchor)
}

// Retired reports whether the flow has passed its end bound.
func (c *Cashflow) Retired(next Date) bool {
	return c.End != nil && next.After(*c.End)
}
