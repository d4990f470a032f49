/*
amortization.go - Fixed-payment loan schedules

PURPOSE:
  Precomputes the per-period interest/principal split for a fixed-rate,
  fixed-term loan, keyed by the payment dates the account's own schedule
  produces. Preciate then consumes one entry per occurrence instead of
  the generic rate formula.

FORMULA:
  monthly_rate = apr / 12
  payment      = r * P * (1+r)^n / ((1+r)^n - 1)
  per period:  interest  = r * remaining
               principal = payment - interest
               remaining -= principal

A loan with no term (LoanMonths == 0) is treated as interest-only: the
payment is remaining * monthly_rate and no table is generated.
*/
package engine

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AmortizationEntry is one period of a loan schedule. Interest and
// Principal are stored positive; adding Principal to the (negative) loan
// balance moves it toward zero.
type AmortizationEntry struct {
	Interest  decimal.Decimal
	Principal decimal.Decimal
}

// BuildAmortization populates the account's amortization table from its
// start date, APR, term, and schedule. Run by Ledger.AddAccount when the
// account carries a start date.
//
// Accounts with a start date are expected to be loans (negative value).
// A positive balance is reported as a configuration warning; the table is
// still built against the absolute value so the reported invariant
// violation stays visible rather than silently vanishing.
func (a *Account) BuildAmortization(log *logrus.Logger) error {
	if a.StartDate == nil {
		log.WithField("account", a.Name).
			Warn("cannot build an amortization schedule without a start date")
		return nil
	}
	if a.Value.IsPositive() {
		log.WithField("account", a.Name).
			Warn("accounts with a start date are expected to be loans with a negative value")
	}
	if a.Schedule == nil {
		log.WithField("account", a.Name).
			Warn("cannot build an amortization schedule without a payment schedule")
		return nil
	}

	monthlyRate := a.Rate / 12
	balance := a.Value.Abs()

	if a.LoanMonths == 0 {
		// No term: interest-only loan, no table.
		a.payment = balance.Mul(decimal.NewFromFloat(monthlyRate))
		return nil
	}

	a.payment = fixedPayment(balance, monthlyRate, a.LoanMonths)
	table, err := amortize(balance, a.payment, monthlyRate, a.LoanMonths, *a.StartDate, *a.Schedule)
	if err != nil {
		return err
	}
	a.amortization = table

	log.WithFields(logrus.Fields{
		"account": a.Name,
		"months":  a.LoanMonths,
		"payment": a.payment.StringFixed(2),
	}).Debug("amortization schedule built")
	return nil
}

// fixedPayment computes the level monthly payment for a fixed-rate loan.
// The power term uses float math; the result converts back to decimal for
// the monetary arithmetic that follows.
func fixedPayment(principal decimal.Decimal, monthlyRate float64, termMonths int) decimal.Decimal {
	if monthlyRate == 0 {
		// Zero-interest: even split.
		return principal.Div(decimal.NewFromInt(int64(termMonths)))
	}
	factor := math.Pow(1+monthlyRate, float64(termMonths))
	p := principal.InexactFloat64()
	return decimal.NewFromFloat(p * monthlyRate * factor / (factor - 1))
}

// amortize walks termMonths occurrences of the schedule starting on or
// after start, splitting the fixed payment into interest and principal.
func amortize(balance, payment decimal.Decimal, monthlyRate float64, termMonths int, start Date, sched Schedule) (map[Date]AmortizationEntry, error) {
	rate := decimal.NewFromFloat(monthlyRate)
	table := make(map[Date]AmortizationEntry, termMonths)

	occ, err := sched.OnOrAfter(start)
	if err != nil {
		return nil, err
	}
	for i := 0; i < termMonths; i++ {
		interest := balance.Mul(rate)
		principal := payment.Sub(interest)
		balance = balance.Sub(principal)
		table[occ] = AmortizationEntry{Interest: interest, Principal: principal}

		occ, err = sched.Next(occ)
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}
