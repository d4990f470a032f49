package engine_test

import (
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/networth-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func datePtr(d engine.Date) *engine.Date { return &d }

// newMortgage builds a 30-year fixed loan account: $417,000 at 4% APR,
// monthly payments on the first.
func newMortgage(t *testing.T) *engine.Account {
	t.Helper()
	monthly := engine.MustParseSchedule("0 0 1 * *")
	a := engine.NewAccount("mortgage", engine.Money(-417000))
	a.Rate = 0.04
	a.LoanMonths = 360
	a.Schedule = &monthly
	a.StartDate = datePtr(engine.NewDate(2014, time.January, 1))
	return a
}

// =============================================================================
// FIXED-PAYMENT AMORTIZATION
// =============================================================================

func TestBuildAmortization_TableCoversExactlyTheTerm(t *testing.T) {
	a := newMortgage(t)
	require.NoError(t, a.BuildAmortization(quietLogger()))

	assert.Equal(t, 360, a.AmortizationLength())
}

func TestBuildAmortization_FirstEntryMatchesFixedPaymentMath(t *testing.T) {
	// GIVEN: $417,000 at 4% APR over 360 months
	// WHEN: Building the schedule
	// THEN: First-month interest is 417000 * 0.04/12 = 1390.00 and the
	//       principal component is the fixed payment minus that interest

	a := newMortgage(t)
	require.NoError(t, a.BuildAmortization(quietLogger()))

	payment := a.Payment().InexactFloat64()
	assert.InDelta(t, 1990.82, payment, 0.05)

	first, ok := a.AmortizationEntry(engine.NewDate(2014, time.January, 1))
	require.True(t, ok, "first occurrence should have an entry")
	assert.InDelta(t, 1390.00, first.Interest.InexactFloat64(), 0.01)
	assert.InDelta(t, payment-1390.00, first.Principal.InexactFloat64(), 0.01)
}

func TestBuildAmortization_PrincipalSumsToLoanAndBalanceReachesZero(t *testing.T) {
	a := newMortgage(t)
	require.NoError(t, a.BuildAmortization(quietLogger()))

	monthly := engine.MustParseSchedule("0 0 1 * *")
	occ, err := monthly.OnOrAfter(engine.NewDate(2014, time.January, 1))
	require.NoError(t, err)

	remaining := engine.Money(417000)
	prevPrincipal := decimal.Zero
	totalPrincipal := decimal.Zero
	for i := 0; i < 360; i++ {
		entry, ok := a.AmortizationEntry(occ)
		require.True(t, ok, "missing entry for %s", occ)

		// Principal components grow as the balance pays down, so the
		// remaining balance is monotonically decreasing.
		assert.True(t, entry.Principal.GreaterThan(prevPrincipal),
			"principal should grow each period (period %d)", i)
		prevPrincipal = entry.Principal

		remaining = remaining.Sub(entry.Principal)
		totalPrincipal = totalPrincipal.Add(entry.Principal)

		occ, err = monthly.Next(occ)
		require.NoError(t, err)
	}

	assert.InDelta(t, 417000.0, totalPrincipal.InexactFloat64(), 0.01)
	assert.InDelta(t, 0.0, remaining.InexactFloat64(), 0.01)
}

func TestBuildAmortization_InterestOnlyWhenNoTerm(t *testing.T) {
	// GIVEN: A loan with a start date but no term
	// WHEN: Building the schedule
	// THEN: No table; the payment is the interest-only amount

	monthly := engine.MustParseSchedule("0 0 1 * *")
	a := engine.NewAccount("heloc", engine.Money(-120000))
	a.Rate = 0.06
	a.Schedule = &monthly
	a.StartDate = datePtr(engine.NewDate(2014, time.January, 1))

	require.NoError(t, a.BuildAmortization(quietLogger()))

	assert.Equal(t, 0, a.AmortizationLength())
	assert.InDelta(t, 120000*0.06/12, a.Payment().InexactFloat64(), 0.01)
}

func TestBuildAmortization_PositiveBalanceStillBuilds(t *testing.T) {
	// A positive balance on a loan-flagged account is a configuration
	// warning, not an error: the table is still built against |value|.

	monthly := engine.MustParseSchedule("0 0 1 * *")
	a := engine.NewAccount("odd-loan", engine.Money(12000))
	a.Rate = 0.05
	a.LoanMonths = 12
	a.Schedule = &monthly
	a.StartDate = datePtr(engine.NewDate(2014, time.January, 1))

	require.NoError(t, a.BuildAmortization(quietLogger()))
	assert.Equal(t, 12, a.AmortizationLength())
}

func TestBuildAmortization_ZeroRateSplitsEvenly(t *testing.T) {
	monthly := engine.MustParseSchedule("0 0 1 * *")
	a := engine.NewAccount("family-loan", engine.Money(-1200))
	a.LoanMonths = 12
	a.Schedule = &monthly
	a.StartDate = datePtr(engine.NewDate(2014, time.January, 1))

	require.NoError(t, a.BuildAmortization(quietLogger()))

	entry, ok := a.AmortizationEntry(engine.NewDate(2014, time.March, 1))
	require.True(t, ok)
	assert.True(t, entry.Interest.IsZero())
	assert.InDelta(t, 100.0, entry.Principal.InexactFloat64(), 0.0001)
}
