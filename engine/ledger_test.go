package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/networth-engine/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger(t *testing.T) *engine.Ledger {
	t.Helper()
	return engine.NewLedger(
		engine.NewDate(2014, time.January, 1),
		engine.NewDate(2014, time.December, 31),
		quietLogger(),
	)
}

// =============================================================================
// REGISTRATION
// =============================================================================

func TestLedger_AddAccount_NormalizesNames(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.AddAccount(engine.NewAccount("Checking", engine.Money(1000))))

	a, err := l.Account("CHECKING")
	require.NoError(t, err)
	assert.Equal(t, "checking", a.Name)
}

func TestLedger_AddAccount_DuplicateIsAnError(t *testing.T) {
	// GIVEN: An account named "checking" already registered
	// WHEN: Registering "Checking" again
	// THEN: DuplicateAccountError, never a silent overwrite

	l := newTestLedger(t)
	require.NoError(t, l.AddAccount(engine.NewAccount("checking", engine.Money(1000))))

	err := l.AddAccount(engine.NewAccount("Checking", engine.Money(99)))
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrDuplicateAccount)

	// Original balance untouched.
	a, err := l.Account("checking")
	require.NoError(t, err)
	assert.True(t, a.Value.Equal(engine.Money(1000)))
}

func TestLedger_AddAccount_StartDateTriggersAmortization(t *testing.T) {
	l := newTestLedger(t)
	a := newMortgage(t)
	require.NoError(t, l.AddAccount(a))

	assert.Equal(t, 360, a.AmortizationLength())
}

func TestLedger_Accounts_RegistrationOrder(t *testing.T) {
	l := newTestLedger(t)
	for _, name := range []string{"zulu", "alpha", "mike"} {
		require.NoError(t, l.AddAccount(engine.NewAccount(name, engine.Money(1))))
	}

	var got []string
	for _, a := range l.Accounts() {
		got = append(got, a.Name)
	}
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, got)
}

// =============================================================================
// CREDIT / DEBIT
// =============================================================================

func TestLedger_CreditDebit(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.AddAccount(engine.NewAccount("checking", engine.Money(1000))))

	require.NoError(t, l.CreditAccount("checking", engine.Money(250)))
	require.NoError(t, l.DebitAccount("checking", engine.Money(100)))

	a, _ := l.Account("checking")
	assert.True(t, a.Value.Equal(engine.Money(1150)))
}

func TestLedger_CreditDebit_UnknownAccount(t *testing.T) {
	l := newTestLedger(t)

	err := l.CreditAccount("nope", engine.Money(1))
	assert.ErrorIs(t, err, engine.ErrUnknownAccount)

	err = l.DebitAccount("nope", engine.Money(1))
	assert.ErrorIs(t, err, engine.ErrUnknownAccount)

	var unknown *engine.UnknownAccountError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
}

// =============================================================================
// SWEEP VALIDATION
// =============================================================================

func TestValidateSweeps_DanglingDestination(t *testing.T) {
	// GIVEN: checking sweeps excess into an account that was never registered
	// WHEN: Validating
	// THEN: InvalidSweepError naming the account and the dangling reference

	l := newTestLedger(t)
	a := engine.NewAccount("checking", engine.Money(1000))
	a.SweepOut = engine.NewSweepRule("brokerage", engine.Money(5000))
	require.NoError(t, l.AddAccount(a))

	err := l.ValidateSweeps()
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidSweep)

	var sweepErr *engine.InvalidSweepError
	require.ErrorAs(t, err, &sweepErr)
	assert.Equal(t, "checking", sweepErr.Account)
	assert.Equal(t, "brokerage", sweepErr.Destination)
	assert.Equal(t, "sweep_out", sweepErr.Direction)
}

func TestValidateSweeps_SelfReferenceRejected(t *testing.T) {
	l := newTestLedger(t)
	a := engine.NewAccount("checking", engine.Money(1000))
	a.SweepIn = engine.NewSweepRule("checking", engine.Money(500))
	require.NoError(t, l.AddAccount(a))

	assert.ErrorIs(t, l.ValidateSweeps(), engine.ErrInvalidSweep)
}

func TestValidateSweeps_AllResolved(t *testing.T) {
	l := newTestLedger(t)
	checking := engine.NewAccount("checking", engine.Money(1000))
	checking.SweepOut = engine.NewSweepRule("savings", engine.Money(2000))
	checking.SweepIn = engine.NewSweepRule("savings", engine.Money(500))
	require.NoError(t, l.AddAccount(checking))
	require.NoError(t, l.AddAccount(engine.NewAccount("savings", engine.Money(5000))))

	assert.NoError(t, l.ValidateSweeps())
}

// =============================================================================
// SWEEP EXECUTION
// =============================================================================

func TestSweep_OutMovesExcessAboveWatermark(t *testing.T) {
	l := newTestLedger(t)
	checking := engine.NewAccount("checking", engine.Money(7500))
	checking.SweepOut = engine.NewSweepRule("brokerage", engine.Money(5000))
	require.NoError(t, l.AddAccount(checking))
	require.NoError(t, l.AddAccount(engine.NewAccount("brokerage", engine.Money(0))))

	l.Sweep()

	assert.True(t, checking.Value.Equal(engine.Money(5000)))
	brokerage, _ := l.Account("brokerage")
	assert.True(t, brokerage.Value.Equal(engine.Money(2500)))
}

func TestSweep_InPullsShortfallBelowWatermark(t *testing.T) {
	l := newTestLedger(t)
	checking := engine.NewAccount("checking", engine.Money(200))
	checking.SweepIn = engine.NewSweepRule("savings", engine.Money(1000))
	require.NoError(t, l.AddAccount(checking))
	require.NoError(t, l.AddAccount(engine.NewAccount("savings", engine.Money(5000))))

	l.Sweep()

	assert.True(t, checking.Value.Equal(engine.Money(1000)))
	savings, _ := l.Account("savings")
	assert.True(t, savings.Value.Equal(engine.Money(4200)))
}

func TestSweep_NoTriggerInsideWatermarks(t *testing.T) {
	l := newTestLedger(t)
	checking := engine.NewAccount("checking", engine.Money(3000))
	checking.SweepOut = engine.NewSweepRule("savings", engine.Money(5000))
	checking.SweepIn = engine.NewSweepRule("savings", engine.Money(1000))
	require.NoError(t, l.AddAccount(checking))
	require.NoError(t, l.AddAccount(engine.NewAccount("savings", engine.Money(5000))))

	l.Sweep()

	assert.True(t, checking.Value.Equal(engine.Money(3000)))
}

func TestSweep_RegistrationOrderCascadesWithinOneDay(t *testing.T) {
	// GIVEN: a sweeps excess to b, b sweeps excess to c
	// WHEN: a is registered before b
	// THEN: One Sweep pass cascades a->b->c the same day. This pins the
	//       documented registration-order contract.

	l := newTestLedger(t)
	a := engine.NewAccount("a", engine.Money(300))
	a.SweepOut = engine.NewSweepRule("b", engine.Money(100))
	b := engine.NewAccount("b", engine.Money(100))
	b.SweepOut = engine.NewSweepRule("c", engine.Money(100))
	c := engine.NewAccount("c", engine.Money(0))
	require.NoError(t, l.AddAccount(a))
	require.NoError(t, l.AddAccount(b))
	require.NoError(t, l.AddAccount(c))

	l.Sweep()

	assert.True(t, a.Value.Equal(engine.Money(100)))
	assert.True(t, b.Value.Equal(engine.Money(100)), "b's inflow sweeps onward in the same pass")
	assert.True(t, c.Value.Equal(engine.Money(200)))
}

// =============================================================================
// AGGREGATES
// =============================================================================

func TestAggregates_WorthEqualsAssetsPlusDebt(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.AddAccount(engine.NewAccount("checking", engine.Money(1000))))
	require.NoError(t, l.AddAccount(engine.NewAccount("brokerage", engine.Money(25000))))
	require.NoError(t, l.AddAccount(engine.NewAccount("mortgage", engine.Money(-417000))))

	assert.True(t, l.Assets().Equal(engine.Money(26000)))
	assert.True(t, l.Debt().Equal(engine.Money(-417000)))
	assert.True(t, l.Worth().Equal(l.Assets().Add(l.Debt())))

	// Invariant survives arbitrary mutation.
	require.NoError(t, l.DebitAccount("checking", engine.Money(2500)))
	assert.True(t, l.Worth().Equal(l.Assets().Add(l.Debt())))
}
