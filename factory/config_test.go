package factory_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/networth-engine/engine"
	"github.com/warp/networth-engine/factory"
)

func newFactory() *factory.LedgerFactory {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return factory.NewLedgerFactory(log)
}

const fullConfig = `{
  "inflation": 0.03,
  "property_tax": 0.0125,
  "start_date": "2014-01-01",
  "end_date": "2015-01-01",
  "accounts": [
    {
      "name": "Checking",
      "value": 3000,
      "sweep_out": {"account": "brokerage", "amount": 5000},
      "sweep_in": {"account": "brokerage", "amount": 1000}
    },
    {
      "name": "brokerage",
      "value": 25000,
      "rate": 0.07,
      "stddev": 0.12,
      "schedule": "0 0 1 * *"
    },
    {
      "name": "mortgage",
      "value": -417000,
      "rate": 0.04,
      "schedule": "0 0 1 * *",
      "loan_months": 360,
      "start_date": "2014-01-01"
    }
  ],
  "cashflows": [
    {
      "name": "paycheck",
      "account": "checking",
      "schedule": "0 0 1,15 * *",
      "amount": 2500,
      "category": "income"
    },
    {
      "name": "groceries",
      "account": "checking",
      "schedule": "0 0 * * 6",
      "amount": -150,
      "stddev": 30
    }
  ]
}`

func TestParse_FullDocument(t *testing.T) {
	ledger, err := newFactory().Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, engine.NewDate(2014, time.January, 1), ledger.StartDate)
	assert.Equal(t, engine.NewDate(2015, time.January, 1), ledger.EndDate)
	assert.Equal(t, 0.03, ledger.Inflation)
	assert.Equal(t, 0.0125, ledger.PropertyTax)

	// Names are normalized; sweep references resolve.
	checking, err := ledger.Account("checking")
	require.NoError(t, err)
	require.NotNil(t, checking.SweepOut)
	assert.Equal(t, "brokerage", checking.SweepOut.Destination)
	require.NoError(t, ledger.ValidateSweeps())

	// The loan got its amortization table at registration.
	mortgage, err := ledger.Account("mortgage")
	require.NoError(t, err)
	assert.Equal(t, 360, mortgage.AmortizationLength())

	// The document builds a runnable simulation.
	_, err = engine.NewSimulator(ledger, engine.SimulationOptions{}).Run(context.Background())
	require.NoError(t, err)
}

func TestBuild_CategoryInferredFromSign(t *testing.T) {
	cfg := factory.Config{
		StartDate: "2014-01-01",
		EndDate:   "2015-01-01",
		Accounts:  []factory.Account{{Name: "checking", Value: 100}},
		Cashflows: []factory.Cashflow{
			{Name: "mystery-in", Account: "checking", Schedule: "0 0 1 * *", Amount: 10},
			{Name: "mystery-out", Account: "checking", Schedule: "0 0 1 * *", Amount: -10},
		},
	}
	_, err := newFactory().Build(cfg)
	require.NoError(t, err)
}

// =============================================================================
// VALIDATION FAILURES
// =============================================================================

func TestBuild_Rejections(t *testing.T) {
	base := func() factory.Config {
		return factory.Config{
			StartDate: "2014-01-01",
			EndDate:   "2015-01-01",
			Accounts:  []factory.Account{{Name: "checking", Value: 100}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*factory.Config)
		wantErr string
	}{
		{
			name:    "missing dates",
			mutate:  func(c *factory.Config) { c.StartDate = "" },
			wantErr: "start_date",
		},
		{
			name:    "malformed date",
			mutate:  func(c *factory.Config) { c.EndDate = "01/01/2015" },
			wantErr: "end_date",
		},
		{
			name:    "end before start",
			mutate:  func(c *factory.Config) { c.EndDate = "2013-01-01" },
			wantErr: "must be after",
		},
		{
			name:    "no accounts",
			mutate:  func(c *factory.Config) { c.Accounts = nil },
			wantErr: "at least one account",
		},
		{
			name:    "nameless account",
			mutate:  func(c *factory.Config) { c.Accounts[0].Name = "" },
			wantErr: "requires a name",
		},
		{
			name:    "bad cron expression",
			mutate:  func(c *factory.Config) { c.Accounts[0].Schedule = "whenever" },
			wantErr: "cron expression",
		},
		{
			name: "unknown category",
			mutate: func(c *factory.Config) {
				c.Cashflows = []factory.Cashflow{
					{Name: "x", Account: "checking", Schedule: "0 0 1 * *", Amount: 1, Category: "windfall"},
				}
			},
			wantErr: "unknown category",
		},
		{
			name: "duplicate account",
			mutate: func(c *factory.Config) {
				c.Accounts = append(c.Accounts, factory.Account{Name: "CHECKING", Value: 5})
			},
			wantErr: "already registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			_, err := newFactory().Build(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := newFactory().Parse([]byte(`{"start_date": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing simulation config")
}
