/*
Package factory provides JSON to Go simulation-config conversion.

PURPOSE:
  Converts a JSON simulation document into an engine.Ledger populated
  with accounts, sweep rules, and cashflows. This keeps configuration
  out of code: a household's finances are described in one JSON file.

JSON SCHEMA:
  {
    "inflation": 0.03,
    "property_tax": 0.0125,
    "start_date": "2014-01-01",
    "end_date": "2024-01-01",
    "accounts": [
      {
        "name": "checking",
        "value": 3000,
        "sweep_out": {"account": "brokerage", "amount": 5000}
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
      }
    ]
  }

KEY FEATURES:
  - Validates dates, cron expressions, and references
  - Sets sensible defaults (category inferred from amount sign)
  - Surfaces every engine construction error with the offending name

SEE ALSO:
  - engine/ledger.go: The target of the conversion
  - api/handlers.go: Accepts the same document over HTTP
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/warp/networth-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// Config is the JSON representation of one simulation.
type Config struct {
	Inflation   float64    `json:"inflation,omitempty"`
	PropertyTax float64    `json:"property_tax,omitempty"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Accounts    []Account  `json:"accounts"`
	Cashflows   []Cashflow `json:"cashflows,omitempty"`
}

// Account describes one account in the config document.
type Account struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Rate       float64 `json:"rate,omitempty"`
	StdDev     float64 `json:"stddev,omitempty"`
	Liquidity  float64 `json:"liquidity,omitempty"`
	Schedule   string  `json:"schedule,omitempty"` // five-field cron
	SweepOut   *Sweep  `json:"sweep_out,omitempty"`
	SweepIn    *Sweep  `json:"sweep_in,omitempty"`
	StartDate  string  `json:"start_date,omitempty"` // loan origination
	LoanMonths int     `json:"loan_months,omitempty"`
}

// Sweep describes a threshold transfer rule.
type Sweep struct {
	Account string  `json:"account"`
	Amount  float64 `json:"amount"`
}

// Cashflow describes one recurring flow in the config document.
type Cashflow struct {
	Name      string  `json:"name"`
	Account   string  `json:"account"`
	Schedule  string  `json:"schedule"`
	Amount    float64 `json:"amount"`
	StartDate string  `json:"start_date,omitempty"`
	EndDate   string  `json:"end_date,omitempty"`
	Category  string  `json:"category,omitempty"`
	StdDev    float64 `json:"stddev,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// LedgerFactory builds engine ledgers from config documents.
type LedgerFactory struct {
	log *logrus.Logger
}

func NewLedgerFactory(log *logrus.Logger) *LedgerFactory {
	if log == nil {
		log = logrus.New()
	}
	return &LedgerFactory{log: log}
}

// Parse unmarshals a JSON document and builds a ledger from it.
func (f *LedgerFactory) Parse(data []byte) (*engine.Ledger, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing simulation config: %w", err)
	}
	return f.Build(cfg)
}

// LoadFile reads and parses a config document from disk.
func (f *LedgerFactory) LoadFile(path string) (*engine.Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return f.Parse(data)
}

// Build converts a parsed config into a populated ledger. All errors are
// construction-time: a ledger that builds cleanly is ready to simulate.
func (f *LedgerFactory) Build(cfg Config) (*engine.Ledger, error) {
	if cfg.StartDate == "" || cfg.EndDate == "" {
		return nil, fmt.Errorf("config requires start_date and end_date")
	}
	start, err := engine.ParseDate(cfg.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	end, err := engine.ParseDate(cfg.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("end_date %s must be after start_date %s", end, start)
	}
	if len(cfg.Accounts) == 0 {
		return nil, fmt.Errorf("config requires at least one account")
	}

	ledger := engine.NewLedger(start, end, f.log)
	ledger.Inflation = cfg.Inflation
	ledger.PropertyTax = cfg.PropertyTax

	for _, ac := range cfg.Accounts {
		account, err := f.buildAccount(ac)
		if err != nil {
			return nil, err
		}
		if err := ledger.AddAccount(account); err != nil {
			return nil, err
		}
	}

	for _, cf := range cfg.Cashflows {
		flow, err := f.buildCashflow(cf)
		if err != nil {
			return nil, err
		}
		if err := ledger.AddCashflow(flow); err != nil {
			return nil, err
		}
	}

	return ledger, nil
}

func (f *LedgerFactory) buildAccount(ac Account) (*engine.Account, error) {
	if ac.Name == "" {
		return nil, fmt.Errorf("account requires a name")
	}

	account := engine.NewAccount(ac.Name, engine.Money(ac.Value))
	account.Rate = ac.Rate
	account.StdDev = ac.StdDev
	account.Liquidity = ac.Liquidity
	account.LoanMonths = ac.LoanMonths

	if ac.Schedule != "" {
		sched, err := engine.ParseSchedule(ac.Schedule)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", ac.Name, err)
		}
		account.Schedule = &sched
	}
	if ac.StartDate != "" {
		d, err := engine.ParseDate(ac.StartDate)
		if err != nil {
			return nil, fmt.Errorf("account %s start_date: %w", ac.Name, err)
		}
		account.StartDate = &d
	}
	if ac.SweepOut != nil {
		account.SweepOut = engine.NewSweepRule(ac.SweepOut.Account, engine.Money(ac.SweepOut.Amount))
	}
	if ac.SweepIn != nil {
		account.SweepIn = engine.NewSweepRule(ac.SweepIn.Account, engine.Money(ac.SweepIn.Amount))
	}
	return account, nil
}

func (f *LedgerFactory) buildCashflow(cf Cashflow) (*engine.Cashflow, error) {
	if cf.Name == "" || cf.Account == "" {
		return nil, fmt.Errorf("cashflow requires a name and an account")
	}
	sched, err := engine.ParseSchedule(cf.Schedule)
	if err != nil {
		return nil, fmt.Errorf("cashflow %s: %w", cf.Name, err)
	}

	flow := engine.NewCashflow(cf.Name, cf.Account, sched, engine.Money(cf.Amount))
	flow.StdDev = cf.StdDev

	switch cf.Category {
	case "income":
		flow.Category = engine.CategoryIncome
	case "expense":
		flow.Category = engine.CategoryExpense
	case "":
		// Infer from the sign.
		if cf.Amount < 0 {
			flow.Category = engine.CategoryExpense
		} else {
			flow.Category = engine.CategoryIncome
		}
	default:
		return nil, fmt.Errorf("cashflow %s: unknown category %q", cf.Name, cf.Category)
	}

	if cf.StartDate != "" {
		d, err := engine.ParseDate(cf.StartDate)
		if err != nil {
			return nil, fmt.Errorf("cashflow %s start_date: %w", cf.Name, err)
		}
		flow.Start = &d
	}
	if cf.EndDate != "" {
		d, err := engine.ParseDate(cf.EndDate)
		if err != nil {
			return nil, fmt.Errorf("cashflow %s end_date: %w", cf.Name, err)
		}
		flow.End = &d
	}
	return flow, nil
}
