/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's internal model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY FIELDS:
  Serialized as decimal strings ("5050.00"), never floats, so clients
  see exactly what the engine computed.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: Config, embedded in simulate requests
*/
package api

import (
	"github.com/warp/networth-engine/engine"
	"github.com/warp/networth-engine/factory"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SimulateRequest runs one simulation.
type SimulateRequest struct {
	Config      factory.Config `json:"config"`
	Variance    bool           `json:"variance,omitempty"`
	Seed        int64          `json:"seed,omitempty"`
	RecordDaily bool           `json:"record_daily,omitempty"`

	// Save persists the run when the server has a store configured.
	Save bool `json:"save,omitempty"`
}

// Scenario is one what-if overlay on a base config.
type Scenario struct {
	Name string `json:"name"`

	// RateDeltas adds to the APR of the named accounts.
	RateDeltas map[string]float64 `json:"rate_deltas,omitempty"`

	// ExtraCashflows are appended to the base config's flows.
	ExtraCashflows []factory.Cashflow `json:"extra_cashflows,omitempty"`
}

// CompareRequest runs a baseline plus scenario overlays side by side.
type CompareRequest struct {
	Config    factory.Config `json:"config"`
	Variance  bool           `json:"variance,omitempty"`
	Seed      int64          `json:"seed,omitempty"`
	Scenarios []Scenario     `json:"scenarios"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// BalanceDTO is one line of the final per-account listing.
type BalanceDTO struct {
	Account string `json:"account"`
	Value   string `json:"value"`
}

// SnapshotDTO is one day of the worth series.
type SnapshotDTO struct {
	Date   string `json:"date"`
	Worth  string `json:"worth"`
	Assets string `json:"assets"`
	Debt   string `json:"debt"`
}

// ResultDTO is a completed simulation.
type ResultDTO struct {
	Start    string        `json:"start"`
	End      string        `json:"end"`
	Worth    string        `json:"worth"`
	Assets   string        `json:"assets"`
	Debt     string        `json:"debt"`
	Balances []BalanceDTO  `json:"balances"`
	Daily    []SnapshotDTO `json:"daily,omitempty"`
	Variance bool          `json:"variance"`
	Seed     int64         `json:"seed"`
	RunID    *int64        `json:"run_id,omitempty"`
}

// ScenarioResultDTO pairs a scenario with its outcome.
type ScenarioResultDTO struct {
	Name       string    `json:"name"`
	Result     ResultDTO `json:"result"`
	WorthDelta string    `json:"worth_delta"` // vs baseline
}

// CompareResponse is the side-by-side outcome listing.
type CompareResponse struct {
	Baseline  ResultDTO           `json:"baseline"`
	Scenarios []ScenarioResultDTO `json:"scenarios"`
}

// RunDTO is one persisted run in listings.
type RunDTO struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Variance  bool   `json:"variance"`
	Seed      int64  `json:"seed"`
	Worth     string `json:"worth"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toResultDTO(result *engine.Result) ResultDTO {
	dto := ResultDTO{
		Start:    result.Start.String(),
		End:      result.End.String(),
		Worth:    result.Worth.StringFixed(2),
		Assets:   result.Assets.StringFixed(2),
		Debt:     result.Debt.StringFixed(2),
		Balances: make([]BalanceDTO, 0, len(result.Balances)),
		Variance: result.Variance,
		Seed:     result.Seed,
	}
	for _, b := range result.Balances {
		dto.Balances = append(dto.Balances, BalanceDTO{Account: b.Name, Value: b.Value.StringFixed(2)})
	}
	for _, snap := range result.Daily {
		dto.Daily = append(dto.Daily, SnapshotDTO{
			Date:   snap.Date.String(),
			Worth:  snap.Worth.StringFixed(2),
			Assets: snap.Assets.StringFixed(2),
			Debt:   snap.Debt.StringFixed(2),
		})
	}
	return dto
}
