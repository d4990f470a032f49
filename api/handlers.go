/*
handlers.go - HTTP API handlers for the simulation engine

PURPOSE:
  Exposes the net-worth simulator via REST. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.

ENDPOINTS:
  POST /api/simulate            Run one simulation from a config document
  POST /api/scenarios/compare   Run a baseline plus what-if overlays
  GET  /api/runs                List persisted runs (store required)
  GET  /api/runs/{id}/snapshots Daily series of a persisted run
  GET  /api/health              Liveness probe

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, config validation, invalid sweeps, bad cron
  - 404: Unknown run id
  - 500: Store failures
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/networth-engine/engine"
	"github.com/warp/networth-engine/factory"
	"github.com/warp/networth-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Log   *logrus.Logger
	Store *sqlite.Store // nil disables run persistence endpoints

	factory *factory.LedgerFactory
}

// NewHandler wires a handler. Store may be nil.
func NewHandler(log *logrus.Logger, store *sqlite.Store) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Log:     log,
		Store:   store,
		factory: factory.NewLedgerFactory(log),
	}
}

// =============================================================================
// SIMULATION
// =============================================================================

// Simulate runs one simulation from the posted config document.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.run(r, req.Config, engine.SimulationOptions{
		Variance:    req.Variance,
		Seed:        req.Seed,
		RecordDaily: req.RecordDaily,
	})
	if err != nil {
		writeError(w, statusForError(err), "Simulation failed", err)
		return
	}

	dto := toResultDTO(result)
	if req.Save && h.Store != nil {
		runID, err := h.Store.SaveRun(r.Context(), result)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to persist run", err)
			return
		}
		dto.RunID = &runID
	}
	writeJSON(w, http.StatusOK, dto)
}

// CompareScenarios runs a baseline and each what-if overlay against it.
func (h *Handler) CompareScenarios(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	opts := engine.SimulationOptions{Variance: req.Variance, Seed: req.Seed}
	baseline, err := h.run(r, req.Config, opts)
	if err != nil {
		writeError(w, statusForError(err), "Baseline simulation failed", err)
		return
	}

	resp := CompareResponse{Baseline: toResultDTO(baseline)}
	for _, scenario := range req.Scenarios {
		result, err := h.run(r, applyScenario(req.Config, scenario), opts)
		if err != nil {
			writeError(w, statusForError(err), "Scenario "+scenario.Name+" failed", err)
			return
		}
		resp.Scenarios = append(resp.Scenarios, ScenarioResultDTO{
			Name:       scenario.Name,
			Result:     toResultDTO(result),
			WorthDelta: result.Worth.Sub(baseline.Worth).StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) run(r *http.Request, cfg factory.Config, opts engine.SimulationOptions) (*engine.Result, error) {
	ledger, err := h.factory.Build(cfg)
	if err != nil {
		return nil, err
	}
	opts.Logger = h.Log
	return engine.NewSimulator(ledger, opts).Run(r.Context())
}

// applyScenario overlays rate deltas and extra cashflows on a copy of
// the base config.
func applyScenario(cfg factory.Config, scenario Scenario) factory.Config {
	out := cfg
	out.Accounts = append([]factory.Account(nil), cfg.Accounts...)
	for i := range out.Accounts {
		if delta, ok := scenario.RateDeltas[out.Accounts[i].Name]; ok {
			out.Accounts[i].Rate += delta
		}
	}
	out.Cashflows = append(append([]factory.Cashflow(nil), cfg.Cashflows...), scenario.ExtraCashflows...)
	return out
}

// =============================================================================
// PERSISTED RUNS
// =============================================================================

// ListRuns returns persisted runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}
	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, RunDTO{
			ID:        run.ID,
			CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Start:     run.Start.String(),
			End:       run.End.String(),
			Variance:  run.Variance,
			Seed:      run.Seed,
			Worth:     run.Worth.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRunSnapshots returns the daily worth series of a persisted run.
func (h *Handler) GetRunSnapshots(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid run id", err)
		return
	}

	snaps, err := h.Store.Snapshots(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshots", err)
		return
	}
	dtos := make([]SnapshotDTO, 0, len(snaps))
	for _, snap := range snaps {
		dtos = append(dtos, SnapshotDTO{
			Date:   snap.Date.String(),
			Worth:  snap.Worth.StringFixed(2),
			Assets: snap.Assets.StringFixed(2),
			Debt:   snap.Debt.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// statusForError maps simulation failures to HTTP statuses. Everything a
// client can cause - config rejections, invalid sweeps, bad cron, stalled
// schedules - is a 400; a cancelled request context is not.
func statusForError(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
