/*
errors.go - Centralized error types for the simulation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is against the sentinels; the structured
  types carry the account name, date, and expression needed to explain
  a failed run.

ERROR CATEGORIES:
  1. Validation errors - Detected before the loop starts; the run never begins
  2. Mid-run errors - Detected inside the per-day loop; the run aborts
     immediately rather than continuing with corrupted state

Configuration-warning conditions (missing loan start date, positive
balance on a loan, missing amortization entry for a due date) are NOT
errors: they are logged at warn level and the affected cycle is skipped.

USAGE:
    if errors.Is(err, engine.ErrScheduleStalled) {
        var stalled *engine.ScheduleStalledError
        errors.As(err, &stalled)
        log.Fatalf("schedule %q stalled on %s", stalled.Expr, stalled.On)
    }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSweep is returned when a sweep rule references an account
	// that does not exist in the registry, or references its own account.
	ErrInvalidSweep = errors.New("invalid sweep destination")

	// ErrScheduleStalled is returned when a schedule fails to produce an
	// occurrence strictly after its input. A non-advancing schedule means
	// a malformed recurrence expression and aborts the simulation.
	ErrScheduleStalled = errors.New("schedule is not advancing")

	// ErrBadCronExpr is returned when a cron expression cannot be parsed.
	ErrBadCronExpr = errors.New("malformed cron expression")

	// ErrUnknownAccount is returned when a credit, debit, or sweep names
	// an account absent from the registry.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrDuplicateAccount is returned when a name is registered twice.
	ErrDuplicateAccount = errors.New("duplicate account")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidSweepError names the offending account and its dangling reference.
type InvalidSweepError struct {
	Account     string
	Destination string
	Direction   string // "sweep_out" or "sweep_in"
}

func (e *InvalidSweepError) Error() string {
	return fmt.Sprintf("%s specified %q as a %s destination but this account does not exist",
		e.Account, e.Destination, e.Direction)
}

func (e *InvalidSweepError) Unwrap() error { return ErrInvalidSweep }

// ScheduleStalledError reports a schedule that failed to advance.
type ScheduleStalledError struct {
	Name string // account or cashflow name, empty for a bare schedule
	Expr string
	On   Date
}

func (e *ScheduleStalledError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("schedule %q is not advancing past %s", e.Expr, e.On)
	}
	return fmt.Sprintf("schedule %q for %s is not advancing past %s", e.Expr, e.Name, e.On)
}

func (e *ScheduleStalledError) Unwrap() error { return ErrScheduleStalled }

// CronExprError reports a recurrence expression rejected at construction.
type CronExprError struct {
	Expr string
	Err  error
}

func (e *CronExprError) Error() string {
	return fmt.Sprintf("cron expression %q: %v", e.Expr, e.Err)
}

func (e *CronExprError) Unwrap() error { return ErrBadCronExpr }

// UnknownAccountError reports a reference to an unregistered account name.
type UnknownAccountError struct {
	Name string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("no account named %q in the ledger", e.Name)
}

func (e *UnknownAccountError) Unwrap() error { return ErrUnknownAccount }

// DuplicateAccountError reports a second registration of the same name.
type DuplicateAccountError struct {
	Name string
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("account %q is already registered", e.Name)
}

func (e *DuplicateAccountError) Unwrap() error { return ErrDuplicateAccount }
