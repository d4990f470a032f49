/*
schedule.go - Cron-backed recurrence rules over calendar days

PURPOSE:
  Wraps a five-field cron expression (minute, hour, day-of-month, month,
  day-of-week) as an immutable recurrence rule over Dates. The simulation
  only cares about calendar days, so an expression that fires many times
  within one day collapses to a single occurrence on that date.

CONTRACT:
  - Current(on) returns the occurrence on or before `on`.
  - Next(after) returns the first occurrence strictly after `after`.
  - Next(Current(d)) > Current(d) for every valid expression and date d.
    A rule that cannot advance returns a ScheduleStalledError, which is
    fatal: it indicates a malformed recurrence expression.

There is no hidden cursor. Both operations take an explicit reference
date and return a new one, so a schedule can be shared freely between an
account and any lookahead copy.
*/
package engine

import (
	"time"

	"github.com/robfig/cron/v3"
)

// maxBackscanDays bounds the Current() backward search. Five years covers
// any expression the standard parser accepts; an expression with no
// occurrence in that window is treated as stalled.
const maxBackscanDays = 366 * 5

// Schedule is an immutable recurrence rule over calendar days.
type Schedule struct {
	expr string
	spec cron.Schedule
}

// ParseSchedule parses a standard five-field cron expression.
func ParseSchedule(expr string) (Schedule, error) {
	spec, err := cron.ParseStandard(expr)
	if err != nil {
		return Schedule{}, &CronExprError{Expr: expr, Err: err}
	}
	return Schedule{expr: expr, spec: spec}, nil
}

// MustParseSchedule is for tests and hardcoded expressions.
func MustParseSchedule(expr string) Schedule {
	s, err := ParseSchedule(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// Expr returns the original cron expression.
func (s Schedule) Expr() string { return s.expr }

// firesOn reports whether the rule has at least one firing on the given day.
func (s Schedule) firesOn(d Date) bool {
	next := s.spec.Next(d.Time().Add(-time.Nanosecond))
	return !next.IsZero() && DateOf(next).Equal(d)
}

// Next returns the first occurrence strictly after the given day.
func (s Schedule) Next(after Date) (Date, error) {
	t := s.spec.Next(after.Time().Add(24*time.Hour - time.Nanosecond))
	if t.IsZero() {
		return Date{}, &ScheduleStalledError{Expr: s.expr, On: after}
	}
	next := DateOf(t)
	if !next.After(after) {
		return Date{}, &ScheduleStalledError{Expr: s.expr, On: after}
	}
	return next, nil
}

// Current returns the occurrence on or before the given day.
func (s Schedule) Current(on Date) (Date, error) {
	for i := 0; i <= maxBackscanDays; i++ {
		day := on.AddDays(-i)
		if s.firesOn(day) {
			return day, nil
		}
	}
	return Date{}, &ScheduleStalledError{Expr: s.expr, On: on}
}

// OnOrAfter returns the first occurrence on or after the given day.
func (s Schedule) OnOrAfter(d Date) (Date, error) {
	if s.firesOn(d) {
		return d, nil
	}
	return s.Next(d)
}
