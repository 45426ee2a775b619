package claim

import (
	"fmt"
	"time"
)

const (
	// DefaultCutoffHour is the hour of day at which a dated deadline lapses.
	DefaultCutoffHour = 16

	// DefaultTimezone is the zone in which deadline cutoffs are read.
	DefaultTimezone = "Europe/London"
)

// DeadlineEvaluator decides whether a dated deadline has lapsed. A deadline
// dated D lapses strictly after the cutoff hour on D in the evaluator's zone,
// not at midnight. The reference instant is always supplied by the caller.
//
// The zero value is not usable; construct with NewDeadlineEvaluator.
type DeadlineEvaluator struct {
	loc        *time.Location
	cutoffHour int
}

// EvaluatorOption configures a DeadlineEvaluator.
type EvaluatorOption func(*DeadlineEvaluator)

// WithCutoffHour overrides DefaultCutoffHour.
func WithCutoffHour(hour int) EvaluatorOption {
	return func(e *DeadlineEvaluator) { e.cutoffHour = hour }
}

// NewDeadlineEvaluator returns an evaluator reading cutoffs in loc. A nil loc
// falls back to UTC.
func NewDeadlineEvaluator(loc *time.Location, opts ...EvaluatorOption) DeadlineEvaluator {
	if loc == nil {
		loc = time.UTC
	}
	e := DeadlineEvaluator{loc: loc, cutoffHour: DefaultCutoffHour}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// NewDeadlineEvaluatorForZone loads the named IANA zone and returns an
// evaluator for it. cutoffHour must be in [0, 23].
func NewDeadlineEvaluatorForZone(zone string, cutoffHour int) (DeadlineEvaluator, error) {
	if cutoffHour < 0 || cutoffHour > 23 {
		return DeadlineEvaluator{}, fmt.Errorf("claim: cutoff hour %d out of range", cutoffHour)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return DeadlineEvaluator{}, fmt.Errorf("claim: unknown timezone %q: %w", zone, err)
	}
	return NewDeadlineEvaluator(loc, WithCutoffHour(cutoffHour)), nil
}

// Location returns the zone cutoffs are read in.
func (e DeadlineEvaluator) Location() *time.Location { return e.loc }

// CutoffHour returns the hour of day at which deadlines lapse.
func (e DeadlineEvaluator) CutoffHour() int { return e.cutoffHour }

// CutoffOn returns the instant at which a deadline dated d lapses.
func (e DeadlineEvaluator) CutoffOn(d Date) time.Time {
	return d.In(e.cutoffHour, e.loc)
}

// HasExpired reports whether a deadline dated d has lapsed at now. The
// cutoff instant itself is not yet expired.
func (e DeadlineEvaluator) HasExpired(d Date, now time.Time) bool {
	return now.After(e.CutoffOn(d))
}
