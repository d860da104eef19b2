package merger

import (
	"fmt"

	"go.uber.org/multierr"
)

// Stage labels the phase a progress event belongs to.
type Stage string

const (
	StageValidate Stage = "validate"
	StageRead     Stage = "read"
	StageJoin     Stage = "join"
	StageWrite    Stage = "write"
	StageAppend   Stage = "append"
)

// Event is one progress notification, emitted synchronously after a step.
type Event struct {
	Stage    Stage
	Fraction float64
	Message  string
}

// ProgressFunc consumes progress events.
type ProgressFunc func(Event)

// stepper tracks completed steps against a planned total so events carry a
// monotonic completion fraction.
type stepper struct {
	done  int
	total int
	opts  Options
}

func newStepper(total int, opts Options) *stepper {
	if total < 1 {
		total = 1
	}
	return &stepper{total: total, opts: opts}
}

func (s *stepper) step(stage Stage, format string, args ...interface{}) {
	s.done++
	frac := float64(s.done) / float64(s.total)
	if frac > 1 {
		frac = 1
	}
	s.opts.emit(Event{Stage: stage, Fraction: frac, Message: fmt.Sprintf(format, args...)})
}

// Report accumulates the non-fatal outcomes of one merge call: warnings and
// recoverable errors, returned beside a possibly-partial result instead of
// aborting the run.
type Report struct {
	// Warnings lists non-fatal conditions, such as a cross-join fallback or
	// dropped residual edges.
	Warnings []string
	// Skipped aggregates recoverable errors for sources that were left out.
	Skipped error
}

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) skip(err error) {
	r.Skipped = multierr.Append(r.Skipped, err)
}

// HasIssues reports whether the run recorded any warning or skipped source.
func (r *Report) HasIssues() bool {
	return len(r.Warnings) > 0 || r.Skipped != nil
}
