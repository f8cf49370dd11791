package triage

import (
	"errors"
	"fmt"
)

// Step names the pipeline stage an error originated from.
type Step string

const (
	StepClassify Step = "classify"
	StepRetrieve Step = "retrieve"
	StepCompose  Step = "compose"
	StepPersist  Step = "persist"
)

// ErrTriageInProgress is returned when a triage run is requested for a
// ticket that already has one in flight.
var ErrTriageInProgress = errors.New("triage already in progress for ticket")

// StepError wraps a fault from a pipeline stage. The run is aborted, no
// suggestion or status change is persisted, and the error surfaces to the
// caller.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("triage %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepFailure(step Step, err error) error {
	return &StepError{Step: step, Err: err}
}
