package wizard

import (
	"errors"
	"fmt"

	"lead-intake/internal/intake"
)

var (
	ErrComplete        = errors.New("wizard is complete")
	ErrStepMismatch    = errors.New("payload is not for the current step")
	ErrSubmitting      = errors.New("submission already in flight")
	ErrUnexpectedEvent = errors.New("event not valid in current state")
)

// State is the wizard's position and accumulated answers. Values are never mutated in
// place; Transition returns a new State.
type State struct {
	Step       intake.Step   `json:"step"`
	Record     intake.Record `json:"record"`
	Submitting bool          `json:"submitting,omitempty"`
	LastError  string        `json:"lastError,omitempty"`
}

// New returns the initial state: step 1 with an empty record.
func New() State {
	return State{Step: intake.StepBusiness}
}

// Complete reports whether the terminal confirmation step was reached.
func (s State) Complete() bool {
	return s.Step == intake.StepComplete
}

// Progress is the percentage shown on the progress bar.
func (s State) Progress() int {
	p := (int(s.Step) - 1) * 100 / 2
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Event drives a transition.
type Event interface {
	event()
}

// PayloadAccepted carries a validated step payload.
type PayloadAccepted struct {
	Payload intake.Payload
}

// SubmissionSucceeded reports that the complete record was persisted.
type SubmissionSucceeded struct{}

// SubmissionFailed reports that persisting the record failed. Message is caller-safe.
type SubmissionFailed struct {
	Message string
}

func (PayloadAccepted) event()     {}
func (SubmissionSucceeded) event() {}
func (SubmissionFailed) event()    {}

// Transition computes the next state.
//
//   - PayloadAccepted on step 1 or 2 merges the payload and advances one step.
//   - PayloadAccepted on step 3 merges the payload and marks the record as submitting;
//     the step does not change until the submission outcome arrives.
//   - SubmissionSucceeded moves to the terminal step.
//   - SubmissionFailed clears the submitting flag, records the message and stays on step 3.
func Transition(s State, e Event) (State, error) {
	if s.Complete() {
		return s, ErrComplete
	}

	switch ev := e.(type) {
	case PayloadAccepted:
		if s.Submitting {
			return s, ErrSubmitting
		}
		if ev.Payload == nil || ev.Payload.Step() != s.Step {
			return s, ErrStepMismatch
		}
		next := s
		next.Record = s.Record.Merge(ev.Payload)
		next.LastError = ""
		if s.Step == intake.StepMarketing {
			next.Submitting = true
			return next, nil
		}
		next.Step = s.Step + 1
		return next, nil

	case SubmissionSucceeded:
		if !s.Submitting {
			return s, ErrUnexpectedEvent
		}
		next := s
		next.Submitting = false
		next.LastError = ""
		next.Step = intake.StepComplete
		return next, nil

	case SubmissionFailed:
		if !s.Submitting {
			return s, ErrUnexpectedEvent
		}
		next := s
		next.Submitting = false
		next.LastError = ev.Message
		return next, nil
	}

	return s, fmt.Errorf("%w: %T", ErrUnexpectedEvent, e)
}
