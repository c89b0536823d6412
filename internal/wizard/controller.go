package wizard

import (
	"context"
	"errors"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/metrics"
	"lead-intake/internal/intake"
)

// Submitter persists a complete record. A nil error means the record is durable.
type Submitter interface {
	Submit(ctx context.Context, record intake.Record) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, record intake.Record) error

func (f SubmitterFunc) Submit(ctx context.Context, record intake.Record) error {
	return f(ctx, record)
}

// Controller applies step submissions to wizard state and runs persistence after step 3.
type Controller struct {
	submitter Submitter
	logger    logger.Logger
}

func NewController(submitter Submitter, log logger.Logger) *Controller {
	return &Controller{
		submitter: submitter,
		logger:    log.WithFields(map[string]interface{}{"component": "wizard-controller"}),
	}
}

// Advance validates raw as the payload for step and applies it to s.
//
// The returned state is always the one to keep: on validation errors it equals s, on a
// persistence failure it is s with the marketing answers merged, still on step 3, with
// LastError set. Persistence completes before the step moves past 3.
func (c *Controller) Advance(ctx context.Context, s State, step intake.Step, raw []byte) (State, error) {
	if s.Complete() {
		return s, apperrors.NewWizardCompleteError()
	}
	if s.Submitting {
		return s, apperrors.NewStepMismatchError(s.Step.Key(), step.Key())
	}
	if step != s.Step {
		return s, apperrors.NewStepMismatchError(s.Step.Key(), step.Key())
	}

	form, err := intake.NewStepForm(step)
	if err != nil {
		return s, apperrors.NewStepMismatchError(s.Step.Key(), step.Key())
	}

	next := s
	err = form.Submit(raw, func(p intake.Payload) error {
		accepted, err := Transition(s, PayloadAccepted{Payload: p})
		if err != nil {
			return mapTransitionError(s, step, err)
		}
		next = accepted
		if !accepted.Submitting {
			return nil
		}
		next, err = c.persist(ctx, accepted)
		return err
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeValidationFailed) || apperrors.IsCode(err, apperrors.ErrCodeInvalidPayload) {
			metrics.StepValidations.WithLabelValues(step.Key(), metrics.OutcomeInvalid).Inc()
		}
		return next, err
	}

	metrics.StepValidations.WithLabelValues(step.Key(), metrics.OutcomeOK).Inc()
	metrics.WizardTransitions.WithLabelValues(next.Step.Key()).Inc()
	return next, nil
}

func (c *Controller) persist(ctx context.Context, s State) (State, error) {
	submitErr := c.submitter.Submit(ctx, s.Record)
	if submitErr == nil {
		return Transition(s, SubmissionSucceeded{})
	}

	stdErr := apperrors.Normalize(submitErr)
	if stdErr.Code != apperrors.ErrCodePersistenceFailed && stdErr.Code != apperrors.ErrCodeSubmissionTransport {
		stdErr = apperrors.NewPersistenceFailedError(submitErr)
	}
	c.logger.WithError(submitErr).Error("Submission failed, staying on final step", map[string]interface{}{
		"code": string(stdErr.Code),
	})

	failed, err := Transition(s, SubmissionFailed{Message: apperrors.PublicMessage(stdErr)})
	if err != nil {
		return s, err
	}
	return failed, stdErr
}

func mapTransitionError(s State, step intake.Step, err error) error {
	switch {
	case errors.Is(err, ErrComplete):
		return apperrors.NewWizardCompleteError()
	default:
		return apperrors.NewStepMismatchError(s.Step.Key(), step.Key())
	}
}
