// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StepValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_step_validations_total",
			Help: "Step form submissions by step and outcome",
		},
		[]string{"step", "outcome"},
	)

	WizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_wizard_transitions_total",
			Help: "Wizard state transitions by resulting step",
		},
		[]string{"to"},
	)

	StepPostsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_wizard_step_posts_in_flight",
			Help: "Step submissions currently being processed",
		},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Submission endpoint requests by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_submission_duration_seconds",
			Help:    "Time spent validating and writing a submission",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_worker_jobs_completed_total",
			Help: "Post-submission worker runs that succeeded",
		},
		[]string{"worker"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_worker_jobs_failed_total",
			Help: "Post-submission worker runs that failed",
		},
		[]string{"worker", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "intake_worker_job_duration_seconds",
			Help: "Duration of post-submission worker runs in seconds",
		},
		[]string{"worker"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)
