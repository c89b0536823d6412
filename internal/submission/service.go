package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/metrics"
	"lead-intake/internal/intake"
)

// Receipt describes a submission that is durably on disk.
type Receipt struct {
	FileName    string                 `json:"fileName"`
	SubmittedAt time.Time              `json:"submittedAt"`
	Record      intake.Record          `json:"record"`
	Document    map[string]interface{} `json:"-"`
}

// Worker runs a follow-up task for a stored submission. Workers never affect the response.
type Worker interface {
	Name() string
	Handle(ctx context.Context, receipt Receipt) error
}

// Service validates and stores submissions, then hands them to workers.
type Service struct {
	store   *FileStore
	workers []Worker
	logger  logger.Logger
	now     func() time.Time

	workerTimeout time.Duration
	wg            sync.WaitGroup
}

type Option func(*Service)

// WithWorkers registers post-submission workers.
func WithWorkers(workers ...Worker) Option {
	return func(s *Service) { s.workers = append(s.workers, workers...) }
}

// WithWorkerTimeout bounds each worker run.
func WithWorkerTimeout(d time.Duration) Option {
	return func(s *Service) { s.workerTimeout = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *FileStore, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:         store,
		logger:        log.WithFields(map[string]interface{}{"component": "submission"}),
		now:           time.Now,
		workerTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle validates a raw request body and stores it. The stored file holds the body as
// posted, re-indented. Validation problems come back as VALIDATION_FAILED or
// INVALID_PAYLOAD; any storage failure as PERSISTENCE_FAILED.
func (s *Service) Handle(ctx context.Context, raw []byte) (*Receipt, error) {
	start := time.Now()
	receipt, err := s.handle(ctx, raw)
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case apperrors.IsCode(err, apperrors.ErrCodePersistenceFailed):
		outcome = metrics.OutcomeFailed
	default:
		outcome = metrics.OutcomeInvalid
	}
	metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	metrics.SubmissionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return receipt, err
}

func (s *Service) handle(ctx context.Context, raw []byte) (*Receipt, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, apperrors.NewInvalidPayloadError(fmt.Errorf("expected a JSON object"))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.NewInvalidPayloadError(err)
	}

	result, err := intake.ValidateRecord(doc)
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError(err)
	}
	if err := result.Err("record"); err != nil {
		s.logger.Debug("Submission rejected", map[string]interface{}{
			"errors": result.GetErrorMessages(),
		})
		return nil, err
	}

	var record intake.Record
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, apperrors.NewInvalidPayloadError(err)
	}

	return s.persist(ctx, doc, record)
}

// Submit stores a record assembled in-process. It lets the service back a wizard directly.
func (s *Service) Submit(ctx context.Context, record intake.Record) error {
	if !record.Complete() {
		return apperrors.NewPersistenceFailedError(fmt.Errorf("record is missing a section"))
	}
	data, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewPersistenceFailedError(err)
	}
	_, err = s.Handle(ctx, data)
	return err
}

func (s *Service) persist(ctx context.Context, doc map[string]interface{}, record intake.Record) (*Receipt, error) {
	name, at, err := s.store.Write(s.now(), doc)
	if err != nil {
		s.logger.WithError(err).Error("Failed to save form data", map[string]interface{}{
			"dir": s.store.Dir(),
		})
		return nil, apperrors.NewPersistenceFailedError(err)
	}

	receipt := &Receipt{FileName: name, SubmittedAt: at, Record: record, Document: doc}
	s.logger.Info("Form submission saved", map[string]interface{}{
		"fileName":     name,
		"businessName": record.Business.BusinessName,
	})
	s.dispatch(ctx, *receipt)
	return receipt, nil
}

// dispatch runs every worker in the background, detached from the request's cancellation.
func (s *Service) dispatch(ctx context.Context, receipt Receipt) {
	if len(s.workers) == 0 {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, w := range s.workers {
		s.wg.Add(1)
		go func(w Worker) {
			defer s.wg.Done()
			s.run(base, w, receipt)
		}(w)
	}
}

func (s *Service) run(ctx context.Context, w Worker, receipt Receipt) {
	ctx, cancel := context.WithTimeout(ctx, s.workerTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(w.Name()).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			metrics.WorkerJobsFailed.WithLabelValues(w.Name(), string(apperrors.ErrCodeInternal)).Inc()
			s.logger.Error("Worker panicked", map[string]interface{}{
				"worker":   w.Name(),
				"fileName": receipt.FileName,
				"panic":    fmt.Sprint(r),
			})
		}
	}()

	if err := w.Handle(ctx, receipt); err != nil {
		stdErr := apperrors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(w.Name(), string(stdErr.Code)).Inc()
		s.logger.WithError(err).Warn("Worker failed", map[string]interface{}{
			"worker":   w.Name(),
			"fileName": receipt.FileName,
			"code":     string(stdErr.Code),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(w.Name()).Inc()
}

// Wait blocks until every dispatched worker has returned.
func (s *Service) Wait() {
	s.wg.Wait()
}
