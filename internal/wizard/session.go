package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/metrics"
	"lead-intake/internal/intake"
)

// ErrSessionNotFound is returned by stores for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is one visitor's pass through the wizard.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists sessions between requests.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

// View is the JSON shape returned for a session.
type View struct {
	SessionID string        `json:"sessionId"`
	Step      intake.Step   `json:"step"`
	StepKey   string        `json:"stepKey"`
	Title     string        `json:"title"`
	Progress  int           `json:"progress"`
	Record    intake.Record `json:"record"`
	Complete  bool          `json:"complete"`
	LastError string        `json:"lastError,omitempty"`
}

func (s *Session) View() View {
	return View{
		SessionID: s.ID,
		Step:      s.State.Step,
		StepKey:   s.State.Step.Key(),
		Title:     s.State.Step.Title(),
		Progress:  s.State.Progress(),
		Record:    s.State.Record,
		Complete:  s.State.Complete(),
		LastError: s.State.LastError,
	}
}

// sessionLock is held for one session while a step is applied. refs counts the holder plus
// waiters so the entry can be dropped once nobody needs it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Sessions serializes step submissions per session and keeps the store in sync.
type Sessions struct {
	store      Store
	controller *Controller
	logger     logger.Logger
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

func NewSessions(store Store, controller *Controller, log logger.Logger) *Sessions {
	return &Sessions{
		store:      store,
		controller: controller,
		logger:     log.WithFields(map[string]interface{}{"component": "wizard-sessions"}),
		now:        time.Now,
		locks:      make(map[string]*sessionLock),
	}
}

// Start creates a session on step 1.
func (m *Sessions) Start(ctx context.Context) (*Session, error) {
	now := m.now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		State:     New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	m.logger.Debug("Wizard session started", map[string]interface{}{"sessionId": s.ID})
	return s, nil
}

// Get loads a session.
func (m *Sessions) Get(ctx context.Context, id string) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, apperrors.NewSessionNotFoundError(id)
		}
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	return s, nil
}

// SubmitStep applies raw as the payload for step. Concurrent submissions to the same
// session run one at a time, so within one process a record is never persisted twice;
// other sessions are not held up by a slow final submit. The lock is process-local: with
// the Redis store behind several replicas, a session's requests must be routed to a single
// replica (sticky sessions) for that guarantee to hold.
//
// The session is saved whenever its state changed, including after a failed persistence
// attempt, so the caller's next read shows LastError.
func (m *Sessions) SubmitStep(ctx context.Context, id string, step intake.Step, raw []byte) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()

	metrics.StepPostsInFlight.Inc()
	defer metrics.StepPostsInFlight.Dec()

	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, advanceErr := m.controller.Advance(ctx, s.State, step, raw)
	if stateChanged(s.State, next) {
		s.State = next
		s.UpdatedAt = m.now().UTC()
		if err := m.store.Save(ctx, s); err != nil {
			m.logger.WithError(err).Error("Failed to save wizard session", map[string]interface{}{
				"sessionId": id,
				"step":      next.Step.Key(),
			})
			if advanceErr == nil {
				return nil, apperrors.NewSessionStoreFailedError(err)
			}
		}
	}
	if advanceErr != nil {
		return s, advanceErr
	}

	m.logger.Info("Wizard step accepted", map[string]interface{}{
		"sessionId": id,
		"step":      step.Key(),
		"nextStep":  s.State.Step.Key(),
	})
	return s, nil
}

// lock blocks until id is free and returns the matching unlock.
func (m *Sessions) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

func stateChanged(before, after State) bool {
	return before.Step != after.Step ||
		before.Submitting != after.Submitting ||
		before.LastError != after.LastError ||
		before.Record.Business != after.Record.Business ||
		before.Record.Website != after.Record.Website ||
		before.Record.Marketing != after.Record.Marketing
}
