package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/intake"
	"lead-intake/internal/submission"
	"lead-intake/internal/wizard"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// HealthChecker reports whether submissions can currently be stored.
type HealthChecker interface {
	Writable() error
}

// Handlers serves the intake API.
type Handlers struct {
	submissions *submission.Service
	sessions    *wizard.Sessions
	health      HealthChecker
	errors      *apperrors.ErrorHandler
	logger      logger.Logger
	maxBody     int64
}

type HandlersOptions struct {
	Submissions  *submission.Service
	Sessions     *wizard.Sessions
	Health       HealthChecker
	Logger       logger.Logger
	MaxBodyBytes int64
}

func NewHandlers(opts HandlersOptions) *Handlers {
	log := opts.Logger.WithFields(map[string]interface{}{"component": "api"})
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Handlers{
		submissions: opts.Submissions,
		sessions:    opts.Sessions,
		health:      opts.Health,
		errors:      apperrors.NewErrorHandler(log),
		logger:      log,
		maxBody:     maxBody,
	}
}

// SubmitForm stores a complete record: {"success":true} on success, the generic save failure
// otherwise.
func (h *Handlers) SubmitForm(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}

	if _, err := h.submissions.Handle(r.Context(), body); err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handlers) Forms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"forms": intake.Forms()})
}

func (h *Handlers) StartSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Start(r.Context())
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.View())
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

// SubmitStep feeds one step payload to a session. After a failed save the session keeps
// lastError, visible on the next GET.
func (h *Handlers) SubmitStep(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "step")
	step, ok := intake.ParseStep(key)
	if !ok {
		h.errors.Respond(w, r, apperrors.NewInvalidPayloadError(fmt.Errorf("unknown step %q", key)))
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}

	s, err := h.sessions.SubmitStep(r.Context(), chi.URLParam(r, "id"), step, body)
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Writable(); err != nil {
			h.logger.WithError(err).Error("Health check failed", nil)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewInvalidPayloadError(fmt.Errorf("body exceeds %d bytes", tooLarge.Limit))
		}
		return nil, apperrors.NewInvalidPayloadError(err)
	}
	return body, nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
