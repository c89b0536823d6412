package startfollowup

import (
	"context"
	"fmt"

	"lead-intake/internal/common/config"
	"lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/submission"
	"lead-intake/internal/workers/lead"
)

const WorkerName = config.WorkerStartFollowUp

// Handler starts a Zeebe follow-up process for every stored submission.
type Handler struct {
	config  *Config
	logger  logger.Logger
	starter ProcessStarter
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      ProcessStarter
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}
	if opts.Camunda == nil {
		return nil, fmt.Errorf("%s requires a camunda client", WorkerName)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:  workerConfig,
		logger:  log.WithFields(map[string]interface{}{"worker": WorkerName}),
		starter: opts.Camunda,
	}, nil
}

func (h *Handler) Name() string { return WorkerName }

func (h *Handler) Handle(ctx context.Context, receipt submission.Receipt) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	record := receipt.Record
	if !record.Complete() {
		return errors.NewInvalidPayloadError(fmt.Errorf("submission %s is incomplete", receipt.FileName))
	}

	vars := Variables{
		FileName: receipt.FileName,
		Business: *record.Business,
		Budget:   record.Marketing.Budget,
	}

	var key int64
	err := lead.Attempt(ctx, h.config.MaxRetries, lead.DefaultBackoff, func(ctx context.Context) error {
		k, err := h.starter.StartProcess(ctx, h.config.ProcessID, vars)
		key = k
		return err
	})
	if err != nil {
		return err
	}

	h.logger.Info("Follow-up process started", map[string]interface{}{
		"fileName":           receipt.FileName,
		"processId":          h.config.ProcessID,
		"processInstanceKey": key,
	})
	return nil
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}
