package notifysales

import (
	"context"
	"fmt"

	"lead-intake/internal/common/config"
	"lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/submission"
	"lead-intake/internal/workers/lead"
)

const WorkerName = config.WorkerNotifySales

// Handler tells the sales team about each new lead by SES email and/or an SNS topic.
type Handler struct {
	config  *Config
	logger  logger.Logger
	service *Service
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Email        EmailSender
	Topic        TopicPublisher
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}
	if workerConfig.EmailEnabled && opts.Email == nil {
		return nil, fmt.Errorf("%s has SES enabled but no email client", WorkerName)
	}
	if workerConfig.TopicEnabled && opts.Topic == nil {
		return nil, fmt.Errorf("%s has SNS enabled but no topic client", WorkerName)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": WorkerName})

	return &Handler{
		config: workerConfig,
		logger: log,
		service: NewService(ServiceDependencies{
			Email:  opts.Email,
			Topic:  opts.Topic,
			Logger: log,
		}, workerConfig),
	}, nil
}

func (h *Handler) Name() string { return WorkerName }

func (h *Handler) Handle(ctx context.Context, receipt submission.Receipt) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	if !receipt.Record.Complete() {
		return errors.NewInvalidPayloadError(fmt.Errorf("submission %s is incomplete", receipt.FileName))
	}

	notice := BuildNotice(receipt.FileName, receipt.Record)

	// Channels retry independently so a flaky topic never re-sends the email.
	var firstErr error
	for channel, send := range h.service.Channels() {
		err := lead.Attempt(ctx, h.config.MaxRetries, lead.DefaultBackoff, func(ctx context.Context) error {
			return send(ctx, notice)
		})
		if err != nil {
			h.logger.WithError(err).Warn("Sales notification failed", map[string]interface{}{
				"channel":  channel,
				"fileName": receipt.FileName,
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}
