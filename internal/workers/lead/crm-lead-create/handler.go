package crmleadcreate

import (
	"context"
	"fmt"

	"lead-intake/internal/common/config"
	"lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/zoho"
	"lead-intake/internal/submission"
	"lead-intake/internal/workers/lead"
)

const WorkerName = config.WorkerCRMLeadCreate

// Handler opens a Zoho CRM lead for each stored submission.
type Handler struct {
	config  *Config
	logger  logger.Logger
	service *Service
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CRM          LeadCreator
	CustomConfig *Config
	Logger       logger.Logger
}

// NewHandler builds the worker. Without an explicit CRM it dials Zoho with the configured credentials.
func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": WorkerName})

	crm := opts.CRM
	if crm == nil {
		crm = zoho.NewCRMClient(workerConfig.ZohoBaseURL, workerConfig.ZohoAPIKey, workerConfig.ZohoOAuthToken, workerConfig.Timeout)
	}

	return &Handler{
		config:  workerConfig,
		logger:  log,
		service: NewService(ServiceDependencies{CRM: crm, Logger: log}),
	}, nil
}

func (h *Handler) Name() string { return WorkerName }

func (h *Handler) Handle(ctx context.Context, receipt submission.Receipt) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	if !receipt.Record.Complete() {
		return errors.NewInvalidPayloadError(fmt.Errorf("submission %s is incomplete", receipt.FileName))
	}

	crmLead := LeadFor(receipt.FileName, receipt.Record)
	var leadID string
	err := lead.Attempt(ctx, h.config.MaxRetries, lead.DefaultBackoff, func(ctx context.Context) error {
		id, err := h.service.Create(ctx, crmLead)
		leadID = id
		return err
	})
	if err != nil {
		return err
	}

	h.logger.Info("CRM lead created", map[string]interface{}{
		"fileName": receipt.FileName,
		"leadId":   leadID,
		"company":  crmLead.Company,
	})
	return nil
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}
