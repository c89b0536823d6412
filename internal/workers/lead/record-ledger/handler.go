package recordledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"lead-intake/internal/common/config"
	"lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/submission"
	"lead-intake/internal/workers/lead"
)

const WorkerName = config.WorkerRecordLedger

// Handler copies every stored submission into the Postgres ledger.
type Handler struct {
	config  *Config
	logger  logger.Logger
	service *Service
	newID   func() uuid.UUID
}

type HandlerOptions struct {
	AppConfig    *config.Config
	DB           Execer
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}
	if opts.DB == nil {
		return nil, fmt.Errorf("%s requires a database", WorkerName)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": WorkerName})

	return &Handler{
		config:  workerConfig,
		logger:  log,
		service: NewService(ServiceDependencies{DB: opts.DB, Logger: log}),
		newID:   uuid.New,
	}, nil
}

func (h *Handler) Name() string { return WorkerName }

func (h *Handler) Handle(ctx context.Context, receipt submission.Receipt) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	entry, err := h.entryFor(receipt)
	if err != nil {
		return err
	}

	err = lead.Attempt(ctx, h.config.MaxRetries, lead.DefaultBackoff, func(ctx context.Context) error {
		return h.service.Insert(ctx, entry)
	})
	if err != nil {
		return err
	}

	h.logger.Info("Submission recorded in ledger", map[string]interface{}{
		"fileName": receipt.FileName,
		"id":       entry.ID,
	})
	return nil
}

func (h *Handler) entryFor(receipt submission.Receipt) (Entry, error) {
	record := receipt.Record
	if !record.Complete() {
		return Entry{}, errors.NewInvalidPayloadError(fmt.Errorf("submission %s is incomplete", receipt.FileName))
	}

	doc, err := json.Marshal(receipt.Document)
	if receipt.Document == nil {
		doc, err = json.Marshal(record)
	}
	if err != nil {
		return Entry{}, errors.NewInvalidPayloadError(err)
	}

	return Entry{
		ID:              h.newID().String(),
		FileName:        receipt.FileName,
		BusinessName:    record.Business.BusinessName,
		BusinessDomain:  record.Business.BusinessDomain,
		PrimaryLanguage: record.Business.PrimaryLanguage,
		BudgetType:      record.Marketing.Budget.Type,
		BudgetAmount:    record.Marketing.Budget.Amount,
		Record:          doc,
		SubmittedAt:     receipt.SubmittedAt,
	}, nil
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}
