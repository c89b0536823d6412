package recordledger

import (
	"context"

	"lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
)

const insertEntry = `
INSERT INTO form_submissions
    (id, file_name, business_name, business_domain, primary_language, budget_type, budget_amount, record, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (file_name) DO NOTHING`

type Service struct {
	db     Execer
	logger logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{db: deps.DB, logger: deps.Logger}
}

// Insert writes the entry. Replaying a file already in the ledger is a no-op.
func (s *Service) Insert(ctx context.Context, e Entry) error {
	res, err := s.db.ExecContext(ctx, insertEntry,
		e.ID, e.FileName, e.BusinessName, e.BusinessDomain, e.PrimaryLanguage,
		e.BudgetType, e.BudgetAmount, e.Record, e.SubmittedAt,
	)
	if err != nil {
		if ctx.Err() != nil {
			return errors.NewTimeoutError("postgres", err)
		}
		return errors.NewExternalServiceError("postgres", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("Submission already in ledger", map[string]interface{}{
			"fileName": e.FileName,
		})
	}
	return nil
}
