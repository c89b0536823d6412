package crmleadcreate

import (
	"context"
	"fmt"
	"strings"

	"lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/zoho"
	"lead-intake/internal/intake"
)

type Service struct {
	crm    LeadCreator
	logger logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{crm: deps.CRM, logger: deps.Logger}
}

// LeadFor maps a complete record onto a Zoho lead. The form has no contact name, so the
// business name fills Last_Name, which Zoho requires.
func LeadFor(fileName string, record intake.Record) *zoho.Lead {
	b, w, m := record.Business, record.Website, record.Marketing

	var desc strings.Builder
	fmt.Fprintf(&desc, "Primary service: %s\n", b.PrimaryService)
	fmt.Fprintf(&desc, "Website features: %s\n", strings.Join(labels(intake.WebsiteFeatures, w.Features), ", "))
	fmt.Fprintf(&desc, "Preferred marketing: %s\n", label(intake.SocialPlatforms, m.PreferredMarketing))
	fmt.Fprintf(&desc, "Budget: %s (%s)\n", m.Budget.Amount, label(intake.BudgetTypes, m.Budget.Type))
	fmt.Fprintf(&desc, "Submission: %s", fileName)

	return &zoho.Lead{
		Company:     b.BusinessName,
		LastName:    b.BusinessName,
		LeadSource:  LeadSource,
		Industry:    label(intake.BusinessDomains, b.BusinessDomain),
		City:        b.Location,
		Description: desc.String(),
	}
}

func (s *Service) Create(ctx context.Context, lead *zoho.Lead) (string, error) {
	id, err := s.crm.CreateLead(ctx, lead)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.NewTimeoutError("zoho", err)
		}
		return "", errors.NewExternalServiceError("zoho", err)
	}
	return id, nil
}

func label(options []intake.Option, id string) string {
	for _, o := range options {
		if o.ID == id {
			return o.Label
		}
	}
	return id
}

func labels(options []intake.Option, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, label(options, id))
	}
	return out
}
