package crmleadcreate

import (
	"context"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/zoho"
)

// LeadSource tags every lead this worker creates.
const LeadSource = "Website Intake"

// LeadCreator is satisfied by zoho.CRMClient.
type LeadCreator interface {
	CreateLead(ctx context.Context, lead *zoho.Lead) (string, error)
}

type ServiceDependencies struct {
	CRM    LeadCreator
	Logger logger.Logger
}
