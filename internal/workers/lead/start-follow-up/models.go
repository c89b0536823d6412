package startfollowup

import (
	"context"

	"lead-intake/internal/intake"
)

// ProcessStarter is satisfied by camunda.Client.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error)
}

// Variables seed the follow-up process instance.
type Variables struct {
	FileName string                 `json:"fileName"`
	Business intake.BusinessDetails `json:"business"`
	Budget   intake.Budget          `json:"budget"`
}
