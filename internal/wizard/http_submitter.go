package wizard

import (
	"context"
	"fmt"

	apperrors "lead-intake/internal/common/errors"
	commonhttp "lead-intake/internal/common/http"
	"lead-intake/internal/intake"
)

// HTTPSubmitter persists records by posting them to a submission endpoint.
type HTTPSubmitter struct {
	client *commonhttp.Client
	url    string
}

func NewHTTPSubmitter(client *commonhttp.Client, url string) *HTTPSubmitter {
	return &HTTPSubmitter{client: client, url: url}
}

type submitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Submit posts record and succeeds only on a 2xx response carrying success=true.
func (h *HTTPSubmitter) Submit(ctx context.Context, record intake.Record) error {
	var resp submitResponse
	if err := h.client.PostJSON(ctx, h.url, record, &resp); err != nil {
		return apperrors.NewSubmissionTransportError(err)
	}
	if !resp.Success {
		return apperrors.NewSubmissionTransportError(fmt.Errorf("endpoint did not acknowledge: %q", resp.Error))
	}
	return nil
}
