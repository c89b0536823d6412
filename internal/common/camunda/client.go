// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "lead-intake/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client starts lead follow-up processes on a Zeebe broker. It makes a single attempt per
// call; callers own retries.
type Client struct {
	client            zbc.Client
	create            func(ctx context.Context, processID string, variables interface{}) (*pb.CreateProcessInstanceResponse, error)
	requestTimeout    time.Duration
	connectionTimeout time.Duration
}

// NewClient connects over plaintext and checks the broker topology before returning.
func NewClient(address string, requestTimeout time.Duration) (*Client, error) {
	if requestTimeout == 0 {
		requestTimeout = 30 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{
		client:            zeebeClient,
		requestTimeout:    requestTimeout,
		connectionTimeout: 10 * time.Second,
	}
	c.create = c.sendCreateInstance

	if err := c.HealthCheck(context.Background()); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", address, err)
	}
	return c, nil
}

func (c *Client) sendCreateInstance(ctx context.Context, processID string, variables interface{}) (*pb.CreateProcessInstanceResponse, error) {
	cmd, err := c.client.NewCreateInstanceCommand().
		BPMNProcessId(processID).
		LatestVersion().
		VariablesFromObject(variables)
	if err != nil {
		return nil, fmt.Errorf("encode variables: %w", err)
	}
	return cmd.Send(ctx)
}

// StartProcess creates an instance of the latest deployed version of processID and
// returns its key.
func (c *Client) StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.create(ctx, processID, variables)
	if err != nil {
		return 0, mapZeebeError(err, "create-instance:"+processID)
	}
	if resp == nil {
		return 0, apperrors.NewExternalServiceError("zeebe", fmt.Errorf("empty create-instance response"))
	}
	return resp.GetProcessInstanceKey(), nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// isRetryableZeebeError checks if the error is transient.
func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"resource_exhausted",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// mapZeebeError converts broker errors into application errors. Deadlines become TIMEOUT;
// anything else is EXTERNAL_SERVICE_ERROR, retryable only when the broker was unreachable.
func mapZeebeError(err error, operation string) error {
	wrapped := fmt.Errorf("zeebe operation %q failed: %w", operation, err)
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout") {
		return apperrors.NewTimeoutError("zeebe", wrapped)
	}

	stdErr := apperrors.NewExternalServiceError("zeebe", wrapped)
	stdErr.Retryable = isRetryableZeebeError(err)
	return stdErr
}

// HealthCheck asks the broker for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.connectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
