package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lead-intake/internal/common/errors"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"NOT_FOUND: no process with id lead-follow-up", false},
		{"invalid argument", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.err)), tt.err)
	}
}

func TestClient_StartProcess(t *testing.T) {
	tests := []struct {
		name          string
		resp          *pb.CreateProcessInstanceResponse
		err           error
		wantKey       int64
		wantCode      apperrors.ErrorCode
		wantRetryable bool
	}{
		{name: "created", resp: &pb.CreateProcessInstanceResponse{ProcessInstanceKey: 42}, wantKey: 42},
		{name: "broker unavailable", err: errors.New("rpc error: code = Unavailable desc = connection refused"),
			wantCode: apperrors.ErrCodeExternalService, wantRetryable: true},
		{name: "unknown process", err: errors.New("NOT_FOUND: no process with id lead-follow-up"),
			wantCode: apperrors.ErrCodeExternalService, wantRetryable: false},
		{name: "deadline", err: errors.New("context deadline exceeded"),
			wantCode: apperrors.ErrCodeTimeout, wantRetryable: true},
		{name: "empty response", wantCode: apperrors.ErrCodeExternalService, wantRetryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			calls := 0
			c := &Client{requestTimeout: time.Second}
			c.create = func(ctx context.Context, processID string, _ interface{}) (*pb.CreateProcessInstanceResponse, error) {
				calls++
				gotID = processID
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				return tt.resp, tt.err
			}

			key, err := c.StartProcess(context.Background(), "lead-follow-up", map[string]string{"fileName": "f.json"})
			assert.Equal(t, 1, calls)
			assert.Equal(t, "lead-follow-up", gotID)

			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantKey, key)
				return
			}
			require.Error(t, err)
			stdErr := apperrors.Normalize(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
		})
	}
}

func TestClient_CloseWithoutConnection(t *testing.T) {
	assert.NoError(t, (&Client{}).Close())
}
