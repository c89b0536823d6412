package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, mr *miniredis.Miniredis, limit int) *FixedWindowLimiter {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", limit, time.Minute)
	require.NoError(t, err)
	fixed := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }
	return limiter
}

func TestFixedWindowLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := newLimiter(t, mr, 2)
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "ip-1"), "first request should pass")
	assert.True(t, limiter.Allow(ctx, "ip-1"), "second request should pass")
	assert.False(t, limiter.Allow(ctx, "ip-1"), "third request should be blocked")
	assert.True(t, limiter.Allow(ctx, "ip-2"), "other keys have their own quota")
}

func TestFixedWindowLimiter_NewWindowResets(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := newLimiter(t, mr, 1)
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "ip-1"))
	assert.False(t, limiter.Allow(ctx, "ip-1"))

	next := time.Date(2026, 1, 1, 12, 1, 30, 0, time.UTC)
	limiter.now = func() time.Time { return next }
	assert.True(t, limiter.Allow(ctx, "ip-1"))
}

func TestFixedWindowLimiter_FailClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter := newLimiter(t, mr, 1)
	mr.Close()

	assert.False(t, limiter.Allow(context.Background(), "ip-1"), "limiter should fail closed on redis errors")
}

func TestNewFixedWindowLimiter_Invalid(t *testing.T) {
	_, err := NewFixedWindowLimiter(nil, "", 1, time.Second)
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	_, err = NewFixedWindowLimiter(client, "", 0, time.Second)
	assert.Error(t, err)
}

func TestFixedWindowLimiter_NilIsClosed(t *testing.T) {
	var limiter *FixedWindowLimiter
	assert.False(t, limiter.Allow(context.Background(), "ip"))
}
