package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"pdf-slide-synth/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestWithRetry_TransientFailuresUseAllRetries(t *testing.T) {
	calls := 0
	_, res, err := WithRetry(context.Background(), fastPolicy(3), nil, NewMockLogger(), "test",
		func(ctx context.Context, attempt int) (string, error) {
			calls++
			return "", errors.New("connection reset")
		})

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, res.Attempts)
}

func TestWithRetry_NonRetryableFailsFast(t *testing.T) {
	calls := 0
	_, res, err := WithRetry(context.Background(), fastPolicy(3), nil, NewMockLogger(), "test",
		func(ctx context.Context, attempt int) (int, error) {
			calls++
			return 0, fmt.Errorf("%w: invalid JSON", domain.ErrNonRetryable)
		})

	require.ErrorIs(t, err, domain.ErrNonRetryable)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Attempts)
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	value, res, err := WithRetry(context.Background(), fastPolicy(2), nil, NewMockLogger(), "test",
		func(ctx context.Context, attempt int) (int, error) {
			if attempt < 2 {
				return 0, errors.New("flaky")
			}
			return 42, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 3, res.Attempts)
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 5, InitialBackoff: time.Hour}

	calls := 0
	_, _, err := WithRetry(ctx, policy, nil, NewMockLogger(), "test",
		func(ctx context.Context, attempt int) (int, error) {
			calls++
			cancel()
			return 0, errors.New("flaky")
		})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("timeout")))
	assert.True(t, IsTransient(fmt.Errorf("wrap: %w", domain.ErrTimeout)))
	assert.True(t, IsTransient(&HTTPStatusError{StatusCode: http.StatusServiceUnavailable}))
	assert.True(t, IsTransient(&HTTPStatusError{StatusCode: http.StatusTooManyRequests}))
	assert.False(t, IsTransient(&HTTPStatusError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsTransient(fmt.Errorf("x: %w", domain.ErrNonRetryable)))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(nil))
}

func TestCalculateBackoff(t *testing.T) {
	policy := RetryPolicy{InitialBackoff: time.Second, MaxBackoff: 5 * time.Second}
	assert.Equal(t, time.Second, calculateBackoff(1, policy))
	assert.Equal(t, 2*time.Second, calculateBackoff(2, policy))
	assert.Equal(t, 4*time.Second, calculateBackoff(3, policy))
	assert.Equal(t, 5*time.Second, calculateBackoff(4, policy))
}

func TestWithTimeout(t *testing.T) {
	t.Run("completes in time", func(t *testing.T) {
		v, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (string, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("abandons slow call", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		start := time.Now()
		_, err := WithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
			<-release
			return "late", nil
		})
		assert.ErrorIs(t, err, domain.ErrTimeout)
		assert.Less(t, time.Since(start), time.Second)
		assert.True(t, IsTransient(err))
	})

	t.Run("recovers panics", func(t *testing.T) {
		_, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (int, error) {
			panic("boom")
		})
		assert.ErrorContains(t, err, "boom")
	})
}
