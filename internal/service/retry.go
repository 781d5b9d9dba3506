package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"pdf-slide-synth/internal/domain"
)

const (
	defaultMaxRetries     = 2
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// RetryPolicy holds retry configuration
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy returns the default retry configuration
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     defaultMaxRetries,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
	}
}

// HTTPStatusError is returned by HTTP collaborators for non-2xx responses.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Status)
}

// shouldRetryStatus determines if a status code is retryable
func shouldRetryStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// IsTransient classifies errors for WithRetry. Failures marked with
// domain.ErrNonRetryable, caller cancellation and non-retryable HTTP statuses
// fail fast; everything else is retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrNonRetryable) || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return shouldRetryStatus(statusErr.StatusCode)
	}
	return true
}

// calculateBackoff returns InitialBackoff * 2^(retry-1), capped at MaxBackoff.
func calculateBackoff(retry int, policy RetryPolicy) time.Duration {
	if retry < 1 {
		retry = 1
	}
	backoff := float64(policy.InitialBackoff) * math.Pow(2, float64(retry-1))
	if policy.MaxBackoff > 0 && backoff > float64(policy.MaxBackoff) {
		backoff = float64(policy.MaxBackoff)
	}
	return time.Duration(backoff)
}

// RetryResult reports how a retried operation ended.
type RetryResult struct {
	Attempts int
	LastErr  error
}

// WithRetry runs fn up to 1+MaxRetries times. It stops early when fn
// succeeds, when isRetryable rejects the error, or when ctx ends.
func WithRetry[T any](
	ctx context.Context,
	policy RetryPolicy,
	isRetryable func(error) bool,
	logger domain.Logger,
	operation string,
	fn func(ctx context.Context, attempt int) (T, error),
) (T, RetryResult, error) {
	var zero T
	if isRetryable == nil {
		isRetryable = IsTransient
	}
	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var result RetryResult
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt, policy)
			logger.Info("Retrying operation", "operation", operation, "retry", attempt, "max_retries", maxRetries, "backoff", backoff.String())

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, result, ctx.Err()
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			return zero, result, err
		}

		result.Attempts++
		value, err := fn(ctx, attempt)
		if err == nil {
			return value, result, nil
		}
		result.LastErr = err
		logger.Warn("Operation attempt failed", "operation", operation, "attempt", attempt+1, "error", err)

		if !isRetryable(err) {
			logger.Warn("Failure is not retryable", "operation", operation, "attempt", attempt+1)
			break
		}
	}

	return zero, result, result.LastErr
}

// WithTimeout races fn against a timer. When the timer wins the in-flight
// call is abandoned and its eventual result is discarded.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if timeout <= 0 {
		return fn(ctx)
	}

	type outcome struct {
		value T
		err   error
	}
	callCtx, cancel := context.WithCancel(ctx)
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic in timed call: %v", r)}
			}
		}()
		v, err := fn(callCtx)
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		cancel()
		return out.value, out.err
	case <-timer.C:
		cancel()
		return zero, fmt.Errorf("%w after %v", domain.ErrTimeout, timeout)
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}
