package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"
)

// SlidingWindowLimiter caps actions per key over a rolling window.
type SlidingWindowLimiter struct {
	log     domain.WindowLog
	limits  map[domain.ActionKind]domain.RateLimit
	enabled bool
	now     func() time.Time
	logger  domain.Logger

	// mu makes the count-then-add of Allow atomic within this process.
	mu sync.Mutex
}

// LimiterOption configures a SlidingWindowLimiter.
type LimiterOption func(*SlidingWindowLimiter)

// WithLimits overrides quotas for the given actions.
func WithLimits(limits map[domain.ActionKind]domain.RateLimit) LimiterOption {
	return func(l *SlidingWindowLimiter) {
		for k, v := range limits {
			l.limits[k] = v
		}
	}
}

// WithLimiterEnabled turns enforcement on or off.
func WithLimiterEnabled(enabled bool) LimiterOption {
	return func(l *SlidingWindowLimiter) { l.enabled = enabled }
}

// WithLimiterClock replaces the time source.
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(l *SlidingWindowLimiter) { l.now = now }
}

func NewRateLimiter(log domain.WindowLog, logger domain.Logger, opts ...LimiterOption) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		log:     log,
		limits:  make(map[domain.ActionKind]domain.RateLimit, len(domain.DefaultRateLimits)),
		enabled: true,
		now:     time.Now,
		logger:  logger,
	}
	for k, v := range domain.DefaultRateLimits {
		l.limits[k] = v
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func windowKey(key string, action domain.ActionKind) string {
	return string(action) + ":" + key
}

func (l *SlidingWindowLimiter) limitFor(action domain.ActionKind) (domain.RateLimit, error) {
	limit, ok := l.limits[action]
	if !ok {
		return domain.RateLimit{}, fmt.Errorf("no rate limit configured for action %q", action)
	}
	return limit, nil
}

// Allow records a hit and reports whether it fits in the window.
// Denied hits are not recorded.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string, action domain.ActionKind) (bool, error) {
	if !l.enabled {
		return true, nil
	}
	limit, err := l.limitFor(action)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	wk := windowKey(key, action)
	count, _, err := l.log.Count(ctx, wk, now, limit.Window)
	if err != nil {
		return false, fmt.Errorf("count rate window: %w", err)
	}
	if count >= limit.MaxRequests {
		l.logger.Warn("Rate limit exceeded", "key", key, "action", action, "count", count, "limit", limit.MaxRequests)
		return false, nil
	}
	if err := l.log.Add(ctx, wk, now, limit.Window); err != nil {
		return false, fmt.Errorf("record rate window hit: %w", err)
	}
	return true, nil
}

func (l *SlidingWindowLimiter) Remaining(ctx context.Context, key string, action domain.ActionKind) (int, error) {
	st, err := l.Status(ctx, key, action)
	if err != nil {
		return 0, err
	}
	return st.Remaining, nil
}

// ResetAt is when the oldest hit in the window expires, or now when the
// window is empty.
func (l *SlidingWindowLimiter) ResetAt(ctx context.Context, key string, action domain.ActionKind) (time.Time, error) {
	st, err := l.Status(ctx, key, action)
	if err != nil {
		return time.Time{}, err
	}
	return st.ResetAt, nil
}

func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string, action domain.ActionKind) error {
	return l.log.Reset(ctx, windowKey(key, action))
}

func (l *SlidingWindowLimiter) Status(ctx context.Context, key string, action domain.ActionKind) (*domain.RateLimitStatus, error) {
	limit, err := l.limitFor(action)
	if err != nil {
		return nil, err
	}
	now := l.now()
	st := &domain.RateLimitStatus{Action: action, Limit: limit.MaxRequests, Remaining: limit.MaxRequests, ResetAt: now}
	if !l.enabled {
		return st, nil
	}

	count, oldest, err := l.log.Count(ctx, windowKey(key, action), now, limit.Window)
	if err != nil {
		return nil, fmt.Errorf("count rate window: %w", err)
	}
	st.Remaining = limit.MaxRequests - count
	if st.Remaining < 0 {
		st.Remaining = 0
	}
	if count > 0 {
		st.ResetAt = oldest.Add(limit.Window)
	}
	return st, nil
}

// EnforceLimit is Allow that converts a denial into a rate_limit AppError.
// A nil limiter allows everything.
func EnforceLimit(ctx context.Context, limiter domain.RateLimiter, key string, action domain.ActionKind) error {
	if limiter == nil {
		return nil
	}
	ok, err := limiter.Allow(ctx, key, action)
	if err != nil {
		return apperrors.NewInternalError("Rate limiter unavailable", err)
	}
	if ok {
		return nil
	}
	now := time.Now()
	resetAt, err := limiter.ResetAt(ctx, key, action)
	if err != nil {
		resetAt = now
	}
	return RateLimitExceeded(action, resetAt.Sub(now))
}

// RateLimitExceeded builds the user-facing denial.
func RateLimitExceeded(action domain.ActionKind, wait time.Duration) *apperrors.AppError {
	return apperrors.NewRateLimitError(fmt.Sprintf("Rate limit exceeded for %s. Please try again in %s.", action, FormatResetDuration(wait)))
}

// FormatResetDuration renders a wait as whole minutes, or seconds under a
// minute. Seconds round up.
func FormatResetDuration(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	seconds := int(math.Ceil(d.Seconds()))
	if minutes := seconds / 60; minutes > 0 {
		return plural(minutes, "minute")
	}
	return plural(seconds, "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
