package domain

import (
	"fmt"
	"time"
)

// ActionKind names a rate-limited action.
type ActionKind string

const (
	ActionConversion ActionKind = "conversion"
	ActionExport     ActionKind = "export"
	ActionUpload     ActionKind = "upload"
)

// RateLimit is the quota for one action kind.
type RateLimit struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultRateLimits are applied when no override is configured.
var DefaultRateLimits = map[ActionKind]RateLimit{
	ActionConversion: {MaxRequests: 5, Window: time.Minute},
	ActionExport:     {MaxRequests: 10, Window: time.Minute},
	ActionUpload:     {MaxRequests: 10, Window: time.Minute},
}

// ParseActionKind validates a path or flag value.
func ParseActionKind(s string) (ActionKind, error) {
	a := ActionKind(s)
	if _, ok := DefaultRateLimits[a]; !ok {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// RateLimitStatus is a snapshot of a limiter key.
type RateLimitStatus struct {
	Action    ActionKind `json:"action"`
	Remaining int        `json:"remaining"`
	Limit     int        `json:"limit"`
	ResetAt   time.Time  `json:"resetAt"`
}
