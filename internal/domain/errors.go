package domain

import "errors"

// Domain errors
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrVariantNotFound    = errors.New("variant not found")
	ErrKeyNotFound        = errors.New("key not found")
	ErrInvalidFile        = errors.New("invalid file")
	ErrNoPages            = errors.New("document contains no pages")
	ErrNoExtractableText  = errors.New("document contains no extractable text")
	ErrNonRetryable       = errors.New("non-retryable failure")
	ErrTimeout            = errors.New("operation timed out")
	ErrModelNotConfigured = errors.New("model backend not configured")
	ErrNoSlides           = errors.New("no slides to export")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
