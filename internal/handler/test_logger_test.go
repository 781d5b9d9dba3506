package handler

import (
	"sync"

	"pdf-slide-synth/internal/domain"
)

// MockHandlerLogger records error messages so tests can assert on 5xx logging.
type MockHandlerLogger struct {
	mu     sync.Mutex
	errors []string
}

func NewMockHandlerLogger() domain.Logger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{})  {}
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{}) {}
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{})  {}

func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *MockHandlerLogger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}
