package service

import (
	"fmt"
	"sync"
)

// MockLogger collects log lines for assertions.
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (l *MockLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %s", level, msg))
}

func (l *MockLogger) Info(msg string, fields ...interface{})  { l.record("INFO", msg) }
func (l *MockLogger) Debug(msg string, fields ...interface{}) { l.record("DEBUG", msg) }
func (l *MockLogger) Warn(msg string, fields ...interface{})  { l.record("WARN", msg) }
func (l *MockLogger) Error(msg string, err error, fields ...interface{}) {
	l.record("ERROR", fmt.Sprintf("%s: %v", msg, err))
}

func (l *MockLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}
