// Package testutil provides shared test helpers for claimtrack packages.
package testutil

import (
	"sync"

	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry so tests can
// assert on what a component logged.
type MockLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
	fields   []logging.Field
	parent   *MockLogger
}

// LogMessage is a single entry captured by MockLogger.
type LogMessage struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{Messages: make([]LogMessage, 0)}
}

func (m *MockLogger) root() *MockLogger {
	if m.parent != nil {
		return m.parent.root()
	}
	return m
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := append(append([]logging.Field{}, m.fields...), fields...)
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, LogMessage{Level: level, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

// With returns a child that records into the same message list.
func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	return &MockLogger{parent: m, fields: append(append([]logging.Field{}, m.fields...), fields...)}
}

// Named is a no-op apart from sharing the message list.
func (m *MockLogger) Named(_ string) logging.Logger {
	return &MockLogger{parent: m, fields: m.fields}
}

func (m *MockLogger) Sync() error { return nil }

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]LogMessage, len(r.Messages))
	copy(result, r.Messages)
	return result
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = r.Messages[:0]
}

// HasMessage reports whether a message with the given level and text was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	for _, logged := range m.GetMessages() {
		if logged.Level == level && logged.Message == msg {
			return true
		}
	}
	return false
}

// FieldValue returns the value of the named field on the first entry with msg.
func (m *MockLogger) FieldValue(msg, key string) (interface{}, bool) {
	for _, logged := range m.GetMessages() {
		if logged.Message != msg {
			continue
		}
		for _, f := range logged.Fields {
			if f.Key == key {
				return f.Value, true
			}
		}
	}
	return nil, false
}

var _ logging.Logger = (*MockLogger)(nil)
