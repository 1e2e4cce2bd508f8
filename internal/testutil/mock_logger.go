// Package testutil provides common test utilities for simpol.
package testutil

import (
	"context"
	"sync"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger for testing purposes.  It records
// every entry, including those written through derived loggers, together
// with the fields bound by With, WithError and WithContext.
type MockLogger struct {
	sink   *sink
	name   string
	fields []logging.Field
}

type sink struct {
	mu       sync.Mutex
	messages []LogMessage
	level    logging.Level
}

// LogMessage represents a single log entry captured by MockLogger.
type LogMessage struct {
	Logger  string
	Level   string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the first field named key, if present.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for _, f := range m.Fields {
		if f.Key != key {
			continue
		}
		switch {
		case f.String != "":
			return f.String, true
		case f.Interface != nil:
			return f.Interface, true
		default:
			return f.Integer, true
		}
	}
	return nil, false
}

// NewMockLogger creates a new MockLogger instance.
func NewMockLogger() *MockLogger {
	return &MockLogger{sink: &sink{}}
}

func (m *MockLogger) derive(name string, fields ...logging.Field) *MockLogger {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(append(all, m.fields...), fields...)
	return &MockLogger{sink: m.sink, name: name, fields: all}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(append(all, m.fields...), fields...)
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.messages = append(m.sink.messages, LogMessage{
		Logger:  m.name,
		Level:   level,
		Message: msg,
		Fields:  all,
	})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) {
	m.log("debug", msg, fields)
}

func (m *MockLogger) Info(msg string, fields ...logging.Field) {
	m.log("info", msg, fields)
}

func (m *MockLogger) Warn(msg string, fields ...logging.Field) {
	m.log("warn", msg, fields)
}

func (m *MockLogger) Error(msg string, fields ...logging.Field) {
	m.log("error", msg, fields)
}

// Fatal records the entry; it does not exit.
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) {
	m.log("fatal", msg, fields)
}

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	return m.derive(m.name, fields...)
}

func (m *MockLogger) Named(name string) logging.Logger {
	if m.name != "" {
		name = m.name + "." + name
	}
	return m.derive(name)
}

func (m *MockLogger) WithContext(ctx context.Context) logging.Logger {
	if id := logging.RequestIDFrom(ctx); id != "" {
		return m.derive(m.name, logging.String(logging.FieldRequestID, id))
	}
	return m
}

func (m *MockLogger) WithError(err error) logging.Logger {
	if err == nil {
		return m
	}
	return m.derive(m.name, logging.Err(err))
}

func (m *MockLogger) SetLevel(level logging.Level) {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.level = level
}

// Level returns the last level passed to SetLevel.
func (m *MockLogger) Level() logging.Level {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	return m.sink.level
}

func (m *MockLogger) Sync() error {
	return nil
}

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	result := make([]LogMessage, len(m.sink.messages))
	copy(result, m.sink.messages)
	return result
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.messages = m.sink.messages[:0]
}

// HasMessage checks if a message with the given level and content was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	_, ok := m.Find(level, msg)
	return ok
}

// Find returns the first entry with the given level and message.
func (m *MockLogger) Find(level, msg string) (LogMessage, bool) {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	for _, logged := range m.sink.messages {
		if logged.Level == level && logged.Message == msg {
			return logged, true
		}
	}
	return LogMessage{}, false
}

//Personal.AI order the ending
