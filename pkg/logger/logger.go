// Package logger provides the logging interface used across cookieaudit.
// The analysis commands log progress at INFO to the console and keep a
// DEBUG trail (conflicting consent entries, skipped expiries) in a log file.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Level is the minimum severity a StandardLogger writes.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// Logger defines the interface for logging across all cookieaudit components.
type Logger interface {
	// Debug logs diagnostic detail (e.g., the rows behind a blacklisted cookie).
	Debug(format string, args ...interface{})

	// Info logs an informational message (e.g., "Extracted 1200 cookie updates").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "could not convert declared expiry").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "A database error occurred").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger (e.g., an open log file).
	// Safe to call multiple times. Returns nil for loggers without resources.
	Close() error
}

// StandardLogger wraps the stdlib *log.Logger for console/file output.
type StandardLogger struct {
	logger *log.Logger
	level  Level
	file   *os.File
}

// NewStandardLogger creates a logger that wraps the given *log.Logger and
// writes every level.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l, level: LevelDebug}
}

// NewLeveledLogger creates a logger that drops messages below min.
func NewLeveledLogger(l *log.Logger, min Level) *StandardLogger {
	return &StandardLogger{logger: l, level: min}
}

// NewFileLogger appends to the file at path, creating it and its parent
// directory if needed. The file is closed by Close.
func NewFileLogger(path string, min Level) (*StandardLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error: cannot create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open log file: %w", err)
	}
	return &StandardLogger{
		logger: log.New(f, "", log.LstdFlags),
		level:  min,
		file:   f,
	}, nil
}

// Debug logs a diagnostic message with [DEBUG] prefix.
func (s *StandardLogger) Debug(format string, args ...interface{}) {
	s.printf(LevelDebug, "[DEBUG] ", format, args...)
}

// Info logs an informational message with [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.printf(LevelInfo, "[INFO] ", format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.printf(LevelWarning, "[WARNING] ", format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.printf(LevelError, "[ERROR] ", format, args...)
}

func (s *StandardLogger) printf(lvl Level, prefix, format string, args ...interface{}) {
	if lvl < s.level {
		return
	}
	s.logger.Printf(prefix+format, args...)
}

// Close closes the underlying log file, if any.
func (s *StandardLogger) Close() error {
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	return f.Close()
}

// NopLogger is a logger that discards all messages.
// Useful for testing or when logging should be disabled.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(format string, args ...interface{}) {}

// Info discards the message.
func (n *NopLogger) Info(format string, args ...interface{}) {}

// Warning discards the message.
func (n *NopLogger) Warning(format string, args ...interface{}) {}

// Error discards the message.
func (n *NopLogger) Error(format string, args ...interface{}) {}

// Close is a no-op.
func (n *NopLogger) Close() error {
	return nil
}

// Ensure implementations satisfy the Logger interface.
var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger implements Logger for testing purposes.
// It records all log calls for verification in tests.
type MockLogger struct {
	DebugCalls   []string
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		DebugCalls:   make([]string, 0),
		InfoCalls:    make([]string, 0),
		WarningCalls: make([]string, 0),
		ErrorCalls:   make([]string, 0),
	}
}

// Debug records the formatted message.
func (m *MockLogger) Debug(format string, args ...interface{}) {
	m.DebugCalls = append(m.DebugCalls, fmt.Sprintf(format, args...))
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.CloseCalled = true
	return nil
}

// Ensure MockLogger satisfies the Logger interface.
var _ Logger = (*MockLogger)(nil)
