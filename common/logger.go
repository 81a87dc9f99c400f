// Package common holds shared infrastructure for the inspection packages,
// currently the logging contract threaded through snapshot loading and
// sessions.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Severity represents log message severity levels.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging contract for the inspection packages. Library code
// takes a Logger and defaults to NewNoOpLogger when handed nil.
type Logger interface {
	// Logf logs a formatted message with the specified severity.
	Logf(severity Severity, format string, args ...any)

	// Debugf logs a formatted debug message.
	Debugf(format string, args ...any)

	// Infof logs a formatted info message.
	Infof(format string, args ...any)

	// Warningf logs a formatted warning message.
	Warningf(format string, args ...any)

	// Errorf logs a formatted error message.
	Errorf(format string, args ...any)
}

// StdLogger implements Logger using Go's standard logger.
type StdLogger struct {
	out      *log.Logger
	errOut   *log.Logger
	minLevel Severity
}

// NewStdLogger creates a logger writing to stdout/stderr.
func NewStdLogger(minLevel Severity) *StdLogger {
	return NewStdLoggerWithWriter(os.Stdout, os.Stderr, minLevel)
}

// NewStdLoggerWithWriter creates a logger with custom writers. Messages at
// SeverityError go to stderr, everything else to stdout.
func NewStdLoggerWithWriter(stdout, stderr io.Writer, minLevel Severity) *StdLogger {
	return &StdLogger{
		out:      log.New(stdout, "", log.Ltime),
		errOut:   log.New(stderr, "", log.Ltime),
		minLevel: minLevel,
	}
}

// Logf logs a formatted message with the specified severity.
func (l *StdLogger) Logf(severity Severity, format string, args ...any) {
	if severity < l.minLevel {
		return
	}
	msg := fmt.Sprintf("%s: %s", severity, fmt.Sprintf(format, args...))
	if severity == SeverityError {
		l.errOut.Output(2, msg)
		return
	}
	l.out.Output(2, msg)
}

// Debugf logs a formatted debug message.
func (l *StdLogger) Debugf(format string, args ...any) {
	l.Logf(SeverityDebug, format, args...)
}

// Infof logs a formatted info message.
func (l *StdLogger) Infof(format string, args ...any) {
	l.Logf(SeverityInfo, format, args...)
}

// Warningf logs a formatted warning message.
func (l *StdLogger) Warningf(format string, args ...any) {
	l.Logf(SeverityWarning, format, args...)
}

// Errorf logs a formatted error message.
func (l *StdLogger) Errorf(format string, args ...any) {
	l.Logf(SeverityError, format, args...)
}

// NoOpLogger is a logger that discards everything. It is the default for
// library paths that were not given a logger.
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Logf(severity Severity, format string, args ...any) {}
func (l *NoOpLogger) Debugf(format string, args ...any)                  {}
func (l *NoOpLogger) Infof(format string, args ...any)                   {}
func (l *NoOpLogger) Warningf(format string, args ...any)                {}
func (l *NoOpLogger) Errorf(format string, args ...any)                  {}
