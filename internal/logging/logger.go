package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger provides structured logging with redaction support.
// In addition to stderr output it can tee every message to a durable
// per-run log file, so a failed run is always diagnosable from the log
// alone even when no artifact was written.
type Logger struct {
	debug   bool
	noColor bool

	mu   sync.Mutex
	file *os.File
}

// New creates a new logger instance
func New(debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
	}
}

// AttachFile opens path and tees all subsequent messages to it.
// File output is plain text without color codes.
func (l *Logger) AttachFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	l.mu.Lock()
	l.file = f
	l.mu.Unlock()
	return nil
}

// RunLogPath returns the default per-run log file name, stamped with
// the run's UTC start time.
func RunLogPath(now time.Time) string {
	return fmt.Sprintf("pamforge_%s.log", now.UTC().Format("20060102T150405Z"))
}

// Close flushes and closes the attached log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) emit(level, color, msg string) {
	if !l.noColor && color != "" {
		fmt.Fprintf(os.Stderr, "\033[%sm%s\033[0m %s\n", color, level, msg)
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n", level, msg)
	}
	l.mu.Lock()
	if l.file != nil {
		fmt.Fprintf(l.file, "%s | %-7s | %s\n", time.Now().UTC().Format(time.RFC3339), level, msg)
	}
	l.mu.Unlock()
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit("✓", "32", fmt.Sprintf(format, args...))
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit("⚠", "33", fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("✗", "31", fmt.Sprintf(format, args...))
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit("[DEBUG]", "36", fmt.Sprintf(format, args...))
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces sensitive values in a string with [REDACTED]
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 { // Only redact non-trivial secrets
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}

// Mask shortens a sensitive value for safe inclusion in warnings.
// Values of eight characters or fewer are fully masked.
func Mask(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:3] + "***" + value[len(value)-3:]
}
