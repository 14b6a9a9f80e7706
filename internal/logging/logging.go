// Package logging builds the charmbracelet loggers used across the SDK and
// the arcade tooling.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to stderr with the given prefix and level
// name ("debug", "info", "warn", "error"). Unknown levels select info.
func New(prefix, level string) *log.Logger {
	return NewWriter(os.Stderr, prefix, level)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, prefix, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          prefix,
		Level:           ParseLevel(level),
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel maps a level name to a log.Level.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
