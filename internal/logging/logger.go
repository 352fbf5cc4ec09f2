// Package logging wraps charmbracelet/log with the run's level and output
// format, and carries the logger through contexts.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

//nolint:gochecknoglobals // process-wide default logger
var (
	defaultMu     sync.RWMutex
	defaultLogger *log.Logger
)

// Options configures a logger.
type Options struct {
	// Writer receives log output; nil means os.Stderr.
	Writer io.Writer

	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string

	// Format is one of FormatText, FormatJSON, FormatLogfmt.
	Format string

	// Timestamps adds a time to every record.
	Timestamps bool
}

// New creates a stderr text logger at level.
func New(level string) *log.Logger {
	return NewWithOptions(Options{Level: level})
}

// NewInteractive creates the logger used when stderr is a terminal:
// text, info level, with the program name as prefix.
func NewInteractive() *log.Logger {
	logger := NewWithOptions(Options{Level: "info"})
	logger.SetPrefix("wrapfix")
	return logger
}

// NewWithOptions creates a logger from opts.
func NewWithOptions(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: opts.Timestamps,
		Formatter:       formatter(opts.Format),
	})
	logger.SetLevel(ParseLevel(opts.Level))
	return logger
}

func formatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case FormatJSON:
		return log.JSONFormatter
	case FormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
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

// ValidateFormat returns an error for unknown output formats.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case "", FormatText, FormatJSON, FormatLogfmt:
		return nil
	default:
		return fmt.Errorf("unknown log format %q (want %s, %s or %s)", format, FormatText, FormatJSON, FormatLogfmt)
	}
}

// Default returns the process-wide logger.
func Default() *log.Logger {
	defaultMu.RLock()
	logger := defaultLogger
	defaultMu.RUnlock()
	if logger != nil {
		return logger
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New("info")
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
}

// SetLevel updates the level of the default logger.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}
