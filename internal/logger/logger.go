package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys used by the logger
type ContextKey string

const (
	// LoggerKey is the context key for the logger instance
	LoggerKey ContextKey = "logger"
)

// Formats accepted by NewWithOptions.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures a logger.
type Options struct {
	Level  string // zerolog level name; empty means info
	Format string // FormatConsole or FormatJSON; empty means console
	Out    io.Writer
}

// New creates a console logger on stderr at info level
func New() zerolog.Logger {
	l, _ := NewWithOptions(Options{})
	return l
}

// NewWithWriter creates a JSON logger with a custom writer
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// NewWithOptions builds a logger from configuration values.
func NewWithOptions(opts Options) (zerolog.Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q: want %s or %s", opts.Format, FormatConsole, FormatJSON)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from the context or returns a default logger
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return New()
}

// WithFields adds structured fields to a logger
func WithFields(logger zerolog.Logger, fields map[string]interface{}) zerolog.Logger {
	ctx := logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}
