// Package observability provides the zerolog-backed implementation of
// the review pipeline's Logger port.
package observability

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options control logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Format selects "human" for zerolog's console writer or "json"
	// for machine-readable lines.
	Format string

	// Out defaults to os.Stderr so log lines never mix with report
	// output on stdout.
	Out io.Writer
}

// Logger implements review.Logger on top of zerolog.
type Logger struct {
	log zerolog.Logger
}

// NewLogger builds a logger per the options.
func NewLogger(opts Options) *Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var w io.Writer = out
	if opts.Format == "human" {
		w = zerolog.ConsoleWriter{Out: out}
	}

	return &Logger{log: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Debug logs at debug level with structured fields.
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(message)
}

// Info logs at info level with structured fields.
func (l *Logger) Info(ctx context.Context, message string, fields map[string]any) {
	l.log.Info().Fields(fields).Msg(message)
}

// Warn logs at warn level with structured fields.
func (l *Logger) Warn(ctx context.Context, message string, fields map[string]any) {
	l.log.Warn().Fields(fields).Msg(message)
}

// Error logs at error level with structured fields.
func (l *Logger) Error(ctx context.Context, message string, fields map[string]any) {
	l.log.Error().Fields(fields).Msg(message)
}
