// =============================================================================
// Payhawk Bundle Converter - Logging
// =============================================================================
//
// This module provides the Logger used by every pipeline stage. Messages are
// printf-style; records are written through log/slog as text to stderr and,
// when a log file is configured, to that file as well.
//
// LEVELS:
//   debug, info, warn, error (config: logging.log_level, CLI: --verbose)
//
// =============================================================================

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the logging interface used across the converter.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Options configure New.
type Options struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string

	// File, when set, receives a copy of every record.
	File string

	// Output replaces stderr. Used by tests.
	Output io.Writer
}

// StructuredLogger implements Logger on top of slog.
type StructuredLogger struct {
	slog *slog.Logger
	file *os.File
}

// New creates a logger from opts.
func New(opts Options) (*StructuredLogger, error) {
	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}

	l := &StructuredLogger{}

	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		out = io.MultiWriter(out, f)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
	l.slog = slog.New(handler)
	return l, nil
}

// Discard returns a logger that writes nothing.
func Discard() *StructuredLogger {
	return &StructuredLogger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger that adds the given key/value pairs to every record.
func (l *StructuredLogger) With(args ...any) *StructuredLogger {
	return &StructuredLogger{slog: l.slog.With(args...), file: l.file}
}

// Close closes the log file, if any.
func (l *StructuredLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *StructuredLogger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, msg, args)
}

func (l *StructuredLogger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, msg, args)
}

func (l *StructuredLogger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, msg, args)
}

func (l *StructuredLogger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, msg, args)
}

func (l *StructuredLogger) log(level slog.Level, msg string, args []interface{}) {
	ctx := context.Background()
	if !l.slog.Enabled(ctx, level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.slog.Log(ctx, level, msg)
}
