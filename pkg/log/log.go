// Package log provides structured logging for the glas runtime. It wraps
// Go's log/slog with runtime-specific conveniences such as per-component
// child loggers, matching the shape an embedding host expects from every
// other piece of the runtime surface.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with runtime context.
type Logger struct {
	inner *slog.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// Discard returns a Logger whose output is thrown away. Components that
// accept an optional *Logger fall back to this when none is supplied.
func Discard() *Logger {
	return NewWithHandler(slog.NewTextHandler(io.Discard, nil))
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger tagged with a "module" attribute. This is
// the primary way subsystems (thread, register, namespace, choice, ...)
// obtain their own contextual logger.
func (l *Logger) Module(name string) *Logger {
	if l == nil {
		return Discard().Module(name)
	}
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return Discard().With(args...)
	}
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Error(msg, args...)
}
