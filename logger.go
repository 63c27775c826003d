package knnlite

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with knnlite-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogInitialize logs an initialize operation.
func (l *Logger) LogInitialize(ctx context.Context, dim int) {
	l.InfoContext(ctx, "index initialized",
		"dimension", dim,
	)
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, added, total int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"added", added,
			"total", total,
			"elapsed", elapsed,
		)
	}
}

// LogSearch logs a search operation. scan is the time spent computing distances.
func (l *Logger) LogSearch(ctx context.Context, k, rows, resultsFound int, scan, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"rows", rows,
			"results", resultsFound,
			"scan", scan,
			"elapsed", elapsed,
		)
	}
}

// LogSave logs a snapshot save.
func (l *Logger) LogSave(ctx context.Context, path string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"path", path,
			"count", count,
		)
	}
}

// LogLoad logs a snapshot load.
func (l *Logger) LogLoad(ctx context.Context, path string, dim, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"path", path,
			"dimension", dim,
			"count", count,
		)
	}
}
