package oxonium

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with index-operation helpers so build and match
// logging uses consistent field names.
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
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// LogBuild logs an index build.
func (l *Logger) LogBuild(ctx context.Context, records, fragments, classes int, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"records", records,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "index built",
		"records", records,
		"fragments", fragments,
		"classes", classes,
		"duration", dur,
	)
}

// LogSimplify logs an index compression pass.
func (l *Logger) LogSimplify(ctx context.Context, candidates, classes int) {
	l.DebugContext(ctx, "index simplified",
		"candidates", candidates,
		"classes", classes,
	)
}

// LogMatch logs a spectrum match.
func (l *Logger) LogMatch(ctx context.Context, fragmentsHit, classesHit int) {
	l.DebugContext(ctx, "spectrum matched",
		"fragments_hit", fragmentsHit,
		"classes_hit", classesHit,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot "+op+" completed",
		"name", name,
		"bytes", size,
	)
}
