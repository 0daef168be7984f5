package fieldsort

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/fieldsort/strategy"
)

// Logger wraps slog.Logger with fieldsort-specific context.
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
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithField adds a field name to the logger.
func (l *Logger) WithField(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("field", name),
	}
}

// WithDocID adds a docid field to the logger.
func (l *Logger) WithDocID(docid uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("docid", docid),
	}
}

// SortEvent describes a finished sort for logging.
type SortEvent struct {
	Strategy   strategy.Strategy
	Forced     bool
	Candidates int
	Corpus     int
	Limit      int
	Reverse    bool
	Returned   int
	Examined   int
	Missing    int
}

// LogSortPlan logs the algorithm chosen for a sort.
func (l *Logger) LogSortPlan(ctx context.Context, ev SortEvent) {
	l.DebugContext(ctx, "sort planned",
		"strategy", ev.Strategy.String(),
		"forced", ev.Forced,
		"candidates", ev.Candidates,
		"corpus", ev.Corpus,
		"limit", ev.Limit,
		"reverse", ev.Reverse,
	)
}

// LogSort logs a finished (or abandoned) sort.
func (l *Logger) LogSort(ctx context.Context, ev SortEvent, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sort failed",
			"strategy", ev.Strategy.String(),
			"candidates", ev.Candidates,
			"limit", ev.Limit,
			"reverse", ev.Reverse,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "sort completed",
			"strategy", ev.Strategy.String(),
			"returned", ev.Returned,
			"examined", ev.Examined,
			"missing", ev.Missing,
		)
	}
}

// LogUnindexInconsistent logs a document whose value group was missing.
func (l *Logger) LogUnindexInconsistent(ctx context.Context, docid uint32) {
	l.WarnContext(ctx, "unindexed document missing from its value group",
		"docid", docid,
	)
}

// LogBatchIndex logs a batch index operation.
func (l *Logger) LogBatchIndex(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch index completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.DebugContext(ctx, "batch index completed",
			"count", count,
		)
	}
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot "+op+" completed",
			"name", name,
			"bytes", bytes,
		)
	}
}
