package vecdist

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vecdist-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithMetric adds the metric under test to the logger.
func (l *Logger) WithMetric(m Metric) *Logger {
	return &Logger{
		Logger: l.Logger.With("metric", m.String()),
	}
}

// WithShape adds the problem shape to the logger.
func (l *Logger) WithShape(m, n, k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("m", m, "n", n, "k", k),
	}
}

// LogCase logs the outcome of one differential case.
func (l *Logger) LogCase(ctx context.Context, cfg Config, res *Result, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "case aborted",
			"seed", cfg.Seed,
			"error", err,
		)
	case res == nil:
		// Reached while a panic unwinds through the caller's defer; the
		// panic itself carries the failure.
		l.ErrorContext(ctx, "case aborted",
			"seed", cfg.Seed,
		)
	case len(res.Mismatches) > 0:
		l.WarnContext(ctx, "case failed",
			"seed", cfg.Seed,
			"cells", res.Cells,
			"mismatches", len(res.Mismatches),
			"first", res.Mismatches[0].String(),
		)
	default:
		l.DebugContext(ctx, "case passed",
			"seed", cfg.Seed,
			"cells", res.Cells,
		)
	}
}
