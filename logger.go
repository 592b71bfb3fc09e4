package numflat

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with numflat-specific context.
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

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithClusters adds a cluster-count field to the logger.
func (l *Logger) WithClusters(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("clusters", k),
	}
}

// LogRestart logs the outcome of one k-means restart.
func (l *Logger) LogRestart(restart, iterations int, inertia float64, err error) {
	if err != nil {
		l.Warn("restart failed",
			"restart", restart,
			"iterations", iterations,
			"error", err,
		)
	} else {
		l.Debug("restart completed",
			"restart", restart,
			"iterations", iterations,
			"inertia", inertia,
		)
	}
}

// LogIteration logs one refinement iteration of a fit.
func (l *Logger) LogIteration(iteration int, objective, change float64) {
	l.Debug("iteration completed",
		"iteration", iteration,
		"objective", objective,
		"change", change,
	)
}

// LogFit logs the completion of a top-level fit.
func (l *Logger) LogFit(kind string, iterations int, objective float64, err error) {
	if err != nil {
		l.Error("fit failed",
			"kind", kind,
			"iterations", iterations,
			"error", err,
		)
	} else {
		l.Info("fit completed",
			"kind", kind,
			"iterations", iterations,
			"objective", objective,
		)
	}
}
