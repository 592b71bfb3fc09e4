package numflat

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting fitting metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordFit is called after a top-level fit finishes.
	// kind identifies the fit ("kmeans", "gmm", "diagonal-gmm"),
	// iterations is the number of refinement iterations performed,
	// duration is the total time taken, err is nil if successful.
	RecordFit(kind string, iterations int, duration time.Duration, err error)

	// RecordRestart is called after each independent k-means restart.
	// inertia is the restart's final objective; err is nil if the
	// restart converged without a fitting failure.
	RecordRestart(iterations int, inertia float64, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRestart(int, float64, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FitCount         atomic.Int64
	FitErrors        atomic.Int64
	FitIterations    atomic.Int64
	FitTotalNanos    atomic.Int64
	RestartCount     atomic.Int64
	RestartErrors    atomic.Int64
	RestartIterTotal atomic.Int64
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(kind string, iterations int, duration time.Duration, err error) {
	b.FitCount.Add(1)
	b.FitIterations.Add(int64(iterations))
	b.FitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FitErrors.Add(1)
	}
}

// RecordRestart implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRestart(iterations int, inertia float64, err error) {
	b.RestartCount.Add(1)
	b.RestartIterTotal.Add(int64(iterations))
	if err != nil {
		b.RestartErrors.Add(1)
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FitCount      int64
	FitErrors     int64
	FitIterations int64
	FitAvgNanos   int64
	RestartCount  int64
	RestartErrors int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		FitCount:      b.FitCount.Load(),
		FitErrors:     b.FitErrors.Load(),
		FitIterations: b.FitIterations.Load(),
		RestartCount:  b.RestartCount.Load(),
		RestartErrors: b.RestartErrors.Load(),
	}
	if stats.FitCount > 0 {
		stats.FitAvgNanos = b.FitTotalNanos.Load() / stats.FitCount
	}
	return stats
}
