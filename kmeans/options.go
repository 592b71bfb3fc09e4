package kmeans

import (
	"math/rand"

	numflat "github.com/sinshu/numflat-sub005"
)

const (
	// DefaultTryCount is the default number of independent restarts.
	DefaultTryCount = 3

	// DefaultMaxIterations is the default hard stop for Lloyd iterations
	// within one restart.
	DefaultMaxIterations = 300

	// DefaultTolerance is the default relative inertia-change threshold
	// below which a restart is considered converged.
	DefaultTolerance = 1e-4
)

type options struct {
	tryCount      int
	maxIterations int
	tolerance     float64
	parallelism   int
	rng           *rand.Rand
	logger        *numflat.Logger
	metrics       numflat.MetricsCollector
}

// Option configures the top-level Fit.
type Option func(*options)

// WithTryCount sets the number of independent restarts. The restart with
// the lowest final inertia wins; this guards against k-means's
// sensitivity to initialization.
func WithTryCount(n int) Option {
	return func(o *options) {
		o.tryCount = n
	}
}

// WithMaxIterations sets the hard stop on Lloyd iterations per restart.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithTolerance sets the relative inertia-change threshold for
// convergence within a restart.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithRand sets the random source that controls k-means++ sampling.
// Fits with the same source state are reproducible. When unset, a
// system-seeded source is used.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithParallelism bounds how many restarts run concurrently.
// n <= 0 means no bound (one goroutine per restart). Results are
// deterministic for a fixed random source regardless of parallelism,
// because per-restart seeds are drawn up front.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithLogger configures structured logging for the fit.
// Pass nil to disable logging.
func WithLogger(logger *numflat.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = numflat.NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector for the fit.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc numflat.MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = numflat.NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		tryCount:      DefaultTryCount,
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
		logger:        numflat.NoopLogger(),
		metrics:       numflat.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) validate() error {
	if o.tryCount < 1 {
		return numflat.InvalidArgumentf("try count must be at least 1, got %d", o.tryCount)
	}
	if o.maxIterations < 1 {
		return numflat.InvalidArgumentf("max iterations must be at least 1, got %d", o.maxIterations)
	}
	if o.tolerance <= 0 {
		return numflat.InvalidArgumentf("tolerance must be positive, got %g", o.tolerance)
	}
	return nil
}
