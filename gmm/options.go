package gmm

import (
	"math/rand"

	numflat "github.com/sinshu/numflat-sub005"
	"github.com/sinshu/numflat-sub005/kmeans"
)

const (
	// DefaultRegularization is the default diagonal loading added to
	// covariances to keep them strictly positive-definite.
	DefaultRegularization = 1e-6

	// DefaultMaxIterations is the default hard stop for EM iterations.
	DefaultMaxIterations = 100

	// DefaultTolerance is the default log-likelihood-change threshold
	// below which the fit is considered converged.
	DefaultTolerance = 1e-3

	// DefaultKMeansTryCount is the default number of k-means restarts
	// used for initialization.
	DefaultKMeansTryCount = kmeans.DefaultTryCount
)

type options struct {
	regularization float64
	maxIterations  int
	tolerance      float64
	kmeansTryCount int
	rng            *rand.Rand
	logger         *numflat.Logger
	metrics        numflat.MetricsCollector
}

// Option configures the top-level Fit and FitDiagonal.
type Option func(*options)

// WithRegularization sets the constant added to covariance diagonals
// before factorization, guarding against singular covariances.
func WithRegularization(reg float64) Option {
	return func(o *options) {
		o.regularization = reg
	}
}

// WithMaxIterations sets the hard stop on EM iterations.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithTolerance sets the log-likelihood-change threshold for
// convergence: the fit stops once the absolute or relative change per
// iteration drops to tol.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithKMeansTryCount sets the number of k-means restarts used for
// initialization.
func WithKMeansTryCount(n int) Option {
	return func(o *options) {
		o.kmeansTryCount = n
	}
}

// WithRand sets the random source used for k-means++ seeding.
// Fits with the same source state are reproducible. When unset, a
// system-seeded source is used.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
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
		regularization: DefaultRegularization,
		maxIterations:  DefaultMaxIterations,
		tolerance:      DefaultTolerance,
		kmeansTryCount: DefaultKMeansTryCount,
		logger:         numflat.NoopLogger(),
		metrics:        numflat.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) validate() error {
	if o.regularization < 0 {
		return numflat.InvalidArgumentf("regularization must be non-negative, got %g", o.regularization)
	}
	if o.maxIterations < 1 {
		return numflat.InvalidArgumentf("max iterations must be at least 1, got %d", o.maxIterations)
	}
	if o.tolerance <= 0 {
		return numflat.InvalidArgumentf("tolerance must be positive, got %g", o.tolerance)
	}
	if o.kmeansTryCount < 1 {
		return numflat.InvalidArgumentf("k-means try count must be at least 1, got %d", o.kmeansTryCount)
	}
	return nil
}
