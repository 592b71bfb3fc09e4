package gaussian

import (
	"math"
	"math/rand"

	numflat "github.com/sinshu/numflat-sub005"
	"github.com/sinshu/numflat-sub005/internal/mathext"
)

// DiagonalGaussian is a multivariate normal distribution whose covariance
// is diagonal. Each variance entry must be strictly positive; the
// elementwise reciprocal and log-determinant are cached at construction.
type DiagonalGaussian struct {
	mean     []float64
	variance []float64
	invVar   []float64
	stdDev   []float64
	logDet   float64
}

// NewDiagonal creates a DiagonalGaussian from a mean vector and a
// diagonal variance vector. The inputs are copied; the returned
// distribution is immutable.
//
// A variance entry at or below 10 machine epsilons relative to the
// largest entry is treated as a degenerate, zero-variance dimension and
// yields numflat.ErrFittingFailure.
func NewDiagonal(mean, variance []float64) (*DiagonalGaussian, error) {
	if len(mean) == 0 {
		return nil, numflat.InvalidArgumentf("mean must not be empty")
	}
	if len(variance) != len(mean) {
		return nil, &numflat.ErrDimensionMismatch{Expected: len(mean), Actual: len(variance)}
	}

	maxVar := 0.0
	for _, v := range variance {
		if v > maxVar {
			maxVar = v
		}
	}
	minVar := mathext.MinPositive(maxVar)

	g := &DiagonalGaussian{
		mean:     append([]float64(nil), mean...),
		variance: append([]float64(nil), variance...),
		invVar:   make([]float64, len(variance)),
		stdDev:   make([]float64, len(variance)),
	}
	for i, v := range variance {
		if v <= minVar || math.IsNaN(v) {
			return nil, numflat.FittingFailure("variance is degenerate (near-zero dimension)", nil)
		}
		g.invVar[i] = 1 / v
		g.stdDev[i] = math.Sqrt(v)
		g.logDet += math.Log(v)
	}
	return g, nil
}

// EstimateDiagonal computes the maximum-likelihood DiagonalGaussian for
// the sample xs, with reg added to each variance before validation.
func EstimateDiagonal(xs [][]float64, reg float64) (*DiagonalGaussian, error) {
	return EstimateDiagonalWeighted(xs, nil, reg)
}

// EstimateDiagonalWeighted computes the weighted maximum-likelihood
// DiagonalGaussian for the sample xs. A nil weights slice means equal
// weights. Variances use the population normalization (divisor sum of
// weights).
func EstimateDiagonalWeighted(xs [][]float64, weights []float64, reg float64) (*DiagonalGaussian, error) {
	dim, sumW, err := checkSample(xs, weights, reg)
	if err != nil {
		return nil, err
	}

	mean := weightedMean(xs, weights, dim, sumW)

	variance := make([]float64, dim)
	for i, x := range xs {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		for j, v := range x {
			d := v - mean[j]
			variance[j] += w * d * d
		}
	}
	for j := range variance {
		variance[j] = variance[j]/sumW + reg
	}

	return NewDiagonal(mean, variance)
}

// Dim returns the dimensionality of the distribution.
func (g *DiagonalGaussian) Dim() int { return len(g.mean) }

// Mean returns a copy of the mean vector.
func (g *DiagonalGaussian) Mean() []float64 {
	return append([]float64(nil), g.mean...)
}

// Variance returns a copy of the diagonal variance vector.
func (g *DiagonalGaussian) Variance() []float64 {
	return append([]float64(nil), g.variance...)
}

// LogDet returns the cached log-determinant of the covariance.
func (g *DiagonalGaussian) LogDet() float64 { return g.logDet }

// LogPdf returns the log-density of x under the distribution.
func (g *DiagonalGaussian) LogPdf(x []float64) (float64, error) {
	maha, err := g.MahalanobisSquared(x)
	if err != nil {
		return 0, err
	}
	return -0.5*(float64(len(g.mean))*mathext.Log2Pi+g.logDet) - 0.5*maha, nil
}

// Pdf returns the density of x under the distribution.
func (g *DiagonalGaussian) Pdf(x []float64) (float64, error) {
	logPdf, err := g.LogPdf(x)
	if err != nil {
		return 0, err
	}
	return math.Exp(logPdf), nil
}

// MahalanobisSquared returns the squared Mahalanobis distance of x from
// the mean, computed by direct elementwise division.
func (g *DiagonalGaussian) MahalanobisSquared(x []float64) (float64, error) {
	if len(x) != len(g.mean) {
		return 0, &numflat.ErrDimensionMismatch{Expected: len(g.mean), Actual: len(x)}
	}
	var sum float64
	for i, v := range x {
		d := v - g.mean[i]
		sum += d * d * g.invVar[i]
	}
	return sum, nil
}

// Mahalanobis returns the Mahalanobis distance of x from the mean.
func (g *DiagonalGaussian) Mahalanobis(x []float64) (float64, error) {
	maha, err := g.MahalanobisSquared(x)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(maha), nil
}

// Bhattacharyya returns the Bhattacharyya distance between g and other.
func (g *DiagonalGaussian) Bhattacharyya(other *DiagonalGaussian) (float64, error) {
	if other == nil {
		return 0, numflat.InvalidArgumentf("other must not be nil")
	}
	if len(other.mean) != len(g.mean) {
		return 0, &numflat.ErrDimensionMismatch{Expected: len(g.mean), Actual: len(other.mean)}
	}

	var maha, logDetAvg float64
	for i := range g.mean {
		avg := 0.5 * (g.variance[i] + other.variance[i])
		d := other.mean[i] - g.mean[i]
		maha += d * d / avg
		logDetAvg += math.Log(avg)
	}

	return 0.125*maha + 0.5*(logDetAvg-0.5*(g.logDet+other.logDet)), nil
}

// Sample draws one sample from the distribution into a new slice.
// rng must not be nil.
func (g *DiagonalGaussian) Sample(rng *rand.Rand) []float64 {
	x := make([]float64, len(g.mean))
	for i := range x {
		x[i] = g.mean[i] + g.stdDev[i]*rng.NormFloat64()
	}
	return x
}
