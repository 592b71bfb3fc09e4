package gaussian

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	numflat "github.com/sinshu/numflat-sub005"
	"github.com/sinshu/numflat-sub005/internal/mathext"
)

// Gaussian is a multivariate normal distribution with a full covariance
// matrix. The covariance must be symmetric positive-definite; its
// Cholesky factor and log-determinant are computed once at construction.
type Gaussian struct {
	mean   []float64
	cov    *mat.SymDense
	chol   mat.Cholesky
	lower  *mat.TriDense
	logDet float64
}

// New creates a Gaussian from a mean vector and covariance matrix.
// The inputs are copied; the returned distribution is immutable.
//
// Returns numflat.ErrInvalidArgument for an empty mean or a covariance
// whose order does not match the mean, and numflat.ErrFittingFailure if
// the covariance is not positive-definite.
func New(mean []float64, cov *mat.SymDense) (*Gaussian, error) {
	if len(mean) == 0 {
		return nil, numflat.InvalidArgumentf("mean must not be empty")
	}
	if cov == nil {
		return nil, numflat.InvalidArgumentf("covariance must not be nil")
	}
	if cov.SymmetricDim() != len(mean) {
		return nil, &numflat.ErrDimensionMismatch{Expected: len(mean), Actual: cov.SymmetricDim()}
	}

	g := &Gaussian{
		mean: append([]float64(nil), mean...),
		cov:  mat.NewSymDense(len(mean), nil),
	}
	g.cov.CopySym(cov)

	if ok := g.chol.Factorize(g.cov); !ok {
		return nil, numflat.FittingFailure("covariance is not positive definite", nil)
	}
	g.logDet = g.chol.LogDet()
	g.lower = mat.NewTriDense(len(mean), mat.Lower, nil)
	g.chol.LTo(g.lower)
	return g, nil
}

// Estimate computes the maximum-likelihood Gaussian for the sample xs,
// with reg added to the diagonal of the empirical covariance before
// factorization. reg guards against singular covariances on degenerate
// samples; pass 0 to disable.
func Estimate(xs [][]float64, reg float64) (*Gaussian, error) {
	return EstimateWeighted(xs, nil, reg)
}

// EstimateWeighted computes the weighted maximum-likelihood Gaussian for
// the sample xs. A nil weights slice means equal weights. The covariance
// uses the population normalization (divisor sum of weights).
func EstimateWeighted(xs [][]float64, weights []float64, reg float64) (*Gaussian, error) {
	dim, sumW, err := checkSample(xs, weights, reg)
	if err != nil {
		return nil, err
	}

	mean := weightedMean(xs, weights, dim, sumW)

	cov := mat.NewSymDense(dim, nil)
	diff := make([]float64, dim)
	vec := mat.NewVecDense(dim, diff)
	for i, x := range xs {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w == 0 {
			continue
		}
		for j := range diff {
			diff[j] = x[j] - mean[j]
		}
		cov.SymRankOne(cov, w/sumW, vec)
	}
	for i := 0; i < dim; i++ {
		cov.SetSym(i, i, cov.At(i, i)+reg)
	}

	return New(mean, cov)
}

// Dim returns the dimensionality of the distribution.
func (g *Gaussian) Dim() int { return len(g.mean) }

// Mean returns a copy of the mean vector.
func (g *Gaussian) Mean() []float64 {
	return append([]float64(nil), g.mean...)
}

// Covariance returns a copy of the covariance matrix.
func (g *Gaussian) Covariance() *mat.SymDense {
	cov := mat.NewSymDense(len(g.mean), nil)
	cov.CopySym(g.cov)
	return cov
}

// LogDet returns the cached log-determinant of the covariance.
func (g *Gaussian) LogDet() float64 { return g.logDet }

// LogPdf returns the log-density of x under the distribution.
func (g *Gaussian) LogPdf(x []float64) (float64, error) {
	maha, err := g.MahalanobisSquared(x)
	if err != nil {
		return 0, err
	}
	return -0.5*(float64(len(g.mean))*mathext.Log2Pi+g.logDet) - 0.5*maha, nil
}

// Pdf returns the density of x under the distribution.
func (g *Gaussian) Pdf(x []float64) (float64, error) {
	logPdf, err := g.LogPdf(x)
	if err != nil {
		return 0, err
	}
	return math.Exp(logPdf), nil
}

// MahalanobisSquared returns the squared Mahalanobis distance of x from
// the mean, computed via a linear solve against the Cholesky factor.
func (g *Gaussian) MahalanobisSquared(x []float64) (float64, error) {
	if len(x) != len(g.mean) {
		return 0, &numflat.ErrDimensionMismatch{Expected: len(g.mean), Actual: len(x)}
	}
	diff := make([]float64, len(x))
	for i := range diff {
		diff[i] = x[i] - g.mean[i]
	}
	d := mat.NewVecDense(len(diff), diff)
	var solved mat.VecDense
	if err := g.chol.SolveVecTo(&solved, d); err != nil {
		return 0, numflat.FittingFailure("mahalanobis solve failed", err)
	}
	return mat.Dot(d, &solved), nil
}

// Mahalanobis returns the Mahalanobis distance of x from the mean.
func (g *Gaussian) Mahalanobis(x []float64) (float64, error) {
	maha, err := g.MahalanobisSquared(x)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(maha), nil
}

// Bhattacharyya returns the Bhattacharyya distance between g and other.
func (g *Gaussian) Bhattacharyya(other *Gaussian) (float64, error) {
	if other == nil {
		return 0, numflat.InvalidArgumentf("other must not be nil")
	}
	if len(other.mean) != len(g.mean) {
		return 0, &numflat.ErrDimensionMismatch{Expected: len(g.mean), Actual: len(other.mean)}
	}

	dim := len(g.mean)
	avg := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			avg.SetSym(i, j, 0.5*(g.cov.At(i, j)+other.cov.At(i, j)))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(avg); !ok {
		return 0, numflat.FittingFailure("averaged covariance is not positive definite", nil)
	}

	diff := make([]float64, dim)
	for i := range diff {
		diff[i] = other.mean[i] - g.mean[i]
	}
	d := mat.NewVecDense(dim, diff)
	var solved mat.VecDense
	if err := chol.SolveVecTo(&solved, d); err != nil {
		return 0, numflat.FittingFailure("bhattacharyya solve failed", err)
	}
	maha := mat.Dot(d, &solved)

	return 0.125*maha + 0.5*(chol.LogDet()-0.5*(g.logDet+other.logDet)), nil
}

// Sample draws one sample from the distribution into a new slice,
// using x = mean + L*z with z standard normal and L the cached Cholesky
// factor. rng must not be nil.
func (g *Gaussian) Sample(rng *rand.Rand) []float64 {
	dim := len(g.mean)
	z := make([]float64, dim)
	for i := range z {
		z[i] = rng.NormFloat64()
	}
	x := make([]float64, dim)
	for i := 0; i < dim; i++ {
		sum := g.mean[i]
		for j := 0; j <= i; j++ {
			sum += g.lower.At(i, j) * z[j]
		}
		x[i] = sum
	}
	return x
}

// checkSample validates a (possibly weighted) sample and returns its
// dimension and total weight.
func checkSample(xs [][]float64, weights []float64, reg float64) (dim int, sumW float64, err error) {
	if len(xs) == 0 {
		return 0, 0, numflat.InvalidArgumentf("sample must not be empty")
	}
	if reg < 0 {
		return 0, 0, numflat.InvalidArgumentf("regularization must be non-negative, got %g", reg)
	}
	if weights != nil && len(weights) != len(xs) {
		return 0, 0, numflat.InvalidArgumentf("weights length %d does not match sample length %d", len(weights), len(xs))
	}
	dim = len(xs[0])
	if dim == 0 {
		return 0, 0, numflat.InvalidArgumentf("sample vectors must not be empty")
	}
	for _, x := range xs {
		if len(x) != dim {
			return 0, 0, &numflat.ErrDimensionMismatch{Expected: dim, Actual: len(x)}
		}
	}
	if weights == nil {
		return dim, float64(len(xs)), nil
	}
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return 0, 0, numflat.InvalidArgumentf("weights must be non-negative, got %g", w)
		}
		sumW += w
	}
	if sumW <= 0 {
		return 0, 0, numflat.FittingFailure("sample has zero total weight", nil)
	}
	return dim, sumW, nil
}

func weightedMean(xs [][]float64, weights []float64, dim int, sumW float64) []float64 {
	mean := make([]float64, dim)
	for i, x := range xs {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		for j, v := range x {
			mean[j] += w * v
		}
	}
	for j := range mean {
		mean[j] /= sumW
	}
	return mean
}
