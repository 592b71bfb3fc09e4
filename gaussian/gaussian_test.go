package gaussian

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	numflat "github.com/sinshu/numflat-sub005"
	"github.com/sinshu/numflat-sub005/internal/mathext"
)

func TestNewValidation(t *testing.T) {
	identity := mat.NewSymDense(2, []float64{1, 0, 0, 1})

	t.Run("empty mean", func(t *testing.T) {
		_, err := New(nil, identity)
		assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
	})

	t.Run("nil covariance", func(t *testing.T) {
		_, err := New([]float64{0, 0}, nil)
		assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := New([]float64{0, 0, 0}, identity)
		assert.ErrorIs(t, err, numflat.ErrInvalidArgument)

		var dm *numflat.ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 3, dm.Expected)
		assert.Equal(t, 2, dm.Actual)
	})

	t.Run("not positive definite", func(t *testing.T) {
		singular := mat.NewSymDense(2, []float64{1, 1, 1, 1})
		_, err := New([]float64{0, 0}, singular)
		assert.ErrorIs(t, err, numflat.ErrFittingFailure)
	})
}

func TestLogPdfStandardNormal(t *testing.T) {
	g, err := New([]float64{0, 0}, mat.NewSymDense(2, []float64{1, 0, 0, 1}))
	require.NoError(t, err)

	lp, err := g.LogPdf([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, -mathext.Log2Pi, lp, 1e-12)

	// One unit along an axis costs exactly 0.5 in log density.
	lp1, err := g.LogPdf([]float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, lp-0.5, lp1, 1e-12)

	_, err = g.LogPdf([]float64{0, 0, 0})
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
}

func TestMahalanobis(t *testing.T) {
	g, err := New([]float64{1, 2}, mat.NewSymDense(2, []float64{4, 0, 0, 9}))
	require.NoError(t, err)

	maha, err := g.MahalanobisSquared([]float64{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0, maha, 1e-12)

	// (2/2)^2 + (3/3)^2 = 2
	maha, err = g.MahalanobisSquared([]float64{3, 5})
	require.NoError(t, err)
	assert.InDelta(t, 2, maha, 1e-12)

	dist, err := g.Mahalanobis([]float64{3, 5})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, dist, 1e-12)
}

func TestLogPdfCorrelated(t *testing.T) {
	// Covariance [[2,1],[1,2]]: det=3, inverse=[[2,-1],[-1,2]]/3.
	g, err := New([]float64{0, 0}, mat.NewSymDense(2, []float64{2, 1, 1, 2}))
	require.NoError(t, err)

	assert.InDelta(t, math.Log(3), g.LogDet(), 1e-12)

	// x=(1,1): maha = (2-1-1+2)/3 = 2/3.
	maha, err := g.MahalanobisSquared([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, maha, 1e-12)

	lp, err := g.LogPdf([]float64{1, 1})
	require.NoError(t, err)
	want := -0.5*(2*mathext.Log2Pi+math.Log(3)) - 0.5*(2.0/3.0)
	assert.InDelta(t, want, lp, 1e-12)
}

func TestEstimate(t *testing.T) {
	xs := [][]float64{
		{0, 0},
		{2, 0},
		{0, 2},
		{2, 2},
	}
	g, err := Estimate(xs, 0)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{1, 1}, g.Mean(), 1e-12)

	cov := g.Covariance()
	assert.InDelta(t, 1, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 1, cov.At(1, 1), 1e-12)
	assert.InDelta(t, 0, cov.At(0, 1), 1e-12)
}

func TestEstimateWeighted(t *testing.T) {
	// Integer weights must behave like sample repetition.
	xs := [][]float64{{0, 0}, {2, 0}, {0, 2}, {2, 2}}
	weights := []float64{2, 1, 1, 2}
	expanded := [][]float64{{0, 0}, {0, 0}, {2, 0}, {0, 2}, {2, 2}, {2, 2}}

	gw, err := EstimateWeighted(xs, weights, 0)
	require.NoError(t, err)
	ge, err := Estimate(expanded, 0)
	require.NoError(t, err)

	assert.InDeltaSlice(t, ge.Mean(), gw.Mean(), 1e-12)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, ge.Covariance().At(i, j), gw.Covariance().At(i, j), 1e-12)
		}
	}
}

func TestEstimateValidation(t *testing.T) {
	t.Run("empty sample", func(t *testing.T) {
		_, err := Estimate(nil, 0)
		assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
	})

	t.Run("negative regularization", func(t *testing.T) {
		_, err := Estimate([][]float64{{1, 2}}, -1)
		assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
	})

	t.Run("ragged sample", func(t *testing.T) {
		_, err := Estimate([][]float64{{1, 2}, {1}}, 0)
		assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
	})

	t.Run("negative weight", func(t *testing.T) {
		_, err := EstimateWeighted([][]float64{{1, 2}, {3, 4}}, []float64{1, -1}, 0)
		assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
	})

	t.Run("zero total weight", func(t *testing.T) {
		_, err := EstimateWeighted([][]float64{{1, 2}, {3, 4}}, []float64{0, 0}, 0)
		assert.ErrorIs(t, err, numflat.ErrFittingFailure)
	})

	t.Run("degenerate sample without regularization", func(t *testing.T) {
		same := [][]float64{{1, 1}, {1, 1}, {1, 1}}
		_, err := Estimate(same, 0)
		assert.ErrorIs(t, err, numflat.ErrFittingFailure)

		// Diagonal loading rescues it.
		g, err := Estimate(same, 1e-6)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1, 1}, g.Mean(), 1e-12)
	})
}

func TestBhattacharyya(t *testing.T) {
	identity := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	g1, err := New([]float64{0, 0}, identity)
	require.NoError(t, err)
	g2, err := New([]float64{2, 0}, identity)
	require.NoError(t, err)

	// Identical distributions are at distance zero.
	d, err := g1.Bhattacharyya(g1)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-12)

	// Equal covariances: distance reduces to maha/8 = 4/8.
	d12, err := g1.Bhattacharyya(g2)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d12, 1e-12)

	// Symmetric in its arguments.
	d21, err := g2.Bhattacharyya(g1)
	require.NoError(t, err)
	assert.InDelta(t, d12, d21, 1e-12)

	_, err = g1.Bhattacharyya(nil)
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
}

func TestSample(t *testing.T) {
	g, err := New([]float64{3, -1}, mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1}))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	const n = 20000
	sum := make([]float64, 2)
	xs := make([][]float64, n)
	for i := range xs {
		x := g.Sample(rng)
		require.Len(t, x, 2)
		sum[0] += x[0]
		sum[1] += x[1]
		xs[i] = x
	}
	assert.InDelta(t, 3, sum[0]/n, 0.05)
	assert.InDelta(t, -1, sum[1]/n, 0.05)

	// Refitting the sample recovers the covariance.
	refit, err := Estimate(xs, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2, refit.Covariance().At(0, 0), 0.1)
	assert.InDelta(t, 0.5, refit.Covariance().At(0, 1), 0.1)
	assert.InDelta(t, 1, refit.Covariance().At(1, 1), 0.1)
}
