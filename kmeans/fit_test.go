package kmeans

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	numflat "github.com/sinshu/numflat-sub005"
)

func TestFitRecoversBlobCenters(t *testing.T) {
	data := threeBlobs(6, 200)

	m, err := Fit(data, 3, WithRand(rand.New(rand.NewSource(6))))
	require.NoError(t, err)
	require.Equal(t, 3, m.K())

	got := m.Centroids()
	sort.Slice(got, func(i, j int) bool {
		if got[i][0] != got[j][0] {
			return got[i][0] < got[j][0]
		}
		return got[i][1] < got[j][1]
	})
	want := [][]float64{{0, -2}, {8, 1}, {8, 8}}
	for i := range want {
		assert.InDelta(t, want[i][0], got[i][0], 0.5)
		assert.InDelta(t, want[i][1], got[i][1], 0.5)
	}
}

func TestFitDeterministicForFixedSource(t *testing.T) {
	data := threeBlobs(7, 80)

	m1, err := Fit(data, 3, WithRand(rand.New(rand.NewSource(11))))
	require.NoError(t, err)
	m2, err := Fit(data, 3, WithRand(rand.New(rand.NewSource(11))))
	require.NoError(t, err)
	assert.Equal(t, m1.Centroids(), m2.Centroids())

	// Parallelism must not change the outcome: seeds are pre-drawn.
	m3, err := Fit(data, 3,
		WithRand(rand.New(rand.NewSource(11))),
		WithParallelism(1),
	)
	require.NoError(t, err)
	assert.Equal(t, m1.Centroids(), m3.Centroids())
}

func TestFitZeroInertiaOnRepeatedPoints(t *testing.T) {
	var data [][]float64
	for i := 0; i < 10; i++ {
		data = append(data, []float64{0, 0}, []float64{5, 5})
	}

	m, err := Fit(data, 2, WithRand(rand.New(rand.NewSource(8))))
	require.NoError(t, err)

	inertia, err := m.Inertia(data)
	require.NoError(t, err)
	assert.InDelta(t, 0, inertia, 1e-12)
}

func TestFitMoreRestartsNeverWorse(t *testing.T) {
	data := threeBlobs(9, 60)

	single, err := Fit(data, 3,
		WithRand(rand.New(rand.NewSource(21))),
		WithTryCount(1),
	)
	require.NoError(t, err)
	multi, err := Fit(data, 3,
		WithRand(rand.New(rand.NewSource(21))),
		WithTryCount(8),
	)
	require.NoError(t, err)

	iSingle, err := single.Inertia(data)
	require.NoError(t, err)
	iMulti, err := multi.Inertia(data)
	require.NoError(t, err)
	// The 8-restart winner includes the single restart's seed stream
	// only by coincidence, but across seeds best-of-8 should never be
	// dramatically worse; it must at least produce a valid model.
	assert.False(t, math.IsInf(iMulti, 1))
	assert.False(t, math.IsInf(iSingle, 1))
}

func TestFitValidation(t *testing.T) {
	data := threeBlobs(10, 10)

	_, err := Fit(data, 1)
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)

	_, err = Fit(nil, 2)
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)

	_, err = Fit(data[:2], 3)
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)

	_, err = Fit(data, 2, WithTryCount(0))
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)

	_, err = Fit(data, 2, WithMaxIterations(0))
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)

	_, err = Fit(data, 2, WithTolerance(0))
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
}

func TestFitRecordsMetrics(t *testing.T) {
	data := threeBlobs(12, 40)
	mc := &numflat.BasicMetricsCollector{}

	_, err := Fit(data, 3,
		WithRand(rand.New(rand.NewSource(13))),
		WithMetricsCollector(mc),
		WithLogger(numflat.NoopLogger()),
	)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.FitCount)
	assert.Equal(t, int64(DefaultTryCount), stats.RestartCount)
	assert.Greater(t, stats.FitIterations, int64(0))
	assert.Zero(t, stats.FitErrors)
}
