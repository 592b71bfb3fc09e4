package kmeans

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	numflat "github.com/sinshu/numflat-sub005"
	"github.com/sinshu/numflat-sub005/testutil"
)

func threeBlobCenters() [][]float64 {
	return [][]float64{
		{0, -2},
		{8, 8},
		{8, 1},
	}
}

func threeBlobs(seed uint64, perCluster int) [][]float64 {
	return testutil.GaussianBlobs(seed, threeBlobCenters(), 1.0, perCluster)
}

func TestNewModelValidation(t *testing.T) {
	t.Run("too few centroids", func(t *testing.T) {
		_, err := NewModel([][]float64{{1, 2}})
		assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
	})

	t.Run("empty centroid", func(t *testing.T) {
		_, err := NewModel([][]float64{{}, {}})
		assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
	})

	t.Run("ragged centroids", func(t *testing.T) {
		_, err := NewModel([][]float64{{1, 2}, {1}})
		var dm *numflat.ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 1, dm.Actual)
	})
}

func TestModelIsImmutable(t *testing.T) {
	centroids := [][]float64{{0, 0}, {2, 2}}
	m, err := NewModel(centroids)
	require.NoError(t, err)

	// Mutating inputs and outputs must not affect the model.
	centroids[0][0] = 99
	got := m.Centroids()
	got[1][1] = 99
	assert.Equal(t, [][]float64{{0, 0}, {2, 2}}, m.Centroids())
	assert.Equal(t, []float64{2, 2}, m.Centroid(1))
}

func TestPredict(t *testing.T) {
	m, err := NewModel([][]float64{{0, 0}, {2, 0}})
	require.NoError(t, err)

	j, err := m.Predict([]float64{0.4, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, j)

	j, err = m.Predict([]float64{1.9, 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, j)

	// Equidistant points go to the first-seen centroid.
	j, err = m.Predict([]float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, j)

	_, err = m.Predict([]float64{1})
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
}

func TestUpdateComputesClusterMeans(t *testing.T) {
	data := [][]float64{
		{0, 0}, {0, 2},
		{10, 0}, {10, 4},
	}
	m, err := NewModel([][]float64{{1, 1}, {9, 1}})
	require.NoError(t, err)

	next, err := m.Update(data)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1}, {10, 2}}, next.Centroids())

	// The receiver is unchanged.
	assert.Equal(t, [][]float64{{1, 1}, {9, 1}}, m.Centroids())
}

func TestUpdateReseedsEmptyCluster(t *testing.T) {
	data := [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {5, 5},
	}
	// The second centroid is so remote that no point selects it.
	m, err := NewModel([][]float64{{0, 0}, {1000, 1000}})
	require.NoError(t, err)

	next, err := m.Update(data)
	require.NoError(t, err)

	// The empty cluster lands on the point farthest from its nearest
	// centroid, which is (5,5).
	assert.Equal(t, []float64{5, 5}, next.Centroid(1))

	// No NaNs anywhere.
	for _, c := range next.Centroids() {
		for _, v := range c {
			assert.False(t, v != v)
		}
	}
}

func TestInertiaNonIncreasing(t *testing.T) {
	data := threeBlobs(1, 100)
	rng := rand.New(rand.NewSource(3))

	m, err := NewSeedModel(data, 3, rng)
	require.NoError(t, err)
	prev, err := m.Inertia(data)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		m, err = m.Update(data)
		require.NoError(t, err)
		cur, err := m.Inertia(data)
		require.NoError(t, err)
		assert.LessOrEqual(t, cur, prev+1e-9, "inertia rose at iteration %d", i)
		prev = cur
	}
}

func TestUpdateStableAtConvergence(t *testing.T) {
	data := threeBlobs(6, 80)
	rng := rand.New(rand.NewSource(7))

	m, err := NewSeedModel(data, 3, rng)
	require.NoError(t, err)

	// On finite data Lloyd reaches an exact fixed point: assignments stop
	// changing and the centroids reproduce themselves.
	converged := false
	for i := 0; i < DefaultMaxIterations; i++ {
		next, err := m.Update(data)
		require.NoError(t, err)
		if reflect.DeepEqual(next.Centroids(), m.Centroids()) {
			converged = true
			m = next
			break
		}
		m = next
	}
	require.True(t, converged, "no fixed point within %d iterations", DefaultMaxIterations)

	before, err := m.Inertia(data)
	require.NoError(t, err)

	next, err := m.Update(data)
	require.NoError(t, err)
	after, err := next.Inertia(data)
	require.NoError(t, err)

	assert.Equal(t, m.Centroids(), next.Centroids())
	assert.InDelta(t, before, after, DefaultTolerance*before)
}

func TestSeedModel(t *testing.T) {
	data := threeBlobs(2, 50)
	rng := rand.New(rand.NewSource(4))

	m, err := NewSeedModel(data, 3, rng)
	require.NoError(t, err)
	assert.Equal(t, 3, m.K())
	assert.Equal(t, 2, m.Dim())

	// Every seeded centroid is an actual data point.
	for _, c := range m.Centroids() {
		found := false
		for _, x := range data {
			if x[0] == c[0] && x[1] == c[1] {
				found = true
				break
			}
		}
		assert.True(t, found, "centroid %v is not a data point", c)
	}
}

func TestSeedModelDistinctPoints(t *testing.T) {
	// With k == n distinct points, squared-distance weighting never
	// re-picks a chosen point, so seeding covers the whole dataset and
	// the resulting inertia is zero.
	data := [][]float64{{0, 0}, {1, 0}, {0, 1}, {4, 4}}
	rng := rand.New(rand.NewSource(5))

	m, err := NewSeedModel(data, len(data), rng)
	require.NoError(t, err)

	inertia, err := m.Inertia(data)
	require.NoError(t, err)
	assert.InDelta(t, 0, inertia, 1e-12)

	// Each point is its own cluster, so Update maps every centroid to
	// itself and the inertia stays zero.
	next, err := m.Update(data)
	require.NoError(t, err)
	inertia, err = next.Inertia(data)
	require.NoError(t, err)
	assert.InDelta(t, 0, inertia, 1e-12)
	assert.Equal(t, m.Centroids(), next.Centroids())
}

func TestSeedModelValidation(t *testing.T) {
	data := [][]float64{{1, 2}, {3, 4}, {5, 6}}

	_, err := NewSeedModel(data, 2, nil)
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)

	_, err = NewSeedModel(data, 1, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)

	_, err = NewSeedModel(data, 4, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)

	_, err = NewSeedModel(nil, 2, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, numflat.ErrInvalidArgument)
}
