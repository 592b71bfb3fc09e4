package kmeans

import (
	"math/rand"

	numflat "github.com/sinshu/numflat-sub005"
	"github.com/sinshu/numflat-sub005/distance"
)

// NewSeedModel creates an initial Model by k-means++ seeding.
//
// The first centroid is a uniformly random data point. Each subsequent
// centroid is a data point sampled with probability proportional to its
// squared distance to the nearest already-chosen centroid, which biases
// selection toward points far from existing centroids and produces
// better-separated initial clusters than uniform choice.
//
// Sampling is inverse-CDF: the cumulative weights are compared against
// rng.Float64()*total, the first point whose cumulative weight exceeds
// the draw wins, and the last point is the fallback on floating-point
// rounding. rng must not be nil.
func NewSeedModel(data [][]float64, k int, rng *rand.Rand) (*Model, error) {
	if err := checkFitArgs(data, k); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, numflat.InvalidArgumentf("rng must not be nil")
	}

	dim := len(data[0])
	m := &Model{
		centroids: make([][]float64, k),
		dim:       dim,
	}
	flat := make([]float64, k*dim)
	for j := range m.centroids {
		m.centroids[j] = flat[j*dim : (j+1)*dim]
	}

	copy(m.centroids[0], data[rng.Intn(len(data))])

	// minDist[i] is the squared distance from data[i] to the nearest
	// chosen centroid, maintained incrementally as centroids are added.
	minDist := make([]float64, len(data))
	for i, x := range data {
		minDist[i] = distance.SquaredL2(x, m.centroids[0])
	}

	for j := 1; j < k; j++ {
		var total float64
		for _, d := range minDist {
			total += d
		}

		chosen := len(data) - 1
		draw := rng.Float64() * total
		var cumulative float64
		for i, d := range minDist {
			cumulative += d
			if cumulative > draw {
				chosen = i
				break
			}
		}
		copy(m.centroids[j], data[chosen])

		for i, x := range data {
			if d := distance.SquaredL2(x, m.centroids[j]); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	return m, nil
}

func checkFitArgs(data [][]float64, k int) error {
	if len(data) == 0 {
		return numflat.InvalidArgumentf("data must not be empty")
	}
	if k < 2 {
		return numflat.InvalidArgumentf("cluster count must be at least 2, got %d", k)
	}
	if len(data) < k {
		return numflat.InvalidArgumentf("data has %d points, fewer than %d clusters", len(data), k)
	}
	dim := len(data[0])
	if dim == 0 {
		return numflat.InvalidArgumentf("data vectors must not be empty")
	}
	for _, x := range data {
		if len(x) != dim {
			return &numflat.ErrDimensionMismatch{Expected: dim, Actual: len(x)}
		}
	}
	return nil
}
