package kmeans

import (
	"math"
	"sort"

	numflat "github.com/sinshu/numflat-sub005"
	"github.com/sinshu/numflat-sub005/distance"
	"github.com/sinshu/numflat-sub005/internal/scratch"
)

// Model is an immutable k-means model: an ordered set of k centroids of
// equal dimension. Models are created by seeding (NewSeedModel), by one
// Lloyd iteration (Update), or by the top-level Fit.
type Model struct {
	centroids [][]float64
	dim       int
}

// NewModel creates a Model from explicit centroids. The centroids are
// copied. At least two centroids of equal, non-zero dimension are
// required.
func NewModel(centroids [][]float64) (*Model, error) {
	if len(centroids) < 2 {
		return nil, numflat.InvalidArgumentf("cluster count must be at least 2, got %d", len(centroids))
	}
	dim := len(centroids[0])
	if dim == 0 {
		return nil, numflat.InvalidArgumentf("centroids must not be empty")
	}
	copied := make([][]float64, len(centroids))
	flat := make([]float64, len(centroids)*dim)
	for i, c := range centroids {
		if len(c) != dim {
			return nil, &numflat.ErrDimensionMismatch{Expected: dim, Actual: len(c)}
		}
		copied[i] = flat[i*dim : (i+1)*dim]
		copy(copied[i], c)
	}
	return &Model{centroids: copied, dim: dim}, nil
}

// K returns the number of centroids.
func (m *Model) K() int { return len(m.centroids) }

// Dim returns the centroid dimensionality.
func (m *Model) Dim() int { return m.dim }

// Centroids returns a deep copy of the centroids.
func (m *Model) Centroids() [][]float64 {
	out := make([][]float64, len(m.centroids))
	for i, c := range m.centroids {
		out[i] = append([]float64(nil), c...)
	}
	return out
}

// Centroid returns a copy of the i-th centroid.
func (m *Model) Centroid(i int) []float64 {
	return append([]float64(nil), m.centroids[i]...)
}

// Predict returns the index of the centroid nearest to x by squared
// Euclidean distance. Linear scan; the first-seen centroid wins ties.
func (m *Model) Predict(x []float64) (int, error) {
	if len(x) != m.dim {
		return -1, &numflat.ErrDimensionMismatch{Expected: m.dim, Actual: len(x)}
	}
	best, _ := m.nearest(x)
	return best, nil
}

func (m *Model) nearest(x []float64) (int, float64) {
	best := 0
	minDist := math.Inf(1)
	for j, c := range m.centroids {
		if d := distance.SquaredL2(x, c); d < minDist {
			minDist = d
			best = j
		}
	}
	return best, minDist
}

// Update performs one Lloyd iteration: every point is assigned to its
// nearest centroid, and each centroid is recomputed as the mean of its
// assigned points. The receiver is not modified; a new Model is returned.
//
// A cluster that receives no points is re-seeded from the data point
// currently farthest from its nearest centroid (ties broken by the
// lowest row index), so Update never yields NaN centroids and stays a
// pure, deterministic function.
func (m *Model) Update(data [][]float64) (*Model, error) {
	if err := m.checkData(data); err != nil {
		return nil, err
	}

	k := len(m.centroids)
	buf := scratch.Get()
	defer scratch.Put(buf)

	sums := buf.Sums(k * m.dim)
	counts := buf.Counts(k)
	dists := buf.Resp(len(data))

	for i, x := range data {
		j, d := m.nearest(x)
		dists[i] = d
		counts[j]++
		row := sums[j*m.dim : (j+1)*m.dim]
		for l, v := range x {
			row[l] += v
		}
	}

	next := &Model{
		centroids: make([][]float64, k),
		dim:       m.dim,
	}
	flat := make([]float64, k*m.dim)
	var empty []int
	for j := 0; j < k; j++ {
		next.centroids[j] = flat[j*m.dim : (j+1)*m.dim]
		if counts[j] == 0 {
			empty = append(empty, j)
			continue
		}
		inv := 1 / counts[j]
		row := sums[j*m.dim : (j+1)*m.dim]
		for l := 0; l < m.dim; l++ {
			next.centroids[j][l] = row[l] * inv
		}
	}

	if len(empty) > 0 {
		m.reseedEmpty(next, data, dists, empty)
	}
	return next, nil
}

// reseedEmpty assigns the farthest outstanding points to the empty
// clusters, one point per cluster, in decreasing order of distance.
func (m *Model) reseedEmpty(next *Model, data [][]float64, dists []float64, empty []int) {
	order := make([]int, len(data))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if dists[order[a]] != dists[order[b]] {
			return dists[order[a]] > dists[order[b]]
		}
		return order[a] < order[b]
	})
	for i, j := range empty {
		if i >= len(order) {
			break
		}
		copy(next.centroids[j], data[order[i]])
	}
}

// Inertia returns the sum over all points of the squared distance to the
// nearest centroid. This is the objective minimized by Update: it is
// monotone non-increasing across Lloyd iterations.
func (m *Model) Inertia(data [][]float64) (float64, error) {
	if err := m.checkData(data); err != nil {
		return 0, err
	}
	var sum float64
	for _, x := range data {
		_, d := m.nearest(x)
		sum += d
	}
	return sum, nil
}

func (m *Model) checkData(data [][]float64) error {
	if len(data) == 0 {
		return numflat.InvalidArgumentf("data must not be empty")
	}
	for _, x := range data {
		if len(x) != m.dim {
			return &numflat.ErrDimensionMismatch{Expected: m.dim, Actual: len(x)}
		}
	}
	return nil
}
