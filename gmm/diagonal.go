package gmm

import (
	"math"
	"math/rand"

	numflat "github.com/sinshu/numflat-sub005"
	"github.com/sinshu/numflat-sub005/gaussian"
	"github.com/sinshu/numflat-sub005/internal/mathext"
	"github.com/sinshu/numflat-sub005/internal/scratch"
	"github.com/sinshu/numflat-sub005/kmeans"
)

// DiagonalComponent is one weighted diagonal Gaussian of a mixture.
type DiagonalComponent struct {
	weight    float64
	logWeight float64
	dist      *gaussian.DiagonalGaussian
}

// Weight returns the component's mixture weight.
func (c DiagonalComponent) Weight() float64 { return c.weight }

// Gaussian returns the component's distribution.
func (c DiagonalComponent) Gaussian() *gaussian.DiagonalGaussian { return c.dist }

// DiagonalModel is an immutable Gaussian mixture with diagonal
// covariances. It trades some modeling power for O(d) density
// evaluation per component.
type DiagonalModel struct {
	components []DiagonalComponent
	dim        int
	reg        float64
}

// NewDiagonal creates a DiagonalModel from parallel weight and
// distribution slices, under the same contract as New.
func NewDiagonal(weights []float64, dists []*gaussian.DiagonalGaussian, reg float64) (*DiagonalModel, error) {
	if len(weights) == 0 || len(dists) == 0 {
		return nil, numflat.InvalidArgumentf("mixture must have at least one component")
	}
	if len(weights) != len(dists) {
		return nil, numflat.InvalidArgumentf("got %d weights for %d components", len(weights), len(dists))
	}
	if reg < 0 {
		return nil, numflat.InvalidArgumentf("regularization must be non-negative, got %g", reg)
	}

	dim := dists[0].Dim()
	var sum float64
	components := make([]DiagonalComponent, len(weights))
	for i, w := range weights {
		if dists[i] == nil {
			return nil, numflat.InvalidArgumentf("component %d is nil", i)
		}
		if dists[i].Dim() != dim {
			return nil, &numflat.ErrDimensionMismatch{Expected: dim, Actual: dists[i].Dim()}
		}
		if w <= 0 || w > 1 || math.IsNaN(w) {
			return nil, numflat.InvalidArgumentf("weight %d out of range (0,1]: %g", i, w)
		}
		sum += w
		components[i] = DiagonalComponent{weight: w, logWeight: math.Log(w), dist: dists[i]}
	}
	if math.Abs(sum-1) > WeightSumTolerance {
		return nil, numflat.InvalidArgumentf("weights sum to %g, want 1", sum)
	}

	return &DiagonalModel{components: components, dim: dim, reg: reg}, nil
}

// DiagonalFromKMeans converts a fitted k-means partition of data into an
// initial diagonal mixture: one component per non-empty cluster with the
// cluster's empirical mean and variance (loaded by reg) and a weight
// equal to the cluster's population fraction.
func DiagonalFromKMeans(km *kmeans.Model, data [][]float64, reg float64) (*DiagonalModel, error) {
	if km == nil {
		return nil, numflat.InvalidArgumentf("kmeans model must not be nil")
	}
	p, err := km.Partition(data)
	if err != nil {
		return nil, err
	}

	var weights []float64
	var dists []*gaussian.DiagonalGaussian
	for j := 0; j < p.K(); j++ {
		rows := p.Select(data, j)
		if len(rows) == 0 {
			continue
		}
		g, err := gaussian.EstimateDiagonal(rows, reg)
		if err != nil {
			return nil, err
		}
		weights = append(weights, float64(len(rows))/float64(len(data)))
		dists = append(dists, g)
	}
	if len(dists) == 0 {
		return nil, numflat.FittingFailure("no cluster received any points", nil)
	}

	return NewDiagonal(weights, dists, reg)
}

// K returns the number of components.
func (m *DiagonalModel) K() int { return len(m.components) }

// Dim returns the dimensionality of the mixture.
func (m *DiagonalModel) Dim() int { return m.dim }

// Component returns the i-th component.
func (m *DiagonalModel) Component(i int) DiagonalComponent { return m.components[i] }

// Weights returns a copy of the component weights.
func (m *DiagonalModel) Weights() []float64 {
	out := make([]float64, len(m.components))
	for i, c := range m.components {
		out[i] = c.weight
	}
	return out
}

// Regularization returns the variance loading used when Update
// re-estimates components.
func (m *DiagonalModel) Regularization() float64 { return m.reg }

func (m *DiagonalModel) logJoint(x []float64, row []float64) error {
	for j, c := range m.components {
		lp, err := c.dist.LogPdf(x)
		if err != nil {
			return err
		}
		row[j] = c.logWeight + lp
	}
	return nil
}

// LogPdf returns the log-density of x under the mixture.
func (m *DiagonalModel) LogPdf(x []float64) (float64, error) {
	if len(x) != m.dim {
		return 0, &numflat.ErrDimensionMismatch{Expected: m.dim, Actual: len(x)}
	}
	buf := scratch.Get()
	defer scratch.Put(buf)
	row := buf.Row(len(m.components))
	if err := m.logJoint(x, row); err != nil {
		return 0, err
	}
	return mathext.LogSumExp(row), nil
}

// Pdf returns the density of x under the mixture.
func (m *DiagonalModel) Pdf(x []float64) (float64, error) {
	logPdf, err := m.LogPdf(x)
	if err != nil {
		return 0, err
	}
	return math.Exp(logPdf), nil
}

// Predict returns the index of the component with the highest
// responsibility for x (hard assignment). First-seen wins ties.
func (m *DiagonalModel) Predict(x []float64) (int, error) {
	if len(x) != m.dim {
		return -1, &numflat.ErrDimensionMismatch{Expected: m.dim, Actual: len(x)}
	}
	buf := scratch.Get()
	defer scratch.Put(buf)
	row := buf.Row(len(m.components))
	if err := m.logJoint(x, row); err != nil {
		return -1, err
	}
	best := 0
	for j, v := range row {
		if v > row[best] {
			best = j
		}
	}
	return best, nil
}

// PredictProbability returns the responsibility vector of x (soft
// assignment). The returned probabilities sum to 1.
func (m *DiagonalModel) PredictProbability(x []float64) ([]float64, error) {
	if len(x) != m.dim {
		return nil, &numflat.ErrDimensionMismatch{Expected: m.dim, Actual: len(x)}
	}
	resp := make([]float64, len(m.components))
	if err := m.logJoint(x, resp); err != nil {
		return nil, err
	}
	lse := mathext.LogSumExp(resp)
	for j := range resp {
		resp[j] = math.Exp(resp[j] - lse)
	}
	return resp, nil
}

// LogLikelihood returns the total log-likelihood of data under the
// mixture.
func (m *DiagonalModel) LogLikelihood(data [][]float64) (float64, error) {
	if err := m.checkData(data); err != nil {
		return 0, err
	}
	buf := scratch.Get()
	defer scratch.Put(buf)
	row := buf.Row(len(m.components))

	var ll float64
	for _, x := range data {
		if err := m.logJoint(x, row); err != nil {
			return 0, err
		}
		ll += mathext.LogSumExp(row)
	}
	return ll, nil
}

// Update performs one EM iteration and returns the new model together
// with the total log-likelihood of data under the current model. See
// Model.Update for the contract; the diagonal variant re-estimates
// per-dimension variances instead of full covariances.
func (m *DiagonalModel) Update(data [][]float64) (*DiagonalModel, float64, error) {
	if err := m.checkData(data); err != nil {
		return nil, 0, err
	}

	k := len(m.components)
	n := len(data)
	buf := scratch.Get()
	defer scratch.Put(buf)

	resp := buf.Resp(n * k)
	row := buf.Row(k)

	var ll float64
	for i, x := range data {
		if err := m.logJoint(x, row); err != nil {
			return nil, 0, err
		}
		lse := mathext.LogSumExp(row)
		ll += lse
		for j := range row {
			resp[i*k+j] = math.Exp(row[j] - lse)
		}
	}

	weights := make([]float64, k)
	dists := make([]*gaussian.DiagonalGaussian, k)
	col := buf.Counts(n)
	for j := 0; j < k; j++ {
		var sumR float64
		for i := 0; i < n; i++ {
			col[i] = resp[i*k+j]
			sumR += col[i]
		}
		if sumR <= 0 {
			return nil, 0, numflat.FittingFailure("component collapsed to zero responsibility", nil)
		}
		g, err := gaussian.EstimateDiagonalWeighted(data, col, m.reg)
		if err != nil {
			return nil, 0, err
		}
		weights[j] = sumR / float64(n)
		dists[j] = g
	}
	renormalize(weights)

	next, err := NewDiagonal(weights, dists, m.reg)
	if err != nil {
		return nil, 0, err
	}
	return next, ll, nil
}

// Sample draws one sample from the mixture. rng must not be nil.
func (m *DiagonalModel) Sample(rng *rand.Rand) []float64 {
	u := rng.Float64()
	var cumulative float64
	for _, c := range m.components {
		cumulative += c.weight
		if u < cumulative {
			return c.dist.Sample(rng)
		}
	}
	return m.components[len(m.components)-1].dist.Sample(rng)
}

func (m *DiagonalModel) checkData(data [][]float64) error {
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
