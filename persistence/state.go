package persistence

import (
	"gonum.org/v1/gonum/mat"

	numflat "github.com/sinshu/numflat-sub005"
	"github.com/sinshu/numflat-sub005/gaussian"
	"github.com/sinshu/numflat-sub005/gmm"
	"github.com/sinshu/numflat-sub005/kmeans"
)

// The state types are the codec-encoded payload of a snapshot. They are
// plain data: reconstructing a model from state re-runs the constructor
// validation, so a hand-edited or corrupted payload cannot produce a
// model that violates its own invariants.

// KMeansState is the serializable state of a kmeans.Model.
type KMeansState struct {
	Centroids [][]float64 `json:"centroids"`
}

// GaussianState is the serializable state of a gaussian.Gaussian. The
// covariance is stored row-major as a flat dim*dim slice.
type GaussianState struct {
	Mean       []float64 `json:"mean"`
	Covariance []float64 `json:"covariance"`
}

// DiagonalGaussianState is the serializable state of a
// gaussian.DiagonalGaussian.
type DiagonalGaussianState struct {
	Mean     []float64 `json:"mean"`
	Variance []float64 `json:"variance"`
}

// GMMState is the serializable state of a gmm.Model.
type GMMState struct {
	Weights        []float64       `json:"weights"`
	Components     []GaussianState `json:"components"`
	Regularization float64         `json:"regularization"`
}

// DiagonalGMMState is the serializable state of a gmm.DiagonalModel.
type DiagonalGMMState struct {
	Weights        []float64               `json:"weights"`
	Components     []DiagonalGaussianState `json:"components"`
	Regularization float64                 `json:"regularization"`
}

func kmeansState(m *kmeans.Model) KMeansState {
	return KMeansState{Centroids: m.Centroids()}
}

func (s KMeansState) model() (*kmeans.Model, error) {
	return kmeans.NewModel(s.Centroids)
}

func gaussianState(g *gaussian.Gaussian) GaussianState {
	dim := g.Dim()
	cov := g.Covariance()
	flat := make([]float64, dim*dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			flat[i*dim+j] = cov.At(i, j)
		}
	}
	return GaussianState{Mean: g.Mean(), Covariance: flat}
}

func (s GaussianState) dist() (*gaussian.Gaussian, error) {
	dim := len(s.Mean)
	if len(s.Covariance) != dim*dim {
		return nil, numflat.InvalidArgumentf("covariance has %d entries, want %d", len(s.Covariance), dim*dim)
	}
	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			cov.SetSym(i, j, s.Covariance[i*dim+j])
		}
	}
	return gaussian.New(s.Mean, cov)
}

func gmmState(m *gmm.Model) GMMState {
	s := GMMState{
		Weights:        m.Weights(),
		Components:     make([]GaussianState, m.K()),
		Regularization: m.Regularization(),
	}
	for i := range s.Components {
		s.Components[i] = gaussianState(m.Component(i).Gaussian())
	}
	return s
}

func (s GMMState) model() (*gmm.Model, error) {
	dists := make([]*gaussian.Gaussian, len(s.Components))
	for i, cs := range s.Components {
		g, err := cs.dist()
		if err != nil {
			return nil, err
		}
		dists[i] = g
	}
	return gmm.New(s.Weights, dists, s.Regularization)
}

func diagonalGMMState(m *gmm.DiagonalModel) DiagonalGMMState {
	s := DiagonalGMMState{
		Weights:        m.Weights(),
		Components:     make([]DiagonalGaussianState, m.K()),
		Regularization: m.Regularization(),
	}
	for i := range s.Components {
		g := m.Component(i).Gaussian()
		s.Components[i] = DiagonalGaussianState{Mean: g.Mean(), Variance: g.Variance()}
	}
	return s
}

func (s DiagonalGMMState) model() (*gmm.DiagonalModel, error) {
	dists := make([]*gaussian.DiagonalGaussian, len(s.Components))
	for i, cs := range s.Components {
		g, err := gaussian.NewDiagonal(cs.Mean, cs.Variance)
		if err != nil {
			return nil, err
		}
		dists[i] = g
	}
	return gmm.NewDiagonal(s.Weights, dists, s.Regularization)
}
