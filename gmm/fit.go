package gmm

import (
	"math"
	"math/rand"
	"time"

	"github.com/sinshu/numflat-sub005/kmeans"
)

// Fit estimates a full-covariance Gaussian mixture with k components.
//
// The pipeline is: multi-restart k-means (seeded from the configured
// random source), conversion of the winning partition into an initial
// mixture, then EM iterations until the log-likelihood's absolute or
// relative change drops to the tolerance or the iteration bound is hit.
//
// EM does not retry on a fitting failure; callers wanting robustness
// should retry with different seeding or increased regularization.
func Fit(data [][]float64, k int, opts ...Option) (*Model, error) {
	o := applyOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	model, iters, ll, err := fitFull(data, k, &o)
	o.metrics.RecordFit("gmm", iters, time.Since(start), err)
	o.logger.LogFit("gmm", iters, ll, err)
	return model, err
}

func fitFull(data [][]float64, k int, o *options) (*Model, int, float64, error) {
	km, err := initKMeans(data, k, o)
	if err != nil {
		return nil, 0, math.Inf(-1), err
	}
	model, err := FromKMeans(km, data, o.regularization)
	if err != nil {
		return nil, 0, math.Inf(-1), err
	}

	ll := math.Inf(-1)
	iters := 0
	for ; iters < o.maxIterations; iters++ {
		next, llNext, err := model.Update(data)
		if err != nil {
			return nil, iters, ll, err
		}
		model = next

		change := math.Abs(llNext - ll)
		o.logger.LogIteration(iters, llNext, change)
		converged := !math.IsInf(ll, -1) &&
			(change <= o.tolerance || change <= o.tolerance*math.Abs(ll))
		ll = llNext
		if converged {
			iters++
			break
		}
	}
	return model, iters, ll, nil
}

// FitDiagonal estimates a diagonal-covariance Gaussian mixture with k
// components, under the same contract as Fit.
func FitDiagonal(data [][]float64, k int, opts ...Option) (*DiagonalModel, error) {
	o := applyOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	model, iters, ll, err := fitDiagonal(data, k, &o)
	o.metrics.RecordFit("diagonal-gmm", iters, time.Since(start), err)
	o.logger.LogFit("diagonal-gmm", iters, ll, err)
	return model, err
}

func fitDiagonal(data [][]float64, k int, o *options) (*DiagonalModel, int, float64, error) {
	km, err := initKMeans(data, k, o)
	if err != nil {
		return nil, 0, math.Inf(-1), err
	}
	model, err := DiagonalFromKMeans(km, data, o.regularization)
	if err != nil {
		return nil, 0, math.Inf(-1), err
	}

	ll := math.Inf(-1)
	iters := 0
	for ; iters < o.maxIterations; iters++ {
		next, llNext, err := model.Update(data)
		if err != nil {
			return nil, iters, ll, err
		}
		model = next

		change := math.Abs(llNext - ll)
		o.logger.LogIteration(iters, llNext, change)
		converged := !math.IsInf(ll, -1) &&
			(change <= o.tolerance || change <= o.tolerance*math.Abs(ll))
		ll = llNext
		if converged {
			iters++
			break
		}
	}
	return model, iters, ll, nil
}

func initKMeans(data [][]float64, k int, o *options) (*kmeans.Model, error) {
	rng := o.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return kmeans.Fit(data, k,
		kmeans.WithTryCount(o.kmeansTryCount),
		kmeans.WithRand(rng),
		kmeans.WithLogger(o.logger),
		kmeans.WithMetricsCollector(o.metrics),
	)
}
