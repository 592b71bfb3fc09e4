package kmeans

import (
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	numflat "github.com/sinshu/numflat-sub005"
)

// Fit partitions data into k clusters.
//
// Each restart seeds a model with k-means++ and runs Lloyd iterations
// until the relative inertia change drops to the tolerance or the
// iteration bound is hit; the restart with the lowest final inertia
// wins. Restarts only read the shared dataset and write private state,
// so they run concurrently; per-restart seeds are drawn from the random
// source up front, which keeps results reproducible for a fixed source.
//
// A restart that fails contributes +Inf inertia and is discarded. If
// every restart fails, the last failure is returned.
func Fit(data [][]float64, k int, opts ...Option) (*Model, error) {
	o := applyOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if err := checkFitArgs(data, k); err != nil {
		return nil, err
	}

	rng := o.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	seeds := make([]int64, o.tryCount)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	type result struct {
		model      *Model
		inertia    float64
		iterations int
		err        error
	}
	results := make([]result, o.tryCount)

	start := time.Now()
	var g errgroup.Group
	if o.parallelism > 0 {
		g.SetLimit(o.parallelism)
	}
	for r := range seeds {
		g.Go(func() error {
			model, inertia, iters, err := runRestart(data, k, seeds[r], &o)
			results[r] = result{model: model, inertia: inertia, iterations: iters, err: err}
			o.metrics.RecordRestart(iters, inertia, err)
			o.logger.LogRestart(r, iters, inertia, err)
			return nil
		})
	}
	_ = g.Wait()

	best := -1
	bestInertia := math.Inf(1)
	totalIters := 0
	var lastErr error
	for r, res := range results {
		totalIters += res.iterations
		if res.err != nil {
			lastErr = res.err
			continue
		}
		if res.inertia < bestInertia {
			bestInertia = res.inertia
			best = r
		}
	}

	if best < 0 {
		err := numflat.FittingFailure("all restarts failed", lastErr)
		o.metrics.RecordFit("kmeans", totalIters, time.Since(start), err)
		o.logger.LogFit("kmeans", totalIters, math.Inf(1), err)
		return nil, err
	}

	o.metrics.RecordFit("kmeans", totalIters, time.Since(start), nil)
	o.logger.WithClusters(k).WithDimension(len(data[0])).LogFit("kmeans", totalIters, bestInertia, nil)
	return results[best].model, nil
}

// runRestart seeds one model and refines it to convergence.
func runRestart(data [][]float64, k int, seed int64, o *options) (*Model, float64, int, error) {
	rng := rand.New(rand.NewSource(seed))

	model, err := NewSeedModel(data, k, rng)
	if err != nil {
		return nil, math.Inf(1), 0, err
	}
	obj, err := model.Inertia(data)
	if err != nil {
		return nil, math.Inf(1), 0, err
	}

	iters := 0
	for ; iters < o.maxIterations; iters++ {
		next, err := model.Update(data)
		if err != nil {
			return nil, math.Inf(1), iters, err
		}
		objNext, err := next.Inertia(data)
		if err != nil {
			return nil, math.Inf(1), iters, err
		}

		prev := obj
		model, obj = next, objNext
		if prev-obj <= o.tolerance*prev {
			iters++
			break
		}
	}
	return model, obj, iters, nil
}
