// Package testutil provides deterministic data generators for tests and
// benchmarks.
package testutil

import (
	"math/rand"
	"sync"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// RNG encapsulates a seeded random number generator.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a standard-normal pseudo-random number.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// Shuffle pseudo-randomizes the order of n elements.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(n, swap)
}

// GaussianBlobs generates perCluster points around each center with
// isotropic Gaussian noise of the given standard deviation. Points are
// emitted cluster by cluster; use Shuffle if order matters.
// Uses a single backing array for efficiency.
func GaussianBlobs(seed uint64, centers [][]float64, stddev float64, perCluster int) [][]float64 {
	normal := distuv.Normal{Mu: 0, Sigma: stddev, Src: xrand.NewSource(seed)}

	dim := len(centers[0])
	num := len(centers) * perCluster
	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range points {
		center := centers[i/perCluster]
		vec := data[i*dim : (i+1)*dim]
		for j := range vec {
			vec[j] = center[j] + normal.Rand()
		}
		points[i] = vec
	}
	return points
}

// UniformVectors generates random vectors with values in [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	vectors := make([][]float64, num)
	for i := range vectors {
		vec := data[i*dim : (i+1)*dim]
		for j := range vec {
			vec[j] = r.rand.Float64()
		}
		vectors[i] = vec
	}
	return vectors
}
