// Package scratch provides pooled accumulation buffers for the iteration
// loops in kmeans and gmm. Uses sync.Pool for automatic memory reuse.
//
// The contract is deterministic release on every exit path: callers pair
// Get with a deferred Put so buffers return to the pool even when an
// iteration fails mid-computation.
package scratch

import "sync"

const (
	// DefaultGridCapacity is the default capacity for k*dim accumulators.
	DefaultGridCapacity = 4096

	// DefaultVecCapacity is the default capacity for per-cluster vectors.
	DefaultVecCapacity = 256
)

// Buffers contains pre-allocated accumulators for one Lloyd or EM
// iteration. All fields are reusable across iterations.
type Buffers struct {
	sums   []float64
	counts []float64
	row    []float64
	resp   []float64
}

var bufferPool = sync.Pool{
	New: func() any {
		return &Buffers{
			sums:   make([]float64, 0, DefaultGridCapacity),
			counts: make([]float64, 0, DefaultVecCapacity),
			row:    make([]float64, 0, DefaultVecCapacity),
		}
	},
}

// Get retrieves a Buffers from the pool.
func Get() *Buffers {
	return bufferPool.Get().(*Buffers)
}

// Put returns a Buffers to the pool for reuse.
func Put(b *Buffers) {
	bufferPool.Put(b)
}

// Sums returns a zeroed accumulator of length n (cluster/component sums).
func (b *Buffers) Sums(n int) []float64 {
	b.sums = grow(b.sums, n)
	return b.sums
}

// Counts returns a zeroed accumulator of length n (cluster counts or
// responsibility masses).
func (b *Buffers) Counts(n int) []float64 {
	b.counts = grow(b.counts, n)
	return b.counts
}

// Row returns a zeroed per-point working row of length n.
func (b *Buffers) Row(n int) []float64 {
	b.row = grow(b.row, n)
	return b.row
}

// Resp returns a zeroed flat n-element responsibility buffer.
func (b *Buffers) Resp(n int) []float64 {
	b.resp = grow(b.resp, n)
	return b.resp
}

func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}
