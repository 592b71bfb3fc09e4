// Package mathext provides the small numeric helpers shared by the
// fitting packages.
package mathext

import "math"

// Log2Pi is log(2*pi).
const Log2Pi = 1.8378770664093453

// LogSumExp computes log(sum(exp(xs))) without overflow by subtracting
// the maximum before exponentiating. Returns -Inf for an empty slice.
func LogSumExp(xs []float64) float64 {
	maxVal := math.Inf(-1)
	for _, x := range xs {
		if x > maxVal {
			maxVal = x
		}
	}
	if math.IsInf(maxVal, -1) {
		return maxVal
	}
	var sum float64
	for _, x := range xs {
		sum += math.Exp(x - maxVal)
	}
	return maxVal + math.Log(sum)
}

// MinPositive returns the smallest diagonal entry a covariance may carry
// before it is treated as degenerate: 10 machine epsilons relative to
// the largest entry.
func MinPositive(maxEntry float64) float64 {
	return 10 * machEps * maxEntry
}

const machEps = 2.220446049250313e-16
