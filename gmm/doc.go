// Package gmm implements Gaussian mixture models fitted by
// Expectation-Maximization, in full-covariance and diagonal-covariance
// variants.
//
// A model is an immutable, ordered list of weighted components whose
// weights sum to 1. Fitting starts from a k-means partition (one
// component per non-empty cluster) and refines it with EM steps; each
// Update is a pure function returning a new model together with the
// dataset log-likelihood, which is non-decreasing across iterations.
//
// All per-point arithmetic runs in log space with the log-sum-exp trick,
// so tightly concentrated or high-dimensional components do not
// underflow.
package gmm
