// Package gaussian implements multivariate normal distributions in a
// full-covariance and a diagonal-covariance variant.
//
// A distribution is immutable once constructed: the Cholesky factor and
// the log-normalization constant are derived at construction time and
// cached for the object's lifetime. Densities are always evaluated
// through a linear solve against the cached factor (full) or elementwise
// division (diagonal), never by inverting the covariance matrix.
package gaussian
