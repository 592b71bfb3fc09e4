// Package numflat is a numerical computing toolkit for Go, providing
// statistical and unsupervised-learning algorithms on top of dense
// linear algebra.
//
// The core of the library is an iterative model-fitting pipeline:
//
//   - kmeans: centroid-based partitioning with k-means++ seeding and
//     best-of-N-restarts selection.
//   - gaussian: multivariate normal distributions in full-covariance and
//     diagonal-covariance variants, with log-density evaluation, sampling,
//     and Mahalanobis/Bhattacharyya distances.
//   - gmm: Gaussian mixture models fitted by Expectation-Maximization,
//     initialized from a k-means partition.
//
// Fitted models are immutable values: every refinement step is a pure
// function from (model, data) to a new model, so independent fits can run
// concurrently over a shared read-only dataset.
//
// Supporting packages cover model persistence (versioned binary
// snapshots in the persistence package) and remote artifact storage
// (blobstore, with local, in-memory, S3 and MinIO backends).
//
// Dense containers and decompositions are delegated to gonum; this
// package itself only defines the error taxonomy, structured logging,
// and metrics collection shared by the fitting packages.
package numflat
