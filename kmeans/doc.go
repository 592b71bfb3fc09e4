// Package kmeans implements centroid-based partitioning with k-means++
// seeding and best-of-N-restarts selection.
//
// A Model is an immutable set of centroids. One Lloyd iteration is a
// pure function: Update reads the previous model and the dataset and
// returns a new model, so multi-restart fitting needs no locking and
// restarts run concurrently. The fitted partition feeds Gaussian mixture
// initialization in the gmm package.
package kmeans
