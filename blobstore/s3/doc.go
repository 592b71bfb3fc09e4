// Package s3 provides an S3-backed blobstore.Store and a DynamoDB-backed
// registry that tracks which snapshot of a model is current.
//
// S3 holds the immutable snapshot blobs; DynamoDB supplies the atomic
// compare-and-swap that S3 lacks, so several trainers can publish
// snapshots concurrently without losing a commit.
package s3
