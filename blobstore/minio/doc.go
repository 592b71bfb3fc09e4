// Package minio provides a blobstore.Store for MinIO and other
// S3-compatible object stores, using the native MinIO client rather
// than the AWS SDK. Prefer this for self-hosted deployments.
package minio
