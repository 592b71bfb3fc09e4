// Package blobstore abstracts where model snapshots live.
//
// A Store holds named immutable blobs with whole-blob Put/Get semantics,
// which matches how snapshots are written (atomically, in one piece) and
// read (fully, then verified against their checksum). Implementations
// exist for memory (tests), the local filesystem, S3 and MinIO.
//
// Stores must be safe for concurrent use.
package blobstore
