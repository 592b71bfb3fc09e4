package persistence

import (
	"bytes"
	"context"
	"io"

	"github.com/sinshu/numflat-sub005/blobstore"
	"github.com/sinshu/numflat-sub005/gmm"
	"github.com/sinshu/numflat-sub005/kmeans"
)

// Remote Save/Load push snapshots through a blobstore.Store. The
// snapshot is fully assembled in memory before the Put, so a failed
// upload never leaves a half-written blob behind.

// SaveKMeansBlob writes m to the store under name.
func SaveKMeansBlob(ctx context.Context, store blobstore.Store, name string, m *kmeans.Model, opts ...Option) error {
	return putSnapshot(ctx, store, name, func(w io.Writer) error { return SaveKMeans(w, m, opts...) })
}

// LoadKMeansBlob reads a k-means snapshot from the store.
func LoadKMeansBlob(ctx context.Context, store blobstore.Store, name string) (*kmeans.Model, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return LoadKMeans(bytes.NewReader(data))
}

// SaveGMMBlob writes m to the store under name.
func SaveGMMBlob(ctx context.Context, store blobstore.Store, name string, m *gmm.Model, opts ...Option) error {
	return putSnapshot(ctx, store, name, func(w io.Writer) error { return SaveGMM(w, m, opts...) })
}

// LoadGMMBlob reads a full-covariance mixture snapshot from the store.
func LoadGMMBlob(ctx context.Context, store blobstore.Store, name string) (*gmm.Model, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return LoadGMM(bytes.NewReader(data))
}

// SaveDiagonalGMMBlob writes m to the store under name.
func SaveDiagonalGMMBlob(ctx context.Context, store blobstore.Store, name string, m *gmm.DiagonalModel, opts ...Option) error {
	return putSnapshot(ctx, store, name, func(w io.Writer) error { return SaveDiagonalGMM(w, m, opts...) })
}

// LoadDiagonalGMMBlob reads a diagonal mixture snapshot from the store.
func LoadDiagonalGMMBlob(ctx context.Context, store blobstore.Store, name string) (*gmm.DiagonalModel, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return LoadDiagonalGMM(bytes.NewReader(data))
}

func putSnapshot(ctx context.Context, store blobstore.Store, name string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	return store.Put(ctx, name, buf.Bytes())
}
