package persistence

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/sinshu/numflat-sub005/gmm"
	"github.com/sinshu/numflat-sub005/internal/mmap"
	"github.com/sinshu/numflat-sub005/kmeans"
)

// SaveFile writes a snapshot to path atomically: the snapshot is written
// to a temporary file in the same directory, synced, and renamed over
// path. A crash mid-write leaves the previous snapshot intact.
func SaveFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile reads a snapshot from path. Where the platform supports it,
// the file is accessed through a read-only memory mapping; otherwise it
// falls back to a regular read.
func LoadFile(path string, read func(io.Reader) error) error {
	m, err := mmap.Open(path)
	if err != nil {
		if !errors.Is(err, mmap.ErrUnsupported) {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return read(bytes.NewReader(data))
	}
	defer m.Close()
	return read(bytes.NewReader(m.Bytes()))
}

// SaveKMeansFile writes m to path atomically.
func SaveKMeansFile(path string, m *kmeans.Model, opts ...Option) error {
	return SaveFile(path, func(w io.Writer) error { return SaveKMeans(w, m, opts...) })
}

// LoadKMeansFile reads a k-means snapshot from path.
func LoadKMeansFile(path string) (*kmeans.Model, error) {
	var m *kmeans.Model
	err := LoadFile(path, func(r io.Reader) error {
		var err error
		m, err = LoadKMeans(r)
		return err
	})
	return m, err
}

// SaveGMMFile writes m to path atomically.
func SaveGMMFile(path string, m *gmm.Model, opts ...Option) error {
	return SaveFile(path, func(w io.Writer) error { return SaveGMM(w, m, opts...) })
}

// LoadGMMFile reads a full-covariance mixture snapshot from path.
func LoadGMMFile(path string) (*gmm.Model, error) {
	var m *gmm.Model
	err := LoadFile(path, func(r io.Reader) error {
		var err error
		m, err = LoadGMM(r)
		return err
	})
	return m, err
}

// SaveDiagonalGMMFile writes m to path atomically.
func SaveDiagonalGMMFile(path string, m *gmm.DiagonalModel, opts ...Option) error {
	return SaveFile(path, func(w io.Writer) error { return SaveDiagonalGMM(w, m, opts...) })
}

// LoadDiagonalGMMFile reads a diagonal mixture snapshot from path.
func LoadDiagonalGMMFile(path string) (*gmm.DiagonalModel, error) {
	var m *gmm.DiagonalModel
	err := LoadFile(path, func(r io.Reader) error {
		var err error
		m, err = LoadDiagonalGMM(r)
		return err
	})
	return m, err
}
