package persistence

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/sinshu/numflat-sub005/codec"
	"github.com/sinshu/numflat-sub005/gaussian"
	"github.com/sinshu/numflat-sub005/gmm"
	"github.com/sinshu/numflat-sub005/kmeans"
)

func testKMeansModel(t *testing.T) *kmeans.Model {
	t.Helper()
	m, err := kmeans.NewModel([][]float64{
		{0, -2},
		{8, 8},
		{8, 1},
	})
	require.NoError(t, err)
	return m
}

func testGMM(t *testing.T) *gmm.Model {
	t.Helper()
	g1, err := gaussian.New([]float64{0, 0}, mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1}))
	require.NoError(t, err)
	g2, err := gaussian.New([]float64{5, 5}, mat.NewSymDense(2, []float64{1, -0.25, -0.25, 3}))
	require.NoError(t, err)
	m, err := gmm.New([]float64{0.4, 0.6}, []*gaussian.Gaussian{g1, g2}, 1e-6)
	require.NoError(t, err)
	return m
}

func testDiagonalGMM(t *testing.T) *gmm.DiagonalModel {
	t.Helper()
	g1, err := gaussian.NewDiagonal([]float64{0, 0, 0}, []float64{1, 2, 3})
	require.NoError(t, err)
	g2, err := gaussian.NewDiagonal([]float64{4, 4, 4}, []float64{0.5, 0.5, 0.5})
	require.NoError(t, err)
	m, err := gmm.NewDiagonal([]float64{0.7, 0.3}, []*gaussian.DiagonalGaussian{g1, g2}, 1e-6)
	require.NoError(t, err)
	return m
}

func TestKMeansRoundTrip(t *testing.T) {
	m := testKMeansModel(t)

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, SaveKMeans(&buf, m, WithCompression(comp)))

			got, err := LoadKMeans(&buf)
			require.NoError(t, err)
			assert.Equal(t, m.Centroids(), got.Centroids())
		})
	}
}

func TestGMMRoundTrip(t *testing.T) {
	m := testGMM(t)

	var buf bytes.Buffer
	require.NoError(t, SaveGMM(&buf, m, WithCodec(codec.JSON{})))

	got, err := LoadGMM(&buf)
	require.NoError(t, err)

	assert.Equal(t, m.K(), got.K())
	assert.InDeltaSlice(t, m.Weights(), got.Weights(), 1e-15)
	assert.Equal(t, m.Regularization(), got.Regularization())

	// The reloaded mixture scores points identically.
	for _, x := range [][]float64{{0, 0}, {5, 5}, {2.5, 2.5}, {-1, 7}} {
		want, err := m.LogPdf(x)
		require.NoError(t, err)
		have, err := got.LogPdf(x)
		require.NoError(t, err)
		assert.InDelta(t, want, have, 1e-12)
	}
}

func TestDiagonalGMMRoundTrip(t *testing.T) {
	m := testDiagonalGMM(t)

	var buf bytes.Buffer
	require.NoError(t, SaveDiagonalGMM(&buf, m, WithCompression(CompressionLZ4)))

	got, err := LoadDiagonalGMM(&buf)
	require.NoError(t, err)
	assert.InDeltaSlice(t, m.Weights(), got.Weights(), 1e-15)
	for j := 0; j < m.K(); j++ {
		assert.Equal(t, m.Component(j).Gaussian().Mean(), got.Component(j).Gaussian().Mean())
		assert.Equal(t, m.Component(j).Gaussian().Variance(), got.Component(j).Gaussian().Variance())
	}
}

func TestLoadRejectsWrongKind(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveKMeans(&buf, testKMeansModel(t)))

	_, err := LoadGMM(&buf)
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveKMeans(&buf, testKMeansModel(t)))

	data := buf.Bytes()
	data[0] ^= 0xFF
	_, err := LoadKMeans(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestLoadDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveKMeans(&buf, testKMeansModel(t)))

	// Flip a payload byte; the trailing CRC32 must catch it.
	data := buf.Bytes()
	data[len(data)-8] ^= 0x01
	_, err := LoadKMeans(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, IsChecksumMismatch(err), "got %v", err)
}

func TestLoadRejectsHugePayloadLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveKMeans(&buf, testKMeansModel(t)))

	// Overwrite the payload length with garbage; Load must refuse before
	// attempting the allocation.
	data := buf.Bytes()
	off := 4 + 4 + 1 + 1 + 1 + len(codec.Default.Name())
	binary.LittleEndian.PutUint64(data[off:], math.MaxUint64)
	_, err := LoadKMeans(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestLoadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveKMeans(&buf, testKMeansModel(t)))

	data := buf.Bytes()
	_, err := LoadKMeans(bytes.NewReader(data[:len(data)/2]))
	assert.Error(t, err)
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/model.nfl"

	m := testGMM(t)
	require.NoError(t, SaveGMMFile(path, m, WithCompression(CompressionZstd)))

	got, err := LoadGMMFile(path)
	require.NoError(t, err)
	assert.InDeltaSlice(t, m.Weights(), got.Weights(), 1e-15)

	_, err = LoadGMMFile(dir + "/missing.nfl")
	assert.Error(t, err)
}

func TestFittedModelRoundTrip(t *testing.T) {
	// End to end: fit, snapshot, reload, compare predictions.
	rng := rand.New(rand.NewSource(1))
	var data [][]float64
	for i := 0; i < 60; i++ {
		c := []float64{0, 0}
		if i >= 30 {
			c = []float64{6, 6}
		}
		data = append(data, []float64{c[0] + rng.NormFloat64(), c[1] + rng.NormFloat64()})
	}

	m, err := gmm.FitDiagonal(data, 2, gmm.WithRand(rand.New(rand.NewSource(2))))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, SaveDiagonalGMM(&buf, m))
	got, err := LoadDiagonalGMM(&buf)
	require.NoError(t, err)

	for _, x := range data {
		want, err := m.Predict(x)
		require.NoError(t, err)
		have, err := got.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, want, have)
	}
}
