package persistence

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sinshu/numflat-sub005/codec"
	"github.com/sinshu/numflat-sub005/gmm"
	"github.com/sinshu/numflat-sub005/kmeans"
)

// Options configure how a snapshot is written. Reading needs no options:
// snapshots are self-describing.
type Options struct {
	codec       codec.Codec
	compression Compression
}

// Option modifies snapshot write options.
type Option func(*Options)

// WithCodec selects the payload codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) { o.codec = c }
}

// WithCompression selects the payload compression. Defaults to
// CompressionNone.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.compression = c }
}

func applyOptions(opts []Option) Options {
	o := Options{codec: codec.Default, compression: CompressionNone}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SaveKMeans writes m as a snapshot to w.
func SaveKMeans(w io.Writer, m *kmeans.Model, opts ...Option) error {
	return writeSnapshot(w, KindKMeans, kmeansState(m), applyOptions(opts))
}

// LoadKMeans reads a k-means snapshot from r.
func LoadKMeans(r io.Reader) (*kmeans.Model, error) {
	var s KMeansState
	if err := readSnapshot(r, KindKMeans, &s); err != nil {
		return nil, err
	}
	return s.model()
}

// SaveGMM writes m as a snapshot to w.
func SaveGMM(w io.Writer, m *gmm.Model, opts ...Option) error {
	return writeSnapshot(w, KindGMM, gmmState(m), applyOptions(opts))
}

// LoadGMM reads a full-covariance mixture snapshot from r.
func LoadGMM(r io.Reader) (*gmm.Model, error) {
	var s GMMState
	if err := readSnapshot(r, KindGMM, &s); err != nil {
		return nil, err
	}
	return s.model()
}

// SaveDiagonalGMM writes m as a snapshot to w.
func SaveDiagonalGMM(w io.Writer, m *gmm.DiagonalModel, opts ...Option) error {
	return writeSnapshot(w, KindDiagonalGMM, diagonalGMMState(m), applyOptions(opts))
}

// LoadDiagonalGMM reads a diagonal mixture snapshot from r.
func LoadDiagonalGMM(r io.Reader) (*gmm.DiagonalModel, error) {
	var s DiagonalGMMState
	if err := readSnapshot(r, KindDiagonalGMM, &s); err != nil {
		return nil, err
	}
	return s.model()
}

func writeSnapshot(w io.Writer, kind uint8, state any, o Options) error {
	payload, err := o.codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot payload: %w", err)
	}
	payload, err = compress(o.compression, payload)
	if err != nil {
		return err
	}

	name := o.codec.Name()
	if len(name) > 255 {
		return fmt.Errorf("%w: name %q too long", ErrUnknownCodec, name)
	}

	cw := newChecksumWriter(w)
	for _, v := range []any{
		uint32(MagicNumber),
		uint32(Version),
		kind,
		uint8(o.compression),
		uint8(len(name)),
	} {
		if err := binary.Write(cw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := cw.Write([]byte(name)); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.LittleEndian, uint64(len(payload))); err != nil {
		return err
	}
	if _, err := cw.Write(payload); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, cw.Sum())
}

func readSnapshot(r io.Reader, wantKind uint8, state any) error {
	cr := newChecksumReader(r)

	var magic, version uint32
	if err := binary.Read(cr, binary.LittleEndian, &magic); err != nil {
		return err
	}
	if magic != MagicNumber {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, magic)
	}
	if err := binary.Read(cr, binary.LittleEndian, &version); err != nil {
		return err
	}
	if version != Version {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidVersion, version)
	}

	var kind, compression, codecLen uint8
	for _, p := range []*uint8{&kind, &compression, &codecLen} {
		if err := binary.Read(cr, binary.LittleEndian, p); err != nil {
			return err
		}
	}
	if kind != wantKind {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidKind, kind, wantKind)
	}

	nameBuf := make([]byte, codecLen)
	if _, err := io.ReadFull(cr, nameBuf); err != nil {
		return err
	}
	c, ok := codec.ByName(string(nameBuf))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, nameBuf)
	}

	var payloadLen uint64
	if err := binary.Read(cr, binary.LittleEndian, &payloadLen); err != nil {
		return err
	}
	if payloadLen > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, payloadLen)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(cr, payload); err != nil {
		return err
	}

	sum := cr.Sum()
	var expected uint32
	if err := binary.Read(r, binary.LittleEndian, &expected); err != nil {
		return err
	}
	if sum != expected {
		return &ChecksumMismatchError{Expected: expected, Actual: sum}
	}

	payload, err := decompress(Compression(compression), payload)
	if err != nil {
		return err
	}
	if err := c.Unmarshal(payload, state); err != nil {
		return fmt.Errorf("decode snapshot payload: %w", err)
	}
	return nil
}
