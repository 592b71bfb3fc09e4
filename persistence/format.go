package persistence

import "errors"

// Snapshot on-disk layout, little-endian:
//
//	magic       uint32
//	version     uint32
//	kind        uint8
//	compression uint8
//	codecLen    uint8
//	codecName   [codecLen]byte
//	payloadLen  uint64
//	payload     [payloadLen]byte
//	checksum    uint32  (CRC32-IEEE over everything before it)
const (
	// MagicNumber identifies numflat snapshot files (ASCII: "NFL1").
	MagicNumber = 0x4E464C31
	// Version is the current snapshot format version (v1.0.0).
	Version = 0x00010000

	// Model kinds stored in the snapshot header.
	KindKMeans      = 1
	KindGMM         = 2
	KindDiagonalGMM = 3

	// MaxPayloadSize bounds the payload length accepted on load, so a
	// corrupt header cannot force a huge allocation before the checksum
	// is checked. Real snapshots are orders of magnitude smaller.
	MaxPayloadSize = 1 << 30
)

// Compression identifiers stored in the snapshot header.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported snapshot version")
	ErrInvalidKind        = errors.New("invalid model kind")
	ErrUnknownCodec       = errors.New("unknown codec")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrPayloadTooLarge    = errors.New("snapshot payload too large")
)
