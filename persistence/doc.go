// Package persistence stores fitted models as self-describing binary
// snapshots.
//
// A snapshot is a small binary header (magic number, format version,
// model kind, compression and codec identifiers) followed by the
// codec-encoded model state and a trailing CRC32 checksum. Snapshots are
// portable across architectures; all header fields are little-endian.
//
// Save/Load work on io.Writer/io.Reader. SaveFile/LoadFile add atomic
// file replacement and, where the platform supports it, LoadFile reads
// through a read-only memory mapping.
package persistence
