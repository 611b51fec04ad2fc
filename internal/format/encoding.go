package format

import "encoding/binary"

// Binary encoding utilities for big-endian integers.
//
// The Flattened Device Tree format stores every integer field in big-endian
// byte order regardless of host endianness. These helpers assume the caller
// has already bounds-checked the slice; the decode paths in this package do
// so before every read.

// ReadU32 reads a uint32 value from the buffer at the specified offset in big-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in big-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.BigEndian.Uint64(b[off : off+8])
}
