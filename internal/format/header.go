package format

import (
	"fmt"

	"github.com/joshuapare/fdtkit/pkg/types"
)

// Header captures the fixed-layout DTB header. The diagram below lists the
// field offsets; every field is a 32-bit big-endian word.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x00    4    Magic (0xd00dfeed)
//	 0x04    4    Total size of the blob in bytes
//	 0x08    4    Offset of the structure block
//	 0x0C    4    Offset of the strings block
//	 0x10    4    Offset of the memory reservation block
//	 0x14    4    Format version
//	 0x18    4    Last compatible version
//	 0x1C    4    Physical CPU id of the booting CPU
//	 0x20    4    Size of the strings block
//	 0x24    4    Size of the structure block
type Header struct {
	TotalSize       uint32
	StructOffset    uint32
	StringsOffset   uint32
	MemRsvmapOffset uint32
	Version         uint32
	LastCompVersion uint32
	BootCPUID       uint32
	StringsSize     uint32
	StructSize      uint32
}

// ParseHeader validates the DTB header at the start of b and extracts its
// fields. Validation order matters: magic is checked before version so a
// non-DTB buffer reports bad magic, not a bogus version.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("header: %w", types.ErrTruncated)
	}
	if ReadU32(b, MagicOffset) != Magic {
		return Header{}, fmt.Errorf("header: %w", types.ErrBadMagic)
	}

	h := Header{
		TotalSize:       ReadU32(b, TotalSizeOffset),
		StructOffset:    ReadU32(b, StructOffsetOffset),
		StringsOffset:   ReadU32(b, StringsOffsetOffset),
		MemRsvmapOffset: ReadU32(b, MemRsvmapOffsetOffset),
		Version:         ReadU32(b, VersionOffset),
		LastCompVersion: ReadU32(b, LastCompVersionOffset),
		BootCPUID:       ReadU32(b, BootCPUIDOffset),
		StringsSize:     ReadU32(b, StringsSizeOffset),
		StructSize:      ReadU32(b, StructSizeOffset),
	}

	if h.Version < SupportedVersion || h.LastCompVersion > SupportedVersion {
		return Header{}, fmt.Errorf("header: version %d (last compatible %d): %w",
			h.Version, h.LastCompVersion, types.ErrBadVersion)
	}
	if h.TotalSize < HeaderSize || int(h.TotalSize) > len(b) {
		return Header{}, fmt.Errorf("header: declared size %d exceeds buffer %d: %w",
			h.TotalSize, len(b), types.ErrTruncated)
	}
	if !Aligned4(int(h.StructOffset)) || !Aligned4(int(h.MemRsvmapOffset)) {
		return Header{}, fmt.Errorf("header: %w", types.ErrAlignment)
	}
	if err := checkBlock(h.StructOffset, h.StructSize, h.TotalSize); err != nil {
		return Header{}, fmt.Errorf("header: structure block: %w", err)
	}
	if err := checkBlock(h.StringsOffset, h.StringsSize, h.TotalSize); err != nil {
		return Header{}, fmt.Errorf("header: strings block: %w", err)
	}
	if h.MemRsvmapOffset < HeaderSize || h.MemRsvmapOffset > h.TotalSize {
		return Header{}, fmt.Errorf("header: reservation block: %w", types.ErrBadLayout)
	}
	return h, nil
}

// checkBlock verifies a block described by (offset, size) lies inside the
// declared total size without overflowing.
func checkBlock(off, size, total uint32) error {
	if off < HeaderSize || off > total {
		return types.ErrBadLayout
	}
	end := uint64(off) + uint64(size)
	if end > uint64(total) {
		return types.ErrBadLayout
	}
	return nil
}
