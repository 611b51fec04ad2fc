// Package format houses low-level decoders for the Flattened Device Tree
// (DTB) binary format. The goal is to keep the parsing focused,
// allocation-free where possible, and independent from the public API so the
// fdt package can orchestrate the data in a more ergonomic form.
package format

const (
	// Magic is the four-byte constant at the start of every DTB.
	// The format stores all integers in big-endian form.
	Magic = 0xd00dfeed

	// HeaderSize is the size of the fixed DTB header in bytes (version 17).
	HeaderSize = 40

	// SupportedVersion is the header version this package understands.
	// LastCompVersion is the oldest version the blob may declare
	// backwards compatibility with; version 16 introduced the current
	// structure-block encoding.
	SupportedVersion = 17
	LastCompVersion  = 16
)

// Header field byte offsets. All fields are 32-bit big-endian.
const (
	MagicOffset           = 0x00
	TotalSizeOffset       = 0x04
	StructOffsetOffset    = 0x08
	StringsOffsetOffset   = 0x0C
	MemRsvmapOffsetOffset = 0x10
	VersionOffset         = 0x14
	LastCompVersionOffset = 0x18
	BootCPUIDOffset       = 0x1C
	StringsSizeOffset     = 0x20
	StructSizeOffset      = 0x24
)

// Structure block tokens. Each token is a 32-bit big-endian word aligned to
// a 4-byte boundary.
const (
	// TokenBeginNode marks the start of a node. It is followed by the
	// node's NUL-terminated name, padded to the next token boundary.
	TokenBeginNode = 0x1
	// TokenEndNode marks the end of a node. No payload.
	TokenEndNode = 0x2
	// TokenProp marks a property. It is followed by two 32-bit words
	// (payload length, name offset into the strings block) and the raw
	// payload, padded to the next token boundary.
	TokenProp = 0x3
	// TokenNop is skippable padding.
	TokenNop = 0x4
	// TokenEnd marks the end of the structure block. No payload.
	TokenEnd = 0x9
)

const (
	// TokenAlignment is the required alignment of structure block tokens.
	TokenAlignment = 4

	// TokenSize is the size of a bare token word.
	TokenSize = 4

	// CellSize is the size of one property value cell.
	CellSize = 4

	// PropHeaderSize is the size of the length/name-offset pair that
	// follows a TokenProp word.
	PropHeaderSize = 8

	// ReserveEntrySize is the size of one memory reservation entry
	// (64-bit address + 64-bit size).
	ReserveEntrySize = 16
)

const (
	// MaxPhandle is the largest valid phandle value. Zero and 0xffffffff
	// are reserved and never refer to a node.
	MaxPhandle = 0xfffffffe

	// MaxPathLen bounds reconstructed node paths. Paths longer than this
	// fail with a no-space error rather than allocating without bound.
	MaxPathLen = 2048
)
