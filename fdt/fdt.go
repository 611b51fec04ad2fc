package fdt

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/joshuapare/fdtkit/internal/format"
)

// Fdt is an opened flattened device tree, backed by a caller-provided byte
// slice. It is the first object to instantiate to inspect a DTB.
//
// The blob is never copied and never mutated; every Node and Property handle
// derived from the Fdt aliases the same buffer and is only valid for as long
// as the caller keeps that buffer alive and unmodified.
type Fdt struct {
	data   []byte
	head   format.Header
	logger *zap.Logger

	linksSimple map[string]PhandleLink
	linksSuffix []PhandleLink
}

// Option configures an Fdt at construction time.
type Option func(*Fdt)

// WithLogger sets the logger used for per-entry warnings during phandle
// link resolution. The default is zap.NewNop(), so embedding callers stay
// silent unless they opt in.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fdt) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithLinks registers additional phandle-reference conventions on top of
// the built-in Linux kernel tables. Simple entries are matched by exact
// property name; suffix entries are scanned in the order given, after the
// built-in suffix table.
func WithLinks(simple []PhandleLink, suffix []PhandleLink) Option {
	return func(f *Fdt) {
		for _, l := range simple {
			f.linksSimple[l.Name] = l
		}
		f.linksSuffix = append(f.linksSuffix, suffix...)
	}
}

// New validates the header of data and returns an Fdt over it. The buffer
// is not copied. Validation runs exactly once, here; a blob that fails the
// magic, version, or size checks can never be navigated.
//
// Example:
//
//	data, _ := os.ReadFile("board.dtb")
//	f, err := fdt.New(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	root, _ := f.Node("/")
func New(data []byte, opts ...Option) (*Fdt, error) {
	head, err := format.ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("fdt: %w", err)
	}

	f := &Fdt{
		data:        data,
		head:        head,
		logger:      zap.NewNop(),
		linksSimple: make(map[string]PhandleLink, len(linuxSimpleLinks)),
		linksSuffix: make([]PhandleLink, 0, len(linuxSuffixLinks)),
	}
	for _, l := range linuxSimpleLinks {
		f.linksSimple[l.Name] = l
	}
	f.linksSuffix = append(f.linksSuffix, linuxSuffixLinks...)

	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Totalsize returns the blob's declared total size in bytes.
func (f *Fdt) Totalsize() uint32 { return f.head.TotalSize }

// Version returns the header format version.
func (f *Fdt) Version() uint32 { return f.head.Version }

// BootCPUID returns the physical id of the booting CPU recorded in the
// header.
func (f *Fdt) BootCPUID() uint32 { return f.head.BootCPUID }

// ReserveEntry is one record of the memory reservation block: a physical
// address range the blob asks the kernel to leave untouched.
type ReserveEntry struct {
	Address uint64
	Size    uint64
}

// ReserveEntries returns the memory reservation block entries, excluding
// the terminating zero entry.
func (f *Fdt) ReserveEntries() ([]ReserveEntry, error) {
	raw, err := format.ReserveEntries(f.data, int(f.head.MemRsvmapOffset), int(f.head.TotalSize))
	if err != nil {
		return nil, fmt.Errorf("fdt: %w", err)
	}
	entries := make([]ReserveEntry, len(raw))
	for i, e := range raw {
		entries[i] = ReserveEntry{Address: e.Address, Size: e.Size}
	}
	return entries, nil
}

// structBlock returns the structure block span of the blob.
func (f *Fdt) structBlock() []byte {
	return f.data[f.head.StructOffset : f.head.StructOffset+f.head.StructSize]
}

// stringsBlock returns the strings block span of the blob.
func (f *Fdt) stringsBlock() []byte {
	return f.data[f.head.StringsOffset : f.head.StringsOffset+f.head.StringsSize]
}
