package fdt

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/fdtkit/internal/format"
	"github.com/joshuapare/fdtkit/pkg/types"
)

// Property is a lightweight handle to one property: a non-owning view of
// its name and raw payload inside the blob. The payload's meaning depends
// on convention (the format itself is untyped); accessors decode specific
// interpretations and fail rather than assume.
//
// A Property obtained through structure-block iteration carries its token
// offset; one obtained by name lookup does not.
type Property struct {
	fdt    *Fdt
	off    Offset
	hasOff bool
	name   []byte
	data   []byte
}

// Name returns the property's name.
func (p Property) Name() string { return string(p.name) }

// Data returns the raw payload. The slice aliases the blob and must be
// treated as read-only.
func (p Property) Data() []byte { return p.data }

// Len returns the payload length in bytes.
func (p Property) Len() int { return len(p.data) }

// Offset returns the property's structure-block offset and whether one is
// known for this handle.
func (p Property) Offset() (Offset, bool) { return p.off, p.hasOff }

// DataString decodes the payload as a single NUL-terminated string. It
// fails with the bad-value kind when the payload is empty, lacks the
// terminator, or carries bytes past it. Callers are expected to invoke this
// only on properties known by convention to be string-typed; the decode
// itself still verifies termination rather than trusting the caller.
func (p Property) DataString() (string, error) {
	if len(p.data) == 0 || p.data[len(p.data)-1] != 0 {
		return "", fmt.Errorf("fdt: property %q is not a terminated string: %w", p.Name(), types.ErrBadValue)
	}
	s := p.data[:len(p.data)-1]
	if bytes.IndexByte(s, 0) >= 0 {
		return "", fmt.Errorf("fdt: property %q holds more than one string: %w", p.Name(), types.ErrBadValue)
	}
	return string(s), nil
}

// DataStrings decodes the payload as a stringlist: one or more
// NUL-terminated strings packed back to back, as used by "compatible".
func (p Property) DataStrings() ([]string, error) {
	if len(p.data) == 0 || p.data[len(p.data)-1] != 0 {
		return nil, fmt.Errorf("fdt: property %q is not a stringlist: %w", p.Name(), types.ErrBadValue)
	}
	raw := bytes.Split(p.data[:len(p.data)-1], []byte{0})
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = string(s)
	}
	return out, nil
}

// CellReader reads a property's payload as a sequence of 32-bit big-endian
// cells, advancing an internal cursor. It never mutates the underlying
// data; restart by calling Reset or constructing a fresh reader.
type CellReader struct {
	data []byte
	pos  int
}

// NewCellReader returns a reader positioned at the start of prop's payload.
func NewCellReader(prop Property) *CellReader {
	return &CellReader{data: prop.data}
}

// ReadCell returns the next cell and advances the cursor. The second return
// value is false when fewer than a full cell remains; this is the universal
// end-of-cells signal, not an error.
func (r *CellReader) ReadCell() (uint32, bool) {
	if len(r.data)-r.pos < format.CellSize {
		return 0, false
	}
	v := format.ReadU32(r.data, r.pos)
	r.pos += format.CellSize
	return v, true
}

// ReadCells reads n consecutive cells. It returns false without advancing
// past the available data when fewer than n remain.
func (r *CellReader) ReadCells(n int) ([]uint32, bool) {
	if n < 0 || r.Remaining() < n {
		return nil, false
	}
	out := make([]uint32, n)
	for i := range out {
		out[i], _ = r.ReadCell()
	}
	return out, true
}

// Remaining returns the number of whole cells left before the cursor
// reaches the end of the payload.
func (r *CellReader) Remaining() int {
	return (len(r.data) - r.pos) / format.CellSize
}

// Reset moves the cursor back to the start of the payload.
func (r *CellReader) Reset() { r.pos = 0 }
