package fdt

import (
	"fmt"

	"github.com/joshuapare/fdtkit/internal/format"
	"github.com/joshuapare/fdtkit/pkg/types"
)

// Phandle is a validated node identifier used by phandle-reference
// properties. Zero and the reserved maximum are never valid.
type Phandle uint32

// NewPhandle validates v as a phandle. Fails with the bad-phandle kind when
// v is zero or above the reserved maximum.
func NewPhandle(v uint32) (Phandle, error) {
	if v == 0 || v > format.MaxPhandle {
		return 0, fmt.Errorf("fdt: phandle %#x: %w", v, types.ErrBadPhandle)
	}
	return Phandle(v), nil
}

// NodeByPhandle returns the node declaring the given phandle. The whole
// tree is scanned in structure-block order; the not-found kind is reported
// when no node declares it (a dangling reference).
func (f *Fdt) NodeByPhandle(ph Phandle) (Node, error) {
	sb := f.structBlock()
	root, err := f.RootOffset()
	if err != nil {
		return Node{}, err
	}
	cur := int(root)
	for {
		node, nerr := f.NodeAt(Offset(cur))
		if nerr != nil {
			return Node{}, nerr
		}
		declared, perr := node.Phandle()
		if perr == nil && declared == ph {
			return node, nil
		}
		if perr != nil && !isNoPhandle(perr) && !isBadPhandle(perr) {
			return Node{}, perr
		}

		cur, nerr = format.NextNodeAny(sb, cur)
		if isNotFound(nerr) {
			return Node{}, fmt.Errorf("fdt: phandle %#x: %w", ph, types.ErrNotFound)
		}
		if nerr != nil {
			return Node{}, fmt.Errorf("fdt: %w", nerr)
		}
	}
}
