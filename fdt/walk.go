package fdt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/fdtkit/internal/format"
	"github.com/joshuapare/fdtkit/pkg/types"
)

// Offset identifies a byte position within the structure block. Offsets are
// totally ordered and usable as map keys; two handles are equal iff their
// offsets are equal. An Offset is only meaningful relative to the Fdt that
// produced it and must never be compared across instances.
type Offset int

// RootOffset returns the offset of the root node's begin token.
func (f *Fdt) RootOffset() (Offset, error) {
	off, err := format.RootOffset(f.structBlock())
	if err != nil {
		return 0, fmt.Errorf("fdt: %w", err)
	}
	return Offset(off), nil
}

// FirstSubnodeOffset returns the offset of the first child of the node at
// off. The not-found kind signals a childless node, which iteration treats
// as termination rather than failure.
func (f *Fdt) FirstSubnodeOffset(off Offset) (Offset, error) {
	next, err := format.FirstSubnode(f.structBlock(), int(off))
	if err != nil {
		return 0, fmt.Errorf("fdt: %w", err)
	}
	return Offset(next), nil
}

// NextSubnodeOffset returns the offset of the structurally-next node at the
// same nesting depth as the node at off, skipping nested descendants.
func (f *Fdt) NextSubnodeOffset(off Offset) (Offset, error) {
	next, err := format.NextSubnode(f.structBlock(), int(off))
	if err != nil {
		return 0, fmt.Errorf("fdt: %w", err)
	}
	return Offset(next), nil
}

// FirstPropertyOffset returns the offset of the first property token of the
// node at off.
func (f *Fdt) FirstPropertyOffset(off Offset) (Offset, error) {
	next, err := format.FirstProperty(f.structBlock(), int(off))
	if err != nil {
		return 0, fmt.Errorf("fdt: %w", err)
	}
	return Offset(next), nil
}

// NextPropertyOffset returns the offset of the property token following the
// property at off within the same node.
func (f *Fdt) NextPropertyOffset(off Offset) (Offset, error) {
	next, err := format.NextProperty(f.structBlock(), int(off))
	if err != nil {
		return 0, fmt.Errorf("fdt: %w", err)
	}
	return Offset(next), nil
}

// NodeAt decodes the node-begin token at off into a Node handle. Fails with
// the bad-offset kind when off does not point at a node-begin token.
func (f *Fdt) NodeAt(off Offset) (Node, error) {
	name, err := format.NodeName(f.structBlock(), int(off))
	if err != nil {
		return Node{}, fmt.Errorf("fdt: %w", err)
	}
	return Node{fdt: f, off: off, name: name}, nil
}

// PropertyAt decodes the property token at off into a Property handle.
func (f *Fdt) PropertyAt(off Offset) (Property, error) {
	raw, err := format.PropAt(f.structBlock(), int(off))
	if err != nil {
		return Property{}, fmt.Errorf("fdt: %w", err)
	}
	name, err := format.StringAt(f.stringsBlock(), int(raw.NameOff))
	if err != nil {
		return Property{}, fmt.Errorf("fdt: %w", err)
	}
	return Property{fdt: f, off: off, hasOff: true, name: name, data: raw.Data}, nil
}

// PathOffset resolves an absolute slash-delimited path to the offset of the
// named node. A path without a leading separator fails with the bad-path
// kind; a missing segment fails with not-found. "/" resolves to the root.
//
// Each segment may carry a unit address ("serial@1000"). A segment without
// one also matches a uniquely-named child whose name before '@' equals the
// segment, per device tree convention.
func (f *Fdt) PathOffset(path string) (Offset, error) {
	if path == "" || path[0] != '/' {
		return 0, fmt.Errorf("fdt: path %q: %w", path, types.ErrBadPath)
	}
	cur, err := f.RootOffset()
	if err != nil {
		return 0, err
	}
	for _, seg := range strings.Split(path[1:], "/") {
		if seg == "" {
			continue
		}
		cur, err = f.subnodeOffsetByName(cur, seg)
		if err != nil {
			return 0, err
		}
	}
	return cur, nil
}

// Node returns the Node handle for an absolute path.
//
// Example:
//
//	uart, err := f.Node("/soc/serial@10000000")
func (f *Fdt) Node(path string) (Node, error) {
	off, err := f.PathOffset(path)
	if err != nil {
		return Node{}, err
	}
	return f.NodeAt(off)
}

// subnodeOffsetByName finds the child of the node at parent whose name
// matches seg. Children are scanned in structure-block order; the first
// match wins.
func (f *Fdt) subnodeOffsetByName(parent Offset, seg string) (Offset, error) {
	sb := f.structBlock()
	cur, err := format.FirstSubnode(sb, int(parent))
	for ; err == nil; cur, err = format.NextSubnode(sb, cur) {
		name, nerr := format.NodeName(sb, cur)
		if nerr != nil {
			return 0, fmt.Errorf("fdt: %w", nerr)
		}
		if nodeNameEq(string(name), seg) {
			return Offset(cur), nil
		}
	}
	if errors.Is(err, types.ErrNotFound) {
		return 0, fmt.Errorf("fdt: path segment %q: %w", seg, types.ErrNotFound)
	}
	return 0, fmt.Errorf("fdt: %w", err)
}

// nodeNameEq reports whether a node name matches a path segment. The match
// is exact, or address-insensitive when the segment carries no unit address
// but the node name does.
func nodeNameEq(name, seg string) bool {
	if name == seg {
		return true
	}
	if strings.ContainsRune(seg, '@') {
		return false
	}
	at := strings.IndexByte(name, '@')
	return at >= 0 && name[:at] == seg
}

// FirstSubnode returns the first child of node. The second return value is
// false when node has no children.
func (f *Fdt) FirstSubnode(node Node) (Node, bool, error) {
	return f.nodeStep(f.FirstSubnodeOffset(node.off))
}

// NextSubnode returns the sibling following node. The second return value
// is false when node is the last child of its parent.
func (f *Fdt) NextSubnode(node Node) (Node, bool, error) {
	return f.nodeStep(f.NextSubnodeOffset(node.off))
}

func (f *Fdt) nodeStep(off Offset, err error) (Node, bool, error) {
	if err != nil {
		if isNotFound(err) {
			return Node{}, false, nil
		}
		return Node{}, false, err
	}
	n, err := f.NodeAt(off)
	if err != nil {
		return Node{}, false, err
	}
	return n, true, nil
}

// FirstProperty returns the first property of node. The second return value
// is false when node has no properties.
func (f *Fdt) FirstProperty(node Node) (Property, bool, error) {
	return f.propStep(f.FirstPropertyOffset(node.off))
}

// NextProperty returns the property following prop within the same node.
// Calling it on a property obtained by name lookup (which carries no
// offset) fails with the bad-offset kind.
func (f *Fdt) NextProperty(prop Property) (Property, bool, error) {
	off, ok := prop.Offset()
	if !ok {
		return Property{}, false, fmt.Errorf("fdt: property %q has no structure offset: %w", prop.Name(), types.ErrBadOffset)
	}
	return f.propStep(f.NextPropertyOffset(off))
}

func (f *Fdt) propStep(off Offset, err error) (Property, bool, error) {
	if err != nil {
		if isNotFound(err) {
			return Property{}, false, nil
		}
		return Property{}, false, err
	}
	p, err := f.PropertyAt(off)
	if err != nil {
		return Property{}, false, err
	}
	return p, true, nil
}

// isNotFound reports whether err carries the not-found kind, the universal
// iteration termination signal.
func isNotFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}

func isNoPhandle(err error) bool {
	return errors.Is(err, types.ErrNoPhandle)
}

func isBadPhandle(err error) bool {
	return errors.Is(err, types.ErrBadPhandle)
}
