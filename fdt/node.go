package fdt

import (
	"fmt"
	"strings"

	"github.com/joshuapare/fdtkit/internal/format"
	"github.com/joshuapare/fdtkit/pkg/types"
)

// Node is a lightweight handle to one node of the tree: an offset plus a
// non-owning view of the node's name inside the blob. Nodes are constructed
// on demand and are cheap to reconstruct; equality is defined purely on
// offset identity, valid only within the Fdt that produced the handle.
type Node struct {
	fdt  *Fdt
	off  Offset
	name []byte
}

// Fdt returns the tree this node belongs to.
func (n Node) Fdt() *Fdt { return n.fdt }

// Offset returns the node's position in the structure block.
func (n Node) Offset() Offset { return n.off }

// Name returns the node's name, including any unit address. The root node's
// name is the empty string.
func (n Node) Name() string { return string(n.name) }

// Equal reports whether two handles name the same node of the same tree.
func (n Node) Equal(other Node) bool {
	return n.fdt == other.fdt && n.off == other.off
}

// Path reconstructs the node's absolute slash-delimited path by rescanning
// the structure block from the root. The result is bounded to the maximum
// path length; deeper trees fail with the no-space kind.
//
// Path and PathOffset are inverses: PathOffset(n.Path()) yields n.Offset()
// for every well-formed tree.
func (n Node) Path() (string, error) {
	sb := n.fdt.structBlock()
	root, err := n.fdt.RootOffset()
	if err != nil {
		return "", err
	}
	if n.off == root {
		return "/", nil
	}

	// Walk the whole structure block keeping the chain of ancestor names;
	// when the scan reaches the target offset the chain is the path.
	var stack []string
	for cur := int(root); ; {
		tag, next, err := format.NextTag(sb, cur)
		if err != nil {
			return "", fmt.Errorf("fdt: %w", err)
		}
		switch tag {
		case format.TokenBeginNode:
			if cur != int(root) {
				name, nerr := format.NodeName(sb, cur)
				if nerr != nil {
					return "", fmt.Errorf("fdt: %w", nerr)
				}
				if Offset(cur) == n.off {
					path := "/" + strings.Join(append(stack, string(name)), "/")
					if len(path) > format.MaxPathLen {
						return "", fmt.Errorf("fdt: path for node at %d: %w", n.off, types.ErrNoSpace)
					}
					return path, nil
				}
				stack = append(stack, string(name))
			}
		case format.TokenEndNode:
			if len(stack) == 0 {
				// Root closed without reaching the offset.
				return "", fmt.Errorf("fdt: node at %d: %w", n.off, types.ErrBadOffset)
			}
			stack = stack[:len(stack)-1]
		case format.TokenEnd:
			return "", fmt.Errorf("fdt: node at %d: %w", n.off, types.ErrBadOffset)
		}
		cur = next
	}
}

// Property looks up a property of this node by name. Absence is reported
// with the not-found kind. The returned handle carries no structure offset;
// use the property iterator when offsets matter.
func (n Node) Property(name string) (Property, error) {
	sb := n.fdt.structBlock()
	strs := n.fdt.stringsBlock()
	cur, err := format.FirstProperty(sb, int(n.off))
	for ; err == nil; cur, err = format.NextProperty(sb, cur) {
		raw, perr := format.PropAt(sb, cur)
		if perr != nil {
			return Property{}, fmt.Errorf("fdt: %w", perr)
		}
		pname, perr := format.StringAt(strs, int(raw.NameOff))
		if perr != nil {
			return Property{}, fmt.Errorf("fdt: %w", perr)
		}
		if string(pname) == name {
			return Property{fdt: n.fdt, hasOff: false, name: pname, data: raw.Data}, nil
		}
	}
	if isNotFound(err) {
		return Property{}, fmt.Errorf("fdt: property %q on node at %d: %w", name, n.off, types.ErrNotFound)
	}
	return Property{}, fmt.Errorf("fdt: %w", err)
}

// Subnodes returns a restartable iterator over the node's immediate
// children, in structure-block order.
func (n Node) Subnodes() *NodeIter { return newNodeIter(n) }

// Properties returns a restartable iterator over the node's properties, in
// structure-block order.
func (n Node) Properties() *PropIter { return newPropIter(n) }

// Phandle returns the phandle this node declares via its "phandle" (or
// legacy "linux,phandle") property. Fails with the no-phandle kind when the
// node declares neither, and the bad-phandle kind when the declared value
// is malformed.
func (n Node) Phandle() (Phandle, error) {
	prop, err := n.Property("phandle")
	if isNotFound(err) {
		prop, err = n.Property("linux,phandle")
	}
	if isNotFound(err) {
		return 0, fmt.Errorf("fdt: node at %d: %w", n.off, types.ErrNoPhandle)
	}
	if err != nil {
		return 0, err
	}
	if prop.Len() != 4 {
		return 0, fmt.Errorf("fdt: phandle property has %d bytes: %w", prop.Len(), types.ErrBadPhandle)
	}
	r := NewCellReader(prop)
	v, _ := r.ReadCell()
	return NewPhandle(v)
}
