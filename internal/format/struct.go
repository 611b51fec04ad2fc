package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/fdtkit/pkg/types"
)

// Structure block token scanning. All offsets here are relative to the start
// of the structure block slice, which the fdt package carves out of the blob
// once at construction. Every read is bounds-checked against that slice, so
// a malformed blob can never drive a scan past the declared block size.

// RawProp is a decoded property token: the strings-block offset of its name
// and its payload, aliased into the structure block (zero-copy).
type RawProp struct {
	NameOff uint32
	Data    []byte
}

// TokenAt reads the token word at off.
func TokenAt(sb []byte, off int) (uint32, error) {
	if off < 0 || !Aligned4(off) {
		return 0, fmt.Errorf("struct: token at %d: %w", off, types.ErrAlignment)
	}
	if off+TokenSize > len(sb) {
		return 0, fmt.Errorf("struct: token at %d: %w", off, types.ErrTruncated)
	}
	return ReadU32(sb, off), nil
}

// NextTag decodes the token at off and returns its tag together with the
// offset of the token that follows it. For TokenBeginNode the name is
// skipped; for TokenProp the header and payload are skipped. The returned
// offset is always token-aligned.
func NextTag(sb []byte, off int) (tag uint32, next int, err error) {
	tag, err = TokenAt(sb, off)
	if err != nil {
		return 0, 0, err
	}
	next = off + TokenSize

	switch tag {
	case TokenBeginNode:
		// NUL-terminated name, padded to the next token boundary.
		nul := bytes.IndexByte(sb[next:], 0)
		if nul < 0 {
			return 0, 0, fmt.Errorf("struct: unterminated node name at %d: %w", next, types.ErrTruncated)
		}
		next = Align4(next + nul + 1)
	case TokenProp:
		if next+PropHeaderSize > len(sb) {
			return 0, 0, fmt.Errorf("struct: property header at %d: %w", next, types.ErrTruncated)
		}
		dataLen := int(ReadU32(sb, next))
		next += PropHeaderSize
		if dataLen < 0 || next+dataLen > len(sb) {
			return 0, 0, fmt.Errorf("struct: property data at %d (len %d): %w", next, dataLen, types.ErrTruncated)
		}
		next = Align4(next + dataLen)
	case TokenEndNode, TokenNop, TokenEnd:
		// Bare tokens.
	default:
		return 0, 0, fmt.Errorf("struct: unknown token 0x%x at %d: %w", tag, off, types.ErrBadStructure)
	}

	if next > len(sb) {
		return 0, 0, fmt.Errorf("struct: token at %d runs past block end: %w", off, types.ErrTruncated)
	}
	return tag, next, nil
}

// CheckNode verifies that off points at a node-begin token.
func CheckNode(sb []byte, off int) error {
	tag, err := TokenAt(sb, off)
	if err != nil {
		return err
	}
	if tag != TokenBeginNode {
		return fmt.Errorf("struct: token 0x%x at %d is not a node: %w", tag, off, types.ErrBadOffset)
	}
	return nil
}

// CheckProp verifies that off points at a property token.
func CheckProp(sb []byte, off int) error {
	tag, err := TokenAt(sb, off)
	if err != nil {
		return err
	}
	if tag != TokenProp {
		return fmt.Errorf("struct: token 0x%x at %d is not a property: %w", tag, off, types.ErrBadOffset)
	}
	return nil
}

// RootOffset returns the offset of the root node's begin token, skipping any
// no-op padding at the start of the block.
func RootOffset(sb []byte) (int, error) {
	off := 0
	for {
		tag, next, err := NextTag(sb, off)
		if err != nil {
			return 0, err
		}
		switch tag {
		case TokenNop:
			off = next
		case TokenBeginNode:
			return off, nil
		default:
			return 0, fmt.Errorf("struct: block does not start with a node: %w", types.ErrBadStructure)
		}
	}
}

// NodeName returns the name of the node whose begin token is at off. The
// returned bytes alias the structure block and exclude the NUL terminator.
func NodeName(sb []byte, off int) ([]byte, error) {
	if err := CheckNode(sb, off); err != nil {
		return nil, err
	}
	start := off + TokenSize
	nul := bytes.IndexByte(sb[start:], 0)
	if nul < 0 {
		return nil, fmt.Errorf("struct: unterminated node name at %d: %w", start, types.ErrTruncated)
	}
	return sb[start : start+nul], nil
}

// PropAt decodes the property token at off.
func PropAt(sb []byte, off int) (RawProp, error) {
	if err := CheckProp(sb, off); err != nil {
		return RawProp{}, err
	}
	hdr := off + TokenSize
	if hdr+PropHeaderSize > len(sb) {
		return RawProp{}, fmt.Errorf("struct: property header at %d: %w", hdr, types.ErrTruncated)
	}
	dataLen := int(ReadU32(sb, hdr))
	nameOff := ReadU32(sb, hdr+4)
	start := hdr + PropHeaderSize
	if dataLen < 0 || start+dataLen > len(sb) {
		return RawProp{}, fmt.Errorf("struct: property data at %d (len %d): %w", start, dataLen, types.ErrTruncated)
	}
	return RawProp{NameOff: nameOff, Data: sb[start : start+dataLen]}, nil
}

// FirstSubnode returns the offset of the first child of the node at off.
// A childless node reports not-found, which callers treat as the iteration
// termination signal.
func FirstSubnode(sb []byte, off int) (int, error) {
	if err := CheckNode(sb, off); err != nil {
		return 0, err
	}
	depth := 0
	for cur := off; ; {
		tag, next, err := NextTag(sb, cur)
		if err != nil {
			return 0, err
		}
		switch tag {
		case TokenBeginNode:
			if depth == 1 {
				return cur, nil
			}
			depth++
		case TokenEndNode:
			depth--
			if depth <= 0 {
				return 0, fmt.Errorf("struct: node at %d has no subnodes: %w", off, types.ErrNotFound)
			}
		case TokenEnd:
			return 0, fmt.Errorf("struct: block ended inside node at %d: %w", off, types.ErrBadStructure)
		}
		cur = next
	}
}

// NextSubnode returns the offset of the next node at the same nesting depth
// as the node at off, skipping over any nested descendants. Not-found marks
// the end of the sibling list.
func NextSubnode(sb []byte, off int) (int, error) {
	if err := CheckNode(sb, off); err != nil {
		return 0, err
	}
	depth := 0
	for cur := off; ; {
		tag, next, err := NextTag(sb, cur)
		if err != nil {
			return 0, err
		}
		switch tag {
		case TokenBeginNode:
			if depth == 0 && cur != off {
				return cur, nil
			}
			depth++
		case TokenEndNode:
			depth--
			if depth < 0 {
				// Parent closed before another sibling appeared.
				return 0, fmt.Errorf("struct: no sibling after node at %d: %w", off, types.ErrNotFound)
			}
		case TokenEnd:
			if depth > 0 {
				return 0, fmt.Errorf("struct: block ended inside node at %d: %w", off, types.ErrBadStructure)
			}
			// The node at off was the root; it has no siblings.
			return 0, fmt.Errorf("struct: no sibling after node at %d: %w", off, types.ErrNotFound)
		}
		cur = next
	}
}

// NextNodeAny returns the offset of the next node-begin token after the node
// at off in token order, regardless of depth. It drives whole-tree scans
// such as phandle lookup.
func NextNodeAny(sb []byte, off int) (int, error) {
	if err := CheckNode(sb, off); err != nil {
		return 0, err
	}
	_, cur, err := NextTag(sb, off)
	if err != nil {
		return 0, err
	}
	for {
		tag, next, err := NextTag(sb, cur)
		if err != nil {
			return 0, err
		}
		switch tag {
		case TokenBeginNode:
			return cur, nil
		case TokenEnd:
			return 0, fmt.Errorf("struct: no node after %d: %w", off, types.ErrNotFound)
		}
		cur = next
	}
}

// FirstProperty returns the offset of the first property token of the node
// at off. Properties precede any subnodes, so the scan stops at the first
// node-begin or node-end token.
func FirstProperty(sb []byte, off int) (int, error) {
	if err := CheckNode(sb, off); err != nil {
		return 0, err
	}
	_, cur, err := NextTag(sb, off)
	if err != nil {
		return 0, err
	}
	return scanToProperty(sb, cur)
}

// NextProperty returns the offset of the property token following the
// property at off within the same node.
func NextProperty(sb []byte, off int) (int, error) {
	if err := CheckProp(sb, off); err != nil {
		return 0, err
	}
	_, cur, err := NextTag(sb, off)
	if err != nil {
		return 0, err
	}
	return scanToProperty(sb, cur)
}

func scanToProperty(sb []byte, cur int) (int, error) {
	for {
		tag, next, err := NextTag(sb, cur)
		if err != nil {
			return 0, err
		}
		switch tag {
		case TokenProp:
			return cur, nil
		case TokenNop:
			cur = next
		case TokenBeginNode, TokenEndNode:
			return 0, fmt.Errorf("struct: no property before %d: %w", cur, types.ErrNotFound)
		default:
			return 0, fmt.Errorf("struct: block ended inside node: %w", types.ErrBadStructure)
		}
	}
}

// StringAt returns the NUL-terminated string at off within the strings
// block, excluding the terminator.
func StringAt(strs []byte, off int) ([]byte, error) {
	if off < 0 || off >= len(strs) {
		return nil, fmt.Errorf("strings: offset %d outside block (len %d): %w", off, len(strs), types.ErrBadOffset)
	}
	nul := bytes.IndexByte(strs[off:], 0)
	if nul < 0 {
		return nil, fmt.Errorf("strings: unterminated string at %d: %w", off, types.ErrTruncated)
	}
	return strs[off : off+nul], nil
}
