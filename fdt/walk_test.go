package fdt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/fdtkit/pkg/types"
)

func TestFirstNextSubnode_VisitsEachChildOnce(t *testing.T) {
	f := buildTestTree(t)
	root, err := f.RootOffset()
	require.NoError(t, err)

	var names []string
	off, err := f.FirstSubnodeOffset(root)
	for ; err == nil; off, err = f.NextSubnodeOffset(off) {
		node, nerr := f.NodeAt(off)
		require.NoError(t, nerr)
		names = append(names, node.Name())
	}
	require.True(t, errors.Is(err, types.ErrNotFound), "iteration must end with not-found, got: %v", err)

	assert.Equal(t, []string{
		"clock-controller@100",
		"clock-controller@200",
		"regulator",
		"serial@10000000",
		"soc",
		"chosen",
		"aliases",
		"__symbols__",
	}, names)
}

func TestNextSubnode_SkipsNestedDescendants(t *testing.T) {
	f := buildTestTree(t)

	// soc's children are a and c; a's child b must not appear between them.
	soc, err := f.PathOffset("/soc")
	require.NoError(t, err)

	first, err := f.FirstSubnodeOffset(soc)
	require.NoError(t, err)
	a, err := f.NodeAt(first)
	require.NoError(t, err)
	assert.Equal(t, "a", a.Name())

	second, err := f.NextSubnodeOffset(first)
	require.NoError(t, err)
	c, err := f.NodeAt(second)
	require.NoError(t, err)
	assert.Equal(t, "c", c.Name())

	_, err = f.NextSubnodeOffset(second)
	require.True(t, errors.Is(err, types.ErrNotFound))
}

func TestNextSubnode_RootHasNoSibling(t *testing.T) {
	f := buildTestTree(t)
	root, err := f.RootOffset()
	require.NoError(t, err)

	_, err = f.NextSubnodeOffset(root)
	require.True(t, errors.Is(err, types.ErrNotFound))
}

func TestFirstSubnode_Childless(t *testing.T) {
	f := buildTestTree(t)
	off, err := f.PathOffset("/chosen")
	require.NoError(t, err)

	// chosen has a property but no subnodes.
	_, err = f.FirstSubnodeOffset(off)
	require.True(t, errors.Is(err, types.ErrNotFound))
}

func TestPropertyOffsets_TraverseInOrder(t *testing.T) {
	f := buildTestTree(t)
	serial, err := f.PathOffset("/serial@10000000")
	require.NoError(t, err)

	var names []string
	off, err := f.FirstPropertyOffset(serial)
	for ; err == nil; off, err = f.NextPropertyOffset(off) {
		prop, perr := f.PropertyAt(off)
		require.NoError(t, perr)
		names = append(names, prop.Name())
	}
	require.True(t, errors.Is(err, types.ErrNotFound))
	assert.Equal(t, []string{"clocks", "vcc-supply", "status"}, names)
}

func TestPathOffset_Root(t *testing.T) {
	f := buildTestTree(t)
	root, err := f.RootOffset()
	require.NoError(t, err)

	off, err := f.PathOffset("/")
	require.NoError(t, err)
	assert.Equal(t, root, off)
}

func TestPathOffset_MissingLeadingSeparator(t *testing.T) {
	f := buildTestTree(t)
	_, err := f.PathOffset("soc")
	require.True(t, errors.Is(err, types.ErrBadPath), "expected bad-path kind, got: %v", err)

	_, err = f.PathOffset("")
	require.True(t, errors.Is(err, types.ErrBadPath))
}

func TestPathOffset_MissingSegment(t *testing.T) {
	f := buildTestTree(t)
	_, err := f.PathOffset("/missing/node")
	require.True(t, errors.Is(err, types.ErrNotFound), "expected not-found kind, got: %v", err)
}

func TestPathOffset_UnitAddressMatching(t *testing.T) {
	f := buildTestTree(t)

	exact, err := f.PathOffset("/serial@10000000")
	require.NoError(t, err)

	// A segment without a unit address matches the node that carries one.
	short, err := f.PathOffset("/serial")
	require.NoError(t, err)
	assert.Equal(t, exact, short)

	// A segment with an address only matches exactly.
	_, err = f.PathOffset("/serial@999")
	require.True(t, errors.Is(err, types.ErrNotFound))
}

func TestPathOffset_IgnoresEmptySegments(t *testing.T) {
	f := buildTestTree(t)
	a, err := f.PathOffset("/soc/a")
	require.NoError(t, err)

	b, err := f.PathOffset("//soc//a/")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPathRoundTrip(t *testing.T) {
	f := buildTestTree(t)

	// For every node in the tree: PathOffset(Path(n)) == Offset(n).
	var walk func(n Node)
	walk = func(n Node) {
		path, err := n.Path()
		require.NoError(t, err)

		off, err := f.PathOffset(path)
		require.NoError(t, err, "path %q", path)
		require.Equal(t, n.Offset(), off, "path %q", path)

		it := n.Subnodes()
		for child, ok := it.Next(); ok; child, ok = it.Next() {
			walk(child)
		}
		require.NoError(t, it.Err())
	}

	root, err := f.Node("/")
	require.NoError(t, err)
	walk(root)
}

func TestNodeAt_BadOffset(t *testing.T) {
	f := buildTestTree(t)
	serial, err := f.PathOffset("/serial@10000000")
	require.NoError(t, err)

	// A property offset is not a node offset.
	propOff, err := f.FirstPropertyOffset(serial)
	require.NoError(t, err)
	_, err = f.NodeAt(propOff)
	require.True(t, errors.Is(err, types.ErrBadOffset), "expected bad-offset kind, got: %v", err)

	// Unaligned offsets are rejected before any decode.
	_, err = f.NodeAt(serial + 2)
	require.True(t, errors.Is(err, types.ErrAlignment))
}

func TestHandleWrappers_AbsorbNotFound(t *testing.T) {
	f := buildTestTree(t)
	chosen, err := f.Node("/chosen")
	require.NoError(t, err)

	_, ok, err := f.FirstSubnode(chosen)
	require.NoError(t, err)
	assert.False(t, ok)

	prop, ok, err := f.FirstProperty(chosen)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bootargs", prop.Name())

	_, ok, err = f.NextProperty(prop)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextProperty_RequiresOffset(t *testing.T) {
	f := buildTestTree(t)
	chosen, err := f.Node("/chosen")
	require.NoError(t, err)

	// Name lookup yields a handle without a structure offset.
	prop, err := chosen.Property("bootargs")
	require.NoError(t, err)
	_, ok := prop.Offset()
	require.False(t, ok)

	_, _, err = f.NextProperty(prop)
	require.True(t, errors.Is(err, types.ErrBadOffset))
}
