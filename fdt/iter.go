package fdt

// Lazy, finite, restartable sequences over a node's children and
// properties. Each iterator caches the next candidate handle and advances
// by one first/next call per item, so traversal cost stays local to the
// node being walked.
//
// An iterator instance carries its own cursor and must not be advanced from
// two goroutines at once. Independent traversals of the same node are cheap:
// construct one iterator per goroutine.

// NodeIter iterates over the immediate children of a node.
//
// Example:
//
//	it := node.Subnodes()
//	for child, ok := it.Next(); ok; child, ok = it.Next() {
//	    fmt.Println(child.Name())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
type NodeIter struct {
	fdt     *Fdt
	next    Node
	hasNext bool
	err     error
}

func newNodeIter(parent Node) *NodeIter {
	it := &NodeIter{fdt: parent.fdt}
	it.next, it.hasNext, it.err = parent.fdt.FirstSubnode(parent)
	return it
}

// Next returns the next child. The second return value is false when the
// sequence is exhausted or a structural error occurred; check Err to tell
// the two apart.
func (it *NodeIter) Next() (Node, bool) {
	if it.err != nil || !it.hasNext {
		return Node{}, false
	}
	current := it.next
	it.next, it.hasNext, it.err = it.fdt.NextSubnode(current)
	return current, true
}

// Err returns the first structural error encountered while advancing, or
// nil when the iteration ended by exhausting the sequence.
func (it *NodeIter) Err() error { return it.err }

// PropIter iterates over the properties of a node.
type PropIter struct {
	fdt     *Fdt
	next    Property
	hasNext bool
	err     error
}

func newPropIter(parent Node) *PropIter {
	it := &PropIter{fdt: parent.fdt}
	it.next, it.hasNext, it.err = parent.fdt.FirstProperty(parent)
	return it
}

// Next returns the next property. The second return value is false when the
// sequence is exhausted or a structural error occurred; check Err to tell
// the two apart.
func (it *PropIter) Next() (Property, bool) {
	if it.err != nil || !it.hasNext {
		return Property{}, false
	}
	current := it.next
	it.next, it.hasNext, it.err = it.fdt.NextProperty(current)
	return current, true
}

// Err returns the first structural error encountered while advancing, or
// nil when the iteration ended by exhausting the sequence.
func (it *PropIter) Err() error { return it.err }
