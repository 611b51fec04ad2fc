// Package fdt provides read-only, zero-copy access to Flattened Device Tree
// (DTB) binaries.
//
// # Overview
//
// A DTB is the compact serialization of a hardware description tree that
// bootloaders hand to kernels: nodes with names and nested subnodes, each
// carrying named byte-string properties. This package decodes that binary in
// place. Nodes and properties are cheap handles into the caller's buffer; no
// parse tree is built and nothing is copied.
//
// # Key Types
//
//   - Fdt: the opened tree, wrapping a caller-provided byte slice
//   - Offset: a position in the structure block; the identity of every handle
//   - Node: a handle to one node (offset + borrowed name)
//   - Property: a handle to one property (borrowed name + raw payload)
//   - CellReader: a cursor decoding a payload as big-endian 32-bit cells
//   - PhandleLink: a phandle-reference convention entry
//
// # File Structure
//
// A DTB consists of:
//
//	[Header - 40 bytes] [memory reservation block] [structure block] [strings block]
//
// The structure block is a token stream: node-begin tokens carry an inline
// NUL-terminated name, property tokens carry a length, a strings-block name
// reference, and a raw payload. The header is validated once, at New; every
// later decode bounds-checks against the declared block sizes, so a
// malformed blob fails fast instead of driving reads out of bounds.
//
// # Opening a Tree
//
//	data, err := os.ReadFile("board.dtb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f, err := fdt.New(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	chosen, err := f.Node("/chosen")
//
// The buffer is borrowed, not copied. Handles derived from an Fdt alias it
// and must not outlive it.
//
// # Phandle References
//
// Properties such as "clocks" and "resets" embed phandles followed by a
// variable number of argument cells; how many is declared by a "#*-cells"
// property on the referenced node. Property.Links classifies a property
// against the Linux kernel's reference conventions and resolves the targets:
//
//	prop, _ := node.Property("clocks")
//	targets, isLink, err := prop.Links()
//
// Entries with invalid or dangling phandles are skipped with a warning
// through the Fdt's logger (silent by default); real trees often carry
// partially-invalid vendor data and one bad entry should not hide the rest.
//
// # Thread Safety
//
// The tree is immutable after New, so any number of goroutines may read
// concurrently. Iterator instances carry their own cursor and must not be
// advanced from two goroutines at once; construct one per traversal instead.
package fdt
