package fdt

import "fmt"

// SymbolTablePath is the conventional node mapping overlay symbol names to
// absolute node paths.
const SymbolTablePath = "/__symbols__"

// AliasesPath is the conventional node mapping short aliases to absolute
// node paths.
const AliasesPath = "/aliases"

// NodeRef names a node indirectly: either by absolute path, or by a symbol
// that must be resolved through the symbol table node.
type NodeRef struct {
	value    string
	isSymbol bool
}

// PathRef returns a NodeRef holding an absolute path.
func PathRef(path string) NodeRef { return NodeRef{value: path} }

// SymbolRef returns a NodeRef holding a symbol name.
func SymbolRef(symbol string) NodeRef { return NodeRef{value: symbol, isSymbol: true} }

// ResolveRef yields the absolute path a NodeRef names. Path references pass
// through unchanged; symbol references are looked up in the symbol table
// node, failing with the not-found kind when the table or the symbol is
// missing.
func (f *Fdt) ResolveRef(ref NodeRef) (string, error) {
	if !ref.isSymbol {
		return ref.value, nil
	}
	snode, err := f.Node(SymbolTablePath)
	if err != nil {
		return "", err
	}
	sprop, err := snode.Property(ref.value)
	if err != nil {
		return "", err
	}
	path, err := sprop.DataString()
	if err != nil {
		return "", fmt.Errorf("fdt: symbol %q: %w", ref.value, err)
	}
	return path, nil
}

// SymbolTable returns the full symbol table as a map from symbol name to
// target path. Fails with the not-found kind when the tree carries no
// symbol table node.
func (f *Fdt) SymbolTable() (map[string]string, error) {
	return f.pathTableAt(SymbolTablePath)
}

// Aliases returns the contents of the /aliases node as a map from alias to
// target path.
func (f *Fdt) Aliases() (map[string]string, error) {
	return f.pathTableAt(AliasesPath)
}

func (f *Fdt) pathTableAt(path string) (map[string]string, error) {
	node, err := f.Node(path)
	if err != nil {
		return nil, err
	}
	table := make(map[string]string)
	it := node.Properties()
	for prop, ok := it.Next(); ok; prop, ok = it.Next() {
		target, serr := prop.DataString()
		if serr != nil {
			return nil, fmt.Errorf("fdt: entry %q in %s: %w", prop.Name(), path, serr)
		}
		table[prop.Name()] = target
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// IsCompatible reports whether the node's "compatible" stringlist contains
// the given string. Absence of the property is surfaced with the not-found
// kind rather than mapped to false, so callers can distinguish "declares
// other compatibles" from "declares none".
func (n Node) IsCompatible(compatible string) (bool, error) {
	prop, err := n.Property("compatible")
	if err != nil {
		return false, err
	}
	list, err := prop.DataStrings()
	if err != nil {
		return false, err
	}
	for _, s := range list {
		if s == compatible {
			return true, nil
		}
	}
	return false, nil
}
