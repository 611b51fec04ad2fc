package fdt

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented, DTS-like rendering of the whole tree to w. It is
// a debugging aid, not a device tree source serializer: property payloads
// print as strings when they decode cleanly and as hex cells otherwise.
//
// Example:
//
//	f, _ := fdt.New(data)
//	f.Dump(os.Stdout)
func (f *Fdt) Dump(w io.Writer) error {
	root, err := f.RootOffset()
	if err != nil {
		return err
	}
	node, err := f.NodeAt(root)
	if err != nil {
		return err
	}
	return f.dumpNode(w, node, 0)
}

func (f *Fdt) dumpNode(w io.Writer, node Node, depth int) error {
	indent := strings.Repeat("\t", depth)
	name := node.Name()
	if name == "" {
		name = "/"
	}
	if _, err := fmt.Fprintf(w, "%s%s {\n", indent, name); err != nil {
		return err
	}

	props := node.Properties()
	for prop, ok := props.Next(); ok; prop, ok = props.Next() {
		if _, err := fmt.Fprintf(w, "%s\t%s%s;\n", indent, prop.Name(), formatValue(prop)); err != nil {
			return err
		}
	}
	if err := props.Err(); err != nil {
		return err
	}

	children := node.Subnodes()
	for child, ok := children.Next(); ok; child, ok = children.Next() {
		if err := f.dumpNode(w, child, depth+1); err != nil {
			return err
		}
	}
	if err := children.Err(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s};\n", indent)
	return err
}

// formatValue renders a property payload for Dump output.
func formatValue(prop Property) string {
	if prop.Len() == 0 {
		return ""
	}
	if ss, err := prop.DataStrings(); err == nil && printable(ss) {
		quoted := make([]string, len(ss))
		for i, s := range ss {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return " = " + strings.Join(quoted, ", ")
	}
	if prop.Len()%4 == 0 {
		rdr := NewCellReader(prop)
		cells := make([]string, 0, prop.Len()/4)
		for v, ok := rdr.ReadCell(); ok; v, ok = rdr.ReadCell() {
			cells = append(cells, fmt.Sprintf("0x%x", v))
		}
		return " = <" + strings.Join(cells, " ") + ">"
	}
	return fmt.Sprintf(" = [% x]", prop.Data())
}

func printable(ss []string) bool {
	for _, s := range ss {
		if s == "" {
			return false
		}
		for _, r := range s {
			if r < 0x20 || r > 0x7e {
				return false
			}
		}
	}
	return true
}
