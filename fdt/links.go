package fdt

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/joshuapare/fdtkit/pkg/types"
)

// PhandleLink describes one phandle-reference convention: a property name
// (or name suffix) whose value is a sequence of {phandle, argument cells}
// entries, paired with the name of the "#*-cells" property the *referenced*
// node uses to declare how many argument cells follow each phandle.
// An empty CellsProp means entries carry no argument cells.
//
// These conventions are not part of the device tree specification itself;
// they follow the Linux kernel's parsing rules (drivers/of/property.c).
type PhandleLink struct {
	Name      string
	CellsProp string
}

// linuxSimpleLinks lists properties matched by exact name.
var linuxSimpleLinks = []PhandleLink{
	{Name: "clocks", CellsProp: "#clock-cells"},
	{Name: "interconnects", CellsProp: "#interconnect-cells"},
	{Name: "iommus", CellsProp: "#iommu-cells"},
	{Name: "mboxes", CellsProp: "#mbox-cells"},
	{Name: "io-channels", CellsProp: "#io-channel-cells"},
	{Name: "io-backends", CellsProp: "#io-backend-cells"},
	{Name: "dmas", CellsProp: "#dma-cells"},
	{Name: "power-domains", CellsProp: "#power-domain-cells"},
	{Name: "hwlocks", CellsProp: "#hwlock-cells"},
	{Name: "extcon", CellsProp: ""},
	{Name: "nvmem-cells", CellsProp: "#nvmem-cell-cells"},
	{Name: "phys", CellsProp: "#phy-cells"},
	{Name: "wakeup-parent", CellsProp: ""},
	{Name: "pinctrl-0", CellsProp: ""},
	{Name: "pinctrl-1", CellsProp: ""},
	{Name: "pinctrl-2", CellsProp: ""},
	{Name: "pinctrl-3", CellsProp: ""},
	{Name: "pinctrl-4", CellsProp: ""},
	{Name: "pinctrl-5", CellsProp: ""},
	{Name: "pinctrl-6", CellsProp: ""},
	{Name: "pinctrl-7", CellsProp: ""},
	{Name: "pinctrl-8", CellsProp: ""},
	{Name: "pwms", CellsProp: "#pwm-cells"},
	{Name: "resets", CellsProp: "#reset-cells"},
	{Name: "leds", CellsProp: ""},
	{Name: "backlight", CellsProp: ""},
	{Name: "panel", CellsProp: ""},
	{Name: "msi-parent", CellsProp: "#msi-cells"},
	{Name: "post-init-providers", CellsProp: ""},
	{Name: "access-controllers", CellsProp: "#access-controller-cells"},
	{Name: "pses", CellsProp: "#pse-cells"},
	{Name: "power-supplies", CellsProp: ""},
}

// linuxSuffixLinks lists properties matched by name suffix. Order is
// significant: the first textual match wins, not the longest.
var linuxSuffixLinks = []PhandleLink{
	{Name: "-supply", CellsProp: ""},
	{Name: "-gpio", CellsProp: "#gpio-cells"},
}

// link classifies a property name against the registered conventions.
// Exact-name entries take precedence over suffix entries.
func (f *Fdt) link(name string) (PhandleLink, bool) {
	if l, ok := f.linksSimple[name]; ok {
		return l, true
	}
	for _, l := range f.linksSuffix {
		if strings.HasSuffix(name, l.Name) {
			return l, true
		}
	}
	return PhandleLink{}, false
}

// Links resolves the property's value as a phandle array and returns the
// referenced nodes in order. The second return value is false when the
// property's name matches no known convention: "not a link property" is
// distinct from a link property that resolves to no targets.
//
// Per-entry problems do not abort the whole property. An invalid phandle
// value, a dangling reference, or a target missing its "#*-cells" property
// is logged as a warning through the Fdt's logger and the entry is skipped;
// the remainder of the array is still decoded. Real-world trees routinely
// carry partially-invalid vendor reference data, and one bad entry should
// not hide the valid ones.
func (p Property) Links() ([]Node, bool, error) {
	conv, ok := p.fdt.link(p.Name())
	if !ok {
		return nil, false, nil
	}

	log := p.fdt.logger
	targets := []Node{}
	rdr := NewCellReader(p)
	for {
		raw, more := rdr.ReadCell()
		if !more {
			return targets, true, nil
		}

		ph, err := NewPhandle(raw)
		if err != nil {
			log.Warn("skipping invalid phandle in reference property",
				zap.String("property", p.Name()),
				zap.Uint32("phandle", raw))
			continue
		}

		target, err := p.fdt.NodeByPhandle(ph)
		if err != nil {
			if !isNotFound(err) {
				return nil, true, err
			}
			// The argument-cell count lives on the target, so with no
			// target the entry's width is unknowable; do not skip cells.
			log.Warn("skipping dangling phandle in reference property",
				zap.String("property", p.Name()),
				zap.Uint32("phandle", raw))
			continue
		}

		cells, err := argumentCells(target, conv, log)
		if err != nil {
			return nil, true, err
		}
		// Discard the argument cells; a short trailing entry simply
		// exhausts the reader and the loop ends on the next read.
		for i := 0; i < cells; i++ {
			if _, more := rdr.ReadCell(); !more {
				break
			}
		}
		targets = append(targets, target)
	}
}

// argumentCells returns the number of argument cells following a phandle
// that references target, per the convention entry. A target lacking the
// cells-count property is downgraded to zero cells with a warning; a target
// whose cells-count property exists but holds less than one cell is
// malformed and fails the resolution.
func argumentCells(target Node, conv PhandleLink, log *zap.Logger) (int, error) {
	if conv.CellsProp == "" {
		return 0, nil
	}
	prop, err := target.Property(conv.CellsProp)
	if err != nil {
		if !isNotFound(err) {
			return 0, err
		}
		path, perr := target.Path()
		if perr != nil {
			path = "<unknown>"
		}
		log.Warn("referenced node lacks cells-count property, defaulting to 0",
			zap.String("cells_property", conv.CellsProp),
			zap.String("target", path))
		return 0, nil
	}
	count, more := NewCellReader(prop).ReadCell()
	if !more {
		return 0, fmt.Errorf("fdt: property %q holds no cell: %w", conv.CellsProp, types.ErrBadNCells)
	}
	return int(count), nil
}
