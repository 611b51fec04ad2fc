package fdt

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// dtbBuilder assembles a minimal, well-formed DTB in memory so tests never
// depend on binary fixture files. Nodes and properties are emitted in call
// order, which is also the structure-block order the library must preserve.
type dtbBuilder struct {
	structBuf []byte
	strs      []byte
	strOffs   map[string]uint32
	reserves  []ReserveEntry
	depth     int
}

func newDTB() *dtbBuilder {
	return &dtbBuilder{strOffs: make(map[string]uint32)}
}

func (b *dtbBuilder) token(v uint32) {
	b.structBuf = binary.BigEndian.AppendUint32(b.structBuf, v)
}

func (b *dtbBuilder) pad4() {
	for len(b.structBuf)%4 != 0 {
		b.structBuf = append(b.structBuf, 0)
	}
}

// beginNode emits a node-begin token and returns the node's structure-block
// offset, usable directly against the walker.
func (b *dtbBuilder) beginNode(name string) int {
	off := len(b.structBuf)
	b.token(0x1)
	b.structBuf = append(b.structBuf, name...)
	b.structBuf = append(b.structBuf, 0)
	b.pad4()
	b.depth++
	return off
}

func (b *dtbBuilder) endNode() {
	b.token(0x2)
	b.depth--
}

func (b *dtbBuilder) nop() {
	b.token(0x4)
}

func (b *dtbBuilder) stringOff(name string) uint32 {
	if off, ok := b.strOffs[name]; ok {
		return off
	}
	off := uint32(len(b.strs))
	b.strs = append(b.strs, name...)
	b.strs = append(b.strs, 0)
	b.strOffs[name] = off
	return off
}

// prop emits a property token and returns its structure-block offset.
func (b *dtbBuilder) prop(name string, data []byte) int {
	off := len(b.structBuf)
	b.token(0x3)
	b.token(uint32(len(data)))
	b.token(b.stringOff(name))
	b.structBuf = append(b.structBuf, data...)
	b.pad4()
	return off
}

func (b *dtbBuilder) propCells(name string, cells ...uint32) int {
	data := make([]byte, 0, len(cells)*4)
	for _, c := range cells {
		data = binary.BigEndian.AppendUint32(data, c)
	}
	return b.prop(name, data)
}

func (b *dtbBuilder) propString(name, value string) int {
	return b.prop(name, append([]byte(value), 0))
}

func (b *dtbBuilder) propStrings(name string, values ...string) int {
	var data []byte
	for _, v := range values {
		data = append(data, v...)
		data = append(data, 0)
	}
	return b.prop(name, data)
}

func (b *dtbBuilder) reserve(addr, size uint64) {
	b.reserves = append(b.reserves, ReserveEntry{Address: addr, Size: size})
}

// bytes lays out header, reservation block, structure block, and strings
// block, and returns the finished blob.
func (b *dtbBuilder) bytes(t *testing.T) []byte {
	t.Helper()
	require.Zero(t, b.depth, "unbalanced beginNode/endNode in fixture")

	structBlock := append(append([]byte{}, b.structBuf...), 0, 0, 0, 0x9) // FDT_END

	const headerSize = 40
	rsvOff := headerSize
	rsvSize := (len(b.reserves) + 1) * 16
	structOff := rsvOff + rsvSize
	stringsOff := structOff + len(structBlock)
	total := stringsOff + len(b.strs)

	blob := make([]byte, total)
	be := binary.BigEndian
	be.PutUint32(blob[0x00:], 0xd00dfeed)
	be.PutUint32(blob[0x04:], uint32(total))
	be.PutUint32(blob[0x08:], uint32(structOff))
	be.PutUint32(blob[0x0C:], uint32(stringsOff))
	be.PutUint32(blob[0x10:], uint32(rsvOff))
	be.PutUint32(blob[0x14:], 17)
	be.PutUint32(blob[0x18:], 16)
	be.PutUint32(blob[0x1C:], 0)
	be.PutUint32(blob[0x20:], uint32(len(b.strs)))
	be.PutUint32(blob[0x24:], uint32(len(structBlock)))

	off := rsvOff
	for _, r := range b.reserves {
		be.PutUint64(blob[off:], r.Address)
		be.PutUint64(blob[off+8:], r.Size)
		off += 16
	}
	// zero terminator entry already present in the zeroed blob

	copy(blob[structOff:], structBlock)
	copy(blob[stringsOff:], b.strs)
	return blob
}

// buildTestTree returns an Fdt over the fixture most tests share:
//
//	/ {
//	    model = "fdtkit,test";
//	    compatible = "fdtkit,test-board", "fdtkit,board";
//	    clock-controller@100 { phandle = <5>; #clock-cells = <0>; };
//	    clock-controller@200 { phandle = <6>; #clock-cells = <1>; };
//	    regulator { phandle = <7>; };
//	    serial@10000000 {
//	        clocks = <5 6 0x2a>;
//	        vcc-supply = <7>;
//	        status = "okay";
//	    };
//	    soc { a { b {}; }; c {}; };
//	    chosen { bootargs = "console=ttyS0"; };
//	    aliases { serial0 = "/serial@10000000"; };
//	    __symbols__ {
//	        clk1 = "/clock-controller@100";
//	        serial0 = "/serial@10000000";
//	    };
//	};
func buildTestTree(t *testing.T) *Fdt {
	t.Helper()
	f, err := New(buildTestBlob(t))
	require.NoError(t, err)
	return f
}

func buildTestBlob(t *testing.T) []byte {
	t.Helper()
	b := newDTB()
	b.beginNode("")
	b.propString("model", "fdtkit,test")
	b.propStrings("compatible", "fdtkit,test-board", "fdtkit,board")

	b.beginNode("clock-controller@100")
	b.propCells("phandle", 5)
	b.propCells("#clock-cells", 0)
	b.endNode()

	b.beginNode("clock-controller@200")
	b.propCells("phandle", 6)
	b.propCells("#clock-cells", 1)
	b.endNode()

	b.beginNode("regulator")
	b.propCells("phandle", 7)
	b.endNode()

	b.beginNode("serial@10000000")
	b.propCells("clocks", 5, 6, 0x2a)
	b.propCells("vcc-supply", 7)
	b.propString("status", "okay")
	b.endNode()

	b.beginNode("soc")
	b.beginNode("a")
	b.beginNode("b")
	b.endNode()
	b.endNode()
	b.beginNode("c")
	b.endNode()
	b.endNode()

	b.beginNode("chosen")
	b.propString("bootargs", "console=ttyS0")
	b.endNode()

	b.beginNode("aliases")
	b.propString("serial0", "/serial@10000000")
	b.endNode()

	b.beginNode("__symbols__")
	b.propString("clk1", "/clock-controller@100")
	b.propString("serial0", "/serial@10000000")
	b.endNode()

	b.endNode()
	return b.bytes(t)
}
