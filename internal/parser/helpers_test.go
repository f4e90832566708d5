package parser

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"

	"github.com/genietools/genie-dat/internal/cursor"
	"github.com/genietools/genie-dat/internal/version"
)

// le builds little-endian test fixtures.
type le struct {
	bytes.Buffer
}

func (b *le) u8(v uint8)    { b.WriteByte(v) }
func (b *le) i8(v int8)     { b.WriteByte(byte(v)) }
func (b *le) u16(v uint16)  { _ = binary.Write(&b.Buffer, binary.LittleEndian, v) }
func (b *le) i16(v int16)   { _ = binary.Write(&b.Buffer, binary.LittleEndian, v) }
func (b *le) u32(v uint32)  { _ = binary.Write(&b.Buffer, binary.LittleEndian, v) }
func (b *le) i32(v int32)   { _ = binary.Write(&b.Buffer, binary.LittleEndian, v) }
func (b *le) f32(v float32) { b.u32(math.Float32bits(v)) }
func (b *le) zeros(n int)   { b.Write(make([]byte, n)) }

func (b *le) str(s string) {
	b.u16(0x0A60)
	b.u16(uint16(len(s)))
	b.WriteString(s)
}

func (b *le) header(v version.Tag) {
	h := make([]byte, version.HeaderSize)
	copy(h, v)
	b.Write(h)
}

func fieldsOver(data []byte) *fields {
	return newFields(cursor.New(data))
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// Zero-filled widths of each unit tier at VER 8.8. Counts inside the tiers
// are zero, so every list is empty.
const (
	speedWidth      = 4
	deadFishWidth   = 41
	birdWidth       = 28
	type50Width     = 86
	projectileWidth = 9
	creatableWidth  = 117
	buildingWidth   = 98
)

// tierWidth is the number of bytes after the common block for a zero-filled
// VER 8.8 unit of type t.
func tierWidth(t uint8) int {
	if t == 10 || t == 90 {
		return 0
	}
	n := 0
	if t >= 20 {
		n += speedWidth
	}
	if t >= 30 {
		n += deadFishWidth
	}
	if t >= 40 {
		n += birdWidth
	}
	if t >= 50 {
		n += type50Width
	}
	if t == 60 {
		n += projectileWidth
	}
	if t >= 70 {
		n += creatableWidth
	}
	if t == 80 {
		n += buildingWidth
	}
	return n
}

// unitCommon writes the shared unit block.
func (b *le) unitCommon(v version.Tag, typ uint8, id int16, name string) {
	b.u8(typ)
	b.i16(id)
	b.i32(5000 + int32(id)) // language name
	b.i32(6000 + int32(id)) // language creation
	b.i16(6)                // class
	b.zeros(4 + 4 + 1)
	b.i16(45) // hit points
	b.f32(4)  // line of sight
	b.i8(0)   // garrison capacity
	b.f32(0.2)
	b.f32(0.2)
	b.f32(2)
	b.zeros(4 + 4 + 2)
	b.i16(3) // icon
	b.zeros(1 + 2)
	b.i8(1) // enabled
	b.i8(0) // disabled
	b.zeros(45)
	if v.Below(version.V88) {
		b.zeros(4)
	}
	b.zeros(8)
	b.i16(0) // civ
	b.zeros(23)
	for i := 0; i < 3; i++ {
		b.i16(int16(i))
		b.f32(float32(i) * 10)
		b.i8(1)
	}
	b.u8(0) // damage graphics
	b.zeros(22)
	b.str(name)
	b.i16(id) // copy
	b.i16(id) // base
}

// unit writes a zero-tier VER 8.8 unit of type typ.
func (b *le) unit(typ uint8, id int16, name string) {
	b.unitCommon(version.V88, typ, id, name)
	b.zeros(tierWidth(typ))
}

// civ writes a civilisation with one unit per non-zero pointer.
func (b *le) civ(name string, resources []float32, pointers []int32, units func(slot int)) {
	b.i8(1)
	b.str(name)
	b.u16(uint16(len(resources)))
	b.i16(1)
	b.i16(2)
	for _, r := range resources {
		b.f32(r)
	}
	b.i8(0)
	b.u16(uint16(len(pointers)))
	for _, p := range pointers {
		b.i32(p)
	}
	for i, p := range pointers {
		if p != 0 {
			units(i)
		}
	}
}
