// Package blendtest builds synthetic .blend files for tests.
//
// The encoder writes a minimal but structurally faithful file: a header,
// a DNA1 block describing ListBase, ID, TextLine, Text and Object, one TX
// block per text with its TextLine chain and character buffers, and an
// OB block carrying an opaque payload that readers must never touch.
package blendtest

import (
	"bytes"
	"encoding/binary"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the outer stream encoding.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

// Text is a text datablock to encode.
type Text struct {
	Name    string
	Content string
}

// Options controls the binary layout of the encoded file.
type Options struct {
	PointerSize int  // 4 or 8 (default 8)
	BigEndian   bool // Ignored when LargeHeader is set
	LargeHeader bool // "BLENDER17-01v0500" header with 64-bit block headers
	Compression Compression
	// Payload is stored in an Object datablock and must never surface as text.
	Payload string
}

const idNameLen = 66

// Encode returns the bytes of a .blend file holding texts.
func Encode(texts []Text, opts Options) []byte {
	e := newEncoder(opts)
	raw := e.encode(texts)

	switch opts.Compression {
	case Gzip:
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write(raw)
		zw.Close()
		return buf.Bytes()
	case Zstd:
		enc, _ := zstd.NewWriter(nil)
		defer enc.Close()
		return enc.EncodeAll(raw, nil)
	}
	return raw
}

// WriteFile encodes texts and writes them to path.
func WriteFile(path string, texts []Text, opts Options) error {
	return os.WriteFile(path, Encode(texts, opts), 0644)
}

type encoder struct {
	opts  Options
	ptr   int
	order binary.ByteOrder
	buf   bytes.Buffer
	addr  uint64

	// Struct sizes derived from the pointer size
	listBaseLen int
	idLen       int
	lineLen     int
	textLen     int
	objectLen   int
}

// Indices into the type and struct tables written by writeDNA
const (
	typeChar = iota
	typeShort
	typeInt
	typeVoid
	typeListBase
	typeID
	typeTextLine
	typeText
	typeObject
)

const (
	structListBase = iota
	structID
	structTextLine
	structText
	structObject
)

func newEncoder(opts Options) *encoder {
	if opts.PointerSize != 4 {
		opts.PointerSize = 8
	}
	if opts.LargeHeader {
		opts.PointerSize = 8
		opts.BigEndian = false
	}

	e := &encoder{opts: opts, ptr: opts.PointerSize, order: binary.LittleEndian, addr: 0x1000}
	if opts.BigEndian {
		e.order = binary.BigEndian
	}

	e.listBaseLen = 2 * e.ptr
	e.idLen = 2*e.ptr + idNameLen + 2
	e.lineLen = 4*e.ptr + 8
	e.textLen = e.idLen + e.listBaseLen + e.ptr + 4
	e.objectLen = e.idLen + e.ptr
	return e
}

func (e *encoder) nextAddr() uint64 {
	a := e.addr
	e.addr += 0x100
	return a
}

func (e *encoder) encode(texts []Text) []byte {
	e.writeHeader()

	for _, t := range texts {
		e.writeText(t)
	}
	e.writeObject()
	e.writeBlock("DNA1", 0, 0, 1, e.dna())
	e.writeBlock("ENDB", 0, 0, 0, nil)

	return e.buf.Bytes()
}

func (e *encoder) writeHeader() {
	if e.opts.LargeHeader {
		e.buf.WriteString("BLENDER17-01v0500")
		return
	}

	e.buf.WriteString("BLENDER")
	if e.ptr == 8 {
		e.buf.WriteByte('-')
	} else {
		e.buf.WriteByte('_')
	}
	if e.opts.BigEndian {
		e.buf.WriteByte('V')
	} else {
		e.buf.WriteByte('v')
	}
	e.buf.WriteString("300")
}

func (e *encoder) writeBlock(code string, sdna int, old uint64, count int, data []byte) {
	e.buf.WriteString(code)
	if e.opts.LargeHeader {
		e.u32(&e.buf, uint32(sdna))
		e.u64(&e.buf, old)
		e.u64(&e.buf, uint64(len(data)))
		e.u64(&e.buf, uint64(count))
	} else {
		e.u32(&e.buf, uint32(len(data)))
		e.pointer(&e.buf, old)
		e.u32(&e.buf, uint32(sdna))
		e.u32(&e.buf, uint32(count))
	}
	e.buf.Write(data)
}

func (e *encoder) writeText(t Text) {
	lines := strings.Split(t.Content, "\n")
	textAddr := e.nextAddr()
	lineAddrs := make([]uint64, len(lines))
	charAddrs := make([]uint64, len(lines))
	for i := range lines {
		lineAddrs[i] = e.nextAddr()
		charAddrs[i] = e.nextAddr()
	}

	var tb bytes.Buffer
	e.id(&tb, "TX"+t.Name)
	e.pointer(&tb, lineAddrs[0])
	e.pointer(&tb, lineAddrs[len(lines)-1])
	e.pointer(&tb, 0) // filepath
	e.u32(&tb, 0)     // flags
	e.writeBlock("TX\x00\x00", structText, textAddr, 1, tb.Bytes())

	for i, line := range lines {
		var next, prev uint64
		if i+1 < len(lines) {
			next = lineAddrs[i+1]
		}
		if i > 0 {
			prev = lineAddrs[i-1]
		}

		var lb bytes.Buffer
		e.pointer(&lb, next)
		e.pointer(&lb, prev)
		e.pointer(&lb, charAddrs[i])
		e.pointer(&lb, 0) // format
		e.u32(&lb, uint32(len(line)))
		e.u32(&lb, uint32(len(line)+1))
		e.writeBlock("DATA", structTextLine, lineAddrs[i], 1, lb.Bytes())
		e.writeBlock("DATA", 0, charAddrs[i], 1, append([]byte(line), 0))
	}
}

func (e *encoder) writeObject() {
	objAddr := e.nextAddr()
	dataAddr := e.nextAddr()

	var ob bytes.Buffer
	e.id(&ob, "OBPayload")
	e.pointer(&ob, dataAddr)
	e.writeBlock("OB\x00\x00", structObject, objAddr, 1, ob.Bytes())
	e.writeBlock("DATA", 0, dataAddr, 1, append([]byte(e.opts.Payload), 0))
}

// id writes an ID struct: next, prev, name[66], flag.
func (e *encoder) id(b *bytes.Buffer, name string) {
	e.pointer(b, 0)
	e.pointer(b, 0)
	raw := make([]byte, idNameLen)
	copy(raw[:idNameLen-1], name)
	b.Write(raw)
	e.u16(b, 0)
}

func (e *encoder) dna() []byte {
	var b bytes.Buffer
	b.WriteString("SDNA")

	names := []string{
		"*next", "*prev", "name[66]", "flag", "*first", "*last",
		"*line", "*format", "len", "blen", "id", "lines", "*filepath", "flags", "*data",
	}
	types := []string{"char", "short", "int", "void", "ListBase", "ID", "TextLine", "Text", "Object"}
	lengths := []int{1, 2, 4, 0, e.listBaseLen, e.idLen, e.lineLen, e.textLen, e.objectLen}

	b.WriteString("NAME")
	e.u32(&b, uint32(len(names)))
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte(0)
	}
	pad4(&b)

	b.WriteString("TYPE")
	e.u32(&b, uint32(len(types)))
	for _, t := range types {
		b.WriteString(t)
		b.WriteByte(0)
	}
	pad4(&b)

	b.WriteString("TLEN")
	for _, l := range lengths {
		e.u16(&b, uint16(l))
	}
	pad4(&b)

	name := func(n string) int {
		for i, v := range names {
			if v == n {
				return i
			}
		}
		panic("blendtest: unknown SDNA name " + n)
	}

	structs := []struct {
		typ    int
		fields [][2]int
	}{
		{typeListBase, [][2]int{{typeVoid, name("*first")}, {typeVoid, name("*last")}}},
		{typeID, [][2]int{{typeVoid, name("*next")}, {typeVoid, name("*prev")}, {typeChar, name("name[66]")}, {typeShort, name("flag")}}},
		{typeTextLine, [][2]int{
			{typeTextLine, name("*next")}, {typeTextLine, name("*prev")},
			{typeChar, name("*line")}, {typeChar, name("*format")},
			{typeInt, name("len")}, {typeInt, name("blen")},
		}},
		{typeText, [][2]int{{typeID, name("id")}, {typeListBase, name("lines")}, {typeChar, name("*filepath")}, {typeInt, name("flags")}}},
		{typeObject, [][2]int{{typeID, name("id")}, {typeVoid, name("*data")}}},
	}

	b.WriteString("STRC")
	e.u32(&b, uint32(len(structs)))
	for _, s := range structs {
		e.u16(&b, uint16(s.typ))
		e.u16(&b, uint16(len(s.fields)))
		for _, f := range s.fields {
			e.u16(&b, uint16(f[0]))
			e.u16(&b, uint16(f[1]))
		}
	}
	return b.Bytes()
}

func pad4(b *bytes.Buffer) {
	for b.Len()%4 != 0 {
		b.WriteByte(0)
	}
}

func (e *encoder) pointer(b *bytes.Buffer, v uint64) {
	if e.ptr == 8 {
		e.u64(b, v)
		return
	}
	e.u32(b, uint32(v))
}

func (e *encoder) u16(b *bytes.Buffer, v uint16) {
	var tmp [2]byte
	e.order.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

func (e *encoder) u32(b *bytes.Buffer, v uint32) {
	var tmp [4]byte
	e.order.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func (e *encoder) u64(b *bytes.Buffer, v uint64) {
	var tmp [8]byte
	e.order.PutUint64(tmp[:], v)
	b.Write(tmp[:])
}
