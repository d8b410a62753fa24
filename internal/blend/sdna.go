package blend

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// field is one member of an SDNA struct with its computed layout.
type field struct {
	typeName string
	name     string // Raw SDNA name, e.g. "*line" or "name[66]"
	offset   int
	size     int
}

// structDef is the layout of one SDNA struct.
type structDef struct {
	typeName string
	size     int
	fields   map[string]field // Keyed by bare member name
}

// sdna is the struct layout catalogue embedded in every .blend file.
type sdna struct {
	names   []string
	types   []string
	lengths []int
	structs []*structDef
	byType  map[string]*structDef
}

// cursor reads little or big endian values from the DNA1 block.
type cursor struct {
	buf   []byte
	pos   int
	base  int // Offset of buf in the file, for error reporting
	order binary.ByteOrder
	err   error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.pos+n > len(c.buf) {
		c.err = formatErr(c.base+c.pos, "truncated SDNA")
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) expect(tag string) {
	if b := c.take(4); b != nil && string(b) != tag {
		c.err = formatErr(c.base+c.pos-4, "expected SDNA tag %q, got %q", tag, b)
	}
}

func (c *cursor) u16() int {
	if b := c.take(2); b != nil {
		return int(c.order.Uint16(b))
	}
	return 0
}

func (c *cursor) i32() int {
	if b := c.take(4); b != nil {
		return int(int32(c.order.Uint32(b)))
	}
	return 0
}

func (c *cursor) cstring() string {
	if c.err != nil {
		return ""
	}
	end := c.pos
	for end < len(c.buf) && c.buf[end] != 0 {
		end++
	}
	if end >= len(c.buf) {
		c.err = formatErr(c.base+c.pos, "unterminated SDNA string")
		return ""
	}
	s := string(c.buf[c.pos:end])
	c.pos = end + 1
	return s
}

func (c *cursor) align4() {
	c.pos = (c.pos + 3) &^ 3
}

func (c *cursor) cstrings(n int) []string {
	if n < 0 {
		c.err = formatErr(c.base+c.pos, "negative SDNA count %d", n)
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n && c.err == nil; i++ {
		out = append(out, c.cstring())
	}
	return out
}

// parseSDNA decodes a DNA1 block body.
func parseSDNA(b block, h header) (*sdna, error) {
	c := &cursor{buf: b.data, base: b.offset, order: h.order}
	d := &sdna{byType: make(map[string]*structDef)}

	c.expect("SDNA")
	c.expect("NAME")
	d.names = c.cstrings(c.i32())
	c.align4()

	c.expect("TYPE")
	d.types = c.cstrings(c.i32())
	c.align4()

	c.expect("TLEN")
	d.lengths = make([]int, 0, len(d.types))
	for range d.types {
		d.lengths = append(d.lengths, c.u16())
	}
	c.align4()

	c.expect("STRC")
	numStructs := c.i32()
	for i := 0; i < numStructs && c.err == nil; i++ {
		typeIdx := c.u16()
		numFields := c.u16()
		if c.err != nil {
			break
		}
		if typeIdx >= len(d.types) {
			return nil, formatErr(b.offset+c.pos, "struct type index %d out of range", typeIdx)
		}

		st := &structDef{
			typeName: d.types[typeIdx],
			size:     d.lengths[typeIdx],
			fields:   make(map[string]field, numFields),
		}

		offset := 0
		for j := 0; j < numFields && c.err == nil; j++ {
			ft := c.u16()
			fn := c.u16()
			if c.err != nil {
				break
			}
			if ft >= len(d.types) || fn >= len(d.names) {
				return nil, formatErr(b.offset+c.pos, "field index out of range in struct %s", st.typeName)
			}

			name := d.names[fn]
			size := d.lengths[ft]
			if isPointer(name) {
				size = h.pointerSize
			}
			size *= arrayLen(name)

			st.fields[bareName(name)] = field{typeName: d.types[ft], name: name, offset: offset, size: size}
			offset += size
		}

		d.structs = append(d.structs, st)
		d.byType[st.typeName] = st
	}

	if c.err != nil {
		return nil, c.err
	}
	return d, nil
}

// lookup returns the named struct together with the requested members.
func (d *sdna) lookup(typeName string, members ...string) (*structDef, []field, error) {
	st, ok := d.byType[typeName]
	if !ok {
		return nil, nil, formatErr(0, "struct %s missing from SDNA", typeName)
	}
	out := make([]field, 0, len(members))
	for _, m := range members {
		f, ok := st.fields[m]
		if !ok {
			return nil, nil, formatErr(0, "struct %s has no member %s", typeName, m)
		}
		out = append(out, f)
	}
	return st, out, nil
}

func isPointer(name string) bool {
	return strings.HasPrefix(name, "*") || strings.HasPrefix(name, "(*")
}

// bareName strips pointer, function and array decoration: "*line" -> "line",
// "name[66]" -> "name", "(*func)()" -> "func".
func bareName(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if strings.HasPrefix(name, "(*") {
		name = name[2:]
		if i := strings.IndexByte(name, ')'); i >= 0 {
			name = name[:i]
		}
	}
	return strings.TrimLeft(name, "*")
}

// arrayLen returns the element count of a possibly multi-dimensional array name.
func arrayLen(name string) int {
	n := 1
	for {
		open := strings.IndexByte(name, '[')
		if open < 0 {
			return n
		}
		closing := strings.IndexByte(name[open:], ']')
		if closing < 0 {
			return n
		}
		if v, err := strconv.Atoi(name[open+1 : open+closing]); err == nil && v > 0 {
			n *= v
		}
		name = name[open+closing+1:]
	}
}
