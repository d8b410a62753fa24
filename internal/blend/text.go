package blend

import (
	"bytes"
	"strings"
)

// Text is a Text datablock decoded from a .blend file.
type Text struct {
	Name    string // Datablock name without the "TX" code prefix
	Content string // Lines joined with "\n"
}

// file is a parsed .blend file.
type file struct {
	header header
	blocks []block
	byAddr map[uint64]*block
	dna    *sdna
}

func parseFile(data []byte) (*file, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	blocks, err := parseBlocks(data, h)
	if err != nil {
		return nil, err
	}
	return &file{header: h, blocks: blocks}, nil
}

// hasTexts reports whether any block carries the Text code.
func (f *file) hasTexts() bool {
	for i := range f.blocks {
		if f.blocks[i].code == codeText {
			return true
		}
	}
	return false
}

// index builds the SDNA catalogue and the old-address lookup table.
func (f *file) index() error {
	f.byAddr = make(map[uint64]*block, len(f.blocks))
	for i := range f.blocks {
		b := &f.blocks[i]
		if b.code == codeDNA {
			dna, err := parseSDNA(*b, f.header)
			if err != nil {
				return err
			}
			f.dna = dna
			continue
		}
		if b.old != 0 {
			f.byAddr[b.old] = b
		}
	}
	if f.dna == nil {
		return formatErr(0, "file has no DNA1 block")
	}
	return nil
}

// textLayout caches the member offsets needed to decode Text datablocks.
type textLayout struct {
	text      *structDef
	idOffset  int
	nameField field
	lines     int // Offset of Text.lines
	first     int // Offset of ListBase.first
	line      *structDef
	next      field
	chars     field
	length    field
}

func (f *file) textLayout() (*textLayout, error) {
	text, tf, err := f.dna.lookup("Text", "id", "lines")
	if err != nil {
		return nil, err
	}
	_, idf, err := f.dna.lookup("ID", "name")
	if err != nil {
		return nil, err
	}
	_, lbf, err := f.dna.lookup("ListBase", "first")
	if err != nil {
		return nil, err
	}
	line, lf, err := f.dna.lookup("TextLine", "next", "line", "len")
	if err != nil {
		return nil, err
	}

	ptr := f.header.pointerSize
	switch {
	case tf[0].offset+idf[0].offset+idf[0].size > text.size,
		tf[1].offset+lbf[0].offset+ptr > text.size:
		return nil, formatErr(0, "Text struct layout exceeds its length")
	case lf[0].offset+ptr > line.size,
		lf[1].offset+ptr > line.size,
		lf[2].offset+lf[2].size > line.size:
		return nil, formatErr(0, "TextLine struct layout exceeds its length")
	}

	return &textLayout{
		text:      text,
		idOffset:  tf[0].offset,
		nameField: idf[0],
		lines:     tf[1].offset,
		first:     lbf[0].offset,
		line:      line,
		next:      lf[0],
		chars:     lf[1],
		length:    lf[2],
	}, nil
}

// decodeTexts returns every Text datablock in block order.
func (f *file) decodeTexts() ([]Text, error) {
	if !f.hasTexts() {
		return nil, nil
	}
	if err := f.index(); err != nil {
		return nil, err
	}
	layout, err := f.textLayout()
	if err != nil {
		return nil, err
	}

	var texts []Text
	for i := range f.blocks {
		b := &f.blocks[i]
		if b.code != codeText {
			continue
		}

		count := b.count
		if count < 1 {
			count = 1
		}
		for n := 0; n < count; n++ {
			base := n * layout.text.size
			if base+layout.text.size > len(b.data) {
				return nil, formatErr(b.offset, "Text block shorter than its struct")
			}
			t, err := f.decodeText(b.data[base:base+layout.text.size], layout)
			if err != nil {
				return nil, err
			}
			texts = append(texts, t)
		}
	}
	return texts, nil
}

func (f *file) decodeText(data []byte, layout *textLayout) (Text, error) {
	nameStart := layout.idOffset + layout.nameField.offset
	name := cstring(data[nameStart : nameStart+layout.nameField.size])
	if len(name) >= 2 {
		name = name[2:]
	}

	var lines []string
	visited := make(map[uint64]bool)
	ptr := f.header.readPointer(data, layout.lines+layout.first)
	for ptr != 0 {
		if visited[ptr] {
			return Text{}, formatErr(0, "cycle in lines of text %q", name)
		}
		visited[ptr] = true

		lb, ok := f.byAddr[ptr]
		if !ok || len(lb.data) < layout.line.size {
			return Text{}, formatErr(0, "dangling line pointer %#x in text %q", ptr, name)
		}

		line, err := f.lineText(lb, layout)
		if err != nil {
			return Text{}, err
		}
		lines = append(lines, line)
		ptr = f.header.readPointer(lb.data, layout.next.offset)
	}

	return Text{Name: name, Content: strings.Join(lines, "\n")}, nil
}

// lineText resolves TextLine.line into the raw character buffer.
func (f *file) lineText(lb *block, layout *textLayout) (string, error) {
	charsPtr := f.header.readPointer(lb.data, layout.chars.offset)
	if charsPtr == 0 {
		return "", nil
	}
	cb, ok := f.byAddr[charsPtr]
	if !ok {
		return "", formatErr(lb.offset, "dangling character buffer %#x", charsPtr)
	}

	chars := cb.data
	if layout.length.size == 4 {
		n := int(int32(f.header.order.Uint32(lb.data[layout.length.offset:])))
		if n >= 0 && n <= len(chars) {
			chars = chars[:n]
		}
	}
	return cstring(chars), nil
}

// cstring returns b up to the first NUL byte.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
