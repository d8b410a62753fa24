package blend

import (
	"encoding/binary"
	"strconv"
)

const magic = "BLENDER"

// Block codes the reader cares about. Everything else is skipped.
const (
	codeText = "TX\x00\x00"
	codeDNA  = "DNA1"
	codeEnd  = "ENDB"
)

// header describes the file-level layout parameters.
type header struct {
	size        int // Header length in bytes
	pointerSize int // 4 or 8
	order       binary.ByteOrder
	version     int  // Blender version, e.g. 300 or 500
	largeBlocks bool // 64-bit block headers (file format version 1)
}

// block is a single file block. data aliases the decoded file buffer.
type block struct {
	code   string
	sdna   int
	old    uint64
	count  int
	offset int
	data   []byte
}

func parseHeader(data []byte) (header, error) {
	if len(data) < 12 || string(data[:7]) != magic {
		return header{}, formatErr(0, "missing BLENDER magic")
	}

	switch data[7] {
	case '_', '-':
		return parseLegacyHeader(data)
	}
	return parseLargeHeader(data)
}

// parseLegacyHeader handles "BLENDER" + pointer size + endianness + version.
func parseLegacyHeader(data []byte) (header, error) {
	h := header{size: 12, pointerSize: 4}
	if data[7] == '-' {
		h.pointerSize = 8
	}

	switch data[8] {
	case 'v':
		h.order = binary.LittleEndian
	case 'V':
		h.order = binary.BigEndian
	default:
		return header{}, formatErr(8, "unknown endianness marker %q", data[8])
	}

	version, err := strconv.Atoi(string(data[9:12]))
	if err != nil {
		return header{}, formatErr(9, "invalid version %q", data[9:12])
	}
	h.version = version
	return h, nil
}

// parseLargeHeader handles "BLENDER" + header size + "-" + format version + "v" + version.
func parseLargeHeader(data []byte) (header, error) {
	size, err := strconv.Atoi(string(data[7:9]))
	if err != nil || size < 17 || len(data) < size {
		return header{}, formatErr(7, "invalid header size %q", data[7:9])
	}
	if data[9] != '-' {
		return header{}, formatErr(9, "malformed header")
	}

	formatVersion, err := strconv.Atoi(string(data[10:12]))
	if err != nil {
		return header{}, formatErr(10, "invalid file format version %q", data[10:12])
	}
	if formatVersion != 1 {
		return header{}, formatErr(10, "unsupported file format version %d", formatVersion)
	}
	if data[12] != 'v' {
		return header{}, formatErr(12, "unsupported endianness marker %q", data[12])
	}

	version, err := strconv.Atoi(string(data[13:17]))
	if err != nil {
		return header{}, formatErr(13, "invalid version %q", data[13:17])
	}

	return header{
		size:        size,
		pointerSize: 8,
		order:       binary.LittleEndian,
		version:     version,
		largeBlocks: true,
	}, nil
}

// blockHeaderSize returns the size of a block header for this file.
func (h header) blockHeaderSize() int {
	if h.largeBlocks {
		return 32
	}
	return 16 + h.pointerSize
}

// readPointer reads a pointer-sized value at off.
func (h header) readPointer(buf []byte, off int) uint64 {
	if h.pointerSize == 8 {
		return h.order.Uint64(buf[off:])
	}
	return uint64(h.order.Uint32(buf[off:]))
}

// parseBlocks splits the file body into blocks, stopping at ENDB.
func parseBlocks(data []byte, h header) ([]block, error) {
	var blocks []block
	pos := h.size
	hsize := h.blockHeaderSize()

	for {
		if pos+hsize > len(data) {
			return nil, formatErr(pos, "truncated block header")
		}
		hdr := data[pos : pos+hsize]
		b := block{code: string(hdr[:4]), offset: pos}

		var length int64
		if h.largeBlocks {
			b.sdna = int(int32(h.order.Uint32(hdr[4:])))
			b.old = h.order.Uint64(hdr[8:])
			length = int64(h.order.Uint64(hdr[16:]))
			b.count = int(int64(h.order.Uint64(hdr[24:])))
		} else {
			length = int64(int32(h.order.Uint32(hdr[4:])))
			b.old = h.readPointer(hdr, 8)
			rest := 8 + h.pointerSize
			b.sdna = int(int32(h.order.Uint32(hdr[rest:])))
			b.count = int(int32(h.order.Uint32(hdr[rest+4:])))
		}

		if b.code == codeEnd {
			return blocks, nil
		}

		pos += hsize
		if length < 0 || int64(pos)+length > int64(len(data)) {
			return nil, formatErr(b.offset, "block %q length %d exceeds file size", b.code, length)
		}
		b.data = data[pos : pos+int(length)]
		pos += int(length)

		blocks = append(blocks, b)
	}
}
