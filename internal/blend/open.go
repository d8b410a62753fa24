package blend

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// DefaultMaxSize caps the decompressed size of a single file.
const DefaultMaxSize int64 = 2 << 30

// ReadTexts decodes the Text datablocks from a .blend stream.
// A file without Text datablocks yields an empty result and no error.
func ReadTexts(r io.Reader) ([]Text, error) {
	return readTexts(r, DefaultMaxSize)
}

func readTexts(r io.Reader, maxSize int64) ([]Text, error) {
	data, err := decompress(r, maxSize)
	if err != nil {
		return nil, err
	}

	f, err := parseFile(data)
	if err != nil {
		return nil, err
	}
	return f.decodeTexts()
}

// OpenTexts opens the file at path and decodes its Text datablocks.
func OpenTexts(path string) ([]Text, error) {
	return Loader{}.LoadTexts(path)
}

// Loader loads Text datablocks from files on disk.
type Loader struct {
	// MaxSize caps the decompressed size of a file (0 = DefaultMaxSize).
	MaxSize int64
}

// LoadTexts opens path and decodes only its Text datablocks.
func (l Loader) LoadTexts(path string) ([]Text, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	maxSize := l.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return readTexts(f, maxSize)
}

// decompress reads the whole stream, unwrapping gzip or zstd when present.
func decompress(r io.Reader, maxSize int64) ([]byte, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		src = zr
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read blend data: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("blend data exceeds %d bytes", maxSize)
	}
	return data, nil
}
