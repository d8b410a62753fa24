package blend

import "fmt"

// FormatError reports a file that cannot be decoded as a .blend file.
type FormatError struct {
	Offset int    // Byte offset in the decompressed stream where decoding failed
	Reason string // Human readable description
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("blend: %s (offset %d)", e.Reason, e.Offset)
}

func formatErr(offset int, format string, args ...interface{}) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
