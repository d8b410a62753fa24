// Package blend reads Text datablocks out of Blender .blend files.
//
// The reader is deliberately narrow. It decodes the file header, the block
// headers and the embedded SDNA (struct layout catalogue), then decodes only
// blocks carrying the "TX" code together with the raw line buffers those
// blocks point at. Every other datablock (objects, scenes, driver
// expressions, registered handlers) is skipped as opaque bytes, so nothing
// stored in the file is ever instantiated, evaluated or run.
//
// Both the legacy 12-byte header ("BLENDER-v300") and the newer header with
// 64-bit block headers ("BLENDER17-01v0500") are understood. Files
// compressed with gzip (Blender < 3.0) or zstd (Blender >= 3.0) are
// decompressed transparently.
//
// Usage:
//
//	texts, err := blend.OpenTexts("/path/to/asset.blend")
//	if err != nil {
//	    var ferr *blend.FormatError
//	    if errors.As(err, &ferr) {
//	        // not a usable .blend file
//	    }
//	}
//	for _, t := range texts {
//	    fmt.Println(t.Name, len(t.Content))
//	}
package blend
