// Package codec implements DataPak's per-entry compression and
// decompression as pure functions over byte buffers. The codec is
// format-agnostic: it knows nothing about containers, directories, or
// offsets.
package codec

import "strings"

// Method identifies the compression algorithm applied to a single entry's
// bytes. It is stored on disk as a single byte.
type Method uint8

const (
	// MethodNone stores bytes uncompressed.
	MethodNone Method = 0

	// MethodDeflate compresses with a self-terminating zlib/deflate stream.
	MethodDeflate Method = 1

	// MethodZstd compresses with zstandard. The format reserves this tag;
	// DataPak implements it so the tag space is fully exercised end to end.
	MethodZstd Method = 2
)

// String returns the lower-case name used by the CLI's compression argument.
func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodDeflate:
		return "deflate"
	case MethodZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the defined method tags.
func (m Method) Valid() bool {
	switch m {
	case MethodNone, MethodDeflate, MethodZstd:
		return true
	default:
		return false
	}
}

// ParseMethod parses a case-insensitive compression name as used by the CLI.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return MethodNone, nil
	case "deflate":
		return MethodDeflate, nil
	case "zstd":
		return MethodZstd, nil
	default:
		return 0, ErrInvalidMethod
	}
}
