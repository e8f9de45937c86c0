package datapak

import "github.com/datapak/datapak/internal/codec"

// Method identifies the compression algorithm applied to a single entry.
// It is re-exported from internal/codec so callers never need to import
// that package directly.
type Method = codec.Method

// Compression method tags, re-exported from internal/codec.
const (
	MethodNone    = codec.MethodNone
	MethodDeflate = codec.MethodDeflate
	MethodZstd    = codec.MethodZstd
)

// ParseMethod parses a case-insensitive compression name ("none",
// "deflate", "zstd") as used by the CLI's create compression argument.
func ParseMethod(name string) (Method, error) {
	return codec.ParseMethod(name)
}
