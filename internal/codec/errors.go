package codec

import "errors"

// Sentinel errors returned by Compress and Decompress.
var (
	// ErrInvalidMethod is returned for an unrecognized Method tag.
	ErrInvalidMethod = errors.New("codec: invalid method")

	// ErrCompressFailed is returned when the underlying compressor fails.
	ErrCompressFailed = errors.New("codec: compress failed")

	// ErrDecompressFailed is returned when the underlying decompressor fails.
	ErrDecompressFailed = errors.New("codec: decompress failed")

	// ErrBufferTooSmall is returned when a caller-supplied buffer cannot
	// hold the decoded output. Reserved for future streaming entry points;
	// Compress and Decompress always allocate their own output buffers.
	ErrBufferTooSmall = errors.New("codec: buffer too small")
)
