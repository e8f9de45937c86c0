package datapak

import (
	"errors"

	"github.com/datapak/datapak/internal/codec"
	"github.com/datapak/datapak/internal/container"
)

// Container and Reader errors.
var (
	// ErrFileNotFound is returned when an archive or source file is absent.
	ErrFileNotFound = errors.New("datapak: file not found")

	// ErrInvalidFormat is returned for a bad magic number or version.
	ErrInvalidFormat = container.ErrInvalidFormat

	// ErrReadError is returned for a short read or an out-of-bounds access.
	ErrReadError = container.ErrReadError

	// ErrCompressionError is returned when decompression fails for any
	// reason, or when the Builder's Codec call fails during a build.
	ErrCompressionError = errors.New("datapak: compression error")

	// ErrEntryNotFound is returned by Reader.Open for a path absent from
	// the archive's directory.
	ErrEntryNotFound = errors.New("datapak: entry not found")
)

// Codec errors, re-exported so callers never need to import internal/codec.
var (
	// ErrInvalidMethod is returned for an unrecognized compression tag.
	ErrInvalidMethod = codec.ErrInvalidMethod

	// ErrCompressFailed is returned when the underlying compressor fails.
	ErrCompressFailed = codec.ErrCompressFailed

	// ErrDecompressFailed is returned when the underlying decompressor fails.
	ErrDecompressFailed = codec.ErrDecompressFailed

	// ErrBufferTooSmall is reserved for future streaming codec entry points.
	ErrBufferTooSmall = codec.ErrBufferTooSmall
)

// Builder errors.
var (
	// ErrWriteError is returned for any I/O failure on the build output.
	ErrWriteError = errors.New("datapak: write error")

	// ErrInvalidPath is returned for a source or archive path the Builder
	// refuses to add: an empty archive path, or a source directory that
	// exists but cannot be opened as a walk root.
	ErrInvalidPath = errors.New("datapak: invalid path")
)

// VFS errors.
var (
	// ErrArchiveError is returned by VFS.Mount when the underlying Reader
	// construction fails.
	ErrArchiveError = errors.New("datapak: archive error")

	// ErrCacheError is reserved; the current cache implementation has no
	// failure mode of its own.
	ErrCacheError = errors.New("datapak: cache error")
)
