package container

import "errors"

// Sentinel errors returned while decoding or validating container bytes.
var (
	// ErrInvalidFormat is returned for a bad magic number or version.
	ErrInvalidFormat = errors.New("container: invalid format")

	// ErrReadError is returned for a short read or an out-of-bounds access.
	ErrReadError = errors.New("container: read error")

	// ErrSizeOverflow is returned when offset/size bookkeeping would
	// overflow a uint64 during encoding.
	ErrSizeOverflow = errors.New("container: size overflow")
)
