package datapak

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/datapak/datapak/internal/codec"
	"github.com/datapak/datapak/internal/container"
)

// Reader opens a single container and gives random access to its entries.
//
// A Reader owns either a retained file handle (BackingModeDisk) or an
// owned in-memory buffer (BackingModeMemory), plus the parsed directory.
// It is not internally synchronized: concurrent use of one Reader from
// multiple goroutines requires external synchronization. Distinct Readers
// are independent.
type Reader struct {
	backing   backing
	directory map[string]container.Entry
	logger    *slog.Logger
}

// ReaderOption configures optional Reader behavior.
type ReaderOption func(*Reader)

// WithReaderLogger attaches a logger for construction and open diagnostics.
// A nil logger (the default) discards all log output.
func WithReaderLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// log returns the configured logger, falling back to a discard logger.
func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// NewReader opens path and eagerly loads its directory. Construction is
// atomic: NewReader returns either a fully loaded Reader or no object at
// all — there is no partial-success state.
func NewReader(path string, mode BackingMode, opts ...ReaderOption) (*Reader, error) {
	b, err := newBacking(path, mode)
	if err != nil {
		return nil, err
	}

	r := &Reader{backing: b}
	for _, opt := range opts {
		opt(r)
	}

	dir, malformed, err := loadDirectory(b)
	if err != nil {
		b.close()
		return nil, err
	}
	r.directory = dir

	r.log().Debug("opened archive",
		"path", path,
		"backing", mode.String(),
		"entries", len(dir),
		"malformed", malformed,
	)
	return r, nil
}

// loadDirectory reads the header and directory table from b, per the
// layout in §4.3: a malformed entry (filename_length == 0 or >= 4096) is
// skipped but its declared length is still consumed so the loop stays
// framed for the next entry.
func loadDirectory(b backing) (map[string]container.Entry, int, error) {
	size := b.size()
	headerBytes, err := b.readRange(0, container.HeaderSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	header, err := container.ReadHeader(bytes.NewReader(headerBytes))
	if err != nil {
		return nil, 0, err
	}

	dirOffset := int64(header.DirectoryOffset) //nolint:gosec // validated against file size below
	if dirOffset < 0 || dirOffset > size {
		return nil, 0, fmt.Errorf("%w: directory offset %d outside container of size %d", ErrInvalidFormat, dirOffset, size)
	}

	dirBytes, err := b.readRange(dirOffset, size-dirOffset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrReadError, err)
	}
	dirReader := bytes.NewReader(dirBytes)

	dir := make(map[string]container.Entry, header.DirectoryCount)
	malformed := 0
	for i := uint32(0); i < header.DirectoryCount; i++ {
		entry, ok, err := container.DecodeEntry(dirReader)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			malformed++
			continue
		}
		dir[entry.Filename] = entry
	}
	return dir, malformed, nil
}

// Contains reports whether path names an entry in this container's
// directory.
func (r *Reader) Contains(path string) bool {
	_, ok := r.directory[path]
	return ok
}

// ListFiles returns the directory's filenames in unspecified order.
func (r *Reader) ListFiles() []string {
	names := make([]string, 0, len(r.directory))
	for name := range r.directory {
		names = append(names, name)
	}
	return names
}

// Stat returns the compressed and uncompressed sizes and compression
// method recorded for path, without reading or decompressing its data.
func (r *Reader) Stat(path string) (compressedSize, uncompressedSize uint64, method codec.Method, ok bool) {
	entry, found := r.directory[path]
	if !found {
		return 0, 0, 0, false
	}
	return entry.CompressedSize, entry.UncompressedSize, entry.Compression, true
}

// Open reads, and if necessary decompresses, the entry named by path and
// returns it as a positioned Stream.
func (r *Reader) Open(path string) (*Stream, error) {
	entry, ok := r.directory[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, path)
	}

	raw, err := r.backing.readRange(int64(entry.DataOffset), int64(entry.CompressedSize)) //nolint:gosec // bounds checked by readRange
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadError, err)
	}

	if entry.Compression == codec.MethodNone {
		return NewStream(raw), nil
	}

	decoded, err := codec.Decompress(raw, entry.Compression, int64(entry.UncompressedSize)) //nolint:gosec // advisory hint only
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionError, err)
	}
	return NewStream(decoded), nil
}

// Close releases the Reader's backing resource. Disk-mode Readers close
// their file handle; memory-mode Readers have nothing to release.
func (r *Reader) Close() error {
	return r.backing.close()
}

var _ io.Closer = (*Reader)(nil)
