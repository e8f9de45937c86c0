package datapak

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// SearchOrder decides which mounted Reader serves a name both Readers
// claim to contain.
type SearchOrder int

const (
	// ReverseMountOrder resolves overlapping names to the last-mounted
	// Reader. This is the VFS default.
	ReverseMountOrder SearchOrder = iota

	// MountOrder resolves overlapping names to the first-mounted Reader.
	MountOrder
)

// String returns a human-readable name, used in log output.
func (o SearchOrder) String() string {
	switch o {
	case ReverseMountOrder:
		return "reverse-mount-order"
	case MountOrder:
		return "mount-order"
	default:
		return "unknown"
	}
}

// VFS overlays one or more mounted Readers into a single logical
// namespace, resolving overlapping names under a configurable precedence
// and caching decompressed bytes per virtual path.
//
// VFS is not internally synchronized: concurrent use of one instance from
// multiple goroutines requires external synchronization. Mounted Readers
// are owned by the VFS in mount order and are never removed.
type VFS struct {
	readers      []*Reader
	cacheEnabled bool
	searchOrder  SearchOrder
	cache        map[string][]byte
	logger       *slog.Logger
}

// VFSOption configures optional VFS behavior at construction.
type VFSOption func(*VFS)

// WithVFSLogger attaches a logger for mount and cache-hit/miss diagnostics.
// A nil logger (the default) discards all log output.
func WithVFSLogger(logger *slog.Logger) VFSOption {
	return func(v *VFS) {
		v.logger = logger
	}
}

// WithInitialCacheEnabled overrides the default cache_enabled=true setting.
func WithInitialCacheEnabled(enabled bool) VFSOption {
	return func(v *VFS) {
		v.cacheEnabled = enabled
	}
}

// WithInitialSearchOrder overrides the default ReverseMountOrder setting.
func WithInitialSearchOrder(order SearchOrder) VFSOption {
	return func(v *VFS) {
		v.searchOrder = order
	}
}

// NewVFS creates an empty VFS with caching enabled and ReverseMountOrder
// precedence.
func NewVFS(opts ...VFSOption) *VFS {
	v := &VFS{
		cacheEnabled: true,
		searchOrder:  ReverseMountOrder,
		cache:        make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *VFS) log() *slog.Logger {
	if v.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return v.logger
}

// Mount opens path as a new Reader and appends it to the mount list. The
// i-th mounted Reader occupies position i forever; mounts are never
// removed.
func (v *VFS) Mount(path string, mode BackingMode) error {
	var readerOpts []ReaderOption
	if v.logger != nil {
		readerOpts = append(readerOpts, WithReaderLogger(v.logger))
	}
	r, err := NewReader(path, mode, readerOpts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveError, err)
	}
	v.readers = append(v.readers, r)
	v.log().Debug("mounted archive", "path", path, "backing", mode.String(), "mount_index", len(v.readers)-1)
	return nil
}

// Contains reports whether path resolves to an entry somewhere in the VFS.
// When caching is enabled and the cache already holds path, Contains
// returns true without consulting any Reader; otherwise it is order
// independent of search_order (only iteration direction differs).
func (v *VFS) Contains(path string) bool {
	if v.cacheEnabled {
		if _, ok := v.cache[path]; ok {
			return true
		}
	}
	for _, idx := range v.iterationOrder() {
		if v.readers[idx].Contains(path) {
			return true
		}
	}
	return false
}

// iterationOrder returns mount indices in the direction dictated by
// searchOrder: MountOrder iterates first to last, ReverseMountOrder
// iterates last to first.
func (v *VFS) iterationOrder() []int {
	order := make([]int, len(v.readers))
	switch v.searchOrder {
	case MountOrder:
		for i := range order {
			order[i] = i
		}
	default: // ReverseMountOrder
		for i := range order {
			order[i] = len(v.readers) - 1 - i
		}
	}
	return order
}

// Open resolves path against the cache, then the mounted Readers in
// search_order direction, and returns a Stream over its decompressed
// bytes.
//
// The first Reader whose directory contains path is authoritative: if
// that Reader's Open call fails, Open returns the error without falling
// through to a lower-precedence Reader. This preserves predictable
// overlay precedence (see the package-level design notes in DESIGN.md).
func (v *VFS) Open(path string) (*Stream, error) {
	if v.cacheEnabled {
		if data, ok := v.cache[path]; ok {
			v.log().Debug("cache hit", "path", path)
			cp := make([]byte, len(data))
			copy(cp, data)
			return NewStream(cp), nil
		}
	}

	for _, idx := range v.iterationOrder() {
		reader := v.readers[idx]
		if !reader.Contains(path) {
			continue
		}

		v.log().Debug("cache miss", "path", path, "mount_index", idx)
		stream, err := reader.Open(path)
		if err != nil {
			return nil, err
		}

		if v.cacheEnabled {
			data, err := stream.ReadAll()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrReadError, err)
			}
			v.cache[path] = data
			if _, err := stream.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
		}
		return stream, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
}

// ListFiles returns the sorted, deduplicated union of every mounted
// Reader's ListFiles.
func (v *VFS) ListFiles() []string {
	seen := make(map[string]struct{})
	for _, r := range v.readers {
		for _, name := range r.ListFiles() {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnableCache turns the decompressed-blob cache on or off. Disabling the
// cache does not clear it; existing entries remain until ClearCache.
func (v *VFS) EnableCache(enabled bool) {
	v.cacheEnabled = enabled
}

// ClearCache discards every cached entry.
func (v *VFS) ClearCache() {
	v.cache = make(map[string][]byte)
}

// CacheSize returns the number of cached virtual paths.
func (v *VFS) CacheSize() int {
	return len(v.cache)
}

// SetSearchOrder changes the precedence rule used by future Open/Contains
// calls.
func (v *VFS) SetSearchOrder(order SearchOrder) {
	v.searchOrder = order
}

// GetSearchOrder returns the current precedence rule.
func (v *VFS) GetSearchOrder() SearchOrder {
	return v.searchOrder
}

// Close releases every mounted Reader's backing resource.
func (v *VFS) Close() error {
	var firstErr error
	for _, r := range v.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
