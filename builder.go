package datapak

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/datapak/datapak/internal/codec"
	"github.com/datapak/datapak/internal/container"
)

// methodInherit is the sentinel passed to AddFile/AddDirectory meaning
// "use the Builder's configured default". It is the same value as
// MethodNone (Design Notes §9, Open Question 1): this is a faithful
// reproduction of the reference implementation's conflation, not a
// distinct "inherit" sentinel. A caller who wants a single uncompressed
// file in a Builder whose default is MethodDeflate must change the
// default, add the file, and restore the default — there is no way to
// request None for one file without doing so.
const methodInherit = codec.MethodNone

// builderEntry records one file queued for inclusion in the next Build.
type builderEntry struct {
	sourcePath  string
	archivePath string
	method      codec.Method
}

// Builder collects files and writes them to a new DataPak container.
//
// Builder is not internally synchronized: concurrent use of one instance
// from multiple goroutines requires external synchronization.
type Builder struct {
	entries       []builderEntry
	defaultMethod codec.Method
	logger        *slog.Logger
	progress      ProgressFunc
}

// BuilderOption configures optional Builder behavior at construction.
type BuilderOption func(*Builder)

// WithBuilderLogger attaches a logger for per-file and summary build
// diagnostics. A nil logger (the default) discards all log output.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithBuilderProgress registers a callback invoked once per file added to
// the data region, plus a summary event when the directory is written.
func WithBuilderProgress(fn ProgressFunc) BuilderOption {
	return func(b *Builder) {
		b.progress = fn
	}
}

// NewBuilder creates a Builder whose default compression method is used
// whenever AddFile or AddDirectory is called with the inherit sentinel
// (MethodNone). To build an archive with every entry genuinely
// uncompressed, construct with defaultMethod MethodNone and never call
// SetDefaultCompression.
func NewBuilder(defaultMethod Method, opts ...BuilderOption) *Builder {
	b := &Builder{defaultMethod: defaultMethod}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// SetDefaultCompression changes the method used for future inherit-sentinel
// additions. It does not affect entries already added.
func (b *Builder) SetDefaultCompression(method Method) {
	b.defaultMethod = method
}

// resolveMethod maps the inherit sentinel to the Builder's current default.
func (b *Builder) resolveMethod(method codec.Method) codec.Method {
	if method == methodInherit {
		return b.defaultMethod
	}
	return method
}

// AddFile queues a single source file for inclusion under archivePath.
// method may be the inherit sentinel (MethodNone) to use the Builder's
// default compression.
//
// archivePath is normalized: any platform-native separator is translated
// to '/'.
func (b *Builder) AddFile(sourcePath, archivePath string, method Method) error {
	if archivePath == "" {
		return fmt.Errorf("%w: empty archive path", ErrInvalidPath)
	}
	b.entries = append(b.entries, builderEntry{
		sourcePath:  sourcePath,
		archivePath: NormalizePath(archivePath),
		method:      b.resolveMethod(method),
	})
	return nil
}

// AddDirectory walks srcDir recursively and queues one entry per regular
// file, with archive paths taken relative to srcDir and prefixed by
// archivePrefix. Symbolic links are not followed. method may be the
// inherit sentinel (MethodNone) to use the Builder's default compression.
//
// The walk is confined to srcDir via os.OpenRoot, so a symlink inside
// srcDir cannot cause a file outside it to be read.
func (b *Builder) AddDirectory(srcDir, archivePrefix string, method Method) error {
	root, err := os.OpenRoot(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, srcDir)
		}
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	defer root.Close()

	resolved := b.resolveMethod(method)
	return fs.WalkDir(root.FS(), ".", func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			b.log().Debug("skipped symlink", "path", walkPath)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		archivePath := walkPath
		if archivePrefix != "" {
			archivePath = archivePrefix + "/" + walkPath
		}
		b.entries = append(b.entries, builderEntry{
			sourcePath:  filepath.Join(srcDir, filepath.FromSlash(walkPath)),
			archivePath: NormalizePath(archivePath),
			method:      resolved,
		})
		return nil
	})
}

// FileCount returns the number of entries queued so far.
func (b *Builder) FileCount() int {
	return len(b.entries)
}

// NormalizePath translates platform-native path separators to '/'.
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// Build writes every queued entry to outPath as a valid container,
// following §4.2's algorithm exactly: a placeholder header, then each
// entry's (possibly compressed) bytes appended to the data region in
// insertion order, then the directory table, then a final header rewrite
// with the now-correct directory_offset.
//
// Build is fail-fast: the first error aborts and outPath is left in
// whatever state was last flushed. Callers are expected to delete it on
// failure.
func (b *Builder) Build(outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteError, err)
	}
	defer out.Close()

	count := len(b.entries) //nolint:gosec // bounded by practical file counts
	placeholder := container.Header{
		Magic:          container.Magic,
		Version:        container.Version,
		DirectoryCount: uint32(count), //nolint:gosec // see above
	}
	if _, err := out.Write(placeholder.Encode()); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteError, err)
	}

	records := make([]container.Entry, 0, len(b.entries))
	var writePos uint64 = container.HeaderSize
	for i, e := range b.entries {
		record, err := b.writeEntry(out, e, writePos)
		if err != nil {
			return err
		}
		writePos, err = container.AddUint64(writePos, record.CompressedSize)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWriteError, err)
		}
		records = append(records, record)
		b.reportProgress(StageCompressing, e.archivePath, i+1, len(b.entries))
	}

	directoryOffset := writePos
	for _, record := range records {
		if err := container.EncodeEntry(out, record); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteError, err)
		}
	}
	b.reportProgress(StageWritingDirectory, "", len(b.entries), len(b.entries))

	header := container.Header{
		Magic:           container.Magic,
		Version:         container.Version,
		DirectoryOffset: directoryOffset,
		DirectoryCount:  uint32(count), //nolint:gosec // see above
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteError, err)
	}
	if _, err := out.Write(header.Encode()); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteError, err)
	}

	b.log().Info("built archive", "path", outPath, "entries", len(b.entries), "directory_offset", directoryOffset)
	return nil
}

// writeEntry reads one source file, compresses it per its method, appends
// the result to out at writePos, and returns the directory record
// describing it.
func (b *Builder) writeEntry(out io.Writer, e builderEntry, writePos uint64) (container.Entry, error) {
	data, err := os.ReadFile(e.sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return container.Entry{}, fmt.Errorf("%w: %s", ErrFileNotFound, e.sourcePath)
		}
		return container.Entry{}, fmt.Errorf("%w: %v", ErrWriteError, err)
	}

	payload := data
	if e.method != codec.MethodNone {
		payload, err = codec.Compress(data, e.method)
		if err != nil {
			return container.Entry{}, fmt.Errorf("%w: %v", ErrCompressionError, err)
		}
	}

	if _, err := out.Write(payload); err != nil {
		return container.Entry{}, fmt.Errorf("%w: %v", ErrWriteError, err)
	}

	return container.Entry{
		Filename:         e.archivePath,
		DataOffset:       writePos,
		CompressedSize:   uint64(len(payload)), //nolint:gosec // len is non-negative
		UncompressedSize: uint64(len(data)),     //nolint:gosec // len is non-negative
		Compression:      e.method,
	}, nil
}

func (b *Builder) reportProgress(stage ProgressStage, path string, done, total int) {
	if b.progress == nil {
		return
	}
	b.progress(ProgressEvent{Stage: stage, Path: path, FilesDone: done, FilesTotal: total})
}
