package datapak_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapak/datapak"
	"github.com/datapak/datapak/internal/container"
)

func TestBuilderFileCountAndAddFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("aaa"), 0o644))

	builder := datapak.NewBuilder(datapak.MethodDeflate)
	assert.Equal(t, 0, builder.FileCount())
	require.NoError(t, builder.AddFile(src, "a.txt", datapak.MethodNone))
	assert.Equal(t, 1, builder.FileCount())
}

func TestBuilderSentinelInheritsDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), 0o644))

	builder := datapak.NewBuilder(datapak.MethodDeflate)
	// The inherit sentinel (MethodNone) resolves to the Builder's current
	// default (Deflate), per the documented §9 Open Question 1 quirk.
	require.NoError(t, builder.AddFile(src, "a.txt", datapak.MethodNone))

	archivePath := filepath.Join(dir, "out.pak")
	require.NoError(t, builder.Build(archivePath))

	reader, err := datapak.NewReader(archivePath, datapak.BackingModeDisk)
	require.NoError(t, err)
	defer reader.Close()

	_, _, method, ok := reader.Stat("a.txt")
	require.True(t, ok)
	assert.Equal(t, datapak.MethodDeflate, method)
}

func TestBuilderNormalizesArchivePathSeparators(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	builder := datapak.NewBuilder(datapak.MethodNone)
	require.NoError(t, builder.AddFile(src, `sub\a.txt`, datapak.MethodNone))

	archivePath := filepath.Join(dir, "out.pak")
	require.NoError(t, builder.Build(archivePath))

	reader, err := datapak.NewReader(archivePath, datapak.BackingModeDisk)
	require.NoError(t, err)
	defer reader.Close()

	if os.PathSeparator == '\\' {
		assert.True(t, reader.Contains("sub/a.txt"))
	} else {
		// On POSIX, a literal backslash is a valid filename character, so
		// filepath.ToSlash leaves it untouched; NormalizePath only
		// translates the platform's *native* separator.
		assert.True(t, reader.Contains(`sub\a.txt`))
	}
}

func TestBuilderAddFileRejectsEmptyArchivePath(t *testing.T) {
	t.Parallel()

	builder := datapak.NewBuilder(datapak.MethodNone)
	err := builder.AddFile("irrelevant", "", datapak.MethodNone)
	require.ErrorIs(t, err, datapak.ErrInvalidPath)
}

func TestBuilderAddFileMissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	builder := datapak.NewBuilder(datapak.MethodNone)
	require.NoError(t, builder.AddFile(filepath.Join(dir, "missing.txt"), "missing.txt", datapak.MethodNone))

	err := builder.Build(filepath.Join(dir, "out.pak"))
	require.ErrorIs(t, err, datapak.ErrFileNotFound)
}

func TestBuilderAddDirectoryWithPrefix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcDir := filepath.Join(dir, "assets")
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "textures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "textures", "a.png"), []byte("png-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "config.json"), []byte("{}"), 0o644))

	builder := datapak.NewBuilder(datapak.MethodNone)
	require.NoError(t, builder.AddDirectory(srcDir, "game", datapak.MethodNone))
	assert.Equal(t, 2, builder.FileCount())

	archivePath := filepath.Join(dir, "out.pak")
	require.NoError(t, builder.Build(archivePath))

	reader, err := datapak.NewReader(archivePath, datapak.BackingModeDisk)
	require.NoError(t, err)
	defer reader.Close()

	assert.True(t, reader.Contains("game/textures/a.png"))
	assert.True(t, reader.Contains("game/config.json"))
}

func TestBuildFormatInvariants(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("aaaa"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "b.txt"), []byte("bbbbbbbbbb"), 0o644))

	builder := datapak.NewBuilder(datapak.MethodDeflate)
	require.NoError(t, builder.AddDirectory(srcDir, "", datapak.MethodNone))
	archivePath := filepath.Join(dir, "out.pak")
	require.NoError(t, builder.Build(archivePath))

	raw, err := os.ReadFile(archivePath)
	require.NoError(t, err)

	// First four bytes are the magic 0x50414B46 ("PAKF"), stored little-endian.
	assert.Equal(t, []byte{0x46, 0x4B, 0x41, 0x50}, raw[0:4])

	// directory_offset >= 24 and every entry's data stays within the data
	// region (data_offset + compressed_size <= directory_offset).
	header, err := container.ReadHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, header.DirectoryOffset, uint64(24))

	dirReader := bytes.NewReader(raw[header.DirectoryOffset:])
	for i := uint32(0); i < header.DirectoryCount; i++ {
		entry, ok, err := container.DecodeEntry(dirReader)
		require.NoError(t, err)
		require.True(t, ok)
		assert.LessOrEqual(t, entry.DataOffset+entry.CompressedSize, header.DirectoryOffset)
	}
}
