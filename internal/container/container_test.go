package container

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapak/datapak/internal/codec"
)

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := Header{
		Magic:           Magic,
		Version:         Version,
		DirectoryOffset: 1234,
		DirectoryCount:  7,
	}
	decoded, err := ReadHeader(bytes.NewReader(h.Encode()))
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestHeaderEncodingLength(t *testing.T) {
	t.Parallel()

	h := Header{Magic: Magic, Version: Version}
	assert.Len(t, h.Encode(), HeaderSize)
}

func TestHeaderBadMagic(t *testing.T) {
	t.Parallel()

	h := Header{Magic: 0xDEADBEEF, Version: Version}
	_, err := ReadHeader(bytes.NewReader(h.Encode()))
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestHeaderBadVersion(t *testing.T) {
	t.Parallel()

	h := Header{Magic: Magic, Version: 2}
	_, err := ReadHeader(bytes.NewReader(h.Encode()))
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestHeaderShortRead(t *testing.T) {
	t.Parallel()

	_, err := ReadHeader(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
}

func TestEntryRoundTrip(t *testing.T) {
	t.Parallel()

	e := Entry{
		Filename:         "dir/file.txt",
		DataOffset:       24,
		CompressedSize:   10,
		UncompressedSize: 20,
		Compression:      codec.MethodDeflate,
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeEntry(&buf, e))

	decoded, ok, err := DecodeEntry(&buf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e, decoded)
}

func TestEncodeEntryRejectsEmptyFilename(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := EncodeEntry(&buf, Entry{Filename: ""})
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestDecodeEntrySkipsMalformedButStaysFramed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	// A malformed entry with filename_length == 0, followed by a
	// well-formed entry. The loop must still land on the second record.
	writeRawEntryHeader(&buf, 0)
	writeFixedFields(&buf, 0, 0, 0, 0)

	good := Entry{Filename: "ok.txt", DataOffset: 1, CompressedSize: 2, UncompressedSize: 3, Compression: codec.MethodNone}
	require.NoError(t, EncodeEntry(&buf, good))

	first, ok, err := DecodeEntry(&buf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Entry{}, first)

	second, ok, err := DecodeEntry(&buf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, good, second)
}

func TestDecodeEntryRejectsOversizedFilenameLength(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writeRawEntryHeader(&buf, MaxFilenameLength)
	buf.Write(make([]byte, MaxFilenameLength))
	writeFixedFields(&buf, 0, 0, 0, 0)

	entry, ok, err := DecodeEntry(&buf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Entry{}, entry)
}

func TestAddUint64Overflow(t *testing.T) {
	t.Parallel()

	_, err := AddUint64(^uint64(0), 1)
	require.ErrorIs(t, err, ErrSizeOverflow)

	sum, err := AddUint64(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sum)
}

func writeRawEntryHeader(buf *bytes.Buffer, length uint32) {
	b := make([]byte, 4)
	b[0] = byte(length)
	b[1] = byte(length >> 8)
	b[2] = byte(length >> 16)
	b[3] = byte(length >> 24)
	buf.Write(b)
}

func writeFixedFields(buf *bytes.Buffer, dataOffset, compressedSize, uncompressedSize uint64, compression byte) {
	b := make([]byte, 25)
	putUint64(b[0:8], dataOffset)
	putUint64(b[8:16], compressedSize)
	putUint64(b[16:24], uncompressedSize)
	b[24] = compression
	buf.Write(b)
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
