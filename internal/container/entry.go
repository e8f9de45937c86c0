package container

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/datapak/datapak/internal/codec"
)

// Entry is one decoded directory record: a filename plus the location,
// sizes, and compression method of its data in the data region.
type Entry struct {
	Filename         string
	DataOffset       uint64
	CompressedSize   uint64
	UncompressedSize uint64
	Compression      codec.Method
}

// EncodeEntry writes e to w in the exact field order specified for a
// directory entry: filename_length, filename, data_offset,
// compressed_size, uncompressed_size, compression.
func EncodeEntry(w io.Writer, e Entry) error {
	name := []byte(e.Filename)
	if len(name) == 0 || len(name) >= MaxFilenameLength {
		return fmt.Errorf("%w: filename length %d out of range", ErrInvalidFormat, len(name))
	}

	head := make([]byte, 4+len(name)+8+8+8+1)
	binary.LittleEndian.PutUint32(head[0:4], uint32(len(name))) //nolint:gosec // bounded above
	copy(head[4:4+len(name)], name)
	off := 4 + len(name)
	binary.LittleEndian.PutUint64(head[off:off+8], e.DataOffset)
	binary.LittleEndian.PutUint64(head[off+8:off+16], e.CompressedSize)
	binary.LittleEndian.PutUint64(head[off+16:off+24], e.UncompressedSize)
	head[off+24] = byte(e.Compression)

	_, err := w.Write(head)
	return err
}

// DecodeEntry reads one directory record from r.
//
// A record declaring filename_length == 0 or >= MaxFilenameLength is
// malformed: ok is false, the returned Entry is the zero value, and the
// byte stream position still advances past the declared filename length so
// that the caller's decode loop remains framed for the next record.
func DecodeEntry(r io.Reader) (e Entry, ok bool, err error) {
	var lenBuf [4]byte
	if _, err = io.ReadFull(r, lenBuf[:]); err != nil {
		return Entry{}, false, fmt.Errorf("%w: %v", ErrReadError, err)
	}
	nameLen := binary.LittleEndian.Uint32(lenBuf[:])

	malformed := nameLen == 0 || nameLen >= MaxFilenameLength
	if malformed {
		if err := discard(r, int64(nameLen)); err != nil {
			return Entry{}, false, err
		}
	} else {
		name := make([]byte, nameLen)
		if _, err = io.ReadFull(r, name); err != nil {
			return Entry{}, false, fmt.Errorf("%w: %v", ErrReadError, err)
		}
		e.Filename = string(name)
	}

	var fixed [25]byte
	if _, err = io.ReadFull(r, fixed[:]); err != nil {
		return Entry{}, false, fmt.Errorf("%w: %v", ErrReadError, err)
	}
	e.DataOffset = binary.LittleEndian.Uint64(fixed[0:8])
	e.CompressedSize = binary.LittleEndian.Uint64(fixed[8:16])
	e.UncompressedSize = binary.LittleEndian.Uint64(fixed[16:24])
	e.Compression = codec.Method(fixed[24])

	if malformed {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// discard reads and drops n bytes from r, used to keep the directory
// decode loop framed when an entry's filename is skipped.
func discard(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadError, err)
	}
	return nil
}
