// Package container implements DataPak's on-disk binary layout: the fixed
// 24-byte header and the variable-length directory entries that follow it.
// All multi-byte fields are little-endian; there is no alignment padding.
package container

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic is the "PAKF" signature value at the start of every container. Like
// every header field it is stored little-endian, so the first four bytes on
// disk are 46 4B 41 50.
const Magic uint32 = 0x50414B46

// Version is the only directory-layout version this package reads or writes.
const Version uint32 = 1

// HeaderSize is the fixed on-disk size of a Header, in bytes.
const HeaderSize = 24

// MaxFilenameLength bounds a single directory entry's filename_length
// field. Entries declaring a length outside (0, MaxFilenameLength) are
// malformed.
const MaxFilenameLength = 4096

// Header is the container's fixed-size preamble.
type Header struct {
	Magic           uint32
	Version         uint32
	DirectoryOffset uint64
	DirectoryCount  uint32
	Reserved        uint32
}

// Encode serializes h into its 24-byte on-disk form.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.DirectoryOffset)
	binary.LittleEndian.PutUint32(buf[16:20], h.DirectoryCount)
	binary.LittleEndian.PutUint32(buf[20:24], h.Reserved)
	return buf
}

// ReadHeader reads and validates a Header from r. It returns ErrInvalidFormat
// if the magic or version do not match, wrapping the underlying cause.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrReadError, err)
	}
	h := Header{
		Magic:           binary.LittleEndian.Uint32(buf[0:4]),
		Version:         binary.LittleEndian.Uint32(buf[4:8]),
		DirectoryOffset: binary.LittleEndian.Uint64(buf[8:16]),
		DirectoryCount:  binary.LittleEndian.Uint32(buf[16:20]),
		Reserved:        binary.LittleEndian.Uint32(buf[20:24]),
	}
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %#08x", ErrInvalidFormat, h.Magic)
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, h.Version)
	}
	return h, nil
}
