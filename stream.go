package datapak

import (
	"fmt"
	"io"
)

// Stream is a positioned, seekable, read-only view over an owned byte
// buffer. It is what Reader.Open and VFS.Open hand back to callers.
type Stream struct {
	data []byte
	pos  int64
}

// NewStream wraps data in a Stream positioned at offset 0. The Stream takes
// ownership of data; callers should not mutate it afterward.
func NewStream(data []byte) *Stream {
	return &Stream{data: data}
}

// Read implements io.Reader. Reads past the end of the buffer return
// (0, io.EOF) rather than an error.
func (s *Stream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

// Seek implements io.Seeker with io.SeekStart, io.SeekCurrent, and
// io.SeekEnd origins. Seeking outside [0, len(data)] fails.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		target = int64(len(s.data)) + offset
	default:
		return 0, fmt.Errorf("datapak: invalid seek whence %d", whence)
	}
	if target < 0 || target > int64(len(s.data)) {
		return 0, fmt.Errorf("datapak: seek out of range: %d", target)
	}
	s.pos = target
	return s.pos, nil
}

// Close implements io.Closer. Stream holds no external resources, so Close
// always succeeds.
func (s *Stream) Close() error {
	return nil
}

// Len returns the total length of the underlying buffer.
func (s *Stream) Len() int {
	return len(s.data)
}

// Bytes returns the Stream's full underlying buffer, irrespective of the
// current read position. The caller must not mutate the returned slice.
func (s *Stream) Bytes() []byte {
	return s.data
}

// ReadAll drains the Stream from its current position to the end.
func (s *Stream) ReadAll() ([]byte, error) {
	return io.ReadAll(s)
}
