package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// Compress returns method-compressed bytes for data.
//
// For MethodNone it returns an independent copy of data. For MethodDeflate
// it returns a self-terminating zlib/deflate stream. For MethodZstd it
// returns a zstd frame. An unrecognized method returns ErrInvalidMethod.
func Compress(data []byte, method Method) ([]byte, error) {
	switch method {
	case MethodNone:
		return cloneBytes(data), nil
	case MethodDeflate:
		return compressDeflate(data)
	case MethodZstd:
		return compressZstd(data)
	default:
		return nil, ErrInvalidMethod
	}
}

// Decompress reverses Compress. expectedLen is the uncompressed size
// recorded in the container's directory; it is a capacity hint, not a
// boundary — the Deflate and Zstd streams are self-describing and
// terminate at their own end marker regardless of what expectedLen says.
func Decompress(data []byte, method Method, expectedLen int64) ([]byte, error) {
	switch method {
	case MethodNone:
		return cloneBytes(data), nil
	case MethodDeflate:
		return decompressDeflate(data, expectedLen)
	case MethodZstd:
		return decompressZstd(data, expectedLen)
	default:
		return nil, ErrInvalidMethod
	}
}

func cloneBytes(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

func compressDeflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressFailed, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("%w: %v", ErrCompressFailed, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressFailed, err)
	}
	return buf.Bytes(), nil
}

func decompressDeflate(data []byte, expectedLen int64) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := readAllSized(r, expectedLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailed, err)
	}
	return out, nil
}

func compressZstd(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressFailed, err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return nil, fmt.Errorf("%w: %v", ErrCompressFailed, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressFailed, err)
	}
	return buf.Bytes(), nil
}

// zstdDecoderPool reuses zstd decoders across Decompress calls to avoid
// paying decoder setup cost on every Reader.Open.
var zstdDecoderPool = newDecoderPool()

type decoderPool struct {
	get func() (*zstd.Decoder, error)
	put func(*zstd.Decoder)
}

func newDecoderPool() *decoderPool {
	pool := make(chan *zstd.Decoder, 16)
	return &decoderPool{
		get: func() (*zstd.Decoder, error) {
			select {
			case dec := <-pool:
				return dec, nil
			default:
				return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			}
		},
		put: func(dec *zstd.Decoder) {
			select {
			case pool <- dec:
			default:
				dec.Close()
			}
		},
	}
}

func decompressZstd(data []byte, expectedLen int64) ([]byte, error) {
	dec, err := zstdDecoderPool.get()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailed, err)
	}
	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		dec.Close()
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailed, err)
	}
	out, err := readAllSized(dec, expectedLen)
	if err != nil {
		dec.Close()
		return nil, fmt.Errorf("%w: %v", ErrDecompressFailed, err)
	}
	zstdDecoderPool.put(dec)
	return out, nil
}

// readAllSized reads r to completion, pre-sizing the buffer from hint when
// it looks like a plausible byte count.
func readAllSized(r io.Reader, hint int64) ([]byte, error) {
	if hint <= 0 || hint > 1<<30 {
		return io.ReadAll(r)
	}
	buf := bytes.NewBuffer(make([]byte, 0, hint))
	_, err := buf.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
