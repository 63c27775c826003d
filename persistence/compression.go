package persistence

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// newCompressor wraps w with a stream compressor. Close flushes the stream.
func newCompressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrInvalidOptions, c)
	}
}

// newDecompressor wraps r with a stream decompressor. The returned release
// func frees decoder resources.
func newDecompressor(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionZstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: compression %d", ErrCorruptHeader, uint8(c))
	}
}
