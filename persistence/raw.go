package persistence

import (
	"io"
	"slices"
	"unsafe"
)

// readChunk bounds how many elements are allocated ahead of the bytes that
// back them, so a corrupt count cannot trigger one huge allocation.
const readChunk = 1 << 16

type element interface {
	~int64 | ~float32
}

// asBytes returns the in-memory (native byte order) representation of s.
func asBytes[T element](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

// readSlice reads n native-order elements from r.
func readSlice[T element](r io.Reader, n int) ([]T, error) {
	out := make([]T, 0, min(n, readChunk))
	for len(out) < n {
		start := len(out)
		m := min(n-start, readChunk)
		out = slices.Grow(out, m)[:start+m]
		if _, err := io.ReadFull(r, asBytes(out[start:])); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
