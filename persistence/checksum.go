package persistence

import (
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// ChecksumWriter forwards writes to w and keeps a CRC32-IEEE of every byte
// w accepted. v1 snapshots store this sum after the body; it detects
// accidental corruption only.
type ChecksumWriter struct {
	w    io.Writer
	hash hash.Hash32
}

// NewChecksumWriter returns a ChecksumWriter over w.
func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{
		w:    w,
		hash: crc32.NewIEEE(),
	}
}

// Write implements io.Writer.
func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	// Only bytes accepted downstream count.
	_, _ = cw.hash.Write(p[:n])
	return n, err
}

// Sum returns the CRC32 of the bytes written so far.
func (cw *ChecksumWriter) Sum() uint32 {
	return cw.hash.Sum32()
}

// ChecksumReader keeps a CRC32-IEEE of every byte read through it.
type ChecksumReader struct {
	r    io.Reader
	hash hash.Hash32
}

// NewChecksumReader returns a ChecksumReader over r.
func NewChecksumReader(r io.Reader) *ChecksumReader {
	return &ChecksumReader{
		r:    r,
		hash: crc32.NewIEEE(),
	}
}

// Read implements io.Reader.
func (cr *ChecksumReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		_, _ = cr.hash.Write(p[:n])
	}
	return n, err
}

// Sum returns the CRC32 of the bytes read so far.
func (cr *ChecksumReader) Sum() uint32 {
	return cr.hash.Sum32()
}

// Verify compares the sum of everything read so far with the stored one.
func (cr *ChecksumReader) Verify(stored uint32) error {
	if actual := cr.Sum(); actual != stored {
		return &ChecksumMismatchError{Expected: stored, Actual: actual}
	}
	return nil
}

// ChecksumMismatchError is returned when checksum verification fails.
// It matches ErrChecksumMismatch with errors.Is.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("%s: expected 0x%08x, got 0x%08x", ErrChecksumMismatch, e.Expected, e.Actual)
}

// Is reports whether target is ErrChecksumMismatch.
func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
