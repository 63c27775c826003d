package persistence

import (
	"fmt"
	"math"
	"strings"
)

// Format selects the snapshot layout.
type Format uint8

const (
	// FormatV0 is the raw layout without version, compression or checksum.
	FormatV0 Format = iota
	// FormatV1 adds a version tag, optional compression and a CRC32.
	FormatV1
)

func (f Format) String() string {
	switch f {
	case FormatV0:
		return "v0"
	case FormatV1:
		return "v1"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat parses "v0" or "v1".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v0", "0", "raw":
		return FormatV0, nil
	case "v1", "1":
		return FormatV1, nil
	}
	return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidOptions, s)
}

// Compression selects how the v1 payload is stored.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionLZ4
}

// ParseCompression parses "none", "zstd" or "lz4".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	}
	return 0, fmt.Errorf("%w: unknown compression %q", ErrInvalidOptions, s)
}

const (
	// versionTag is "KNL" followed by the layout version.
	versionTag uint32 = 0x4B4E4C01

	// v0HeaderSize is dim + count.
	v0HeaderSize = 4 + 8
	// v1HeaderSize is dim + tag + compression + reserved + count + payload size.
	v1HeaderSize = 4 + 4 + 1 + 3 + 8 + 8
	// checksumSize is the trailing CRC32 of v1.
	checksumSize = 4

	idSize    = 8
	valueSize = 4
)

// Header describes a snapshot without its records.
type Header struct {
	Format      Format
	Compression Compression
	Dim         int
	Count       int64
	// PayloadSize is the stored payload length (v1 only).
	PayloadSize int64
}

// Size returns the number of header bytes.
func (h Header) Size() int64 {
	if h.Format == FormatV1 {
		return v1HeaderSize
	}
	return v0HeaderSize
}

// BodySize returns the uncompressed size of ids and vectors in bytes.
func (h Header) BodySize() int64 {
	return h.Count * (idSize + int64(h.Dim)*valueSize)
}

// FileSize returns the total snapshot size implied by the header, or -1 if
// it cannot be known without decompressing.
func (h Header) FileSize() int64 {
	switch h.Format {
	case FormatV1:
		return v1HeaderSize + h.PayloadSize + checksumSize
	default:
		return v0HeaderSize + h.BodySize()
	}
}

// validate checks dim, count and compression and that the body size fits
// in memory on this platform.
func (h Header) validate() error {
	if h.Dim <= 0 || int64(h.Dim) > math.MaxInt32 {
		return fmt.Errorf("%w: dimension %d", ErrCorruptHeader, h.Dim)
	}
	if h.Count < 0 {
		return fmt.Errorf("%w: count %d", ErrCorruptHeader, h.Count)
	}
	if !h.Compression.valid() {
		return fmt.Errorf("%w: compression %d", ErrCorruptHeader, uint8(h.Compression))
	}

	rowBytes := idSize + int64(h.Dim)*valueSize
	if h.Count > math.MaxInt64/rowBytes || h.Count > int64(math.MaxInt/h.Dim) {
		return fmt.Errorf("%w: %d rows of dimension %d overflow", ErrCorruptHeader, h.Count, h.Dim)
	}

	if h.Format == FormatV1 {
		if h.PayloadSize < 0 || h.PayloadSize > math.MaxInt64-v1HeaderSize-checksumSize {
			return fmt.Errorf("%w: payload size %d", ErrCorruptHeader, h.PayloadSize)
		}
		if h.Compression == CompressionNone && h.PayloadSize != h.BodySize() {
			return fmt.Errorf("%w: payload size %d, expected %d", ErrCorruptHeader, h.PayloadSize, h.BodySize())
		}
	}
	return nil
}

// Snapshot is the content of a vector store.
type Snapshot struct {
	Dim     int
	IDs     []int64
	Vectors []float32
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.IDs)
}

func (s *Snapshot) validate() error {
	if s.Dim <= 0 || int64(s.Dim) > math.MaxInt32 {
		return fmt.Errorf("%w: dimension %d", ErrInvalidSnapshot, s.Dim)
	}
	if len(s.IDs) > math.MaxInt/s.Dim || len(s.IDs)*s.Dim != len(s.Vectors) {
		return fmt.Errorf("%w: %d ids with dimension %d, %d values", ErrInvalidSnapshot, len(s.IDs), s.Dim, len(s.Vectors))
	}
	return nil
}

// EncodeOptions controls Encode.
type EncodeOptions struct {
	Format      Format
	Compression Compression
}

// Validate reports whether the options can be encoded.
func (o EncodeOptions) Validate() error {
	if o.Format > FormatV1 {
		return fmt.Errorf("%w: format %s", ErrInvalidOptions, o.Format)
	}
	if !o.Compression.valid() {
		return fmt.Errorf("%w: compression %s", ErrInvalidOptions, o.Compression)
	}
	if o.Format == FormatV0 && o.Compression != CompressionNone {
		return fmt.Errorf("%w: %s compression requires format v1", ErrInvalidOptions, o.Compression)
	}
	return nil
}
