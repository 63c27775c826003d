package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Encode writes s to w and returns the number of bytes written.
// Write failures are reported as ErrIO.
func Encode(w io.Writer, s Snapshot, opts EncodeOptions) (int64, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if err := s.validate(); err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w}

	var err error
	if opts.Format == FormatV1 {
		err = encodeV1(cw, s, opts.Compression)
	} else {
		err = encodeV0(cw, s)
	}
	if err != nil {
		return cw.n, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return cw.n, nil
}

func encodeV0(w io.Writer, s Snapshot) error {
	hdr := make([]byte, 0, v0HeaderSize)
	hdr = binary.NativeEndian.AppendUint32(hdr, uint32(int32(s.Dim)))
	hdr = binary.NativeEndian.AppendUint64(hdr, uint64(len(s.IDs)))

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	return writeBody(w, s)
}

func encodeV1(w io.Writer, s Snapshot, c Compression) error {
	var (
		payload     bytes.Buffer
		payloadSize int64
		crc         uint32
	)

	if c == CompressionNone {
		payloadSize = int64(len(s.IDs))*idSize + int64(len(s.Vectors))*valueSize
	} else {
		zw, err := newCompressor(&payload, c)
		if err != nil {
			return err
		}
		cw := NewChecksumWriter(zw)
		if err := writeBody(cw, s); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		crc = cw.Sum()
		payloadSize = int64(payload.Len())
	}

	hdr := make([]byte, 0, v1HeaderSize)
	hdr = binary.NativeEndian.AppendUint32(hdr, uint32(int32(s.Dim)))
	hdr = binary.NativeEndian.AppendUint32(hdr, versionTag)
	hdr = append(hdr, byte(c), 0, 0, 0)
	hdr = binary.NativeEndian.AppendUint64(hdr, uint64(len(s.IDs)))
	hdr = binary.NativeEndian.AppendUint64(hdr, uint64(payloadSize))

	if _, err := w.Write(hdr); err != nil {
		return err
	}

	if c == CompressionNone {
		cw := NewChecksumWriter(w)
		if err := writeBody(cw, s); err != nil {
			return err
		}
		crc = cw.Sum()
	} else if _, err := payload.WriteTo(w); err != nil {
		return err
	}

	_, err := w.Write(binary.NativeEndian.AppendUint32(nil, crc))
	return err
}

func writeBody(w io.Writer, s Snapshot) error {
	if _, err := w.Write(asBytes(s.IDs)); err != nil {
		return err
	}
	_, err := w.Write(asBytes(s.Vectors))
	return err
}

// Decode reads a v0 or v1 snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	return decodeBody(r, h)
}

// ReadHeader reads and validates a snapshot header, leaving r positioned at
// the body.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [v1HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:v0HeaderSize]); err != nil {
		return Header{}, headerError(err)
	}

	h := Header{Dim: int(int32(binary.NativeEndian.Uint32(buf[0:4])))}

	if binary.NativeEndian.Uint32(buf[4:8]) == versionTag {
		if _, err := io.ReadFull(r, buf[v0HeaderSize:]); err != nil {
			return Header{}, headerError(err)
		}
		h.Format = FormatV1
		h.Compression = Compression(buf[8])
		h.Count = int64(binary.NativeEndian.Uint64(buf[12:20]))
		h.PayloadSize = int64(binary.NativeEndian.Uint64(buf[20:28]))
	} else {
		h.Format = FormatV0
		h.Count = int64(binary.NativeEndian.Uint64(buf[4:12]))
	}

	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func decodeBody(r io.Reader, h Header) (*Snapshot, error) {
	if h.Format == FormatV0 {
		s, err := readRecords(r, h)
		if err != nil {
			return nil, bodyError(err)
		}
		return s, nil
	}

	payload := io.LimitReader(r, h.PayloadSize)

	src := payload
	if h.Compression != CompressionNone {
		dec, release, err := newDecompressor(payload, h.Compression)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrChecksumMismatch, err)
		}
		defer release()
		src = dec
	}

	cr := NewChecksumReader(src)
	s, err := readRecords(cr, h)
	if err != nil {
		if h.Compression != CompressionNone && !isShortRead(err) {
			// The stream decoded to garbage.
			return nil, fmt.Errorf("%w: %w", ErrChecksumMismatch, err)
		}
		return nil, bodyError(err)
	}

	if _, err := io.Copy(io.Discard, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	var sum [checksumSize]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return nil, bodyError(err)
	}
	if err := cr.Verify(binary.NativeEndian.Uint32(sum[:])); err != nil {
		return nil, err
	}
	return s, nil
}

func readRecords(r io.Reader, h Header) (*Snapshot, error) {
	n := int(h.Count)

	ids, err := readSlice[int64](r, n)
	if err != nil {
		return nil, err
	}
	vectors, err := readSlice[float32](r, n*h.Dim)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Dim: h.Dim, IDs: ids, Vectors: vectors}, nil
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func headerError(err error) error {
	if isShortRead(err) {
		return fmt.Errorf("%w: short header", ErrCorruptHeader)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

func bodyError(err error) error {
	if isShortRead(err) {
		return fmt.Errorf("%w: %w", ErrTruncatedData, err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
