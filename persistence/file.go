package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const bufferSize = 256 * 1024

// SaveFile writes s to path. The snapshot is written to a temporary file in
// the same directory, synced and renamed over path, so readers never see a
// partially written file.
func SaveFile(path string, s Snapshot, opts EncodeOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := s.validate(); err != nil {
		return err
	}

	return saveToFile(path, func(w io.Writer) error {
		_, err := Encode(w, s, opts)
		return err
	})
}

func saveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0o644)

	buf := bufio.NewWriterSize(tmp, bufferSize)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	tmpName = ""
	return nil
}

// LoadFile reads a snapshot from path. A header that declares more bytes
// than the file holds fails with ErrTruncatedData before any record is
// allocated.
func LoadFile(path string) (*Snapshot, error) {
	f, br, h, size, err := openSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if want := h.FileSize(); want > size {
		return nil, fmt.Errorf("%w: header declares %d bytes, file has %d", ErrTruncatedData, want, size)
	}
	return decodeBody(br, h)
}

// FileInfo describes a snapshot file.
type FileInfo struct {
	Header
	Path string
	Size int64
}

// Stat reads the header of the snapshot at path.
func Stat(path string) (FileInfo, error) {
	f, _, h, size, err := openSnapshot(path)
	if err != nil {
		return FileInfo{}, err
	}
	_ = f.Close()
	return FileInfo{Header: h, Path: path, Size: size}, nil
}

func openSnapshot(path string) (*os.File, *bufio.Reader, Header, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, Header{}, 0, fmt.Errorf("%w: %w", ErrIO, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, Header{}, 0, fmt.Errorf("%w: %w", ErrIO, err)
	}

	br := bufio.NewReaderSize(f, bufferSize)
	h, err := ReadHeader(br)
	if err != nil {
		_ = f.Close()
		return nil, nil, Header{}, 0, err
	}
	return f, br, h, fi.Size(), nil
}
