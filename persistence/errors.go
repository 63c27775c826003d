package persistence

import "errors"

var (
	// ErrIO is returned when a snapshot cannot be opened, read or written.
	ErrIO = errors.New("snapshot i/o error")

	// ErrCorruptHeader is returned when a snapshot header is short or
	// declares an invalid dimension, count, compression or size.
	ErrCorruptHeader = errors.New("corrupt snapshot header")

	// ErrTruncatedData is returned when a snapshot holds fewer id or vector
	// bytes than its header declares.
	ErrTruncatedData = errors.New("truncated snapshot data")

	// ErrChecksumMismatch is returned when a v1 body fails verification.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrInvalidSnapshot is returned when Encode is given an inconsistent snapshot.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInvalidOptions is returned for an unknown format or compression, or
	// compression requested for format v0.
	ErrInvalidOptions = errors.New("invalid encode options")
)
