package knnlite

import (
	"errors"
	"fmt"

	"github.com/hupe1980/knnlite/internal/resource"
	"github.com/hupe1980/knnlite/internal/store"
	"github.com/hupe1980/knnlite/persistence"
)

var (
	// ErrConfiguration is returned for invalid options or an operation that
	// the engine's current configuration cannot serve.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotInitialized is returned by Add, Search and Save before the first
	// Initialize or Load. It matches ErrConfiguration.
	ErrNotInitialized = fmt.Errorf("%w: engine not initialized", ErrConfiguration)

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("engine closed")

	// ErrBackendUnavailable is returned when the requested backend is not
	// built into this binary.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrMemoryLimitExceeded is returned when an Add or Load would grow the
	// store past the configured memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrIO is returned when a snapshot cannot be opened, read or written.
	ErrIO = persistence.ErrIO

	// ErrCorruptHeader is returned when a snapshot header is invalid.
	ErrCorruptHeader = persistence.ErrCorruptHeader

	// ErrTruncatedData is returned when a snapshot is shorter than its header declares.
	ErrTruncatedData = persistence.ErrTruncatedData

	// ErrChecksumMismatch is returned when a v1 snapshot body fails verification.
	ErrChecksumMismatch = persistence.ErrChecksumMismatch
)

// ErrDimensionMismatch indicates a batch dimension that differs from the engine's.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrLengthMismatch indicates len(ids)*dim != len(vectors).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrLengthMismatch struct {
	IDs     int
	Vectors int
	Dim     int
	cause   error
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("length mismatch: %d ids with dimension %d, got %d values", e.IDs, e.Dim, e.Vectors)
}

func (e *ErrLengthMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *store.DimensionMismatchError
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var lm *store.LengthMismatchError
	if errors.As(err, &lm) {
		return &ErrLengthMismatch{IDs: lm.IDs, Vectors: lm.Vectors, Dim: lm.Dim, cause: err}
	}

	if errors.Is(err, store.ErrInvalidDimension) ||
		errors.Is(err, persistence.ErrInvalidSnapshot) ||
		errors.Is(err, persistence.ErrInvalidOptions) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return err
}
