package store

import (
	"errors"
	"fmt"
)

// ErrInvalidDimension is returned when records are appended to a store whose
// dimension is not positive.
var ErrInvalidDimension = errors.New("store dimension must be positive")

// DimensionMismatchError is returned when a batch dimension differs from the store's.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// LengthMismatchError is returned when len(ids)*dim != len(vectors).
type LengthMismatchError struct {
	IDs     int
	Vectors int
	Dim     int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("length mismatch: %d ids with dimension %d need %d values, got %d",
		e.IDs, e.Dim, e.IDs*e.Dim, e.Vectors)
}
