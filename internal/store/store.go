package store

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/knnlite/internal/resource"
)

const (
	idBytes    = 8
	valueBytes = 4
)

// View is a read-only view of the store contents.
// It aliases the store's arrays and is valid until the next mutation.
type View struct {
	Dim     int
	IDs     []int64
	Vectors []float32
}

// Len returns the number of records in the view.
func (v View) Len() int {
	return len(v.IDs)
}

// Row returns the vector of record i.
func (v View) Row(i int) []float32 {
	return v.Vectors[i*v.Dim : (i+1)*v.Dim : (i+1)*v.Dim]
}

// Store is an append-only collection of (id, vector) records sharing one dimension.
type Store struct {
	dim      int
	ids      []int64
	vectors  []float32
	distinct *roaring64.Bitmap // uint64(id) of every record

	rc       *resource.Controller
	reserved int64
}

// New creates an empty store with dimension dim. rc may be nil, in which
// case memory is neither tracked nor limited.
func New(dim int, rc *resource.Controller) *Store {
	return &Store{dim: dim, rc: rc, distinct: roaring64.New()}
}

// Reset discards all records and sets the dimension.
func (s *Store) Reset(dim int) {
	s.rc.ReleaseMemory(s.reserved)
	s.reserved = 0
	s.dim = dim
	s.ids = nil
	s.vectors = nil
	s.distinct = roaring64.New()
}

// Append adds len(ids) records. vectors holds the rows back to back.
// Either every record is appended or, on error, none is.
func (s *Store) Append(ids []int64, vectors []float32, dim int) (int, error) {
	if dim != s.dim {
		return 0, &DimensionMismatchError{Expected: s.dim, Actual: dim}
	}
	if err := checkLengths(len(ids), len(vectors), dim); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if dim <= 0 {
		return 0, ErrInvalidDimension
	}

	grow := sizeBytes(len(ids), len(vectors))
	if err := s.rc.AcquireMemory(grow); err != nil {
		return 0, err
	}
	s.reserved += grow

	s.ids = append(s.ids, ids...)
	s.vectors = append(s.vectors, vectors...)
	addIDs(s.distinct, ids)
	return len(ids), nil
}

// Replace swaps in a new dimension and record set. The store takes
// ownership of ids and vectors. On error the store is unchanged.
func (s *Store) Replace(dim int, ids []int64, vectors []float32) error {
	if err := checkLengths(len(ids), len(vectors), dim); err != nil {
		return err
	}

	size := sizeBytes(len(ids), len(vectors))
	if err := s.rc.ResizeMemory(s.reserved, size); err != nil {
		return err
	}
	s.reserved = size

	distinct := roaring64.New()
	addIDs(distinct, ids)

	s.dim = dim
	s.ids = ids
	s.vectors = vectors
	s.distinct = distinct
	return nil
}

// View returns a read-only view of the records.
func (s *Store) View() View {
	return View{Dim: s.dim, IDs: s.ids, Vectors: s.vectors}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.ids)
}

// Dim returns the dimension.
func (s *Store) Dim() int {
	return s.dim
}

// DistinctIDs returns the number of different ids stored. It is maintained
// on every mutation, so the call is cheap.
func (s *Store) DistinctIDs() uint64 {
	return s.distinct.GetCardinality()
}

// SizeBytes returns the payload size of ids and vectors in bytes.
func (s *Store) SizeBytes() int64 {
	return sizeBytes(len(s.ids), len(s.vectors))
}

func checkLengths(n, values, dim int) error {
	if dim > 0 && n > math.MaxInt/dim {
		return &LengthMismatchError{IDs: n, Vectors: values, Dim: dim}
	}
	if n*dim != values {
		return &LengthMismatchError{IDs: n, Vectors: values, Dim: dim}
	}
	return nil
}

func addIDs(b *roaring64.Bitmap, ids []int64) {
	for _, id := range ids {
		b.Add(uint64(id))
	}
}

func sizeBytes(n, values int) int64 {
	return int64(n)*idBytes + int64(values)*valueBytes
}
