// Package compat exposes a knnlite index through the boolean contract used
// by language bindings: every operation reports success as a bool and every
// failure is logged as an operator diagnostic instead of returned.
package compat

import (
	"context"

	"github.com/hupe1980/knnlite"
)

// Searcher adapts a knnlite.Index to the boolean contract.
type Searcher struct {
	idx    knnlite.Index
	logger *knnlite.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger that receives failure diagnostics.
func WithLogger(l *knnlite.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// New wraps idx.
func New(idx knnlite.Index, optFns ...Option) *Searcher {
	s := &Searcher{
		idx:    idx,
		logger: knnlite.NewLogger(nil),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(s)
		}
	}
	return s
}

// Open creates the index selected by opts and wraps it.
func Open(opts []knnlite.Option, optFns ...Option) (*Searcher, error) {
	idx, err := knnlite.Open(opts...)
	if err != nil {
		return nil, err
	}
	return New(idx, optFns...), nil
}

// Init resets the index to an empty store of dimension dim.
func (s *Searcher) Init(dim int32) bool {
	if err := s.idx.Initialize(context.Background(), int(dim)); err != nil {
		s.logger.Error("init failed", "dimension", dim, "error", err)
		return false
	}
	return true
}

// AddVectors appends len(ids) vectors of width dim. Nothing is added on failure.
func (s *Searcher) AddVectors(ids []int64, vectors []float32, dim int32) bool {
	if _, err := s.idx.Add(context.Background(), ids, vectors, int(dim)); err != nil {
		s.logger.Error("add vectors failed", "ids", len(ids), "values", len(vectors), "dimension", dim, "error", err)
		return false
	}
	return true
}

// Search returns up to k ids nearest first. The result is never nil.
func (s *Searcher) Search(query []float32, k int32) []int64 {
	ids, err := s.idx.Search(context.Background(), query, int(k))
	if err != nil {
		s.logger.Error("search failed", "k", k, "error", err)
		return []int64{}
	}
	if ids == nil {
		return []int64{}
	}
	return ids
}

// SaveIndex writes a snapshot to path.
func (s *Searcher) SaveIndex(path string) bool {
	if err := s.idx.Save(context.Background(), path); err != nil {
		s.logger.Error("save index failed", "path", path, "error", err)
		return false
	}
	return true
}

// LoadIndex replaces the index with the snapshot at path. The index is
// unchanged on failure.
func (s *Searcher) LoadIndex(path string) bool {
	if err := s.idx.Load(context.Background(), path); err != nil {
		s.logger.Error("load index failed", "path", path, "error", err)
		return false
	}
	return true
}

// Close releases the wrapped index.
func (s *Searcher) Close() error {
	return s.idx.Close()
}
