package knnlite

import (
	"context"
	"fmt"
)

// Index is the contract shared by every search backend.
type Index interface {
	Initialize(ctx context.Context, dim int) error
	Add(ctx context.Context, ids []int64, vectors []float32, dim int) (int, error)
	Search(ctx context.Context, query []float32, k int) ([]int64, error)
	Save(ctx context.Context, path string) error
	Load(ctx context.Context, path string) error
	Close() error
}

var _ Index = (*Engine)(nil)

// Backend identifies a search strategy.
type Backend int

const (
	// BackendExact is the brute-force engine. It is always available.
	BackendExact Backend = iota
	// BackendANN is an approximate graph index. It is not built into this
	// module and always reports itself as unavailable.
	BackendANN
)

func (b Backend) String() string {
	switch b {
	case BackendExact:
		return "exact"
	case BackendANN:
		return "ann"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend parses "exact" or "ann".
func ParseBackend(s string) (Backend, error) {
	for _, b := range allBackends {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown backend %q", ErrConfiguration, s)
}

type backendFactory func(o options) (Index, error)

var (
	allBackends = []Backend{BackendExact, BackendANN}

	// registry holds the backends compiled into this binary.
	registry = map[Backend]backendFactory{
		BackendExact: func(o options) (Index, error) {
			return newEngine(o), nil
		},
	}
)

// BackendInfo describes one backend.
type BackendInfo struct {
	Backend   Backend
	Name      string
	Available bool
}

// Backends lists every known backend and whether it can be opened.
func Backends() []BackendInfo {
	out := make([]BackendInfo, 0, len(allBackends))
	for _, b := range allBackends {
		out = append(out, BackendInfo{Backend: b, Name: b.String(), Available: BackendAvailable(b)})
	}
	return out
}

// BackendAvailable reports whether Open can create b.
func BackendAvailable(b Backend) bool {
	_, ok := registry[b]
	return ok
}

// Open creates the backend selected by WithBackend (BackendExact by default).
// An unavailable backend fails with ErrBackendUnavailable.
func Open(optFns ...Option) (Index, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}

	factory, ok := registry[o.backend]
	if !ok {
		return nil, unavailable(o.backend)
	}
	return factory(o)
}

func unavailable(b Backend) error {
	return fmt.Errorf("%w: %s", ErrBackendUnavailable, b)
}
