package distance

import (
	"github.com/hupe1980/knnlite/internal/simd"
)

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	return simd.SquaredL2(a, b)
}

// SquaredL2Batch calculates squared L2 distances from query to each
// dim-wide row of targets, writing one result per row into out.
func SquaredL2Batch(query, targets []float32, dim int, out []float32) {
	simd.SquaredL2Batch(query, targets, dim, out)
}

// Kernel is a squared L2 implementation with a fixed lane width.
type Kernel interface {
	// Name is the ISA the kernel is shaped for ("generic", "neon", "avx2", ...).
	Name() string
	// Lanes is the number of partial sums kept per batch (1 for scalar).
	Lanes() int
	// SquaredL2 computes the squared L2 distance of equal-length vectors.
	SquaredL2(a, b []float32) float32
}

type kernel struct {
	isa simd.ISA
}

func (k kernel) Name() string { return k.isa.String() }

func (k kernel) Lanes() int { return k.isa.Lanes() }

func (k kernel) SquaredL2(a, b []float32) float32 { return simd.SquaredL2With(k.isa, a, b) }

// Default returns the kernel selected for this CPU (or forced via KNNLITE_SIMD).
func Default() Kernel {
	return kernel{isa: simd.ActiveISA()}
}

// Scalar returns the sequential fallback kernel. It is always available.
func Scalar() Kernel {
	return kernel{isa: simd.Generic}
}

// ByName returns the kernel for an ISA name. Every kernel is portable Go,
// so a kernel can be used on CPUs that lack the ISA it is shaped for.
func ByName(name string) (Kernel, bool) {
	isa, ok := simd.ParseISA(name)
	if !ok {
		return nil, false
	}
	return kernel{isa: isa}, true
}

// Capability describes one ISA and whether this CPU supports it.
type Capability struct {
	Name      string
	Lanes     int
	Supported bool
	Active    bool
}

// Capabilities lists every known ISA with CPU support and the active choice.
func Capabilities() []Capability {
	active := simd.ActiveISA()
	isas := simd.ISAs()
	out := make([]Capability, 0, len(isas))
	for _, isa := range isas {
		out = append(out, Capability{
			Name:      isa.String(),
			Lanes:     isa.Lanes(),
			Supported: simd.Available(isa),
			Active:    isa == active,
		})
	}
	return out
}
