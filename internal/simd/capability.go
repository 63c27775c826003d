package simd

import (
	"os"
	"slices"
	"strings"
)

// ISA represents a SIMD instruction set architecture.
type ISA uint8

const (
	// Generic represents the plain scalar loop.
	Generic ISA = iota
	// NEON represents ARM64 NEON (128-bit, 4 float32 lanes).
	NEON
	// SVE2 represents ARM64 SVE2. Kernels use the 128-bit minimum vector length.
	SVE2
	// AVX2 represents x86-64 AVX2 with FMA (256-bit, 8 float32 lanes).
	AVX2
	// AVX512 represents x86-64 AVX-512 Foundation (512-bit, 16 float32 lanes).
	AVX512
)

// EnvOverride names the environment variable that forces an ISA.
const EnvOverride = "KNNLITE_SIMD"

var allISAs = []ISA{Generic, NEON, SVE2, AVX2, AVX512}

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case SVE2:
		return "sve2"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// Lanes returns the number of float32 accumulators the ISA's kernel keeps.
// Generic reports 1.
func (i ISA) Lanes() int {
	switch i {
	case NEON, SVE2:
		return 4
	case AVX2:
		return 8
	case AVX512:
		return 16
	default:
		return 1
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic", "scalar":
		return Generic, true
	case "neon":
		return NEON, true
	case "sve2":
		return SVE2, true
	case "avx2":
		return AVX2, true
	case "avx512":
		return AVX512, true
	default:
		return Generic, false
	}
}

// cpuFeatures are the instruction sets the kernels are shaped for.
type cpuFeatures struct {
	neon   bool // ARM64 ASIMD
	sve2   bool
	avx2   bool // with FMA
	avx512 bool // Foundation
}

func (f cpuFeatures) supports(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return f.neon
	case SVE2:
		return f.sve2
	case AVX2:
		return f.avx2
	case AVX512:
		return f.avx512
	default:
		return false
	}
}

// best picks the widest supported kernel. SVE2 kernels use the 128-bit
// minimum, so NEON wins whenever both exist.
func (f cpuFeatures) best() ISA {
	for _, isa := range []ISA{AVX512, AVX2, NEON, SVE2} {
		if f.supports(isa) {
			return isa
		}
	}
	return Generic
}

// Set by init before any other package code runs.
var (
	features    cpuFeatures
	activeISA   ISA
	hasOverride bool
)

func init() {
	features = detectFeatures()
	activeISA, hasOverride = chooseISA(features, os.Getenv(EnvOverride))
	squaredL2Impl = kernelFor(activeISA)
}

// chooseISA returns the best ISA for f, or the ISA named by override when
// it parses and f supports it.
func chooseISA(f cpuFeatures, override string) (ISA, bool) {
	if override != "" {
		if isa, ok := ParseISA(override); ok && f.supports(isa) {
			return isa, true
		}
	}
	return f.best(), false
}

// ActiveISA returns the currently active ISA.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden reports whether KNNLITE_SIMD selected the active ISA.
func IsOverridden() bool {
	return hasOverride
}

// Available reports whether the CPU supports isa.
func Available(isa ISA) bool {
	return features.supports(isa)
}

// ISAs returns every ISA known to the package, available or not.
func ISAs() []ISA {
	return slices.Clone(allISAs)
}
