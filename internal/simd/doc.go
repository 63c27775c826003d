// Package simd provides the squared L2 distance kernels used by the scanner.
//
// # Kernels
//
// Each ISA maps to a lane-blocked kernel that keeps one partial sum per
// register lane, reduces the lanes, and finishes the tail with a scalar loop:
//
//   - x86-64: AVX-512 (16 lanes), AVX2 (8 lanes)
//   - ARM64: NEON, SVE2 (4 lanes)
//   - Generic: sequential scalar loop
//
// Runtime CPU feature detection selects the widest supported shape.
// Set KNNLITE_SIMD=generic (or another ISA name) to force a kernel.
//
// Lane kernels reorder the float32 additions, so results differ from the
// sequential loop by rounding only.
package simd
