package simd

var squaredL2Impl = squaredL2Generic

// SquaredL2 calculates the squared L2 distance with the active kernel.
//
// SAFETY: This function assumes len(a) == len(b).
// Callers MUST ensure lengths match; b is resliced to len(a).
func SquaredL2(a, b []float32) float32 {
	return squaredL2Impl(a, b)
}

// SquaredL2With calculates the squared L2 distance with the kernel of isa,
// regardless of what the CPU supports. All kernels are portable Go.
func SquaredL2With(isa ISA, a, b []float32) float32 {
	return kernelFor(isa)(a, b)
}

// SquaredL2Batch calculates squared L2 distances from query to a batch of rows.
// targets is a flattened array of N rows, each of dimension dim.
// out must have length N (len(targets) / dim); extra slots are left untouched.
func SquaredL2Batch(query []float32, targets []float32, dim int, out []float32) {
	squaredL2BatchWith(squaredL2Impl, query, targets, dim, out)
}

func squaredL2BatchWith(fn func(a, b []float32) float32, query []float32, targets []float32, dim int, out []float32) {
	if dim <= 0 || len(out) == 0 || len(query) < dim {
		return
	}

	q := query[:dim]
	n := len(targets) / dim
	if len(out) < n {
		n = len(out)
	}

	for i := 0; i < n; i++ {
		offset := i * dim
		out[i] = fn(q, targets[offset:offset+dim])
	}
}

func kernelFor(isa ISA) func(a, b []float32) float32 {
	switch isa.Lanes() {
	case 4:
		return squaredL2Lanes4
	case 8:
		return squaredL2Lanes8
	case 16:
		return squaredL2Lanes16
	default:
		return squaredL2Generic
	}
}

func squaredL2Generic(a, b []float32) float32 {
	b = b[:len(a)]
	var distance float32
	for i := range a {
		d := a[i] - b[i]
		distance += d * d
	}
	return distance
}

// squaredL2Lanes4 matches the 128-bit register shape: four partial sums.
func squaredL2Lanes4(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}

	sum := (s0 + s1) + (s2 + s3)
	for ; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// squaredL2Lanes8 matches the 256-bit register shape: eight partial sums.
func squaredL2Lanes8(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3, s4, s5, s6, s7 float32
	i := 0
	for ; i+8 <= n; i += 8 {
		x := a[i : i+8 : i+8]
		y := b[i : i+8 : i+8]
		d0 := x[0] - y[0]
		d1 := x[1] - y[1]
		d2 := x[2] - y[2]
		d3 := x[3] - y[3]
		d4 := x[4] - y[4]
		d5 := x[5] - y[5]
		d6 := x[6] - y[6]
		d7 := x[7] - y[7]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
		s4 += d4 * d4
		s5 += d5 * d5
		s6 += d6 * d6
		s7 += d7 * d7
	}

	sum := ((s0 + s1) + (s2 + s3)) + ((s4 + s5) + (s6 + s7))
	for ; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// squaredL2Lanes16 matches the 512-bit register shape: sixteen partial sums.
func squaredL2Lanes16(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var acc [16]float32
	i := 0
	for ; i+16 <= n; i += 16 {
		x := a[i : i+16 : i+16]
		y := b[i : i+16 : i+16]
		for l := range acc {
			d := x[l] - y[l]
			acc[l] += d * d
		}
	}

	// Pairwise lane reduction, same shape as a horizontal add.
	for width := 8; width > 0; width /= 2 {
		for l := 0; l < width; l++ {
			acc[l] += acc[l+width]
		}
	}

	sum := acc[0]
	for ; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
