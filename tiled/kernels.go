package tiled

// Fused accumulation kernels for the unexpanded metrics. Four independent
// accumulators keep the FP dependency chains short enough for the hardware
// to overlap.
//
// SAFETY: kernels assume len(a) == len(b). Callers MUST ensure lengths match.

func squaredL2Unrolled(a, b []float32) float32 {
	var acc0, acc1, acc2, acc3 float32

	i := 0
	for ; i+4 <= len(a); i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		acc0 += d0 * d0
		acc1 += d1 * d1
		acc2 += d2 * d2
		acc3 += d3 * d3
	}
	for ; i < len(a); i++ {
		d := a[i] - b[i]
		acc0 += d * d
	}

	return (acc0 + acc1) + (acc2 + acc3)
}

func l1Unrolled(a, b []float32) float32 {
	var acc0, acc1, acc2, acc3 float32

	i := 0
	for ; i+4 <= len(a); i += 4 {
		acc0 += condDiff(a[i], b[i])
		acc1 += condDiff(a[i+1], b[i+1])
		acc2 += condDiff(a[i+2], b[i+2])
		acc3 += condDiff(a[i+3], b[i+3])
	}
	for ; i < len(a); i++ {
		acc0 += condDiff(a[i], b[i])
	}

	return (acc0 + acc1) + (acc2 + acc3)
}

// condDiff is |a-b| by conditional subtraction, mirroring the reference
// formula term for term.
func condDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
