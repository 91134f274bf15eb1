package vecdist

import "context"

// FinalizeFunc post-processes a computed distance value before it is stored.
// It receives the raw value and its flat index into the output matrix and
// returns the value to store. Candidates must invoke it exactly once per
// cell.
type FinalizeFunc func(value float32, idx int) float32

// ThresholdFinalizer is a finalization policy that passes raw values
// through unchanged while writing a thresholded copy into Dst: values below
// Threshold are recorded as 0.
//
// It is an explicit function object so it can be carried by value into a
// computation; its only side effect is the write into the caller-owned Dst
// buffer.
type ThresholdFinalizer struct {
	Threshold float32
	Dst       []float32
}

// Apply implements the FinalizeFunc contract.
func (f *ThresholdFinalizer) Apply(value float32, idx int) float32 {
	if value < f.Threshold {
		f.Dst[idx] = 0
	} else {
		f.Dst[idx] = value
	}
	return value
}

// Candidate is a performance-optimized pairwise distance implementation
// under differential validation against the reference engine.
type Candidate interface {
	// WorkspaceSize reports the scratch bytes Distance needs for the given
	// problem shape. It is a pure query with no side effects; zero is a
	// valid answer and means no scratch is needed.
	WorkspaceSize(m, n, k int, metric Metric) int

	// Distance computes the m×n distance matrix between the row-major
	// vector sets x (m×k) and y (n×k) into out, applying fin to every cell.
	// workspace must have exactly the length WorkspaceSize reports for the
	// same arguments. A nil fin is treated as identity. The call is
	// synchronous: when it returns, out holds the full matrix or err
	// explains the failure.
	Distance(ctx context.Context, x, y, out []float32, m, n, k int, metric Metric, workspace []byte, fin FinalizeFunc) error
}
