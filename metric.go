package vecdist

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Metric identifies a pairwise distance metric.
//
// Expanded and Unexpanded name the two computation strategies optimized
// implementations use for the same metric family (norm expansion vs direct
// accumulation). The reference formulas treat both members of a family
// identically; a candidate must produce numerically equivalent results
// whichever strategy it picks.
type Metric int

const (
	// MetricSquaredL2Expanded is the squared Euclidean distance, expanded form.
	MetricSquaredL2Expanded Metric = iota
	// MetricL2Expanded is the Euclidean distance, expanded form.
	MetricL2Expanded
	// MetricSquaredL2Unexpanded is the squared Euclidean distance, direct form.
	MetricSquaredL2Unexpanded
	// MetricL2Unexpanded is the Euclidean distance, direct form.
	MetricL2Unexpanded
	// MetricL1Unexpanded is the Manhattan distance.
	MetricL1Unexpanded
	// MetricCosineExpanded is the cosine similarity.
	MetricCosineExpanded
)

func (m Metric) String() string {
	switch m {
	case MetricSquaredL2Expanded:
		return "SquaredL2Expanded"
	case MetricL2Expanded:
		return "L2Expanded"
	case MetricSquaredL2Unexpanded:
		return "SquaredL2Unexpanded"
	case MetricL2Unexpanded:
		return "L2Unexpanded"
	case MetricL1Unexpanded:
		return "L1Unexpanded"
	case MetricCosineExpanded:
		return "CosineExpanded"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Func is a function type reducing two equal-length vectors to a scalar.
//
// SAFETY: implementations assume len(a) == len(b). They do NOT perform
// bounds checks; callers MUST ensure lengths match.
type Func func(a, b []float32) float32

// Provider returns the reference formula for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricSquaredL2Expanded, MetricSquaredL2Unexpanded:
		return SquaredL2, nil
	case MetricL2Expanded, MetricL2Unexpanded:
		return L2, nil
	case MetricL1Unexpanded:
		return L1, nil
	case MetricCosineExpanded:
		return Cosine, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMetric, m)
	}
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
func SquaredL2(a, b []float32) float32 {
	var acc float32
	for i := range a {
		diff := a[i] - b[i]
		acc += diff * diff
	}
	return acc
}

// L2 calculates the L2 (Euclidean) distance between two vectors.
func L2(a, b []float32) float32 {
	return Sqrt(SquaredL2(a, b))
}

// L1 calculates the Manhattan distance between two vectors.
// Per-element magnitudes are taken by conditional subtraction.
func L1(a, b []float32) float32 {
	var acc float32
	for i := range a {
		if a[i] > b[i] {
			acc += a[i] - b[i]
		} else {
			acc += b[i] - a[i]
		}
	}
	return acc
}

// Cosine calculates the cosine similarity between two vectors.
//
// Zero-norm inputs are not guarded: the division follows IEEE-754, so a
// zero row yields NaN or Inf. Differential validation depends on that
// behavior staying observable; do not add an epsilon here.
func Cosine(a, b []float32) float32 {
	var accA, accB, accAB float32
	for i := range a {
		accA += a[i] * a[i]
		accB += b[i] * b[i]
		accAB += a[i] * b[i]
	}
	return accAB / (Sqrt(accA) * Sqrt(accB))
}

// Sqrt returns the square root of x, or 0 when x <= 0. Squared distances
// accumulated in float32 can round slightly negative; taking the root of
// those must not produce NaN.
func Sqrt(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return math32.Sqrt(x)
}
