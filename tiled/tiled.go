// Package tiled implements the performance-oriented pairwise distance
// engine validated by the vecdist harness.
//
// Expanded metrics precompute per-row norms into the caller-provisioned
// workspace and reduce each cell to a single SIMD dot product. Unexpanded
// metrics run fused, unrolled accumulation kernels and need no scratch.
// Output is produced in row blocks dispatched across GOMAXPROCS workers.
package tiled

import (
	"context"
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"github.com/viterin/vek/vek32"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecdist"
	"github.com/hupe1980/vecdist/internal/mem"
)

// blockRows is the row-block height per scheduled task.
const blockRows = 8

// Engine is an optimized vecdist.Candidate.
type Engine struct{}

// New creates an Engine.
func New() *Engine {
	return &Engine{}
}

var _ vecdist.Candidate = (*Engine)(nil)

// Acceleration reports the widest SIMD level available to the expanded
// kernels.
func Acceleration() string {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return "avx512"
	case cpuid.CPU.Supports(cpuid.AVX2):
		return "avx2"
	case runtime.GOARCH == "arm64":
		return "neon"
	default:
		return "generic"
	}
}

// Acceleration implements the optional capability report used by the
// harness for case logging.
func (e *Engine) Acceleration() string {
	return Acceleration()
}

// WorkspaceSize reports the scratch bytes Distance needs: expanded metrics
// cache one norm per row of x and y, unexpanded metrics need none.
func (e *Engine) WorkspaceSize(m, n, k int, metric vecdist.Metric) int {
	switch metric {
	case vecdist.MetricSquaredL2Expanded, vecdist.MetricL2Expanded, vecdist.MetricCosineExpanded:
		return (m + n) * 4
	default:
		return 0
	}
}

// Distance computes the m×n distance matrix between x (m×k) and y (n×k)
// into out, applying fin to every cell. workspace must have exactly the
// length WorkspaceSize reports for the same arguments.
func (e *Engine) Distance(ctx context.Context, x, y, out []float32, m, n, k int, metric vecdist.Metric, workspace []byte, fin vecdist.FinalizeFunc) error {
	if m <= 0 || n <= 0 || k <= 0 {
		return fmt.Errorf("tiled: shape m=%d n=%d k=%d must be positive", m, n, k)
	}
	if len(x) < m*k || len(y) < n*k || len(out) < m*n {
		return fmt.Errorf("tiled: short buffer: x=%d/%d y=%d/%d out=%d/%d",
			len(x), m*k, len(y), n*k, len(out), m*n)
	}
	if want := e.WorkspaceSize(m, n, k, metric); len(workspace) != want {
		return fmt.Errorf("tiled: workspace is %d bytes, need exactly %d", len(workspace), want)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if fin == nil {
		fin = func(v float32, _ int) float32 { return v }
	}

	var cell func(xi, yj []float32, i, j int) float32

	switch metric {
	case vecdist.MetricSquaredL2Expanded, vecdist.MetricL2Expanded:
		norms := mem.Float32View(workspace)
		xn, yn := norms[:m], norms[m:m+n]
		squaredNorms(x, k, xn)
		squaredNorms(y, k, yn)
		sqrted := metric == vecdist.MetricL2Expanded
		cell = func(xi, yj []float32, i, j int) float32 {
			// ||a-b||^2 = ||a||^2 + ||b||^2 - 2<a,b>; expansion can round
			// slightly negative, clamp before use.
			d := xn[i] + yn[j] - 2*vek32.Dot(xi, yj)
			if d < 0 {
				d = 0
			}
			if sqrted {
				d = vecdist.Sqrt(d)
			}
			return d
		}

	case vecdist.MetricCosineExpanded:
		norms := mem.Float32View(workspace)
		xn, yn := norms[:m], norms[m:m+n]
		euclideanNorms(x, k, xn)
		euclideanNorms(y, k, yn)
		// Zero norms divide through unguarded, matching the reference.
		cell = func(xi, yj []float32, i, j int) float32 {
			return vek32.Dot(xi, yj) / (xn[i] * yn[j])
		}

	case vecdist.MetricSquaredL2Unexpanded, vecdist.MetricL2Unexpanded:
		sqrted := metric == vecdist.MetricL2Unexpanded
		cell = func(xi, yj []float32, _, _ int) float32 {
			d := squaredL2Unrolled(xi, yj)
			if sqrted {
				d = vecdist.Sqrt(d)
			}
			return d
		}

	case vecdist.MetricL1Unexpanded:
		cell = func(xi, yj []float32, _, _ int) float32 {
			return l1Unrolled(xi, yj)
		}

	default:
		return fmt.Errorf("tiled: %w: %v", vecdist.ErrUnsupportedMetric, metric)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for bi := 0; bi < m; bi += blockRows {
		bi := bi
		g.Go(func() error {
			iEnd := min(bi+blockRows, m)
			for i := bi; i < iEnd; i++ {
				xi := x[i*k : (i+1)*k]
				base := i * n
				for j := 0; j < n; j++ {
					v := cell(xi, y[j*k:(j+1)*k], i, j)
					out[base+j] = fin(v, base+j)
				}
			}
			return nil
		})
	}

	// Row blocks cannot fail; Wait only synchronizes.
	_ = g.Wait()

	return nil
}

// squaredNorms writes the squared L2 norm of each k-wide row of vecs into out.
func squaredNorms(vecs []float32, k int, out []float32) {
	for i := range out {
		row := vecs[i*k : (i+1)*k]
		out[i] = vek32.Dot(row, row)
	}
}

// euclideanNorms writes the L2 norm of each k-wide row of vecs into out.
func euclideanNorms(vecs []float32, k int, out []float32) {
	for i := range out {
		out[i] = vek32.Norm(vecs[i*k : (i+1)*k])
	}
}
