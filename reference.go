package vecdist

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecdist/internal/mem"
)

// Tile shape of the reference dispatch. Purely a scheduling detail: the
// result is identical to a flat loop over all m*n cells.
const (
	refTileM = 16
	refTileN = 32
)

// ComputeReference computes the m×n pairwise distance matrix between the
// row-major vector sets x (m×k) and y (n×k) under the given metric.
//
// Conceptually one independent task runs per output cell: it reads row i of
// x and row j of y, reduces over k via the metric formula, and writes
// exactly one scalar at i*n+j. Tasks share no mutable state, so execution
// order is unobservable. x and y are only read and may be shared with
// concurrent readers.
//
// The matrix is freshly allocated per call. Passing a metric outside the
// catalog is a programming error and panics.
func ComputeReference(ctx context.Context, x, y []float32, m, n, k int, metric Metric) ([]float32, error) {
	if m <= 0 || n <= 0 || k <= 0 {
		return nil, fmt.Errorf("%w: m=%d n=%d k=%d must be positive", ErrInvalidConfig, m, n, k)
	}
	if len(x) < m*k || len(y) < n*k {
		return nil, fmt.Errorf("%w: x has %d values, need %d; y has %d, need %d",
			ErrInvalidConfig, len(x), m*k, len(y), n*k)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fn, err := Provider(metric)
	if err != nil {
		panic(fmt.Sprintf("vecdist: %v", err))
	}

	out := mem.AllocAlignedFloat32(m * n)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for ti := 0; ti < m; ti += refTileM {
		for tj := 0; tj < n; tj += refTileN {
			ti, tj := ti, tj
			g.Go(func() error {
				iEnd := min(ti+refTileM, m)
				jEnd := min(tj+refTileN, n)
				for i := ti; i < iEnd; i++ {
					xi := x[i*k : (i+1)*k]
					row := out[i*n : (i+1)*n]
					for j := tj; j < jEnd; j++ {
						row[j] = fn(xi, y[j*k:(j+1)*k])
					}
				}
				return nil
			})
		}
	}

	// Tile tasks cannot fail; Wait only synchronizes.
	_ = g.Wait()

	return out, nil
}
