package tiled

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecdist"
	"github.com/hupe1980/vecdist/internal/mem"
	"github.com/hupe1980/vecdist/internal/rng"
)

var testMetrics = []vecdist.Metric{
	vecdist.MetricSquaredL2Expanded,
	vecdist.MetricL2Expanded,
	vecdist.MetricSquaredL2Unexpanded,
	vecdist.MetricL2Unexpanded,
	vecdist.MetricL1Unexpanded,
	vecdist.MetricCosineExpanded,
}

func uniformInputs(t *testing.T, seed uint64, m, n, k int) (x, y []float32) {
	t.Helper()
	r := rng.New(seed)
	x = make([]float32, m*k)
	y = make([]float32, n*k)
	r.FillUniform(x, -1.0, 1.0)
	r.FillUniform(y, -1.0, 1.0)
	return x, y
}

func TestWorkspaceSize(t *testing.T) {
	e := New()

	tests := []struct {
		metric   vecdist.Metric
		expected int
	}{
		{vecdist.MetricSquaredL2Expanded, (4 + 8) * 4},
		{vecdist.MetricL2Expanded, (4 + 8) * 4},
		{vecdist.MetricCosineExpanded, (4 + 8) * 4},
		{vecdist.MetricSquaredL2Unexpanded, 0},
		{vecdist.MetricL2Unexpanded, 0},
		{vecdist.MetricL1Unexpanded, 0},
	}

	for _, tc := range tests {
		t.Run(tc.metric.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, e.WorkspaceSize(4, 8, 32, tc.metric))
		})
	}
}

func runEngine(t *testing.T, e *Engine, x, y []float32, m, n, k int, metric vecdist.Metric, fin vecdist.FinalizeFunc) []float32 {
	t.Helper()
	out := make([]float32, m*n)
	workspace := mem.AllocAligned(e.WorkspaceSize(m, n, k, metric))
	require.NoError(t, e.Distance(context.Background(), x, y, out, m, n, k, metric, workspace, fin))
	return out
}

func TestDistanceMatchesReference(t *testing.T) {
	e := New()

	shapes := []struct{ m, n, k int }{
		{1, 1, 1},
		{4, 8, 32},
		{9, 7, 3},   // odd k exercises the unroll remainder
		{33, 17, 64},
	}

	for _, metric := range testMetrics {
		t.Run(metric.String(), func(t *testing.T) {
			for _, s := range shapes {
				x, y := uniformInputs(t, uint64(s.k)+11, s.m, s.n, s.k)

				want, err := vecdist.ComputeReference(context.Background(), x, y, s.m, s.n, s.k, metric)
				require.NoError(t, err)

				got := runEngine(t, e, x, y, s.m, s.n, s.k, metric, nil)
				for idx := range want {
					assert.InDelta(t, want[idx], got[idx], 1e-3, "shape %+v idx %d", s, idx)
				}
			}
		})
	}
}

func TestDistanceExpandedL2NonNegative(t *testing.T) {
	e := New()
	const m, n, k = 20, 30, 48

	// Near-identical rows drive the expanded form toward cancellation.
	x, _ := uniformInputs(t, 3, m, n, k)
	y := make([]float32, n*k)
	for j := 0; j < n; j++ {
		copy(y[j*k:(j+1)*k], x[(j%m)*k:(j%m+1)*k])
	}

	for _, metric := range []vecdist.Metric{vecdist.MetricSquaredL2Expanded, vecdist.MetricL2Expanded} {
		out := runEngine(t, e, x, y, m, n, k, metric, nil)
		for idx, v := range out {
			require.False(t, math32.IsNaN(v), "NaN at %d", idx)
			require.GreaterOrEqual(t, v, float32(0), "negative at %d", idx)
		}
	}
}

func TestDistanceCosineZeroRowPropagates(t *testing.T) {
	e := New()
	const m, n, k = 4, 8, 32

	x, y := uniformInputs(t, 1234, m, n, k)
	for i := 0; i < k; i++ {
		x[i] = 0
	}

	out := runEngine(t, e, x, y, m, n, k, vecdist.MetricCosineExpanded, nil)
	for j := 0; j < n; j++ {
		v := out[j]
		assert.True(t, math32.IsNaN(v) || math32.IsInf(v, 0), "cell (0,%d) = %v", j, v)
	}
	for idx := n; idx < m*n; idx++ {
		assert.False(t, math32.IsNaN(out[idx]), "unexpected NaN at %d", idx)
	}
}

// The finalizer must see every cell exactly once, and its return value is
// what lands in out.
func TestDistanceFinalizeContract(t *testing.T) {
	e := New()
	const m, n, k = 5, 6, 8

	x, y := uniformInputs(t, 17, m, n, k)

	var calls atomic.Int64
	seen := make([]atomic.Int32, m*n)
	fin := func(v float32, idx int) float32 {
		calls.Add(1)
		seen[idx].Add(1)
		return v + 100
	}

	out := runEngine(t, e, x, y, m, n, k, vecdist.MetricL1Unexpanded, fin)

	assert.Equal(t, int64(m*n), calls.Load())
	for idx := range seen {
		assert.Equal(t, int32(1), seen[idx].Load(), "idx %d", idx)
		assert.GreaterOrEqual(t, out[idx], float32(100))
	}
}

func TestDistanceWorkspaceMismatch(t *testing.T) {
	e := New()
	const m, n, k = 4, 8, 32

	x, y := uniformInputs(t, 2, m, n, k)
	out := make([]float32, m*n)

	// Expanded metric with no workspace.
	err := e.Distance(context.Background(), x, y, out, m, n, k, vecdist.MetricL2Expanded, nil, nil)
	assert.ErrorContains(t, err, "workspace")

	// Unexpanded metric with a stray workspace.
	err = e.Distance(context.Background(), x, y, out, m, n, k, vecdist.MetricL2Unexpanded, mem.AllocAligned(16), nil)
	assert.ErrorContains(t, err, "workspace")

	// Over-provisioned workspace is a contract violation too.
	err = e.Distance(context.Background(), x, y, out, m, n, k, vecdist.MetricL2Expanded, mem.AllocAligned((m+n)*4+64), nil)
	assert.ErrorContains(t, err, "workspace")
}

func TestDistanceInvalidShape(t *testing.T) {
	e := New()
	x, y := uniformInputs(t, 2, 2, 2, 2)
	out := make([]float32, 4)

	err := e.Distance(context.Background(), x, y, out, 0, 2, 2, vecdist.MetricL1Unexpanded, nil, nil)
	assert.ErrorContains(t, err, "positive")

	err = e.Distance(context.Background(), x, y, out, 2, 2, 3, vecdist.MetricL1Unexpanded, nil, nil)
	assert.ErrorContains(t, err, "short buffer")

	err = e.Distance(context.Background(), x, y, out, 2, 2, 2, vecdist.Metric(42), nil, nil)
	assert.ErrorIs(t, err, vecdist.ErrUnsupportedMetric)
}

func TestAcceleration(t *testing.T) {
	assert.NotEmpty(t, Acceleration())
	assert.Equal(t, Acceleration(), New().Acceleration())
}

func BenchmarkDistance(b *testing.B) {
	e := New()
	const m, n, k = 128, 128, 64

	r := rng.New(1)
	x := make([]float32, m*k)
	y := make([]float32, n*k)
	r.FillUniform(x, -1.0, 1.0)
	r.FillUniform(y, -1.0, 1.0)
	out := make([]float32, m*n)

	for _, metric := range []vecdist.Metric{vecdist.MetricSquaredL2Expanded, vecdist.MetricSquaredL2Unexpanded} {
		b.Run(metric.String(), func(b *testing.B) {
			workspace := mem.AllocAligned(e.WorkspaceSize(m, n, k, metric))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = e.Distance(context.Background(), x, y, out, m, n, k, metric, workspace, nil)
			}
		})
	}
}
