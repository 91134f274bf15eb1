package vecdist

import (
	"context"
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/hupe1980/vecdist/internal/mem"
	"github.com/hupe1980/vecdist/internal/rng"
)

// defaultThreshold keeps finalization a pass-through for uniformly drawn
// inputs while still exercising the finalization path on every cell.
const defaultThreshold float32 = -10000

// Config drives a single differential case.
type Config struct {
	// Tolerance is the maximum allowed deviation between a reference and a
	// candidate cell. Small magnitudes are compared absolutely, large ones
	// relatively.
	Tolerance float32

	// M and N are the row counts of the two vector sets, K the dimension.
	M, N, K int

	// Seed makes a failing case reproducible from its value alone.
	Seed uint64
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.M <= 0 || c.N <= 0 || c.K <= 0 {
		return fmt.Errorf("%w: m=%d n=%d k=%d must be positive", ErrInvalidConfig, c.M, c.N, c.K)
	}
	if c.Tolerance < 0 || math32.IsNaN(c.Tolerance) {
		return fmt.Errorf("%w: tolerance %v must be non-negative", ErrInvalidConfig, c.Tolerance)
	}
	return nil
}

// Mismatch records a single output cell whose candidate value exceeded
// tolerance against the reference.
type Mismatch struct {
	Row, Col  int
	Want, Got float32
}

func (mm Mismatch) String() string {
	return fmt.Sprintf("cell (%d,%d): want %v, got %v", mm.Row, mm.Col, mm.Want, mm.Got)
}

// Result is the outcome of one differential case.
type Result struct {
	Metric     Metric
	Config     Config
	Cells      int
	Mismatches []Mismatch
}

// OK reports whether every cell matched within tolerance.
func (r *Result) OK() bool {
	return len(r.Mismatches) == 0
}

type options struct {
	logger    *Logger
	threshold float32
	mutate    func(x, y []float32)
}

// Option configures Harness behavior.
type Option func(*options)

// WithLogger configures the logger used for case reporting.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithThreshold configures the finalization threshold handed to the
// candidate. The default is a large negative sentinel, making the
// thresholded copy identical to the raw output for uniform [-1,1) inputs.
func WithThreshold(threshold float32) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithInputMutator installs a hook invoked after input generation and
// before either computation. Edge-case scenarios use it to plant rows the
// uniform distribution will not produce, such as an all-zero vector.
func WithInputMutator(fn func(x, y []float32)) Option {
	return func(o *options) {
		o.mutate = fn
	}
}

// Harness drives differential validation of a Candidate against the
// reference engine. Each case runs five stages in order: Setup,
// Execute-Reference, Execute-Candidate, Compare, Teardown. The two execute
// stages never overlap; each is awaited to completion before the next
// stage proceeds.
type Harness struct {
	candidate Candidate
	opts      options
}

// NewHarness creates a Harness validating the given candidate.
func NewHarness(candidate Candidate, opts ...Option) *Harness {
	o := options{
		logger:    NoopLogger(),
		threshold: defaultThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Harness{
		candidate: candidate,
		opts:      o,
	}
}

// Run executes a single differential case.
//
// A non-nil error means the case aborted (bad configuration, reference
// failure, or a candidate execution error). Accuracy mismatches are not
// errors: they are accumulated in the Result so callers can keep running
// other cases.
func (h *Harness) Run(ctx context.Context, metric Metric, cfg Config) (res *Result, err error) {
	log := h.opts.logger.WithMetric(metric).WithShape(cfg.M, cfg.N, cfg.K)
	if a, ok := h.candidate.(interface{ Acceleration() string }); ok {
		log = &Logger{Logger: log.With("accel", a.Acceleration())}
	}

	// Teardown: buffers are released to the collector when the locals drop
	// out of scope, on success and abort alike; only the outcome is logged.
	defer func() {
		log.LogCase(ctx, cfg, res, err)
	}()

	// Setup
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	r := rng.New(cfg.Seed)
	x := mem.AllocAlignedFloat32(cfg.M * cfg.K)
	y := mem.AllocAlignedFloat32(cfg.N * cfg.K)
	r.FillUniform(x, -1.0, 1.0)
	r.FillUniform(y, -1.0, 1.0)
	if h.opts.mutate != nil {
		h.opts.mutate(x, y)
	}

	// Execute-Reference
	distRef, err := ComputeReference(ctx, x, y, cfg.M, cfg.N, cfg.K, metric)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}

	// Execute-Candidate
	var workspace []byte
	if size := h.candidate.WorkspaceSize(cfg.M, cfg.N, cfg.K, metric); size > 0 {
		workspace = mem.AllocAligned(size)
	}
	dist := mem.AllocAlignedFloat32(cfg.M * cfg.N)
	dist2 := mem.AllocAlignedFloat32(cfg.M * cfg.N)
	fin := &ThresholdFinalizer{Threshold: h.opts.threshold, Dst: dist2}
	if err = h.candidate.Distance(ctx, x, y, dist, cfg.M, cfg.N, cfg.K, metric, workspace, fin.Apply); err != nil {
		return nil, fmt.Errorf("candidate (metric=%s m=%d n=%d k=%d): %w", metric, cfg.M, cfg.N, cfg.K, err)
	}

	// Compare
	res = &Result{Metric: metric, Config: cfg, Cells: cfg.M * cfg.N}
	for idx := range distRef {
		if !withinTolerance(distRef[idx], dist2[idx], cfg.Tolerance) {
			res.Mismatches = append(res.Mismatches, Mismatch{
				Row:  idx / cfg.N,
				Col:  idx % cfg.N,
				Want: distRef[idx],
				Got:  dist2[idx],
			})
		}
	}

	return res, nil
}

// RunSuite executes cfgs in order, continuing past mismatching and aborted
// cases. Aborted cases contribute no Result; their errors are joined into
// the returned error.
func (h *Harness) RunSuite(ctx context.Context, metric Metric, cfgs []Config) ([]*Result, error) {
	results := make([]*Result, 0, len(cfgs))

	var errs []error
	for _, cfg := range cfgs {
		res, err := h.Run(ctx, metric, cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("case m=%d n=%d k=%d seed=%d: %w", cfg.M, cfg.N, cfg.K, cfg.Seed, err))
			continue
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// withinTolerance reports whether got matches want within tol. NaN matches
// NaN and equal infinities match, so unguarded cosine edge cases compare
// equal when both implementations propagate them.
func withinTolerance(want, got, tol float32) bool {
	if want == got {
		return true
	}
	if math32.IsNaN(want) && math32.IsNaN(got) {
		return true
	}
	// Equal infinities already matched above; any remaining infinity means
	// one side diverged, and the Inf arithmetic below would mask it.
	if math32.IsInf(want, 0) || math32.IsInf(got, 0) {
		return false
	}
	diff := math32.Abs(want - got)
	if diff <= tol {
		return true
	}
	return diff <= tol*math32.Max(math32.Abs(want), math32.Abs(got))
}
