// Package vecdist computes pairwise distance matrices between vector sets
// and differentially validates optimized implementations against a
// brute-force reference engine.
//
// # Metrics
//
//   - MetricSquaredL2Expanded / MetricSquaredL2Unexpanded: squared Euclidean
//   - MetricL2Expanded / MetricL2Unexpanded: Euclidean
//   - MetricL1Unexpanded: Manhattan
//   - MetricCosineExpanded: cosine similarity
//
// The Expanded/Unexpanded suffix names the computation strategy an
// optimized implementation uses; the reference semantics of a metric family
// are identical for both.
//
// # Reference engine
//
//	dist, err := vecdist.ComputeReference(ctx, x, y, m, n, k, vecdist.MetricL2Unexpanded)
//
// The reference computation is brute force and embarrassingly parallel: one
// independent task per output cell, no shared mutable state, every cell
// written exactly once. It is the correctness oracle; keep it obvious.
//
// # Differential validation
//
//	h := vecdist.NewHarness(tiled.New())
//	res, err := h.Run(ctx, vecdist.MetricSquaredL2Unexpanded, vecdist.Config{
//		Tolerance: 1e-2,
//		M:         4,
//		N:         8,
//		K:         32,
//		Seed:      1234,
//	})
//	if err != nil {
//		// case aborted: allocation, configuration, or candidate failure
//	}
//	for _, mm := range res.Mismatches {
//		// cells exceeding tolerance, with expected and actual values
//	}
//
// Inputs are generated from the configured seed, so any failing case can be
// replayed exactly. The candidate additionally runs a finalization policy
// that writes a thresholded copy of each cell into a second buffer; the
// harness compares that copy against the reference.
package vecdist
