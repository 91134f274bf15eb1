package vecdist

import "errors"

// ErrUnsupportedMetric is returned when a metric outside the catalog is
// requested. The reference engine escalates it to a panic, since an unknown
// metric there is a programming error rather than a recoverable condition.
var ErrUnsupportedMetric = errors.New("unsupported metric")

// ErrInvalidConfig is returned for configurations violating the shape or
// tolerance invariants (m, n, k strictly positive, tolerance non-negative).
var ErrInvalidConfig = errors.New("invalid config")
