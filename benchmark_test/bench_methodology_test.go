package benchmark_test

import (
	"runtime"
	"testing"
)

// ============================================================================
// BENCHMARK METHODOLOGY
// ============================================================================
//
// 1. WARMUP PHASE: Run N iterations before measurement to warm caches.
//
// 2. GC CONTROL: Force GC before measurement to clear setup allocations.
//
// 3. ONE SORT PER ITERATION: Each b.N iteration = exactly 1 sort, fully
//    consumed, so allocations are reported per sort.
//
// 4. VALIDATION SEPARATE: Results are checked against the reference sort
//    after the measurement loop.

// WarmupIterations is the number of warmup iterations before measurement.
const WarmupIterations = 10

// BenchLoop runs a benchmark with warmup and GC before measurement.
//
// The queryCount parameter is used to cycle through queries (i % queryCount).
func BenchLoop(b *testing.B, queryCount int, fn func(i int)) {
	b.Helper()
	BenchLoopWithCallback(b, queryCount, fn, nil)
}

// BenchLoopWithCallback runs a benchmark with an optional post-measurement callback.
// The callback is called AFTER measurement completes and should be used for validation.
func BenchLoopWithCallback(b *testing.B, queryCount int, fn func(i int), postMeasure func()) {
	b.Helper()

	// Phase 1: Warmup
	for i := 0; i < WarmupIterations; i++ {
		fn(i % queryCount)
	}

	// Phase 2: GC
	runtime.GC()

	// Phase 3: Measure
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		fn(i % queryCount)
	}

	b.StopTimer()

	// Phase 4: Post-measurement validation (not timed)
	if postMeasure != nil {
		postMeasure()
	}
}
