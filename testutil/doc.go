// Package testutil provides testing utilities for fieldsort.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random field contents and candidate
// sets, and an exact reference sort to verify results against.
//
// # Random Workloads
//
//	rng := testutil.NewRNG(seed)
//	values := rng.ZipfValues(100_000, 1000, 1.2) // skewed docid -> value
//	cands := rng.Candidates(100_000, 0.1)        // ~10% of the corpus
//
// # Reference Sort (Ground Truth)
//
//	want := testutil.ReferenceSort(values, cands.ToSlice(), limit, reverse)
package testutil
