package benchmark_test

import (
	"fmt"
	"testing"

	"github.com/hupe1980/fieldsort"
	"github.com/hupe1980/fieldsort/docset"
	"github.com/hupe1980/fieldsort/testutil"
)

// ============================================================================
// Benchmark Configuration
// ============================================================================

// Standard corpus sizes.
const (
	sizeSmall  = 10_000  // Quick iteration
	sizeMedium = 100_000 // Default CI
)

// Candidate ratios: fraction of the corpus passed to Sort.
var candidateRatios = []float64{0.001, 0.01, 0.1, 0.5, 1.0}

// Limits exercised per benchmark. 0 means unlimited.
var limits = []int{0, 10, 100, 1000}

const queriesPerBench = 16

type fixture struct {
	field   *fieldsort.FieldIndex[int]
	values  map[uint32]int
	queries []*docset.Bitmap
}

func newFixture(tb testing.TB, size, distinct int, ratio float64) *fixture {
	tb.Helper()

	rng := testutil.NewRNG(42)
	values := rng.ZipfValues(size, distinct, 1.1)

	f := fieldsort.New[int]("bench")
	for docid, v := range values {
		if err := f.Index(docid, v); err != nil {
			tb.Fatal(err)
		}
	}

	queries := make([]*docset.Bitmap, queriesPerBench)
	for i := range queries {
		queries[i] = rng.Candidates(size, ratio)
	}

	return &fixture{field: f, values: values, queries: queries}
}

func benchName(ratio float64, limit int) string {
	if limit == 0 {
		return fmt.Sprintf("ratio=%g/limit=none", ratio)
	}
	return fmt.Sprintf("ratio=%g/limit=%d", ratio, limit)
}
