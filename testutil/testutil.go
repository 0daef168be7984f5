package testutil

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/fieldsort/docset"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformValues maps docids 0..n-1 to values drawn uniformly from [0, distinct).
func (r *RNG) UniformValues(n, distinct int) map[uint32]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make(map[uint32]int, n)
	for i := range n {
		values[uint32(i)] = r.rand.Intn(distinct)
	}
	return values
}

// ZipfValues maps docids 0..n-1 to values in [0, distinct) with a Zipfian
// distribution: a few values hold most documents.
func (r *RNG) ZipfValues(n, distinct int, s float64) map[uint32]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cdf := zipfCDF(distinct, s)
	values := make(map[uint32]int, n)
	for i := range n {
		u := r.rand.Float64()
		k, _ := slices.BinarySearch(cdf, u)
		values[uint32(i)] = min(k, distinct-1)
	}
	return values
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	if n <= 1 {
		return 0
	}
	u := r.Float64()
	k, _ := slices.BinarySearch(zipfCDF(n, s), u)
	return min(k, n-1)
}

// zipfCDF returns the normalized cumulative distribution of Zipf(n, s).
func zipfCDF(n int, s float64) []float64 {
	cdf := make([]float64, n)
	var total float64
	for k := 1; k <= n; k++ {
		total += 1.0 / math.Pow(float64(k), s)
		cdf[k-1] = total
	}
	for i := range cdf {
		cdf[i] /= total
	}
	return cdf
}

// Candidates returns a random subset of docids 0..n-1 where each docid is
// included with probability ratio.
func (r *RNG) Candidates(n int, ratio float64) *docset.Bitmap {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := docset.NewBitmap()
	for i := range n {
		if r.rand.Float64() < ratio {
			b.Add(uint32(i))
		}
	}
	return b
}

// Sparse returns candidates drawn from 0..span-1, count of them, which may
// include docids that have no value in a corpus smaller than span.
func (r *RNG) Sparse(span, count int) *docset.Bitmap {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := docset.NewBitmap()
	for range count {
		b.Add(uint32(r.rand.Intn(span)))
	}
	return b
}

// ReferenceSort returns the docids of candidates that have a value, ordered
// by (value, docid), reversed when reverse is set and truncated to limit
// when limit > 0. It is the exact result every sort strategy must produce.
func ReferenceSort[V cmp.Ordered](values map[uint32]V, candidates []uint32, limit int, reverse bool) []uint32 {
	out := make([]uint32, 0, len(candidates))
	for _, docid := range candidates {
		if _, ok := values[docid]; ok {
			out = append(out, docid)
		}
	}

	slices.SortFunc(out, func(a, b uint32) int {
		if c := cmp.Compare(values[a], values[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if reverse {
		slices.Reverse(out)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
