package fieldsort

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"slices"
	"testing"

	"github.com/hupe1980/fieldsort/docset"
	"github.com/hupe1980/fieldsort/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLetters(t *testing.T, optFns ...Option) *FieldIndex[string] {
	t.Helper()
	f := New[string]("title", optFns...)
	require.NoError(t, f.Index(1, "a"))
	require.NoError(t, f.Index(2, "b"))
	require.NoError(t, f.Index(3, "b"))
	require.NoError(t, f.Index(4, "c"))
	return f
}

func TestSort_Letters(t *testing.T) {
	ctx := context.Background()
	f := newLetters(t)
	all := docset.NewBitmap(1, 2, 3, 4)

	t.Run("Ascending", func(t *testing.T) {
		got, err := f.SortSlice(ctx, all)
		require.NoError(t, err)
		assert.Equal(t, []uint32{1, 2, 3, 4}, got)
	})

	t.Run("DescendingLimit", func(t *testing.T) {
		got, err := f.SortSlice(ctx, all, WithReverse(), WithLimit(2))
		require.NoError(t, err)
		assert.Equal(t, []uint32{4, 3}, got)
	})

	t.Run("Descending", func(t *testing.T) {
		got, err := f.SortSlice(ctx, all, WithReverse())
		require.NoError(t, err)
		assert.Equal(t, []uint32{4, 3, 2, 1}, got)
	})

	t.Run("ForcedStrategies", func(t *testing.T) {
		for _, name := range []string{"fwscan", "nbest", "timsort"} {
			got, err := f.SortSlice(ctx, all, WithStrategyName(name), WithLimit(3))
			require.NoError(t, err, name)
			assert.Equal(t, []uint32{1, 2, 3}, got, name)
		}
	})

	t.Run("MissingCandidatesSkipped", func(t *testing.T) {
		got, err := f.SortSlice(ctx, docset.NewMap(4, 42, 2))
		require.NoError(t, err)
		assert.Equal(t, []uint32{2, 4}, got)
	})

	t.Run("Idempotent", func(t *testing.T) {
		seq, err := f.Sort(ctx, all, WithLimit(3))
		require.NoError(t, err)
		first := slices.Collect(seq)
		second := slices.Collect(seq)
		assert.Equal(t, first, second)
		assert.Equal(t, []uint32{1, 2, 3}, first)
	})
}

func TestSort_EmptyInputs(t *testing.T) {
	ctx := context.Background()

	f := newLetters(t)
	got, err := f.SortSlice(ctx, docset.NewBitmap())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.SortSlice(ctx, nil, WithReverse())
	require.NoError(t, err)
	assert.Empty(t, got)

	empty := New[int]("empty")
	got, err = empty.SortSlice(ctx, docset.NewBitmap(1, 2, 3), WithLimit(1))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.SortSlice(ctx, docset.NewBitmap(100, 200))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSort_TypedNilCandidates(t *testing.T) {
	ctx := context.Background()
	f := newLetters(t)

	var b *docset.Bitmap
	got, err := f.SortSlice(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.SortSlice(ctx, b, WithReverse(), WithLimit(1))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSort_AfterUnindex(t *testing.T) {
	ctx := context.Background()
	f := newLetters(t)
	all := docset.NewBitmap(1, 2, 3, 4)

	f.Unindex(2)
	f.Unindex(4)

	tests := []struct {
		name string
		opts []SortOption
		want []uint32
	}{
		{"Auto", nil, []uint32{1, 3}},
		{"AutoReverse", []SortOption{WithReverse()}, []uint32{3, 1}},
		{"ScanForward", []SortOption{WithStrategy(strategy.ScanForward)}, []uint32{1, 3}},
		{"NBest", []SortOption{WithStrategy(strategy.NBest), WithLimit(10)}, []uint32{1, 3}},
		{"NBestReverse", []SortOption{WithStrategy(strategy.NBest), WithLimit(10), WithReverse()}, []uint32{3, 1}},
		{"FullSort", []SortOption{WithStrategy(strategy.FullSort)}, []uint32{1, 3}},
		{"FullSortReverse", []SortOption{WithStrategy(strategy.FullSort), WithReverse()}, []uint32{3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.SortSlice(ctx, all, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("EmptiedGroupDropped", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, slices.Collect(f.Values()))

		f.Unindex(3)
		assert.Equal(t, []string{"a"}, slices.Collect(f.Values()))
		assert.True(t, f.Documents("b").IsEmpty())

		for _, s := range []strategy.Strategy{strategy.Auto, strategy.ScanForward, strategy.NBest, strategy.FullSort} {
			got, err := f.SortSlice(ctx, all, WithStrategy(s), WithLimit(10))
			require.NoError(t, err)
			assert.Equal(t, []uint32{1}, got, s.String())
		}
	})
}

func TestSort_Errors(t *testing.T) {
	ctx := context.Background()
	f := newLetters(t)
	all := docset.NewBitmap(1, 2, 3, 4)

	t.Run("InvalidLimit", func(t *testing.T) {
		for _, limit := range []int{0, -1} {
			_, err := f.Sort(ctx, all, WithLimit(limit))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.ErrorIs(t, err, ErrInvalidLimit)

			var lerr *ErrLimitOutOfRange
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, limit, lerr.Limit)
		}
	})

	t.Run("InvalidLimitOnEmptyInput", func(t *testing.T) {
		_, err := f.Sort(ctx, docset.NewBitmap(), WithLimit(0))
		assert.ErrorIs(t, err, ErrInvalidLimit)
	})

	t.Run("UnknownName", func(t *testing.T) {
		_, err := f.Sort(ctx, all, WithStrategyName("bubble"))
		assert.ErrorIs(t, err, ErrUnknownStrategy)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.ErrorIs(t, err, strategy.ErrUnknown)

		var serr *ErrUnknownStrategyName
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "bubble", serr.Name)
	})

	t.Run("UnknownValue", func(t *testing.T) {
		_, err := f.Sort(ctx, all, WithStrategy(strategy.Strategy(9)))
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})

	t.Run("ScanForwardDescending", func(t *testing.T) {
		_, err := f.Sort(ctx, all, WithStrategy(strategy.ScanForward), WithReverse())
		assert.ErrorIs(t, err, ErrUnknownStrategy)

		var serr *ErrUnknownStrategyName
		require.ErrorAs(t, err, &serr)
		assert.True(t, serr.Reverse)
		assert.Equal(t, "fwscan", serr.Name)
	})

	t.Run("NBestWithoutLimit", func(t *testing.T) {
		_, err := f.Sort(ctx, all, WithStrategyName("nbest"))
		assert.ErrorIs(t, err, ErrNBestWithoutLimit)
		assert.ErrorIs(t, err, ErrInvalidUsage)
		assert.False(t, errors.Is(err, ErrInvalidArgument))
	})

	t.Run("AutoByName", func(t *testing.T) {
		got, err := f.SortSlice(ctx, all, WithStrategyName("AUTO"), WithReverse())
		require.NoError(t, err)
		assert.Equal(t, []uint32{4, 3, 2, 1}, got)
	})
}

func TestSort_Limit(t *testing.T) {
	ctx := context.Background()
	f := New[int]("n")
	for i := uint32(0); i < 1000; i++ {
		require.NoError(t, f.Index(i, int(i%10)))
	}
	all := docset.NewBitmap()
	for i := uint32(0); i < 1000; i++ {
		all.Add(i)
	}

	for _, limit := range []int{1, 5, 299, 300, 999, 1000, 5000} {
		got, err := f.SortSlice(ctx, all, WithLimit(limit))
		require.NoError(t, err)
		assert.Len(t, got, min(limit, 1000))

		got, err = f.SortSlice(ctx, all, WithLimit(limit), WithReverse())
		require.NoError(t, err)
		assert.Len(t, got, min(limit, 1000))
	}
}

func TestSort_StrategiesAgree(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	f := New[int]("score")
	values := make(map[uint32]int)
	for i := 0; i < 3000; i++ {
		docid := uint32(rng.Intn(5000))
		v := rng.Intn(200)
		require.NoError(t, f.Index(docid, v))
		values[docid] = v
	}

	for round := 0; round < 20; round++ {
		cands := docset.NewMap()
		n := 1 + rng.Intn(4000)
		for i := 0; i < n; i++ {
			cands.Add(uint32(rng.Intn(6000)))
		}

		want := []uint32{}
		for docid := range cands {
			if _, ok := values[docid]; ok {
				want = append(want, docid)
			}
		}
		slices.SortFunc(want, func(a, b uint32) int {
			if c := cmp.Compare(values[a], values[b]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		wantDesc := slices.Clone(want)
		slices.Reverse(wantDesc)

		limit := 1 + rng.Intn(600)
		trim := func(s []uint32) []uint32 { return s[:min(limit, len(s))] }

		for _, s := range []strategy.Strategy{strategy.Auto, strategy.ScanForward, strategy.NBest, strategy.FullSort} {
			got, err := f.SortSlice(ctx, cands, WithStrategy(s), WithLimit(limit))
			require.NoError(t, err)
			assert.Equal(t, trim(want), got, "asc %s", s)

			if s.SupportsReverse() {
				got, err = f.SortSlice(ctx, cands, WithStrategy(s), WithLimit(limit), WithReverse())
				require.NoError(t, err)
				assert.Equal(t, trim(wantDesc), got, "desc %s", s)
			}
		}

		got, err := f.SortSlice(ctx, cands)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSort_MutateWhileIterating(t *testing.T) {
	ctx := context.Background()
	f := newLetters(t)

	seq, err := f.Sort(ctx, docset.NewBitmap(1, 2, 3, 4, 5), WithStrategy(strategy.ScanForward))
	require.NoError(t, err)

	var got []uint32
	for docid := range seq {
		got = append(got, docid)
		// The read lock is not held while the loop body runs.
		require.NoError(t, f.Index(5, "z"))
	}
	assert.Contains(t, got, uint32(1))
	assert.Equal(t, 5, f.Len())
}

func TestSort_ContextCanceled(t *testing.T) {
	f := newLetters(t)
	all := docset.NewBitmap(1, 2, 3, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	seq, err := f.Sort(ctx, all)
	require.NoError(t, err)

	n := 0
	for range seq {
		n++
		cancel()
	}
	assert.Equal(t, 1, n)

	_, err = f.SortSlice(ctx, all)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSort_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	f := newLetters(t, WithMetricsCollector(metrics))
	all := docset.NewBitmap(1, 2, 3, 4)

	_, err := f.SortSlice(ctx, all)
	require.NoError(t, err)
	_, err = f.SortSlice(ctx, all, WithReverse(), WithLimit(2))
	require.NoError(t, err)
	_, err = f.SortSlice(ctx, all, WithReverse())
	require.NoError(t, err)
	_, err = f.Sort(ctx, all, WithLimit(0))
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(4), stats.SortCount)
	assert.Equal(t, int64(1), stats.SortErrors)
	assert.Equal(t, int64(1), stats.ScanForwardCount)
	assert.Equal(t, int64(1), stats.NBestCount)
	assert.Equal(t, int64(1), stats.FullSortCount)
	assert.Equal(t, int64(4+2+4), stats.SortReturned)
	assert.Equal(t, int64(4), stats.IndexCount)
}

func TestSort_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f := newLetters(t, WithLogger(logger))
	_, err := f.SortSlice(context.Background(), docset.NewBitmap(1, 2, 3, 4), WithReverse(), WithLimit(2))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "sort planned")
	assert.Contains(t, out, "sort completed")
	assert.Contains(t, out, "field=title")
	assert.Contains(t, out, "strategy=nbest")
	assert.Contains(t, out, "returned=2")
}
