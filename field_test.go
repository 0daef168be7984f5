package fieldsort

import (
	"bytes"
	"log/slog"
	"maps"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldIndex_IndexAndUnindex(t *testing.T) {
	f := New[string]("title")
	assert.Equal(t, "title", f.Name())

	require.NoError(t, f.Index(1, "a"))
	require.NoError(t, f.Index(2, "b"))
	require.NoError(t, f.Index(3, "b"))
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 2, f.Cardinality())

	v, ok := f.Value(2)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.True(t, f.Has(3))
	assert.False(t, f.Has(4))

	t.Run("SameValueIsNoop", func(t *testing.T) {
		require.NoError(t, f.Index(1, "a"))
		assert.Equal(t, 3, f.Len())
	})

	t.Run("MoveToNewValue", func(t *testing.T) {
		require.NoError(t, f.Index(1, "c"))
		assert.Equal(t, 3, f.Len())
		assert.Equal(t, []string{"b", "c"}, slices.Collect(f.Values()))
		assert.True(t, f.Documents("a").IsEmpty())
		assert.Equal(t, []uint32{1}, f.Documents("c").ToSlice())
	})

	t.Run("Unindex", func(t *testing.T) {
		f.Unindex(2)
		assert.Equal(t, 2, f.Len())
		assert.False(t, f.Has(2))
		assert.Equal(t, []uint32{3}, f.Documents("b").ToSlice())

		f.Unindex(3)
		assert.Equal(t, []string{"c"}, slices.Collect(f.Values()))

		// Unknown documents are ignored
		f.Unindex(42)
		assert.Equal(t, 1, f.Len())
	})

	t.Run("Clear", func(t *testing.T) {
		f.Clear()
		assert.Equal(t, 0, f.Len())
		assert.Empty(t, slices.Collect(f.Values()))
	})
}

func TestFieldIndex_DocumentsIsCopy(t *testing.T) {
	f := New[int]("n")
	require.NoError(t, f.Index(1, 10))

	docs := f.Documents(10)
	docs.Add(99)
	assert.False(t, f.Has(99))
	assert.Equal(t, []uint32{1}, f.Documents(10).ToSlice())
}

func TestFieldIndex_NaN(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	f := New[float64]("price", WithMetricsCollector(metrics))

	err := f.Index(1, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, f.Len())

	require.NoError(t, f.Index(2, math.Inf(1)))
	require.NoError(t, f.Index(3, -1.5))
	assert.Equal(t, []float64{-1.5, math.Inf(1)}, slices.Collect(f.Values()))

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.IndexCount)
	assert.Equal(t, int64(1), stats.IndexErrors)
}

func TestFieldIndex_IndexDocs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	f := New[float64]("price", WithLogger(logger))

	n, err := f.IndexDocs(maps.All(map[uint32]float64{
		1: 9.99,
		2: math.NaN(),
		3: 1.25,
	}))
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, 2, f.Len())
	assert.False(t, f.Has(2))
	assert.Contains(t, buf.String(), "batch index completed with failures")

	n, err = f.IndexDocs(maps.All(map[uint32]float64{4: 1, 5: 2}))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 4, f.Len())
}

func TestFieldIndex_UnindexInconsistent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := &BasicMetricsCollector{}
	f := New[string]("title", WithLogger(logger), WithMetricsCollector(metrics))

	require.NoError(t, f.Index(1, "a"))
	require.NoError(t, f.Index(2, "a"))

	// Drop the forward entry behind the index's back.
	f.ix.Group("a").Remove(1)

	f.Unindex(1)
	assert.False(t, f.Has(1))
	assert.True(t, f.Has(2))
	assert.Contains(t, buf.String(), "unindexed document missing from its value group")
	assert.Contains(t, buf.String(), "docid=1")
	assert.Equal(t, int64(1), metrics.GetStats().UnindexCount)
}
