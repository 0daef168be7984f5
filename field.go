package fieldsort

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/fieldsort/docset"
	"github.com/hupe1980/fieldsort/internal/valueindex"
)

// FieldIndex indexes one ordered value per document and sorts document sets
// by that value.
//
// All methods are safe for concurrent use. Sequences returned by Sort read
// the index lazily; mutating the index while such a sequence is being
// consumed does not crash but leaves the order of the remaining results
// undefined. Use SortSlice to materialize results first.
type FieldIndex[V cmp.Ordered] struct {
	name   string
	opts   options
	logger *Logger

	mu sync.RWMutex
	ix *valueindex.Index[V]
}

// New creates an empty field index.
func New[V cmp.Ordered](name string, optFns ...Option) *FieldIndex[V] {
	opts := applyOptions(optFns)
	return &FieldIndex[V]{
		name:   name,
		opts:   opts,
		logger: opts.logger.WithField(name),
		ix:     valueindex.New[V](),
	}
}

// Name returns the field name.
func (f *FieldIndex[V]) Name() string {
	return f.name
}

// isNaN reports whether v is a floating-point NaN.
func isNaN[V cmp.Ordered](v V) bool {
	return v != v
}

// Index sets the value of docid. A document already indexed under a
// different value is moved; indexing the same value again is a no-op.
//
// NaN values are rejected with ErrInvalidValue.
func (f *FieldIndex[V]) Index(docid uint32, value V) error {
	start := time.Now()

	if isNaN(value) {
		err := fmt.Errorf("%w: NaN for document %d", ErrInvalidValue, docid)
		f.opts.metricsCollector.RecordIndex(time.Since(start), err)
		return err
	}

	f.mu.Lock()
	f.ix.Insert(docid, value)
	f.mu.Unlock()

	f.opts.metricsCollector.RecordIndex(time.Since(start), nil)
	return nil
}

// IndexDocs indexes a batch of (docid, value) pairs under a single lock.
// Invalid values are skipped; their errors are joined into the result.
// It returns the number of pairs indexed.
//
// Example:
//
//	n, err := title.IndexDocs(maps.All(map[uint32]string{1: "a", 2: "b"}))
func (f *FieldIndex[V]) IndexDocs(docs iter.Seq2[uint32, V]) (int, error) {
	start := time.Now()

	var errs []error
	count := 0

	f.mu.Lock()
	for docid, value := range docs {
		if isNaN(value) {
			errs = append(errs, fmt.Errorf("%w: NaN for document %d", ErrInvalidValue, docid))
			continue
		}
		f.ix.Insert(docid, value)
		count++
	}
	f.mu.Unlock()

	err := errors.Join(errs...)
	f.opts.metricsCollector.RecordIndex(time.Since(start), err)
	f.logger.LogBatchIndex(context.Background(), count+len(errs), len(errs))
	return count, err
}

// Unindex removes docid. Removing an unknown document is a no-op.
func (f *FieldIndex[V]) Unindex(docid uint32) {
	start := time.Now()

	f.mu.Lock()
	_, ok, found := f.ix.Delete(docid)
	f.mu.Unlock()

	if ok && !found {
		f.logger.LogUnindexInconsistent(context.Background(), docid)
	}
	f.opts.metricsCollector.RecordUnindex(time.Since(start))
}

// Value returns the value indexed for docid.
func (f *FieldIndex[V]) Value(docid uint32) (V, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ix.Lookup(docid)
}

// Has reports whether docid is indexed.
func (f *FieldIndex[V]) Has(docid uint32) bool {
	_, ok := f.Value(docid)
	return ok
}

// Len returns the number of indexed documents.
func (f *FieldIndex[V]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ix.Len()
}

// Cardinality returns the number of distinct values.
func (f *FieldIndex[V]) Cardinality() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ix.Cardinality()
}

// Values returns the distinct indexed values in ascending order.
// The sequence iterates over a copy taken at call time.
func (f *FieldIndex[V]) Values() iter.Seq[V] {
	f.mu.RLock()
	values := slices.Collect(f.ix.Values())
	f.mu.RUnlock()
	return slices.Values(values)
}

// Documents returns the documents indexed under value.
// The result is a copy and may be modified.
func (f *FieldIndex[V]) Documents(value V) *docset.Bitmap {
	f.mu.RLock()
	defer f.mu.RUnlock()

	group := f.ix.Group(value)
	if group == nil {
		return docset.NewBitmap()
	}
	return docset.Wrap(group.Clone())
}

// Clear removes every document.
func (f *FieldIndex[V]) Clear() {
	f.mu.Lock()
	f.ix.Clear()
	f.mu.Unlock()
}
