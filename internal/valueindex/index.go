// Package valueindex implements the forward/reverse mapping behind a field index.
package valueindex

import (
	"cmp"
	"iter"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index maps documents to a single ordered value per document.
//
// Architecture:
//   - reverse: docid → value
//   - forward: value → Roaring bitmap of docids
//   - values: distinct values in ascending order (aligned with forward keys)
//
// Invariants:
//   - every docid held by a forward group is a key of reverse with that value
//   - forward groups are never empty; a group is deleted with its last docid
//   - len(values) == len(forward)
//
// Index is not safe for concurrent use. Callers must hold a write lock for
// Insert/Delete/Clear and a read lock for everything else.
type Index[V cmp.Ordered] struct {
	reverse map[uint32]V
	forward map[V]*roaring.Bitmap
	values  []V
}

// New creates an empty index.
func New[V cmp.Ordered]() *Index[V] {
	return &Index[V]{
		reverse: make(map[uint32]V),
		forward: make(map[V]*roaring.Bitmap),
	}
}

// Insert indexes docid under value. A document already indexed under a
// different value is moved. It reports whether docid was not indexed before.
func (ix *Index[V]) Insert(docid uint32, value V) bool {
	old, exists := ix.reverse[docid]
	if exists {
		if old == value {
			return false
		}
		ix.removeFromGroup(docid, old)
	}

	ix.reverse[docid] = value

	group, ok := ix.forward[value]
	if !ok {
		group = roaring.New()
		ix.forward[value] = group
		pos, _ := slices.BinarySearch(ix.values, value)
		ix.values = slices.Insert(ix.values, pos, value)
	}
	group.Add(docid)

	return !exists
}

// Delete removes docid. It returns the value docid was indexed under and
// whether it was present. found reports whether the forward group held the
// document; a false found with ok true means the index was inconsistent and
// has been repaired.
func (ix *Index[V]) Delete(docid uint32) (value V, ok, found bool) {
	value, ok = ix.reverse[docid]
	if !ok {
		return value, false, false
	}
	delete(ix.reverse, docid)
	return value, true, ix.removeFromGroup(docid, value)
}

func (ix *Index[V]) removeFromGroup(docid uint32, value V) bool {
	group, ok := ix.forward[value]
	if !ok {
		return false
	}
	found := group.CheckedRemove(docid)
	if group.IsEmpty() {
		delete(ix.forward, value)
		if pos, ok := slices.BinarySearch(ix.values, value); ok {
			ix.values = slices.Delete(ix.values, pos, pos+1)
		}
	}
	return found
}

// Lookup returns the value of docid.
func (ix *Index[V]) Lookup(docid uint32) (V, bool) {
	v, ok := ix.reverse[docid]
	return v, ok
}

// Len returns the number of indexed documents.
func (ix *Index[V]) Len() int {
	return len(ix.reverse)
}

// Cardinality returns the number of distinct values.
func (ix *Index[V]) Cardinality() int {
	return len(ix.values)
}

// Group returns the docids indexed under value, or nil.
// The bitmap is owned by the index and must not be modified.
func (ix *Index[V]) Group(value V) *roaring.Bitmap {
	return ix.forward[value]
}

// Values iterates over the distinct values in ascending order.
func (ix *Index[V]) Values() iter.Seq[V] {
	return slices.Values(ix.values)
}

// Groups iterates over (value, docids) pairs in ascending value order.
func (ix *Index[V]) Groups() iter.Seq2[V, *roaring.Bitmap] {
	return func(yield func(V, *roaring.Bitmap) bool) {
		for _, v := range ix.values {
			if !yield(v, ix.forward[v]) {
				return
			}
		}
	}
}

// GroupAfter returns the group of the smallest value strictly greater than
// after. With first set, after is ignored and the smallest value is returned.
// Seeking by value instead of position keeps a scan well defined when groups
// are added or removed between calls.
func (ix *Index[V]) GroupAfter(after V, first bool) (V, *roaring.Bitmap, bool) {
	pos := 0
	if !first {
		var found bool
		pos, found = slices.BinarySearch(ix.values, after)
		if found {
			pos++
		}
	}
	if pos >= len(ix.values) {
		var zero V
		return zero, nil, false
	}
	v := ix.values[pos]
	return v, ix.forward[v], true
}

// Range returns the union of groups whose value lies in [lo, hi].
// A nil bound is open.
func (ix *Index[V]) Range(lo, hi *V) *roaring.Bitmap {
	start, end := 0, len(ix.values)
	if lo != nil {
		start, _ = slices.BinarySearch(ix.values, *lo)
	}
	if hi != nil {
		var found bool
		end, found = slices.BinarySearch(ix.values, *hi)
		if found {
			end++
		}
	}

	switch {
	case start >= end:
		return roaring.New()
	case end-start == 1:
		return ix.forward[ix.values[start]].Clone()
	}
	groups := make([]*roaring.Bitmap, 0, end-start)
	for _, v := range ix.values[start:end] {
		groups = append(groups, ix.forward[v])
	}
	return roaring.FastOr(groups...)
}

// Clear removes every document.
func (ix *Index[V]) Clear() {
	clear(ix.reverse)
	clear(ix.forward)
	ix.values = ix.values[:0]
}
