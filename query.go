package fieldsort

import (
	"cmp"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/fieldsort/docset"
)

// Query selects documents by their value in a field.
// Build one with Eq, In, Between, AtLeast or AtMost.
type Query[V cmp.Ordered] struct {
	values []V
	lo, hi *V
	isSet  bool
}

// Eq matches documents whose value equals v.
func Eq[V cmp.Ordered](v V) Query[V] {
	return Query[V]{values: []V{v}, isSet: true}
}

// In matches documents whose value is any of vs.
func In[V cmp.Ordered](vs ...V) Query[V] {
	return Query[V]{values: vs, isSet: true}
}

// Between matches documents whose value lies in [lo, hi].
func Between[V cmp.Ordered](lo, hi V) Query[V] {
	return Query[V]{lo: &lo, hi: &hi}
}

// AtLeast matches documents whose value is lo or greater.
func AtLeast[V cmp.Ordered](lo V) Query[V] {
	return Query[V]{lo: &lo}
}

// AtMost matches documents whose value is hi or less.
func AtMost[V cmp.Ordered](hi V) Query[V] {
	return Query[V]{hi: &hi}
}

// Apply returns the documents matching q. The result can be passed to Sort
// as its candidate set.
//
// Example:
//
//	hits := price.Apply(fieldsort.Between(10.0, 20.0))
//	seq, _ := title.Sort(ctx, hits)
func (f *FieldIndex[V]) Apply(q Query[V]) *docset.Bitmap {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if q.isSet {
		groups := make([]*roaring.Bitmap, 0, len(q.values))
		for _, v := range q.values {
			if g := f.ix.Group(v); g != nil {
				groups = append(groups, g)
			}
		}
		switch len(groups) {
		case 0:
			return docset.NewBitmap()
		case 1:
			return docset.Wrap(groups[0].Clone())
		}
		return docset.Wrap(roaring.FastOr(groups...))
	}

	return docset.Wrap(f.ix.Range(q.lo, q.hi))
}
