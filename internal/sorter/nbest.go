package sorter

import (
	"cmp"
	"iter"

	"github.com/hupe1980/fieldsort/internal/valueindex"
)

// NBest selects the best Limit candidates with a bounded heap and yields them
// in order. Candidates absent from the index are skipped.
//
// Cost: O(candidates * log(limit)).
func NBest[V cmp.Ordered](src Source[V], req Request) (iter.Seq[uint32], error) {
	if !req.limited() {
		return nil, ErrNBestWithoutLimit
	}

	compare := compareEntries[V]
	if req.Descending {
		compare = compareEntriesDesc[V]
	}

	return func(yield func(uint32) bool) {
		q := newBoundedQueue(req.Limit, compare)
		examined, missing := 0, 0

		src.read(func(ix *valueindex.Index[V]) {
			for docid := range req.Candidates.All() {
				examined++
				v, ok := ix.Lookup(docid)
				if !ok {
					missing++
					continue
				}
				q.Push(entry[V]{value: v, docid: docid})
			}
		})
		req.record(examined, missing)

		emit(q.Drain(), 0, yield)
	}, nil
}
