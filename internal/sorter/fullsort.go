package sorter

import (
	"cmp"
	"iter"
	"slices"

	"github.com/hupe1980/fieldsort/internal/valueindex"
)

// FullSort sorts every candidate by its value and yields up to Limit results.
// Each candidate is looked up once; candidates absent from the index are
// excluded and counted as missing.
//
// Cost: O(candidates * log(candidates)).
func FullSort[V cmp.Ordered](src Source[V], req Request) (iter.Seq[uint32], error) {
	return func(yield func(uint32) bool) {
		var entries []entry[V]
		missing := 0

		src.read(func(ix *valueindex.Index[V]) {
			entries = make([]entry[V], 0, req.Candidates.Len())
			for docid := range req.Candidates.All() {
				v, ok := ix.Lookup(docid)
				if !ok {
					missing++
					continue
				}
				entries = append(entries, entry[V]{value: v, docid: docid})
			}
		})
		req.record(len(entries)+missing, missing)

		if req.Descending {
			slices.SortFunc(entries, compareEntriesDesc[V])
		} else {
			slices.SortFunc(entries, compareEntries[V])
		}

		emit(entries, req.Limit, yield)
	}, nil
}
