package sorter

import (
	"cmp"
	"iter"

	"github.com/hupe1980/fieldsort/internal/valueindex"
)

// ScanForward walks the index in ascending value order and yields every
// document that is a candidate. It stops as soon as the limit is reached and
// never reads groups beyond that point.
//
// Cost: O(documents scanned), at most O(corpus).
func ScanForward[V cmp.Ordered](src Source[V], req Request) (iter.Seq[uint32], error) {
	if req.Descending {
		return nil, ErrUnsupportedDirection
	}

	return func(yield func(uint32) bool) {
		var (
			after    V
			first    = true
			emitted  int
			examined int
			buf      []uint32
		)
		defer func() { req.record(examined, 0) }()

		for {
			buf = buf[:0]
			more := false

			src.read(func(ix *valueindex.Index[V]) {
				v, group, ok := ix.GroupAfter(after, first)
				if !ok {
					return
				}
				after, first, more = v, false, true

				it := group.Iterator()
				for it.HasNext() {
					docid := it.Next()
					examined++
					if !req.Candidates.Contains(docid) {
						continue
					}
					buf = append(buf, docid)
					if req.limited() && emitted+len(buf) >= req.Limit {
						return
					}
				}
			})

			for _, docid := range buf {
				emitted++
				if !yield(docid) {
					return
				}
			}

			if !more || (req.limited() && emitted >= req.Limit) {
				return
			}
		}
	}, nil
}
