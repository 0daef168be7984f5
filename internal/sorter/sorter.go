// Package sorter implements the field sort algorithms.
//
// Every algorithm returns a lazy iter.Seq[uint32]: no work is done until the
// caller starts ranging over it, and breaking out of the loop stops all
// further work. ScanForward produces its output incrementally; NBest and
// FullSort must inspect every candidate before they can yield the first one.
//
// Ordering is the total order on (value, docid). Descending output is the
// exact reverse of ascending output, so documents sharing a value appear in
// ascending docid order when ascending and descending docid order when
// descending. All algorithms agree on this order.
package sorter

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/hupe1980/fieldsort/docset"
	"github.com/hupe1980/fieldsort/internal/valueindex"
	"github.com/hupe1980/fieldsort/strategy"
)

var (
	// ErrInvalidUsage marks programming errors: an algorithm was invoked
	// with inputs it cannot handle.
	ErrInvalidUsage = errors.New("invalid usage")

	// ErrNBestWithoutLimit is returned when NBest is invoked without a limit.
	ErrNBestWithoutLimit = fmt.Errorf("%w: n-best used without limit", ErrInvalidUsage)

	// ErrUnsupportedDirection is returned when an ascending-only algorithm is
	// asked for descending output.
	ErrUnsupportedDirection = errors.New("sort direction not supported by strategy")
)

// Source gives an algorithm read access to a value index.
type Source[V cmp.Ordered] struct {
	Index *valueindex.Index[V]
	// Lock guards Index. Algorithms hold it while reading the index and
	// release it before every yield. Nil means the caller owns Index.
	Lock sync.Locker
}

func (s Source[V]) read(fn func(ix *valueindex.Index[V])) {
	if s.Lock != nil {
		s.Lock.Lock()
		defer s.Lock.Unlock()
	}
	fn(s.Index)
}

// Request describes a single sort.
type Request struct {
	Candidates docset.Set
	// Limit bounds the number of results; <= 0 means unlimited.
	Limit      int
	Descending bool
	// Stats, if set, receives work counters once the work is done.
	Stats *Stats
}

func (r Request) limited() bool { return r.Limit > 0 }

// Stats counts the work an algorithm performed.
type Stats struct {
	// Examined is the number of documents looked at.
	Examined int
	// Missing is the number of candidates absent from the index.
	Missing int
}

func (r Request) record(examined, missing int) {
	if r.Stats == nil {
		return
	}
	r.Stats.Examined += examined
	r.Stats.Missing += missing
}

// Run dispatches req to the algorithm named by s. Auto is not accepted here;
// resolve it with strategy.Select first.
func Run[V cmp.Ordered](src Source[V], s strategy.Strategy, req Request) (iter.Seq[uint32], error) {
	switch s {
	case strategy.ScanForward:
		return ScanForward(src, req)
	case strategy.NBest:
		return NBest(src, req)
	case strategy.FullSort:
		return FullSort(src, req)
	case strategy.Auto:
		return nil, fmt.Errorf("%w: strategy must be resolved before dispatch", ErrInvalidUsage)
	default:
		return nil, fmt.Errorf("%w: %s", strategy.ErrUnknown, s)
	}
}

// entry is a decorated candidate.
type entry[V cmp.Ordered] struct {
	value V
	docid uint32
}

func compareEntries[V cmp.Ordered](a, b entry[V]) int {
	if c := cmp.Compare(a.value, b.value); c != 0 {
		return c
	}
	return cmp.Compare(a.docid, b.docid)
}

func compareEntriesDesc[V cmp.Ordered](a, b entry[V]) int {
	return compareEntries(b, a)
}

// emit yields the docids of entries, stopping after limit results when
// limit > 0.
func emit[V cmp.Ordered](entries []entry[V], limit int, yield func(uint32) bool) {
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for _, e := range entries {
		if !yield(e.docid) {
			return
		}
	}
}
