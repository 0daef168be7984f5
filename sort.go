package fieldsort

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/hupe1980/fieldsort/docset"
	"github.com/hupe1980/fieldsort/internal/sorter"
	"github.com/hupe1980/fieldsort/strategy"
)

type sortOptions struct {
	reverse  bool
	limit    int
	limitSet bool
	strategy strategy.Strategy
	name     string
	nameSet  bool
}

// SortOption configures a single Sort call.
type SortOption func(*sortOptions)

// WithReverse sorts by descending value.
func WithReverse() SortOption {
	return func(o *sortOptions) {
		o.reverse = true
	}
}

// WithLimit bounds the number of results. n must be 1 or greater.
func WithLimit(n int) SortOption {
	return func(o *sortOptions) {
		o.limit = n
		o.limitSet = true
	}
}

// WithStrategy forces a sort algorithm instead of choosing one from the
// input statistics. strategy.Auto restores automatic selection.
func WithStrategy(s strategy.Strategy) SortOption {
	return func(o *sortOptions) {
		o.strategy = s
		o.nameSet = false
	}
}

// WithStrategyName is WithStrategy for a strategy name such as "nbest",
// "fwscan" or "timsort". Unknown names make Sort fail with
// ErrUnknownStrategy.
func WithStrategyName(name string) SortOption {
	return func(o *sortOptions) {
		o.name = name
		o.nameSet = true
	}
}

// resolve validates o and returns the forced strategy (Auto if none).
func (o *sortOptions) resolve() (strategy.Strategy, error) {
	if o.limitSet && o.limit < 1 {
		return strategy.Auto, &ErrLimitOutOfRange{Limit: o.limit}
	}

	s := o.strategy
	if o.nameSet {
		parsed, err := strategy.Parse(o.name)
		if err != nil {
			return strategy.Auto, &ErrUnknownStrategyName{Name: o.name, Reverse: o.reverse, cause: err}
		}
		s = parsed
	}

	if !s.Valid() {
		return strategy.Auto, &ErrUnknownStrategyName{Name: s.String(), Reverse: o.reverse}
	}
	if o.reverse && !s.SupportsReverse() {
		return strategy.Auto, &ErrUnknownStrategyName{Name: s.String(), Reverse: true}
	}
	if s == strategy.NBest && !o.limitSet {
		return strategy.Auto, ErrNBestWithoutLimit
	}
	return s, nil
}

// Sort returns the documents of candidates ordered by their value in this
// field, ascending unless WithReverse is given.
//
// Candidates without a value in this field are skipped. Documents sharing a
// value are ordered by docid, ascending for an ascending sort and descending
// for a descending sort, whichever algorithm runs.
//
// Unless forced with WithStrategy, the algorithm is chosen from the number
// of candidates, the number of indexed documents and the limit. The
// returned sequence is lazy: no sorting happens until it is ranged over, and
// breaking out of the loop stops all further work. Each range re-runs the
// sort. ctx is checked between results; cancellation ends the sequence.
//
// Example:
//
//	seq, err := price.Sort(ctx, hits, fieldsort.WithLimit(10))
//	if err != nil {
//	    return err
//	}
//	for docid := range seq {
//	    fmt.Println(docid)
//	}
func (f *FieldIndex[V]) Sort(ctx context.Context, candidates docset.Set, optFns ...SortOption) (iter.Seq[uint32], error) {
	start := time.Now()

	var so sortOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&so)
		}
	}

	numCandidates := 0
	if candidates != nil {
		numCandidates = candidates.Len()
	}

	forced, err := so.resolve()
	if err != nil {
		f.opts.metricsCollector.RecordSort(forced, numCandidates, 0, time.Since(start), err)
		f.logger.LogSort(ctx, SortEvent{Candidates: numCandidates, Limit: so.limit, Reverse: so.reverse}, err)
		return nil, err
	}

	if numCandidates == 0 {
		return emptySeq, nil
	}

	f.mu.RLock()
	ix := f.ix
	corpus := ix.Len()
	f.mu.RUnlock()
	if corpus == 0 {
		return emptySeq, nil
	}

	ev := SortEvent{
		Strategy:   forced,
		Forced:     forced != strategy.Auto,
		Candidates: numCandidates,
		Corpus:     corpus,
		Limit:      so.limit,
		Reverse:    so.reverse,
	}
	if !ev.Forced {
		ev.Strategy = strategy.Select(numCandidates, corpus, so.limit, so.reverse)
	}
	f.logger.LogSortPlan(ctx, ev)

	src := sorter.Source[V]{Index: ix, Lock: f.mu.RLocker()}

	return func(yield func(uint32) bool) {
		var (
			stats    sorter.Stats
			returned int
			runErr   error
		)
		defer func() {
			done := ev
			done.Returned = returned
			done.Examined = stats.Examined
			done.Missing = stats.Missing
			f.opts.metricsCollector.RecordSort(done.Strategy, numCandidates, returned, time.Since(start), runErr)
			f.logger.LogSort(ctx, done, runErr)
		}()

		seq, err := sorter.Run(src, ev.Strategy, sorter.Request{
			Candidates: candidates,
			Limit:      so.limit,
			Descending: so.reverse,
			Stats:      &stats,
		})
		if err != nil {
			runErr = translateError(err)
			return
		}

		for docid := range seq {
			if runErr = ctx.Err(); runErr != nil {
				return
			}
			returned++
			if !yield(docid) {
				return
			}
		}
	}, nil
}

// SortSlice is Sort with the results collected into a slice. It returns
// ctx.Err() if ctx was canceled before the sort finished.
func (f *FieldIndex[V]) SortSlice(ctx context.Context, candidates docset.Set, optFns ...SortOption) ([]uint32, error) {
	seq, err := f.Sort(ctx, candidates, optFns...)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, seq)
}

// Collect materializes a sort sequence.
func Collect(ctx context.Context, seq iter.Seq[uint32]) ([]uint32, error) {
	result := slices.Collect(seq)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if result == nil {
		result = []uint32{}
	}
	return result, nil
}

func emptySeq(func(uint32) bool) {}
