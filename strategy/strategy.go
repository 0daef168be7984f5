// Package strategy chooses the sort algorithm for a field sort.
//
// Three algorithms compete:
//
//   - ScanForward walks the whole field index in value order and keeps the
//     candidates it meets. It costs O(corpus) but needs no comparisons, so it
//     wins when the candidates are a large share of the corpus or when no
//     limit bounds the work.
//   - NBest keeps the best limit candidates in a bounded heap, costing
//     O(candidates * log(limit)). It wins for small limits.
//   - FullSort sorts all candidates, costing O(candidates * log(candidates)).
//     It wins in the middle ground.
//
// The thresholds used by Select are empirically tuned, not derived.
package strategy

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy identifies a sort algorithm.
type Strategy uint8

const (
	// Auto lets Select pick the algorithm.
	Auto Strategy = iota
	// ScanForward walks the index in ascending value order. Ascending only.
	ScanForward
	// NBest selects the best limit documents with a bounded heap. Requires a limit.
	NBest
	// FullSort sorts every candidate by its value.
	FullSort
)

// NBestMaxLimit is the limit below which NBest always wins.
const NBestMaxLimit = 300

// ErrUnknown is returned by Parse for names that identify no strategy.
var ErrUnknown = errors.New("unknown sort strategy")

// String returns the canonical name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case ScanForward:
		return "fwscan"
	case NBest:
		return "nbest"
	case FullSort:
		return "timsort"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the declared strategies.
func (s Strategy) Valid() bool {
	return s <= FullSort
}

// SupportsReverse reports whether s can produce descending results.
func (s Strategy) SupportsReverse() bool {
	return s != ScanForward
}

// Parse resolves a strategy name. Matching is case-insensitive.
func Parse(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "fwscan", "scan-forward", "scanforward":
		return ScanForward, nil
	case "nbest", "n-best":
		return NBest, nil
	case "timsort", "full-sort", "fullsort":
		return FullSort, nil
	default:
		return Auto, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
}

// Select picks the algorithm for sorting candidates documents out of a
// corpus of corpus documents. A limit <= 0 means no limit.
//
// The caller guarantees corpus > 0 and candidates > 0.
func Select(candidates, corpus, limit int, reverse bool) Strategy {
	if reverse {
		return selectReverse(candidates, limit)
	}
	return selectForward(candidates, corpus, limit)
}

func selectForward(candidates, corpus, limit int) Strategy {
	if limit > 0 && limit < NBestMaxLimit {
		return NBest
	}

	docRatio := float64(candidates) / float64(corpus)
	if limit <= 0 || docRatio > 0.25 {
		return ScanForward
	}

	if docRatio > 0.015625 {
		// Below a quarter of the corpus the scan still wins for some
		// combinations of document ratio and limit ratio, starting at
		// 1024/65536.
		limitRatio := float64(candidates) / float64(limit)
		switch {
		// The lower bound exceeds the upper bound, so this band never matches.
		case 0.0313 >= docRatio && docRatio > 0.051625 && limitRatio < 0.0025:
			return ScanForward
		case 0.0625 >= docRatio && docRatio > 0.0313 && limitRatio < 0.001:
			return ScanForward
		case 0.125 >= docRatio && docRatio > 0.0625 && limitRatio < 0.008:
			return ScanForward
		case 0.25 >= docRatio && docRatio > 0.125 && limitRatio < 0.0625:
			return ScanForward
		}
	}

	return FullSort
}

func selectReverse(candidates, limit int) Strategy {
	if limit <= 0 {
		return FullSort
	}
	if limit < NBestMaxLimit || float64(limit)/float64(candidates) > 0.09 {
		return NBest
	}
	return FullSort
}
