// Package docset provides candidate document sets for sorting.
//
// A candidate set is usually the result of a query evaluated by an enclosing
// index layer. The sort engine only needs membership tests, the set size and
// an iteration over its members, which is what Set captures.
package docset

import (
	"iter"
	"maps"
)

// Set is a read-only collection of unique document identifiers.
type Set interface {
	// Contains reports whether docid is a member of the set.
	Contains(docid uint32) bool
	// Len returns the number of members.
	Len() int
	// All iterates over the members. Implementations decide the order.
	All() iter.Seq[uint32]
}

// Map is a hash-set backed Set.
type Map map[uint32]struct{}

// NewMap creates a Map holding ids.
func NewMap(ids ...uint32) Map {
	m := make(Map, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// Add inserts docid.
func (m Map) Add(docid uint32) { m[docid] = struct{}{} }

// Contains implements Set.
func (m Map) Contains(docid uint32) bool {
	_, ok := m[docid]
	return ok
}

// Len implements Set.
func (m Map) Len() int { return len(m) }

// All implements Set. Iteration order is unspecified.
func (m Map) All() iter.Seq[uint32] { return maps.Keys(m) }
