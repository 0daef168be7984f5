package sorter

import "cmp"

// boundedQueue is a binary heap holding at most capacity entries.
// The top is the worst kept entry, so a better entry replaces it in O(log n).
// Value-based storage, no container/heap to avoid interface overhead.
type boundedQueue[V cmp.Ordered] struct {
	// compare orders entries best-first.
	compare  func(a, b entry[V]) int
	capacity int
	items    []entry[V]
}

func newBoundedQueue[V cmp.Ordered](capacity int, compare func(a, b entry[V]) int) *boundedQueue[V] {
	return &boundedQueue[V]{
		compare:  compare,
		capacity: capacity,
		items:    make([]entry[V], 0, min(capacity, 1024)),
	}
}

// Len returns the number of entries held.
func (q *boundedQueue[V]) Len() int {
	return len(q.items)
}

// Top returns the worst kept entry.
func (q *boundedQueue[V]) Top() (entry[V], bool) {
	if len(q.items) == 0 {
		return entry[V]{}, false
	}
	return q.items[0], true
}

// Push offers e to the queue. If the queue is full, e replaces the top only
// when it is strictly better than it.
func (q *boundedQueue[V]) Push(e entry[V]) {
	if len(q.items) < q.capacity {
		q.items = append(q.items, e)
		q.siftUp(len(q.items) - 1)
		return
	}

	if q.compare(e, q.items[0]) < 0 {
		q.items[0] = e
		q.siftDown(0)
	}
}

// Pop removes and returns the worst entry.
func (q *boundedQueue[V]) Pop() (entry[V], bool) {
	n := len(q.items)
	if n == 0 {
		return entry[V]{}, false
	}

	e := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]

	if len(q.items) > 0 {
		q.siftDown(0)
	}

	return e, true
}

// Drain empties the queue and returns its entries best-first.
func (q *boundedQueue[V]) Drain() []entry[V] {
	out := make([]entry[V], len(q.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i], _ = q.Pop()
	}
	return out
}

// worse reports whether the entry at i should sit above the entry at j.
func (q *boundedQueue[V]) worse(i, j int) bool {
	return q.compare(q.items[i], q.items[j]) > 0
}

func (q *boundedQueue[V]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.worse(i, parent) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *boundedQueue[V]) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		right := left + 1
		if right < n && q.worse(right, left) {
			child = right
		}
		if !q.worse(child, i) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}
