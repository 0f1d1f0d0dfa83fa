package priority

// Heap implements a binary heap ordered by a caller supplied less function.
// The element for which less reports true against every other element sits
// at the top.
type Heap[E any] struct {
	items []E
	lessF func(a, b E) bool // returns true if a has higher priority than b
}

// NewHeap creates a new heap with the given comparator.
func NewHeap[E any](less func(a, b E) bool) *Heap[E] {
	return &Heap[E]{
		items: make([]E, 0),
		lessF: less,
	}
}

// NewHeapWithCapacity is NewHeap with preallocated room for n items.
func NewHeapWithCapacity[E any](n int, less func(a, b E) bool) *Heap[E] {
	return &Heap[E]{
		items: make([]E, 0, n),
		lessF: less,
	}
}

// Len returns the number of items in the heap.
func (h *Heap[E]) Len() int {
	return len(h.items)
}

// Push adds an item.
func (h *Heap[E]) Push(item E) {
	h.items = append(h.items, item)
	h.up(len(h.items) - 1)
}

// Pop removes and returns the highest priority item.
func (h *Heap[E]) Pop() (item E, exists bool) {
	if len(h.items) == 0 {
		var zero E
		return zero, false
	}

	top := h.items[0]
	last := len(h.items) - 1
	h.swap(0, last)

	var zero E
	h.items[last] = zero
	h.items = h.items[:last]

	if last > 0 {
		h.down(0)
	}
	return top, true
}

// Peek returns the highest priority item without removing it.
func (h *Heap[E]) Peek() (item E, exists bool) {
	if len(h.items) == 0 {
		var zero E
		return zero, false
	}
	return h.items[0], true
}

func (h *Heap[E]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *Heap[E]) less(i, j int) bool {
	return h.lessF(h.items[i], h.items[j])
}

// up moves the element at index i up to its proper position.
func (h *Heap[E]) up(i int) {
	for {
		parent := (i - 1) / 2
		if parent == i || !h.less(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

// down moves the element at index i down to its proper position.
func (h *Heap[E]) down(i int) {
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < len(h.items) && h.less(left, smallest) {
			smallest = left
		}
		if right < len(h.items) && h.less(right, smallest) {
			smallest = right
		}

		if smallest == i {
			break
		}

		h.swap(i, smallest)
		i = smallest
	}
}
