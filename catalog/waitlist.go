package catalog

// DefaultWaitlistCapacity bounds the number of pending reservations per book.
const DefaultWaitlistCapacity = 20

// WaitEntry is a pending reservation. Lower Priority is served first; equal
// priorities are served by earlier Arrival.
type WaitEntry struct {
	PatronID int
	Priority int
	Arrival  uint64
}

func (e WaitEntry) before(o WaitEntry) bool {
	if e.Priority != o.Priority {
		return e.Priority < o.Priority
	}
	return e.Arrival < o.Arrival
}

// Waitlist is a fixed-capacity binary min-heap of reservations.
type Waitlist struct {
	heap     []WaitEntry
	capacity int
}

// NewWaitlist returns an empty waitlist holding at most capacity entries.
func NewWaitlist(capacity int) *Waitlist {
	if capacity <= 0 {
		capacity = DefaultWaitlistCapacity
	}
	return &Waitlist{heap: make([]WaitEntry, 0, capacity), capacity: capacity}
}

// Len returns the number of pending entries.
func (w *Waitlist) Len() int { return len(w.heap) }

// Cap returns the capacity fixed at construction.
func (w *Waitlist) Cap() int { return w.capacity }

// Offer adds e. It reports false, leaving the heap untouched, when the
// waitlist is full.
func (w *Waitlist) Offer(e WaitEntry) bool {
	if len(w.heap) == w.capacity {
		return false
	}
	w.heap = append(w.heap, e)
	w.siftUp(len(w.heap) - 1)
	return true
}

// RemoveMin pops the entry to be served next.
func (w *Waitlist) RemoveMin() (WaitEntry, bool) {
	if len(w.heap) == 0 {
		return WaitEntry{}, false
	}
	top := w.heap[0]
	last := len(w.heap) - 1
	w.heap[0] = w.heap[last]
	w.heap = w.heap[:last]
	w.siftDown(0)
	return top, true
}

// Peek returns the entry RemoveMin would return without evicting it.
func (w *Waitlist) Peek() (WaitEntry, bool) {
	if len(w.heap) == 0 {
		return WaitEntry{}, false
	}
	return w.heap[0], true
}

// PatronIDs returns the pending patron ids in heap array order. This is the
// order reports print and is not sorted.
func (w *Waitlist) PatronIDs() []int {
	ids := make([]int, len(w.heap))
	for i, e := range w.heap {
		ids[i] = e.PatronID
	}
	return ids
}

func (w *Waitlist) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !w.heap[i].before(w.heap[p]) {
			return
		}
		w.heap[i], w.heap[p] = w.heap[p], w.heap[i]
		i = p
	}
}

func (w *Waitlist) siftDown(i int) {
	n := len(w.heap)
	for {
		smallest := i
		l, r := 2*i+1, 2*i+2
		if l < n && w.heap[l].before(w.heap[smallest]) {
			smallest = l
		}
		if r < n && w.heap[r].before(w.heap[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		w.heap[i], w.heap[smallest] = w.heap[smallest], w.heap[i]
		i = smallest
	}
}
