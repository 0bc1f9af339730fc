package random

// Entry pairs a value with its lottery weight.
type Entry[T any] struct {
	Value  T
	Weight float64
}

// Weighted is a cumulative-weight table resolved with a single uniform draw.
// Entries with a non-positive weight never win.
type Weighted[T any] struct {
	entries    []Entry[T]
	cumulative []float64
	total      float64
}

// NewWeighted builds a table from the entries in the given order.
func NewWeighted[T any](entries ...Entry[T]) *Weighted[T] {
	w := &Weighted[T]{}
	for _, e := range entries {
		w.Add(e.Value, e.Weight)
	}
	return w
}

// Add appends an entry to the table.
func (w *Weighted[T]) Add(value T, weight float64) {
	if weight <= 0 {
		return
	}
	w.total += weight
	w.entries = append(w.entries, Entry[T]{Value: value, Weight: weight})
	w.cumulative = append(w.cumulative, w.total)
}

// Len reports the number of winnable entries.
func (w *Weighted[T]) Len() int {
	if w == nil {
		return 0
	}
	return len(w.entries)
}

// Total returns the sum of all weights.
func (w *Weighted[T]) Total() float64 {
	if w == nil {
		return 0
	}
	return w.total
}

// Pick draws one entry. ok is false when the table is empty.
func (w *Weighted[T]) Pick(src Source) (value T, ok bool) {
	idx := w.pickIndex(src)
	if idx < 0 {
		return value, false
	}
	return w.entries[idx].Value, true
}

func (w *Weighted[T]) pickIndex(src Source) int {
	if w == nil || len(w.entries) == 0 {
		return -1
	}
	roll := src.Float64() * w.total
	for i, edge := range w.cumulative {
		if roll < edge {
			return i
		}
	}
	return len(w.entries) - 1
}

// PickDistinct draws up to n entries without replacement.
func (w *Weighted[T]) PickDistinct(src Source, n int) []T {
	if w == nil || n <= 0 {
		return nil
	}
	pool := NewWeighted(w.entries...)
	picked := make([]T, 0, n)
	for len(picked) < n && pool.Len() > 0 {
		idx := pool.pickIndex(src)
		picked = append(picked, pool.entries[idx].Value)
		rest := make([]Entry[T], 0, pool.Len()-1)
		rest = append(rest, pool.entries[:idx]...)
		rest = append(rest, pool.entries[idx+1:]...)
		pool = NewWeighted(rest...)
	}
	return picked
}
