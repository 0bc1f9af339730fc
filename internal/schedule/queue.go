package schedule

import (
	"container/heap"
	"time"
)

// EventKind names a deferred action.
type EventKind string

const (
	RespawnHorde  EventKind = "respawn_horde"
	RespawnHunter EventKind = "respawn_hunter"
	BossArrive    EventKind = "boss_arrive"
	RoundStart    EventKind = "round_start"
)

// Event is a deferred action. Handlers must check that Subject still exists
// before mutating anything.
type Event struct {
	At      time.Time
	Kind    EventKind
	Subject string
	seq     uint64
}

// Queue is a min-heap of events ordered by fire time, then insertion order.
type Queue struct {
	items eventHeap
	seq   uint64
}

// Push schedules an event.
func (q *Queue) Push(at time.Time, kind EventKind, subject string) {
	q.seq++
	heap.Push(&q.items, Event{At: at, Kind: kind, Subject: subject, seq: q.seq})
}

// Due pops every event whose time is not after now, in firing order.
func (q *Queue) Due(now time.Time) []Event {
	var due []Event
	for len(q.items) > 0 && !q.items[0].At.After(now) {
		due = append(due, heap.Pop(&q.items).(Event))
	}
	return due
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	return len(q.items)
}

// Pending reports whether an event of kind for subject is queued.
func (q *Queue) Pending(kind EventKind, subject string) bool {
	for _, e := range q.items {
		if e.Kind == kind && e.Subject == subject {
			return true
		}
	}
	return false
}

// Clear drops every pending event.
func (q *Queue) Clear() {
	q.items = q.items[:0]
}

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].At.Equal(h[j].At) {
		return h[i].seq < h[j].seq
	}
	return h[i].At.Before(h[j].At)
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(Event)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
