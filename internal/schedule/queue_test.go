package schedule

import (
	"testing"
	"time"
)

func TestDueReturnsEventsInFiringOrder(t *testing.T) {
	base := time.Unix(1000, 0)
	var q Queue
	q.Push(base.Add(3*time.Second), RespawnHorde, "c")
	q.Push(base.Add(time.Second), RespawnHorde, "a")
	q.Push(base.Add(time.Second), RespawnHunter, "b")
	q.Push(base.Add(10*time.Second), RespawnHorde, "late")

	due := q.Due(base.Add(3 * time.Second))
	if len(due) != 3 {
		t.Fatalf("expected 3 due events, got %d", len(due))
	}
	order := []string{due[0].Subject, due[1].Subject, due[2].Subject}
	if order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected order %v", order)
	}
	if q.Len() != 1 {
		t.Fatalf("expected one pending event, got %d", q.Len())
	}
	if !q.Pending(RespawnHorde, "late") {
		t.Fatalf("expected late event to remain queued")
	}
}

func TestDueNothingBeforeTime(t *testing.T) {
	base := time.Unix(0, 0)
	var q Queue
	q.Push(base.Add(time.Second), RespawnHorde, "x")
	if due := q.Due(base); len(due) != 0 {
		t.Fatalf("expected no events yet, got %v", due)
	}
}
