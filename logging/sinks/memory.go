package sinks

import (
	"context"
	"slices"

	"github.com/sasha-s/go-deadlock"

	"horde-hunt/server/logging"
)

// MemorySink keeps every event in memory. Tests use it either behind a router
// or directly as a Publisher.
type MemorySink struct {
	mu     deadlock.RWMutex
	events []logging.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(event logging.Event) error {
	event.Targets = slices.Clone(event.Targets)
	if event.Extra != nil {
		extra := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			extra[k] = v
		}
		event.Extra = extra
	}
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

// Publish records synchronously, skipping the router.
func (s *MemorySink) Publish(_ context.Context, event logging.Event) {
	_ = s.Write(event)
}

func (s *MemorySink) Events() []logging.Event {
	return s.filter(func(logging.Event) bool { return true })
}

// OfType returns the captured events of one type.
func (s *MemorySink) OfType(t logging.EventType) []logging.Event {
	return s.filter(func(e logging.Event) bool { return e.Type == t })
}

// InRoom returns the captured events stamped with room.
func (s *MemorySink) InRoom(room string) []logging.Event {
	return s.filter(func(e logging.Event) bool { return e.Room == room })
}

func (s *MemorySink) filter(keep func(logging.Event) bool) []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]logging.Event, 0, len(s.events))
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemorySink) Close(context.Context) error {
	return nil
}
