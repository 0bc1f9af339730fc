package logging_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"horde-hunt/server/logging"
	"horde-hunt/server/logging/sinks"
)

type failingSink struct{}

func (failingSink) Write(logging.Event) error   { return errors.New("disk full") }
func (failingSink) Close(context.Context) error { return nil }

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestRouterDeliversAndStampsFields(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"build": "test"}
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(logging.ClockFunc(func() time.Time { return fixed }), cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}

	router.Publish(context.Background(), logging.Event{Type: "test.info", Severity: logging.SeverityInfo, Category: logging.CategoryCombat})
	router.Publish(context.Background(), logging.Event{Type: "test.debug", Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityError})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected only the info event, got %+v", events)
	}
	if !events[0].Time.Equal(fixed) {
		t.Fatalf("expected router clock to stamp time, got %v", events[0].Time)
	}
	if events[0].Extra["build"] != "test" {
		t.Fatalf("expected configured fields, got %+v", events[0].Extra)
	}

	stats := router.Stats()
	if stats.EventsTotal != 1 || len(stats.Sinks) != 1 || stats.Sinks[0].Written != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Categories[logging.CategoryCombat] != 1 || len(stats.Categories) != 1 {
		t.Fatalf("unexpected category counts %+v", stats.Categories)
	}

	router.Publish(context.Background(), logging.Event{Type: "test.late", Severity: logging.SeverityError})
	if got := len(memory.Events()); got != 1 {
		t.Fatalf("closed router must ignore events, sink has %d", got)
	}
}

func TestRouterCountsSinkFailures(t *testing.T) {
	router, err := logging.NewRouter(nil, logging.DefaultConfig(), []logging.NamedSink{{Name: "broken", Sink: failingSink{}}})
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}
	router.Publish(context.Background(), logging.Event{Type: "test.info", Severity: logging.SeverityInfo})
	closeRouter(t, router)

	stats := router.Stats()
	if stats.Sinks[0].Failures != 1 || stats.Sinks[0].Written != 0 {
		t.Fatalf("expected one failure, got %+v", stats.Sinks[0])
	}
}

func TestForRoomStampsRoom(t *testing.T) {
	memory := sinks.NewMemorySink()
	pub := logging.ForRoom(memory, "lobby", map[string]any{"seed": "abc"})
	pub.Publish(context.Background(), logging.Event{Type: "test.room", Extra: map[string]any{"seed": "own"}})

	events := memory.OfType("test.room")
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Room != "lobby" || len(memory.InRoom("lobby")) != 1 {
		t.Fatalf("expected room stamp, got %q", events[0].Room)
	}
	if events[0].Extra["seed"] != "own" {
		t.Fatalf("event extras must win over room fields, got %+v", events[0].Extra)
	}
}

func TestParseSinks(t *testing.T) {
	got := logging.ParseSinks(" Console,json,,console ")
	if len(got) != 2 || got[0] != "console" || got[1] != "json" {
		t.Fatalf("unexpected sinks %v", got)
	}
	if logging.ParseSeverity("bogus") != logging.SeverityInfo {
		t.Fatalf("unknown severity should default to info")
	}
}
