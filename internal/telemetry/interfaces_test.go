package telemetry

import (
	"bytes"
	"log"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := log.New(&buf, "", 0)
		logger := WrapLogger(base)
		logger.Printf("hello %s", "world")
		if got := buf.String(); got != "hello world\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})
}

func TestWrapZap(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := WrapZap(zap.New(core))
	logger.Printf("room %s started", "lobby")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Message != "room lobby started" {
		t.Fatalf("unexpected message %q", entries[0].Message)
	}

	WrapZap(nil).Printf("ignored")
}

func TestCounters(t *testing.T) {
	counters := NewCounters()
	var metrics Metrics = counters

	metrics.Add("test_counter", 2)
	metrics.Store("test_counter", 5)
	metrics.Add("test_counter", 3)
	metrics.Add("another", 1)

	snapshot := counters.Snapshot()
	if got := snapshot["test_counter"]; got != 8 {
		t.Fatalf("unexpected metric value: %d", got)
	}
	keys := counters.Keys()
	if len(keys) != 2 || keys[0] != "another" || keys[1] != "test_counter" {
		t.Fatalf("unexpected keys %v", keys)
	}

	var nilCounters *Counters
	nilCounters.Add("ignored", 1)
	nilCounters.Store("ignored", 1)
	if len(nilCounters.Snapshot()) != 0 {
		t.Fatalf("nil counters should snapshot empty")
	}
	NopMetrics{}.Add("ignored", 1)
}
