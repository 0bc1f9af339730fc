package sinks

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"horde-hunt/server/logging"
)

func sampleEvent() logging.Event {
	return logging.Event{
		Type:     "combat.damage",
		Tick:     42,
		Time:     time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Room:     "lobby",
		Severity: logging.SeverityWarn,
		Category: logging.CategoryCombat,
		Actor:    logging.Ref("p1", logging.EntityKindPlayer),
		Targets:  []logging.EntityRef{logging.Ref("h1", logging.EntityKindHostile)},
		Payload:  map[string]any{"amount": 15},
	}
}

func TestConsoleSinkFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	line := buf.String()
	for _, want := range []string{"[combat.damage]", "tick=42", "room=lobby", "severity=warn", "targets=", `payload={"amount":15}`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestJSONSinkWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, 0)
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("line is not json: %v", err)
	}
	if decoded["type"] != "combat.damage" || decoded["severity"] != "warn" || decoded["room"] != "lobby" {
		t.Fatalf("unexpected record %+v", decoded)
	}
}

func TestZapSinkMapsSeverity(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	sink := NewZapWithLogger(zap.New(core))
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.WarnLevel || entry.Message != "combat.damage" {
		t.Fatalf("unexpected entry %+v", entry.Entry)
	}
	if entry.ContextMap()["room"] != "lobby" {
		t.Fatalf("missing room field: %+v", entry.ContextMap())
	}
}
