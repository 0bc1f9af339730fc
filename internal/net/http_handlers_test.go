package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/room"
	"horde-hunt/server/internal/telemetry"
)

func newTestHandler(t *testing.T) (http.Handler, *room.Manager, *config.FileStore) {
	t.Helper()
	store, err := config.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	cfg := config.Default()
	cfg.AI.MaxCount = 0
	cfg.Boss.Enabled = false
	manager := room.NewManager(context.Background(), cfg, store, room.Deps{})
	t.Cleanup(manager.Close)

	counters := telemetry.NewCounters()
	counters.Add("room_ticks", 3)
	return NewHTTPHandler(manager, HTTPHandlerConfig{Counters: counters}), manager, store
}

func do(t *testing.T, handler http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode payload %s: %v", resp.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	resp := do(t, handler, http.MethodGet, "/health", nil)
	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.Code, resp.Body.String())
	}
}

func TestRoomsCreateAndList(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	resp := do(t, handler, http.MethodPost, "/rooms", []byte(`{"id":"arena"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Status string    `json:"status"`
		Room   room.Info `json:"room"`
	}
	decode(t, resp, &created)
	if created.Room.ID != "arena" {
		t.Fatalf("unexpected room %+v", created.Room)
	}

	if resp := do(t, handler, http.MethodPost, "/rooms", []byte(`{"id":"arena"}`)); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate room, got %d", resp.Code)
	}
	if resp := do(t, handler, http.MethodPost, "/rooms", []byte(`{"id":"../etc"}`)); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad id, got %d", resp.Code)
	}
	if resp := do(t, handler, http.MethodPost, "/rooms", nil); resp.Code != http.StatusCreated {
		t.Fatalf("expected an anonymous room to be created, got %d", resp.Code)
	}

	resp = do(t, handler, http.MethodGet, "/rooms", nil)
	var listing struct {
		Rooms []room.Info `json:"rooms"`
	}
	decode(t, resp, &listing)
	if len(listing.Rooms) != 2 {
		t.Fatalf("expected two rooms, got %+v", listing.Rooms)
	}

	if resp := do(t, handler, http.MethodDelete, "/rooms", nil); resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestRoomConfigOverride(t *testing.T) {
	handler, manager, store := newTestHandler(t)
	if _, err := manager.Create("lobby"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	resp := do(t, handler, http.MethodPost, "/rooms/lobby/config", []byte(`{"hazards":{"poisonDamage":7},"round":{"seconds":90}}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var updated struct {
		Status string        `json:"status"`
		Config config.Config `json:"config"`
	}
	decode(t, resp, &updated)
	if updated.Config.Hazards.PoisonDamage != 7 || updated.Config.Round.Seconds != 90 {
		t.Fatalf("override not applied: %+v", updated.Config)
	}
	if updated.Config.Hazards.SpikeDamage != config.Default().Hazards.SpikeDamage {
		t.Fatalf("sibling keys must survive a deep merge")
	}
	if saved, found, err := store.Load("lobby"); err != nil || !found || saved.Round.Seconds != 90 {
		t.Fatalf("expected override to be persisted, found=%v err=%v", found, err)
	}

	resp = do(t, handler, http.MethodPost, "/rooms/lobby/config", []byte(`{"hazards":{"poisonDamage":"lots"}}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad override, got %d", resp.Code)
	}
	var failure errorResponse
	decode(t, resp, &failure)
	if failure.Status != "error" || failure.Error == "" {
		t.Fatalf("unexpected error payload %+v", failure)
	}

	resp = do(t, handler, http.MethodGet, "/rooms/lobby/config", nil)
	var live config.Config
	decode(t, resp, &live)
	if live.Hazards.PoisonDamage != 7 {
		t.Fatalf("rejected override changed the room: %+v", live.Hazards)
	}

	if resp := do(t, handler, http.MethodGet, "/rooms/ghost/config", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown room, got %d", resp.Code)
	}
}

func TestConfigSchema(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	resp := do(t, handler, http.MethodGet, "/config/schema", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var schema map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &schema); err != nil {
		t.Fatalf("schema is not json: %v", err)
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %s", resp.Body.String())
	}
	for _, key := range []string{"arena", "tick", "hazards", "boss", "chat"} {
		if _, ok := props[key]; !ok {
			t.Fatalf("schema missing %q", key)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	handler, manager, _ := newTestHandler(t)
	if _, err := manager.Create("lobby"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	resp := do(t, handler, http.MethodGet, "/diagnostics", nil)
	var payload struct {
		Status    string            `json:"status"`
		Rooms     []room.Info       `json:"rooms"`
		Telemetry map[string]uint64 `json:"telemetry"`
	}
	decode(t, resp, &payload)
	if payload.Status != "ok" || len(payload.Rooms) != 1 || payload.Telemetry["room_ticks"] != 3 {
		t.Fatalf("unexpected diagnostics %+v", payload)
	}
}
