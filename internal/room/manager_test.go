package room

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"horde-hunt/server/internal/config"
)

func newTestManager(t *testing.T) (*Manager, *config.FileStore) {
	t.Helper()
	store, err := config.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	m := NewManager(context.Background(), quietConfig(), store, Deps{})
	t.Cleanup(m.Close)
	return m, store
}

func TestManagerCreateAssignsIDs(t *testing.T) {
	m, _ := newTestManager(t)

	r, err := m.Create("")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := uuid.Parse(r.ID()); err != nil {
		t.Fatalf("expected a uuid room id, got %q", r.ID())
	}
	if _, err := m.Create(r.ID()); !errors.Is(err, ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
	if _, err := m.Create("no spaces allowed"); !errors.Is(err, config.ErrInvalidRoomID) {
		t.Fatalf("expected ErrInvalidRoomID, got %v", err)
	}
}

func TestManagerJoinCreatesOnce(t *testing.T) {
	m, _ := newTestManager(t)

	first, err := m.Join("lobby")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	second, err := m.Join("lobby")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same room instance")
	}
	if _, err := m.Create("arena"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	infos := m.List()
	if len(infos) != 2 || infos[0].ID != "arena" || infos[1].ID != "lobby" {
		t.Fatalf("unexpected listing %+v", infos)
	}
}

func TestManagerUpdateConfigMergesAndPersists(t *testing.T) {
	m, store := newTestManager(t)
	if _, err := m.Create("lobby"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cfg, err := m.UpdateConfig("lobby", []byte(`{"chat":{"maxLength":80}}`))
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if cfg.Chat.MaxLength != 80 || !cfg.Chat.Enabled {
		t.Fatalf("expected a deep merge, got %+v", cfg.Chat)
	}
	live, err := m.Config("lobby")
	if err != nil || live.Chat.MaxLength != 80 {
		t.Fatalf("live config not updated: %+v (%v)", live.Chat, err)
	}
	saved, found, err := store.Load("lobby")
	if err != nil || !found {
		t.Fatalf("expected saved config, found=%v err=%v", found, err)
	}
	if saved.Chat.MaxLength != 80 {
		t.Fatalf("saved config not merged: %+v", saved.Chat)
	}

	if _, err := m.UpdateConfig("lobby", []byte(`{"tick":{"intervalMs":1}}`)); !errors.Is(err, config.ErrInvalidOverride) {
		t.Fatalf("expected ErrInvalidOverride, got %v", err)
	}
	if _, err := m.UpdateConfig("lobby", []byte(`{"nope":true}`)); !errors.Is(err, config.ErrInvalidOverride) {
		t.Fatalf("expected unknown keys to be rejected, got %v", err)
	}
	live, _ = m.Config("lobby")
	if live.Tick.IntervalMS != 50 {
		t.Fatalf("rejected override leaked into the room: %d", live.Tick.IntervalMS)
	}

	if _, err := m.UpdateConfig("missing", []byte(`{}`)); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestManagerRecreatedRoomLoadsSavedConfig(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Create("lobby"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := m.UpdateConfig("lobby", []byte(`{"round":{"seconds":120}}`)); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !m.Remove("lobby") {
		t.Fatalf("expected room to be removed")
	}
	if _, ok := m.Get("lobby"); ok {
		t.Fatalf("room still registered after remove")
	}

	if _, err := m.Join("lobby"); err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}
	cfg, err := m.Config("lobby")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.Round.Seconds != 120 {
		t.Fatalf("expected stored round length, got %d", cfg.Round.Seconds)
	}
}

func TestManagerRestoreStartsStoredRooms(t *testing.T) {
	store, err := config.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	saved := quietConfig()
	saved.Round.Seconds = 75
	for _, id := range []string{"crypt", "sewer"} {
		if err := store.Save(id, saved); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	m := NewManager(context.Background(), quietConfig(), store, Deps{})
	t.Cleanup(m.Close)
	started, err := m.Restore()
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if started != 2 || len(m.List()) != 2 {
		t.Fatalf("expected two restored rooms, got %d", started)
	}
	cfg, err := m.Config("sewer")
	if err != nil || cfg.Round.Seconds != 75 {
		t.Fatalf("restored room lost its config: %d (%v)", cfg.Round.Seconds, err)
	}
}
