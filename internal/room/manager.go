package room

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"

	"horde-hunt/server/internal/config"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
)

// Manager owns every live room and persists their configs through a Store.
type Manager struct {
	ctx   context.Context
	base  config.Config
	store config.Store
	deps  Deps

	mu    deadlock.RWMutex
	rooms map[string]*Room
}

// NewManager creates an empty registry. Rooms inherit base unless the store
// holds a saved config for their id. store may be nil.
func NewManager(ctx context.Context, base config.Config, store config.Store, deps Deps) *Manager {
	return &Manager{
		ctx:   ctx,
		base:  base.Clone(),
		store: store,
		deps:  deps,
		rooms: make(map[string]*Room),
	}
}

// Create starts a new room. An empty id gets a random one.
func (m *Manager) Create(id string) (*Room, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if !config.ValidRoomID(id) {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidRoomID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, id)
	}
	return m.startLocked(id)
}

// Restore starts every room the store has a config for and returns how many
// came up.
func (m *Manager) Restore() (int, error) {
	if m.store == nil {
		return 0, nil
	}
	ids, err := m.store.List()
	if err != nil {
		return 0, fmt.Errorf("list stored rooms: %w", err)
	}
	started := 0
	for _, id := range ids {
		if _, err := m.Join(id); err != nil {
			return started, fmt.Errorf("restore room %s: %w", id, err)
		}
		started++
	}
	return started, nil
}

// Get looks up a live room.
func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Join returns the room a connection asked for, creating it on first use.
func (m *Manager) Join(id string) (*Room, error) {
	if r, ok := m.Get(id); ok {
		return r, nil
	}
	if !config.ValidRoomID(id) {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidRoomID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return m.startLocked(id)
}

func (m *Manager) startLocked(id string) (*Room, error) {
	cfg := m.base.Clone()
	if m.store != nil {
		stored, found, err := m.store.Load(id)
		if err != nil {
			return nil, err
		}
		if found {
			cfg = stored
		}
	}
	r, err := New(id, cfg, m.deps)
	if err != nil {
		return nil, err
	}
	r.Start(m.ctx)
	m.rooms[id] = r
	return r, nil
}

// List summarises every live room in id order.
func (m *Manager) List() []Info {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(rooms))
	for _, r := range rooms {
		info, err := r.Info()
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Config returns the live config of a room.
func (m *Manager) Config(id string) (config.Config, error) {
	r, ok := m.Get(id)
	if !ok {
		return config.Config{}, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return r.Config()
}

// UpdateConfig deep-merges override into the room's live config, applies it
// and saves the result. Invalid overrides change nothing.
func (m *Manager) UpdateConfig(id string, override []byte) (config.Config, error) {
	r, ok := m.Get(id)
	if !ok {
		return config.Config{}, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	current, err := r.Config()
	if err != nil {
		return config.Config{}, err
	}
	merged, err := config.Merge(current, override)
	if err != nil {
		return current, err
	}
	if err := r.ApplyConfig(merged); err != nil {
		return current, fmt.Errorf("%w: %v", config.ErrInvalidOverride, err)
	}
	if m.store != nil {
		if err := m.store.Save(id, merged); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

// Remove stops a room and forgets it. The saved config stays in the store.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()
	if ok {
		r.Stop()
	}
	return ok
}

// Close stops every room.
func (m *Manager) Close() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}
