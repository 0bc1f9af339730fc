package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidRoomID is returned for ids that cannot be used as file names.
var ErrInvalidRoomID = errors.New("invalid room id")

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidRoomID reports whether id can name a room.
func ValidRoomID(id string) bool {
	return roomIDPattern.MatchString(id)
}

// Store persists merged room configurations so a room can be recreated with
// the same rules.
type Store interface {
	Load(roomID string) (Config, bool, error)
	Save(roomID string, cfg Config) error
	List() ([]string, error)
}

// FileStore keeps one JSON document per room inside Dir.
type FileStore struct {
	Dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("config store directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config store dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(roomID string) (string, error) {
	if !roomIDPattern.MatchString(roomID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoomID, roomID)
	}
	return filepath.Join(s.Dir, roomID+".json"), nil
}

// Load returns the stored config for roomID. found is false when nothing was saved.
func (s *FileStore) Load(roomID string) (Config, bool, error) {
	path, err := s.path(roomID)
	if err != nil {
		return Config{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, false, nil
	}
	if err != nil {
		return Config{}, false, fmt.Errorf("read room config %s: %w", roomID, err)
	}
	cfg, err := Merge(Default(), data)
	if err != nil {
		return Config{}, false, fmt.Errorf("decode room config %s: %w", roomID, err)
	}
	return cfg, true, nil
}

// Save writes cfg atomically through a temporary file.
func (s *FileStore) Save(roomID string, cfg Config) error {
	path, err := s.path(roomID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode room config %s: %w", roomID, err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.Dir, roomID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace room config %s: %w", roomID, err)
	}
	return nil
}

// List returns the ids of every stored room in lexical order.
func (s *FileStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("list config store: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if roomIDPattern.MatchString(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Equal reports whether two configs serialise identically.
func Equal(a, b Config) bool {
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(left, right)
}
