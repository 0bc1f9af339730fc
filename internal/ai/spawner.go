package ai

import (
	"time"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/tilemap"
)

const floorAttempts = 12

// SpawnConfig is the spawner tuning.
type SpawnConfig struct {
	MaxCount        int
	Cooldown        time.Duration
	MinDistance     float64
	MaxDistance     float64
	BaseHealth      float64
	BaseSpeed       float64
	ContactDamage   float64
	Radius          float64
	DetectionRadius float64
	ChaseRadius     float64
}

// SpawnConfigFrom reads the spawner tuning from a room config.
func SpawnConfigFrom(cfg config.Config) SpawnConfig {
	return SpawnConfig{
		MaxCount:        cfg.AI.MaxCount,
		Cooldown:        config.Millis(cfg.AI.SpawnCooldownMS),
		MinDistance:     cfg.AI.SpawnMinDistance,
		MaxDistance:     cfg.AI.SpawnMaxDistance,
		BaseHealth:      cfg.AI.BaseHealth,
		BaseSpeed:       cfg.AI.BaseSpeed,
		ContactDamage:   cfg.AI.ContactDamage,
		Radius:          cfg.AI.Radius,
		DetectionRadius: cfg.AI.DetectionRadius,
		ChaseRadius:     cfg.AI.ChaseRadius,
	}
}

// Spawner places AI hostiles on a cooldown, up to a cap.
type Spawner struct {
	NextAt  time.Time
	classes *random.Weighted[entity.Class]
}

// NewSpawner returns a spawner ready to fire immediately.
func NewSpawner() *Spawner {
	return &Spawner{classes: entity.ClassTable()}
}

// SpawnRequest carries the state a spawn decision reads.
type SpawnRequest struct {
	Now       time.Time
	Alive     int
	Map       *tilemap.Map
	HunterPos geom.Vec2
	HasHunter bool
	Rand      random.Source
	ID        string
}

// Tick spawns at most one hostile when the cooldown has elapsed and the room is
// under its cap.
func (s *Spawner) Tick(cfg SpawnConfig, req SpawnRequest) *entity.Hostile {
	if req.Alive >= cfg.MaxCount || req.Now.Before(s.NextAt) || req.Map == nil {
		return nil
	}
	room, ok := pickRoom(cfg, req)
	if !ok {
		return nil
	}
	s.NextAt = req.Now.Add(cfg.Cooldown)

	class, ok := s.classes.Pick(req.Rand)
	if !ok {
		class = entity.ClassShambler
	}
	return NewHostile(req.ID, class, floorIn(req.Map, room, req.Rand), cfg)
}

// NewHostile builds a hostile of the given class at pos.
func NewHostile(id string, class entity.Class, pos geom.Vec2, cfg SpawnConfig) *entity.Hostile {
	profile := entity.ProfileOf(class)
	return &entity.Hostile{
		ID:              id,
		Class:           class,
		Pos:             pos,
		Radius:          cfg.Radius,
		Vitals:          entity.NewVitals(cfg.BaseHealth * profile.Health),
		State:           entity.StateIdle,
		DetectionRadius: cfg.DetectionRadius,
		ChaseRadius:     cfg.ChaseRadius,
		Speed:           cfg.BaseSpeed * profile.Speed,
		Damage:          cfg.ContactDamage * profile.Damage,
	}
}

// pickRoom prefers rooms whose centre lies in the distance band around the
// hunter and falls back to any room other than the spawn room.
func pickRoom(cfg SpawnConfig, req SpawnRequest) (tilemap.Room, bool) {
	m := req.Map
	var banded, others []tilemap.Room
	for i, room := range m.Rooms {
		if i == m.SpawnRoom {
			continue
		}
		others = append(others, room)
		if !req.HasHunter {
			continue
		}
		d := m.CenterOf(room.Center()).Dist(req.HunterPos)
		if d >= cfg.MinDistance && d <= cfg.MaxDistance {
			banded = append(banded, room)
		}
	}
	pool := banded
	if len(pool) == 0 {
		pool = others
	}
	if len(pool) == 0 {
		return tilemap.Room{}, false
	}
	return pool[req.Rand.Intn(len(pool))], true
}

// floorIn picks a plain floor tile inside the room, falling back to its centre.
func floorIn(m *tilemap.Map, room tilemap.Room, src random.Source) geom.Vec2 {
	for i := 0; i < floorAttempts; i++ {
		p := tilemap.Point{
			X: random.IntBetween(src, room.X+1, room.X+room.W-2),
			Y: random.IntBetween(src, room.Y+1, room.Y+room.H-2),
		}
		if m.At(p.X, p.Y) == tilemap.TileFloor {
			return m.CenterOf(p)
		}
	}
	return m.CenterOf(room.Center())
}
