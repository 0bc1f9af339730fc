package loot

import (
	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/tilemap"
)

const placementAttempts = 10

// SpawnConfig bounds the timed pickup spawner.
type SpawnConfig struct {
	MaxTotal   int
	MinSpacing float64
	Caps       map[entity.PickupType]int
}

// SpawnConfigFrom reads the pickup caps from a room config.
func SpawnConfigFrom(cfg config.Config) SpawnConfig {
	caps := make(map[entity.PickupType]int, len(cfg.Pickups.Caps))
	for name, limit := range cfg.Pickups.Caps {
		caps[entity.PickupType(name)] = limit
	}
	return SpawnConfig{MaxTotal: cfg.Pickups.MaxTotal, MinSpacing: cfg.Pickups.MinSpacing, Caps: caps}
}

// SpawnRequest is the world state one spawn attempt reads.
type SpawnRequest struct {
	Existing []*entity.Pickup
	Map      *tilemap.Map
	Rand     random.Source
	ID       string
}

// Headroom builds the type lottery: every unit a type sits under its cap is
// one ticket.
func Headroom(cfg SpawnConfig, existing []*entity.Pickup) *random.Weighted[entity.PickupType] {
	counts := make(map[entity.PickupType]int)
	for _, p := range existing {
		counts[p.Type]++
	}
	table := random.NewWeighted[entity.PickupType]()
	for _, kind := range entity.PickupTypes {
		if room := cfg.Caps[kind] - counts[kind]; room > 0 {
			table.Add(kind, float64(room))
		}
	}
	return table
}

// Spawn places at most one pickup. It gives up when the room is full, every
// type is capped or no spot keeps the minimum spacing.
func Spawn(cfg SpawnConfig, req SpawnRequest) *entity.Pickup {
	if len(req.Existing) >= cfg.MaxTotal || req.Map == nil || len(req.Map.Rooms) == 0 {
		return nil
	}
	kind, ok := Headroom(cfg, req.Existing).Pick(req.Rand)
	if !ok {
		return nil
	}
	for attempt := 0; attempt < placementAttempts; attempt++ {
		pos, ok := floorSpot(req.Map, req.Rand)
		if !ok || !spaced(pos, cfg.MinSpacing, req.Existing) {
			continue
		}
		return &entity.Pickup{ID: req.ID, Type: kind, Pos: pos}
	}
	return nil
}

func floorSpot(m *tilemap.Map, src random.Source) (geom.Vec2, bool) {
	room := m.Rooms[src.Intn(len(m.Rooms))]
	p := tilemap.Point{
		X: random.IntBetween(src, room.X+1, room.X+room.W-2),
		Y: random.IntBetween(src, room.Y+1, room.Y+room.H-2),
	}
	if m.At(p.X, p.Y) != tilemap.TileFloor {
		return geom.Vec2{}, false
	}
	return m.CenterOf(p), true
}

func spaced(pos geom.Vec2, spacing float64, existing []*entity.Pickup) bool {
	for _, other := range existing {
		if other.Pos.Dist(pos) < spacing {
			return false
		}
	}
	return true
}

// Scatter spreads drops on a ring around center, settling each onto walkable
// ground when settle is provided.
func Scatter(center geom.Vec2, kinds []entity.PickupType, src random.Source, nextID func() string, settle func(geom.Vec2) geom.Vec2) []*entity.Pickup {
	out := make([]*entity.Pickup, 0, len(kinds))
	for _, kind := range kinds {
		pos := center.Add(geom.FromAngle(random.Angle(src), random.Between(src, 40, 110)))
		if settle != nil {
			pos = settle(pos)
		}
		id := ""
		if nextID != nil {
			id = nextID()
		}
		out = append(out, &entity.Pickup{ID: id, Type: kind, Pos: pos})
	}
	return out
}
