package boss

import (
	"time"

	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/tilemap"
)

// Director paces boss arrivals. A spawn is announced ahead of time and the
// next one is due a cooldown after the previous arrival.
type Director struct {
	NextSpawn time.Time
	Pending   bool
	Spawned   int
}

// NewDirector schedules the first arrival.
func NewDirector(start time.Time, t Tuning) *Director {
	return &Director{NextSpawn: start.Add(t.FirstSpawn)}
}

// Announcement is a boss that will arrive at ArriveAt.
type Announcement struct {
	Type     entity.BossType
	ArriveAt time.Time
}

// Tick announces the next boss once the announce window opens, there is a free
// slot and nothing is already on its way. The arrival always leaves at least
// the full announce window.
func (d *Director) Tick(now time.Time, active int, t Tuning, src random.Source) (Announcement, bool) {
	if !t.Enabled || d.Pending || active >= t.MaxActive {
		return Announcement{}, false
	}
	if now.Before(d.NextSpawn.Add(-t.Announce)) {
		return Announcement{}, false
	}
	arrive := d.NextSpawn
	if earliest := now.Add(t.Announce); arrive.Before(earliest) {
		arrive = earliest
	}
	d.Pending = true
	d.NextSpawn = arrive.Add(t.Cooldown)
	return Announcement{Type: Types[src.Intn(len(Types))], ArriveAt: arrive}, true
}

// Arrived clears the pending flag after the announced boss was placed.
func (d *Director) Arrived() {
	d.Pending = false
	d.Spawned++
}

// Spawn builds a boss in its spawning state.
func Spawn(id string, typ entity.BossType, pos geom.Vec2, now time.Time, t Tuning) *entity.Boss {
	p := ProfileOf(typ)
	mul := t.HealthMultiplier
	if mul <= 0 {
		mul = 1
	}
	b := &entity.Boss{
		ID:          id,
		Type:        typ,
		Pos:         pos,
		Radius:      p.Radius,
		Vitals:      entity.NewVitals(p.Health * mul),
		Damage:      p.Damage,
		Speed:       p.Speed,
		State:       entity.BossSpawning,
		SpawnedAt:   now,
		ReadyAt:     now.Add(t.SpawnDuration),
		LastAbility: make(map[string]time.Time, len(p.Gates)),
	}
	for _, g := range p.Gates {
		b.LastAbility[string(g.Ability)] = now
	}
	return b
}

// ArrivalPoint picks the centre of the room farthest from the hunter, never
// the hunter spawn room when another exists.
func ArrivalPoint(m *tilemap.Map, hunterPos geom.Vec2) geom.Vec2 {
	if m == nil || len(m.Rooms) == 0 {
		return hunterPos
	}
	best, bestDist := m.Spawn, -1.0
	for i, room := range m.Rooms {
		if i == m.SpawnRoom && len(m.Rooms) > 1 {
			continue
		}
		c := m.CenterOf(room.Center())
		if d := c.DistSq(hunterPos); d > bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
