package ai

import (
	"math"
	"testing"
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/tilemap"
)

func testTuning() Tuning {
	return Tuning{
		DetectionRadius: 360,
		ChaseRadius:     560,
		AttackRange:     30,
		AttackCooldown:  time.Second,
		Knockback:       26,
		LOSStep:         16,
		GlobCooldown:    2 * time.Second,
		GlobRange:       300,
		GlobDamage:      7,
		GlobSpeed:       260,
	}
}

func testHunter(x, y float64) *entity.Player {
	return &entity.Player{ID: "hunter", Role: entity.RoleHunter, Pos: geom.Vec2{X: x, Y: y}, Radius: 16, Vitals: entity.NewVitals(100)}
}

func testHostile(class entity.Class, x, y float64) *entity.Hostile {
	return NewHostile("z1", class, geom.Vec2{X: x, Y: y}, SpawnConfig{
		BaseHealth: 40, BaseSpeed: 100, ContactDamage: 8, Radius: 14,
		DetectionRadius: 360, ChaseRadius: 560,
	})
}

func TestIdleNeedsLineOfSight(t *testing.T) {
	now := time.Unix(0, 0)
	h := testHostile(entity.ClassShambler, 100, 100)
	ctx := Context{Now: now, Hunter: testHunter(300, 100), Tuning: testTuning(),
		Walls: []geom.Rect{{X: 190, Y: 0, W: 20, H: 400}}}

	Think(ctx, h)
	if h.State != entity.StateIdle {
		t.Fatalf("expected wall to block detection, got %s", h.State)
	}

	ctx.Walls = nil
	d := Think(ctx, h)
	if h.State != entity.StateChasing {
		t.Fatalf("expected chasing, got %s", h.State)
	}
	if d.Intent.X <= 0 || d.Speed != h.Speed {
		t.Fatalf("expected to steer toward the hunter, got %+v", d)
	}
}

func TestChaseHysteresis(t *testing.T) {
	now := time.Unix(0, 0)
	h := testHostile(entity.ClassShambler, 100, 100)
	hunter := testHunter(400, 100)
	ctx := Context{Now: now, Hunter: hunter, Tuning: testTuning()}

	Think(ctx, h)
	if h.State != entity.StateChasing {
		t.Fatalf("expected chasing at 300px, got %s", h.State)
	}

	hunter.Pos.X = 600
	Think(ctx, h)
	if h.State != entity.StateChasing {
		t.Fatalf("expected to keep chasing inside chase radius, got %s", h.State)
	}

	hunter.Pos.X = 700
	Think(ctx, h)
	if h.State != entity.StateIdle {
		t.Fatalf("expected idle beyond chase radius, got %s", h.State)
	}

	hunter.Pos.X = 520
	Think(ctx, h)
	if h.State != entity.StateIdle {
		t.Fatalf("expected to stay idle outside detection radius, got %s", h.State)
	}
}

func TestAttackIsCooldownGated(t *testing.T) {
	now := time.Unix(100, 0)
	h := testHostile(entity.ClassBrute, 100, 100)
	hunter := testHunter(140, 100)
	strikes := 0
	var last combat.Strike
	ctx := Context{Now: now, Hunter: hunter, Tuning: testTuning(), Strike: func(_ *entity.Hostile, s combat.Strike) {
		strikes++
		last = s
	}}

	Think(ctx, h)
	if h.State != entity.StateAttacking {
		t.Fatalf("expected attacking in contact range, got %s", h.State)
	}
	if strikes != 1 {
		t.Fatalf("expected one strike, got %d", strikes)
	}
	if last.Amount != 8*1.6 || last.Knockback != 26 {
		t.Fatalf("unexpected strike %+v", last)
	}

	ctx.Now = now.Add(500 * time.Millisecond)
	Think(ctx, h)
	if strikes != 1 {
		t.Fatalf("expected cooldown to hold, got %d strikes", strikes)
	}

	ctx.Now = now.Add(time.Second)
	Think(ctx, h)
	if strikes != 2 {
		t.Fatalf("expected second strike after cooldown, got %d", strikes)
	}

	hunter.Pos.X = 300
	Think(ctx, h)
	if h.State != entity.StateChasing {
		t.Fatalf("expected to resume chasing, got %s", h.State)
	}
}

func TestSpitterLobsGlobs(t *testing.T) {
	now := time.Unix(0, 0)
	h := testHostile(entity.ClassSpitter, 100, 100)
	ctx := Context{Now: now, Hunter: testHunter(300, 100), Tuning: testTuning(), NextID: func() string { return "g1" }}

	d := Think(ctx, h)
	if d.Glob == nil {
		t.Fatalf("expected a glob")
	}
	if d.Glob.Vel.X <= 0 || math.Abs(d.Glob.Damage-6.3) > 1e-9 {
		t.Fatalf("unexpected glob %+v", d.Glob)
	}

	ctx.Now = now.Add(time.Second)
	if d := Think(ctx, h); d.Glob != nil {
		t.Fatalf("expected glob cooldown")
	}
}

func TestFreezeSlowsChase(t *testing.T) {
	h := testHostile(entity.ClassShambler, 100, 100)
	ctx := Context{Now: time.Unix(0, 0), Hunter: testHunter(300, 100), Tuning: testTuning(), GlobalSlow: 0.35}
	d := Think(ctx, h)
	if d.Speed != h.Speed*0.35 {
		t.Fatalf("expected frozen speed %.2f, got %.2f", h.Speed*0.35, d.Speed)
	}
}

func TestStunnedHostileHoldsStill(t *testing.T) {
	now := time.Unix(0, 0)
	h := testHostile(entity.ClassShambler, 100, 100)
	h.StunUntil = now.Add(time.Second)
	d := Think(Context{Now: now, Hunter: testHunter(300, 100), Tuning: testTuning()}, h)
	if d.Speed != 0 || !d.Intent.IsZero() {
		t.Fatalf("stunned hostile should not move, got %+v", d)
	}
}

func spawnMap() *tilemap.Map {
	m := &tilemap.Map{W: 60, H: 20, TileSize: 40, Tiles: make([]tilemap.Tile, 60*20)}
	m.Rooms = []tilemap.Room{
		{X: 1, Y: 1, W: 8, H: 8},
		{X: 20, Y: 1, W: 8, H: 8},
		{X: 50, Y: 1, W: 8, H: 8},
	}
	m.SpawnRoom = 0
	return m
}

func TestSpawnerRespectsCapCooldownAndBand(t *testing.T) {
	cfg := SpawnConfig{MaxCount: 2, Cooldown: 3 * time.Second, MinDistance: 320, MaxDistance: 1000,
		BaseHealth: 40, BaseSpeed: 100, ContactDamage: 8, Radius: 14}
	m := spawnMap()
	s := NewSpawner()
	now := time.Unix(0, 0)
	req := SpawnRequest{Now: now, Map: m, HunterPos: m.CenterOf(m.Rooms[0].Center()), HasHunter: true,
		Rand: random.New("ai", "spawn"), ID: "z1"}

	h := s.Tick(cfg, req)
	if h == nil {
		t.Fatalf("expected a spawn")
	}
	if !m.RoomRect(m.Rooms[1]).Contains(h.Pos) {
		t.Fatalf("expected spawn inside the banded room, got %+v", h.Pos)
	}
	if h.Vitals.MaxHealth != 40*entity.ProfileOf(h.Class).Health {
		t.Fatalf("class multiplier not applied: %+v", h.Vitals)
	}

	req.Now = now.Add(time.Second)
	if s.Tick(cfg, req) != nil {
		t.Fatalf("expected cooldown to block spawn")
	}

	req.Now = now.Add(4 * time.Second)
	req.Alive = 2
	if s.Tick(cfg, req) != nil {
		t.Fatalf("expected cap to block spawn")
	}
}

func TestSpawnerFallsBackToAnyOtherRoom(t *testing.T) {
	cfg := SpawnConfig{MaxCount: 5, MinDistance: 5000, MaxDistance: 6000, BaseHealth: 40, BaseSpeed: 100, Radius: 14}
	m := spawnMap()
	h := NewSpawner().Tick(cfg, SpawnRequest{Now: time.Unix(0, 0), Map: m, HunterPos: m.CenterOf(m.Rooms[0].Center()),
		HasHunter: true, Rand: random.NewSequence(0.9), ID: "z"})
	if h == nil {
		t.Fatalf("expected fallback spawn")
	}
	if m.RoomRect(m.Rooms[0]).Contains(h.Pos) {
		t.Fatalf("spawned inside the hunter spawn room")
	}
}
