package movement

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/tilemap"
)

func floorMap(w, h int) *tilemap.Map {
	return &tilemap.Map{W: w, H: h, TileSize: 40, Tiles: make([]tilemap.Tile, w*h)}
}

func testContext(m *tilemap.Map, now time.Time, dt float64) Context {
	return Context{
		Map:    m,
		Width:  float64(m.W) * m.TileSize,
		Height: float64(m.H) * m.TileSize,
		Hazards: Hazards{
			WaterSlow:    0.6,
			PoisonSlow:   0.4,
			SpikeDamage:  10,
			PoisonDamage: 5,
			Interval:     time.Second,
		},
		Now: now,
		DT:  dt,
	}
}

func TestPoisonScenario(t *testing.T) {
	m := floorMap(10, 10)
	m.Set(2, 2, tilemap.TilePoison)

	health := 100.0
	var nextHazard time.Time
	body := &Body{Pos: geom.Vec2{X: 100, Y: 100}, Radius: 16, NextHazard: &nextHazard}

	start := time.Unix(500, 0)
	applications := 0
	tick := 500 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < 3*time.Second; elapsed += tick {
		out := Step(testContext(m, start.Add(elapsed), tick.Seconds()), body)
		if out.Tile != tilemap.TilePoison {
			t.Fatalf("expected to stand on poison, got %s", out.Tile)
		}
		if out.SpeedFactor != 0.4 {
			t.Fatalf("expected a single 0.4 slow, got %.2f", out.SpeedFactor)
		}
		if out.Damage > 0 {
			applications++
			health -= out.Damage
		}
	}
	if applications != 3 {
		t.Fatalf("expected 3 poison applications, got %d", applications)
	}
	if health != 85 {
		t.Fatalf("expected health 85, got %.1f", health)
	}
}

func TestPoisonSlowsMovement(t *testing.T) {
	m := floorMap(10, 10)
	m.Set(3, 2, tilemap.TilePoison)
	var nextHazard time.Time
	body := &Body{Pos: geom.Vec2{X: 100, Y: 100}, Radius: 10, Intent: geom.Vec2{X: 1}, Speed: 100, NextHazard: &nextHazard}
	Step(testContext(m, time.Unix(0, 0), 0.5), body)
	if math.Abs(body.Pos.X-120) > 1e-9 {
		t.Fatalf("expected poison-scaled move to x=120, got %.3f", body.Pos.X)
	}
}

func TestSolidTileCancelsMovement(t *testing.T) {
	m := floorMap(10, 10)
	m.Set(3, 2, tilemap.TileDoorClosed)
	body := &Body{Pos: geom.Vec2{X: 100, Y: 100}, Radius: 10, Intent: geom.Vec2{X: 1}, Speed: 100}
	out := Step(testContext(m, time.Unix(0, 0), 0.5), body)
	if !out.Blocked || body.Pos.X != 100 {
		t.Fatalf("expected movement cancelled, got %+v at %+v", out, body.Pos)
	}
}

func TestPitIsLethalAndDoesNotCommit(t *testing.T) {
	m := floorMap(10, 10)
	m.Set(3, 2, tilemap.TilePit)
	body := &Body{Pos: geom.Vec2{X: 100, Y: 100}, Radius: 10, Intent: geom.Vec2{X: 1}, Speed: 100}
	out := Step(testContext(m, time.Unix(0, 0), 0.5), body)
	if !out.Lethal {
		t.Fatalf("expected lethal outcome")
	}
	if body.Pos.X != 100 {
		t.Fatalf("expected position unchanged, got %+v", body.Pos)
	}
}

func TestStunnedBodyStays(t *testing.T) {
	m := floorMap(10, 10)
	body := &Body{Pos: geom.Vec2{X: 100, Y: 100}, Radius: 10, Intent: geom.Vec2{X: 1}, Speed: 100, Stunned: true}
	Step(testContext(m, time.Unix(0, 0), 0.5), body)
	if body.Pos.X != 100 {
		t.Fatalf("stunned body moved to %+v", body.Pos)
	}
}

func TestPositionsStayInsideArena(t *testing.T) {
	m := floorMap(20, 15)
	walls := []geom.Rect{{X: 200, Y: 200, W: 80, H: 120}}
	rng := rand.New(rand.NewSource(7))
	bodies := make([]*Body, 12)
	for i := range bodies {
		bodies[i] = &Body{
			Pos:    geom.Vec2{X: rng.Float64() * 800, Y: rng.Float64() * 600},
			Radius: 14,
			Speed:  400,
		}
	}
	now := time.Unix(0, 0)
	for tick := 0; tick < 400; tick++ {
		ctx := testContext(m, now, 0.05)
		ctx.Walls = walls
		for _, b := range bodies {
			b.Intent = geom.Vec2{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
			Step(ctx, b)
			if b.Pos.X < 0 || b.Pos.X > ctx.Width || b.Pos.Y < 0 || b.Pos.Y > ctx.Height {
				t.Fatalf("tick %d: body escaped arena at %+v", tick, b.Pos)
			}
		}
		Separate(bodies, ctx)
		for _, b := range bodies {
			if b.Pos.X < 0 || b.Pos.X > ctx.Width || b.Pos.Y < 0 || b.Pos.Y > ctx.Height {
				t.Fatalf("tick %d: separation pushed body outside at %+v", tick, b.Pos)
			}
		}
		now = now.Add(50 * time.Millisecond)
	}
}
