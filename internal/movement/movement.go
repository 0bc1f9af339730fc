package movement

import (
	"math"
	"time"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/tilemap"
)

// Hazards holds the tile effect tuning.
type Hazards struct {
	WaterSlow    float64
	PoisonSlow   float64
	SpikeDamage  float64
	PoisonDamage float64
	Interval     time.Duration
}

// HazardsFrom reads the hazard tuning from a room config.
func HazardsFrom(cfg config.Config) Hazards {
	return Hazards{
		WaterSlow:    cfg.Hazards.WaterSlow,
		PoisonSlow:   cfg.Hazards.PoisonSlow,
		SpikeDamage:  cfg.Hazards.SpikeDamage,
		PoisonDamage: cfg.Hazards.PoisonDamage,
		Interval:     config.Millis(cfg.Hazards.DamageIntervalMS),
	}
}

// Context is the static geometry and clock shared by every body moved in a tick.
type Context struct {
	Map     *tilemap.Map
	Walls   []geom.Rect
	Width   float64
	Height  float64
	Hazards Hazards
	Now     time.Time
	DT      float64
}

// Body is the mutable movement state of one entity. Speed is the final speed
// after every multiplier the caller knows about; tile effects are applied here.
type Body struct {
	Pos        geom.Vec2
	Radius     float64
	Intent     geom.Vec2
	Speed      float64
	Stunned    bool
	NextHazard *time.Time
}

// Outcome reports what the destination tile did to the body.
type Outcome struct {
	Tile        tilemap.Tile
	Blocked     bool
	Lethal      bool
	Damage      float64
	SpeedFactor float64
}

// Step moves one body. Tile effects are evaluated in a fixed order: water
// slow, solid block, lethal pit, spike damage, then poison slow and damage.
// Hazard damage fires at most once per Hazards.Interval per body.
func Step(ctx Context, body *Body) Outcome {
	out := Outcome{SpeedFactor: 1}
	if body == nil {
		return out
	}

	var delta geom.Vec2
	if !body.Stunned && body.Speed > 0 && ctx.DT > 0 {
		delta = body.Intent.Normalize().Scale(body.Speed * ctx.DT)
	}
	dest := body.Pos.Add(delta)
	out.Tile = ctx.Map.TileAt(dest)

	if out.Tile == tilemap.TileWater {
		delta = delta.Scale(ctx.Hazards.WaterSlow)
		out.SpeedFactor *= ctx.Hazards.WaterSlow
	}
	if out.Tile.Solid() {
		delta = geom.Vec2{}
		out.Blocked = true
	}
	if out.Tile == tilemap.TilePit {
		out.Lethal = true
		return out
	}
	if out.Tile == tilemap.TileSpikes {
		out.Damage += hazardTick(ctx, body, ctx.Hazards.SpikeDamage)
	}
	if out.Tile == tilemap.TilePoison {
		delta = delta.Scale(ctx.Hazards.PoisonSlow)
		out.SpeedFactor *= ctx.Hazards.PoisonSlow
		out.Damage += hazardTick(ctx, body, ctx.Hazards.PoisonDamage)
	}

	body.Pos = body.Pos.Add(delta)
	body.Pos = Settle(body.Pos, body.Radius, ctx)
	return out
}

func hazardTick(ctx Context, body *Body, amount float64) float64 {
	if amount <= 0 || body.NextHazard == nil {
		return 0
	}
	if !body.NextHazard.IsZero() && ctx.Now.Before(*body.NextHazard) {
		return 0
	}
	*body.NextHazard = ctx.Now.Add(ctx.Hazards.Interval)
	return amount
}

// Settle clamps a circle to the arena and pushes it out of every wall.
func Settle(pos geom.Vec2, radius float64, ctx Context) geom.Vec2 {
	pos = geom.ClampToArena(pos, radius, ctx.Width, ctx.Height)
	pos = geom.PushOut(pos, radius, ctx.Walls)
	return geom.ClampToArena(pos, radius, ctx.Width, ctx.Height)
}

// Separate pushes overlapping bodies apart, a few passes at most.
func Separate(bodies []*Body, ctx Context) {
	if len(bodies) < 2 {
		return
	}
	const iterations = 3
	for iter := 0; iter < iterations; iter++ {
		adjusted := false
		for i := 0; i < len(bodies); i++ {
			a := bodies[i]
			for j := i + 1; j < len(bodies); j++ {
				b := bodies[j]
				d := b.Pos.Sub(a.Pos)
				minDist := a.Radius + b.Radius
				dist := d.Len()
				if dist >= minDist {
					continue
				}
				if dist == 0 {
					d = geom.Vec2{X: 1}
					dist = 1
				}
				overlap := (minDist - math.Min(dist, minDist)) / 2
				n := d.Scale(1 / dist)
				a.Pos = Settle(a.Pos.Sub(n.Scale(overlap)), a.Radius, ctx)
				b.Pos = Settle(b.Pos.Add(n.Scale(overlap)), b.Radius, ctx)
				adjusted = true
			}
		}
		if !adjusted {
			return
		}
	}
}
