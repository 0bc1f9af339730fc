package combat

import (
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
)

// Bounds is the static geometry projectiles travel through.
type Bounds struct {
	Width  float64
	Height float64
	Walls  []geom.Rect
}

func (b Bounds) outside(p geom.Vec2) bool {
	return p.X < 0 || p.Y < 0 || p.X > b.Width || p.Y > b.Height
}

// AdvanceResult reports why a projectile stopped, if it did.
type AdvanceResult struct {
	Expired bool
	Left    bool
	Impact  bool
	Bounced bool
}

// Stopped reports whether the projectile was removed this tick.
func (r AdvanceResult) Stopped() bool {
	return r.Expired || r.Left || r.Impact
}

// Advance moves a bullet one tick. ttl always decreases first so a bullet is
// removed on the tick it reaches zero.
func Advance(b *entity.Bullet, dt float64, bounds Bounds) AdvanceResult {
	var res AdvanceResult
	if b == nil || b.Dead {
		return res
	}
	b.TTL -= dt
	if b.TTL <= 0 {
		b.Dead = true
		res.Expired = true
		return res
	}

	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	if bounds.outside(b.Pos) {
		b.Dead = true
		res.Left = true
		return res
	}

	if geom.AnyOverlap(b.Pos, b.Meta.Radius, bounds.Walls) {
		if entity.Use(&b.Meta.Bounce) {
			b.Pos = b.Pos.Sub(b.Vel.Scale(dt))
			b.Vel = b.Vel.Scale(-1)
			res.Bounced = true
			return res
		}
		b.Dead = true
		res.Impact = true
	}
	return res
}

// AdvanceGlob moves a hostile glob and reports whether it is still in flight.
func AdvanceGlob(g *entity.Glob, dt float64, bounds Bounds) bool {
	if g == nil {
		return false
	}
	g.TTL -= dt
	if g.TTL <= 0 {
		return false
	}
	g.Pos = g.Pos.Add(g.Vel.Scale(dt))
	if bounds.outside(g.Pos) {
		return false
	}
	return !geom.AnyOverlap(g.Pos, g.Radius, bounds.Walls)
}
