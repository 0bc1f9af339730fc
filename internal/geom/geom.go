package geom

import "math"

// PushEpsilon keeps resolved circles from resting exactly on a rectangle edge.
const PushEpsilon = 0.01

// Vec2 is a 2D vector in pixel space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

func (v Vec2) DistSq(o Vec2) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return dx*dx + dy*dy
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Rotate turns v by theta radians.
func (v Vec2) Rotate(theta float64) Vec2 {
	sin, cos := math.Sincos(theta)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// Normalize returns the unit vector, or the zero vector when v has no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// FromAngle returns a vector of the given length pointing along theta.
func FromAngle(theta, length float64) Vec2 {
	sin, cos := math.Sincos(theta)
	return Vec2{X: cos * length, Y: sin * length}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center returns the rectangle midpoint.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Clamp limits value to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampToArena keeps a circle of the given radius inside [0,w]×[0,h].
func ClampToArena(p Vec2, radius, w, h float64) Vec2 {
	minX, maxX := radius, w-radius
	if maxX < minX {
		minX, maxX = w/2, w/2
	}
	minY, maxY := radius, h-radius
	if maxY < minY {
		minY, maxY = h/2, h/2
	}
	return Vec2{X: Clamp(p.X, minX, maxX), Y: Clamp(p.Y, minY, maxY)}
}

// CircleRectOverlap reports whether a circle intersects a rectangle.
func CircleRectOverlap(c Vec2, radius float64, r Rect) bool {
	closestX := Clamp(c.X, r.X, r.X+r.W)
	closestY := Clamp(c.Y, r.Y, r.Y+r.H)
	dx := c.X - closestX
	dy := c.Y - closestY
	return dx*dx+dy*dy < radius*radius
}

// CirclesOverlap reports whether two circles intersect.
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	sum := ra + rb
	return a.DistSq(b) < sum*sum
}

// RectsOverlap checks for AABB overlap with optional padding.
func RectsOverlap(a, b Rect, padding float64) bool {
	return a.X-padding < b.X+b.W+padding &&
		a.X+a.W+padding > b.X-padding &&
		a.Y-padding < b.Y+b.H+padding &&
		a.Y+a.H+padding > b.Y-padding
}

// AnyOverlap reports whether the circle intersects any of the rectangles.
func AnyOverlap(c Vec2, radius float64, rects []Rect) bool {
	for _, r := range rects {
		if CircleRectOverlap(c, radius, r) {
			return true
		}
	}
	return false
}

// PushOut nudges a circle out of every overlapping rectangle. A centre lying on
// or inside a rectangle leaves along the axis of least penetration; otherwise it
// moves along the separation vector by the penetration depth plus PushEpsilon.
func PushOut(p Vec2, radius float64, rects []Rect) Vec2 {
	for _, r := range rects {
		if !CircleRectOverlap(p, radius, r) {
			continue
		}

		closestX := Clamp(p.X, r.X, r.X+r.W)
		closestY := Clamp(p.Y, r.Y, r.Y+r.H)
		dx := p.X - closestX
		dy := p.Y - closestY
		distSq := dx*dx + dy*dy

		if distSq == 0 {
			left := math.Abs(p.X - r.X)
			right := math.Abs((r.X + r.W) - p.X)
			top := math.Abs(p.Y - r.Y)
			bottom := math.Abs((r.Y + r.H) - p.Y)

			minDist := left
			direction := 0
			if right < minDist {
				minDist = right
				direction = 1
			}
			if top < minDist {
				minDist = top
				direction = 2
			}
			if bottom < minDist {
				direction = 3
			}

			switch direction {
			case 0:
				p.X = r.X - radius - PushEpsilon
			case 1:
				p.X = r.X + r.W + radius + PushEpsilon
			case 2:
				p.Y = r.Y - radius - PushEpsilon
			case 3:
				p.Y = r.Y + r.H + radius + PushEpsilon
			}
			continue
		}

		dist := math.Sqrt(distSq)
		if dist < radius {
			overlap := radius - dist + PushEpsilon
			p.X += dx / dist * overlap
			p.Y += dy / dist * overlap
		}
	}
	return p
}

// LineOfSight samples the segment a→b every step pixels and reports whether no
// sample falls inside a rectangle.
func LineOfSight(a, b Vec2, step float64, rects []Rect) bool {
	if len(rects) == 0 {
		return true
	}
	if step <= 0 {
		step = 16
	}
	dist := a.Dist(b)
	samples := int(math.Ceil(dist / step))
	if samples < 1 {
		samples = 1
	}
	for i := 0; i <= samples; i++ {
		t := float64(i) / float64(samples)
		p := Vec2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
		for _, r := range rects {
			if r.Contains(p) {
				return false
			}
		}
	}
	return true
}
