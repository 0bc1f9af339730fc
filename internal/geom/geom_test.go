package geom

import (
	"math"
	"testing"
)

func TestPushOutCentreInsideUsesNearestEdge(t *testing.T) {
	wall := Rect{X: 100, Y: 100, W: 40, H: 200}
	// Closest to the left edge.
	got := PushOut(Vec2{X: 105, Y: 200}, 10, []Rect{wall})
	if want := 100 - 10 - PushEpsilon; math.Abs(got.X-want) > 1e-9 || got.Y != 200 {
		t.Fatalf("expected push to x=%.3f, got %+v", want, got)
	}
	// Closest to the bottom edge.
	got = PushOut(Vec2{X: 120, Y: 298}, 10, []Rect{wall})
	if want := 300 + 10 + PushEpsilon; math.Abs(got.Y-want) > 1e-9 || got.X != 120 {
		t.Fatalf("expected push to y=%.3f, got %+v", want, got)
	}
}

func TestPushOutAlongSeparationVector(t *testing.T) {
	wall := Rect{X: 0, Y: 0, W: 50, H: 50}
	got := PushOut(Vec2{X: 55, Y: 25}, 10, []Rect{wall})
	if math.Abs(got.X-(60+PushEpsilon)) > 1e-9 || got.Y != 25 {
		t.Fatalf("expected circle resting outside the right edge, got %+v", got)
	}
	if CircleRectOverlap(got, 10, wall) {
		t.Fatalf("circle still overlaps after push: %+v", got)
	}
}

func TestPushOutIgnoresDistantRects(t *testing.T) {
	p := Vec2{X: 500, Y: 500}
	if got := PushOut(p, 10, []Rect{{X: 0, Y: 0, W: 10, H: 10}}); got != p {
		t.Fatalf("expected no movement, got %+v", got)
	}
}

func TestLineOfSight(t *testing.T) {
	wall := Rect{X: 90, Y: 0, W: 20, H: 200}
	if LineOfSight(Vec2{X: 0, Y: 50}, Vec2{X: 200, Y: 50}, 8, []Rect{wall}) {
		t.Fatalf("expected wall to block sight")
	}
	if !LineOfSight(Vec2{X: 0, Y: 250}, Vec2{X: 200, Y: 250}, 8, []Rect{wall}) {
		t.Fatalf("expected clear sight below the wall")
	}
}

func TestClampToArena(t *testing.T) {
	got := ClampToArena(Vec2{X: -40, Y: 900}, 10, 800, 600)
	if got.X != 10 || got.Y != 590 {
		t.Fatalf("unexpected clamp result %+v", got)
	}
}

func TestNormalizeZero(t *testing.T) {
	if !(Vec2{}).Normalize().IsZero() {
		t.Fatalf("expected zero vector to normalise to zero")
	}
	n := Vec2{X: 3, Y: 4}.Normalize()
	if math.Abs(n.Len()-1) > 1e-9 {
		t.Fatalf("expected unit length, got %f", n.Len())
	}
}
