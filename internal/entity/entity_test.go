package entity

import (
	"math"
	"testing"
	"time"
)

func TestHurtClampsAndKillsOnce(t *testing.T) {
	v := NewVitals(10)
	dealt, killed := v.Hurt(15)
	if dealt != 10 || !killed {
		t.Fatalf("expected 10 dealt and a kill, got %.1f killed=%v", dealt, killed)
	}
	if v.Health != 0 || v.Alive {
		t.Fatalf("expected clamped dead vitals, got %+v", v)
	}
	if dealt, killed := v.Hurt(5); dealt != 0 || killed {
		t.Fatalf("dead target must ignore further damage, got %.1f killed=%v", dealt, killed)
	}
}

func TestHealCapsAtMax(t *testing.T) {
	v := NewVitals(100)
	v.Hurt(30)
	if got := v.Heal(50); got != 30 {
		t.Fatalf("expected 30 healed, got %.1f", got)
	}
}

func TestDirectionIsNormalised(t *testing.T) {
	d := Input{Up: true, Right: true}.Direction()
	if math.Abs(d.Len()-1) > 1e-9 {
		t.Fatalf("expected unit diagonal, got %+v", d)
	}
	if !(Input{Up: true, Down: true}).Direction().IsZero() {
		t.Fatalf("opposing keys should cancel")
	}
}

func TestApplySlowKeepsStrongest(t *testing.T) {
	now := time.Unix(0, 0)
	var s Status
	s.ApplySlow(0.5, now.Add(time.Second), now)
	s.ApplySlow(0.8, now.Add(3*time.Second), now)
	if got := s.Slowed(now); got != 0.5 {
		t.Fatalf("expected strongest slow 0.5, got %.2f", got)
	}
	if got := s.Slowed(now.Add(2 * time.Second)); got != 1 {
		t.Fatalf("expected slow to expire, got %.2f", got)
	}
}

func TestUseNeverGoesNegative(t *testing.T) {
	n := 1
	if !Use(&n) || n != 0 {
		t.Fatalf("expected one use, got n=%d", n)
	}
	if Use(&n) || n != 0 {
		t.Fatalf("expected counter to stay at zero, got n=%d", n)
	}
}

func TestBossTargetable(t *testing.T) {
	now := time.Unix(100, 0)
	b := &Boss{Vitals: NewVitals(100), State: BossSpawning}
	if b.Targetable(now) {
		t.Fatalf("spawning boss must not be targetable")
	}
	b.State = BossChasing
	b.PhaseUntil = now.Add(time.Second)
	if b.Targetable(now) {
		t.Fatalf("phased boss must not be targetable")
	}
	if !b.Targetable(now.Add(2 * time.Second)) {
		t.Fatalf("boss should be targetable after the phase")
	}
}
