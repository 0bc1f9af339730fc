package entity

import (
	"time"

	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
)

// Role distinguishes the armed hunter from horde players.
type Role string

const (
	RoleHunter Role = "hunter"
	RoleHorde  Role = "horde"
)

// ParseRole maps a client supplied string onto a role, defaulting to horde.
func ParseRole(value string) Role {
	if Role(value) == RoleHunter {
		return RoleHunter
	}
	return RoleHorde
}

// Kind identifies an entity category in hit resolution and logs.
type Kind string

const (
	KindPlayer  Kind = "player"
	KindHostile Kind = "hostile"
	KindMinion  Kind = "minion"
	KindBoss    Kind = "boss"
)

// Class is a horde archetype shared by horde players and AI hostiles.
type Class string

const (
	ClassRunner   Class = "runner"
	ClassBrute    Class = "brute"
	ClassSpitter  Class = "spitter"
	ClassCrawler  Class = "crawler"
	ClassShambler Class = "shambler"
)

// ClassProfile holds the multipliers applied to base horde stats.
type ClassProfile struct {
	Health float64
	Speed  float64
	Damage float64
}

var classProfiles = map[Class]ClassProfile{
	ClassRunner:   {Health: 0.7, Speed: 1.35, Damage: 0.8},
	ClassBrute:    {Health: 2.2, Speed: 0.75, Damage: 1.6},
	ClassSpitter:  {Health: 0.9, Speed: 0.9, Damage: 0.9},
	ClassCrawler:  {Health: 0.6, Speed: 1.15, Damage: 1.1},
	ClassShambler: {Health: 1.2, Speed: 0.85, Damage: 1.0},
}

// ProfileOf returns the multipliers of c. Unknown classes act as shamblers.
func ProfileOf(c Class) ClassProfile {
	if p, ok := classProfiles[c]; ok {
		return p
	}
	return classProfiles[ClassShambler]
}

// ParseClass validates a class name.
func ParseClass(value string) (Class, bool) {
	c := Class(value)
	_, ok := classProfiles[c]
	return c, ok
}

// ClassTable is the weighted archetype table used by spawners.
func ClassTable() *random.Weighted[Class] {
	return random.NewWeighted(
		random.Entry[Class]{Value: ClassRunner, Weight: 25},
		random.Entry[Class]{Value: ClassBrute, Weight: 15},
		random.Entry[Class]{Value: ClassSpitter, Weight: 15},
		random.Entry[Class]{Value: ClassCrawler, Weight: 20},
		random.Entry[Class]{Value: ClassShambler, Weight: 25},
	)
}

// Input is the latest intent received from a client.
type Input struct {
	Up        bool    `json:"up"`
	Down      bool    `json:"down"`
	Left      bool    `json:"left"`
	Right     bool    `json:"right"`
	Shoot     bool    `json:"shoot"`
	Melee     bool    `json:"melee"`
	Dash      bool    `json:"dash"`
	AimX      float64 `json:"aimX"`
	AimY      float64 `json:"aimY"`
	Timestamp int64   `json:"timestamp"`
}

// Direction returns the normalised movement intent.
func (in Input) Direction() geom.Vec2 {
	var d geom.Vec2
	if in.Up {
		d.Y--
	}
	if in.Down {
		d.Y++
	}
	if in.Left {
		d.X--
	}
	if in.Right {
		d.X++
	}
	return d.Normalize()
}

// Aim returns the aim point.
func (in Input) Aim() geom.Vec2 {
	return geom.Vec2{X: in.AimX, Y: in.AimY}
}

// Vitals tracks health and the alive flag.
type Vitals struct {
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Alive     bool    `json:"alive"`
}

// NewVitals returns full health.
func NewVitals(max float64) Vitals {
	return Vitals{Health: max, MaxHealth: max, Alive: true}
}

// Hurt subtracts amount, clamping at zero. killed is true only on the call
// that took the entity from alive to dead; later calls are no-ops.
func (v *Vitals) Hurt(amount float64) (dealt float64, killed bool) {
	if !v.Alive || amount <= 0 {
		return 0, false
	}
	dealt = amount
	if dealt > v.Health {
		dealt = v.Health
	}
	v.Health -= dealt
	if v.Health <= 0 {
		v.Health = 0
		v.Alive = false
		killed = true
	}
	return dealt, killed
}

// Heal restores health up to the maximum.
func (v *Vitals) Heal(amount float64) float64 {
	if !v.Alive || amount <= 0 {
		return 0
	}
	before := v.Health
	v.Health += amount
	if v.Health > v.MaxHealth {
		v.Health = v.MaxHealth
	}
	return v.Health - before
}

// Ratio is health over max health.
func (v Vitals) Ratio() float64 {
	if v.MaxHealth <= 0 {
		return 0
	}
	return v.Health / v.MaxHealth
}

// Revive restores full health.
func (v *Vitals) Revive() {
	v.Health = v.MaxHealth
	v.Alive = true
}

// EffectKind labels a damage-over-time record.
type EffectKind string

const (
	EffectBurn  EffectKind = "burn"
	EffectBleed EffectKind = "bleed"
)

// TimedEffect is a pending damage-over-time application.
type TimedEffect struct {
	Kind     EffectKind
	DPS      float64
	Expires  time.Time
	NextTick time.Time
	Owner    string
}

// Active reports whether until lies in the future.
func Active(until, now time.Time) bool {
	return !until.IsZero() && now.Before(until)
}

// Status groups the timed windows an entity can carry. A zero time means the
// window is inactive.
type Status struct {
	ShieldUntil      time.Time
	BoostUntil       time.Time
	DashUntil        time.Time
	SlowUntil        time.Time
	SlowFactor       float64
	MagnetUntil      time.Time
	WeaponBoostUntil time.Time
	StunUntil        time.Time
	Effects          []TimedEffect
}

// Slowed returns the active slow multiplier, or 1.
func (s *Status) Slowed(now time.Time) float64 {
	if Active(s.SlowUntil, now) && s.SlowFactor > 0 && s.SlowFactor < 1 {
		return s.SlowFactor
	}
	return 1
}

// ApplySlow keeps the stronger of the current and new slow. A weaker slow is
// ignored while a stronger one runs; an equal one refreshes the window.
func (s *Status) ApplySlow(factor float64, until, now time.Time) {
	if factor <= 0 || factor >= 1 {
		return
	}
	if Active(s.SlowUntil, now) && s.SlowFactor > 0 && s.SlowFactor <= factor {
		if s.SlowFactor == factor && until.After(s.SlowUntil) {
			s.SlowUntil = until
		}
		return
	}
	s.SlowFactor = factor
	s.SlowUntil = until
}

// AddEffect inserts a damage-over-time record due one second from now.
func (s *Status) AddEffect(kind EffectKind, dps float64, duration time.Duration, owner string, now time.Time) {
	if dps <= 0 || duration <= 0 {
		return
	}
	s.Effects = append(s.Effects, TimedEffect{
		Kind:     kind,
		DPS:      dps,
		Expires:  now.Add(duration),
		NextTick: now.Add(time.Second),
		Owner:    owner,
	})
}

// Shielded reports an active shield window.
func (s *Status) Shielded(now time.Time) bool {
	return Active(s.ShieldUntil, now)
}

// Stunned reports an active stun window.
func (s *Status) Stunned(now time.Time) bool {
	return Active(s.StunUntil, now)
}

// Extend pushes a window to at least now+d.
func Extend(window *time.Time, now time.Time, d time.Duration) {
	until := now.Add(d)
	if until.After(*window) {
		*window = until
	}
}
