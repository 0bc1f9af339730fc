package entity

import (
	"time"

	"horde-hunt/server/internal/geom"
)

// Target is anything a hunter bullet or blast can damage.
type Target interface {
	TargetID() string
	TargetKind() Kind
	Position() geom.Vec2
	SetPosition(geom.Vec2)
	HitRadius() float64
	Life() *Vitals
	Conditions() *Status
	Targetable(now time.Time) bool
}

func (p *Player) TargetID() string          { return p.ID }
func (p *Player) TargetKind() Kind          { return KindPlayer }
func (p *Player) Position() geom.Vec2       { return p.Pos }
func (p *Player) SetPosition(pos geom.Vec2) { p.Pos = pos }
func (p *Player) HitRadius() float64        { return p.Radius }
func (p *Player) Life() *Vitals             { return &p.Vitals }
func (p *Player) Conditions() *Status       { return &p.Status }

// Targetable is true for living horde players.
func (p *Player) Targetable(time.Time) bool {
	return p.Alive && p.Role == RoleHorde
}

func (h *Hostile) TargetID() string          { return h.ID }
func (h *Hostile) TargetKind() Kind          { return KindHostile }
func (h *Hostile) Position() geom.Vec2       { return h.Pos }
func (h *Hostile) SetPosition(pos geom.Vec2) { h.Pos = pos }
func (h *Hostile) HitRadius() float64        { return h.Radius }
func (h *Hostile) Life() *Vitals             { return &h.Vitals }
func (h *Hostile) Conditions() *Status       { return &h.Status }
func (h *Hostile) Targetable(time.Time) bool { return h.Alive }

func (m *Minion) TargetID() string          { return m.ID }
func (m *Minion) TargetKind() Kind          { return KindMinion }
func (m *Minion) Position() geom.Vec2       { return m.Pos }
func (m *Minion) SetPosition(pos geom.Vec2) { m.Pos = pos }
func (m *Minion) HitRadius() float64        { return m.Radius }
func (m *Minion) Life() *Vitals             { return &m.Vitals }
func (m *Minion) Conditions() *Status       { return &m.Status }
func (m *Minion) Targetable(time.Time) bool { return m.Alive }

func (b *Boss) TargetID() string          { return b.ID }
func (b *Boss) TargetKind() Kind          { return KindBoss }
func (b *Boss) Position() geom.Vec2       { return b.Pos }
func (b *Boss) SetPosition(pos geom.Vec2) { b.Pos = pos }
func (b *Boss) HitRadius() float64        { return b.Radius }
func (b *Boss) Life() *Vitals             { return &b.Vitals }
func (b *Boss) Conditions() *Status       { return &b.Status }

// Targetable excludes bosses that are still materialising, dying or phased.
func (b *Boss) Targetable(now time.Time) bool {
	return b.Alive && b.State != BossSpawning && b.State != BossDying && !b.Phased(now)
}
