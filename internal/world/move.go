package world

import (
	"math"
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/movement"
	"horde-hunt/server/logging"
)

// minDashFactor keeps the dash cooldown from collapsing under stacked upgrades.
const minDashFactor = 0.2

// Tile deaths and hazard hits are credited to these pseudo-owners.
const (
	sourcePit    = "pit"
	sourceHazard = "hazard"
)

// movePlayers integrates every living player's input against the tile grid.
func (w *World) movePlayers(now time.Time, dt float64) {
	ctx := w.moveContext(now, dt)
	for _, p := range w.sortedPlayers() {
		if !p.Alive {
			p.Vel = geom.Vec2{}
			continue
		}
		intent := p.Input.Direction()
		if p.Hunter() {
			w.startDash(p, intent, now)
		}
		body := movement.Body{
			Pos:        p.Pos,
			Radius:     p.Radius,
			Intent:     intent,
			Speed:      w.playerSpeed(p, now),
			Stunned:    p.Stunned(now),
			NextHazard: &p.NextHazard,
		}
		before := p.Pos
		out := movement.Step(ctx, &body)
		if out.Lethal {
			p.Vel = geom.Vec2{}
			w.fallIntoPit(p, now)
			continue
		}
		p.Pos = body.Pos
		if dt > 0 {
			p.Vel = p.Pos.Sub(before).Scale(1 / dt)
		}
		if out.Damage > 0 {
			w.hazardDamage(p, out.Damage, now)
		}
	}
}

func (w *World) startDash(p *entity.Player, intent geom.Vec2, now time.Time) {
	if !p.Input.Dash || intent.IsZero() || now.Before(p.NextDash) || p.Stunned(now) {
		return
	}
	h := w.cfg.Hunter
	entity.Extend(&p.DashUntil, now, config.Millis(h.DashDurationMS))
	factor := math.Max(minDashFactor, 1-p.Stats.DashCooldown)
	p.NextDash = now.Add(time.Duration(float64(config.Millis(h.DashCooldownMS)) * factor))
}

// playerSpeed folds every multiplier the caller owns: role base speed, the
// move-speed stat, dash and boost windows, the player's slow and the room
// freeze for the horde.
func (w *World) playerSpeed(p *entity.Player, now time.Time) float64 {
	var speed float64
	if p.Hunter() {
		speed = w.cfg.Hunter.Speed * p.Stats.MoveSpeed
		if entity.Active(p.DashUntil, now) {
			speed *= w.cfg.Hunter.DashMultiplier
		}
	} else {
		speed = w.cfg.Horde.Speed * entity.ProfileOf(p.Class).Speed * w.globalSlow(now)
	}
	if entity.Active(p.BoostUntil, now) {
		speed *= w.cfg.Hunter.BoostMultiplier
	}
	return speed * p.Slowed(now)
}

// fallIntoPit kills a player at the pit edge. The move into the pit is never
// committed, so a horde player respawns on the tile it came from.
func (w *World) fallIntoPit(p *entity.Player, now time.Time) {
	if _, killed := p.Hurt(p.Health); !killed {
		return
	}
	if p.Hunter() {
		p.Deaths++
		w.hunterDown(p, sourcePit, now)
		return
	}
	w.hordeDown(p, sourcePit, now)
}

func (w *World) hazardDamage(p *entity.Player, amount float64, now time.Time) {
	if p.Hunter() {
		w.strikeHunter(sourceHazard, combat.Strike{Amount: amount, From: p.Pos}, now)
		return
	}
	dealt, killed := p.Hurt(amount)
	if dealt > 0 {
		w.recordDamage(logging.Ref(sourceHazard, logging.EntityKindUnknown), sourceHazard, p, dealt, false, false)
	}
	if killed {
		w.hordeDown(p, sourceHazard, now)
	}
}

// hordeAttacks lets every living horde player in contact range hit the hunter
// on its own cooldown.
func (w *World) hordeAttacks(now time.Time) {
	h := w.Hunter()
	if h == nil || !h.Alive {
		return
	}
	hc := w.cfg.Horde
	for _, p := range w.sortedPlayers() {
		if p.Hunter() || !p.Alive || p.Stunned(now) || now.Before(p.NextAttack) {
			continue
		}
		if p.Pos.Dist(h.Pos) > p.Radius+h.Radius+hc.AttackRange {
			continue
		}
		p.NextAttack = now.Add(config.Millis(hc.AttackCooldownMS))
		w.strikeHunter(p.ID, combat.Strike{
			Amount:    hc.ContactDamage * entity.ProfileOf(p.Class).Damage,
			From:      p.Pos,
			Knockback: w.cfg.AI.Knockback,
		}, now)
		if !h.Alive {
			return
		}
	}
}
