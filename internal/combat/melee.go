package combat

import (
	"time"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
)

// MeleeConfig is the hunter's close range attack.
type MeleeConfig struct {
	Damage    float64
	Range     float64
	Knockback float64
	Cooldown  time.Duration
	// Settle constrains a knocked back position to walkable space.
	Settle func(pos geom.Vec2, radius float64) geom.Vec2
}

// MeleeFrom reads the hunter melee tuning.
func MeleeFrom(cfg config.Config) MeleeConfig {
	return MeleeConfig{
		Damage:    cfg.Hunter.MeleeDamage,
		Range:     cfg.Hunter.MeleeRange,
		Knockback: cfg.Hunter.MeleeKnockback,
		Cooldown:  config.Millis(cfg.Hunter.MeleeCooldownMS),
	}
}

// Melee swings at every targetable entity in range. It returns the number of
// targets struck, or zero when the swing is not ready.
func (r *Resolver) Melee(p *entity.Player, cfg MeleeConfig) int {
	if p == nil || !p.Alive || !p.Hunter() || !p.Input.Melee {
		return 0
	}
	if r.Now.Before(p.NextMelee) {
		return 0
	}
	p.NextMelee = r.Now.Add(cfg.Cooldown)

	hits := 0
	for _, t := range r.Targets {
		if !t.Targetable(r.Now) {
			continue
		}
		offset := t.Position().Sub(p.Pos)
		if offset.Len() > cfg.Range+t.HitRadius() {
			continue
		}
		amount := cfg.Damage * p.Stats.Damage
		crit := random.Chance(r.Rand, p.Stats.CritChance)
		if crit {
			amount *= baseCritMultiplier * p.Stats.CritMultiplier
		}
		dealt, killed := r.Apply(t, amount, p.ID, crit)
		if dealt > 0 && p.Stats.Lifesteal > 0 {
			p.Heal(dealt * p.Stats.Lifesteal)
		}
		if !killed && cfg.Knockback > 0 {
			dir := offset.Normalize()
			if dir.IsZero() {
				dir = geom.Vec2{X: 1}
			}
			pos := t.Position().Add(dir.Scale(cfg.Knockback))
			if cfg.Settle != nil {
				pos = cfg.Settle(pos, t.HitRadius())
			}
			t.SetPosition(pos)
		}
		hits++
	}
	return hits
}

// Strike is one incoming hit on the hunter.
type Strike struct {
	Amount    float64
	From      geom.Vec2
	Knockback float64
	Stun      time.Duration
}

// HurtHunter applies an incoming hit. Knockback always lands; an active shield
// blocks the damage and the stun.
func HurtHunter(h *entity.Player, s Strike, now time.Time, settle func(geom.Vec2, float64) geom.Vec2) (float64, bool) {
	if h == nil || !h.Alive {
		return 0, false
	}
	if s.Knockback > 0 {
		dir := h.Pos.Sub(s.From).Normalize()
		if !dir.IsZero() {
			pos := h.Pos.Add(dir.Scale(s.Knockback))
			if settle != nil {
				pos = settle(pos, h.Radius)
			}
			h.Pos = pos
		}
	}
	if h.Shielded(now) {
		return 0, false
	}
	if s.Stun > 0 {
		entity.Extend(&h.StunUntil, now, s.Stun)
	}
	dealt, killed := h.Hurt(s.Amount)
	if killed {
		h.Deaths++
	}
	return dealt, killed
}
