package ai

import (
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
)

// leaveAttackFactor widens the attack range before an attacker resumes chasing.
const leaveAttackFactor = 1.5

const (
	globRadius = 6
	globTTL    = 1.6
)

// Tuning is the behaviour tuning shared by every AI hostile.
type Tuning struct {
	DetectionRadius float64
	ChaseRadius     float64
	AttackRange     float64
	AttackCooldown  time.Duration
	Knockback       float64
	LOSStep         float64
	GlobCooldown    time.Duration
	GlobRange       float64
	GlobDamage      float64
	GlobSpeed       float64
}

// TuningFrom reads the AI tuning from a room config.
func TuningFrom(cfg config.Config) Tuning {
	return Tuning{
		DetectionRadius: cfg.AI.DetectionRadius,
		ChaseRadius:     cfg.AI.ChaseRadius,
		AttackRange:     cfg.AI.AttackRange,
		AttackCooldown:  config.Millis(cfg.AI.AttackCooldownMS),
		Knockback:       cfg.AI.Knockback,
		LOSStep:         cfg.AI.LOSStep,
		GlobCooldown:    config.Millis(cfg.AI.GlobCooldownMS),
		GlobRange:       cfg.AI.GlobRange,
		GlobDamage:      cfg.AI.GlobDamage,
		GlobSpeed:       cfg.AI.GlobSpeed,
	}
}

// Context is what a hostile may observe during one decision. Strike is
// invoked for contact attacks so the caller owns damage intake.
type Context struct {
	Now        time.Time
	Hunter     *entity.Player
	Walls      []geom.Rect
	Tuning     Tuning
	GlobalSlow float64
	NextID     func() string
	Strike     func(h *entity.Hostile, s combat.Strike)
}

// Decision is the movement intent and side effects of one decision.
type Decision struct {
	Intent   geom.Vec2
	Speed    float64
	Glob     *entity.Glob
	Attacked bool
	From     entity.AIState
}

// Think advances the hostile state machine by one tick:
// idle -> chasing when the hunter is inside the detection radius and visible,
// chasing -> attacking inside contact range, chasing -> idle beyond the chase
// radius, attacking -> chasing beyond 1.5x the contact range.
func Think(ctx Context, h *entity.Hostile) Decision {
	if h == nil || !h.Alive {
		return Decision{}
	}
	d := Decision{From: h.State}
	hunter := ctx.Hunter
	visible := hunter != nil && hunter.Alive
	dist := 0.0
	if visible {
		dist = h.Pos.Dist(hunter.Pos)
	}
	reach := ctx.Tuning.AttackRange + h.Radius
	if visible {
		reach += hunter.Radius
	}

	switch h.State {
	case entity.StateChasing:
		switch {
		case !visible || dist > ctx.Tuning.ChaseRadius:
			h.State = entity.StateIdle
		case dist <= reach:
			h.State = entity.StateAttacking
		}
	case entity.StateAttacking:
		switch {
		case !visible || dist > ctx.Tuning.ChaseRadius:
			h.State = entity.StateIdle
		case dist > reach*leaveAttackFactor:
			h.State = entity.StateChasing
		}
	default:
		h.State = entity.StateIdle
		if visible && dist <= ctx.Tuning.DetectionRadius && geom.LineOfSight(h.Pos, hunter.Pos, ctx.Tuning.LOSStep, ctx.Walls) {
			h.State = entity.StateChasing
			h.LastSeen = ctx.Now
			if dist <= reach {
				h.State = entity.StateAttacking
			}
		}
	}

	if h.Stunned(ctx.Now) {
		h.Vel = geom.Vec2{}
		return d
	}

	switch h.State {
	case entity.StateChasing:
		toward := hunter.Pos.Sub(h.Pos).Normalize()
		d.Intent = toward
		d.Speed = h.Speed * h.Slowed(ctx.Now) * globalSlow(ctx)
		h.Vel = toward.Scale(d.Speed)
		if geom.LineOfSight(h.Pos, hunter.Pos, ctx.Tuning.LOSStep, ctx.Walls) {
			h.LastSeen = ctx.Now
			if h.Class == entity.ClassSpitter {
				d.Glob = lob(ctx, h, dist)
			}
		}
	case entity.StateAttacking:
		h.Vel = geom.Vec2{}
		if ctx.Now.Sub(h.LastAttack) >= ctx.Tuning.AttackCooldown {
			h.LastAttack = ctx.Now
			d.Attacked = true
			if ctx.Strike != nil {
				ctx.Strike(h, combat.Strike{Amount: h.Damage, From: h.Pos, Knockback: ctx.Tuning.Knockback})
			}
		}
	default:
		h.Vel = geom.Vec2{}
	}
	return d
}

func globalSlow(ctx Context) float64 {
	if ctx.GlobalSlow > 0 && ctx.GlobalSlow < 1 {
		return ctx.GlobalSlow
	}
	return 1
}

func lob(ctx Context, h *entity.Hostile, dist float64) *entity.Glob {
	if dist > ctx.Tuning.GlobRange || ctx.Now.Before(h.NextGlob) {
		return nil
	}
	h.NextGlob = ctx.Now.Add(ctx.Tuning.GlobCooldown)
	id := ""
	if ctx.NextID != nil {
		id = ctx.NextID()
	}
	dir := ctx.Hunter.Pos.Sub(h.Pos).Normalize()
	return &entity.Glob{
		ID:     id,
		Pos:    h.Pos.Add(dir.Scale(h.Radius)),
		Vel:    dir.Scale(ctx.Tuning.GlobSpeed),
		TTL:    globTTL,
		Owner:  h.ID,
		Damage: ctx.Tuning.GlobDamage * entity.ProfileOf(h.Class).Damage,
		Radius: globRadius,
	}
}
