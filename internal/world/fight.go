package world

import (
	"context"
	"fmt"
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/net/proto"
	"horde-hunt/server/internal/schedule"
	"horde-hunt/server/logging"
	loggingcombat "horde-hunt/server/logging/combat"
	loggingeconomy "horde-hunt/server/logging/economy"
)

const damageNumberTTL = time.Second

// resolver wires the damage pipeline to this world for one tick.
func (w *World) resolver(now time.Time) *combat.Resolver {
	r := &combat.Resolver{
		Now:     now,
		Rand:    w.rng,
		Tuning:  w.combatTuning,
		Rewards: w.rewards,
		Owner: func(id string) *entity.Player {
			return w.players[id]
		},
		NextID: w.idFunc("bullet"),
		OnDamage: func(t entity.Target, amount float64, ownerID string, crit, dot bool) {
			w.recordDamage(logging.Ref(ownerID, w.sourceKind(ownerID)), w.damageSource(ownerID, dot), t, amount, crit, dot)
		},
		OnKill: func(t entity.Target, ownerID string) {
			w.onKill(t, ownerID, now)
		},
		OnHit:    w.confirmHit,
		OnReward: w.onReward,
	}
	r.Targets = w.targets()
	return r
}

// damageSource names what dealt a resolver hit. Non-player owners are tile
// pseudo-owners and name themselves.
func (w *World) damageSource(ownerID string, dot bool) string {
	switch {
	case dot:
		return "status"
	case w.players[ownerID] != nil:
		return "hunter"
	default:
		return ownerID
	}
}

func (w *World) targets() []entity.Target {
	return combat.Order(w.sortedPlayers(), w.hostiles, w.minions, w.bosses)
}

func refOf(t entity.Target) logging.EntityRef {
	return logging.Ref(t.TargetID(), kindOf(t.TargetKind()))
}

func kindOf(k entity.Kind) logging.EntityKind {
	switch k {
	case entity.KindPlayer:
		return logging.EntityKindPlayer
	case entity.KindHostile:
		return logging.EntityKindHostile
	case entity.KindMinion:
		return logging.EntityKindMinion
	case entity.KindBoss:
		return logging.EntityKindBoss
	default:
		return logging.EntityKindUnknown
	}
}

// recordDamage leaves a damage number behind and logs the hit.
func (w *World) recordDamage(actor logging.EntityRef, source string, t entity.Target, amount float64, crit, dot bool) {
	w.damage = append(w.damage, entity.DamageNumber{
		Pos:    t.Position(),
		Amount: amount,
		Crit:   crit,
		DOT:    dot,
		At:     w.lastStep,
	})
	loggingcombat.Damage(context.Background(), w.publisher, w.tick, actor, refOf(t), loggingcombat.DamagePayload{
		Source:       source,
		Amount:       amount,
		TargetHealth: t.Life().Health,
		Crit:         crit,
		OverTime:     dot,
	}, nil)
}

func (w *World) pruneDamage(now time.Time) {
	kept := w.damage[:0]
	for _, d := range w.damage {
		if now.Sub(d.At) < damageNumberTTL {
			kept = append(kept, d)
		}
	}
	w.damage = kept
}

// onKill runs after the resolver paid the owner. Horde players queue a respawn
// where they fell; AI hostiles are reaped at the end of the tick. Bosses are
// handled by the death pass in reap.
func (w *World) onKill(t entity.Target, ownerID string, now time.Time) {
	switch v := t.(type) {
	case *entity.Player:
		w.hordeDown(v, ownerID, now)
		return
	case *entity.Hostile:
		w.rollDrop(v.Pos)
	case *entity.Boss:
		return
	}
	w.logDefeat(ownerID, t)
}

func (w *World) logDefeat(ownerID string, t entity.Target) {
	payload := loggingcombat.DefeatPayload{Source: ownerID}
	if owner, ok := w.players[ownerID]; ok && owner.Hunter() {
		bounty := w.rewards.Bounties[t.TargetKind()]
		payload.Score, payload.XP = bounty.Score, bounty.XP
	}
	loggingcombat.Defeat(context.Background(), w.publisher, w.tick, logging.Ref(ownerID, w.sourceKind(ownerID)), refOf(t), payload, nil)
}

// hordeDown marks a horde player for respawn at its death position.
func (w *World) hordeDown(p *entity.Player, killerID string, now time.Time) {
	p.Deaths++
	p.Effects = nil
	p.Vel = geom.Vec2{}
	p.RespawnAt = now.Add(config.Millis(w.cfg.Horde.RespawnDelayMS))
	w.queue.Push(p.RespawnAt, schedule.RespawnHorde, p.ID)
	w.rollDrop(p.Pos)
	w.logDefeat(killerID, p)
}

// strikeHunter is the single intake for damage dealt to the hunter.
func (w *World) strikeHunter(sourceID string, s combat.Strike, now time.Time) float64 {
	h := w.Hunter()
	if h == nil {
		return 0
	}
	dealt, killed := combat.HurtHunter(h, s, now, w.settle)
	if dealt > 0 {
		w.recordDamage(logging.Ref(sourceID, w.sourceKind(sourceID)), sourceID, h, dealt, false, false)
	}
	if killed {
		if killer, ok := w.players[sourceID]; ok && !killer.Hunter() {
			killer.Kills++
		}
		w.hunterDown(h, sourceID, now)
	}
	return dealt
}

func (w *World) sourceKind(id string) logging.EntityKind {
	if _, ok := w.players[id]; ok {
		return logging.EntityKindPlayer
	}
	for _, b := range w.bosses {
		if b.ID == id {
			return logging.EntityKindBoss
		}
	}
	for _, m := range w.minions {
		if m.ID == id {
			return logging.EntityKindMinion
		}
	}
	for _, h := range w.hostiles {
		if h.ID == id {
			return logging.EntityKindHostile
		}
	}
	return logging.EntityKindUnknown
}

// hunterDown schedules the hunter's respawn at the map spawn.
func (w *World) hunterDown(h *entity.Player, killerID string, now time.Time) {
	h.Effects = nil
	h.Vel = geom.Vec2{}
	h.FireLatch = false
	h.RespawnAt = now.Add(config.Millis(w.cfg.Hunter.RespawnDelayMS))
	w.queue.Push(h.RespawnAt, schedule.RespawnHunter, h.ID)
	w.notice(fmt.Sprintf("%s has fallen", h.Name))
	w.logDefeat(killerID, h)
}

func (w *World) confirmHit(b *entity.Bullet, t entity.Target) {
	owner, ok := w.players[b.Owner]
	if !ok {
		return
	}
	pos := t.Position()
	w.send(owner.ID, proto.HitConfirm{Type: proto.TypeHitConfirm, X: pos.X, Y: pos.Y, Timestamp: owner.Input.Timestamp})
}

func (w *World) onReward(owner *entity.Player, res combat.RewardResult) {
	if res.Levels > 0 {
		w.send(owner.ID, proto.LevelUp{Type: proto.TypeLevelUp, Level: owner.Progress.Level})
		loggingeconomy.LevelUp(context.Background(), w.publisher, w.tick, logging.Ref(owner.ID, logging.EntityKindPlayer),
			loggingeconomy.LevelUpPayload{Level: owner.Progress.Level, Levels: res.Levels}, nil)
	}
	if res.Offered {
		w.sendOffer(owner)
	}
}

// hunterActions fires the hunter's weapon and swings its melee.
func (w *World) hunterActions(r *combat.Resolver, now time.Time) {
	h := w.Hunter()
	if h == nil || !h.Alive {
		return
	}
	if h.Stunned(now) {
		return
	}
	shot := combat.Fire(combat.FireConfig{Shooter: h, Now: now, Rand: w.rng, NextID: w.idFunc("bullet")})
	w.bullets = append(w.bullets, shot.Bullets...)

	melee := w.melee
	melee.Settle = w.settle
	r.Melee(h, melee)
}
