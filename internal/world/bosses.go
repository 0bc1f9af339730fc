package world

import (
	"context"
	"fmt"
	"time"

	"horde-hunt/server/internal/boss"
	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/movement"
	"horde-hunt/server/internal/net/proto"
	"horde-hunt/server/internal/schedule"
	"horde-hunt/server/logging"
	loggingcombat "horde-hunt/server/logging/combat"
	logginglifecycle "horde-hunt/server/logging/lifecycle"
)

const fieldTickInterval = time.Second

// pendingBoss is an announced boss waiting for its arrival event.
type pendingBoss struct {
	Type entity.BossType
	Pos  geom.Vec2
}

// announceBoss asks the director for the next arrival and warns the room.
func (w *World) announceBoss(now time.Time) {
	active := 0
	for _, b := range w.bosses {
		if b.Alive && b.State != entity.BossDying {
			active++
		}
	}
	a, ok := w.director.Tick(now, active, w.bossTuning, w.rng)
	if !ok {
		return
	}
	m := w.Map()
	from := m.Spawn
	if h := w.Hunter(); h != nil && h.Alive {
		from = h.Pos
	}
	id := w.nextID("boss")
	pos := boss.ArrivalPoint(m, from)
	w.pending[id] = pendingBoss{Type: a.Type, Pos: pos}
	w.queue.Push(a.ArriveAt, schedule.BossArrive, id)

	w.broadcast(proto.BossSpawn{
		Type:     proto.TypeBossSpawn,
		ID:       id,
		BossType: string(a.Type),
		Warning:  true,
		X:        pos.X,
		Y:        pos.Y,
		ArriveAt: a.ArriveAt.UnixMilli(),
	})
	w.notice(fmt.Sprintf("A %s approaches!", a.Type))
	logginglifecycle.BossSpawned(context.Background(), w.publisher, w.tick, logging.Ref(id, logging.EntityKindBoss),
		logginglifecycle.BossSpawnedPayload{BossType: string(a.Type), Warning: true, X: pos.X, Y: pos.Y})
}

// arriveBoss places an announced boss. Stale ids are ignored.
func (w *World) arriveBoss(id string, now time.Time) {
	pb, ok := w.pending[id]
	if !ok {
		return
	}
	delete(w.pending, id)
	w.director.Arrived()

	b := boss.Spawn(id, pb.Type, pb.Pos, now, w.bossTuning)
	b.Pos = w.settle(b.Pos, b.Radius)
	w.bosses = append(w.bosses, b)

	w.broadcast(proto.BossSpawn{
		Type:     proto.TypeBossSpawn,
		ID:       id,
		BossType: string(b.Type),
		X:        b.Pos.X,
		Y:        b.Pos.Y,
	})
	logginglifecycle.BossSpawned(context.Background(), w.publisher, w.tick, logging.Ref(id, logging.EntityKindBoss),
		logginglifecycle.BossSpawnedPayload{BossType: string(b.Type), X: b.Pos.X, Y: b.Pos.Y})
}

func (w *World) bossContext(now time.Time) boss.Context {
	return boss.Context{
		Now:        now,
		Hunter:     w.Hunter(),
		Rand:       w.rng,
		Tuning:     w.bossTuning,
		GlobalSlow: w.globalSlow(now),
		NextID:     w.idFunc("summon"),
		Settle:     w.settle,
		Strike: func(sourceID string, s combat.Strike) float64 {
			return w.strikeHunter(sourceID, s, now)
		},
	}
}

// stepBosses runs boss and minion behaviour, then prunes stale minions.
// Bosses treat pits as walls and ignore tile hazards; minions take both
// through r like the AI horde.
func (w *World) stepBosses(r *combat.Resolver, now time.Time, dt float64) {
	ctx := w.bossContext(now)
	mctx := w.moveContext(now, dt)

	for _, b := range w.bosses {
		if !b.Alive || b.State == entity.BossDying {
			continue
		}
		d := boss.Think(ctx, b)
		w.minions = append(w.minions, d.Minions...)
		for _, f := range d.Fields {
			w.fields = append(w.fields, f)
			w.broadcast(proto.PoisonField{Type: proto.TypePoisonField, Field: fieldView(f)})
		}
		w.bossEvents(b, d.Events)
		w.moveBody(mctx, &b.Pos, &b.Vel, b.Radius, d, b.Stunned(now), nil, dt)
	}

	for _, m := range w.minions {
		if !m.Alive {
			continue
		}
		d := boss.ThinkMinion(ctx, m)
		out := w.moveBody(mctx, &m.Pos, &m.Vel, m.Radius, d, m.Stunned(now), &m.NextHazard, dt)
		if !w.tileHarm(r, m, out) {
			m.Vel = geom.Vec2{}
		}
	}
	w.minions, _ = boss.Prune(w.minions, w.bosses, now)
}

func (w *World) moveBody(mctx movement.Context, pos, vel *geom.Vec2, radius float64, d boss.Decision, stunned bool, nextHazard *time.Time, dt float64) movement.Outcome {
	body := movement.Body{Pos: *pos, Radius: radius, Intent: d.Intent, Speed: d.Speed, Stunned: stunned, NextHazard: nextHazard}
	out := movement.Step(mctx, &body)
	if dt > 0 {
		*vel = body.Pos.Sub(*pos).Scale(1 / dt)
	}
	*pos = body.Pos
	return out
}

// bossEvents turns boss decisions into client messages and log events.
func (w *World) bossEvents(b *entity.Boss, events []boss.Event) {
	ref := logging.Ref(b.ID, logging.EntityKindBoss)
	for _, ev := range events {
		switch ev.Kind {
		case boss.EventAbility:
			loggingcombat.BossAbility(context.Background(), w.publisher, w.tick, ref, loggingcombat.BossAbilityPayload{
				Ability:  string(ev.Ability),
				BossType: string(b.Type),
				Enraged:  b.Enraged,
			}, nil)
		case boss.EventEnrage:
			w.notice(fmt.Sprintf("The %s is enraged!", b.Type))
			loggingcombat.BossEnraged(context.Background(), w.publisher, w.tick, ref, nil)
		case boss.EventTeleport:
			w.broadcast(proto.BossTeleport{
				Type: proto.TypeBossTeleport, BossID: b.ID,
				FromX: ev.From.X, FromY: ev.From.Y, ToX: ev.To.X, ToY: ev.To.Y,
			})
		case boss.EventGroundSlam:
			w.broadcast(proto.GroundSlam{
				Type: proto.TypeGroundSlam, BossID: b.ID,
				X: ev.From.X, Y: ev.From.Y, Radius: ev.Radius, Damage: ev.Amount,
			})
		case boss.EventLifeDrain:
			w.broadcast(proto.LifeDrain{
				Type: proto.TypeLifeDrain, BossID: b.ID,
				FromX: ev.From.X, FromY: ev.From.Y, ToX: ev.To.X, ToY: ev.To.Y, Amount: ev.Amount,
			})
		}
	}
}

// stepFields ticks poison fields on the hunter once per second and drops
// expired fields.
func (w *World) stepFields(now time.Time) {
	hunter := w.Hunter()
	kept := w.fields[:0]
	for _, f := range w.fields {
		if !now.Before(f.Expires) {
			continue
		}
		kept = append(kept, f)
		if hunter == nil || !hunter.Alive || now.Before(f.NextTick) {
			continue
		}
		if hunter.Pos.Dist(f.Pos) > f.Radius+hunter.Radius {
			continue
		}
		f.NextTick = now.Add(fieldTickInterval)
		w.strikeHunter(f.BossID, combat.Strike{Amount: f.DPS, From: f.Pos}, now)
	}
	w.fields = kept
}

// reap removes dead hostiles and runs the death pass of every boss that fell
// this tick.
func (w *World) reap(now time.Time) {
	hostiles := w.hostiles[:0]
	for _, h := range w.hostiles {
		if h.Alive {
			hostiles = append(hostiles, h)
		}
	}
	w.hostiles = hostiles

	bosses := w.bosses[:0]
	for _, b := range w.bosses {
		if !b.Alive {
			w.bossDown(b, now)
			continue
		}
		bosses = append(bosses, b)
	}
	w.bosses = bosses
}

func (w *World) bossDown(b *entity.Boss, now time.Time) {
	if b.LootDropped {
		return
	}
	ctx := boss.DeathContext{
		Now:    now,
		Rand:   w.rng,
		Tuning: w.bossTuning,
		NextID: w.idFunc("loot"),
		Settle: w.settlePoint,
	}
	if h := w.Hunter(); h != nil {
		ctx.HunterWeapon = h.Weapon
	}
	kept, res := boss.Die(b, w.minions, ctx)
	w.minions = kept
	w.pickups = append(w.pickups, res.Pickups...)

	msg := proto.BossDeath{
		Type:     proto.TypeBossDeath,
		ID:       b.ID,
		BossType: string(b.Type),
		X:        b.Pos.X,
		Y:        b.Pos.Y,
		Drops:    len(res.Pickups),
	}
	if res.Weapon != nil {
		w.weaponDrops = append(w.weaponDrops, res.Weapon)
		msg.Weapon = res.Weapon.Weapon
	}
	w.broadcast(msg)
	w.notice(fmt.Sprintf("The %s has been slain!", b.Type))
	logginglifecycle.BossDied(context.Background(), w.publisher, w.tick, logging.Ref(b.ID, logging.EntityKindBoss),
		logginglifecycle.BossDiedPayload{BossType: string(b.Type), Drops: msg.Drops, Weapon: msg.Weapon})
	w.logDefeat(w.hunterID, b)
}
