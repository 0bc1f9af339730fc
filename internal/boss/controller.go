package boss

import (
	"math"
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
)

const (
	contactPadding       = 10
	minionContactPadding = 6
	minionAttackCooldown = time.Second
	maxOwnedMinions      = 2 * summonCount
	cloneDamageFactor    = 0.25
)

// EventKind tags a boss broadcast.
type EventKind string

const (
	EventTeleport    EventKind = "boss_teleport"
	EventPoisonField EventKind = "poison_field"
	EventGroundSlam  EventKind = "ground_slam"
	EventLifeDrain   EventKind = "life_drain"
	EventAbility     EventKind = "boss_ability"
	EventEnrage      EventKind = "boss_enrage"
)

// Event is something a boss did that clients or logs care about.
type Event struct {
	Kind    EventKind
	BossID  string
	Ability Ability
	From    geom.Vec2
	To      geom.Vec2
	Radius  float64
	Amount  float64
}

// Context is what a boss or minion may observe during one decision. Strike
// applies damage to the hunter and returns what was dealt.
type Context struct {
	Now        time.Time
	Hunter     *entity.Player
	Rand       random.Source
	Tuning     Tuning
	GlobalSlow float64
	NextID     func() string
	Settle     func(pos geom.Vec2, radius float64) geom.Vec2
	Strike     func(sourceID string, s combat.Strike) float64
}

// Decision is the movement intent and spawned side effects of one tick.
type Decision struct {
	Intent  geom.Vec2
	Speed   float64
	Cast    Ability
	Minions []*entity.Minion
	Fields  []*entity.PoisonField
	Events  []Event
}

// Think advances one boss by a tick. Spawning bosses hold until ready, an
// active charge overrides steering, a cast roots the boss, and otherwise the
// ability gates are rolled before the base chase/attack behaviour.
func Think(ctx Context, b *entity.Boss) Decision {
	var d Decision
	if b == nil || !b.Alive || b.State == entity.BossDying {
		return d
	}
	if b.State == entity.BossSpawning {
		if ctx.Now.Before(b.ReadyAt) {
			return d
		}
		b.State = entity.BossIdle
	}
	if Enrage(b, ctx.Tuning) {
		d.Events = append(d.Events, Event{Kind: EventEnrage, BossID: b.ID, From: b.Pos})
	}

	hunter := ctx.Hunter
	if hunter != nil && !hunter.Alive {
		hunter = nil
	}
	if hunter != nil && entity.Active(b.DrainUntil, ctx.Now) {
		drain(ctx, b, hunter, &d)
	}
	if b.Stunned(ctx.Now) {
		return d
	}

	slow := b.Slowed(ctx.Now) * globalSlow(ctx.GlobalSlow)
	if entity.Active(b.ChargeUntil, ctx.Now) {
		d.Intent = b.ChargeDir
		d.Speed = b.Speed * chargeMultiplier * slow
		if hunter != nil {
			contact(ctx, b, hunter)
		}
		return d
	}
	if entity.Active(b.AbilityUntil, ctx.Now) {
		return d
	}
	if hunter == nil {
		b.State = entity.BossIdle
		return d
	}
	if ability, ok := roll(ctx, b, hunter); ok {
		cast(ctx, b, hunter, ability, &d)
		return d
	}

	if b.Pos.Dist(hunter.Pos) <= b.Radius+hunter.Radius+contactPadding {
		b.State = entity.BossAttacking
		contact(ctx, b, hunter)
		return d
	}
	b.State = entity.BossChasing
	d.Intent = hunter.Pos.Sub(b.Pos).Normalize()
	d.Speed = b.Speed * slow
	return d
}

// Enrage flips the boss into its enraged state once its health ratio drops to
// the threshold. It reports whether the flip happened on this call.
func Enrage(b *entity.Boss, t Tuning) bool {
	if b.Enraged || !b.Alive || t.EnrageThreshold <= 0 || b.Ratio() > t.EnrageThreshold {
		return false
	}
	b.Enraged = true
	if t.EnrageSpeedMul > 0 {
		b.Speed *= t.EnrageSpeedMul
	}
	if t.EnrageDamageMul > 0 {
		b.Damage *= t.EnrageDamageMul
	}
	return true
}

// Ready reports whether the cooldown of g has elapsed.
func Ready(b *entity.Boss, g Gate, now time.Time) bool {
	last, ok := b.LastAbility[string(g.Ability)]
	return !ok || now.Sub(last) >= g.Cooldown
}

func roll(ctx Context, b *entity.Boss, hunter *entity.Player) (Ability, bool) {
	for _, g := range ProfileOf(b.Type).Gates {
		if !Ready(b, g, ctx.Now) || !usable(g.Ability, b, hunter) {
			continue
		}
		if random.Chance(ctx.Rand, g.Chance) {
			return g.Ability, true
		}
	}
	return "", false
}

func usable(a Ability, b *entity.Boss, hunter *entity.Player) bool {
	dist := b.Pos.Dist(hunter.Pos)
	switch a {
	case AbilityGroundSlam:
		return dist <= slamRadius+hunter.Radius
	case AbilityLifeDrain:
		return dist <= drainRange
	case AbilitySummon, AbilityClone:
		return len(b.Minions) < maxOwnedMinions
	default:
		return true
	}
}

func cast(ctx Context, b *entity.Boss, hunter *entity.Player, a Ability, d *Decision) {
	now := ctx.Now
	if b.LastAbility == nil {
		b.LastAbility = make(map[string]time.Time)
	}
	b.LastAbility[string(a)] = now
	b.State = entity.BossAbility
	b.AbilityUntil = now.Add(castTime)
	d.Cast = a
	d.Events = append(d.Events, Event{Kind: EventAbility, BossID: b.ID, Ability: a, From: b.Pos})

	scale := damageScale(b)
	switch a {
	case AbilitySummon:
		d.Minions = append(d.Minions, ring(ctx, b, summonCount, false)...)
	case AbilityClone:
		d.Minions = append(d.Minions, ring(ctx, b, cloneCount, true)...)
	case AbilityTeleport:
		from := b.Pos
		to := hunter.Pos.Add(geom.FromAngle(random.Angle(ctx.Rand), teleportDistance))
		if ctx.Settle != nil {
			to = ctx.Settle(to, b.Radius)
		}
		b.Pos = to
		d.Events = append(d.Events, Event{Kind: EventTeleport, BossID: b.ID, From: from, To: to})
	case AbilityPoisonField:
		f := &entity.PoisonField{
			ID:       nextID(ctx),
			Pos:      hunter.Pos,
			Radius:   fieldRadius,
			DPS:      fieldDPS * scale,
			Created:  now,
			Expires:  now.Add(fieldLifetime),
			BossID:   b.ID,
			NextTick: now,
		}
		d.Fields = append(d.Fields, f)
		d.Events = append(d.Events, Event{Kind: EventPoisonField, BossID: b.ID, To: f.Pos, Radius: f.Radius})
	case AbilityCharge:
		b.ChargeDir = hunter.Pos.Sub(b.Pos).Normalize()
		b.ChargeUntil = now.Add(chargeDuration)
		b.AbilityUntil = b.ChargeUntil
	case AbilityGroundSlam:
		ev := Event{Kind: EventGroundSlam, BossID: b.ID, From: b.Pos, Radius: slamRadius}
		if b.Pos.Dist(hunter.Pos) <= slamRadius+hunter.Radius && ctx.Strike != nil {
			ev.Amount = ctx.Strike(b.ID, combat.Strike{
				Amount:    slamDamage * scale,
				From:      b.Pos,
				Knockback: ctx.Tuning.Knockback,
				Stun:      slamStun,
			})
		}
		d.Events = append(d.Events, ev)
	case AbilityPhase:
		b.PhaseUntil = now.Add(phaseDuration)
		b.AbilityUntil = time.Time{}
	case AbilityLifeDrain:
		b.DrainUntil = now.Add(drainDuration)
		b.DrainNext = now.Add(drainInterval)
	}
}

// drain pulses the life drain: damage the hunter in range and heal the boss
// by what was dealt.
func drain(ctx Context, b *entity.Boss, hunter *entity.Player, d *Decision) {
	if ctx.Now.Before(b.DrainNext) {
		return
	}
	b.DrainNext = ctx.Now.Add(drainInterval)
	if b.Pos.Dist(hunter.Pos) > drainRange || ctx.Strike == nil {
		return
	}
	dealt := ctx.Strike(b.ID, combat.Strike{Amount: drainDamage * damageScale(b), From: b.Pos})
	b.Heal(dealt)
	d.Events = append(d.Events, Event{Kind: EventLifeDrain, BossID: b.ID, From: b.Pos, To: hunter.Pos, Amount: dealt})
}

// contact is the cooldown gated melee of a boss. Phased bosses deal no contact
// damage.
func contact(ctx Context, b *entity.Boss, hunter *entity.Player) {
	if b.Phased(ctx.Now) || ctx.Strike == nil {
		return
	}
	if !b.LastAttack.IsZero() && ctx.Now.Sub(b.LastAttack) < ctx.Tuning.AttackCooldown {
		return
	}
	if b.Pos.Dist(hunter.Pos) > b.Radius+hunter.Radius+contactPadding {
		return
	}
	b.LastAttack = ctx.Now
	ctx.Strike(b.ID, combat.Strike{Amount: b.Damage, From: b.Pos, Knockback: ctx.Tuning.Knockback})
}

// ring spawns count minions evenly around the boss.
func ring(ctx Context, b *entity.Boss, count int, clone bool) []*entity.Minion {
	out := make([]*entity.Minion, 0, count)
	scale := damageScale(b)
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		pos := b.Pos.Add(geom.FromAngle(angle, b.Radius+40))
		m := &entity.Minion{
			ID:      nextID(ctx),
			BossID:  b.ID,
			Clone:   clone,
			Radius:  minionRadius,
			Vitals:  entity.NewVitals(minionHealth),
			State:   entity.StateChasing,
			Expires: ctx.Now.Add(summonLifetime),
			Damage:  minionDamage * scale,
			Speed:   minionSpeed,
		}
		if clone {
			m.Radius = b.Radius
			m.Vitals = entity.NewVitals(cloneHealth)
			m.Expires = ctx.Now.Add(cloneLifetime)
			m.Damage = b.Damage * cloneDamageFactor
			m.Speed = b.Speed
		}
		if ctx.Settle != nil {
			pos = ctx.Settle(pos, m.Radius)
		}
		m.Pos = pos
		b.Minions = append(b.Minions, m.ID)
		out = append(out, m)
	}
	return out
}

// ThinkMinion chases the hunter and strikes on contact.
func ThinkMinion(ctx Context, m *entity.Minion) Decision {
	var d Decision
	if m == nil || !m.Alive || m.Stunned(ctx.Now) {
		return d
	}
	hunter := ctx.Hunter
	if hunter == nil || !hunter.Alive {
		m.State = entity.StateIdle
		return d
	}
	if m.Pos.Dist(hunter.Pos) <= m.Radius+hunter.Radius+minionContactPadding {
		m.State = entity.StateAttacking
		if ctx.Strike != nil && (m.LastAttack.IsZero() || ctx.Now.Sub(m.LastAttack) >= minionAttackCooldown) {
			m.LastAttack = ctx.Now
			ctx.Strike(m.ID, combat.Strike{Amount: m.Damage, From: m.Pos, Knockback: ctx.Tuning.Knockback / 2})
		}
		return d
	}
	m.State = entity.StateChasing
	d.Intent = hunter.Pos.Sub(m.Pos).Normalize()
	d.Speed = m.Speed * m.Slowed(ctx.Now) * globalSlow(ctx.GlobalSlow)
	return d
}

// Prune drops minions that died, expired or lost their boss, and keeps each
// boss's minion list in step.
func Prune(minions []*entity.Minion, bosses []*entity.Boss, now time.Time) ([]*entity.Minion, []string) {
	owners := make(map[string]*entity.Boss, len(bosses))
	for _, b := range bosses {
		if b.Alive && b.State != entity.BossDying {
			owners[b.ID] = b
		}
	}
	kept := minions[:0]
	var removed []string
	alive := make(map[string]bool, len(minions))
	for _, m := range minions {
		expired := !m.Expires.IsZero() && !now.Before(m.Expires)
		if !m.Alive || expired || owners[m.BossID] == nil {
			removed = append(removed, m.ID)
			continue
		}
		alive[m.ID] = true
		kept = append(kept, m)
	}
	for _, b := range owners {
		ids := b.Minions[:0]
		for _, id := range b.Minions {
			if alive[id] {
				ids = append(ids, id)
			}
		}
		b.Minions = ids
	}
	return kept, removed
}

func damageScale(b *entity.Boss) float64 {
	base := ProfileOf(b.Type).Damage
	if base <= 0 || b.Damage <= 0 {
		return 1
	}
	return b.Damage / base
}

func globalSlow(v float64) float64 {
	if v > 0 && v < 1 {
		return v
	}
	return 1
}

func nextID(ctx Context) string {
	if ctx.NextID == nil {
		return ""
	}
	return ctx.NextID()
}
