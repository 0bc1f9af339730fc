package combat

import (
	"math"
	"time"

	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/stats"
)

// Tuning holds the fixed constants of the damage pipeline.
type Tuning struct {
	RicochetRadius    float64
	ChainRange        float64
	ChainFalloff      float64
	BurnDuration      time.Duration
	BleedDuration     time.Duration
	SlowDuration      time.Duration
	ExplosiveRadius   float64
	ExplosiveFraction float64
	ShardFraction     float64
	ShardSpeed        float64
	ShardTTL          float64
	ShardRadius       float64
}

// DefaultTuning returns the stock pipeline constants.
func DefaultTuning() Tuning {
	return Tuning{
		RicochetRadius:    320,
		ChainRange:        200,
		ChainFalloff:      0.7,
		BurnDuration:      3 * time.Second,
		BleedDuration:     4 * time.Second,
		SlowDuration:      2 * time.Second,
		ExplosiveRadius:   60,
		ExplosiveFraction: 0.5,
		ShardFraction:     0.35,
		ShardSpeed:        520,
		ShardTTL:          0.35,
		ShardRadius:       3,
	}
}

// Order flattens the damageable entities into hit priority order: horde
// players, AI hostiles, boss minions, then bosses.
func Order(players []*entity.Player, hostiles []*entity.Hostile, minions []*entity.Minion, bosses []*entity.Boss) []entity.Target {
	out := make([]entity.Target, 0, len(players)+len(hostiles)+len(minions)+len(bosses))
	for _, p := range players {
		if p != nil && !p.Hunter() {
			out = append(out, p)
		}
	}
	for _, h := range hostiles {
		if h != nil {
			out = append(out, h)
		}
	}
	for _, m := range minions {
		if m != nil {
			out = append(out, m)
		}
	}
	for _, b := range bosses {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Resolver runs the damage pipeline for one tick. Targets must already be in
// priority order; the callbacks let the owner of the world react to damage and
// deaths without the resolver reaching into it.
type Resolver struct {
	Now     time.Time
	Rand    random.Source
	Tuning  Tuning
	Rewards Rewards
	Targets []entity.Target

	Owner  func(id string) *entity.Player
	NextID func() string

	OnDamage func(target entity.Target, amount float64, ownerID string, crit, dot bool)
	OnKill   func(target entity.Target, ownerID string)
	OnHit    func(bullet *entity.Bullet, target entity.Target)
	OnReward func(owner *entity.Player, result RewardResult)
}

func (r *Resolver) owner(id string) *entity.Player {
	if r.Owner == nil || id == "" {
		return nil
	}
	return r.Owner(id)
}

// Step advances every bullet, resolves hits and returns the survivors plus any
// shards spawned by explosions this tick.
func (r *Resolver) Step(bullets []*entity.Bullet, dt float64, bounds Bounds) []*entity.Bullet {
	alive := bullets[:0]
	var spawned []*entity.Bullet
	for _, b := range bullets {
		res := Advance(b, dt, bounds)
		if res.Stopped() {
			if (res.Expired || res.Impact) && b.Meta.Explosion > 0 {
				spawned = append(spawned, r.Explode(b)...)
			}
			continue
		}
		if r.Resolve(b) && b.Meta.Explosion > 0 {
			b.Dead = true
			spawned = append(spawned, r.Explode(b)...)
		}
		if !b.Dead {
			alive = append(alive, b)
		}
	}
	return append(alive, spawned...)
}

// Resolve tests one bullet against the targets and applies at most one hit.
// A bullet never hits the same target twice.
func (r *Resolver) Resolve(b *entity.Bullet) bool {
	if b == nil || b.Dead {
		return false
	}
	for _, t := range r.Targets {
		if b.Hit[t.TargetID()] || !t.Targetable(r.Now) {
			continue
		}
		if !geom.CirclesOverlap(b.Pos, b.Meta.Radius, t.Position(), t.HitRadius()) {
			continue
		}
		r.hit(b, t)
		return true
	}
	return false
}

func (r *Resolver) hit(b *entity.Bullet, t entity.Target) {
	if b.Hit == nil {
		b.Hit = make(map[string]bool)
	}
	b.Hit[t.TargetID()] = true

	amount := b.Meta.Damage
	crit := random.Chance(r.Rand, b.Meta.CritChance)
	if crit {
		amount *= b.Meta.CritMultiplier
	}
	dealt, _ := r.Apply(t, amount, b.Owner, crit)

	owner := r.owner(b.Owner)
	if owner != nil && owner.Hunter() && dealt > 0 && owner.Stats.Lifesteal > 0 {
		owner.Heal(dealt * owner.Stats.Lifesteal)
	}
	if t.Life().Alive {
		r.applyStatus(b, t)
	}
	if r.OnHit != nil {
		r.OnHit(b, t)
	}
	if owner != nil {
		if stacks := owner.Stats.HookStacks(stats.HookExplosiveRounds); stacks > 0 {
			r.Blast(t.Position(), r.Tuning.ExplosiveRadius, amount*r.Tuning.ExplosiveFraction*float64(stacks), b.Owner, t.TargetID())
		}
	}

	r.continueAfterHit(b, t)

	if b.Meta.Chain > 0 {
		r.chain(t, amount, b.Meta.Chain, b.Owner)
		b.Meta.Chain = 0
	}
}

func (r *Resolver) applyStatus(b *entity.Bullet, t entity.Target) {
	status := t.Conditions()
	if random.Chance(r.Rand, b.Meta.BurnChance) {
		status.AddEffect(entity.EffectBurn, b.Meta.BurnDPS, r.Tuning.BurnDuration, b.Owner, r.Now)
	}
	if random.Chance(r.Rand, b.Meta.SlowChance) {
		status.ApplySlow(1-b.Meta.SlowAmount, r.Now.Add(r.Tuning.SlowDuration), r.Now)
	}
	if random.Chance(r.Rand, b.Meta.BleedChance) {
		status.AddEffect(entity.EffectBleed, b.Meta.BleedDPS, r.Tuning.BleedDuration, b.Owner, r.Now)
	}
}

// continueAfterHit spends pierce first, then ricochet, else consumes the bullet.
func (r *Resolver) continueAfterHit(b *entity.Bullet, t entity.Target) {
	if entity.Use(&b.Meta.Pierce) {
		return
	}
	if b.Meta.Ricochet > 0 {
		next := r.nearest(b.Pos, r.Tuning.RicochetRadius, func(c entity.Target) bool {
			return c.TargetID() != t.TargetID() && !b.Hit[c.TargetID()]
		})
		if next != nil {
			entity.Use(&b.Meta.Ricochet)
			speed := b.Vel.Len()
			b.Vel = next.Position().Sub(b.Pos).Normalize().Scale(speed)
			return
		}
	}
	b.Dead = true
}

// chain cascades decaying damage to the nearest unvisited targets.
func (r *Resolver) chain(from entity.Target, damage float64, hops int, ownerID string) int {
	visited := map[string]bool{from.TargetID(): true}
	origin := from.Position()
	jumped := 0
	for hop := 0; hop < hops; hop++ {
		damage *= r.Tuning.ChainFalloff
		next := r.nearest(origin, r.Tuning.ChainRange, func(c entity.Target) bool {
			return !visited[c.TargetID()]
		})
		if next == nil {
			break
		}
		visited[next.TargetID()] = true
		r.Apply(next, damage, ownerID, false)
		origin = next.Position()
		jumped++
	}
	return jumped
}

func (r *Resolver) nearest(from geom.Vec2, radius float64, accept func(entity.Target) bool) entity.Target {
	var best entity.Target
	bestDist := math.Inf(1)
	for _, c := range r.Targets {
		if !c.Targetable(r.Now) || !accept(c) {
			continue
		}
		d := from.Dist(c.Position())
		if d <= radius && d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// Apply damages a target and runs the death path on the killing blow. A dead
// target takes no further damage.
func (r *Resolver) Apply(t entity.Target, amount float64, ownerID string, crit bool) (float64, bool) {
	return r.apply(t, amount, ownerID, crit, false)
}

func (r *Resolver) apply(t entity.Target, amount float64, ownerID string, crit, dot bool) (float64, bool) {
	dealt, killed := t.Life().Hurt(amount)
	if dealt > 0 && r.OnDamage != nil {
		r.OnDamage(t, dealt, ownerID, crit, dot)
	}
	if killed {
		r.kill(t, ownerID)
	}
	return dealt, killed
}

func (r *Resolver) kill(t entity.Target, ownerID string) {
	t.Conditions().Effects = nil
	if owner := r.owner(ownerID); owner != nil && owner.Hunter() {
		result := Reward(owner, t.TargetKind(), r.Rewards, r.Rand)
		if r.OnReward != nil {
			r.OnReward(owner, result)
		}
	}
	if r.OnKill != nil {
		r.OnKill(t, ownerID)
	}
}

// Blast damages every targetable entity within radius of center except skip.
func (r *Resolver) Blast(center geom.Vec2, radius, damage float64, ownerID, skip string) int {
	hits := 0
	for _, t := range r.Targets {
		if t.TargetID() == skip || !t.Targetable(r.Now) {
			continue
		}
		if center.Dist(t.Position()) > radius+t.HitRadius() {
			continue
		}
		r.Apply(t, damage, ownerID, false)
		hits++
	}
	return hits
}

// Explode detonates an area shell and returns its shards.
func (r *Resolver) Explode(b *entity.Bullet) []*entity.Bullet {
	b.Dead = true
	r.Blast(b.Pos, b.Meta.Explosion, b.Meta.Damage, b.Owner, "")
	if b.Meta.Shards <= 0 {
		return nil
	}
	shards := make([]*entity.Bullet, 0, b.Meta.Shards)
	step := 2 * math.Pi / float64(b.Meta.Shards)
	for i := 0; i < b.Meta.Shards; i++ {
		id := ""
		if r.NextID != nil {
			id = r.NextID()
		}
		shards = append(shards, &entity.Bullet{
			ID:     id,
			Pos:    b.Pos,
			Vel:    geom.FromAngle(step*float64(i), r.Tuning.ShardSpeed),
			TTL:    r.Tuning.ShardTTL,
			Owner:  b.Owner,
			Weapon: "shard",
			Hit:    make(map[string]bool),
			Meta: entity.Meta{
				Damage:         b.Meta.Damage * r.Tuning.ShardFraction,
				Radius:         r.Tuning.ShardRadius,
				CritMultiplier: 1,
			},
		})
	}
	return shards
}

// Sweep ticks burn and bleed records. Each due record deals one second of
// damage; expired records are dropped.
func (r *Resolver) Sweep() {
	for _, t := range r.Targets {
		status := t.Conditions()
		if len(status.Effects) == 0 {
			continue
		}
		life := t.Life()
		if !life.Alive {
			status.Effects = nil
			continue
		}
		kept := status.Effects[:0]
		died := false
		for _, e := range status.Effects {
			for !died && !e.NextTick.After(r.Now) && !e.NextTick.After(e.Expires) {
				e.NextTick = e.NextTick.Add(time.Second)
				_, died = r.apply(t, e.DPS, e.Owner, false, true)
			}
			if died {
				break
			}
			if r.Now.Before(e.Expires) {
				kept = append(kept, e)
			}
		}
		if died {
			status.Effects = nil
			continue
		}
		status.Effects = kept
	}
}
