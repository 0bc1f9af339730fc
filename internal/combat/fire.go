package combat

import (
	"math"
	"time"

	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/stats"
)

// Reasons reported when a shot does not go out.
const (
	ReasonIdle      = "idle"
	ReasonLatched   = "latched"
	ReasonCooldown  = "cooldown"
	ReasonNoAmmo    = "no_ammo"
	ReasonNoWeapon  = "unknown_weapon"
	ReasonNotHunter = "not_hunter"
)

const (
	baseCritMultiplier = 2.0
	twinShotOffset     = 0.12
	minFireRate        = 0.1
)

// FireConfig bundles what a single trigger pull reads.
type FireConfig struct {
	Shooter *entity.Player
	Now     time.Time
	Rand    random.Source
	NextID  func() string
}

// FireResult lists the projectiles spawned by a trigger pull.
type FireResult struct {
	Bullets []*entity.Bullet
	Spent   int
	Reason  string
}

// Fire applies the shooter's weapon rules to the current input. The latch of
// a single-shot weapon re-arms only once the shoot input is released.
func Fire(cfg FireConfig) FireResult {
	p := cfg.Shooter
	if p == nil || !p.Alive {
		return FireResult{Reason: ReasonIdle}
	}
	if !p.Hunter() {
		return FireResult{Reason: ReasonNotHunter}
	}
	if !p.Input.Shoot {
		p.FireLatch = false
		return FireResult{Reason: ReasonIdle}
	}
	weapon, ok := LookupWeapon(p.Weapon)
	if !ok {
		return FireResult{Reason: ReasonNoWeapon}
	}
	if weapon.SingleShot && p.FireLatch {
		return FireResult{Reason: ReasonLatched}
	}
	if cfg.Now.Before(p.NextFire) {
		return FireResult{Reason: ReasonCooldown}
	}

	cost := 0
	if !weapon.Unlimited() {
		cost = rollCost(cfg.Rand, weapon.Cost*p.Stats.AmmoEfficiency)
		if p.Ammo[weapon.Kind] < cost {
			return FireResult{Reason: ReasonNoAmmo}
		}
		p.Ammo[weapon.Kind] -= cost
	}

	p.NextFire = cfg.Now.Add(Cooldown(weapon, p.Stats, entity.Active(p.WeaponBoostUntil, cfg.Now)))
	if weapon.SingleShot {
		p.FireLatch = true
	}

	return FireResult{Bullets: spawnBullets(cfg, weapon), Spent: cost}
}

// Cooldown is the time between shots after the fire-rate stat.
func Cooldown(weapon Weapon, block stats.Block, boosted bool) time.Duration {
	base := weapon.Cooldown
	if boosted && weapon.Boosted > 0 {
		base = weapon.Boosted
	}
	rate := block.FireRate
	if rate < minFireRate {
		rate = minFireRate
	}
	return time.Duration(float64(base) / rate)
}

// rollCost keeps the integer part of a scaled cost and rolls the fraction.
func rollCost(src random.Source, cost float64) int {
	if cost <= 0 {
		return 0
	}
	whole := math.Floor(cost)
	if random.Chance(src, cost-whole) {
		whole++
	}
	return int(whole)
}

func spawnBullets(cfg FireConfig, weapon Weapon) []*entity.Bullet {
	p := cfg.Shooter
	aim := p.Input.Aim().Sub(p.Pos)
	angle := 0.0
	if !aim.IsZero() {
		angle = math.Atan2(aim.Y, aim.X)
	}

	angles := make([]float64, 0, weapon.Count+2)
	for i := 0; i < weapon.Count; i++ {
		angles = append(angles, angle+random.Jitter(cfg.Rand, weapon.Spread*p.Stats.Spread))
	}
	for k := 1; k <= p.Stats.HookStacks(stats.HookTwinShot); k++ {
		sign := 1.0
		if k%2 == 0 {
			sign = -1
		}
		offset := sign * twinShotOffset * float64((k+1)/2)
		angles = append(angles, angle+offset+random.Jitter(cfg.Rand, weapon.Spread*p.Stats.Spread))
	}

	meta := metaFor(weapon, p.Stats)
	speed := weapon.Speed * p.Stats.BulletSpeed
	bullets := make([]*entity.Bullet, 0, len(angles))
	for _, a := range angles {
		dir := geom.FromAngle(a, 1)
		id := ""
		if cfg.NextID != nil {
			id = cfg.NextID()
		}
		bullets = append(bullets, &entity.Bullet{
			ID:     id,
			Pos:    p.Pos.Add(dir.Scale(p.Radius)),
			Vel:    dir.Scale(speed),
			TTL:    weapon.TTL,
			Owner:  p.ID,
			Weapon: weapon.Kind,
			Hit:    make(map[string]bool),
			Meta:   meta,
		})
	}
	return bullets
}

func metaFor(weapon Weapon, block stats.Block) entity.Meta {
	return entity.Meta{
		Damage:         weapon.Damage * block.Damage,
		Radius:         weapon.Radius * block.BulletSize,
		Pierce:         weapon.Pierce + block.Pierce,
		Bounce:         block.Bounce,
		Ricochet:       block.Ricochet,
		Chain:          block.Chain,
		CritChance:     block.CritChance,
		CritMultiplier: baseCritMultiplier * block.CritMultiplier,
		BurnChance:     block.BurnChance,
		BurnDPS:        block.BurnDPS,
		SlowChance:     block.SlowChance,
		SlowAmount:     block.SlowAmount,
		BleedChance:    block.BleedChance,
		BleedDPS:       block.BleedDPS,
		Explosion:      weapon.Explosion,
		Shards:         weapon.Shards,
	}
}
