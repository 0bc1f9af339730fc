package boss

import (
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/loot"
	"horde-hunt/server/internal/random"
)

// DeathContext carries what the death pass needs from the world.
type DeathContext struct {
	Now          time.Time
	Rand         random.Source
	Tuning       Tuning
	HunterWeapon string
	NextID       func() string
	Settle       func(geom.Vec2) geom.Vec2
}

// DeathResult lists everything the death pass produced.
type DeathResult struct {
	Pickups []*entity.Pickup
	Weapon  *entity.WeaponDrop
	Purged  []string
}

// Die moves a defeated boss to its dying state, purges its minions and clones,
// and scatters its loot. Loot is generated only once per boss.
func Die(b *entity.Boss, minions []*entity.Minion, ctx DeathContext) ([]*entity.Minion, DeathResult) {
	var res DeathResult
	if b == nil {
		return minions, res
	}
	b.State = entity.BossDying
	b.Alive = false
	b.Effects = nil

	kept := minions[:0]
	for _, m := range minions {
		if m.BossID == b.ID {
			res.Purged = append(res.Purged, m.ID)
			continue
		}
		kept = append(kept, m)
	}
	b.Minions = nil

	if b.LootDropped {
		return kept, res
	}
	b.LootDropped = true

	count := ctx.Tuning.GuaranteedDrops + random.IntBetween(ctx.Rand, 0, ctx.Tuning.BonusDrops)
	table := loot.BossTable()
	kinds := make([]entity.PickupType, 0, count)
	for i := 0; i < count; i++ {
		if kind, ok := table.Pick(ctx.Rand); ok {
			kinds = append(kinds, kind)
		}
	}
	res.Pickups = loot.Scatter(b.Pos, kinds, ctx.Rand, ctx.NextID, ctx.Settle)

	if kind, ok := loot.BossWeapon(ctx.Rand, ctx.HunterWeapon); ok {
		w, _ := combat.LookupWeapon(kind)
		pos := b.Pos
		if ctx.Settle != nil {
			pos = ctx.Settle(pos)
		}
		res.Weapon = &entity.WeaponDrop{Weapon: kind, Ammo: w.Pack, Pos: pos, Source: entity.DropBoss}
		if ctx.NextID != nil {
			res.Weapon.ID = ctx.NextID()
		}
	}
	return kept, res
}
