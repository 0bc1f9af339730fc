package loot

import (
	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/random"
)

// KillTable is rolled once per hostile death after the drop chance passes.
func KillTable() *random.Weighted[entity.PickupType] {
	return random.NewWeighted(
		random.Entry[entity.PickupType]{Value: entity.PickupAmmo, Weight: 45},
		random.Entry[entity.PickupType]{Value: entity.PickupTreasureSmall, Weight: 35},
		random.Entry[entity.PickupType]{Value: entity.PickupTreasureLarge, Weight: 12},
		random.Entry[entity.PickupType]{Value: entity.PickupHealth, Weight: 8},
	)
}

// BossTable is rolled for every scattered boss drop.
func BossTable() *random.Weighted[entity.PickupType] {
	return random.NewWeighted(
		random.Entry[entity.PickupType]{Value: entity.PickupAmmo, Weight: 30},
		random.Entry[entity.PickupType]{Value: entity.PickupHealth, Weight: 25},
		random.Entry[entity.PickupType]{Value: entity.PickupTreasureSmall, Weight: 20},
		random.Entry[entity.PickupType]{Value: entity.PickupTreasureLarge, Weight: 12},
		random.Entry[entity.PickupType]{Value: entity.PickupShield, Weight: 7},
		random.Entry[entity.PickupType]{Value: entity.PickupMagnet, Weight: 6},
	)
}

// RollKillDrop makes the single loot roll of a death: the overall drop chance
// first, then the weighted table.
func RollKillDrop(src random.Source, chance float64, table *random.Weighted[entity.PickupType]) (entity.PickupType, bool) {
	if !random.Chance(src, chance) {
		return "", false
	}
	return table.Pick(src)
}

// BossWeapon picks a weapon for a boss drop that differs from the hunter's
// current weapon and from the starter pistol.
func BossWeapon(src random.Source, current string) (string, bool) {
	var pool []string
	for _, kind := range combat.WeaponKinds() {
		if kind == current || kind == combat.WeaponPistol {
			continue
		}
		pool = append(pool, kind)
	}
	if len(pool) == 0 {
		return "", false
	}
	return pool[src.Intn(len(pool))], true
}
