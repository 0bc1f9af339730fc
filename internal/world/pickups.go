package world

import (
	"context"
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/loot"
	"horde-hunt/server/logging"
	loggingeconomy "horde-hunt/server/logging/economy"
)

// freezeSlow is the room-wide hostile speed factor while a freeze runs.
const freezeSlow = 0.35

// SpawnPickup runs one step of the slow pickup cadence. It returns the new
// pickup, or nil when nothing was placed.
func (w *World) SpawnPickup(now time.Time) *entity.Pickup {
	if !w.roundActive {
		return nil
	}
	p := loot.Spawn(w.pickupCfg, loot.SpawnRequest{
		Existing: w.pickups,
		Map:      w.Map(),
		Rand:     w.rng,
		ID:       w.nextID("pickup"),
	})
	if p != nil {
		w.pickups = append(w.pickups, p)
	}
	return p
}

// rollDrop rolls the kill drop table. Kill drops ignore the spawn caps.
func (w *World) rollDrop(pos geom.Vec2) {
	kind, ok := loot.RollKillDrop(w.rng, w.cfg.Loot.DropChance, loot.KillTable())
	if !ok {
		return
	}
	w.pickups = append(w.pickups, &entity.Pickup{ID: w.nextID("pickup"), Type: kind, Pos: w.settlePoint(pos)})
}

func (w *World) effects(r *combat.Resolver, now time.Time) loot.Effects {
	e := loot.DefaultEffects(now, w.rng)
	e.OnFreeze = func(until time.Time) {
		if until.After(w.freezeUntil) {
			w.freezeUntil = until
		}
		w.notice("The horde is frozen!")
	}
	e.OnBlast = func(center geom.Vec2, radius, damage float64, ownerID string) {
		r.Blast(center, radius, damage, ownerID, "")
	}
	e.OnUnlock = func() int {
		n := w.Map().UnlockDoors()
		if n > 0 {
			w.broadcast(w.MapMessage())
			w.notice("The vault doors swing open")
		}
		return n
	}
	return e
}

// collect hands out floor pickups and weapon drops.
func (w *World) collect(r *combat.Resolver, now time.Time) {
	effects := w.effects(r, now)
	remaining, taken := loot.Collect(w.reach, now, w.pickups, w.sortedPlayers())
	w.pickups = remaining
	for _, t := range taken {
		res := effects.Apply(t.Player, t.Pickup)
		loggingeconomy.PickupCollected(context.Background(), w.publisher, w.tick, logging.Ref(t.Player.ID, logging.EntityKindPlayer),
			loggingeconomy.PickupCollectedPayload{
				PickupType: string(res.Type),
				Score:      res.Score,
				Currency:   res.Currency,
				Weapon:     res.Weapon,
				Ammo:       res.Ammo,
			}, nil)
	}

	hunter := w.Hunter()
	drops, grabbed := loot.CollectWeapons(w.reach, now, w.weaponDrops, hunter)
	w.weaponDrops = drops
	for _, d := range grabbed {
		loot.Equip(hunter, d)
		loggingeconomy.PickupCollected(context.Background(), w.publisher, w.tick, logging.Ref(hunter.ID, logging.EntityKindPlayer),
			loggingeconomy.PickupCollectedPayload{PickupType: "weapon_drop", Weapon: d.Weapon, Ammo: d.Ammo}, nil)
	}
}
