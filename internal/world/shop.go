package world

import (
	"context"
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/logging"
	loggingeconomy "horde-hunt/server/logging/economy"
)

const (
	medkitHeal   = 50
	shopShield   = 8 * time.Second
	itemAmmoPack = "ammo_pack"
	itemMedkit   = "medkit"
	itemShield   = "shield"
)

// ShopItem is one purchasable entry.
type ShopItem struct {
	ID     string
	Price  int
	Weapon string
}

var shopItems = map[string]ShopItem{
	itemAmmoPack:      {ID: itemAmmoPack, Price: 20},
	itemMedkit:        {ID: itemMedkit, Price: 30},
	itemShield:        {ID: itemShield, Price: 40},
	"weapon_rifle":    {ID: "weapon_rifle", Price: 60, Weapon: combat.WeaponRifle},
	"weapon_shotgun":  {ID: "weapon_shotgun", Price: 70, Weapon: combat.WeaponShotgun},
	"weapon_railgun":  {ID: "weapon_railgun", Price: 90, Weapon: combat.WeaponRailgun},
	"weapon_launcher": {ID: "weapon_launcher", Price: 110, Weapon: combat.WeaponLauncher},
}

// Buy spends the hunter's currency on a shop item.
func (w *World) Buy(id, item string, now time.Time) error {
	p, ok := w.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	ref := logging.Ref(id, logging.EntityKindPlayer)
	reject := func(err error, price int) error {
		loggingeconomy.PurchaseRejected(context.Background(), w.publisher, w.tick, ref,
			loggingeconomy.PurchasePayload{Item: item, Price: price, Balance: p.Currency, Reason: err.Error()}, nil)
		return err
	}
	entry, ok := shopItems[item]
	if !ok {
		return reject(ErrUnknownItem, 0)
	}
	if !p.Hunter() {
		return reject(ErrNotHunter, entry.Price)
	}
	if !p.Alive {
		return reject(ErrPlayerDead, entry.Price)
	}
	if p.Currency < entry.Price {
		return reject(ErrInsufficientFunds, entry.Price)
	}

	p.Currency -= entry.Price
	switch {
	case entry.Weapon != "":
		weapon, _ := combat.LookupWeapon(entry.Weapon)
		p.GrantWeapon(weapon.Kind)
		p.Ammo[weapon.Kind] += weapon.Pack
		p.Weapon = weapon.Kind
	case item == itemAmmoPack:
		kind := p.Weapon
		if weapon, ok := combat.LookupWeapon(kind); !ok || weapon.Unlimited() {
			kind = combat.WeaponRifle
			p.GrantWeapon(kind)
		}
		weapon, _ := combat.LookupWeapon(kind)
		p.Ammo[kind] += weapon.Pack
	case item == itemMedkit:
		p.Heal(medkitHeal)
	case item == itemShield:
		entity.Extend(&p.ShieldUntil, now, shopShield)
	}

	loggingeconomy.Purchase(context.Background(), w.publisher, w.tick, ref,
		loggingeconomy.PurchasePayload{Item: item, Price: entry.Price, Balance: p.Currency}, nil)
	return nil
}
