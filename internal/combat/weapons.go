package combat

import "time"

// Weapon describes one firearm. Cooldowns are divided by the fire-rate stat,
// ammo cost is scaled by the ammo-efficiency stat.
type Weapon struct {
	Kind       string
	Cooldown   time.Duration
	Boosted    time.Duration
	Cost       float64
	Damage     float64
	Speed      float64
	TTL        float64
	Spread     float64
	Count      int
	Radius     float64
	Pierce     int
	Explosion  float64
	Shards     int
	SingleShot bool
	Pack       int
	Price      int
}

const (
	WeaponPistol   = "pistol"
	WeaponRifle    = "rifle"
	WeaponShotgun  = "shotgun"
	WeaponRailgun  = "railgun"
	WeaponLauncher = "launcher"
)

var weaponOrder = []string{WeaponPistol, WeaponRifle, WeaponShotgun, WeaponRailgun, WeaponLauncher}

var weapons = map[string]Weapon{
	WeaponPistol: {
		Kind: WeaponPistol, Cooldown: 260 * time.Millisecond, Boosted: 160 * time.Millisecond,
		Cost: 0, Damage: 20, Speed: 720, TTL: 0.8, Spread: 0.04, Count: 1, Radius: 4,
		SingleShot: true,
	},
	WeaponRifle: {
		Kind: WeaponRifle, Cooldown: 110 * time.Millisecond, Boosted: 75 * time.Millisecond,
		Cost: 1, Damage: 13, Speed: 900, TTL: 1.1, Spread: 0.07, Count: 1, Radius: 4,
		Pack: 60, Price: 60,
	},
	WeaponShotgun: {
		Kind: WeaponShotgun, Cooldown: 720 * time.Millisecond, Boosted: 460 * time.Millisecond,
		Cost: 1, Damage: 9, Speed: 650, TTL: 0.45, Spread: 0.32, Count: 6, Radius: 4,
		Pack: 16, Price: 70,
	},
	WeaponRailgun: {
		Kind: WeaponRailgun, Cooldown: 900 * time.Millisecond, Boosted: 600 * time.Millisecond,
		Cost: 2, Damage: 42, Speed: 1500, TTL: 0.6, Spread: 0.01, Count: 1, Radius: 3,
		Pierce: 4, Pack: 12, Price: 90,
	},
	WeaponLauncher: {
		Kind: WeaponLauncher, Cooldown: 1000 * time.Millisecond, Boosted: 700 * time.Millisecond,
		Cost: 3, Damage: 30, Speed: 420, TTL: 1.0, Spread: 0.05, Count: 1, Radius: 7,
		Explosion: 90, Shards: 6, Pack: 9, Price: 110,
	},
}

// LookupWeapon returns the definition for kind.
func LookupWeapon(kind string) (Weapon, bool) {
	w, ok := weapons[kind]
	return w, ok
}

// WeaponKinds lists every weapon in display order.
func WeaponKinds() []string {
	out := make([]string, len(weaponOrder))
	copy(out, weaponOrder)
	return out
}

// UnownedWeapons lists weapons the owner does not have yet, in display order.
func UnownedWeapons(owned func(string) bool) []string {
	var out []string
	for _, kind := range weaponOrder {
		if !owned(kind) {
			out = append(out, kind)
		}
	}
	return out
}

// Unlimited reports whether the weapon never consumes ammo.
func (w Weapon) Unlimited() bool {
	return w.Cost <= 0
}
