package loot

import (
	"sort"
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
)

// Reach is the collection radius tuning.
type Reach struct {
	Radius       float64
	MagnetRadius float64
}

// ReachFrom reads the collection radii from a room config.
func ReachFrom(cfg config.Config) Reach {
	return Reach{Radius: cfg.Hunter.CollectRadius, MagnetRadius: cfg.Hunter.MagnetRadius}
}

// Of returns how far p reaches. The hunter's magnet window widens the base
// radius and the magnet stat always adds to it.
func (r Reach) Of(p *entity.Player, now time.Time) float64 {
	base := r.Radius
	if p.Hunter() {
		if entity.Active(p.MagnetUntil, now) && r.MagnetRadius > base {
			base = r.MagnetRadius
		}
		base += p.Stats.MagnetRange
	}
	return base + p.Radius
}

// CollectorOrder returns the hunter first, then horde players by id.
func CollectorOrder(players []*entity.Player) []*entity.Player {
	out := make([]*entity.Player, 0, len(players))
	for _, p := range players {
		if p != nil {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Hunter() != out[j].Hunter() {
			return out[i].Hunter()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Eligible reports whether p may take a pickup of kind. Health and speed are
// open to any living player; everything else is hunter only.
func Eligible(p *entity.Player, kind entity.PickupType) bool {
	if p == nil || !p.Alive {
		return false
	}
	switch kind {
	case entity.PickupHealth, entity.PickupSpeed:
		return true
	default:
		return p.Hunter()
	}
}

// Taken pairs a consumed pickup with its collector.
type Taken struct {
	Pickup *entity.Pickup
	Player *entity.Player
}

// Collect hands each pickup to the first eligible player in range. Players
// must already be in collector order. A pickup is consumed at most once.
func Collect(reach Reach, now time.Time, pickups []*entity.Pickup, players []*entity.Player) ([]*entity.Pickup, []Taken) {
	remaining := pickups[:0]
	var taken []Taken
	for _, pickup := range pickups {
		var winner *entity.Player
		for _, p := range players {
			if !Eligible(p, pickup.Type) {
				continue
			}
			if p.Pos.Dist(pickup.Pos) <= reach.Of(p, now) {
				winner = p
				break
			}
		}
		if winner == nil {
			remaining = append(remaining, pickup)
			continue
		}
		taken = append(taken, Taken{Pickup: pickup, Player: winner})
	}
	return remaining, taken
}

// CollectWeapons lets the hunter walk over weapon drops.
func CollectWeapons(reach Reach, now time.Time, drops []*entity.WeaponDrop, hunter *entity.Player) ([]*entity.WeaponDrop, []*entity.WeaponDrop) {
	if hunter == nil || !hunter.Alive || !hunter.Hunter() {
		return drops, nil
	}
	remaining := drops[:0]
	var taken []*entity.WeaponDrop
	r := reach.Of(hunter, now)
	for _, d := range drops {
		if hunter.Pos.Dist(d.Pos) <= r {
			taken = append(taken, d)
			continue
		}
		remaining = append(remaining, d)
	}
	return remaining, taken
}

// Equip grants a weapon drop and makes it active.
func Equip(p *entity.Player, d *entity.WeaponDrop) {
	p.GrantWeapon(d.Weapon)
	p.Ammo[d.Weapon] += d.Ammo
	p.Weapon = d.Weapon
}

// Effects holds pickup magnitudes and the room-wide hooks some pickups need.
type Effects struct {
	Now  time.Time
	Rand random.Source

	Heal          float64
	Boost         time.Duration
	WeaponBoost   time.Duration
	Shield        time.Duration
	Magnet        time.Duration
	Freeze        time.Duration
	BlastDamage   float64
	BlastRadius   float64
	SmallScore    int
	SmallCurrency int
	LargeScore    int
	LargeCurrency int

	OnFreeze func(until time.Time)
	OnBlast  func(center geom.Vec2, radius, damage float64, ownerID string)
	OnUnlock func() int
}

// DefaultEffects returns the stock pickup magnitudes.
func DefaultEffects(now time.Time, src random.Source) Effects {
	return Effects{
		Now:           now,
		Rand:          src,
		Heal:          35,
		Boost:         5 * time.Second,
		WeaponBoost:   8 * time.Second,
		Shield:        6 * time.Second,
		Magnet:        10 * time.Second,
		Freeze:        5 * time.Second,
		BlastDamage:   200,
		BlastRadius:   320,
		SmallScore:    25,
		SmallCurrency: 10,
		LargeScore:    75,
		LargeCurrency: 30,
	}
}

// Result describes what a pickup did.
type Result struct {
	Type     entity.PickupType
	Healed   float64
	Score    int
	Currency int
	Weapon   string
	Ammo     int
	Unlocked int
}

// Apply runs the pickup effect on p.
func (e Effects) Apply(p *entity.Player, pickup *entity.Pickup) Result {
	res := Result{Type: pickup.Type}
	switch pickup.Type {
	case entity.PickupHealth:
		res.Healed = p.Heal(e.Heal)
	case entity.PickupSpeed:
		entity.Extend(&p.BoostUntil, e.Now, e.Boost)
	case entity.PickupAmmo:
		res.Weapon, res.Ammo = e.ammoPack(p)
	case entity.PickupWeapon:
		res.Weapon, res.Ammo = e.newWeapon(p)
	case entity.PickupShield:
		entity.Extend(&p.ShieldUntil, e.Now, e.Shield)
	case entity.PickupMagnet:
		entity.Extend(&p.MagnetUntil, e.Now, e.Magnet)
	case entity.PickupFreeze:
		if e.OnFreeze != nil {
			e.OnFreeze(e.Now.Add(e.Freeze))
		}
	case entity.PickupBlast:
		if e.OnBlast != nil {
			e.OnBlast(p.Pos, e.BlastRadius, e.BlastDamage, p.ID)
		}
	case entity.PickupTreasureSmall:
		res.Score, res.Currency = e.SmallScore, e.SmallCurrency
	case entity.PickupTreasureLarge:
		res.Score, res.Currency = e.LargeScore, e.LargeCurrency
	case entity.PickupKey:
		if e.OnUnlock != nil {
			res.Unlocked = e.OnUnlock()
		}
	}
	p.Score += res.Score
	p.Currency += res.Currency
	return res
}

// ammoPack refills the active weapon, or a random owned weapon that uses ammo
// when the active one is unlimited.
func (e Effects) ammoPack(p *entity.Player) (string, int) {
	target := p.Weapon
	if w, ok := combat.LookupWeapon(target); !ok || w.Unlimited() {
		var owned []string
		for _, kind := range p.Weapons {
			if w, ok := combat.LookupWeapon(kind); ok && !w.Unlimited() {
				owned = append(owned, kind)
			}
		}
		if len(owned) == 0 {
			owned = []string{combat.WeaponRifle}
		}
		target = owned[e.Rand.Intn(len(owned))]
	}
	w, _ := combat.LookupWeapon(target)
	if p.Ammo == nil {
		p.Ammo = make(map[string]int)
	}
	p.Ammo[target] += w.Pack
	return target, w.Pack
}

// newWeapon grants a random unowned weapon and a short fire-rate boost.
func (e Effects) newWeapon(p *entity.Player) (string, int) {
	pool := combat.UnownedWeapons(p.OwnsWeapon)
	if len(pool) == 0 {
		pool = combat.UnownedWeapons(func(kind string) bool { return kind == combat.WeaponPistol })
	}
	kind := pool[e.Rand.Intn(len(pool))]
	w, _ := combat.LookupWeapon(kind)
	Equip(p, &entity.WeaponDrop{Weapon: kind, Ammo: w.Pack})
	entity.Extend(&p.WeaponBoostUntil, e.Now, e.WeaponBoost)
	return kind, w.Pack
}
