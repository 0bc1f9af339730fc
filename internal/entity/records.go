package entity

import (
	"time"

	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/stats"
)

// Player is a connected participant.
type Player struct {
	ID     string
	Name   string
	Role   Role
	Class  Class
	Pos    geom.Vec2
	Vel    geom.Vec2
	Radius float64
	Input  Input
	Vitals
	Status

	Weapon  string
	Weapons []string
	Ammo    map[string]int

	Score    int
	Currency int
	Kills    int
	Deaths   int

	Progress      stats.Progress
	Upgrades      stats.Stacks
	Stats         stats.Block
	Offer         []string
	PendingOffers int

	FireLatch  bool
	NextFire   time.Time
	NextMelee  time.Time
	NextDash   time.Time
	NextAttack time.Time
	NextHazard time.Time

	LastActivity time.Time
	RespawnAt    time.Time
	ChatMuted    bool
	Emote        string
	EmoteUntil   time.Time
}

// OwnsWeapon reports whether the weapon is in the player's loadout.
func (p *Player) OwnsWeapon(kind string) bool {
	for _, w := range p.Weapons {
		if w == kind {
			return true
		}
	}
	return false
}

// GrantWeapon adds kind to the loadout once.
func (p *Player) GrantWeapon(kind string) {
	if !p.OwnsWeapon(kind) {
		p.Weapons = append(p.Weapons, kind)
	}
	if p.Ammo == nil {
		p.Ammo = make(map[string]int)
	}
}

// Hunter reports whether the player holds the hunter role.
func (p *Player) Hunter() bool {
	return p.Role == RoleHunter
}

// AIState is the behaviour state of hostiles and minions.
type AIState string

const (
	StateIdle      AIState = "idle"
	StateChasing   AIState = "chasing"
	StateAttacking AIState = "attacking"
)

// Hostile is a server controlled horde member.
type Hostile struct {
	ID     string
	Class  Class
	Pos    geom.Vec2
	Vel    geom.Vec2
	Radius float64
	Vitals
	Status

	State           AIState
	LastSeen        time.Time
	LastAttack      time.Time
	NextGlob        time.Time
	NextHazard      time.Time
	DetectionRadius float64
	ChaseRadius     float64
	Speed           float64
	Damage          float64
}

// BossType names one of the scripted bosses.
type BossType string

const (
	BossNecromancer BossType = "necromancer"
	BossJuggernaut  BossType = "juggernaut"
	BossWraith      BossType = "wraith"
)

// BossState is the boss behaviour state.
type BossState string

const (
	BossSpawning  BossState = "spawning"
	BossIdle      BossState = "idle"
	BossChasing   BossState = "chasing"
	BossAttacking BossState = "attacking"
	BossAbility   BossState = "ability"
	BossDying     BossState = "dying"
)

// Boss is a scripted hostile with abilities.
type Boss struct {
	ID     string
	Type   BossType
	Pos    geom.Vec2
	Vel    geom.Vec2
	Radius float64
	Vitals
	Status

	Damage float64
	Speed  float64
	State  BossState

	SpawnedAt   time.Time
	ReadyAt     time.Time
	LastAbility map[string]time.Time
	LastAttack  time.Time
	Enraged     bool

	AbilityUntil time.Time
	PhaseUntil   time.Time
	ChargeUntil  time.Time
	ChargeDir    geom.Vec2
	DrainUntil   time.Time
	DrainNext    time.Time

	Minions     []string
	LootDropped bool
}

// Phased reports whether the boss is currently untargetable.
func (b *Boss) Phased(now time.Time) bool {
	return Active(b.PhaseUntil, now)
}

// Minion is a boss summon or clone.
type Minion struct {
	ID     string
	BossID string
	Clone  bool
	Pos    geom.Vec2
	Vel    geom.Vec2
	Radius float64
	Vitals
	Status

	State      AIState
	Expires    time.Time
	Damage     float64
	Speed      float64
	LastAttack time.Time
	NextHazard time.Time
}

// Meta carries the damage pipeline parameters of a bullet. The continuation
// counters never go below zero.
type Meta struct {
	Damage         float64 `json:"damage"`
	Radius         float64 `json:"radius"`
	Pierce         int     `json:"pierce"`
	Bounce         int     `json:"bounce"`
	Ricochet       int     `json:"ricochet"`
	Chain          int     `json:"chain"`
	CritChance     float64 `json:"-"`
	CritMultiplier float64 `json:"-"`
	BurnChance     float64 `json:"-"`
	BurnDPS        float64 `json:"-"`
	SlowChance     float64 `json:"-"`
	SlowAmount     float64 `json:"-"`
	BleedChance    float64 `json:"-"`
	BleedDPS       float64 `json:"-"`
	Explosion      float64 `json:"-"`
	Shards         int     `json:"-"`
}

// Use spends one unit of a counter and reports whether one was available.
func Use(counter *int) bool {
	if *counter <= 0 {
		*counter = 0
		return false
	}
	*counter--
	return true
}

// Bullet is a hunter projectile.
type Bullet struct {
	ID     string
	Pos    geom.Vec2
	Vel    geom.Vec2
	TTL    float64
	Owner  string
	Weapon string
	Hit    map[string]bool
	Meta   Meta
	Dead   bool
}

// Glob is a hostile ranged projectile with flat damage.
type Glob struct {
	ID     string
	Pos    geom.Vec2
	Vel    geom.Vec2
	TTL    float64
	Owner  string
	Damage float64
	Radius float64
}

// PickupType enumerates collectible kinds.
type PickupType string

const (
	PickupHealth        PickupType = "health"
	PickupSpeed         PickupType = "speed"
	PickupAmmo          PickupType = "ammo"
	PickupWeapon        PickupType = "weapon"
	PickupShield        PickupType = "shield"
	PickupMagnet        PickupType = "magnet"
	PickupFreeze        PickupType = "freeze"
	PickupBlast         PickupType = "blast"
	PickupTreasureSmall PickupType = "treasure_small"
	PickupTreasureLarge PickupType = "treasure_large"
	PickupKey           PickupType = "key"
)

// PickupTypes lists every kind in a stable order.
var PickupTypes = []PickupType{
	PickupHealth, PickupSpeed, PickupAmmo, PickupWeapon, PickupShield, PickupMagnet,
	PickupFreeze, PickupBlast, PickupTreasureSmall, PickupTreasureLarge, PickupKey,
}

// Pickup is a collectible on the floor.
type Pickup struct {
	ID   string     `json:"id"`
	Type PickupType `json:"type"`
	Pos  geom.Vec2  `json:"pos"`
}

// DropSource tags where a weapon drop came from.
type DropSource string

const (
	DropBoss     DropSource = "boss"
	DropTreasure DropSource = "treasure"
	DropSwap     DropSource = "swap"
	DropSpawn    DropSource = "spawn"
)

// WeaponDrop is a weapon lying on the floor.
type WeaponDrop struct {
	ID     string     `json:"id"`
	Weapon string     `json:"weapon"`
	Ammo   int        `json:"ammo"`
	Pos    geom.Vec2  `json:"pos"`
	Source DropSource `json:"source"`
}

// PoisonField is a boss area hazard.
type PoisonField struct {
	ID       string
	Pos      geom.Vec2
	Radius   float64
	DPS      float64
	Created  time.Time
	Expires  time.Time
	BossID   string
	NextTick time.Time
}

// DamageNumber is a short lived visual marker.
type DamageNumber struct {
	Pos    geom.Vec2
	Amount float64
	Crit   bool
	DOT    bool
	At     time.Time
}
