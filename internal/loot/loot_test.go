package loot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/tilemap"
)

func openMap() *tilemap.Map {
	m := &tilemap.Map{W: 20, H: 20, TileSize: 40, Tiles: make([]tilemap.Tile, 20*20)}
	m.Rooms = []tilemap.Room{{X: 2, Y: 2, W: 10, H: 10}}
	return m
}

func hunterAt(x, y float64) *entity.Player {
	p := &entity.Player{ID: "h", Role: entity.RoleHunter, Pos: geom.Vec2{X: x, Y: y}, Radius: 16,
		Vitals: entity.NewVitals(100), Weapon: combat.WeaponPistol}
	p.GrantWeapon(combat.WeaponPistol)
	return p
}

func hordeAt(id string, x, y float64) *entity.Player {
	return &entity.Player{ID: id, Role: entity.RoleHorde, Pos: geom.Vec2{X: x, Y: y}, Radius: 14,
		Vitals: entity.NewVitals(60)}
}

func TestHeadroomCountsUnitsUnderCap(t *testing.T) {
	cfg := SpawnConfig{MaxTotal: 10, Caps: map[entity.PickupType]int{
		entity.PickupHealth: 3, entity.PickupAmmo: 1, entity.PickupKey: 1,
	}}
	existing := []*entity.Pickup{{Type: entity.PickupHealth}, {Type: entity.PickupKey}}

	table := Headroom(cfg, existing)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 3.0, table.Total())
}

func TestSpawnHonoursCaps(t *testing.T) {
	m := openMap()
	cfg := SpawnConfig{MaxTotal: 2, Caps: map[entity.PickupType]int{entity.PickupHealth: 5}}
	full := []*entity.Pickup{{Type: entity.PickupHealth}, {Type: entity.PickupHealth, Pos: geom.Vec2{X: 500}}}
	assert.Nil(t, Spawn(cfg, SpawnRequest{Existing: full, Map: m, Rand: random.New("loot", "cap")}))

	capped := SpawnConfig{MaxTotal: 5, Caps: map[entity.PickupType]int{entity.PickupHealth: 1}}
	assert.Nil(t, Spawn(capped, SpawnRequest{Existing: full[:1], Map: m, Rand: random.New("loot", "cap")}))
}

func TestSpawnPlacesOnFloorInsideRoom(t *testing.T) {
	m := openMap()
	cfg := SpawnConfig{MaxTotal: 5, MinSpacing: 0, Caps: map[entity.PickupType]int{entity.PickupAmmo: 2}}
	p := Spawn(cfg, SpawnRequest{Map: m, Rand: random.New("loot", "place"), ID: "p1"})
	require.NotNil(t, p)
	assert.Equal(t, entity.PickupAmmo, p.Type)
	assert.Equal(t, "p1", p.ID)
	assert.True(t, m.RoomRect(m.Rooms[0]).Contains(p.Pos))
}

func TestSpawnKeepsMinimumSpacing(t *testing.T) {
	m := openMap()
	cfg := SpawnConfig{MaxTotal: 5, MinSpacing: 5000, Caps: map[entity.PickupType]int{entity.PickupAmmo: 2}}
	existing := []*entity.Pickup{{Type: entity.PickupAmmo, Pos: m.CenterOf(m.Rooms[0].Center())}}
	assert.Nil(t, Spawn(cfg, SpawnRequest{Existing: existing, Map: m, Rand: random.New("loot", "spacing")}))
}

func TestCollectPrefersHunterAndConsumesOnce(t *testing.T) {
	now := time.Unix(0, 0)
	reach := Reach{Radius: 30, MagnetRadius: 140}
	hunter := hunterAt(100, 100)
	horde := hordeAt("a", 100, 110)
	pickups := []*entity.Pickup{
		{ID: "1", Type: entity.PickupHealth, Pos: geom.Vec2{X: 105, Y: 105}},
		{ID: "2", Type: entity.PickupAmmo, Pos: geom.Vec2{X: 400, Y: 400}},
	}

	order := CollectorOrder([]*entity.Player{horde, hunter})
	require.Equal(t, "h", order[0].ID)

	remaining, taken := Collect(reach, now, pickups, order)
	require.Len(t, taken, 1)
	assert.Same(t, hunter, taken[0].Player)
	assert.Equal(t, "1", taken[0].Pickup.ID)
	require.Len(t, remaining, 1)

	remaining, taken = Collect(reach, now, remaining, order)
	assert.Empty(t, taken)
	assert.Len(t, remaining, 1)
}

func TestHordeOnlyTakesHealthAndSpeed(t *testing.T) {
	now := time.Unix(0, 0)
	horde := hordeAt("a", 100, 100)
	pickups := []*entity.Pickup{
		{ID: "ammo", Type: entity.PickupAmmo, Pos: geom.Vec2{X: 100, Y: 100}},
		{ID: "speed", Type: entity.PickupSpeed, Pos: geom.Vec2{X: 100, Y: 100}},
	}
	remaining, taken := Collect(Reach{Radius: 30}, now, pickups, []*entity.Player{horde})
	require.Len(t, taken, 1)
	assert.Equal(t, "speed", taken[0].Pickup.ID)
	require.Len(t, remaining, 1)
	assert.Equal(t, "ammo", remaining[0].ID)

	horde.Alive = false
	assert.False(t, Eligible(horde, entity.PickupHealth))
}

func TestMagnetWidensHunterReach(t *testing.T) {
	now := time.Unix(0, 0)
	reach := Reach{Radius: 30, MagnetRadius: 140}
	hunter := hunterAt(0, 0)
	assert.Equal(t, 46.0, reach.Of(hunter, now))

	hunter.MagnetUntil = now.Add(time.Second)
	hunter.Stats.MagnetRange = 60
	assert.Equal(t, 216.0, reach.Of(hunter, now))

	horde := hordeAt("a", 0, 0)
	horde.MagnetUntil = now.Add(time.Second)
	assert.Equal(t, 44.0, reach.Of(horde, now))
}

func TestAmmoPackFallsBackToRifle(t *testing.T) {
	now := time.Unix(0, 0)
	hunter := hunterAt(0, 0)
	res := DefaultEffects(now, random.NewSequence(0)).Apply(hunter, &entity.Pickup{Type: entity.PickupAmmo})
	assert.Equal(t, combat.WeaponRifle, res.Weapon)
	assert.Equal(t, 60, hunter.Ammo[combat.WeaponRifle])

	hunter.GrantWeapon(combat.WeaponShotgun)
	hunter.Weapon = combat.WeaponShotgun
	res = DefaultEffects(now, random.NewSequence(0)).Apply(hunter, &entity.Pickup{Type: entity.PickupAmmo})
	assert.Equal(t, combat.WeaponShotgun, res.Weapon)
	assert.Equal(t, 16, hunter.Ammo[combat.WeaponShotgun])
}

func TestWeaponPickupEquipsUnownedWeapon(t *testing.T) {
	now := time.Unix(0, 0)
	hunter := hunterAt(0, 0)
	res := DefaultEffects(now, random.NewSequence(0)).Apply(hunter, &entity.Pickup{Type: entity.PickupWeapon})

	assert.NotEqual(t, combat.WeaponPistol, res.Weapon)
	assert.Equal(t, res.Weapon, hunter.Weapon)
	assert.True(t, hunter.OwnsWeapon(res.Weapon))
	assert.Equal(t, res.Ammo, hunter.Ammo[res.Weapon])
	assert.Equal(t, now.Add(8*time.Second), hunter.WeaponBoostUntil)
}

func TestRoomWidePickupsUseHooks(t *testing.T) {
	now := time.Unix(0, 0)
	hunter := hunterAt(50, 50)
	var frozenUntil time.Time
	var blastAt geom.Vec2
	var blastDamage float64
	unlocked := 0

	fx := DefaultEffects(now, random.NewSequence(0))
	fx.OnFreeze = func(until time.Time) { frozenUntil = until }
	fx.OnBlast = func(center geom.Vec2, radius, damage float64, owner string) {
		blastAt, blastDamage = center, damage
		assert.Equal(t, 320.0, radius)
		assert.Equal(t, "h", owner)
	}
	fx.OnUnlock = func() int { unlocked++; return 4 }

	fx.Apply(hunter, &entity.Pickup{Type: entity.PickupFreeze})
	fx.Apply(hunter, &entity.Pickup{Type: entity.PickupBlast})
	res := fx.Apply(hunter, &entity.Pickup{Type: entity.PickupKey})

	assert.Equal(t, now.Add(5*time.Second), frozenUntil)
	assert.Equal(t, hunter.Pos, blastAt)
	assert.Equal(t, 200.0, blastDamage)
	assert.Equal(t, 1, unlocked)
	assert.Equal(t, 4, res.Unlocked)
}

func TestTreasureAndHealth(t *testing.T) {
	now := time.Unix(0, 0)
	hunter := hunterAt(0, 0)
	hunter.Health = 80
	fx := DefaultEffects(now, random.NewSequence(0))

	res := fx.Apply(hunter, &entity.Pickup{Type: entity.PickupHealth})
	assert.Equal(t, 20.0, res.Healed)
	assert.Equal(t, 100.0, hunter.Health)

	fx.Apply(hunter, &entity.Pickup{Type: entity.PickupTreasureSmall})
	fx.Apply(hunter, &entity.Pickup{Type: entity.PickupTreasureLarge})
	assert.Equal(t, 100, hunter.Score)
	assert.Equal(t, 40, hunter.Currency)
}

func TestRollKillDropGate(t *testing.T) {
	_, ok := RollKillDrop(random.NewSequence(0.5), 0.35, KillTable())
	assert.False(t, ok)

	kind, ok := RollKillDrop(random.NewSequence(0.1, 0), 0.35, KillTable())
	assert.True(t, ok)
	assert.Equal(t, entity.PickupAmmo, kind)

	_, ok = RollKillDrop(random.NewSequence(0), 0, KillTable())
	assert.False(t, ok)
}

func TestBossWeaponSkipsCurrentAndPistol(t *testing.T) {
	for _, v := range []float64{0, 0.3, 0.6, 0.99} {
		kind, ok := BossWeapon(random.NewSequence(v), combat.WeaponRifle)
		require.True(t, ok)
		assert.NotEqual(t, combat.WeaponRifle, kind)
		assert.NotEqual(t, combat.WeaponPistol, kind)
	}
}

func TestWeaponDropsOnlyForLivingHunter(t *testing.T) {
	now := time.Unix(0, 0)
	drops := []*entity.WeaponDrop{{ID: "w", Weapon: combat.WeaponRailgun, Ammo: 12, Pos: geom.Vec2{X: 10}}}

	remaining, taken := CollectWeapons(Reach{Radius: 30}, now, drops, hordeAt("a", 10, 0))
	assert.Empty(t, taken)
	assert.Len(t, remaining, 1)

	hunter := hunterAt(10, 0)
	_, taken = CollectWeapons(Reach{Radius: 30}, now, remaining, hunter)
	require.Len(t, taken, 1)
	Equip(hunter, taken[0])
	assert.Equal(t, combat.WeaponRailgun, hunter.Weapon)
	assert.Equal(t, 12, hunter.Ammo[combat.WeaponRailgun])
}
