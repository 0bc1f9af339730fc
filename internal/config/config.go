package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig reports a configuration that fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the live rule set of a single room. Every field is addressable by
// the override endpoint through its JSON name.
type Config struct {
	Seed        string            `json:"seed"`
	Arena       ArenaConfig       `json:"arena"`
	Tick        TickConfig        `json:"tick"`
	Round       RoundConfig       `json:"round"`
	Map         MapConfig         `json:"map"`
	Hazards     HazardConfig      `json:"hazards"`
	Hunter      HunterConfig      `json:"hunter"`
	Horde       HordeConfig       `json:"horde"`
	AI          AIConfig          `json:"ai"`
	Boss        BossConfig        `json:"boss"`
	Pickups     PickupConfig      `json:"pickups"`
	Loot        LootConfig        `json:"loot"`
	Progression ProgressionConfig `json:"progression"`
	Chat        ChatConfig        `json:"chat"`
}

type ArenaConfig struct {
	Width    float64 `json:"width" jsonschema:"minimum=320"`
	Height   float64 `json:"height" jsonschema:"minimum=320"`
	TileSize float64 `json:"tileSize" jsonschema:"minimum=8"`
	Theme    string  `json:"theme" jsonschema:"enum=crypt,enum=sewer,enum=lab"`
}

type TickConfig struct {
	IntervalMS         int     `json:"intervalMs" jsonschema:"minimum=5"`
	PickupIntervalMS   int     `json:"pickupIntervalMs" jsonschema:"minimum=50"`
	HeartbeatTimeoutMS int     `json:"heartbeatTimeoutMs" jsonschema:"minimum=1000"`
	BudgetWarnRatio    float64 `json:"budgetWarnRatio"`
}

type RoundConfig struct {
	Seconds      int `json:"seconds"`
	BreakSeconds int `json:"breakSeconds"`
}

type MapConfig struct {
	CellSize         int     `json:"cellSize" jsonschema:"minimum=6"`
	RoomChance       float64 `json:"roomChance"`
	ShortcutRatio    float64 `json:"shortcutRatio"`
	CorridorMinWidth int     `json:"corridorMinWidth"`
	CorridorMaxWidth int     `json:"corridorMaxWidth"`
	PropDensity      float64 `json:"propDensity"`
}

type HazardConfig struct {
	WaterFrequency   float64 `json:"waterFrequency"`
	PitFrequency     float64 `json:"pitFrequency"`
	SpikeFrequency   float64 `json:"spikeFrequency"`
	PoisonFrequency  float64 `json:"poisonFrequency"`
	WaterSlow        float64 `json:"waterSlow"`
	PoisonSlow       float64 `json:"poisonSlow"`
	SpikeDamage      float64 `json:"spikeDamage"`
	PoisonDamage     float64 `json:"poisonDamage"`
	DamageIntervalMS int     `json:"damageIntervalMs"`
}

type HunterConfig struct {
	MaxHealth        float64 `json:"maxHealth"`
	Speed            float64 `json:"speed"`
	Radius           float64 `json:"radius"`
	RespawnDelayMS   int     `json:"respawnDelayMs"`
	RespawnShieldMS  int     `json:"respawnShieldMs"`
	StartWeapon      string  `json:"startWeapon"`
	DashMultiplier   float64 `json:"dashMultiplier"`
	DashDurationMS   int     `json:"dashDurationMs"`
	DashCooldownMS   int     `json:"dashCooldownMs"`
	MeleeDamage      float64 `json:"meleeDamage"`
	MeleeRange       float64 `json:"meleeRange"`
	MeleeCooldownMS  int     `json:"meleeCooldownMs"`
	MeleeKnockback   float64 `json:"meleeKnockback"`
	BoostMultiplier  float64 `json:"boostMultiplier"`
	CollectRadius    float64 `json:"collectRadius"`
	MagnetRadius     float64 `json:"magnetRadius"`
	StartingCurrency int     `json:"startingCurrency"`
}

type HordeConfig struct {
	Speed            float64 `json:"speed"`
	Radius           float64 `json:"radius"`
	BaseHealth       float64 `json:"baseHealth"`
	RespawnDelayMS   int     `json:"respawnDelayMs"`
	ContactDamage    float64 `json:"contactDamage"`
	AttackRange      float64 `json:"attackRange"`
	AttackCooldownMS int     `json:"attackCooldownMs"`
	KillScore        int     `json:"killScore"`
}

type AIConfig struct {
	MaxCount         int     `json:"maxCount"`
	SpawnCooldownMS  int     `json:"spawnCooldownMs"`
	DetectionRadius  float64 `json:"detectionRadius"`
	ChaseRadius      float64 `json:"chaseRadius"`
	AttackRange      float64 `json:"attackRange"`
	AttackCooldownMS int     `json:"attackCooldownMs"`
	ContactDamage    float64 `json:"contactDamage"`
	Knockback        float64 `json:"knockback"`
	BaseSpeed        float64 `json:"baseSpeed"`
	BaseHealth       float64 `json:"baseHealth"`
	Radius           float64 `json:"radius"`
	SpawnMinDistance float64 `json:"spawnMinDistance"`
	SpawnMaxDistance float64 `json:"spawnMaxDistance"`
	LOSStep          float64 `json:"losStep"`
	GlobCooldownMS   int     `json:"globCooldownMs"`
	GlobRange        float64 `json:"globRange"`
	GlobDamage       float64 `json:"globDamage"`
	GlobSpeed        float64 `json:"globSpeed"`
}

type BossConfig struct {
	Enabled          bool    `json:"enabled"`
	MaxActive        int     `json:"maxActive"`
	FirstSpawnMS     int     `json:"firstSpawnMs"`
	SpawnCooldownMS  int     `json:"spawnCooldownMs"`
	AnnounceMS       int     `json:"announceMs"`
	SpawnDurationMS  int     `json:"spawnDurationMs"`
	EnrageThreshold  float64 `json:"enrageThreshold"`
	EnrageSpeedMul   float64 `json:"enrageSpeedMul"`
	EnrageDamageMul  float64 `json:"enrageDamageMul"`
	HealthMultiplier float64 `json:"healthMultiplier"`
	GuaranteedDrops  int     `json:"guaranteedDrops"`
	BonusDrops       int     `json:"bonusDrops"`
	KillScore        int     `json:"killScore"`
	KillXP           int     `json:"killXp"`
}

type PickupConfig struct {
	MaxTotal   int            `json:"maxTotal"`
	MinSpacing float64        `json:"minSpacing"`
	Caps       map[string]int `json:"caps"`
}

type LootConfig struct {
	DropChance float64 `json:"dropChance"`
}

type ProgressionConfig struct {
	BaseXP       int     `json:"baseXp"`
	Growth       float64 `json:"growth"`
	KillXP       int     `json:"killXp"`
	HordeKillXP  int     `json:"hordeKillXp"`
	KillScore    int     `json:"killScore"`
	KillCurrency int     `json:"killCurrency"`
	OfferSize    int     `json:"offerSize"`
}

type ChatConfig struct {
	Enabled   bool `json:"enabled"`
	MaxLength int  `json:"maxLength"`
}

// Default returns the stock rule set.
func Default() Config {
	return Config{
		Seed: "",
		Arena: ArenaConfig{
			Width:    2400,
			Height:   1800,
			TileSize: 40,
			Theme:    "crypt",
		},
		Tick: TickConfig{
			IntervalMS:         50,
			PickupIntervalMS:   2500,
			HeartbeatTimeoutMS: 15000,
			BudgetWarnRatio:    1.0,
		},
		Round: RoundConfig{Seconds: 300, BreakSeconds: 5},
		Map: MapConfig{
			CellSize:         15,
			RoomChance:       0.85,
			ShortcutRatio:    0.25,
			CorridorMinWidth: 2,
			CorridorMaxWidth: 4,
			PropDensity:      0.02,
		},
		Hazards: HazardConfig{
			WaterFrequency:   0.35,
			PitFrequency:     0.2,
			SpikeFrequency:   0.25,
			PoisonFrequency:  0.2,
			WaterSlow:        0.6,
			PoisonSlow:       0.4,
			SpikeDamage:      10,
			PoisonDamage:     5,
			DamageIntervalMS: 1000,
		},
		Hunter: HunterConfig{
			MaxHealth:        100,
			Speed:            210,
			Radius:           16,
			RespawnDelayMS:   3000,
			RespawnShieldMS:  2000,
			StartWeapon:      "pistol",
			DashMultiplier:   2.6,
			DashDurationMS:   180,
			DashCooldownMS:   1400,
			MeleeDamage:      25,
			MeleeRange:       56,
			MeleeCooldownMS:  450,
			MeleeKnockback:   30,
			BoostMultiplier:  1.5,
			CollectRadius:    30,
			MagnetRadius:     140,
			StartingCurrency: 0,
		},
		Horde: HordeConfig{
			Speed:            140,
			Radius:           14,
			BaseHealth:       60,
			RespawnDelayMS:   3000,
			ContactDamage:    12,
			AttackRange:      34,
			AttackCooldownMS: 800,
			KillScore:        25,
		},
		AI: AIConfig{
			MaxCount:         14,
			SpawnCooldownMS:  3500,
			DetectionRadius:  360,
			ChaseRadius:      560,
			AttackRange:      30,
			AttackCooldownMS: 1000,
			ContactDamage:    8,
			Knockback:        26,
			BaseSpeed:        95,
			BaseHealth:       40,
			Radius:           14,
			SpawnMinDistance: 320,
			SpawnMaxDistance: 1000,
			LOSStep:          16,
			GlobCooldownMS:   2200,
			GlobRange:        300,
			GlobDamage:       7,
			GlobSpeed:        260,
		},
		Boss: BossConfig{
			Enabled:          true,
			MaxActive:        1,
			FirstSpawnMS:     60000,
			SpawnCooldownMS:  90000,
			AnnounceMS:       5000,
			SpawnDurationMS:  1500,
			EnrageThreshold:  0.3,
			EnrageSpeedMul:   1.5,
			EnrageDamageMul:  1.5,
			HealthMultiplier: 1,
			GuaranteedDrops:  3,
			BonusDrops:       4,
			KillScore:        500,
			KillXP:           60,
		},
		Pickups: PickupConfig{
			MaxTotal:   12,
			MinSpacing: 120,
			Caps: map[string]int{
				"health":         3,
				"speed":          1,
				"ammo":           3,
				"weapon":         1,
				"shield":         1,
				"magnet":         1,
				"freeze":         1,
				"blast":          1,
				"treasure_small": 2,
				"treasure_large": 1,
				"key":            1,
			},
		},
		Loot: LootConfig{DropChance: 0.35},
		Progression: ProgressionConfig{
			BaseXP:       10,
			Growth:       1.15,
			KillXP:       3,
			HordeKillXP:  6,
			KillScore:    10,
			KillCurrency: 2,
			OfferSize:    3,
		},
		Chat: ChatConfig{Enabled: true, MaxLength: 140},
	}
}

// Validate rejects values the simulation cannot run with.
func (c Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.Arena.TileSize >= 8, "arena.tileSize must be >= 8")
	check(c.Arena.Width >= c.Arena.TileSize*8, "arena.width must hold at least 8 tiles")
	check(c.Arena.Height >= c.Arena.TileSize*8, "arena.height must hold at least 8 tiles")
	check(c.Tick.IntervalMS >= 5, "tick.intervalMs must be >= 5")
	check(c.Tick.PickupIntervalMS >= 50, "tick.pickupIntervalMs must be >= 50")
	check(c.Tick.HeartbeatTimeoutMS >= 1000, "tick.heartbeatTimeoutMs must be >= 1000")
	check(c.Round.Seconds >= 0, "round.seconds must be >= 0")
	check(c.Map.CellSize >= 6, "map.cellSize must be >= 6")
	check(c.Map.RoomChance >= 0 && c.Map.RoomChance <= 1, "map.roomChance must be within [0,1]")
	check(c.Map.CorridorMinWidth >= 1 && c.Map.CorridorMaxWidth >= c.Map.CorridorMinWidth,
		"map corridor widths must satisfy 1 <= min <= max")
	check(c.Hazards.WaterSlow > 0 && c.Hazards.WaterSlow <= 1, "hazards.waterSlow must be within (0,1]")
	check(c.Hazards.PoisonSlow > 0 && c.Hazards.PoisonSlow <= 1, "hazards.poisonSlow must be within (0,1]")
	check(c.Hazards.DamageIntervalMS > 0, "hazards.damageIntervalMs must be > 0")
	check(c.Hunter.MaxHealth > 0, "hunter.maxHealth must be > 0")
	check(c.Hunter.Radius > 0 && c.Horde.Radius > 0 && c.AI.Radius > 0, "entity radii must be > 0")
	check(c.AI.ChaseRadius >= c.AI.DetectionRadius, "ai.chaseRadius must be >= ai.detectionRadius")
	check(c.AI.MaxCount >= 0, "ai.maxCount must be >= 0")
	check(c.Boss.MaxActive >= 0, "boss.maxActive must be >= 0")
	check(c.Boss.EnrageThreshold >= 0 && c.Boss.EnrageThreshold < 1, "boss.enrageThreshold must be within [0,1)")
	check(c.Pickups.MaxTotal >= 0, "pickups.maxTotal must be >= 0")
	for name, limit := range c.Pickups.Caps {
		check(limit >= 0, "pickups.caps.%s must be >= 0", name)
	}
	check(c.Loot.DropChance >= 0 && c.Loot.DropChance <= 1, "loot.dropChance must be within [0,1]")
	check(c.Progression.BaseXP > 0 && c.Progression.Growth >= 1, "progression xp curve must be increasing")
	check(c.Progression.OfferSize > 0, "progression.offerSize must be > 0")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Derived bundles the values computed from a config that the room loop uses
// directly.
type Derived struct {
	TickInterval     time.Duration
	PickupInterval   time.Duration
	HeartbeatTimeout time.Duration
	TilesWide        int
	TilesHigh        int
	RoundLength      time.Duration
}

// Derived computes the tick intervals and tile grid dimensions.
func (c Config) Derived() Derived {
	return Derived{
		TickInterval:     Millis(c.Tick.IntervalMS),
		PickupInterval:   Millis(c.Tick.PickupIntervalMS),
		HeartbeatTimeout: Millis(c.Tick.HeartbeatTimeoutMS),
		TilesWide:        int(c.Arena.Width / c.Arena.TileSize),
		TilesHigh:        int(c.Arena.Height / c.Arena.TileSize),
		RoundLength:      time.Duration(c.Round.Seconds) * time.Second,
	}
}

// MapSignature captures the fields that force a map regeneration when changed.
func (c Config) MapSignature() string {
	return fmt.Sprintf("%s|%.1f|%.1f|%.1f|%s|%+v|%+v", c.Seed, c.Arena.Width, c.Arena.Height,
		c.Arena.TileSize, c.Arena.Theme, c.Map, c.hazardLayout())
}

func (c Config) hazardLayout() [4]float64 {
	return [4]float64{c.Hazards.WaterFrequency, c.Hazards.PitFrequency, c.Hazards.SpikeFrequency, c.Hazards.PoisonFrequency}
}

// Clone returns a deep copy so callers can mutate maps safely.
func (c Config) Clone() Config {
	cloned := c
	if c.Pickups.Caps != nil {
		cloned.Pickups.Caps = make(map[string]int, len(c.Pickups.Caps))
		for k, v := range c.Pickups.Caps {
			cloned.Pickups.Caps[k] = v
		}
	}
	return cloned
}

// Millis converts integer milliseconds into a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
