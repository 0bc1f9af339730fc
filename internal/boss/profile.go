package boss

import (
	"time"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
)

// Ability names a scripted boss move.
type Ability string

const (
	AbilitySummon      Ability = "summon"
	AbilityTeleport    Ability = "teleport"
	AbilityPoisonField Ability = "poison_field"
	AbilityCharge      Ability = "charge"
	AbilityGroundSlam  Ability = "ground_slam"
	AbilityPhase       Ability = "phase"
	AbilityClone       Ability = "clone"
	AbilityLifeDrain   Ability = "life_drain"
)

// Gate is the two-step trigger of an ability: the cooldown must have elapsed
// and then a per-tick roll must pass.
type Gate struct {
	Ability  Ability
	Cooldown time.Duration
	Chance   float64
}

// Profile is the base line of one boss type.
type Profile struct {
	Health float64
	Speed  float64
	Damage float64
	Radius float64
	Gates  []Gate
}

var profiles = map[entity.BossType]Profile{
	entity.BossNecromancer: {Health: 1400, Speed: 80, Damage: 18, Radius: 34, Gates: []Gate{
		{Ability: AbilitySummon, Cooldown: 14 * time.Second, Chance: 0.04},
		{Ability: AbilityTeleport, Cooldown: 9 * time.Second, Chance: 0.05},
		{Ability: AbilityPoisonField, Cooldown: 11 * time.Second, Chance: 0.05},
	}},
	entity.BossJuggernaut: {Health: 2200, Speed: 70, Damage: 30, Radius: 42, Gates: []Gate{
		{Ability: AbilityCharge, Cooldown: 7 * time.Second, Chance: 0.06},
		{Ability: AbilityGroundSlam, Cooldown: 8 * time.Second, Chance: 0.05},
	}},
	entity.BossWraith: {Health: 1200, Speed: 115, Damage: 16, Radius: 30, Gates: []Gate{
		{Ability: AbilityPhase, Cooldown: 12 * time.Second, Chance: 0.04},
		{Ability: AbilityClone, Cooldown: 16 * time.Second, Chance: 0.04},
		{Ability: AbilityLifeDrain, Cooldown: 10 * time.Second, Chance: 0.05},
	}},
}

// Types lists the boss types in a stable order.
var Types = []entity.BossType{entity.BossNecromancer, entity.BossJuggernaut, entity.BossWraith}

// ProfileOf returns the profile of t. Unknown types act as necromancers.
func ProfileOf(t entity.BossType) Profile {
	if p, ok := profiles[t]; ok {
		return p
	}
	return profiles[entity.BossNecromancer]
}

// Ability magnitudes.
const (
	summonCount    = 4
	summonLifetime = 25 * time.Second
	minionHealth   = 60
	minionSpeed    = 120
	minionDamage   = 8
	minionRadius   = 12

	teleportDistance = 180

	fieldRadius   = 110
	fieldDPS      = 8
	fieldLifetime = 6 * time.Second

	chargeDuration   = 1200 * time.Millisecond
	chargeMultiplier = 3

	slamRadius = 170
	slamDamage = 25
	slamStun   = 800 * time.Millisecond

	phaseDuration = 3 * time.Second

	cloneCount    = 2
	cloneLifetime = 10 * time.Second
	cloneHealth   = 40

	drainDuration = 3 * time.Second
	drainRange    = 260
	drainInterval = 500 * time.Millisecond
	drainDamage   = 6

	castTime = 600 * time.Millisecond
)

// Tuning is the room level boss tuning.
type Tuning struct {
	Enabled          bool
	MaxActive        int
	FirstSpawn       time.Duration
	Cooldown         time.Duration
	Announce         time.Duration
	SpawnDuration    time.Duration
	EnrageThreshold  float64
	EnrageSpeedMul   float64
	EnrageDamageMul  float64
	HealthMultiplier float64
	GuaranteedDrops  int
	BonusDrops       int
	AttackCooldown   time.Duration
	Knockback        float64
}

// TuningFrom reads the boss tuning from a room config.
func TuningFrom(cfg config.Config) Tuning {
	return Tuning{
		Enabled:          cfg.Boss.Enabled,
		MaxActive:        cfg.Boss.MaxActive,
		FirstSpawn:       config.Millis(cfg.Boss.FirstSpawnMS),
		Cooldown:         config.Millis(cfg.Boss.SpawnCooldownMS),
		Announce:         config.Millis(cfg.Boss.AnnounceMS),
		SpawnDuration:    config.Millis(cfg.Boss.SpawnDurationMS),
		EnrageThreshold:  cfg.Boss.EnrageThreshold,
		EnrageSpeedMul:   cfg.Boss.EnrageSpeedMul,
		EnrageDamageMul:  cfg.Boss.EnrageDamageMul,
		HealthMultiplier: cfg.Boss.HealthMultiplier,
		GuaranteedDrops:  cfg.Boss.GuaranteedDrops,
		BonusDrops:       cfg.Boss.BonusDrops,
		AttackCooldown:   1200 * time.Millisecond,
		Knockback:        cfg.AI.Knockback * 1.5,
	}
}
