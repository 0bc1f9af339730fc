package stats

// StatID enumerates the numeric fields of a Block.
type StatID uint8

const (
	StatDamage StatID = iota
	StatFireRate
	StatBulletSize
	StatSpread
	StatBulletSpeed
	StatMoveSpeed
	StatAmmoEfficiency
	StatCritMultiplier
	StatCritChance
	StatPierce
	StatBounce
	StatRicochet
	StatChain
	StatBurnChance
	StatBurnDPS
	StatSlowChance
	StatSlowAmount
	StatBleedChance
	StatBleedDPS
	StatLifesteal
	StatReloadOnKill
	StatMaxHealth
	StatDashCooldown
	StatMagnetRange

	StatCount
)

// HookKind is an upgrade that registers a side effect instead of changing a
// number. Combat dispatches on it at shoot, hit, or kill time.
type HookKind uint8

const (
	HookNone HookKind = iota
	// HookTwinShot fires one extra projectile per stack.
	HookTwinShot
	// HookExplosiveRounds detonates a small blast at every hit.
	HookExplosiveRounds
	// HookSoulHarvest heals the hunter on every kill.
	HookSoulHarvest
)

func (h HookKind) String() string {
	switch h {
	case HookTwinShot:
		return "twin_shot"
	case HookExplosiveRounds:
		return "explosive_rounds"
	case HookSoulHarvest:
		return "soul_harvest"
	default:
		return "none"
	}
}

// Block is the aggregated stat snapshot of one player. Multiplicative fields
// start at 1 and additive fields at 0.
type Block struct {
	Damage         float64 `json:"damage"`
	FireRate       float64 `json:"fireRate"`
	BulletSize     float64 `json:"bulletSize"`
	Spread         float64 `json:"spread"`
	BulletSpeed    float64 `json:"bulletSpeed"`
	MoveSpeed      float64 `json:"moveSpeed"`
	AmmoEfficiency float64 `json:"ammoEfficiency"`
	CritMultiplier float64 `json:"critMultiplier"`

	CritChance   float64 `json:"critChance"`
	Pierce       int     `json:"pierce"`
	Bounce       int     `json:"bounce"`
	Ricochet     int     `json:"ricochet"`
	Chain        int     `json:"chain"`
	BurnChance   float64 `json:"burnChance"`
	BurnDPS      float64 `json:"burnDps"`
	SlowChance   float64 `json:"slowChance"`
	SlowAmount   float64 `json:"slowAmount"`
	BleedChance  float64 `json:"bleedChance"`
	BleedDPS     float64 `json:"bleedDps"`
	Lifesteal    float64 `json:"lifesteal"`
	ReloadOnKill int     `json:"reloadOnKill"`
	MaxHealth    float64 `json:"maxHealth"`
	DashCooldown float64 `json:"dashCooldown"`
	MagnetRange  float64 `json:"magnetRange"`

	Hooks [4]int `json:"-"`
}

// Base returns the identity block.
func Base() Block {
	return Block{
		Damage:         1,
		FireRate:       1,
		BulletSize:     1,
		Spread:         1,
		BulletSpeed:    1,
		MoveSpeed:      1,
		AmmoEfficiency: 1,
		CritMultiplier: 1,
	}
}

// HookStacks reports how many stacks of a hook the block carries.
func (b Block) HookStacks(kind HookKind) int {
	if int(kind) >= len(b.Hooks) {
		return 0
	}
	return b.Hooks[kind]
}

// DashCooldownFactor converts the additive reduction into a multiplier.
func (b Block) DashCooldownFactor() float64 {
	return clamp(1-b.DashCooldown, 0.2, 1)
}

func (b *Block) add(id StatID, v float64) {
	switch id {
	case StatDamage:
		b.Damage += v
	case StatFireRate:
		b.FireRate += v
	case StatBulletSize:
		b.BulletSize += v
	case StatSpread:
		b.Spread += v
	case StatBulletSpeed:
		b.BulletSpeed += v
	case StatMoveSpeed:
		b.MoveSpeed += v
	case StatAmmoEfficiency:
		b.AmmoEfficiency += v
	case StatCritMultiplier:
		b.CritMultiplier += v
	case StatCritChance:
		b.CritChance += v
	case StatPierce:
		b.Pierce += int(v)
	case StatBounce:
		b.Bounce += int(v)
	case StatRicochet:
		b.Ricochet += int(v)
	case StatChain:
		b.Chain += int(v)
	case StatBurnChance:
		b.BurnChance += v
	case StatBurnDPS:
		b.BurnDPS += v
	case StatSlowChance:
		b.SlowChance += v
	case StatSlowAmount:
		b.SlowAmount += v
	case StatBleedChance:
		b.BleedChance += v
	case StatBleedDPS:
		b.BleedDPS += v
	case StatLifesteal:
		b.Lifesteal += v
	case StatReloadOnKill:
		b.ReloadOnKill += int(v)
	case StatMaxHealth:
		b.MaxHealth += v
	case StatDashCooldown:
		b.DashCooldown += v
	case StatMagnetRange:
		b.MagnetRange += v
	}
}

func (b *Block) mul(id StatID, v float64) {
	switch id {
	case StatDamage:
		b.Damage *= v
	case StatFireRate:
		b.FireRate *= v
	case StatBulletSize:
		b.BulletSize *= v
	case StatSpread:
		b.Spread *= v
	case StatBulletSpeed:
		b.BulletSpeed *= v
	case StatMoveSpeed:
		b.MoveSpeed *= v
	case StatAmmoEfficiency:
		b.AmmoEfficiency *= v
	case StatCritMultiplier:
		b.CritMultiplier *= v
	default:
		// Counters and chances only stack additively.
		b.add(id, v)
	}
}

// clampRanges keeps chances within [0,1] and multipliers positive.
func (b *Block) clampRanges() {
	b.CritChance = clamp(b.CritChance, 0, 1)
	b.BurnChance = clamp(b.BurnChance, 0, 1)
	b.SlowChance = clamp(b.SlowChance, 0, 1)
	b.BleedChance = clamp(b.BleedChance, 0, 1)
	b.SlowAmount = clamp(b.SlowAmount, 0, 0.9)
	b.Lifesteal = clamp(b.Lifesteal, 0, 1)
	b.AmmoEfficiency = clamp(b.AmmoEfficiency, 0.1, 10)
	b.FireRate = clamp(b.FireRate, 0.1, 10)
	b.Spread = clamp(b.Spread, 0, 10)
	if b.Pierce < 0 {
		b.Pierce = 0
	}
	if b.Bounce < 0 {
		b.Bounce = 0
	}
	if b.Ricochet < 0 {
		b.Ricochet = 0
	}
	if b.Chain < 0 {
		b.Chain = 0
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
