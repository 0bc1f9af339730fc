package stats

import "sort"

// Rarity tiers weight the upgrade offer lottery.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Weight returns the lottery weight of a tier.
func (r Rarity) Weight() float64 {
	switch r {
	case RarityCommon:
		return 60
	case RarityUncommon:
		return 25
	case RarityRare:
		return 12
	case RarityLegendary:
		return 3
	default:
		return 0
	}
}

// EffectKind tags the variant carried by an Effect.
type EffectKind uint8

const (
	EffectAdd EffectKind = iota
	EffectMul
	EffectHook
)

// Effect is one step of an upgrade applied per stack.
type Effect struct {
	Kind  EffectKind
	Stat  StatID
	Value float64
	Hook  HookKind
}

// Add returns an additive effect.
func Add(stat StatID, v float64) Effect { return Effect{Kind: EffectAdd, Stat: stat, Value: v} }

// Mul returns a multiplicative effect.
func Mul(stat StatID, v float64) Effect { return Effect{Kind: EffectMul, Stat: stat, Value: v} }

// Hook returns an event-hook effect.
func Hook(kind HookKind) Effect { return Effect{Kind: EffectHook, Hook: kind} }

func (e Effect) apply(b *Block) {
	switch e.Kind {
	case EffectAdd:
		b.add(e.Stat, e.Value)
	case EffectMul:
		b.mul(e.Stat, e.Value)
	case EffectHook:
		if int(e.Hook) < len(b.Hooks) {
			b.Hooks[e.Hook]++
		}
	}
}

// Upgrade is one entry of the catalog.
type Upgrade struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rarity      Rarity   `json:"rarity"`
	MaxStacks   int      `json:"maxStacks"`
	Effects     []Effect `json:"-"`
}

// Catalog indexes upgrades by id.
type Catalog struct {
	byID  map[string]Upgrade
	order []string
}

// NewCatalog builds a catalog preserving the given order.
func NewCatalog(upgrades ...Upgrade) *Catalog {
	c := &Catalog{byID: make(map[string]Upgrade, len(upgrades))}
	for _, u := range upgrades {
		if _, exists := c.byID[u.ID]; !exists {
			c.order = append(c.order, u.ID)
		}
		c.byID[u.ID] = u
	}
	return c
}

func (c *Catalog) Get(id string) (Upgrade, bool) {
	if c == nil {
		return Upgrade{}, false
	}
	u, ok := c.byID[id]
	return u, ok
}

// IDs returns the upgrade ids in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}

// Describe returns the public view of the given ids, skipping unknown ones.
func (c *Catalog) Describe(ids []string) []Upgrade {
	out := make([]Upgrade, 0, len(ids))
	for _, id := range ids {
		if u, ok := c.Get(id); ok {
			out = append(out, u)
		}
	}
	return out
}

// SortedIDs is IDs in lexical order.
func (c *Catalog) SortedIDs() []string {
	ids := c.IDs()
	sort.Strings(ids)
	return ids
}

var defaultCatalog = NewCatalog(
	Upgrade{ID: "damage_up", Name: "Hollow Points", Description: "+15% damage", Rarity: RarityCommon, MaxStacks: 5,
		Effects: []Effect{Mul(StatDamage, 1.15)}},
	Upgrade{ID: "rapid_fire", Name: "Hair Trigger", Description: "+12% fire rate", Rarity: RarityCommon, MaxStacks: 5,
		Effects: []Effect{Mul(StatFireRate, 1.12)}},
	Upgrade{ID: "velocity", Name: "Long Barrel", Description: "+15% bullet speed", Rarity: RarityCommon, MaxStacks: 4,
		Effects: []Effect{Mul(StatBulletSpeed, 1.15)}},
	Upgrade{ID: "fleet_foot", Name: "Fleet Foot", Description: "+8% move speed", Rarity: RarityCommon, MaxStacks: 4,
		Effects: []Effect{Mul(StatMoveSpeed, 1.08)}},
	Upgrade{ID: "big_rounds", Name: "Big Rounds", Description: "+25% bullet size", Rarity: RarityCommon, MaxStacks: 3,
		Effects: []Effect{Mul(StatBulletSize, 1.25)}},
	Upgrade{ID: "tight_grouping", Name: "Tight Grouping", Description: "-20% spread", Rarity: RarityCommon, MaxStacks: 3,
		Effects: []Effect{Mul(StatSpread, 0.8)}},
	Upgrade{ID: "scavenger", Name: "Scavenger", Description: "-15% ammo cost", Rarity: RarityCommon, MaxStacks: 3,
		Effects: []Effect{Mul(StatAmmoEfficiency, 0.85)}},
	Upgrade{ID: "vitality", Name: "Vitality", Description: "+20 max health", Rarity: RarityCommon, MaxStacks: 5,
		Effects: []Effect{Add(StatMaxHealth, 20)}},

	Upgrade{ID: "keen_eye", Name: "Keen Eye", Description: "+8% crit chance", Rarity: RarityUncommon, MaxStacks: 5,
		Effects: []Effect{Add(StatCritChance, 0.08)}},
	Upgrade{ID: "brutal", Name: "Brutal", Description: "+25% crit damage", Rarity: RarityUncommon, MaxStacks: 3,
		Effects: []Effect{Mul(StatCritMultiplier, 1.25)}},
	Upgrade{ID: "piercing", Name: "Piercing Rounds", Description: "+1 pierce", Rarity: RarityUncommon, MaxStacks: 3,
		Effects: []Effect{Add(StatPierce, 1)}},
	Upgrade{ID: "rubber_rounds", Name: "Rubber Rounds", Description: "+1 wall bounce", Rarity: RarityUncommon, MaxStacks: 3,
		Effects: []Effect{Add(StatBounce, 1)}},
	Upgrade{ID: "incendiary", Name: "Incendiary", Description: "20% chance to burn", Rarity: RarityUncommon, MaxStacks: 3,
		Effects: []Effect{Add(StatBurnChance, 0.2), Add(StatBurnDPS, 4)}},
	Upgrade{ID: "frost_rounds", Name: "Frost Rounds", Description: "20% chance to slow", Rarity: RarityUncommon, MaxStacks: 3,
		Effects: []Effect{Add(StatSlowChance, 0.2), Add(StatSlowAmount, 0.15)}},
	Upgrade{ID: "serrated", Name: "Serrated", Description: "20% chance to bleed", Rarity: RarityUncommon, MaxStacks: 3,
		Effects: []Effect{Add(StatBleedChance, 0.2), Add(StatBleedDPS, 3)}},
	Upgrade{ID: "quick_step", Name: "Quick Step", Description: "-15% dash cooldown", Rarity: RarityUncommon, MaxStacks: 3,
		Effects: []Effect{Add(StatDashCooldown, 0.15)}},
	Upgrade{ID: "magnetism", Name: "Magnetism", Description: "+60 pickup radius", Rarity: RarityUncommon, MaxStacks: 3,
		Effects: []Effect{Add(StatMagnetRange, 60)}},

	Upgrade{ID: "ricochet", Name: "Ricochet", Description: "+1 ricochet", Rarity: RarityRare, MaxStacks: 3,
		Effects: []Effect{Add(StatRicochet, 1)}},
	Upgrade{ID: "chain_lightning", Name: "Chain Lightning", Description: "+1 chain hop", Rarity: RarityRare, MaxStacks: 3,
		Effects: []Effect{Add(StatChain, 1)}},
	Upgrade{ID: "vampiric", Name: "Vampiric", Description: "+5% lifesteal", Rarity: RarityRare, MaxStacks: 3,
		Effects: []Effect{Add(StatLifesteal, 0.05)}},
	Upgrade{ID: "reload_on_kill", Name: "Trophy Reload", Description: "+2 ammo per kill", Rarity: RarityRare, MaxStacks: 3,
		Effects: []Effect{Add(StatReloadOnKill, 2)}},
	Upgrade{ID: "twin_shot", Name: "Twin Shot", Description: "fire an extra projectile", Rarity: RarityRare, MaxStacks: 2,
		Effects: []Effect{Hook(HookTwinShot)}},

	Upgrade{ID: "explosive_rounds", Name: "Explosive Rounds", Description: "hits detonate", Rarity: RarityLegendary, MaxStacks: 1,
		Effects: []Effect{Hook(HookExplosiveRounds)}},
	Upgrade{ID: "soul_harvest", Name: "Soul Harvest", Description: "kills heal you", Rarity: RarityLegendary, MaxStacks: 1,
		Effects: []Effect{Hook(HookSoulHarvest)}},
)

// DefaultCatalog returns the stock upgrade set.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}
