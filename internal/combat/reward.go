package combat

import (
	"errors"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/stats"
)

// ErrNotOffered is returned when a player picks an upgrade outside the offer.
var ErrNotOffered = errors.New("upgrade not offered")

// Bounty is what a kill of one entity kind pays out.
type Bounty struct {
	Score    int
	XP       int
	Currency int
}

// Rewards is the progression tuning consumed on kills and level-ups.
type Rewards struct {
	Bounties        map[entity.Kind]Bounty
	BaseXP          int
	Growth          float64
	OfferSize       int
	Catalog         *stats.Catalog
	SoulHarvestHeal float64
}

// RewardsFrom reads the progression tuning from a room config.
func RewardsFrom(cfg config.Config) Rewards {
	p := cfg.Progression
	return Rewards{
		Bounties: map[entity.Kind]Bounty{
			entity.KindPlayer:  {Score: cfg.Horde.KillScore, XP: p.HordeKillXP, Currency: p.KillCurrency * 2},
			entity.KindHostile: {Score: p.KillScore, XP: p.KillXP, Currency: p.KillCurrency},
			entity.KindMinion:  {Score: p.KillScore / 2, XP: 1, Currency: 0},
			entity.KindBoss:    {Score: cfg.Boss.KillScore, XP: cfg.Boss.KillXP, Currency: p.KillCurrency * 25},
		},
		BaseXP:          p.BaseXP,
		Growth:          p.Growth,
		OfferSize:       p.OfferSize,
		Catalog:         stats.DefaultCatalog(),
		SoulHarvestHeal: 4,
	}
}

// RewardResult summarises what a kill paid.
type RewardResult struct {
	Victim  entity.Kind
	Score   int
	XP      int
	Levels  int
	Offered bool
	Refund  int
	Healed  float64
}

// Reward pays the owner for one kill: score, currency, experience, level-up
// offers, reload-on-kill refunds and kill hooks.
func Reward(owner *entity.Player, victim entity.Kind, rw Rewards, src random.Source) RewardResult {
	res := RewardResult{Victim: victim}
	if owner == nil {
		return res
	}
	bounty := rw.Bounties[victim]
	owner.Kills++
	owner.Score += bounty.Score
	owner.Currency += bounty.Currency
	res.Score = bounty.Score
	res.XP = bounty.XP

	res.Levels = owner.Progress.Gain(bounty.XP, rw.BaseXP, rw.Growth)
	res.Offered = QueueOffers(owner, res.Levels, rw, src)

	if owner.Stats.ReloadOnKill > 0 {
		if weapon, ok := LookupWeapon(owner.Weapon); ok && !weapon.Unlimited() {
			if owner.Ammo == nil {
				owner.Ammo = make(map[string]int)
			}
			owner.Ammo[weapon.Kind] += owner.Stats.ReloadOnKill
			res.Refund = owner.Stats.ReloadOnKill
		}
	}
	if stacks := owner.Stats.HookStacks(stats.HookSoulHarvest); stacks > 0 {
		res.Healed = owner.Heal(rw.SoulHarvestHeal * float64(stacks))
	}
	return res
}

// QueueOffers turns crossed levels into upgrade offers. Only one offer is
// open at a time; further level-ups wait in PendingOffers. It reports whether
// a new offer was opened.
func QueueOffers(p *entity.Player, levels int, rw Rewards, src random.Source) bool {
	opened := false
	for i := 0; i < levels; i++ {
		if len(p.Offer) > 0 {
			p.PendingOffers++
			continue
		}
		p.Offer = stats.RollChoices(src, p.Upgrades, rw.Catalog, rw.OfferSize)
		if len(p.Offer) == 0 {
			return opened
		}
		opened = true
	}
	return opened
}

// ChooseUpgrade applies an offered upgrade, refreshes the stat block and opens
// the next queued offer. baseHealth is the role's unmodified max health.
func ChooseUpgrade(p *entity.Player, id string, baseHealth float64, rw Rewards, src random.Source) error {
	offered := false
	for _, choice := range p.Offer {
		if choice == id {
			offered = true
			break
		}
	}
	if !offered {
		return ErrNotOffered
	}
	p.Upgrades = p.Upgrades.Add(id)
	RefreshStats(p, baseHealth, rw.Catalog)

	p.Offer = nil
	if p.PendingOffers > 0 {
		p.PendingOffers--
		p.Offer = stats.RollChoices(src, p.Upgrades, rw.Catalog, rw.OfferSize)
	}
	return nil
}

// RefreshStats recomputes the stat block and applies the max-health bonus,
// keeping the current health ratio.
func RefreshStats(p *entity.Player, baseHealth float64, catalog *stats.Catalog) {
	p.Stats = stats.Aggregate(p.Upgrades, catalog)
	max := baseHealth + p.Stats.MaxHealth
	if max <= 0 || max == p.MaxHealth {
		return
	}
	gained := max - p.MaxHealth
	p.MaxHealth = max
	if gained > 0 && p.Alive {
		p.Health += gained
	}
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
}
