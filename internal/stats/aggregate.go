package stats

import (
	"math"

	"horde-hunt/server/internal/random"
)

// Stack counts how many times an upgrade was taken.
type Stack struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Stacks keeps upgrades in acquisition order so aggregation is reproducible.
type Stacks []Stack

// Count returns the stack count for id.
func (s Stacks) Count(id string) int {
	for _, st := range s {
		if st.ID == id {
			return st.Count
		}
	}
	return 0
}

// Add increments id, appending it when first taken.
func (s Stacks) Add(id string) Stacks {
	for i := range s {
		if s[i].ID == id {
			s[i].Count++
			return s
		}
	}
	return append(s, Stack{ID: id, Count: 1})
}

// Aggregate folds every stack over Base in acquisition order. Unknown ids are
// ignored and counts are capped at the upgrade's MaxStacks.
func Aggregate(stacks Stacks, catalog *Catalog) Block {
	block := Base()
	for _, st := range stacks {
		upgrade, ok := catalog.Get(st.ID)
		if !ok {
			continue
		}
		count := st.Count
		if upgrade.MaxStacks > 0 && count > upgrade.MaxStacks {
			count = upgrade.MaxStacks
		}
		for n := 0; n < count; n++ {
			for _, effect := range upgrade.Effects {
				effect.apply(&block)
			}
		}
	}
	block.clampRanges()
	return block
}

// RollChoices draws up to n distinct upgrade ids weighted by rarity, skipping
// upgrades already at their stack limit.
func RollChoices(src random.Source, stacks Stacks, catalog *Catalog, n int) []string {
	table := random.NewWeighted[string]()
	for _, id := range catalog.IDs() {
		upgrade, _ := catalog.Get(id)
		if upgrade.MaxStacks > 0 && stacks.Count(id) >= upgrade.MaxStacks {
			continue
		}
		table.Add(id, upgrade.Rarity.Weight())
	}
	return table.PickDistinct(src, n)
}

// Progress tracks level and experience toward the next level.
type Progress struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// XPToNext returns the experience required to leave level.
func XPToNext(level, base int, growth float64) int {
	if level < 1 {
		level = 1
	}
	need := int(math.Round(float64(base) * math.Pow(growth, float64(level-1))))
	if need < 1 {
		need = 1
	}
	return need
}

// Gain adds experience and returns how many levels were crossed.
func (p *Progress) Gain(amount, base int, growth float64) int {
	if amount <= 0 {
		return 0
	}
	if p.Level < 1 {
		p.Level = 1
	}
	p.XP += amount
	gained := 0
	for {
		need := XPToNext(p.Level, base, growth)
		if p.XP < need {
			return gained
		}
		p.XP -= need
		p.Level++
		gained++
	}
}
