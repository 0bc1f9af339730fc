package combat

import (
	"context"

	"horde-hunt/server/logging"
)

const (
	// EventDamage is emitted when a hit, blast or status tick deals damage.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when an entity is killed.
	EventDefeat logging.EventType = "combat.defeat"
	// EventBossAbility is emitted when a boss casts an ability.
	EventBossAbility logging.EventType = "combat.boss_ability"
	// EventBossEnraged is emitted once per boss when it enrages.
	EventBossEnraged logging.EventType = "combat.boss_enraged"
)

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	Source       string  `json:"source,omitempty"`
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
	Crit         bool    `json:"crit,omitempty"`
	OverTime     bool    `json:"overTime,omitempty"`
}

// DefeatPayload describes the context for a fatal blow.
type DefeatPayload struct {
	Source string `json:"source,omitempty"`
	Score  int    `json:"score,omitempty"`
	XP     int    `json:"xp,omitempty"`
}

// BossAbilityPayload names the ability a boss used.
type BossAbilityPayload struct {
	Ability  string `json:"ability"`
	BossType string `json:"bossType"`
	Enraged  bool   `json:"enraged,omitempty"`
}

// Damage publishes a combat damage event for a single target. Damage is high
// volume and goes out at debug severity.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Defeat publishes a combat defeat event for the eliminated entity.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefeatPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// BossAbility publishes a boss cast.
func BossAbility(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BossAbilityPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBossAbility,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// BossEnraged publishes the one-shot enrage transition.
func BossEnraged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBossEnraged,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
