package economy

import (
	"context"

	"horde-hunt/server/logging"
)

const (
	// EventPickupCollected is emitted whenever a floor pickup is consumed.
	EventPickupCollected logging.EventType = "economy.pickup_collected"
	// EventPurchase is emitted for a successful shop purchase.
	EventPurchase logging.EventType = "economy.purchase"
	// EventPurchaseRejected is emitted when a purchase cannot be completed.
	EventPurchaseRejected logging.EventType = "economy.purchase_rejected"
	// EventUpgradeChosen is emitted when a player picks an offered upgrade.
	EventUpgradeChosen logging.EventType = "economy.upgrade_chosen"
	// EventLevelUp is emitted when a player crosses one or more levels.
	EventLevelUp logging.EventType = "economy.level_up"
)

// PickupCollectedPayload describes a consumed pickup.
type PickupCollectedPayload struct {
	PickupType string `json:"pickupType"`
	Score      int    `json:"score,omitempty"`
	Currency   int    `json:"currency,omitempty"`
	Weapon     string `json:"weapon,omitempty"`
	Ammo       int    `json:"ammo,omitempty"`
}

// PurchasePayload describes a shop transaction.
type PurchasePayload struct {
	Item    string `json:"item"`
	Price   int    `json:"price"`
	Balance int    `json:"balance"`
	Reason  string `json:"reason,omitempty"`
}

// UpgradeChosenPayload describes an applied upgrade.
type UpgradeChosenPayload struct {
	Upgrade string `json:"upgrade"`
	Stacks  int    `json:"stacks"`
}

// LevelUpPayload describes a level change.
type LevelUpPayload struct {
	Level  int `json:"level"`
	Levels int `json:"levels"`
}

// PickupCollected publishes a pickup event.
func PickupCollected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PickupCollectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPickupCollected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Purchase publishes a completed purchase.
func Purchase(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PurchasePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPurchase,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// PurchaseRejected publishes a refused purchase.
func PurchaseRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PurchasePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPurchaseRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// UpgradeChosen publishes an applied upgrade.
func UpgradeChosen(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UpgradeChosenPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventUpgradeChosen,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// LevelUp publishes a level change.
func LevelUp(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LevelUpPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventLevelUp,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
