package simulation

import (
	"context"

	"horde-hunt/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when a room tick exceeds its interval.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventMapGenerated is emitted whenever a room builds a new map.
	EventMapGenerated logging.EventType = "simulation.map_generated"
	// EventConfigApplied is emitted after a config override is accepted.
	EventConfigApplied logging.EventType = "simulation.config_applied"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// MapGeneratedPayload summarises a generated map.
type MapGeneratedPayload struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Rooms  int    `json:"rooms"`
	Walls  int    `json:"walls"`
	Theme  string `json:"theme"`
	Seed   string `json:"seed"`
}

// ConfigAppliedPayload records what an override changed.
type ConfigAppliedPayload struct {
	Regenerated bool `json:"regenerated"`
}

// TickBudgetOverrun publishes a warning when a tick exceeds the budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// MapGenerated publishes a map summary.
func MapGenerated(ctx context.Context, pub logging.Publisher, tick uint64, payload MapGeneratedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMapGenerated,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// ConfigApplied publishes an accepted override.
func ConfigApplied(ctx context.Context, pub logging.Publisher, tick uint64, payload ConfigAppliedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConfigApplied,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}
