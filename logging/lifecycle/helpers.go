package lifecycle

import (
	"context"

	"horde-hunt/server/logging"
)

const (
	// EventPlayerJoined is emitted when a player joins a room.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerDisconnected is emitted when a player leaves a room.
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
	// EventRoomStarted is emitted when a room actor starts ticking.
	EventRoomStarted logging.EventType = "lifecycle.room_started"
	// EventRoomStopped is emitted when a room actor exits.
	EventRoomStopped logging.EventType = "lifecycle.room_stopped"
	// EventBossSpawned is emitted for the arrival warning and the arrival itself.
	EventBossSpawned logging.EventType = "lifecycle.boss_spawned"
	// EventBossDied is emitted after a boss's loot has been scattered.
	EventBossDied logging.EventType = "lifecycle.boss_died"
	// EventRoundEnded is emitted when the round timer runs out.
	EventRoundEnded logging.EventType = "lifecycle.round_ended"
)

// PlayerJoinedPayload captures spawn metadata for a new player.
type PlayerJoinedPayload struct {
	Name   string  `json:"name"`
	Role   string  `json:"role"`
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
}

// PlayerDisconnectedPayload captures the reason a player left.
type PlayerDisconnectedPayload struct {
	Reason string `json:"reason"`
}

type RoomStartedPayload struct {
	Seed       string `json:"seed"`
	TickMillis int    `json:"tickMillis"`
}

type RoomStoppedPayload struct {
	Reason string `json:"reason"`
	Ticks  uint64 `json:"ticks"`
}

// BossSpawnedPayload is shared by the warning and the arrival; Warning tells
// them apart.
type BossSpawnedPayload struct {
	BossType string  `json:"bossType"`
	Warning  bool    `json:"warning"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type BossDiedPayload struct {
	BossType string `json:"bossType"`
	Drops    int    `json:"drops"`
	Weapon   string `json:"weapon,omitempty"`
}

type RoundEndedPayload struct {
	Round    int    `json:"round"`
	Leader   string `json:"leader,omitempty"`
	TopScore int    `json:"topScore"`
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryLifecycle
	pub.Publish(ctx, event)
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventPlayerJoined, Tick: tick, Actor: actor, Severity: logging.SeverityInfo, Payload: payload, Extra: extra})
}

// PlayerDisconnected publishes a player disconnect event.
func PlayerDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerDisconnectedPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventPlayerDisconnected, Tick: tick, Actor: actor, Severity: logging.SeverityInfo, Payload: payload, Extra: extra})
}

func RoomStarted(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload RoomStartedPayload) {
	publish(ctx, pub, logging.Event{Type: EventRoomStarted, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

func RoomStopped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoomStoppedPayload) {
	publish(ctx, pub, logging.Event{Type: EventRoomStopped, Tick: tick, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

func BossSpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BossSpawnedPayload) {
	publish(ctx, pub, logging.Event{Type: EventBossSpawned, Tick: tick, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

func BossDied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BossDiedPayload) {
	publish(ctx, pub, logging.Event{Type: EventBossDied, Tick: tick, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}

func RoundEnded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RoundEndedPayload) {
	publish(ctx, pub, logging.Event{Type: EventRoundEnded, Tick: tick, Actor: actor, Severity: logging.SeverityInfo, Payload: payload})
}
