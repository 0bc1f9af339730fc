package logging

import (
	"context"
	"time"
)

type EventType string

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// String returns the lowercase severity name used by every sink.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

type EntityKind string

const (
	EntityKindUnknown EntityKind = "unknown"
	EntityKindPlayer  EntityKind = "player"
	EntityKindHostile EntityKind = "hostile"
	EntityKindMinion  EntityKind = "minion"
	EntityKindBoss    EntityKind = "boss"
	EntityKindPickup  EntityKind = "pickup"
	EntityKindRoom    EntityKind = "room"
	EntityKindClient  EntityKind = "client"
)

type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Room     string         `json:"room,omitempty"`
	Actor    EntityRef      `json:"actor"`
	Targets  []EntityRef    `json:"targets,omitempty"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

// Ref is shorthand for an entity reference.
func Ref(id string, kind EntityKind) EntityRef {
	return EntityRef{ID: id, Kind: kind}
}

const (
	CategoryGameplay   = "gameplay"
	CategoryCombat     = "combat"
	CategorySystem     = "system"
	CategoryLifecycle  = "lifecycle"
	CategoryEconomy    = "economy"
	CategoryNetwork    = "network"
	CategorySimulation = "simulation"
)

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

func NopPublisher() Publisher {
	return nopPublisher{}
}

// roomPublisher stamps the room id and a fixed set of extra fields onto every
// event before forwarding it.
type roomPublisher struct {
	next   Publisher
	room   string
	fields map[string]any
}

func (p *roomPublisher) Publish(ctx context.Context, event Event) {
	if p.next == nil {
		return
	}
	if event.Room == "" {
		event.Room = p.room
	}
	if len(p.fields) > 0 {
		event = cloneForFields(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(p.fields))
		}
		for k, v := range p.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}
	p.next.Publish(ctx, event)
}

func cloneForFields(event Event) Event {
	cloned := event
	if len(event.Targets) > 0 {
		cloned.Targets = append([]EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		copied := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			copied[k] = v
		}
		cloned.Extra = copied
	}
	return cloned
}

// ForRoom scopes a publisher to one room.
func ForRoom(p Publisher, room string, fields map[string]any) Publisher {
	if p == nil {
		return NopPublisher()
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &roomPublisher{next: p, room: room, fields: copied}
}
