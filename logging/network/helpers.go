package network

import (
	"context"

	"horde-hunt/server/logging"
)

const (
	// EventMessageDropped is emitted when an inbound message cannot be decoded
	// or refers to state that does not exist.
	EventMessageDropped logging.EventType = "network.message_dropped"
	// EventHeartbeatTimeout is emitted when a silent player is removed.
	EventHeartbeatTimeout logging.EventType = "network.heartbeat_timeout"
	// EventSendFailed is emitted when a client write fails and the client is
	// disconnected.
	EventSendFailed logging.EventType = "network.send_failed"
)

// MessageDroppedPayload captures why an inbound message was ignored.
type MessageDroppedPayload struct {
	MessageType string `json:"messageType,omitempty"`
	Reason      string `json:"reason"`
}

// HeartbeatTimeoutPayload records how long the player was silent.
type HeartbeatTimeoutPayload struct {
	IdleMillis int64 `json:"idleMillis"`
}

// SendFailedPayload records the failing write.
type SendFailedPayload struct {
	Error string `json:"error"`
}

// MessageDropped publishes a debug event for an ignored message.
func MessageDropped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MessageDroppedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventMessageDropped,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// HeartbeatTimeout publishes a warning when a player is dropped for silence.
func HeartbeatTimeout(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload HeartbeatTimeoutPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventHeartbeatTimeout,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SendFailed publishes a warning for a failed client write.
func SendFailed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SendFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSendFailed,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}
