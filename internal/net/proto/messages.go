package proto

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"horde-hunt/server/internal/entity"
)

// Client message type identifiers.
const (
	TypeJoinRoom      = "join_room"
	TypeInput         = "input"
	TypePing          = "ping"
	TypePong          = "pong"
	TypeChat          = "chat"
	TypeToggleChat    = "toggle_chat"
	TypeBuy           = "buy"
	TypeChooseUpgrade = "choose_upgrade"
	TypeEmote         = "emote"
	TypeSwitchWeapon  = "switch_weapon"
)

var (
	// ErrMalformed reports a payload that is not a JSON object of the expected shape.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType reports a message whose type is not recognised.
	ErrUnknownType = errors.New("unknown message type")
)

var clientTypes = map[string]bool{
	TypeJoinRoom:      true,
	TypeInput:         true,
	TypePing:          true,
	TypePong:          true,
	TypeChat:          true,
	TypeToggleChat:    true,
	TypeBuy:           true,
	TypeChooseUpgrade: true,
	TypeEmote:         true,
	TypeSwitchWeapon:  true,
}

// ClientMessage captures an inbound websocket message from the client. Only
// the fields relevant to Type are meaningful.
type ClientMessage struct {
	Type string `json:"type"`

	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`

	Up        bool    `json:"up,omitempty"`
	Down      bool    `json:"down,omitempty"`
	Left      bool    `json:"left,omitempty"`
	Right     bool    `json:"right,omitempty"`
	Shoot     bool    `json:"shoot,omitempty"`
	Melee     bool    `json:"melee,omitempty"`
	Dash      bool    `json:"dash,omitempty"`
	AimX      float64 `json:"aimX,omitempty"`
	AimY      float64 `json:"aimY,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`

	Message  string `json:"message,omitempty"`
	Disabled *bool  `json:"disabled,omitempty"`
	Item     string `json:"item,omitempty"`
	ID       string `json:"id,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Weapon   string `json:"weapon,omitempty"`
}

// DecodeClientMessage converts a raw JSON payload into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return msg, msg.validate()
}

func (m ClientMessage) validate() error {
	if !clientTypes[m.Type] {
		return fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	return nil
}

// Input converts an input message into the simulation's input snapshot.
// Non-finite aim coordinates collapse to zero.
func (m ClientMessage) Input() entity.Input {
	return entity.Input{
		Up:        m.Up,
		Down:      m.Down,
		Left:      m.Left,
		Right:     m.Right,
		Shoot:     m.Shoot,
		Melee:     m.Melee,
		Dash:      m.Dash,
		AimX:      finite(m.AimX),
		AimY:      finite(m.AimY),
		Timestamp: int64(finite(m.Timestamp)),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
