package intake

import (
	"errors"
	"fmt"
	"time"

	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/net/proto"
)

// ErrNotJoined rejects gameplay messages from a connection that has not sent
// join_room yet.
var ErrNotJoined = errors.New("connection has not joined")

// Commands is the slice of the world a client message can reach.
type Commands interface {
	Join(id, name string, role entity.Role, now time.Time) (*entity.Player, error)
	Input(id string, in entity.Input, now time.Time) error
	Ping(id string, timestamp int64, now time.Time) error
	Touch(id string, now time.Time)
	Chat(id, message string, now time.Time) error
	ToggleChat(id string, disabled *bool) error
	Buy(id, item string, now time.Time) error
	ChooseUpgrade(id, upgrade string) error
	Emote(id, symbol string, now time.Time) error
	SwitchWeapon(id, weapon string) error
}

// CommandContext is what Dispatch needs from the room: the world to act on,
// a membership check for gameplay messages and the room clock. A nil Now
// falls back to the wall clock.
type CommandContext struct {
	World     Commands
	HasPlayer func(string) bool
	Now       func() time.Time
}

// Dispatch applies one decoded client message on behalf of playerID. The
// returned error names why the message had no effect; callers drop it.
func Dispatch(ctx CommandContext, playerID string, msg proto.ClientMessage) error {
	if ctx.World == nil {
		return errors.New("no world")
	}
	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}

	if msg.Type == proto.TypeJoinRoom {
		if ctx.HasPlayer != nil && ctx.HasPlayer(playerID) {
			return fmt.Errorf("%s: already joined", msg.Type)
		}
		_, err := ctx.World.Join(playerID, msg.Name, entity.ParseRole(msg.Role), now)
		return err
	}
	if ctx.HasPlayer != nil && !ctx.HasPlayer(playerID) {
		return ErrNotJoined
	}

	w := ctx.World
	switch msg.Type {
	case proto.TypeInput:
		return w.Input(playerID, msg.Input(), now)
	case proto.TypePing:
		return w.Ping(playerID, msg.Input().Timestamp, now)
	case proto.TypePong:
		w.Touch(playerID, now)
		return nil
	case proto.TypeChat:
		return w.Chat(playerID, msg.Message, now)
	case proto.TypeToggleChat:
		return w.ToggleChat(playerID, msg.Disabled)
	case proto.TypeBuy:
		return w.Buy(playerID, msg.Item, now)
	case proto.TypeChooseUpgrade:
		return w.ChooseUpgrade(playerID, msg.ID)
	case proto.TypeEmote:
		return w.Emote(playerID, msg.Symbol, now)
	case proto.TypeSwitchWeapon:
		return w.SwitchWeapon(playerID, msg.Weapon)
	default:
		return fmt.Errorf("%w: %q", proto.ErrUnknownType, msg.Type)
	}
}
