package world

import (
	"context"
	"fmt"
	"time"

	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/net/proto"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/stats"
	"horde-hunt/server/internal/tilemap"
	"horde-hunt/server/logging"
	loggingeconomy "horde-hunt/server/logging/economy"
	logginglifecycle "horde-hunt/server/logging/lifecycle"
	loggingnetwork "horde-hunt/server/logging/network"
)

const (
	maxNameWidth = 16
	defaultName  = "Player"
	floorTries   = 16
)

// Join adds a player. Only one hunter may exist; later hunter requests join
// the horde instead.
func (w *World) Join(id, name string, role entity.Role, now time.Time) (*entity.Player, error) {
	if _, exists := w.players[id]; exists {
		return nil, ErrDuplicatePlayer
	}
	if role == entity.RoleHunter && w.hunterID != "" {
		role = entity.RoleHorde
	}
	name = sanitizeText(name, maxNameWidth)
	if name == "" {
		name = defaultName
	}

	p := &entity.Player{
		ID:           id,
		Name:         name,
		Role:         role,
		Progress:     stats.Progress{Level: 1},
		Stats:        stats.Base(),
		Ammo:         make(map[string]int),
		LastActivity: now,
	}
	if role == entity.RoleHunter {
		w.hunterID = id
		w.equipHunter(p)
	} else {
		w.equipHorde(p)
	}
	w.players[id] = p
	w.placePlayer(p)

	d := w.cfg.Arena
	w.send(id, proto.Joined{
		Type:     proto.TypeJoined,
		PlayerID: id,
		Name:     name,
		Role:     string(role),
		Arena:    proto.Arena{Width: d.Width, Height: d.Height, TileSize: d.TileSize},
	})
	w.send(id, w.MapMessage())
	w.broadcastPlayers()
	w.notice(fmt.Sprintf("%s joined as %s", name, role))

	logginglifecycle.PlayerJoined(context.Background(), w.publisher, w.tick, logging.Ref(id, logging.EntityKindPlayer),
		logginglifecycle.PlayerJoinedPayload{Name: name, Role: string(role), SpawnX: p.Pos.X, SpawnY: p.Pos.Y}, nil)
	return p, nil
}

func (w *World) equipHunter(p *entity.Player) {
	h := w.cfg.Hunter
	p.Radius = h.Radius
	p.Vitals = entity.NewVitals(h.MaxHealth)
	p.Currency = h.StartingCurrency
	start := h.StartWeapon
	if _, ok := combat.LookupWeapon(start); !ok {
		start = combat.WeaponPistol
	}
	p.GrantWeapon(start)
	if weapon, _ := combat.LookupWeapon(start); !weapon.Unlimited() {
		p.Ammo[start] = weapon.Pack
	}
	p.Weapon = start
}

func (w *World) equipHorde(p *entity.Player) {
	class, ok := entity.ClassTable().Pick(w.rng)
	if !ok {
		class = entity.ClassShambler
	}
	p.Class = class
	p.Radius = w.cfg.Horde.Radius
	p.Vitals = entity.NewVitals(w.cfg.Horde.BaseHealth * entity.ProfileOf(class).Health)
}

// baseHealth is the role's max health before upgrades.
func (w *World) baseHealth(p *entity.Player) float64 {
	if p.Hunter() {
		return w.cfg.Hunter.MaxHealth
	}
	return w.cfg.Horde.BaseHealth * entity.ProfileOf(p.Class).Health
}

// placePlayer puts the hunter on the map spawn and horde players on a floor
// tile in some other room.
func (w *World) placePlayer(p *entity.Player) {
	m := w.Map()
	if p.Hunter() {
		p.Pos = m.Spawn
		return
	}
	p.Pos = w.hordeSpawn(m)
}

func (w *World) hordeSpawn(m *tilemap.Map) geom.Vec2 {
	var rooms []tilemap.Room
	for i, room := range m.Rooms {
		if i != m.SpawnRoom {
			rooms = append(rooms, room)
		}
	}
	if len(rooms) == 0 {
		rooms = m.Rooms
	}
	if len(rooms) == 0 {
		return m.Spawn
	}
	room := rooms[w.rng.Intn(len(rooms))]
	for i := 0; i < floorTries; i++ {
		pt := tilemap.Point{
			X: random.IntBetween(w.rng, room.X+1, room.X+room.W-2),
			Y: random.IntBetween(w.rng, room.Y+1, room.Y+room.H-2),
		}
		if m.At(pt.X, pt.Y) == tilemap.TileFloor {
			return m.CenterOf(pt)
		}
	}
	return m.CenterOf(room.Center())
}

// Leave removes a player. Deferred events that reference the player become
// no-ops.
func (w *World) Leave(id, reason string) bool {
	p, ok := w.players[id]
	if !ok {
		return false
	}
	delete(w.players, id)
	if w.hunterID == id {
		w.hunterID = ""
		w.bullets = w.bullets[:0]
	}
	w.broadcastPlayers()
	w.notice(fmt.Sprintf("%s left", p.Name))
	logginglifecycle.PlayerDisconnected(context.Background(), w.publisher, w.tick, logging.Ref(id, logging.EntityKindPlayer),
		logginglifecycle.PlayerDisconnectedPayload{Reason: reason}, nil)
	return true
}

// Touch records activity for the heartbeat.
func (w *World) Touch(id string, now time.Time) {
	if p, ok := w.players[id]; ok {
		p.LastActivity = now
	}
}

// ExpireIdle removes every player silent for longer than the heartbeat
// timeout and returns their ids.
func (w *World) ExpireIdle(now time.Time) []string {
	timeout := w.derived.HeartbeatTimeout
	if timeout <= 0 {
		return nil
	}
	var expired []string
	for _, p := range w.sortedPlayers() {
		idle := now.Sub(p.LastActivity)
		if idle <= timeout {
			continue
		}
		expired = append(expired, p.ID)
		loggingnetwork.HeartbeatTimeout(context.Background(), w.publisher, w.tick, logging.Ref(p.ID, logging.EntityKindPlayer),
			loggingnetwork.HeartbeatTimeoutPayload{IdleMillis: idle.Milliseconds()}, nil)
		w.Leave(p.ID, "heartbeat_timeout")
	}
	return expired
}

// Input stores the latest intent of a player.
func (w *World) Input(id string, in entity.Input, now time.Time) error {
	p, ok := w.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	p.Input = in
	p.LastActivity = now
	return nil
}

// Ping answers with a pong carrying the client's timestamp.
func (w *World) Ping(id string, timestamp int64, now time.Time) error {
	if _, ok := w.players[id]; !ok {
		return ErrUnknownPlayer
	}
	w.Touch(id, now)
	w.send(id, proto.Pong{Type: proto.TypePong, Timestamp: timestamp})
	return nil
}

// SwitchWeapon activates an owned weapon.
func (w *World) SwitchWeapon(id, weapon string) error {
	p, ok := w.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if !p.Hunter() {
		return ErrNotHunter
	}
	if !p.OwnsWeapon(weapon) {
		return ErrWeaponNotOwned
	}
	if p.Weapon != weapon {
		p.Weapon = weapon
		p.FireLatch = false
	}
	return nil
}

// ChooseUpgrade applies one of the offered upgrades.
func (w *World) ChooseUpgrade(id, upgrade string) error {
	p, ok := w.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if err := combat.ChooseUpgrade(p, upgrade, w.baseHealth(p), w.rewards, w.rng); err != nil {
		return err
	}
	loggingeconomy.UpgradeChosen(context.Background(), w.publisher, w.tick, logging.Ref(id, logging.EntityKindPlayer),
		loggingeconomy.UpgradeChosenPayload{Upgrade: upgrade, Stacks: p.Upgrades.Count(upgrade)}, nil)
	if len(p.Offer) > 0 {
		w.sendOffer(p)
	}
	return nil
}

func (w *World) sendOffer(p *entity.Player) {
	w.send(p.ID, proto.UpgradeOffer{Type: proto.TypeUpgradeOffer, Choices: w.rewards.Catalog.Describe(p.Offer)})
}

// respawnHunter revives the hunter at the map spawn with a short shield.
func (w *World) respawnHunter(p *entity.Player, now time.Time) {
	p.Revive()
	p.Pos = w.Map().Spawn
	p.Vel = geom.Vec2{}
	p.Status = entity.Status{}
	p.RespawnAt = time.Time{}
	entity.Extend(&p.ShieldUntil, now, config.Millis(w.cfg.Hunter.RespawnShieldMS))
	w.notice(fmt.Sprintf("%s is back", p.Name))
}

// respawnHorde revives a horde player where it fell.
func (w *World) respawnHorde(p *entity.Player) {
	p.Revive()
	p.Vel = geom.Vec2{}
	p.Status = entity.Status{}
	p.RespawnAt = time.Time{}
	p.Pos = w.settle(p.Pos, p.Radius)
}

func (w *World) notice(message string) {
	w.broadcast(proto.Notice{Type: proto.TypeNotice, Message: message})
}

func (w *World) broadcastPlayers() {
	w.broadcast(proto.PlayersUpdate{Type: proto.TypePlayersUpdate, Players: w.playerViews(w.lastStep)})
}
