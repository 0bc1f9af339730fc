package world

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"horde-hunt/server/internal/ai"
	"horde-hunt/server/internal/boss"
	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/loot"
	"horde-hunt/server/internal/movement"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/schedule"
	"horde-hunt/server/internal/tilemap"
	"horde-hunt/server/logging"
)

var (
	// ErrUnknownPlayer is returned for commands from a player that already left.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrNotHunter is returned for hunter-only commands.
	ErrNotHunter = errors.New("hunter only")
	// ErrPlayerDead is returned for commands that need a living player.
	ErrPlayerDead        = errors.New("player is dead")
	ErrUnknownItem       = errors.New("unknown shop item")
	ErrInsufficientFunds = errors.New("insufficient currency")
	ErrChatDisabled      = errors.New("chat disabled")
	ErrEmptyMessage      = errors.New("empty message")
	ErrInvalidEmote      = errors.New("emote not allowed")
	ErrWeaponNotOwned    = errors.New("weapon not owned")
	ErrDuplicatePlayer   = errors.New("player already joined")
)

// RNGFactory produces deterministic RNG instances for world subsystems.
type RNGFactory func(rootSeed, label string) *rand.Rand

// Deps bundles runtime dependencies required to construct a World instance.
type Deps struct {
	Publisher logging.Publisher
	RNG       RNGFactory
}

// Outbound is a message produced by the simulation. An empty To broadcasts
// to every player in the room.
type Outbound struct {
	To      string
	Message any
}

// World owns every piece of mutable room state. It is not safe for concurrent
// use; the room actor serialises all access.
type World struct {
	cfg     config.Config
	derived config.Derived
	seed    string
	mapSig  string

	publisher  logging.Publisher
	rngFactory RNGFactory
	rng        *rand.Rand

	tick     uint64
	idSeq    uint64
	lastStep time.Time

	tiles    *tilemap.Map
	mapDirty bool
	mapGen   int

	players  map[string]*entity.Player
	hunterID string

	hostiles    []*entity.Hostile
	bosses      []*entity.Boss
	minions     []*entity.Minion
	bullets     []*entity.Bullet
	globs       []*entity.Glob
	pickups     []*entity.Pickup
	weaponDrops []*entity.WeaponDrop
	fields      []*entity.PoisonField
	damage      []entity.DamageNumber

	queue    schedule.Queue
	spawner  *ai.Spawner
	director *boss.Director
	pending  map[string]pendingBoss

	round       int
	roundActive bool
	roundEnds   time.Time
	chatEnabled bool
	freezeUntil time.Time

	combatTuning combat.Tuning
	rewards      combat.Rewards
	aiTuning     ai.Tuning
	spawnCfg     ai.SpawnConfig
	bossTuning   boss.Tuning
	hazards      movement.Hazards
	pickupCfg    loot.SpawnConfig
	reach        loot.Reach
	melee        combat.MeleeConfig

	outbox []Outbound
}

// New constructs a world from a validated config. now anchors the first round
// and the boss schedule.
func New(cfg config.Config, now time.Time, deps Deps) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	factory := deps.RNG
	if factory == nil {
		factory = random.New
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	seed := cfg.Seed
	if seed == "" {
		seed = random.DefaultSeed
	}

	w := &World{
		seed:        seed,
		publisher:   publisher,
		rngFactory:  factory,
		rng:         factory(seed, "world"),
		players:     make(map[string]*entity.Player),
		spawner:     ai.NewSpawner(),
		pending:     make(map[string]pendingBoss),
		chatEnabled: cfg.Chat.Enabled,
	}
	w.applyConfig(cfg.Clone())
	w.startRound(now)
	return w, nil
}

func (w *World) applyConfig(cfg config.Config) {
	w.cfg = cfg
	w.derived = cfg.Derived()
	w.combatTuning = combat.DefaultTuning()
	w.rewards = combat.RewardsFrom(cfg)
	w.aiTuning = ai.TuningFrom(cfg)
	w.spawnCfg = ai.SpawnConfigFrom(cfg)
	w.bossTuning = boss.TuningFrom(cfg)
	w.hazards = movement.HazardsFrom(cfg)
	w.pickupCfg = loot.SpawnConfigFrom(cfg)
	w.reach = loot.ReachFrom(cfg)
	w.melee = combat.MeleeFrom(cfg)
	if sig := cfg.MapSignature(); sig != w.mapSig {
		w.mapSig = sig
		w.mapDirty = true
	}
}

// Config returns a copy of the live configuration.
func (w *World) Config() config.Config {
	return w.cfg.Clone()
}

// Tick reports how many steps have run.
func (w *World) Tick() uint64 {
	return w.tick
}

// Map returns the current map, generating it first if the config changed.
func (w *World) Map() *tilemap.Map {
	w.ensureMap()
	return w.tiles
}

// SubsystemRNG returns a deterministic RNG derived from the world seed.
func (w *World) SubsystemRNG(label string) *rand.Rand {
	return w.rngFactory(w.seed, label)
}

// Drain hands over every queued outbound message.
func (w *World) Drain() []Outbound {
	out := w.outbox
	w.outbox = nil
	return out
}

func (w *World) send(to string, msg any) {
	w.outbox = append(w.outbox, Outbound{To: to, Message: msg})
}

func (w *World) broadcast(msg any) {
	w.send("", msg)
}

func (w *World) nextID(prefix string) string {
	w.idSeq++
	return fmt.Sprintf("%s-%d", prefix, w.idSeq)
}

func (w *World) idFunc(prefix string) func() string {
	return func() string { return w.nextID(prefix) }
}

func (w *World) ensureMap() {
	if w.tiles != nil && !w.mapDirty {
		return
	}
	w.mapDirty = false
	w.mapGen++
	w.tiles = tilemap.Generate(tilemap.ParamsFrom(w.cfg), w.SubsystemRNG(fmt.Sprintf("map-%d", w.mapGen)))
	w.publishMap()
	for _, p := range w.sortedPlayers() {
		w.placePlayer(p)
	}
	w.broadcast(w.MapMessage())
}

func (w *World) moveContext(now time.Time, dt float64) movement.Context {
	m := w.Map()
	return movement.Context{
		Map:     m,
		Walls:   m.Walls,
		Width:   w.cfg.Arena.Width,
		Height:  w.cfg.Arena.Height,
		Hazards: w.hazards,
		Now:     now,
		DT:      dt,
	}
}

// settle constrains a circle to walkable space.
func (w *World) settle(pos geom.Vec2, radius float64) geom.Vec2 {
	return movement.Settle(pos, radius, w.moveContext(time.Time{}, 0))
}

func (w *World) settlePoint(pos geom.Vec2) geom.Vec2 {
	return w.settle(pos, 8)
}

func (w *World) bounds() combat.Bounds {
	return combat.Bounds{Width: w.cfg.Arena.Width, Height: w.cfg.Arena.Height, Walls: w.Map().Walls}
}

// Hunter returns the hunter, if one is connected.
func (w *World) Hunter() *entity.Player {
	if w.hunterID == "" {
		return nil
	}
	return w.players[w.hunterID]
}

// Player looks up a connected player.
func (w *World) Player(id string) (*entity.Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// PlayerCount reports how many players are connected.
func (w *World) PlayerCount() int {
	return len(w.players)
}

// sortedPlayers returns players in collector order: hunter first, then by id.
func (w *World) sortedPlayers() []*entity.Player {
	out := make([]*entity.Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	return loot.CollectorOrder(out)
}

func (w *World) globalSlow(now time.Time) float64 {
	if entity.Active(w.freezeUntil, now) {
		return freezeSlow
	}
	return 1
}
