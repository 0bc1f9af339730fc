package proto

import (
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/stats"
	"horde-hunt/server/internal/tilemap"
)

// Server message type identifiers.
const (
	TypeWelcome       = "welcome"
	TypeJoined        = "joined"
	TypePlayersUpdate = "players_update"
	TypeState         = "state"
	TypeNotice        = "notice"
	TypeMap           = "map"
	TypeBossSpawn     = "boss_spawn"
	TypeBossDeath     = "boss_death"
	TypeBossTeleport  = "boss_teleport"
	TypePoisonField   = "poison_field"
	TypeGroundSlam    = "ground_slam"
	TypeLifeDrain     = "life_drain"
	TypeHitConfirm    = "hit_confirm"
	TypeUpgradeOffer  = "upgrade_offer"
	TypeLevelUp       = "level_up"
)

// Arena describes the playfield dimensions.
type Arena struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	TileSize float64 `json:"tileSize"`
}

type Welcome struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId"`
}

type Joined struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Arena    Arena  `json:"arena"`
}

// PlayerView is the public state of one player.
type PlayerView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Role        string         `json:"role"`
	Class       string         `json:"class,omitempty"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	VX          float64        `json:"vx"`
	VY          float64        `json:"vy"`
	Radius      float64        `json:"radius"`
	Health      float64        `json:"health"`
	MaxHealth   float64        `json:"maxHealth"`
	Alive       bool           `json:"alive"`
	Weapon      string         `json:"weapon,omitempty"`
	Weapons     []string       `json:"weapons,omitempty"`
	Ammo        map[string]int `json:"ammo,omitempty"`
	Score       int            `json:"score"`
	Currency    int            `json:"currency"`
	Kills       int            `json:"kills"`
	Deaths      int            `json:"deaths"`
	Level       int            `json:"level"`
	XP          int            `json:"xp"`
	XPToNext    int            `json:"xpToNext"`
	Upgrades    stats.Stacks   `json:"upgrades,omitempty"`
	Shielded    bool           `json:"shielded,omitempty"`
	Boosted     bool           `json:"boosted,omitempty"`
	Dashing     bool           `json:"dashing,omitempty"`
	Magnet      bool           `json:"magnet,omitempty"`
	WeaponBoost bool           `json:"weaponBoost,omitempty"`
	Stunned     bool           `json:"stunned,omitempty"`
	Slowed      bool           `json:"slowed,omitempty"`
	Burning     bool           `json:"burning,omitempty"`
	Bleeding    bool           `json:"bleeding,omitempty"`
	Emote       string         `json:"emote,omitempty"`
}

type BulletView struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Weapon string  `json:"weapon"`
}

type GlobView struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

type HostileView struct {
	ID        string  `json:"id"`
	Class     string  `json:"class"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	State     string  `json:"state"`
	Burning   bool    `json:"burning,omitempty"`
	Bleeding  bool    `json:"bleeding,omitempty"`
	Slowed    bool    `json:"slowed,omitempty"`
}

type DamageNumberView struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Amount float64 `json:"amount"`
	Crit   bool    `json:"crit,omitempty"`
	DOT    bool    `json:"dot,omitempty"`
	At     int64   `json:"at"`
}

type BossView struct {
	ID        string  `json:"id"`
	BossType  string  `json:"bossType"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	State     string  `json:"state"`
	Enraged   bool    `json:"enraged,omitempty"`
	Phased    bool    `json:"phased,omitempty"`
	Charging  bool    `json:"charging,omitempty"`
	Draining  bool    `json:"draining,omitempty"`
}

type MinionView struct {
	ID        string  `json:"id"`
	BossID    string  `json:"bossId"`
	Clone     bool    `json:"clone,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
}

type PoisonFieldView struct {
	ID      string  `json:"id"`
	BossID  string  `json:"bossId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	DPS     float64 `json:"dps"`
	Expires int64   `json:"expires"`
}

type PlayersUpdate struct {
	Type    string       `json:"type"`
	Players []PlayerView `json:"players"`
}

// State is the per-tick snapshot.
type State struct {
	Type          string              `json:"type"`
	T             int64               `json:"t"`
	Players       []PlayerView        `json:"players"`
	Bullets       []BulletView        `json:"bullets"`
	Globs         []GlobView          `json:"globs"`
	Walls         []geom.Rect         `json:"walls"`
	Pickups       []entity.Pickup     `json:"pickups"`
	WeaponDrops   []entity.WeaponDrop `json:"weaponDrops"`
	AIZombies     []HostileView       `json:"aiZombies"`
	DamageNumbers []DamageNumberView  `json:"damageNumbers"`
	Bosses        []BossView          `json:"bosses"`
	BossMinions   []MinionView        `json:"bossMinions"`
	PoisonFields  []PoisonFieldView   `json:"poisonFields"`
	Arena         Arena               `json:"arena"`
	RemainingTime float64             `json:"remainingTime"`
	ChatEnabled   bool                `json:"chatEnabled"`
	RoundActive   bool                `json:"roundActive"`
}

type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Map carries the tile grid as base64 encoded bytes.
type Map struct {
	Type        string          `json:"type"`
	W           int             `json:"w"`
	H           int             `json:"h"`
	Size        float64         `json:"size"`
	Theme       string          `json:"theme"`
	TilesBase64 string          `json:"tilesBase64"`
	Props       []tilemap.Prop  `json:"props"`
	Lights      []tilemap.Light `json:"lights"`
}

// BossSpawn is sent once as a warning and again when the boss arrives.
type BossSpawn struct {
	Type     string  `json:"type"`
	ID       string  `json:"id,omitempty"`
	BossType string  `json:"bossType"`
	Warning  bool    `json:"warning"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ArriveAt int64   `json:"arriveAt,omitempty"`
}

type BossDeath struct {
	Type     string  `json:"type"`
	ID       string  `json:"id"`
	BossType string  `json:"bossType"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Drops    int     `json:"drops"`
	Weapon   string  `json:"weapon,omitempty"`
}

type BossTeleport struct {
	Type   string  `json:"type"`
	BossID string  `json:"bossId"`
	FromX  float64 `json:"fromX"`
	FromY  float64 `json:"fromY"`
	ToX    float64 `json:"toX"`
	ToY    float64 `json:"toY"`
}

type PoisonField struct {
	Type  string          `json:"type"`
	Field PoisonFieldView `json:"field"`
}

type GroundSlam struct {
	Type   string  `json:"type"`
	BossID string  `json:"bossId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Damage float64 `json:"damage"`
}

type LifeDrain struct {
	Type   string  `json:"type"`
	BossID string  `json:"bossId"`
	FromX  float64 `json:"fromX"`
	FromY  float64 `json:"fromY"`
	ToX    float64 `json:"toX"`
	ToY    float64 `json:"toY"`
	Amount float64 `json:"amount"`
}

type HitConfirm struct {
	Type      string  `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp int64   `json:"timestamp"`
}

type Pong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type Chat struct {
	Type    string `json:"type"`
	From    string `json:"from"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type UpgradeOffer struct {
	Type    string          `json:"type"`
	Choices []stats.Upgrade `json:"choices"`
}

type LevelUp struct {
	Type  string `json:"type"`
	Level int    `json:"level"`
}
