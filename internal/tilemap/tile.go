package tilemap

import (
	"encoding/base64"
	"math"

	"horde-hunt/server/internal/geom"
)

// Tile is one cell of the grid. The numeric values are part of the wire format.
type Tile uint8

const (
	TileFloor Tile = iota
	TileWall
	TilePit
	TileWater
	TileDoorClosed
	TileDoorOpen
	TileSpikes
	TilePoison
)

func (t Tile) String() string {
	switch t {
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TilePit:
		return "pit"
	case TileWater:
		return "water"
	case TileDoorClosed:
		return "door_closed"
	case TileDoorOpen:
		return "door_open"
	case TileSpikes:
		return "spikes"
	case TilePoison:
		return "poison"
	default:
		return "unknown"
	}
}

// Solid tiles block movement.
func (t Tile) Solid() bool {
	return t == TileWall || t == TileDoorClosed
}

// Passable tiles are part of the walkable graph. Doors count as passable
// because a key opens every one of them.
func (t Tile) Passable() bool {
	return t != TileWall && t != TilePit
}

// Point addresses a tile.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RoomKind is the size archetype of a generated room.
type RoomKind string

const (
	RoomSmall   RoomKind = "small"
	RoomMedium  RoomKind = "medium"
	RoomLarge   RoomKind = "large"
	RoomHall    RoomKind = "hall"
	RoomChamber RoomKind = "chamber"
	RoomVault   RoomKind = "vault"
)

// Room is a rectangle in tile space.
type Room struct {
	X    int      `json:"x"`
	Y    int      `json:"y"`
	W    int      `json:"w"`
	H    int      `json:"h"`
	Kind RoomKind `json:"kind"`
}

// Center returns the middle tile.
func (r Room) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether the tile lies inside the room.
func (r Room) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Prop is a decorative object with no collision.
type Prop struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"kind"`
}

// Light is a rendering hint placed once per room.
type Light struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

// Map is a generated arena.
type Map struct {
	W        int
	H        int
	TileSize float64
	Theme    string
	Tiles    []Tile
	Props    []Prop
	Lights   []Light
	Rooms    []Room
	Walls    []geom.Rect
	Spawn    geom.Vec2
	// SpawnRoom indexes Rooms.
	SpawnRoom int
}

func newMap(w, h int, tileSize float64, theme string) *Map {
	tiles := make([]Tile, w*h)
	for i := range tiles {
		tiles[i] = TileWall
	}
	return &Map{W: w, H: h, TileSize: tileSize, Theme: theme, Tiles: tiles}
}

func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.W && y < m.H
}

// At returns the tile at (x, y). Out-of-range coordinates read as wall.
func (m *Map) At(x, y int) Tile {
	if !m.InBounds(x, y) {
		return TileWall
	}
	return m.Tiles[y*m.W+x]
}

func (m *Map) Set(x, y int, t Tile) {
	if m.InBounds(x, y) {
		m.Tiles[y*m.W+x] = t
	}
}

// TileOf converts a pixel position into tile coordinates.
func (m *Map) TileOf(p geom.Vec2) Point {
	if m.TileSize <= 0 {
		return Point{}
	}
	return Point{X: int(math.Floor(p.X / m.TileSize)), Y: int(math.Floor(p.Y / m.TileSize))}
}

// TileAt samples the tile under a pixel position.
func (m *Map) TileAt(p geom.Vec2) Tile {
	if m == nil {
		return TileFloor
	}
	pt := m.TileOf(p)
	return m.At(pt.X, pt.Y)
}

// CenterOf returns the pixel centre of a tile.
func (m *Map) CenterOf(p Point) geom.Vec2 {
	return geom.Vec2{X: (float64(p.X) + 0.5) * m.TileSize, Y: (float64(p.Y) + 0.5) * m.TileSize}
}

// RoomRect converts a room into pixel space.
func (m *Map) RoomRect(r Room) geom.Rect {
	return geom.Rect{
		X: float64(r.X) * m.TileSize,
		Y: float64(r.Y) * m.TileSize,
		W: float64(r.W) * m.TileSize,
		H: float64(r.H) * m.TileSize,
	}
}

// Encode returns the tile bytes in base64.
func (m *Map) Encode() string {
	raw := make([]byte, len(m.Tiles))
	for i, t := range m.Tiles {
		raw[i] = byte(t)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// UnlockDoors opens every closed door and reports how many changed.
func (m *Map) UnlockDoors() int {
	opened := 0
	for i, t := range m.Tiles {
		if t == TileDoorClosed {
			m.Tiles[i] = TileDoorOpen
			opened++
		}
	}
	return opened
}

// Reachable flood-fills the passable tiles connected to from.
func (m *Map) Reachable(from Point) []bool {
	seen := make([]bool, len(m.Tiles))
	if !m.InBounds(from.X, from.Y) || !m.At(from.X, from.Y).Passable() {
		return seen
	}
	queue := []Point{from}
	seen[from.Y*m.W+from.X] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := cur.X+d.X, cur.Y+d.Y
			if !m.InBounds(nx, ny) {
				continue
			}
			idx := ny*m.W + nx
			if seen[idx] || !m.Tiles[idx].Passable() {
				continue
			}
			seen[idx] = true
			queue = append(queue, Point{X: nx, Y: ny})
		}
	}
	return seen
}

// Count returns how many tiles of the given type exist.
func (m *Map) Count(t Tile) int {
	n := 0
	for _, v := range m.Tiles {
		if v == t {
			n++
		}
	}
	return n
}
