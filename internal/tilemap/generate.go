package tilemap

import (
	"math"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/random"
)

// Params drives one map generation.
type Params struct {
	Width            float64
	Height           float64
	TileSize         float64
	Theme            string
	CellSize         int
	RoomChance       float64
	ShortcutRatio    float64
	CorridorMinWidth int
	CorridorMaxWidth int
	PropDensity      float64
	WaterFrequency   float64
	PitFrequency     float64
	SpikeFrequency   float64
	PoisonFrequency  float64
}

// ParamsFrom extracts the generation parameters from a room config.
func ParamsFrom(cfg config.Config) Params {
	return Params{
		Width:            cfg.Arena.Width,
		Height:           cfg.Arena.Height,
		TileSize:         cfg.Arena.TileSize,
		Theme:            cfg.Arena.Theme,
		CellSize:         cfg.Map.CellSize,
		RoomChance:       cfg.Map.RoomChance,
		ShortcutRatio:    cfg.Map.ShortcutRatio,
		CorridorMinWidth: cfg.Map.CorridorMinWidth,
		CorridorMaxWidth: cfg.Map.CorridorMaxWidth,
		PropDensity:      cfg.Map.PropDensity,
		WaterFrequency:   cfg.Hazards.WaterFrequency,
		PitFrequency:     cfg.Hazards.PitFrequency,
		SpikeFrequency:   cfg.Hazards.SpikeFrequency,
		PoisonFrequency:  cfg.Hazards.PoisonFrequency,
	}
}

type sizeRange struct {
	minW, maxW, minH, maxH int
}

var roomSizes = map[RoomKind]sizeRange{
	RoomSmall:   {3, 5, 3, 5},
	RoomMedium:  {5, 8, 5, 8},
	RoomLarge:   {8, 11, 8, 11},
	RoomHall:    {9, 12, 3, 4},
	RoomChamber: {6, 9, 6, 9},
	RoomVault:   {4, 6, 4, 6},
}

func roomKinds() *random.Weighted[RoomKind] {
	return random.NewWeighted(
		random.Entry[RoomKind]{Value: RoomSmall, Weight: 30},
		random.Entry[RoomKind]{Value: RoomMedium, Weight: 30},
		random.Entry[RoomKind]{Value: RoomLarge, Weight: 15},
		random.Entry[RoomKind]{Value: RoomHall, Weight: 10},
		random.Entry[RoomKind]{Value: RoomChamber, Weight: 10},
		random.Entry[RoomKind]{Value: RoomVault, Weight: 5},
	)
}

var themeProps = map[string][]string{
	"crypt": {"bones", "candle", "coffin", "urn"},
	"sewer": {"pipe", "grate", "barrel", "moss"},
	"lab":   {"console", "tank", "crate", "cable"},
}

var themeLights = map[string]string{
	"crypt": "#9fa8ff",
	"sewer": "#7dff9a",
	"lab":   "#ffffff",
}

// node is one grid cell's anchor: either a room or a small junction.
type node struct {
	rect   Room
	room   int
	center Point
}

// Generate carves a new map. Every room is connected to its right and bottom
// grid neighbours, so the room graph is always connected.
func Generate(p Params, src random.Source) *Map {
	if p.TileSize <= 0 {
		p.TileSize = 40
	}
	w := int(p.Width / p.TileSize)
	h := int(p.Height / p.TileSize)
	if w < 4 {
		w = 4
	}
	if h < 4 {
		h = 4
	}
	m := newMap(w, h, p.TileSize, p.Theme)

	cell := p.CellSize
	if cell < 6 {
		cell = 6
	}
	cols := max(1, w/cell)
	rows := max(1, h/cell)
	kinds := roomKinds()

	nodes := make([]node, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			ox, oy := c*cell, r*cell
			cw, ch := min(cell, w-ox), min(cell, h-oy)
			idx := r*cols + c
			if idx == 0 || random.Chance(src, p.RoomChance) {
				kind, _ := kinds.Pick(src)
				if idx == 0 && kind == RoomVault {
					kind = RoomMedium
				}
				room := placeRoom(src, kind, ox, oy, cw, ch)
				carveRoom(m, room)
				m.Rooms = append(m.Rooms, room)
				nodes[idx] = node{rect: room, room: len(m.Rooms) - 1, center: room.Center()}
				continue
			}
			junction := Room{X: ox + cw/2 - 1, Y: oy + ch/2 - 1, W: 2, H: 2}
			carveRoom(m, junction)
			nodes[idx] = node{rect: junction, room: -1, center: junction.Center()}
		}
	}

	minWidth := max(1, p.CorridorMinWidth)
	maxWidth := max(minWidth, p.CorridorMaxWidth)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a := nodes[r*cols+c]
			if c+1 < cols {
				b := nodes[r*cols+c+1]
				carveZ(m, a.center, b.center, random.IntBetween(src, minWidth, maxWidth), true)
			}
			if r+1 < rows {
				b := nodes[(r+1)*cols+c]
				carveZ(m, a.center, b.center, random.IntBetween(src, minWidth, maxWidth), false)
			}
		}
	}

	if len(m.Rooms) >= 2 {
		shortcuts := max(1, int(float64(len(m.Rooms))*p.ShortcutRatio))
		for i := 0; i < shortcuts; i++ {
			a := src.Intn(len(m.Rooms))
			b := src.Intn(len(m.Rooms) - 1)
			if b >= a {
				b++
			}
			carveL(m, m.Rooms[a].Center(), m.Rooms[b].Center(), minWidth, src.Intn(2) == 0)
		}
	}

	m.SpawnRoom = 0
	m.Spawn = m.CenterOf(m.Rooms[0].Center())

	placeVaultDoors(m)
	stampHazards(m, p, src)
	decorate(m, p, src)
	m.Walls = MergeWalls(m)
	return m
}

func placeRoom(src random.Source, kind RoomKind, ox, oy, cw, ch int) Room {
	size := roomSizes[kind]
	maxW, maxH := max(2, cw-2), max(2, ch-2)
	rw := min(random.IntBetween(src, size.minW, size.maxW), maxW)
	rh := min(random.IntBetween(src, size.minH, size.maxH), maxH)
	if kind == RoomHall && src.Intn(2) == 0 {
		rw, rh = min(rh, maxW), min(rw, maxH)
	}
	x := ox + 1 + random.IntBetween(src, 0, max(0, cw-2-rw))
	y := oy + 1 + random.IntBetween(src, 0, max(0, ch-2-rh))
	return Room{X: x, Y: y, W: rw, H: rh, Kind: kind}
}

func carveRoom(m *Map, r Room) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			carve(m, x, y)
		}
	}
}

// carve opens a tile, leaving the outer border of the map intact.
func carve(m *Map, x, y int) {
	if x < 1 || y < 1 || x > m.W-2 || y > m.H-2 {
		return
	}
	m.Set(x, y, TileFloor)
}

func carveH(m *Map, x1, x2, y, width int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	lo := y - (width-1)/2
	for yy := lo; yy < lo+width; yy++ {
		for x := x1; x <= x2; x++ {
			carve(m, x, yy)
		}
	}
}

func carveV(m *Map, y1, y2, x, width int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	lo := x - (width-1)/2
	for xx := lo; xx < lo+width; xx++ {
		for y := y1; y <= y2; y++ {
			carve(m, xx, y)
		}
	}
}

// carveZ joins two anchors with a three-segment corridor bending at the
// midpoint between them.
func carveZ(m *Map, a, b Point, width int, horizontal bool) {
	half := width / 2
	if horizontal {
		midX := (a.X + b.X) / 2
		carveH(m, a.X, midX+half, a.Y, width)
		carveV(m, a.Y, b.Y, midX, width)
		carveH(m, midX-half, b.X, b.Y, width)
		return
	}
	midY := (a.Y + b.Y) / 2
	carveV(m, a.Y, midY+half, a.X, width)
	carveH(m, a.X, b.X, midY, width)
	carveV(m, midY-half, b.Y, b.X, width)
}

func carveL(m *Map, a, b Point, width int, horizontalFirst bool) {
	if horizontalFirst {
		carveH(m, a.X, b.X+width/2, a.Y, width)
		carveV(m, a.Y, b.Y, b.X, width)
		return
	}
	carveV(m, a.Y, b.Y+width/2, a.X, width)
	carveH(m, a.X, b.X, b.Y, width)
}

// placeVaultDoors closes every corridor opening in the ring around a vault.
func placeVaultDoors(m *Map) {
	for _, room := range m.Rooms {
		if room.Kind != RoomVault {
			continue
		}
		for x := room.X - 1; x <= room.X+room.W; x++ {
			for _, y := range [2]int{room.Y - 1, room.Y + room.H} {
				if m.At(x, y) == TileFloor && !insideAnyRoom(m, x, y) {
					m.Set(x, y, TileDoorClosed)
				}
			}
		}
		for y := room.Y; y < room.Y+room.H; y++ {
			for _, x := range [2]int{room.X - 1, room.X + room.W} {
				if m.At(x, y) == TileFloor && !insideAnyRoom(m, x, y) {
					m.Set(x, y, TileDoorClosed)
				}
			}
		}
	}
}

func insideAnyRoom(m *Map, x, y int) bool {
	for _, r := range m.Rooms {
		if r.Contains(Point{X: x, Y: y}) {
			return true
		}
	}
	return false
}

type hazard struct {
	tile    Tile
	freq    float64
	density float64
}

// stampHazards places hazard patches inside room interiors. The outer ring of
// every room stays untouched so corridor entrances remain connected.
func stampHazards(m *Map, p Params, src random.Source) {
	eligible := make([]int, 0, len(m.Rooms))
	for i, r := range m.Rooms {
		if i == m.SpawnRoom || r.W < 3 || r.H < 3 {
			continue
		}
		eligible = append(eligible, i)
	}
	if len(eligible) == 0 {
		return
	}
	hazards := []hazard{
		{tile: TileWater, freq: p.WaterFrequency, density: 1},
		{tile: TilePit, freq: p.PitFrequency, density: 1},
		{tile: TileSpikes, freq: p.SpikeFrequency, density: 0.5},
		{tile: TilePoison, freq: p.PoisonFrequency, density: 1},
	}
	for _, hz := range hazards {
		count := int(math.Round(hz.freq * float64(len(m.Rooms))))
		for i := 0; i < count; i++ {
			room := m.Rooms[eligible[src.Intn(len(eligible))]]
			ix, iy := room.X+1, room.Y+1
			iw, ih := room.W-2, room.H-2
			pw := random.IntBetween(src, 1, iw)
			ph := random.IntBetween(src, 1, ih)
			px := ix + random.IntBetween(src, 0, iw-pw)
			py := iy + random.IntBetween(src, 0, ih-ph)
			for y := py; y < py+ph; y++ {
				for x := px; x < px+pw; x++ {
					if m.At(x, y) != TileFloor {
						continue
					}
					if hz.density < 1 && !random.Chance(src, hz.density) {
						continue
					}
					m.Set(x, y, hz.tile)
				}
			}
		}
	}
}

func decorate(m *Map, p Params, src random.Source) {
	kinds := themeProps[p.Theme]
	if len(kinds) == 0 {
		kinds = themeProps["crypt"]
	}
	color, ok := themeLights[p.Theme]
	if !ok {
		color = themeLights["crypt"]
	}

	floors := make([]Point, 0, len(m.Tiles)/2)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.At(x, y) == TileFloor {
				floors = append(floors, Point{X: x, Y: y})
			}
		}
	}
	props := int(p.PropDensity * float64(len(floors)))
	for i := 0; i < props && len(floors) > 0; i++ {
		pt := floors[src.Intn(len(floors))]
		center := m.CenterOf(pt)
		m.Props = append(m.Props, Prop{X: center.X, Y: center.Y, Kind: kinds[src.Intn(len(kinds))]})
	}

	for _, r := range m.Rooms {
		center := m.CenterOf(r.Center())
		m.Lights = append(m.Lights, Light{
			X:      center.X,
			Y:      center.Y,
			Radius: float64(max(r.W, r.H)) * m.TileSize * 0.75,
			Color:  color,
		})
	}
}
