package tilemap

import "horde-hunt/server/internal/geom"

// MergeWalls derives collision rectangles from wall tiles. Each unclaimed wall
// tile grows right while the row stays unclaimed wall, then down while the
// whole span of the next row does, and becomes one rectangle.
func MergeWalls(m *Map) []geom.Rect {
	claimed := make([]bool, len(m.Tiles))
	free := func(x, y int) bool {
		idx := y*m.W + x
		return m.Tiles[idx] == TileWall && !claimed[idx]
	}

	var rects []geom.Rect
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !free(x, y) {
				continue
			}
			w := 1
			for x+w < m.W && free(x+w, y) {
				w++
			}
			h := 1
		grow:
			for y+h < m.H {
				for xx := x; xx < x+w; xx++ {
					if !free(xx, y+h) {
						break grow
					}
				}
				h++
			}
			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					claimed[yy*m.W+xx] = true
				}
			}
			rects = append(rects, geom.Rect{
				X: float64(x) * m.TileSize,
				Y: float64(y) * m.TileSize,
				W: float64(w) * m.TileSize,
				H: float64(h) * m.TileSize,
			})
		}
	}
	return rects
}
