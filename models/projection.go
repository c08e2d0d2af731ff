package models

import "math"

// Isometric tile footprint in world units.
const (
	TileWidth  = 64
	TileHeight = 32

	halfTileW = TileWidth / 2
	halfTileH = TileHeight / 2
)

// GridToWorld returns the world position of the center of tile (x, y).
func GridToWorld(x, y int) (float64, float64) {
	return float64((x - y) * halfTileW), float64((x + y) * halfTileH)
}

// WorldToGrid returns the tile containing the world position. It is the
// exact inverse of GridToWorld for integer grid coordinates.
func WorldToGrid(wx, wy float64) (int, int) {
	u := wx / halfTileW
	v := wy / halfTileH
	gx := (u + v) / 2
	gy := (v - u) / 2
	return int(math.Floor(gx + 0.5)), int(math.Floor(gy + 0.5))
}
