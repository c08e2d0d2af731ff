package worldgen

import (
	"math"

	"frontier-realm/server/models"
)

// StampShape selects the neighborhood stamped around each corridor point.
type StampShape int

const (
	StampSquare StampShape = iota
	StampDiamond
)

// stamp overwrites the neighborhood of (cx, cy) with terrain t and clears
// obstacles and decorations. Cells outside the map are skipped.
func stamp(g *models.Grid, cx, cy, half int, shape StampShape, t models.Terrain) int {
	n := 0
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			if shape == StampDiamond && abs(dx)+abs(dy) > half {
				continue
			}
			x, y := cx+dx, cy+dy
			if !g.InBounds(x, y) {
				continue
			}
			g.ClearCell(x, y, t)
			n++
		}
	}
	return n
}

// Carve turns a corridor of the given half-width into road. Besides every
// sampled point it also stamps the interpolated line between consecutive
// points so the corridor has no gaps when samples are sparse.
func Carve(g *models.Grid, points []models.PathPoint, half int, shape StampShape) int {
	stamped := 0
	for i, p := range points {
		stamped += stamp(g, p.X, p.Y, half, shape, models.TerrainRoad)
		if i == 0 {
			continue
		}
		prev := points[i-1]
		steps := max(abs(p.X-prev.X), abs(p.Y-prev.Y))
		for s := 1; s < steps; s++ {
			t := float64(s) / float64(steps)
			x := int(math.Round(float64(prev.X) + float64(p.X-prev.X)*t))
			y := int(math.Round(float64(prev.Y) + float64(p.Y-prev.Y)*t))
			stamped += stamp(g, x, y, half, shape, models.TerrainRoad)
		}
	}
	return stamped
}

// CarveClearing clears a disc of dirt for a side area.
func CarveClearing(g *models.Grid, area models.SideArea) {
	r2 := area.Radius * area.Radius
	for dy := -area.Radius; dy <= area.Radius; dy++ {
		for dx := -area.Radius; dx <= area.Radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			x, y := area.CenterX+dx, area.CenterY+dy
			if !g.InBounds(x, y) {
				continue
			}
			if t, _ := g.Terrain(x, y); t == models.TerrainRoad {
				_ = g.SetObstacle(x, y, models.ObstacleNone)
				_ = g.SetDecoration(x, y, models.DecorationNone)
				continue
			}
			g.ClearCell(x, y, models.TerrainDirt)
		}
	}
}

// isOpenGround reports whether a cell may receive vegetation or props:
// grass or sand with nothing on it.
func isOpenGround(g *models.Grid, x, y int) bool {
	t, err := g.Terrain(x, y)
	if err != nil {
		return false
	}
	if t != models.TerrainGrass && t != models.TerrainSand {
		return false
	}
	o, _ := g.Obstacle(x, y)
	d, _ := g.Decoration(x, y)
	return o == models.ObstacleNone && d == models.DecorationNone
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
