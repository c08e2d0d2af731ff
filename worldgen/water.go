package worldgen

import (
	"math"
	"math/rand"

	"frontier-realm/server/models"
)

// lakeFits checks the separation rule for a lake bounding box: no road,
// clearing or water inside the box grown by margin, and the box center far
// enough from the main path.
func lakeFits(g *models.Grid, index *PathIndex, x0, y0, w, h, margin int, clearance float64) bool {
	if x0-margin < 0 || y0-margin < 0 || x0+w+margin > g.Width || y0+h+margin > g.Height {
		return false
	}
	cx, cy := x0+w/2, y0+h/2
	if index.WithinDistance(cx, cy, math.Hypot(float64(w), float64(h))/2+clearance) {
		return false
	}
	for y := y0 - margin; y < y0+h+margin; y++ {
		for x := x0 - margin; x < x0+w+margin; x++ {
			t, _ := g.Terrain(x, y)
			if t == models.TerrainRoad || t == models.TerrainDirt || t == models.TerrainWater {
				return false
			}
		}
	}
	return true
}

// PlaceLakes drops up to cfg.Lakes elliptical lakes into validated bounding
// boxes. Each lake has cfg.LakeAttempts tries; failures are skipped.
// Returns the number of lakes placed.
func PlaceLakes(g *models.Grid, index *PathIndex, cfg Config, rng *rand.Rand) int {
	placed := 0
	span := cfg.LakeMaxSize - cfg.LakeMinSize + 1
	for i := 0; i < cfg.Lakes; i++ {
		for attempt := 0; attempt < cfg.LakeAttempts; attempt++ {
			w := cfg.LakeMinSize + rng.Intn(span)
			h := cfg.LakeMinSize + rng.Intn(span)
			freeX := g.Width - w - 2*cfg.LakeMargin
			freeY := g.Height - h - 2*cfg.LakeMargin
			if freeX <= 0 || freeY <= 0 {
				break
			}
			x0 := cfg.LakeMargin + rng.Intn(freeX)
			y0 := cfg.LakeMargin + rng.Intn(freeY)
			if !lakeFits(g, index, x0, y0, w, h, cfg.LakeMargin, cfg.RiverPathClearance) {
				continue
			}
			fillLake(g, x0, y0, w, h, rng)
			placed++
			break
		}
	}
	return placed
}

func fillLake(g *models.Grid, x0, y0, w, h int, rng *rand.Rand) {
	rx, ry := float64(w)/2, float64(h)/2
	cx, cy := float64(x0)+rx, float64(y0)+ry
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			edge := 1 + (rng.Float64()-0.5)*0.15
			if dx*dx+dy*dy <= edge {
				g.ClearCell(x, y, models.TerrainWater)
			}
		}
	}
	dressShore(g, x0-1, y0-1, w+2, h+2, rng)
}

// dressShore turns grass next to water into sand and puts reeds on some
// water cells touching land.
func dressShore(g *models.Grid, x0, y0, w, h int, rng *rand.Rand) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			t, err := g.Terrain(x, y)
			if err != nil {
				continue
			}
			touchesWater, touchesLand := false, false
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nt, err := g.Terrain(x+d[0], y+d[1])
				if err != nil {
					continue
				}
				if nt == models.TerrainWater {
					touchesWater = true
				} else {
					touchesLand = true
				}
			}
			switch {
			case t == models.TerrainGrass && touchesWater && rng.Float64() < 0.7:
				_ = g.SetTerrain(x, y, models.TerrainSand)
			case t == models.TerrainWater && touchesLand && rng.Float64() < 0.3:
				_ = g.SetDecoration(x, y, models.DecorationReeds)
			}
		}
	}
}

// CarveRiver draws a fixed-width water line through the given waypoints by
// linear interpolation. Cells within cfg.RiverPathClearance of the main
// path, roads and clearings are left dry. Returns the number of water cells
// written.
func CarveRiver(g *models.Grid, index *PathIndex, waypoints []Point, width int, clearance float64) int {
	if width < 1 {
		width = 1
	}
	lo, hi := -(width-1)/2, width/2
	written := 0
	wet := func(x, y int) {
		for dy := lo; dy <= hi; dy++ {
			for dx := lo; dx <= hi; dx++ {
				cx, cy := x+dx, y+dy
				t, err := g.Terrain(cx, cy)
				if err != nil || t == models.TerrainWater || t == models.TerrainRoad || t == models.TerrainDirt {
					continue
				}
				if index.WithinDistance(cx, cy, clearance) {
					continue
				}
				g.ClearCell(cx, cy, models.TerrainWater)
				written++
			}
		}
	}
	for i := 1; i < len(waypoints); i++ {
		a, b := waypoints[i-1], waypoints[i]
		steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
		if steps == 0 {
			steps = 1
		}
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			wet(int(math.Round(a.X+(b.X-a.X)*t)), int(math.Round(a.Y+(b.Y-a.Y)*t)))
		}
	}
	return written
}

// riverWaypoints returns an edge-to-edge polyline with jittered interior
// waypoints, running either west-east or north-south.
func riverWaypoints(width, height int, rng *rand.Rand) []Point {
	horizontal := rng.Intn(2) == 0
	n := 4 + rng.Intn(3)
	pts := make([]Point, 0, n+2)
	w, h := float64(width-1), float64(height-1)
	if horizontal {
		y := h * (0.2 + rng.Float64()*0.6)
		for i := 0; i <= n+1; i++ {
			x := w * float64(i) / float64(n+1)
			pts = append(pts, Point{X: x, Y: clampFloat(y+(rng.Float64()-0.5)*0.2*h, 0, h)})
		}
		return pts
	}
	x := w * (0.2 + rng.Float64()*0.6)
	for i := 0; i <= n+1; i++ {
		y := h * float64(i) / float64(n+1)
		pts = append(pts, Point{X: clampFloat(x+(rng.Float64()-0.5)*0.2*w, 0, w), Y: y})
	}
	return pts
}

// streamWaypoints returns a short meandering polyline starting away from
// the main path.
func streamWaypoints(g *models.Grid, index *PathIndex, minPathDist float64, rng *rand.Rand) []Point {
	for attempt := 0; attempt < 20; attempt++ {
		x, y := rng.Intn(g.Width), rng.Intn(g.Height)
		if index.WithinDistance(x, y, minPathDist) {
			continue
		}
		angle := rng.Float64() * 2 * math.Pi
		length := 40 + rng.Float64()*50
		legs := 3 + rng.Intn(3)
		pts := []Point{{X: float64(x), Y: float64(y)}}
		for i := 0; i < legs; i++ {
			angle += (rng.Float64() - 0.5) * math.Pi / 2
			last := pts[len(pts)-1]
			step := length / float64(legs)
			pts = append(pts, Point{
				X: clampFloat(last.X+math.Cos(angle)*step, 0, float64(g.Width-1)),
				Y: clampFloat(last.Y+math.Sin(angle)*step, 0, float64(g.Height-1)),
			})
		}
		return pts
	}
	return nil
}

// CarveWaterways draws cfg.Rivers rivers and cfg.Streams streams and
// returns the total number of water cells written.
func CarveWaterways(g *models.Grid, index *PathIndex, cfg Config, rng *rand.Rand) int {
	cells := 0
	for i := 0; i < cfg.Rivers; i++ {
		cells += CarveRiver(g, index, riverWaypoints(g.Width, g.Height, rng), cfg.RiverWidth, cfg.RiverPathClearance)
	}
	for i := 0; i < cfg.Streams; i++ {
		pts := streamWaypoints(g, index, cfg.ForestFullDistance/2, rng)
		if pts == nil {
			continue
		}
		cells += CarveRiver(g, index, pts, cfg.StreamWidth, cfg.RiverPathClearance)
	}
	return cells
}
