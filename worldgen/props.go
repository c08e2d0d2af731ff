package worldgen

import (
	"math/rand"

	"frontier-realm/server/models"
)

// ScatterProps sprinkles stones, boulders, flowers and grass tufts over the
// remaining open ground. Blocking props keep the same distance from the
// path as blocking vegetation.
func ScatterProps(g *models.Grid, index *PathIndex, cfg Config, rng *rand.Rand) int {
	placed := 0
	minDist := float64(cfg.CorridorHalfWidth + 1)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if rng.Float64() >= cfg.PropDensity || !isOpenGround(g, x, y) {
				continue
			}
			d := index.Distance(x, y)
			if d < minDist {
				continue
			}
			var prop models.Decoration
			switch r := rng.Float64(); {
			case r < 0.30:
				prop = models.DecorationFlowers
			case r < 0.55:
				prop = models.DecorationGrassTuft
			case r < 0.85:
				prop = models.DecorationStone
			default:
				prop = models.DecorationBoulder
			}
			if prop.Blocks() && d < cfg.ForestBlockingClearance {
				prop = models.DecorationFlowers
			}
			_ = g.SetDecoration(x, y, prop)
			placed++
		}
	}
	return placed
}

// PlaceSignposts stands a signpost beside the road at every transition
// between two consecutive main path segments.
func PlaceSignposts(g *models.Grid, index *PathIndex, path []models.PathPoint, cfg Config, rng *rand.Rand) int {
	placed := 0
	clearance := float64(cfg.CorridorHalfWidth + 1)
	for i := 1; i < len(path); i++ {
		if path[i].Segment == path[i-1].Segment {
			continue
		}
		ref := models.Cell{X: path[i].X, Y: path[i].Y}
		c, ok := FindPlacement(g, index, ref, cfg.CorridorHalfWidth+4, cfg.PlacementAttempts, clearance, rng)
		if !ok {
			continue
		}
		_ = g.SetDecoration(c.X, c.Y, models.DecorationSignpost)
		placed++
	}
	return placed
}

// PlaceHouses builds up to cfg.Houses houses around the village segment.
func PlaceHouses(g *models.Grid, index *PathIndex, path []models.PathPoint, cfg Config, rng *rand.Rand) int {
	village := PointsOfType(path, models.SegmentVillage)
	if len(village) == 0 {
		return 0
	}
	placed := 0
	for i := 0; i < cfg.Houses; i++ {
		p := village[rng.Intn(len(village))]
		c, ok := FindPlacement(g, index, models.Cell{X: p.X, Y: p.Y}, cfg.PlacementRadius, cfg.PlacementAttempts, cfg.PlacementPathClearance, rng)
		if !ok {
			continue
		}
		_ = g.SetDecoration(c.X, c.Y, models.DecorationHouse)
		placed++
	}
	return placed
}
