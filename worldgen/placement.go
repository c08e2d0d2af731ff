package worldgen

import (
	"math"
	"math/rand"

	"frontier-realm/server/models"
)

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// placementOK reports whether an object may stand on (x, y).
func placementOK(g *models.Grid, index *PathIndex, x, y int, clearance float64) bool {
	if !g.IsWalkable(x, y) || !isOpenGround(g, x, y) {
		return false
	}
	return !index.WithinDistance(x, y, clearance)
}

// FindPlacement sweeps outward from ref along a golden-angle spiral of the
// given radius and returns the first cell that is in bounds, walkable,
// empty and at least clearance away from the main path. false means the
// attempt budget ran out.
func FindPlacement(g *models.Grid, index *PathIndex, ref models.Cell, radius, attempts int, clearance float64, rng *rand.Rand) (models.Cell, bool) {
	if attempts <= 0 || radius <= 0 {
		return models.Cell{}, false
	}
	phase := rng.Float64() * 2 * math.Pi
	for i := 0; i < attempts; i++ {
		r := float64(radius) * math.Sqrt((float64(i)+0.5)/float64(attempts))
		a := phase + float64(i)*goldenAngle
		x := ref.X + int(math.Round(r*math.Cos(a)))
		y := ref.Y + int(math.Round(r*math.Sin(a)))
		if placementOK(g, index, x, y, clearance) {
			return models.Cell{X: x, Y: y}, true
		}
	}
	return models.Cell{}, false
}
