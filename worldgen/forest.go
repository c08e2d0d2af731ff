package worldgen

import (
	"math/rand"

	"frontier-realm/server/models"
)

// FillForest scatters vegetation over open ground. Density rises with the
// distance to the main path (sparse beside the road, dense far away) and
// is modulated by the noise field; where the field drops below the
// clearing threshold nothing grows at all. Only non-blocking vegetation is
// placed within ForestBlockingClearance of the path.
func FillForest(g *models.Grid, index *PathIndex, noise *Noise, cfg Config, rng *rand.Rand) int {
	planted := 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if !isOpenGround(g, x, y) {
				continue
			}
			d := index.Distance(x, y)
			if d < cfg.ForestNearClearance {
				continue
			}
			n := noise.At(x, y)
			if n < cfg.ForestClearingThreshold {
				continue
			}

			falloff := smoothstep(cfg.ForestNearClearance, cfg.ForestFullDistance, d)
			density := cfg.ForestMinDensity + (cfg.ForestMaxDensity-cfg.ForestMinDensity)*falloff
			density *= 0.6 + 0.4*(n+1)/2
			if rng.Float64() >= density {
				continue
			}

			_ = g.SetDecoration(x, y, pickVegetation(d < cfg.ForestBlockingClearance, n, rng))
			planted++
		}
	}
	return planted
}

func pickVegetation(nearPath bool, n float64, rng *rand.Rand) models.Decoration {
	r := rng.Float64()
	if nearPath {
		switch {
		case r < 0.45:
			return models.DecorationBush
		case r < 0.75:
			return models.DecorationTreeSmall
		default:
			return models.DecorationGrassTuft
		}
	}
	// Higher noise values lean towards conifer stands.
	pineShare := 0.15
	if n > 0.3 {
		pineShare = 0.45
	}
	switch {
	case r < pineShare:
		return models.DecorationPine
	case r < pineShare+0.40:
		return models.DecorationTreeLarge
	case r < pineShare+0.65:
		return models.DecorationTreeSmall
	default:
		return models.DecorationBush
	}
}
