package worldgen

import (
	"math"
	"math/rand"
)

// octave is one sinusoidal layer of Noise.
type octave struct {
	fx, fy float64
	phaseX float64
	phaseY float64
	diagF  float64
	diagP  float64
	weight float64
}

// Noise is a layered trigonometric field in [-1, 1]: sine/cosine products
// at unrelated frequencies plus a diagonal term per octave.
type Noise struct {
	octaves []octave
	norm    float64
}

// NewNoise draws fresh frequencies and phases for a session.
func NewNoise(rng *rand.Rand) *Noise {
	n := &Noise{}
	base := []struct {
		freq, weight float64
	}{
		{0.021, 0.50},
		{0.057, 0.30},
		{0.131, 0.20},
	}
	for _, b := range base {
		jitter := 0.8 + rng.Float64()*0.4
		o := octave{
			fx:     b.freq * jitter,
			fy:     b.freq * (0.8 + rng.Float64()*0.4),
			phaseX: rng.Float64() * 2 * math.Pi,
			phaseY: rng.Float64() * 2 * math.Pi,
			diagF:  b.freq * 0.7,
			diagP:  rng.Float64() * 2 * math.Pi,
			weight: b.weight,
		}
		n.octaves = append(n.octaves, o)
		n.norm += b.weight
	}
	return n
}

// At samples the field at a grid cell.
func (n *Noise) At(x, y int) float64 {
	fx, fy := float64(x), float64(y)
	sum := 0.0
	for _, o := range n.octaves {
		v := math.Sin(fx*o.fx+o.phaseX)*math.Cos(fy*o.fy+o.phaseY)*0.7 +
			math.Sin((fx+fy)*o.diagF+o.diagP)*0.3
		sum += v * o.weight
	}
	if n.norm == 0 {
		return 0
	}
	return clampFloat(sum/n.norm, -1, 1)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// smoothstep maps t in [edge0, edge1] onto a smooth 0..1 ramp.
func smoothstep(edge0, edge1, t float64) float64 {
	if edge1 <= edge0 {
		if t < edge0 {
			return 0
		}
		return 1
	}
	x := clampFloat((t-edge0)/(edge1-edge0), 0, 1)
	return x * x * (3 - 2*x)
}
