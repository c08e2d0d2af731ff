package worldgen

import (
	"math"
	"math/rand"

	"frontier-realm/server/models"
)

// quadBezier evaluates a quadratic Bezier curve at t.
func quadBezier(a, c, b Point, t float64) Point {
	u := 1 - t
	return Point{
		X: u*u*a.X + 2*u*t*c.X + t*t*b.X,
		Y: u*u*a.Y + 2*u*t*c.Y + t*t*b.Y,
	}
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// curveControl returns a control point offset perpendicular to a->b from
// the midpoint by up to strength * |ab|, on a random side.
func curveControl(a, b Point, strength float64, rng *rand.Rand) Point {
	mid := Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	length := dist(a, b)
	if length == 0 || strength <= 0 {
		return mid
	}
	nx, ny := -(b.Y-a.Y)/length, (b.X-a.X)/length
	offset := (rng.Float64()*2 - 1) * strength * length
	return Point{X: mid.X + nx*offset, Y: mid.Y + ny*offset}
}

// BuildPath samples every segment along a randomized quadratic curve and
// returns the ordered main route. Points stay at least margin cells away
// from the map edges and carry their segment's metadata. The shared joint
// between consecutive segments is emitted once.
func BuildPath(segments []Segment, width, height, samples int, strength float64, margin int, rng *rand.Rand) []models.PathPoint {
	if samples < 2 {
		samples = 2
	}
	points := make([]models.PathPoint, 0, len(segments)*samples)
	for si, seg := range segments {
		ctrl := curveControl(seg.From, seg.To, strength, rng)
		start := 0
		if si > 0 {
			start = 1
		}
		for i := start; i < samples; i++ {
			t := float64(i) / float64(samples-1)
			p := quadBezier(seg.From, ctrl, seg.To, t)
			x, y := clampToMargin(p, width, height, margin)
			points = append(points, models.PathPoint{
				X:            x,
				Y:            y,
				SegmentType:  seg.Type,
				HasSideQuest: seg.SideQuest,
				Segment:      si,
			})
		}
	}
	return points
}

func clampToMargin(p Point, width, height, margin int) (int, int) {
	x := int(math.Round(p.X))
	y := int(math.Round(p.Y))
	return clampInt(x, margin, width-1-margin), clampInt(y, margin, height-1-margin)
}

// PointsOfType returns every point sampled from segments of the given type,
// in route order.
func PointsOfType(points []models.PathPoint, kind models.SegmentType) []models.PathPoint {
	var out []models.PathPoint
	for _, p := range points {
		if p.SegmentType == kind {
			out = append(out, p)
		}
	}
	return out
}

// SegmentPoints returns the points sampled from segment index si.
func SegmentPoints(points []models.PathPoint, si int) []models.PathPoint {
	var out []models.PathPoint
	for _, p := range points {
		if p.Segment == si {
			out = append(out, p)
		}
	}
	return out
}

// sampleCurve samples a single-control Bezier from a to b into n points.
func sampleCurve(a, ctrl, b Point, n int, width, height, margin int, kind models.SegmentType, segment int) []models.PathPoint {
	if n < 2 {
		n = 2
	}
	out := make([]models.PathPoint, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		p := quadBezier(a, ctrl, b, t)
		x, y := clampToMargin(p, width, height, margin)
		out = append(out, models.PathPoint{X: x, Y: y, SegmentType: kind, Segment: segment})
	}
	return out
}
