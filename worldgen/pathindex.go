package worldgen

import (
	"math"

	"frontier-realm/server/models"
)

const defaultBucketSize = 16

// PathIndex answers nearest-path-point queries with a uniform bucket grid.
// Results are identical to a linear scan over the points in insertion
// order: the minimum Euclidean distance, ties going to the lowest index.
type PathIndex struct {
	points     []models.PathPoint
	bucketSize int
	cols, rows int
	buckets    [][]int32
}

// NewPathIndex indexes points for a width x height map. bucketSize <= 0
// selects the default.
func NewPathIndex(points []models.PathPoint, width, height, bucketSize int) *PathIndex {
	if bucketSize <= 0 {
		bucketSize = defaultBucketSize
	}
	cols := (width + bucketSize - 1) / bucketSize
	rows := (height + bucketSize - 1) / bucketSize
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	idx := &PathIndex{
		points:     points,
		bucketSize: bucketSize,
		cols:       cols,
		rows:       rows,
		buckets:    make([][]int32, cols*rows),
	}
	for i, p := range points {
		b := idx.bucketOf(p.X, p.Y)
		idx.buckets[b] = append(idx.buckets[b], int32(i))
	}
	return idx
}

func (pi *PathIndex) bucketCoords(x, y int) (int, int) {
	bx := clampInt(floorDiv(x, pi.bucketSize), 0, pi.cols-1)
	by := clampInt(floorDiv(y, pi.bucketSize), 0, pi.rows-1)
	return bx, by
}

func (pi *PathIndex) bucketOf(x, y int) int {
	bx, by := pi.bucketCoords(x, y)
	return by*pi.cols + bx
}

// Len returns the number of indexed points.
func (pi *PathIndex) Len() int { return len(pi.points) }

// Points returns the indexed points. The slice must not be modified.
func (pi *PathIndex) Points() []models.PathPoint { return pi.points }

// Nearest returns the distance to the closest path point and its index.
// ok is false when the index is empty.
func (pi *PathIndex) Nearest(x, y int) (dist float64, idx int, ok bool) {
	if len(pi.points) == 0 {
		return math.Inf(1), -1, false
	}

	bx, by := pi.bucketCoords(x, y)
	best := math.MaxInt
	bestIdx := -1

	maxRing := max(pi.cols, pi.rows)
	for ring := 0; ring <= maxRing; ring++ {
		pi.scanRing(bx, by, ring, x, y, &best, &bestIdx)
		if bestIdx < 0 {
			continue
		}
		// Every point in ring+1 or beyond is more than ring*bucketSize away
		// on at least one axis, so it cannot beat or tie the current best.
		bound := ring * pi.bucketSize
		if best <= bound*bound {
			break
		}
	}
	return math.Sqrt(float64(best)), bestIdx, true
}

func (pi *PathIndex) scanRing(bx, by, ring, x, y int, best, bestIdx *int) {
	visit := func(cx, cy int) {
		if cx < 0 || cy < 0 || cx >= pi.cols || cy >= pi.rows {
			return
		}
		for _, i := range pi.buckets[cy*pi.cols+cx] {
			p := pi.points[i]
			dx, dy := p.X-x, p.Y-y
			d2 := dx*dx + dy*dy
			if d2 < *best || (d2 == *best && int(i) < *bestIdx) {
				*best = d2
				*bestIdx = int(i)
			}
		}
	}
	if ring == 0 {
		visit(bx, by)
		return
	}
	for cx := bx - ring; cx <= bx+ring; cx++ {
		visit(cx, by-ring)
		visit(cx, by+ring)
	}
	for cy := by - ring + 1; cy <= by+ring-1; cy++ {
		visit(bx-ring, cy)
		visit(bx+ring, cy)
	}
}

// Distance is Nearest without the index; +Inf for an empty index.
func (pi *PathIndex) Distance(x, y int) float64 {
	d, _, _ := pi.Nearest(x, y)
	return d
}

// WithinDistance reports whether some path point lies strictly closer
// than limit to (x, y).
func (pi *PathIndex) WithinDistance(x, y int, limit float64) bool {
	return pi.Distance(x, y) < limit
}

// NearestLinear is the reference linear scan that Nearest must agree with.
func NearestLinear(points []models.PathPoint, x, y int) (float64, int, bool) {
	if len(points) == 0 {
		return math.Inf(1), -1, false
	}
	best := math.MaxInt
	bestIdx := -1
	for i, p := range points {
		dx, dy := p.X-x, p.Y-y
		if d2 := dx*dx + dy*dy; d2 < best {
			best = d2
			bestIdx = i
		}
	}
	return math.Sqrt(float64(best)), bestIdx, true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
