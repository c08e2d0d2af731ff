package services

import (
	"math/bits"

	"frontier-realm/server/models"
)

// ExplorationTracker remembers every cell that has been within the
// exploration radius of an observer. The visited set only grows.
type ExplorationTracker struct {
	width, height int
	radius        int
	offsets       []models.Cell
	bits          []uint64
	count         int

	hasLast bool
	last    models.Cell
}

// NewExplorationTracker creates a tracker for a width x height map.
func NewExplorationTracker(width, height, radius int) *ExplorationTracker {
	if radius < 0 {
		radius = 0
	}
	var offsets []models.Cell
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				offsets = append(offsets, models.Cell{X: dx, Y: dy})
			}
		}
	}
	return &ExplorationTracker{
		width:   width,
		height:  height,
		radius:  radius,
		offsets: offsets,
		bits:    make([]uint64, (width*height+63)/64),
	}
}

// Observe marks the disc around a world position as visited and returns
// how many cells were new.
func (et *ExplorationTracker) Observe(worldX, worldY float64) int {
	gx, gy := models.WorldToGrid(worldX, worldY)
	return et.ObserveCell(gx, gy)
}

// ObserveCell is Observe for a grid cell. A repeated observation from the
// same cell is skipped.
func (et *ExplorationTracker) ObserveCell(gx, gy int) int {
	c := models.Cell{X: gx, Y: gy}
	if et.hasLast && et.last == c {
		return 0
	}
	et.hasLast = true
	et.last = c

	added := 0
	for _, o := range et.offsets {
		x, y := gx+o.X, gy+o.Y
		if x < 0 || y < 0 || x >= et.width || y >= et.height {
			continue
		}
		i := y*et.width + x
		word, bit := i/64, uint64(1)<<(uint(i)%64)
		if et.bits[word]&bit != 0 {
			continue
		}
		et.bits[word] |= bit
		added++
	}
	et.count += added
	return added
}

// Visited reports whether (x, y) has been observed.
func (et *ExplorationTracker) Visited(x, y int) bool {
	if x < 0 || y < 0 || x >= et.width || y >= et.height {
		return false
	}
	i := y*et.width + x
	return et.bits[i/64]&(uint64(1)<<(uint(i)%64)) != 0
}

// Count returns the number of visited cells.
func (et *ExplorationTracker) Count() int { return et.count }

// Radius returns the observation radius in tiles.
func (et *ExplorationTracker) Radius() int { return et.radius }

// Snapshot returns every visited cell in row-major order.
func (et *ExplorationTracker) Snapshot() []models.Cell {
	out := make([]models.Cell, 0, et.count)
	for w, word := range et.bits {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			i := w*64 + b
			out = append(out, models.Cell{X: i % et.width, Y: i / et.width})
			word &^= 1 << uint(b)
		}
	}
	return out
}

// Bitmap returns a copy of the visited bitset, row-major, bit i of word
// i/64 for cell i.
func (et *ExplorationTracker) Bitmap() []uint64 {
	out := make([]uint64, len(et.bits))
	copy(out, et.bits)
	return out
}
