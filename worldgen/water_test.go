package worldgen

import (
	"math/rand"
	"testing"

	"frontier-realm/server/models"
)

func TestCarveRiver_LeavesFordAtPath(t *testing.T) {
	g := models.NewGrid(80, 80)
	path := straightPath(40, 80)
	Carve(g, path, 3, StampSquare)
	index := NewPathIndex(path, 80, 80, 0)

	n := CarveRiver(g, index, []Point{{X: 20, Y: 0}, {X: 20, Y: 79}}, 3, 6)
	if n == 0 {
		t.Fatal("no water written")
	}
	water := 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if tt, _ := g.Terrain(x, y); tt != models.TerrainWater {
				continue
			}
			water++
			if d, _, _ := index.Nearest(x, y); d < 6 {
				t.Fatalf("water at (%d,%d) only %.1f from the path", x, y, d)
			}
			if x < 19 || x > 21 {
				t.Fatalf("river wider than 3 at (%d,%d)", x, y)
			}
		}
	}
	if water != n {
		t.Fatalf("reported %d cells, grid has %d", n, water)
	}
	if !g.IsWalkable(20, 40) {
		t.Fatal("ford across the road is blocked")
	}
	if g.IsWalkable(20, 10) {
		t.Fatal("river cell is walkable")
	}
}

func TestLakeFits(t *testing.T) {
	g := models.NewGrid(100, 100)
	path := straightPath(50, 100)
	Carve(g, path, 3, StampSquare)
	index := NewPathIndex(path, 100, 100, 0)

	tests := []struct {
		name   string
		x0, y0 int
		want   bool
	}{
		{"far from path", 10, 5, true},
		{"over the road", 10, 45, false},
		{"center too close", 10, 32, false},
		{"touches map edge", 1, 5, false},
	}
	for _, tt := range tests {
		if got := lakeFits(g, index, tt.x0, tt.y0, 12, 10, 4, 6); got != tt.want {
			t.Errorf("%s: lakeFits = %v, want %v", tt.name, got, tt.want)
		}
	}

	fillLake(g, 10, 5, 12, 10, rand.New(rand.NewSource(1)))
	if lakeFits(g, index, 14, 8, 12, 10, 4, 6) {
		t.Error("lake overlapping an existing lake accepted")
	}
}

func TestNoise_RangeAndSessions(t *testing.T) {
	a := NewNoise(rand.New(rand.NewSource(5)))
	b := NewNoise(rand.New(rand.NewSource(5)))
	c := NewNoise(rand.New(rand.NewSource(6)))

	differs := false
	for y := 0; y < 200; y += 7 {
		for x := 0; x < 200; x += 7 {
			v := a.At(x, y)
			if v < -1 || v > 1 {
				t.Fatalf("noise %v out of range at (%d,%d)", v, x, y)
			}
			if v != b.At(x, y) {
				t.Fatal("same seed produced different noise")
			}
			if v != c.At(x, y) {
				differs = true
			}
		}
	}
	if !differs {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestCarve_GaplessAndShapes(t *testing.T) {
	g := models.NewGrid(40, 40)
	Carve(g, []models.PathPoint{{X: 2, Y: 10}, {X: 30, Y: 10}}, 0, StampSquare)
	for x := 2; x <= 30; x++ {
		if tt, _ := g.Terrain(x, 10); tt != models.TerrainRoad {
			t.Fatalf("gap in corridor at x=%d", x)
		}
	}

	sq := models.NewGrid(20, 20)
	di := models.NewGrid(20, 20)
	if n := Carve(sq, []models.PathPoint{{X: 10, Y: 10}}, 2, StampSquare); n != 25 {
		t.Fatalf("square stamp = %d", n)
	}
	if n := Carve(di, []models.PathPoint{{X: 10, Y: 10}}, 2, StampDiamond); n != 13 {
		t.Fatalf("diamond stamp = %d", n)
	}
}
