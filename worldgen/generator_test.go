package worldgen

import (
	"errors"
	"math/rand"
	"testing"

	"frontier-realm/server/models"
)

func generate(t *testing.T, size int, seed int64) *World {
	t.Helper()
	w, err := Generate(testConfig(size), rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return w
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = -5
	if _, err := Generate(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.LakeMinSize, cfg.LakeMaxSize = 30, 10
	if _, err := Generate(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for lake range, got %v", err)
	}
}

func TestGenerate_CorridorIsOpenRoad(t *testing.T) {
	w := generate(t, 300, 11)
	half := w.Config.CorridorHalfWidth
	for _, p := range w.Path {
		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				x, y := p.X+dx, p.Y+dy
				if !w.Grid.InBounds(x, y) {
					continue
				}
				if tr, _ := w.Grid.Terrain(x, y); tr != models.TerrainRoad {
					t.Fatalf("corridor cell (%d,%d) is terrain %d", x, y, tr)
				}
				if !w.Grid.IsWalkable(x, y) {
					t.Fatalf("corridor cell (%d,%d) not walkable", x, y)
				}
			}
		}
	}
	start := w.Start()
	if !w.Grid.IsWalkable(start.X, start.Y) {
		t.Fatal("start must be walkable")
	}
}

func TestGenerate_NoBlockingVegetationNearPath(t *testing.T) {
	w := generate(t, 300, 12)
	for y := 0; y < w.Grid.Height; y++ {
		for x := 0; x < w.Grid.Width; x++ {
			d, _ := w.Grid.Decoration(x, y)
			switch d {
			case models.DecorationTreeLarge, models.DecorationPine, models.DecorationStone, models.DecorationBoulder:
			default:
				continue
			}
			if w.Index.Distance(x, y) < w.Config.ForestBlockingClearance {
				t.Fatalf("blocking %d at (%d,%d) within clearance", d, x, y)
			}
		}
	}
	if w.Report.Trees == 0 {
		t.Error("expected some forest")
	}
}

func TestGenerate_StructuresOnGrid(t *testing.T) {
	w := generate(t, 400, 13)
	if len(w.Structures) == 0 {
		t.Fatal("expected structures")
	}
	seen := map[string]bool{}
	for _, s := range w.Structures {
		if seen[s.ID] {
			t.Fatalf("duplicate structure id %s", s.ID)
		}
		seen[s.ID] = true
		if s.Destroyed || s.Health != s.MaxHealth || s.Health <= 0 {
			t.Errorf("structure %s starts as %+v", s.ID, s)
		}
		o, err := w.Grid.Obstacle(s.X, s.Y)
		if err != nil || o != s.Kind.Obstacle() {
			t.Errorf("structure %s: grid obstacle %d, %v", s.ID, o, err)
		}
		if w.Index.Distance(s.X, s.Y) < w.Config.PlacementPathClearance {
			t.Errorf("structure %s too close to the path", s.ID)
		}
	}
	if got := w.Report.Structures + w.Report.StructuresSkipped; got != 2*w.Config.WarehousesPerCombat+w.Config.RadarTowers {
		t.Errorf("placed+skipped = %d", got)
	}
}

func TestGenerate_SideAreasAreCleared(t *testing.T) {
	w := generate(t, 400, 14)
	if len(w.SideAreas) != len(w.Branches) {
		t.Fatalf("%d side areas for %d branches", len(w.SideAreas), len(w.Branches))
	}
	for _, a := range w.SideAreas {
		if !w.Grid.IsWalkable(a.CenterX, a.CenterY) {
			t.Errorf("side area %s center not walkable", a.ID)
		}
		if a.Discovered {
			t.Errorf("side area %s starts discovered", a.ID)
		}
	}
	if w.Report.Branches+w.Report.BranchesSkipped == 0 {
		t.Error("no branch attempts recorded")
	}
}

func TestGenerate_FreshSessionsDiffer(t *testing.T) {
	a := generate(t, 200, 21)
	b := generate(t, 200, 22)
	same := true
	for i := range a.Path {
		if a.Path[i] != b.Path[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced the same route")
	}
}
