package models

import (
	"errors"
	"testing"
)

func TestGrid_OutOfBoundsRejected(t *testing.T) {
	g := NewGrid(10, 8)

	cells := [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 8}, {100, 100}}
	for _, c := range cells {
		if _, err := g.Terrain(c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Terrain(%d,%d): expected ErrOutOfBounds, got %v", c[0], c[1], err)
		}
		if err := g.SetObstacle(c[0], c[1], ObstacleFence); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SetObstacle(%d,%d): expected ErrOutOfBounds, got %v", c[0], c[1], err)
		}
		if _, err := g.Get(LayerDecoration, c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Get(%d,%d): expected ErrOutOfBounds, got %v", c[0], c[1], err)
		}
		if g.IsWalkable(c[0], c[1]) {
			t.Errorf("IsWalkable(%d,%d) should be false out of bounds", c[0], c[1])
		}
	}
}

func TestGrid_TerrainNeverEmpty(t *testing.T) {
	g := NewGrid(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			tr, err := g.Terrain(x, y)
			if err != nil || tr != TerrainGrass {
				t.Fatalf("new grid cell (%d,%d) = %v, %v; want grass", x, y, tr, err)
			}
		}
	}
	if err := g.SetTerrain(1, 1, 0); !errors.Is(err, ErrEmptyTerrain) {
		t.Errorf("expected ErrEmptyTerrain, got %v", err)
	}
	if err := g.Set(LayerTerrain, 1, 1, 0); !errors.Is(err, ErrEmptyTerrain) {
		t.Errorf("generic Set: expected ErrEmptyTerrain, got %v", err)
	}
}

func TestGrid_IsWalkableRuleTable(t *testing.T) {
	tests := []struct {
		name       string
		terrain    Terrain
		obstacle   Obstacle
		decoration Decoration
		want       bool
	}{
		{"grass", TerrainGrass, ObstacleNone, DecorationNone, true},
		{"road", TerrainRoad, ObstacleNone, DecorationNone, true},
		{"sand", TerrainSand, ObstacleNone, DecorationNone, true},
		{"dirt", TerrainDirt, ObstacleNone, DecorationNone, true},
		{"water", TerrainWater, ObstacleNone, DecorationNone, false},
		{"water with reeds", TerrainWater, ObstacleNone, DecorationReeds, false},
		{"warehouse", TerrainGrass, ObstacleWarehouse, DecorationNone, false},
		{"ruin", TerrainGrass, ObstacleWarehouseRuin, DecorationNone, false},
		{"fence", TerrainRoad, ObstacleFence, DecorationNone, false},
		{"large tree", TerrainGrass, ObstacleNone, DecorationTreeLarge, false},
		{"pine", TerrainGrass, ObstacleNone, DecorationPine, false},
		{"stone", TerrainGrass, ObstacleNone, DecorationStone, false},
		{"boulder", TerrainGrass, ObstacleNone, DecorationBoulder, false},
		{"signpost", TerrainRoad, ObstacleNone, DecorationSignpost, false},
		{"house", TerrainGrass, ObstacleNone, DecorationHouse, false},
		{"small tree", TerrainGrass, ObstacleNone, DecorationTreeSmall, true},
		{"bush", TerrainGrass, ObstacleNone, DecorationBush, true},
		{"flowers", TerrainGrass, ObstacleNone, DecorationFlowers, true},
		{"grass tuft", TerrainGrass, ObstacleNone, DecorationGrassTuft, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(3, 3)
			if err := g.SetTerrain(1, 1, tt.terrain); err != nil {
				t.Fatal(err)
			}
			if err := g.SetObstacle(1, 1, tt.obstacle); err != nil {
				t.Fatal(err)
			}
			if err := g.SetDecoration(1, 1, tt.decoration); err != nil {
				t.Fatal(err)
			}
			if got := g.IsWalkable(1, 1); got != tt.want {
				t.Errorf("IsWalkable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGrid_GenericAccessorsMatchTyped(t *testing.T) {
	g := NewGrid(5, 5)
	if err := g.Set(LayerObstacle, 2, 3, uint8(ObstacleRadarTower)); err != nil {
		t.Fatal(err)
	}
	o, _ := g.Obstacle(2, 3)
	if o != ObstacleRadarTower {
		t.Errorf("Obstacle = %v, want radar tower", o)
	}
	v, err := g.Get(LayerObstacle, 2, 3)
	if err != nil || Obstacle(v) != ObstacleRadarTower {
		t.Errorf("Get = %v, %v", v, err)
	}
	if _, err := g.Get(Layer(9), 0, 0); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("expected ErrUnknownLayer, got %v", err)
	}
}

func TestGrid_CloneIsDeep(t *testing.T) {
	g := NewGrid(3, 3)
	c := g.Clone()
	_ = c.SetTerrain(0, 0, TerrainWater)
	if tr, _ := g.Terrain(0, 0); tr != TerrainGrass {
		t.Error("clone shares terrain buffer with original")
	}
}

func TestProjection_ExactInverse(t *testing.T) {
	for y := -3; y < 40; y++ {
		for x := -3; x < 40; x++ {
			wx, wy := GridToWorld(x, y)
			gx, gy := WorldToGrid(wx, wy)
			if gx != x || gy != y {
				t.Fatalf("WorldToGrid(GridToWorld(%d,%d)) = (%d,%d)", x, y, gx, gy)
			}
		}
	}
}

func TestProjection_PointInsideTileMapsToTile(t *testing.T) {
	wx, wy := GridToWorld(10, 7)
	// Small offsets inside the diamond stay in the same tile.
	offsets := [][2]float64{{5, 0}, {-5, 0}, {0, 5}, {0, -5}, {10, 3}}
	for _, o := range offsets {
		gx, gy := WorldToGrid(wx+o[0], wy+o[1])
		if gx != 10 || gy != 7 {
			t.Errorf("offset %v mapped to (%d,%d), want (10,7)", o, gx, gy)
		}
	}
}

func TestObstacle_Ruin(t *testing.T) {
	if ObstacleWarehouse.Ruin() != ObstacleWarehouseRuin {
		t.Error("warehouse ruin mismatch")
	}
	if ObstacleRadarTower.Ruin() != ObstacleRadarRuin {
		t.Error("radar ruin mismatch")
	}
	if ObstacleFence.Ruin() != ObstacleFence {
		t.Error("non-destructible obstacles have no ruin")
	}
}
