package services

import (
	"testing"

	"frontier-realm/server/models"
)

func warehouses(g *models.Grid, cells ...models.Cell) []models.Structure {
	var out []models.Structure
	for i, c := range cells {
		_ = g.SetObstacle(c.X, c.Y, models.ObstacleWarehouse)
		out = append(out, models.Structure{
			ID:        "warehouse-" + string(rune('a'+i)),
			Kind:      models.StructureWarehouse,
			X:         c.X,
			Y:         c.Y,
			Health:    150,
			MaxHealth: 150,
		})
	}
	return out
}

func TestDestructibleRegistry_DamageUntilDestroyed(t *testing.T) {
	g := models.NewGrid(20, 20)
	structs := warehouses(g, models.Cell{X: 5, Y: 5}, models.Cell{X: 12, Y: 12})
	vc, _ := newCache(t, g, 3, 0)
	at(vc, 5, 5)

	r := NewDestructibleRegistry(structs, g, vc, 0)
	fired := 0
	r.OnObjectiveComplete(func(destroyed, target int) {
		fired++
		if destroyed != 2 || target != 2 {
			t.Errorf("listener got %d/%d", destroyed, target)
		}
	})

	for i, want := range []int{90, 30, 0} {
		if got := r.ApplyDamage("warehouse-a", 60); got != want {
			t.Fatalf("hit %d: health %d, want %d", i+1, got, want)
		}
	}
	s, _ := r.Structure("warehouse-a")
	if !s.Destroyed || s.Health != 0 {
		t.Fatalf("structure = %+v", s)
	}
	if o, _ := g.Obstacle(5, 5); o != models.ObstacleWarehouseRuin {
		t.Fatalf("grid obstacle = %d, want ruin", o)
	}
	if tile, ok := vc.Tile(Key{X: 5, Y: 5, Layer: models.LayerObstacle}); !ok || tile.Tag != uint8(models.ObstacleWarehouseRuin) {
		t.Fatalf("viewport tile = %+v, %v", tile, ok)
	}
	if r.DestroyedCount() != 1 || r.Completed() || fired != 0 {
		t.Fatalf("after one destroy: count %d complete %v fired %d", r.DestroyedCount(), r.Completed(), fired)
	}

	// The second warehouse is off screen; only the grid changes.
	r.ApplyDamage("warehouse-b", 500)
	if o, _ := g.Obstacle(12, 12); o != models.ObstacleWarehouseRuin {
		t.Fatalf("off-screen ruin not written: %d", o)
	}
	if !r.Completed() || fired != 1 {
		t.Fatalf("completion: %v fired %d", r.Completed(), fired)
	}

	r.ApplyDamage("warehouse-a", 60)
	r.ApplyDamage("warehouse-b", 60)
	if fired != 1 || r.DestroyedCount() != 2 {
		t.Fatalf("destroyed structures took damage: fired %d count %d", fired, r.DestroyedCount())
	}
}

func TestDestructibleRegistry_NoOps(t *testing.T) {
	g := models.NewGrid(10, 10)
	r := NewDestructibleRegistry(warehouses(g, models.Cell{X: 1, Y: 1}), g, nil, 0)

	if got := r.ApplyDamage("nope", 100); got != 0 {
		t.Fatalf("unknown id returned %d", got)
	}
	if got := r.ApplyDamage("warehouse-a", 0); got != 150 {
		t.Fatalf("zero damage returned %d", got)
	}
	if got := r.ApplyDamage("warehouse-a", -40); got != 150 {
		t.Fatalf("negative damage returned %d", got)
	}
	if r.DestroyedCount() != 0 {
		t.Fatalf("count = %d", r.DestroyedCount())
	}
	if _, ok := r.Structure("nope"); ok {
		t.Fatal("unknown structure reported")
	}
}

func TestDestructibleRegistry_Target(t *testing.T) {
	g := models.NewGrid(10, 10)
	cells := []models.Cell{{X: 1, Y: 1}, {X: 3, Y: 3}, {X: 5, Y: 5}}

	tests := []struct {
		target, want int
	}{
		{0, 3},
		{-1, 3},
		{2, 2},
		{9, 3},
	}
	for _, tt := range tests {
		r := NewDestructibleRegistry(warehouses(g, cells...), g, nil, tt.target)
		if r.Target() != tt.want {
			t.Errorf("target %d: got %d, want %d", tt.target, r.Target(), tt.want)
		}
	}

	r := NewDestructibleRegistry(warehouses(g, cells...), g, nil, 1)
	fired := 0
	r.OnObjectiveComplete(func(int, int) { fired++ })
	for _, s := range r.Structures() {
		r.ApplyDamage(s.ID, 1000)
	}
	if fired != 1 || r.DestroyedCount() != 3 {
		t.Fatalf("fired %d, destroyed %d", fired, r.DestroyedCount())
	}
}

func TestDestructibleRegistry_EmptyNeverCompletes(t *testing.T) {
	g := models.NewGrid(10, 10)
	r := NewDestructibleRegistry(nil, g, nil, 0)
	r.OnObjectiveComplete(func(int, int) { t.Fatal("listener fired without structures") })
	r.ApplyDamage("warehouse-a", 10)
	if r.Completed() || r.Target() != 0 {
		t.Fatalf("completed %v target %d", r.Completed(), r.Target())
	}
}

func TestDestructibleRegistry_StructuresSortedCopies(t *testing.T) {
	g := models.NewGrid(10, 10)
	in := warehouses(g, models.Cell{X: 1, Y: 1}, models.Cell{X: 2, Y: 2})
	in[0], in[1] = in[1], in[0]
	r := NewDestructibleRegistry(in, g, nil, 0)

	out := r.Structures()
	if out[0].ID != "warehouse-a" || out[1].ID != "warehouse-b" {
		t.Fatalf("order = %s, %s", out[0].ID, out[1].ID)
	}
	out[0].Health = 1
	if s, _ := r.Structure("warehouse-a"); s.Health != 150 {
		t.Fatal("Structures leaked internal state")
	}
}
