package services

import (
	"math/rand"
	"testing"

	"frontier-realm/server/logger"
	"frontier-realm/server/models"
	"frontier-realm/server/scene"
)

func init() {
	logger.Silence()
}

func newCache(t *testing.T, g *models.Grid, radius, hysteresis int) (*ViewportCache, *scene.Headless) {
	t.Helper()
	h := scene.NewHeadless()
	cfg := DefaultViewportConfig()
	cfg.RenderRadius, cfg.Hysteresis = radius, hysteresis
	return NewViewportCache(g, h, cfg), h
}

// at moves the camera onto the center of grid cell (x, y).
func at(vc *ViewportCache, x, y int) UpdateResult {
	wx, wy := models.GridToWorld(x, y)
	return vc.Update(wx, wy)
}

func checkCounters(t *testing.T, vc *ViewportCache, h *scene.Headless) {
	t.Helper()
	st := vc.Stats()
	if st.Created-st.Destroyed != st.CurrentLive {
		t.Fatalf("created %d - destroyed %d != live %d", st.Created, st.Destroyed, st.CurrentLive)
	}
	if st.CurrentLive != vc.Len() {
		t.Fatalf("live %d != materialized %d", st.CurrentLive, vc.Len())
	}
	if hs := h.Stats(); hs.SpritesLive != st.CurrentLive || hs.DoubleReleases != 0 {
		t.Fatalf("scene %+v vs cache %+v", hs, st)
	}
	if st.PeakLive < st.CurrentLive {
		t.Fatalf("peak %d below live %d", st.PeakLive, st.CurrentLive)
	}
}

func TestViewportCache_ScrollAcrossOpenGrass(t *testing.T) {
	g := models.NewGrid(600, 600)
	vc, h := newCache(t, g, 25, 2)

	res := at(vc, 300, 300)
	if res.Skipped || res.Created != 2601 || res.Visible != 2601 {
		t.Fatalf("first update = %+v", res)
	}

	res = at(vc, 301, 300)
	if !res.Skipped || res.Created != 0 || res.Destroyed != 0 {
		t.Fatalf("one-tile move should be ignored, got %+v", res)
	}
	if c, _ := vc.Center(); c != (models.Cell{X: 300, Y: 300}) {
		t.Fatalf("center moved to %+v", c)
	}

	res = at(vc, 330, 300)
	if res.Created != 1530 || res.Destroyed != 1530 {
		t.Fatalf("30-tile move = %+v", res)
	}
	if st := vc.Stats(); st.CurrentLive != 2601 || st.PeakLive != 2601 {
		t.Fatalf("stats after scroll = %+v", st)
	}
	checkCounters(t, vc, h)
}

func TestViewportCache_HysteresisThreshold(t *testing.T) {
	g := models.NewGrid(100, 100)
	vc, _ := newCache(t, g, 5, 3)

	at(vc, 50, 50)
	if res := at(vc, 52, 48); !res.Skipped {
		t.Fatalf("move below threshold on both axes applied: %+v", res)
	}
	if res := at(vc, 50, 53); res.Skipped {
		t.Fatalf("move reaching threshold on one axis ignored: %+v", res)
	}
	if c, _ := vc.Center(); c != (models.Cell{X: 50, Y: 53}) {
		t.Fatalf("center = %+v", c)
	}
}

func expectedVisible(g *models.Grid, cx, cy, radius int) map[Key]struct{} {
	want := make(map[Key]struct{})
	for y := max(cy-radius, 0); y <= min(cy+radius, g.Height-1); y++ {
		for x := max(cx-radius, 0); x <= min(cx+radius, g.Width-1); x++ {
			for _, layer := range models.Layers {
				if tag, _ := g.Get(layer, x, y); tag != 0 {
					want[Key{X: x, Y: y, Layer: layer}] = struct{}{}
				}
			}
		}
	}
	return want
}

func scatter(g *models.Grid, rng *rand.Rand) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			switch rng.Intn(10) {
			case 0:
				_ = g.SetObstacle(x, y, models.ObstacleFence)
			case 1:
				_ = g.SetDecoration(x, y, models.DecorationTreeLarge)
			case 2:
				_ = g.SetDecoration(x, y, models.DecorationFlowers)
			}
		}
	}
}

func TestViewportCache_RandomWalkMatchesGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := models.NewGrid(60, 40)
	scatter(g, rng)
	vc, h := newCache(t, g, 6, 0)

	x, y := 30, 20
	for step := 0; step < 300; step++ {
		if rng.Intn(10) == 0 {
			x, y = rng.Intn(90)-15, rng.Intn(70)-15
		} else {
			x += rng.Intn(7) - 3
			y += rng.Intn(7) - 3
		}
		res := at(vc, x, y)
		if res.Skipped {
			t.Fatalf("step %d: zero hysteresis must never skip", step)
		}

		want := expectedVisible(g, x, y, 6)
		got := vc.VisibleKeys()
		if len(got) != len(want) || res.Visible != len(want) {
			t.Fatalf("step %d at (%d,%d): visible %d, want %d", step, x, y, len(got), len(want))
		}
		for _, k := range got {
			if _, ok := want[k]; !ok {
				t.Fatalf("step %d: unexpected visible key %+v", step, k)
			}
			if !vc.Materialized(k) {
				t.Fatalf("step %d: visible key %+v not materialized", step, k)
			}
		}
		if vc.Len() != len(want) {
			t.Fatalf("step %d: %d tiles materialized, want %d", step, vc.Len(), len(want))
		}
		checkCounters(t, vc, h)
	}
}

func TestViewportCache_BodiesOnlyForBlockingTiles(t *testing.T) {
	g := models.NewGrid(10, 10)
	_ = g.SetObstacle(2, 2, models.ObstacleWarehouse)
	_ = g.SetDecoration(3, 3, models.DecorationPine)
	_ = g.SetDecoration(4, 4, models.DecorationFlowers)
	vc, h := newCache(t, g, 10, 0)

	at(vc, 5, 5)
	if hs := h.Stats(); hs.BodiesLive != 2 || hs.SpritesLive != 103 {
		t.Fatalf("scene stats = %+v", hs)
	}
	if tile, ok := vc.Tile(Key{X: 4, Y: 4, Layer: models.LayerDecoration}); !ok || tile.Body != nil {
		t.Fatalf("flowers tile = %+v, %v", tile, ok)
	}
}

func TestViewportCache_DepthOrdering(t *testing.T) {
	g := models.NewGrid(10, 10)
	_ = g.SetObstacle(3, 4, models.ObstacleFence)
	_ = g.SetDecoration(3, 4, models.DecorationFlowers)
	vc, h := newCache(t, g, 10, 0)
	at(vc, 5, 5)

	depthOf := func(k Key) float64 {
		tile, ok := vc.Tile(k)
		if !ok {
			t.Fatalf("tile %+v not materialized", k)
		}
		spec, ok := h.LiveSprite(tile.Sprite.ID())
		if !ok {
			t.Fatalf("sprite of %+v not live", k)
		}
		return spec.Depth
	}

	_, wy := models.GridToWorld(3, 4)
	if d := depthOf(Key{X: 3, Y: 4, Layer: models.LayerTerrain}); d != 0 {
		t.Errorf("terrain depth = %v", d)
	}
	if d := depthOf(Key{X: 3, Y: 4, Layer: models.LayerObstacle}); d != 1000+wy+0.5 {
		t.Errorf("obstacle depth = %v", d)
	}
	if d := depthOf(Key{X: 3, Y: 4, Layer: models.LayerDecoration}); d != 1000+wy+0.25 {
		t.Errorf("decoration depth = %v", d)
	}
}

func TestViewportCache_Replace(t *testing.T) {
	g := models.NewGrid(20, 20)
	_ = g.SetObstacle(5, 5, models.ObstacleWarehouse)
	vc, h := newCache(t, g, 4, 0)
	at(vc, 5, 5)

	before := vc.Stats()
	k := Key{X: 5, Y: 5, Layer: models.LayerObstacle}
	if !vc.Replace(5, 5, models.LayerObstacle, uint8(models.ObstacleWarehouseRuin)) {
		t.Fatal("Replace on a materialized tile returned false")
	}
	after := vc.Stats()
	if after.Created != before.Created+1 || after.Destroyed != before.Destroyed+1 || after.CurrentLive != before.CurrentLive {
		t.Fatalf("swap counters: before %+v after %+v", before, after)
	}
	if tile, _ := vc.Tile(k); tile.Tag != uint8(models.ObstacleWarehouseRuin) {
		t.Fatalf("tag after swap = %d", tile.Tag)
	}

	if vc.Replace(15, 15, models.LayerObstacle, 1) {
		t.Fatal("Replace outside the viewport should report false")
	}

	if !vc.Replace(5, 5, models.LayerObstacle, 0) {
		t.Fatal("removal returned false")
	}
	if vc.Materialized(k) {
		t.Fatal("removed tile still materialized")
	}
	for _, vk := range vc.VisibleKeys() {
		if vk == k {
			t.Fatal("removed tile still visible")
		}
	}
	checkCounters(t, vc, h)
}

func TestViewportCache_PreloadPinsUntilSweep(t *testing.T) {
	g := models.NewGrid(600, 600)
	vc, h := newCache(t, g, 25, 2)
	at(vc, 300, 300)

	if n := vc.PreloadArea("camp", 100, 100, 3); n != 49 {
		t.Fatalf("preloaded %d tiles, want 49", n)
	}
	if st := vc.Stats(); st.CurrentLive != 2601+49 {
		t.Fatalf("live after preload = %d", st.CurrentLive)
	}
	if n := vc.ForceSweep(); n != 0 {
		t.Fatalf("sweep released %d pinned tiles", n)
	}

	at(vc, 100, 100)
	if st := vc.Stats(); st.CurrentLive != 2601 {
		t.Fatalf("camera over preload: live = %d", st.CurrentLive)
	}

	res := at(vc, 300, 300)
	if res.Destroyed != 2601-49 {
		t.Fatalf("pinned tiles were evicted: %+v", res)
	}
	if rep := vc.PreloadReport(); len(rep) != 1 || rep[0].Name != "camp" || rep[0].Tiles != 49 {
		t.Fatalf("report = %+v", rep)
	}

	if !vc.ReleasePreload("camp") {
		t.Fatal("release of active preload returned false")
	}
	if vc.ReleasePreload("camp") {
		t.Fatal("second release returned true")
	}
	if st := vc.Stats(); st.CurrentLive != 2601+49 {
		t.Fatalf("release must not free tiles by itself, live = %d", st.CurrentLive)
	}
	if n := vc.ForceSweep(); n != 49 {
		t.Fatalf("sweep released %d, want 49", n)
	}
	if n := vc.ForceSweep(); n != 0 {
		t.Fatalf("second sweep released %d", n)
	}
	checkCounters(t, vc, h)
}

func TestViewportCache_PreloadSameNameReplaces(t *testing.T) {
	g := models.NewGrid(50, 50)
	vc, _ := newCache(t, g, 2, 0)
	vc.PreloadArea("a", 10, 10, 1)
	vc.PreloadArea("a", 40, 40, 2)
	rep := vc.PreloadReport()
	if len(rep) != 1 || rep[0].CenterX != 40 || rep[0].Tiles != 25 {
		t.Fatalf("report = %+v", rep)
	}
	if n := vc.ForceSweep(); n != 9 {
		t.Fatalf("sweep released %d, want the 9 tiles of the old region", n)
	}
}

func TestViewportCache_Close(t *testing.T) {
	g := models.NewGrid(50, 50)
	vc, h := newCache(t, g, 5, 0)
	at(vc, 25, 25)
	vc.PreloadArea("x", 5, 5, 2)

	if n := vc.Close(); n != 121+25 {
		t.Fatalf("Close released %d", n)
	}
	if vc.Len() != 0 || vc.VisibleCount() != 0 || len(vc.PreloadReport()) != 0 {
		t.Fatal("cache not empty after Close")
	}
	if _, ok := vc.Center(); ok {
		t.Fatal("center kept after Close")
	}
	if hs := h.Stats(); hs.SpritesLive != 0 || hs.BodiesLive != 0 {
		t.Fatalf("handles leaked: %+v", hs)
	}

	if res := at(vc, 25, 25); res.Skipped || res.Created != 121 {
		t.Fatalf("update after Close = %+v", res)
	}
}
