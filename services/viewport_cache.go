package services

import (
	"sort"

	"github.com/sirupsen/logrus"

	"frontier-realm/server/logger"
	"frontier-realm/server/models"
	"frontier-realm/server/scene"
)

// Key identifies one materialized tile.
type Key struct {
	X     int          `json:"x"`
	Y     int          `json:"y"`
	Layer models.Layer `json:"layer"`
}

// Tile is a materialized grid cell layer: its render handle and, for
// blocking content, its collision body.
type Tile struct {
	Key    Key
	Tag    uint8
	Sprite scene.Sprite
	Body   scene.Body
}

// ViewportConfig tunes the cache.
type ViewportConfig struct {
	// RenderRadius is the half-size, in tiles, of the visible square.
	RenderRadius int `yaml:"render_radius"`
	// Hysteresis suppresses updates for moves smaller than this many
	// tiles on both axes.
	Hysteresis    int     `yaml:"hysteresis"`
	DepthSortBase float64 `yaml:"depth_sort_base"`
}

// DefaultViewportConfig returns the standard streaming parameters.
func DefaultViewportConfig() ViewportConfig {
	return ViewportConfig{RenderRadius: 25, Hysteresis: 2, DepthSortBase: 1000}
}

// UpdateResult reports what one Update call did.
type UpdateResult struct {
	Skipped   bool        `json:"skipped"`
	Center    models.Cell `json:"center"`
	Created   int         `json:"created"`
	Destroyed int         `json:"destroyed"`
	Visible   int         `json:"visible"`
}

// PreloadInfo describes a named preload region.
type PreloadInfo struct {
	Name    string `json:"name"`
	CenterX int    `json:"center_x"`
	CenterY int    `json:"center_y"`
	Radius  int    `json:"radius"`
	Tiles   int    `json:"tiles"`
}

type preload struct {
	info PreloadInfo
	keys []Key
}

type rect struct {
	x0, y0, x1, y1 int
	empty          bool
}

func (r rect) contains(x, y int) bool {
	return !r.empty && x >= r.x0 && x <= r.x1 && y >= r.y0 && y <= r.y1
}

// layerBias orders layers drawn on the same row.
var layerBias = [...]float64{
	models.LayerTerrain:    0,
	models.LayerObstacle:   0.5,
	models.LayerDecoration: 0.25,
}

// ViewportCache keeps exactly the non-empty tiles of the square around the
// camera materialized. It is not safe for concurrent use; WorldService
// serializes access.
type ViewportCache struct {
	grid    *models.Grid
	factory scene.Factory
	cfg     ViewportConfig

	hasCenter bool
	center    models.Cell
	window    rect

	tiles    map[Key]*Tile
	visible  map[Key]struct{}
	preloads map[string]*preload
	pins     map[Key]int

	stats models.MemoryStats
	log   *logrus.Entry
}

// NewViewportCache creates a cache streaming tiles of grid through factory.
func NewViewportCache(grid *models.Grid, factory scene.Factory, cfg ViewportConfig) *ViewportCache {
	if cfg.RenderRadius < 0 {
		cfg.RenderRadius = 0
	}
	return &ViewportCache{
		grid:     grid,
		factory:  factory,
		cfg:      cfg,
		window:   rect{empty: true},
		tiles:    make(map[Key]*Tile),
		visible:  make(map[Key]struct{}),
		preloads: make(map[string]*preload),
		pins:     make(map[Key]int),
		log:      logger.Log.WithFields(logrus.Fields{"component": "viewport"}),
	}
}

// windowAround returns the render square around (cx, cy) clamped to the map.
func (vc *ViewportCache) windowAround(cx, cy, radius int) rect {
	r := rect{
		x0: max(cx-radius, 0),
		y0: max(cy-radius, 0),
		x1: min(cx+radius, vc.grid.Width-1),
		y1: min(cy+radius, vc.grid.Height-1),
	}
	r.empty = r.x0 > r.x1 || r.y0 > r.y1
	return r
}

// Update moves the camera to a world position. Moves under the hysteresis
// threshold on both axes are ignored; otherwise tiles leaving the square
// are released and every non-empty tile entering it is materialized.
func (vc *ViewportCache) Update(worldX, worldY float64) UpdateResult {
	gx, gy := models.WorldToGrid(worldX, worldY)
	if vc.hasCenter && abs(gx-vc.center.X) < vc.cfg.Hysteresis && abs(gy-vc.center.Y) < vc.cfg.Hysteresis {
		return UpdateResult{Skipped: true, Center: vc.center, Visible: len(vc.visible)}
	}

	vc.hasCenter = true
	vc.center = models.Cell{X: gx, Y: gy}
	vc.window = vc.windowAround(gx, gy, vc.cfg.RenderRadius)
	res := UpdateResult{Center: vc.center}

	for k := range vc.visible {
		if vc.window.contains(k.X, k.Y) {
			continue
		}
		delete(vc.visible, k)
		if vc.pins[k] > 0 {
			continue
		}
		vc.release(k)
		res.Destroyed++
	}

	if !vc.window.empty {
		for y := vc.window.y0; y <= vc.window.y1; y++ {
			for x := vc.window.x0; x <= vc.window.x1; x++ {
				for _, layer := range models.Layers {
					k := Key{X: x, Y: y, Layer: layer}
					if _, ok := vc.visible[k]; ok {
						continue
					}
					tag, _ := vc.grid.Get(layer, x, y)
					if tag == 0 {
						continue
					}
					vc.visible[k] = struct{}{}
					if _, ok := vc.tiles[k]; ok {
						continue
					}
					vc.materialize(k, tag)
					res.Created++
				}
			}
		}
	}

	res.Visible = len(vc.visible)
	vc.log.WithFields(logrus.Fields{
		"center":    vc.center,
		"created":   res.Created,
		"destroyed": res.Destroyed,
		"live":      vc.stats.CurrentLive,
	}).Trace("Viewport updated.")
	return res
}

// depth returns the draw order of a tile: terrain is always at the bottom,
// everything else sorts by world y with a per-layer bias.
func (vc *ViewportCache) depth(k Key, worldY float64) float64 {
	if k.Layer == models.LayerTerrain {
		return 0
	}
	return vc.cfg.DepthSortBase + worldY + layerBias[k.Layer]
}

func blocks(layer models.Layer, tag uint8) bool {
	switch layer {
	case models.LayerObstacle:
		return tag != 0
	case models.LayerDecoration:
		return models.Decoration(tag).Blocks()
	}
	return false
}

func (vc *ViewportCache) materialize(k Key, tag uint8) *Tile {
	wx, wy := models.GridToWorld(k.X, k.Y)
	t := &Tile{Key: k, Tag: tag}
	t.Sprite = vc.factory.NewSprite(scene.SpriteSpec{
		Layer: k.Layer,
		Tag:   tag,
		X:     wx,
		Y:     wy,
		Depth: vc.depth(k, wy),
	})
	if blocks(k.Layer, tag) {
		t.Body = vc.factory.NewBody(scene.BodySpec{
			X:      wx,
			Y:      wy,
			Width:  models.TileWidth,
			Height: models.TileHeight,
		})
	}
	vc.tiles[k] = t
	vc.stats.Created++
	vc.stats.CurrentLive++
	if vc.stats.CurrentLive > vc.stats.PeakLive {
		vc.stats.PeakLive = vc.stats.CurrentLive
	}
	return t
}

// release frees the handles of k, body first, and forgets the tile.
func (vc *ViewportCache) release(k Key) bool {
	t, ok := vc.tiles[k]
	if !ok {
		return false
	}
	if t.Body != nil {
		t.Body.Release()
	}
	if t.Sprite != nil {
		t.Sprite.Release()
	}
	delete(vc.tiles, k)
	vc.stats.Destroyed++
	vc.stats.CurrentLive--
	return true
}

// ForceSweep releases every materialized tile that is neither visible nor
// pinned by a preload and returns how many it released.
func (vc *ViewportCache) ForceSweep() int {
	swept := 0
	for k := range vc.tiles {
		if _, ok := vc.visible[k]; ok {
			continue
		}
		if vc.pins[k] > 0 {
			continue
		}
		vc.release(k)
		swept++
	}
	if swept > 0 {
		vc.log.WithField("swept", swept).Debug("Forced sweep released stale tiles.")
	}
	return swept
}

// Replace swaps the materialized tile at (x, y, layer) for one showing
// tag, under the same key. It counts as one destroy and one create. A zero
// tag only removes the tile. Returns false when nothing is materialized
// there.
func (vc *ViewportCache) Replace(x, y int, layer models.Layer, tag uint8) bool {
	k := Key{X: x, Y: y, Layer: layer}
	if !vc.release(k) {
		return false
	}
	if tag == 0 {
		delete(vc.visible, k)
		return true
	}
	vc.materialize(k, tag)
	return true
}

// PreloadArea materializes every non-empty tile within radius of the grid
// cell (cx, cy) and pins it against eviction until ReleasePreload. Reusing
// a name replaces the previous region. Returns the region's tile count.
func (vc *ViewportCache) PreloadArea(name string, cx, cy, radius int) int {
	vc.ReleasePreload(name)

	p := &preload{info: PreloadInfo{Name: name, CenterX: cx, CenterY: cy, Radius: radius}}
	r := vc.windowAround(cx, cy, radius)
	if !r.empty {
		for y := r.y0; y <= r.y1; y++ {
			for x := r.x0; x <= r.x1; x++ {
				for _, layer := range models.Layers {
					tag, _ := vc.grid.Get(layer, x, y)
					if tag == 0 {
						continue
					}
					k := Key{X: x, Y: y, Layer: layer}
					if _, ok := vc.tiles[k]; !ok {
						vc.materialize(k, tag)
					}
					vc.pins[k]++
					p.keys = append(p.keys, k)
				}
			}
		}
	}
	p.info.Tiles = len(p.keys)
	vc.preloads[name] = p
	vc.log.WithFields(logrus.Fields{"name": name, "tiles": p.info.Tiles}).Debug("Area preloaded.")
	return p.info.Tiles
}

// ReleasePreload unpins a named region. Tiles outside the visible square
// stay materialized until the next ForceSweep.
func (vc *ViewportCache) ReleasePreload(name string) bool {
	p, ok := vc.preloads[name]
	if !ok {
		return false
	}
	for _, k := range p.keys {
		if vc.pins[k]--; vc.pins[k] <= 0 {
			delete(vc.pins, k)
		}
	}
	delete(vc.preloads, name)
	return true
}

// PreloadReport lists the active preload regions by name.
func (vc *ViewportCache) PreloadReport() []PreloadInfo {
	out := make([]PreloadInfo, 0, len(vc.preloads))
	for _, p := range vc.preloads {
		out = append(out, p.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Stats returns the lifetime counters.
func (vc *ViewportCache) Stats() models.MemoryStats { return vc.stats }

// Center returns the last accepted camera cell.
func (vc *ViewportCache) Center() (models.Cell, bool) { return vc.center, vc.hasCenter }

// VisibleKeys returns the visible set in row-major, then layer, order.
func (vc *ViewportCache) VisibleKeys() []Key {
	keys := make([]Key, 0, len(vc.visible))
	for k := range vc.visible {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// VisibleCount returns the size of the visible set.
func (vc *ViewportCache) VisibleCount() int { return len(vc.visible) }

// Materialized reports whether k currently holds live handles.
func (vc *ViewportCache) Materialized(k Key) bool {
	_, ok := vc.tiles[k]
	return ok
}

// Tile returns the materialized tile at k.
func (vc *ViewportCache) Tile(k Key) (Tile, bool) {
	t, ok := vc.tiles[k]
	if !ok {
		return Tile{}, false
	}
	return *t, true
}

// Len returns the number of materialized tiles.
func (vc *ViewportCache) Len() int { return len(vc.tiles) }

// Close releases every tile and forgets the camera and all preloads.
func (vc *ViewportCache) Close() int {
	n := 0
	for k := range vc.tiles {
		vc.release(k)
		n++
	}
	vc.visible = make(map[Key]struct{})
	vc.preloads = make(map[string]*preload)
	vc.pins = make(map[Key]int)
	vc.hasCenter = false
	vc.window = rect{empty: true}
	return n
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Layer < b.Layer
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
