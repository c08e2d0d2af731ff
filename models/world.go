package models

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned for any grid access outside the map.
	ErrOutOfBounds = errors.New("coordinates out of bounds")
	// ErrEmptyTerrain is returned when a caller tries to clear a terrain cell.
	ErrEmptyTerrain = errors.New("terrain cell cannot be empty")
	// ErrUnknownLayer is returned by the layer-generic accessors.
	ErrUnknownLayer = errors.New("unknown layer")
)

// Layer identifies one of the three per-cell tag layers.
type Layer uint8

const (
	LayerTerrain Layer = iota
	LayerObstacle
	LayerDecoration
)

// Layers lists every layer in draw order.
var Layers = [...]Layer{LayerTerrain, LayerObstacle, LayerDecoration}

func (l Layer) String() string {
	switch l {
	case LayerTerrain:
		return "terrain"
	case LayerObstacle:
		return "obstacle"
	case LayerDecoration:
		return "decoration"
	default:
		return fmt.Sprintf("layer(%d)", uint8(l))
	}
}

// Terrain types. Zero is not a valid terrain; every cell always carries one.
type Terrain uint8

const (
	TerrainGrass Terrain = iota + 1
	TerrainRoad
	TerrainDirt
	TerrainSand
	TerrainWater
)

// Obstacle types. ObstacleNone marks an empty obstacle cell.
type Obstacle uint8

const (
	ObstacleNone Obstacle = iota
	ObstacleWarehouse
	ObstacleRadarTower
	ObstacleWarehouseRuin
	ObstacleRadarRuin
	ObstacleFence
)

// Decoration types. DecorationNone marks an empty decoration cell.
type Decoration uint8

const (
	DecorationNone Decoration = iota
	DecorationTreeLarge
	DecorationPine
	DecorationTreeSmall
	DecorationBush
	DecorationFlowers
	DecorationGrassTuft
	DecorationReeds
	DecorationStone
	DecorationBoulder
	DecorationSignpost
	DecorationHouse
)

// Blocks reports whether the decoration belongs to the blocking category
// (large trees, stones and boulders, signposts, house props).
func (d Decoration) Blocks() bool {
	switch d {
	case DecorationTreeLarge, DecorationPine, DecorationStone, DecorationBoulder,
		DecorationSignpost, DecorationHouse:
		return true
	default:
		return false
	}
}

// Ruin returns the exploded counterpart of a destructible obstacle.
func (o Obstacle) Ruin() Obstacle {
	switch o {
	case ObstacleWarehouse:
		return ObstacleWarehouseRuin
	case ObstacleRadarTower:
		return ObstacleRadarRuin
	default:
		return o
	}
}

// Grid is the tile map: three parallel layers stored as flat row-major
// buffers, index = y*Width + x.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	terrain     []Terrain
	obstacles   []Obstacle
	decorations []Decoration
}

// NewGrid creates a grid covered in grass with empty obstacle and
// decoration layers.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n := width * height
	g := &Grid{
		Width:       width,
		Height:      height,
		terrain:     make([]Terrain, n),
		obstacles:   make([]Obstacle, n),
		decorations: make([]Decoration, n),
	}
	for i := range g.terrain {
		g.terrain[i] = TerrainGrass
	}
	return g
}

// InBounds reports whether (x, y) is inside the map.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Index returns the row-major offset of (x, y). Callers check bounds first.
func (g *Grid) Index(x, y int) int {
	return y*g.Width + x
}

func (g *Grid) check(x, y int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("cell (%d,%d) in %dx%d map: %w", x, y, g.Width, g.Height, ErrOutOfBounds)
	}
	return nil
}

func (g *Grid) Terrain(x, y int) (Terrain, error) {
	if err := g.check(x, y); err != nil {
		return 0, err
	}
	return g.terrain[g.Index(x, y)], nil
}

func (g *Grid) Obstacle(x, y int) (Obstacle, error) {
	if err := g.check(x, y); err != nil {
		return ObstacleNone, err
	}
	return g.obstacles[g.Index(x, y)], nil
}

func (g *Grid) Decoration(x, y int) (Decoration, error) {
	if err := g.check(x, y); err != nil {
		return DecorationNone, err
	}
	return g.decorations[g.Index(x, y)], nil
}

func (g *Grid) SetTerrain(x, y int, t Terrain) error {
	if err := g.check(x, y); err != nil {
		return err
	}
	if t == 0 {
		return fmt.Errorf("cell (%d,%d): %w", x, y, ErrEmptyTerrain)
	}
	g.terrain[g.Index(x, y)] = t
	return nil
}

func (g *Grid) SetObstacle(x, y int, o Obstacle) error {
	if err := g.check(x, y); err != nil {
		return err
	}
	g.obstacles[g.Index(x, y)] = o
	return nil
}

func (g *Grid) SetDecoration(x, y int, d Decoration) error {
	if err := g.check(x, y); err != nil {
		return err
	}
	g.decorations[g.Index(x, y)] = d
	return nil
}

// Get returns the raw tag of a layer at (x, y). Zero means the layer is
// empty at that cell (never the case for terrain).
func (g *Grid) Get(layer Layer, x, y int) (uint8, error) {
	if err := g.check(x, y); err != nil {
		return 0, err
	}
	i := g.Index(x, y)
	switch layer {
	case LayerTerrain:
		return uint8(g.terrain[i]), nil
	case LayerObstacle:
		return uint8(g.obstacles[i]), nil
	case LayerDecoration:
		return uint8(g.decorations[i]), nil
	}
	return 0, fmt.Errorf("get %s: %w", layer, ErrUnknownLayer)
}

// Set writes a raw tag into a layer at (x, y).
func (g *Grid) Set(layer Layer, x, y int, v uint8) error {
	switch layer {
	case LayerTerrain:
		return g.SetTerrain(x, y, Terrain(v))
	case LayerObstacle:
		return g.SetObstacle(x, y, Obstacle(v))
	case LayerDecoration:
		return g.SetDecoration(x, y, Decoration(v))
	}
	return fmt.Errorf("set %s: %w", layer, ErrUnknownLayer)
}

// IsWalkable reports whether a unit may stand on (x, y): in bounds, not
// water, no obstacle and no blocking decoration.
func (g *Grid) IsWalkable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	i := g.Index(x, y)
	if g.terrain[i] == TerrainWater {
		return false
	}
	if g.obstacles[i] != ObstacleNone {
		return false
	}
	return !g.decorations[i].Blocks()
}

// ClearCell wipes obstacle and decoration at (x, y) and sets its terrain.
// Out-of-bounds cells are ignored; it is a carving helper, not a query.
func (g *Grid) ClearCell(x, y int, t Terrain) {
	if !g.InBounds(x, y) || t == 0 {
		return
	}
	i := g.Index(x, y)
	g.terrain[i] = t
	g.obstacles[i] = ObstacleNone
	g.decorations[i] = DecorationNone
}

// TerrainLayer returns a copy of the terrain buffer, row-major.
func (g *Grid) TerrainLayer() []byte {
	out := make([]byte, len(g.terrain))
	for i, t := range g.terrain {
		out[i] = byte(t)
	}
	return out
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		Width:       g.Width,
		Height:      g.Height,
		terrain:     make([]Terrain, len(g.terrain)),
		obstacles:   make([]Obstacle, len(g.obstacles)),
		decorations: make([]Decoration, len(g.decorations)),
	}
	copy(c.terrain, g.terrain)
	copy(c.obstacles, g.obstacles)
	copy(c.decorations, g.decorations)
	return c
}
