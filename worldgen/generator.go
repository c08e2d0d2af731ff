package worldgen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"frontier-realm/server/logger"
	"frontier-realm/server/models"
)

// Report summarizes one generation run.
type Report struct {
	PathPoints        int           `json:"path_points"`
	Branches          int           `json:"branches"`
	BranchesSkipped   int           `json:"branches_skipped"`
	SideAreas         int           `json:"side_areas"`
	Lakes             int           `json:"lakes"`
	WaterCells        int           `json:"water_cells"`
	Trees             int           `json:"trees"`
	Props             int           `json:"props"`
	Signposts         int           `json:"signposts"`
	Houses            int           `json:"houses"`
	Structures        int           `json:"structures"`
	StructuresSkipped int           `json:"structures_skipped"`
	Duration          time.Duration `json:"duration"`
}

// World is everything Generate produces. It is handed to the runtime
// services as-is; nothing is kept in package state.
type World struct {
	Config     Config
	Grid       *models.Grid
	Segments   []Segment
	Path       []models.PathPoint
	Index      *PathIndex
	Branches   []Branch
	SideAreas  []models.SideArea
	Structures []models.Structure
	Report     Report
}

// Start returns the first main path point, where sessions begin.
func (w *World) Start() models.Cell {
	if len(w.Path) == 0 {
		return models.Cell{X: w.Grid.Width / 2, Y: w.Grid.Height / 2}
	}
	return models.Cell{X: w.Path[0].X, Y: w.Path[0].Y}
}

// Generate builds a fresh world. A nil rng seeds one from the clock. The
// only error is an invalid configuration; exhausted searches are recorded
// in the report instead.
func Generate(cfg Config, rng *rand.Rand) (*World, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	started := time.Now()
	log := logger.Log.WithFields(logrus.Fields{"component": "worldgen"})

	segments := cfg.Segments
	if len(segments) == 0 {
		segments = DefaultLayout(cfg.Width, cfg.Height)
	}

	w := &World{
		Config:   cfg,
		Grid:     models.NewGrid(cfg.Width, cfg.Height),
		Segments: segments,
	}

	w.Path = BuildPath(segments, cfg.Width, cfg.Height, cfg.SamplesPerSegment, cfg.CurveStrength, cfg.CorridorHalfWidth, rng)
	w.Index = NewPathIndex(w.Path, cfg.Width, cfg.Height, 0)
	Carve(w.Grid, w.Path, cfg.CorridorHalfWidth, StampSquare)

	branches := SpawnBranches(w.Path, w.Index, segments, cfg, rng)
	w.Branches = branches.Branches
	for _, b := range w.Branches {
		Carve(w.Grid, b.Points, cfg.BranchHalfWidth, StampDiamond)
		CarveClearing(w.Grid, b.Area)
		w.SideAreas = append(w.SideAreas, b.Area)
	}
	log.WithFields(logrus.Fields{
		"points":   len(w.Path),
		"branches": len(w.Branches),
		"skipped":  branches.Skipped,
	}).Debug("Path and branches carved.")

	noise := NewNoise(rng)
	rep := &w.Report
	rep.Lakes = PlaceLakes(w.Grid, w.Index, cfg, rng)
	rep.WaterCells = CarveWaterways(w.Grid, w.Index, cfg, rng)
	rep.Signposts = PlaceSignposts(w.Grid, w.Index, w.Path, cfg, rng)
	rep.Houses = PlaceHouses(w.Grid, w.Index, w.Path, cfg, rng)
	w.Structures, rep.StructuresSkipped = placeStructures(w.Grid, w.Index, w.Path, cfg, rng)
	rep.Trees = FillForest(w.Grid, w.Index, noise, cfg, rng)
	rep.Props = ScatterProps(w.Grid, w.Index, cfg, rng)

	rep.PathPoints = len(w.Path)
	rep.Branches = len(w.Branches)
	rep.BranchesSkipped = branches.Skipped
	rep.SideAreas = len(w.SideAreas)
	rep.Structures = len(w.Structures)
	rep.Duration = time.Since(started)

	log.WithFields(logrus.Fields{
		"size":       fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"lakes":      rep.Lakes,
		"trees":      rep.Trees,
		"props":      rep.Props,
		"structures": rep.Structures,
		"side_areas": rep.SideAreas,
		"took":       rep.Duration.String(),
	}).Info("World generated.")
	return w, nil
}

// placeStructures sets warehouses near both combat segments and radar
// towers near the boss segment. Structures without a free cell are
// skipped and counted.
func placeStructures(g *models.Grid, index *PathIndex, path []models.PathPoint, cfg Config, rng *rand.Rand) ([]models.Structure, int) {
	plan := []struct {
		segment models.SegmentType
		kind    models.StructureKind
		count   int
	}{
		{models.SegmentCombat1, models.StructureWarehouse, cfg.WarehousesPerCombat},
		{models.SegmentCombat2, models.StructureWarehouse, cfg.WarehousesPerCombat},
		{models.SegmentBoss, models.StructureRadarTower, cfg.RadarTowers},
	}

	var out []models.Structure
	skipped := 0
	seq := map[models.StructureKind]int{}
	for _, p := range plan {
		refs := PointsOfType(path, p.segment)
		for i := 0; i < p.count; i++ {
			if len(refs) == 0 {
				skipped++
				continue
			}
			ref := refs[rng.Intn(len(refs))]
			c, ok := FindPlacement(g, index, models.Cell{X: ref.X, Y: ref.Y}, cfg.PlacementRadius, cfg.PlacementAttempts, cfg.PlacementPathClearance, rng)
			if !ok {
				skipped++
				continue
			}
			_ = g.SetObstacle(c.X, c.Y, p.kind.Obstacle())
			seq[p.kind]++
			health := cfg.structureHealth(p.kind)
			out = append(out, models.Structure{
				ID:          fmt.Sprintf("%s-%d", p.kind, seq[p.kind]),
				Kind:        p.kind,
				X:           c.X,
				Y:           c.Y,
				Health:      health,
				MaxHealth:   health,
				GuardRadius: cfg.guardRadius(p.kind),
			})
		}
	}
	return out, skipped
}
