package worldgen

import (
	"errors"
	"fmt"

	"frontier-realm/server/models"
)

// ErrInvalidConfig is returned by Generate when the parameters cannot
// describe a map.
var ErrInvalidConfig = errors.New("invalid world generation config")

// Config holds every tunable of world generation. Zero fields are replaced
// by DefaultConfig values in Normalize.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Path
	SamplesPerSegment int     `yaml:"samples_per_segment"`
	CurveStrength     float64 `yaml:"curve_strength"`
	CorridorHalfWidth int     `yaml:"corridor_half_width"`

	// Side branches
	BranchHalfWidth       int     `yaml:"branch_half_width"`
	BranchAttempts        int     `yaml:"branch_attempts"`
	BranchMinLength       int     `yaml:"branch_min_length"`
	BranchMaxLength       int     `yaml:"branch_max_length"`
	BranchMinPathDistance float64 `yaml:"branch_min_path_distance"`
	BranchMinSeparation   float64 `yaml:"branch_min_separation"`
	BranchCurveStrength   float64 `yaml:"branch_curve_strength"`
	SideAreaMinRadius     int     `yaml:"side_area_min_radius"`
	SideAreaMaxRadius     int     `yaml:"side_area_max_radius"`

	// Forest
	ForestMinDensity        float64 `yaml:"forest_min_density"`
	ForestMaxDensity        float64 `yaml:"forest_max_density"`
	ForestNearClearance     float64 `yaml:"forest_near_clearance"`
	ForestFullDistance      float64 `yaml:"forest_full_distance"`
	ForestBlockingClearance float64 `yaml:"forest_blocking_clearance"`
	ForestClearingThreshold float64 `yaml:"forest_clearing_threshold"`

	// Water
	Lakes              int     `yaml:"lakes"`
	LakeMinSize        int     `yaml:"lake_min_size"`
	LakeMaxSize        int     `yaml:"lake_max_size"`
	LakeMargin         int     `yaml:"lake_margin"`
	LakeAttempts       int     `yaml:"lake_attempts"`
	Rivers             int     `yaml:"rivers"`
	RiverWidth         int     `yaml:"river_width"`
	Streams            int     `yaml:"streams"`
	StreamWidth        int     `yaml:"stream_width"`
	RiverPathClearance float64 `yaml:"river_path_clearance"`

	// Props and placement
	PropDensity            float64 `yaml:"prop_density"`
	Houses                 int     `yaml:"houses"`
	PlacementAttempts      int     `yaml:"placement_attempts"`
	PlacementPathClearance float64 `yaml:"placement_path_clearance"`
	PlacementRadius        int     `yaml:"placement_radius"`

	// Structures
	WarehousesPerCombat  int `yaml:"warehouses_per_combat"`
	RadarTowers          int `yaml:"radar_towers"`
	WarehouseHealth      int `yaml:"warehouse_health"`
	RadarHealth          int `yaml:"radar_health"`
	WarehouseGuardRadius int `yaml:"warehouse_guard_radius"`
	RadarGuardRadius     int `yaml:"radar_guard_radius"`

	// Segments overrides DefaultLayout when non-empty.
	Segments []Segment `yaml:"segments"`
}

// DefaultConfig returns the tuning used for a regular 600x600 session.
func DefaultConfig() Config {
	return Config{
		Width:  600,
		Height: 600,

		SamplesPerSegment: 160,
		CurveStrength:     0.25,
		CorridorHalfWidth: 3,

		BranchHalfWidth:       2,
		BranchAttempts:        5,
		BranchMinLength:       30,
		BranchMaxLength:       55,
		BranchMinPathDistance: 20,
		BranchMinSeparation:   30,
		BranchCurveStrength:   0.3,
		SideAreaMinRadius:     5,
		SideAreaMaxRadius:     8,

		ForestMinDensity:        0.04,
		ForestMaxDensity:        0.55,
		ForestNearClearance:     5,
		ForestFullDistance:      45,
		ForestBlockingClearance: 10,
		ForestClearingThreshold: -0.45,

		Lakes:              6,
		LakeMinSize:        10,
		LakeMaxSize:        26,
		LakeMargin:         4,
		LakeAttempts:       30,
		Rivers:             1,
		RiverWidth:         3,
		Streams:            2,
		StreamWidth:        1,
		RiverPathClearance: 6,

		PropDensity:            0.012,
		Houses:                 6,
		PlacementAttempts:      50,
		PlacementPathClearance: 8,
		PlacementRadius:        24,

		WarehousesPerCombat:  2,
		RadarTowers:          1,
		WarehouseHealth:      150,
		RadarHealth:          300,
		WarehouseGuardRadius: 10,
		RadarGuardRadius:     14,
	}
}

// Normalize fills zero fields from DefaultConfig and validates the result.
func (c *Config) Normalize() error {
	d := DefaultConfig()
	fillInt := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}
	fillFloat := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}

	fillInt(&c.Width, d.Width)
	fillInt(&c.Height, d.Height)
	fillInt(&c.SamplesPerSegment, d.SamplesPerSegment)
	fillFloat(&c.CurveStrength, d.CurveStrength)
	fillInt(&c.CorridorHalfWidth, d.CorridorHalfWidth)
	fillInt(&c.BranchHalfWidth, d.BranchHalfWidth)
	fillInt(&c.BranchAttempts, d.BranchAttempts)
	fillInt(&c.BranchMinLength, d.BranchMinLength)
	fillInt(&c.BranchMaxLength, d.BranchMaxLength)
	fillFloat(&c.BranchMinPathDistance, d.BranchMinPathDistance)
	fillFloat(&c.BranchMinSeparation, d.BranchMinSeparation)
	fillFloat(&c.BranchCurveStrength, d.BranchCurveStrength)
	fillInt(&c.SideAreaMinRadius, d.SideAreaMinRadius)
	fillInt(&c.SideAreaMaxRadius, d.SideAreaMaxRadius)
	fillFloat(&c.ForestMinDensity, d.ForestMinDensity)
	fillFloat(&c.ForestMaxDensity, d.ForestMaxDensity)
	fillFloat(&c.ForestNearClearance, d.ForestNearClearance)
	fillFloat(&c.ForestFullDistance, d.ForestFullDistance)
	fillFloat(&c.ForestBlockingClearance, d.ForestBlockingClearance)
	fillFloat(&c.ForestClearingThreshold, d.ForestClearingThreshold)
	fillInt(&c.LakeMinSize, d.LakeMinSize)
	fillInt(&c.LakeMaxSize, d.LakeMaxSize)
	fillInt(&c.LakeMargin, d.LakeMargin)
	fillInt(&c.LakeAttempts, d.LakeAttempts)
	fillInt(&c.RiverWidth, d.RiverWidth)
	fillInt(&c.StreamWidth, d.StreamWidth)
	fillFloat(&c.RiverPathClearance, d.RiverPathClearance)
	fillInt(&c.PlacementAttempts, d.PlacementAttempts)
	fillFloat(&c.PlacementPathClearance, d.PlacementPathClearance)
	fillInt(&c.PlacementRadius, d.PlacementRadius)
	fillInt(&c.WarehouseHealth, d.WarehouseHealth)
	fillInt(&c.RadarHealth, d.RadarHealth)
	fillInt(&c.WarehouseGuardRadius, d.WarehouseGuardRadius)
	fillInt(&c.RadarGuardRadius, d.RadarGuardRadius)

	// Counts may legitimately be zero; negative values mean "disabled".
	for _, v := range []*int{&c.Lakes, &c.Rivers, &c.Streams, &c.Houses, &c.WarehousesPerCombat, &c.RadarTowers} {
		if *v < 0 {
			*v = 0
		}
	}

	return c.Validate()
}

// Validate rejects configurations that cannot produce a map.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("map size %dx%d: %w", c.Width, c.Height, ErrInvalidConfig)
	case c.CorridorHalfWidth < 0 || 2*c.CorridorHalfWidth >= c.Width || 2*c.CorridorHalfWidth >= c.Height:
		return fmt.Errorf("corridor half width %d for %dx%d map: %w", c.CorridorHalfWidth, c.Width, c.Height, ErrInvalidConfig)
	case c.SamplesPerSegment < 2:
		return fmt.Errorf("samples per segment %d: %w", c.SamplesPerSegment, ErrInvalidConfig)
	case c.BranchMinLength > c.BranchMaxLength:
		return fmt.Errorf("branch length range [%d,%d]: %w", c.BranchMinLength, c.BranchMaxLength, ErrInvalidConfig)
	case c.LakeMinSize > c.LakeMaxSize:
		return fmt.Errorf("lake size range [%d,%d]: %w", c.LakeMinSize, c.LakeMaxSize, ErrInvalidConfig)
	case c.SideAreaMinRadius > c.SideAreaMaxRadius:
		return fmt.Errorf("side area radius range [%d,%d]: %w", c.SideAreaMinRadius, c.SideAreaMaxRadius, ErrInvalidConfig)
	case c.ForestMinDensity > c.ForestMaxDensity:
		return fmt.Errorf("forest density range [%v,%v]: %w", c.ForestMinDensity, c.ForestMaxDensity, ErrInvalidConfig)
	}
	for i, s := range c.Segments {
		if s.Type == "" {
			return fmt.Errorf("segment %d has no type: %w", i, ErrInvalidConfig)
		}
	}
	return nil
}

// structureHealth returns the max health for a structure kind.
func (c Config) structureHealth(k models.StructureKind) int {
	if k == models.StructureRadarTower {
		return c.RadarHealth
	}
	return c.WarehouseHealth
}

func (c Config) guardRadius(k models.StructureKind) int {
	if k == models.StructureRadarTower {
		return c.RadarGuardRadius
	}
	return c.WarehouseGuardRadius
}
