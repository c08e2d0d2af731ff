package models

import "time"

// Cell is an integer grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SegmentType tags path points with the role of the route segment they
// were sampled from.
type SegmentType string

const (
	SegmentStart    SegmentType = "start"
	SegmentExplore1 SegmentType = "explore1"
	SegmentCombat1  SegmentType = "combat1"
	SegmentVillage  SegmentType = "village"
	SegmentExplore2 SegmentType = "explore2"
	SegmentCombat2  SegmentType = "combat2"
	SegmentBoss     SegmentType = "boss"
	SegmentBranch   SegmentType = "branch"
)

// PathPoint is one sampled point of the generated main route. Immutable
// after generation.
type PathPoint struct {
	X            int         `json:"x"`
	Y            int         `json:"y"`
	SegmentType  SegmentType `json:"segment_type"`
	HasSideQuest bool        `json:"has_side_quest"`
	Segment      int         `json:"segment"`
}

// SideArea is a clearing at the end of a side branch. Discovered is flipped
// by consumers when the player visits it.
type SideArea struct {
	ID         string `json:"id"`
	CenterX    int    `json:"center_x"`
	CenterY    int    `json:"center_y"`
	Radius     int    `json:"radius"`
	Type       string `json:"type"`
	Discovered bool   `json:"discovered"`
}

// StructureKind names a destructible structure archetype.
type StructureKind string

const (
	StructureWarehouse  StructureKind = "warehouse"
	StructureRadarTower StructureKind = "radar_tower"
)

// Obstacle returns the obstacle tag drawn for an intact structure.
func (k StructureKind) Obstacle() Obstacle {
	if k == StructureRadarTower {
		return ObstacleRadarTower
	}
	return ObstacleWarehouse
}

// Structure is a health-bearing world object. Health only decreases and
// Destroyed never reverts once set.
type Structure struct {
	ID          string        `json:"id"`
	Kind        StructureKind `json:"kind"`
	X           int           `json:"x"`
	Y           int           `json:"y"`
	Health      int           `json:"health"`
	MaxHealth   int           `json:"max_health"`
	Destroyed   bool          `json:"destroyed"`
	GuardRadius int           `json:"guard_radius"`
}

// MemoryStats are the viewport cache counters. CurrentLive always equals
// Created - Destroyed.
type MemoryStats struct {
	Created     int `json:"created"`
	Destroyed   int `json:"destroyed"`
	CurrentLive int `json:"current_live"`
	PeakLive    int `json:"peak_live"`
}

// StatsSample is a diagnostics row: cache counters plus exploration and
// destruction progress at a point in time.
type StatsSample struct {
	SessionID           string      `json:"session_id"`
	Frame               uint64      `json:"frame"`
	Memory              MemoryStats `json:"memory"`
	Visited             int         `json:"visited"`
	StructuresDestroyed int         `json:"structures_destroyed"`
	RecordedAt          time.Time   `json:"recorded_at"`
}

// SessionSummary describes one generated world session for diagnostics.
type SessionSummary struct {
	SessionID        string    `json:"session_id"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	PathPoints       int       `json:"path_points"`
	Branches         int       `json:"branches"`
	BranchesSkipped  int       `json:"branches_skipped"`
	SideAreas        int       `json:"side_areas"`
	Structures       int       `json:"structures"`
	GenerationMillis int64     `json:"generation_ms"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at,omitempty"`
	Frames           uint64    `json:"frames"`
	PeakLive         int       `json:"peak_live"`
}
