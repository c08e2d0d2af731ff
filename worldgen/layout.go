package worldgen

import "frontier-realm/server/models"

// Point is a continuous map position in grid units.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Segment is one leg of the main route, from one waypoint to the next.
type Segment struct {
	From      Point              `yaml:"from"`
	To        Point              `yaml:"to"`
	Type      models.SegmentType `yaml:"type"`
	SideQuest bool               `yaml:"side_quest"`
}

// waypoint fractions of the map size for the default route. The route
// snakes from the south-west corner to the north-east one; each segment
// takes the role and side-quest flag of the waypoint it starts from.
var defaultRoute = []struct {
	x, y      float64
	kind      models.SegmentType
	sideQuest bool
}{
	{0.10, 0.90, models.SegmentStart, false},
	{0.30, 0.80, models.SegmentExplore1, true},
	{0.20, 0.58, models.SegmentCombat1, false},
	{0.42, 0.46, models.SegmentVillage, true},
	{0.68, 0.60, models.SegmentExplore2, true},
	{0.80, 0.36, models.SegmentCombat2, false},
	{0.70, 0.16, models.SegmentBoss, false},
	{0.90, 0.08, models.SegmentBoss, false},
}

// DefaultLayout returns the ordered waypoint segments of the standard
// route scaled to a width x height map.
func DefaultLayout(width, height int) []Segment {
	w, h := float64(width-1), float64(height-1)
	segs := make([]Segment, 0, len(defaultRoute)-1)
	for i := 1; i < len(defaultRoute); i++ {
		from, to := defaultRoute[i-1], defaultRoute[i]
		segs = append(segs, Segment{
			From:      Point{X: from.x * w, Y: from.y * h},
			To:        Point{X: to.x * w, Y: to.y * h},
			Type:      from.kind,
			SideQuest: from.sideQuest,
		})
	}
	return segs
}
