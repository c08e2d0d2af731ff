package worldgen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"frontier-realm/server/logger"
	"frontier-realm/server/models"
)

// Branch is an accepted side route leading off the main path to a side
// area clearing.
type Branch struct {
	Segment int                `json:"segment"`
	Origin  models.Cell        `json:"origin"`
	End     models.Cell        `json:"end"`
	Points  []models.PathPoint `json:"-"`
	Area    models.SideArea    `json:"area"`
}

var sideAreaTypes = []string{"supply_cache", "scout_camp", "ruins", "shrine", "abandoned_truck"}

// BranchResult is the outcome of SpawnBranches.
type BranchResult struct {
	Branches []Branch
	// Skipped counts branches whose attempt budget ran out.
	Skipped int
}

// SpawnBranches tries to grow 1-3 side branches from every side-quest
// segment. Each branch gets cfg.BranchAttempts candidate endpoints; a
// candidate is rejected when it leaves the map margin, lies closer than
// BranchMinPathDistance to the main path, or closer than
// BranchMinSeparation to an already accepted endpoint. A branch whose
// attempts are exhausted is skipped, so a segment may end up bare.
func SpawnBranches(path []models.PathPoint, index *PathIndex, segments []Segment, cfg Config, rng *rand.Rand) BranchResult {
	log := logger.Log.WithFields(logrus.Fields{"component": "worldgen", "stage": "branches"})

	var res BranchResult
	var accepted []models.Cell
	margin := cfg.SideAreaMaxRadius + 1

	for si, seg := range segments {
		if !seg.SideQuest {
			continue
		}
		segPts := SegmentPoints(path, si)
		if len(segPts) < 3 {
			continue
		}
		dir := math.Atan2(seg.To.Y-seg.From.Y, seg.To.X-seg.From.X)
		wanted := 1 + rng.Intn(3)

		for b := 0; b < wanted; b++ {
			placed := false
			for attempt := 0; attempt < cfg.BranchAttempts; attempt++ {
				origin := segPts[1+rng.Intn(len(segPts)-2)]
				offset := (60 + rng.Float64()*60) * math.Pi / 180
				if rng.Intn(2) == 0 {
					offset = -offset
				}
				angle := dir + offset
				length := float64(cfg.BranchMinLength + rng.Intn(cfg.BranchMaxLength-cfg.BranchMinLength+1))

				from := Point{X: float64(origin.X), Y: float64(origin.Y)}
				to := Point{X: from.X + math.Cos(angle)*length, Y: from.Y + math.Sin(angle)*length}
				end := models.Cell{X: int(math.Round(to.X)), Y: int(math.Round(to.Y))}

				if end.X < margin || end.Y < margin || end.X >= cfg.Width-margin || end.Y >= cfg.Height-margin {
					continue
				}
				if index.WithinDistance(end.X, end.Y, cfg.BranchMinPathDistance) {
					continue
				}
				if tooClose(accepted, end, cfg.BranchMinSeparation) {
					continue
				}

				to = Point{X: float64(end.X), Y: float64(end.Y)}
				ctrl := curveControl(from, to, cfg.BranchCurveStrength, rng)
				samples := max(8, int(length))
				pts := sampleCurve(from, ctrl, to, samples, cfg.Width, cfg.Height, cfg.BranchHalfWidth, models.SegmentBranch, si)

				radius := cfg.SideAreaMinRadius + rng.Intn(cfg.SideAreaMaxRadius-cfg.SideAreaMinRadius+1)
				area := models.SideArea{
					ID:      fmt.Sprintf("side-%d", len(res.Branches)+1),
					CenterX: end.X,
					CenterY: end.Y,
					Radius:  radius,
					Type:    sideAreaTypes[rng.Intn(len(sideAreaTypes))],
				}

				res.Branches = append(res.Branches, Branch{
					Segment: si,
					Origin:  models.Cell{X: origin.X, Y: origin.Y},
					End:     end,
					Points:  pts,
					Area:    area,
				})
				accepted = append(accepted, end)
				placed = true
				break
			}
			if !placed {
				res.Skipped++
				log.WithFields(logrus.Fields{
					"segment":  si,
					"type":     seg.Type,
					"attempts": cfg.BranchAttempts,
				}).Debug("Side branch skipped: attempt budget exhausted.")
			}
		}
	}
	return res
}

func tooClose(cells []models.Cell, c models.Cell, limit float64) bool {
	for _, o := range cells {
		if math.Hypot(float64(o.X-c.X), float64(o.Y-c.Y)) < limit {
			return true
		}
	}
	return false
}
