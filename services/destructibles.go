package services

import (
	"sort"

	"github.com/sirupsen/logrus"

	"frontier-realm/server/logger"
	"frontier-realm/server/models"
)

// TileSwapper swaps a materialized tile in place. ViewportCache implements
// it; the registry never owns the cache.
type TileSwapper interface {
	Replace(x, y int, layer models.Layer, tag uint8) bool
}

// ObjectiveListener is told once that the destruction target was reached.
type ObjectiveListener func(destroyed, target int)

// DestructibleRegistry tracks the health of every structure in the world.
// Destruction is terminal: health never rises and destroyed structures
// ignore further damage.
type DestructibleRegistry struct {
	grid     *models.Grid
	swapper  TileSwapper
	byID     map[string]*models.Structure
	order    []string
	target   int
	count    int
	complete bool
	listener ObjectiveListener
	log      *logrus.Entry
}

// NewDestructibleRegistry creates a registry over structures. A target of
// zero, or above the structure count, means every structure.
func NewDestructibleRegistry(structures []models.Structure, grid *models.Grid, swapper TileSwapper, target int) *DestructibleRegistry {
	r := &DestructibleRegistry{
		grid:    grid,
		swapper: swapper,
		byID:    make(map[string]*models.Structure, len(structures)),
		log:     logger.Log.WithFields(logrus.Fields{"component": "destructibles"}),
	}
	for _, s := range structures {
		s := s
		r.byID[s.ID] = &s
		r.order = append(r.order, s.ID)
		if s.Destroyed {
			r.count++
		}
	}
	sort.Strings(r.order)
	if target <= 0 || target > len(structures) {
		target = len(structures)
	}
	r.target = target
	return r
}

// OnObjectiveComplete sets the completion listener.
func (r *DestructibleRegistry) OnObjectiveComplete(fn ObjectiveListener) {
	r.listener = fn
}

// ApplyDamage subtracts amount from a structure's health and returns the
// resulting health. Unknown ids, destroyed structures and non-positive
// amounts are no-ops; unknown ids report 0.
func (r *DestructibleRegistry) ApplyDamage(id string, amount int) int {
	s, ok := r.byID[id]
	if !ok {
		return 0
	}
	if s.Destroyed || amount <= 0 {
		return s.Health
	}

	s.Health = max(0, s.Health-amount)
	if s.Health > 0 {
		return s.Health
	}

	s.Destroyed = true
	ruin := s.Kind.Obstacle().Ruin()
	if err := r.grid.SetObstacle(s.X, s.Y, ruin); err != nil {
		r.log.WithError(err).WithField("id", id).Warn("Structure outside the grid.")
	}
	if r.swapper != nil {
		r.swapper.Replace(s.X, s.Y, models.LayerObstacle, uint8(ruin))
	}
	r.count++
	r.log.WithFields(logrus.Fields{
		"id":        id,
		"kind":      s.Kind,
		"destroyed": r.count,
		"target":    r.target,
	}).Info("Structure destroyed.")

	if !r.complete && r.target > 0 && r.count >= r.target {
		r.complete = true
		if r.listener != nil {
			r.listener(r.count, r.target)
		}
	}
	return 0
}

// Structure returns a copy of the structure with the given id.
func (r *DestructibleRegistry) Structure(id string) (models.Structure, bool) {
	s, ok := r.byID[id]
	if !ok {
		return models.Structure{}, false
	}
	return *s, true
}

// Structures returns copies of every structure sorted by id.
func (r *DestructibleRegistry) Structures() []models.Structure {
	out := make([]models.Structure, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// DestroyedCount returns how many structures are destroyed.
func (r *DestructibleRegistry) DestroyedCount() int { return r.count }

// Target returns the destroyed count that completes the objective.
func (r *DestructibleRegistry) Target() int { return r.target }

// Completed reports whether the objective listener has fired.
func (r *DestructibleRegistry) Completed() bool { return r.complete }
