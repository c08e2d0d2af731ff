package services

import (
	"fmt"

	"frontier-realm/server/models"
)

// PlayerService translates player commands into world moves
type PlayerService struct {
	world *WorldService
}

// NewPlayerService creates a new player service
func NewPlayerService(world *WorldService) *PlayerService {
	return &PlayerService{world: world}
}

// directionDelta maps a compass direction onto a grid step
func directionDelta(direction string) (int, int, bool) {
	switch direction {
	case "north":
		return 0, -1, true
	case "south":
		return 0, 1, true
	case "east":
		return 1, 0, true
	case "west":
		return -1, 0, true
	case "northeast":
		return 1, -1, true
	case "northwest":
		return -1, -1, true
	case "southeast":
		return 1, 1, true
	case "southwest":
		return -1, 1, true
	}
	return 0, 0, false
}

// Move steps the player one tile in direction
func (ps *PlayerService) Move(direction string) (models.Cell, error) {
	dx, dy, ok := directionDelta(direction)
	if !ok {
		return ps.world.Player(), fmt.Errorf("%q: %w", direction, ErrUnknownDirection)
	}
	pos, err := ps.world.MovePlayer(dx, dy)
	if err != nil {
		return pos, fmt.Errorf("move %s: %w", direction, err)
	}
	return pos, nil
}

// Teleport moves the player to a grid cell and preloads around it
func (ps *PlayerService) Teleport(x, y int) (PreloadInfo, error) {
	info, err := ps.world.TeleportPlayer(x, y)
	if err != nil {
		return info, fmt.Errorf("teleport to (%d,%d): %w", x, y, err)
	}
	return info, nil
}

// Position returns the player cell and its world position
func (ps *PlayerService) Position() (models.Cell, float64, float64) {
	c := ps.world.Player()
	wx, wy := models.GridToWorld(c.X, c.Y)
	return c, wx, wy
}
