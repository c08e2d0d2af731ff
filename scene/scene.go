// Package scene is the seam between the world core and whatever draws and
// collides tiles. The core only ever creates handles through a Factory and
// gives them back with Release.
package scene

import "frontier-realm/server/models"

// SpriteSpec describes a tile sprite to create.
type SpriteSpec struct {
	Layer models.Layer
	Tag   uint8

	// World position of the tile anchor.
	X, Y  float64
	Depth float64
}

// BodySpec describes a static collision body.
type BodySpec struct {
	X, Y          float64
	Width, Height float64
}

// Sprite is a live render handle.
type Sprite interface {
	ID() uint64
	Spec() SpriteSpec
	Release()
}

// Body is a live collision handle.
type Body interface {
	ID() uint64
	Release()
}

// Factory creates render and collision handles.
type Factory interface {
	NewSprite(spec SpriteSpec) Sprite
	NewBody(spec BodySpec) Body
}
