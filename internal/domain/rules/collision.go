// Package rules contains the pure calculation logic for movement and collision.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"github.com/redhaven/colony/internal/domain/area"
	"github.com/redhaven/colony/internal/domain/geom"
)

// Bounds is the subset of map geometry collision needs.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
	FootprintW, FootprintH float64
}

// Direction is one movement key.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Step returns the offset of one move in d.
func (d Direction) Step(step float64) geom.Point {
	switch d {
	case DirUp:
		return geom.Point{Y: -step}
	case DirDown:
		return geom.Point{Y: step}
	case DirLeft:
		return geom.Point{X: -step}
	default:
		return geom.Point{X: step}
	}
}

// OutOfBounds reports whether pos lies past the map borders.
func OutOfBounds(pos geom.Point, b Bounds) bool {
	return pos.X < b.MinX || pos.X > b.MaxX || pos.Y < b.MinY || pos.Y > b.MaxY
}

// Collides reports whether a player at pos would overlap any hit box or
// leave the map.
func Collides(pos geom.Point, b Bounds, areas []area.Area) bool {
	if OutOfBounds(pos, b) {
		return true
	}
	footprint := geom.RectAt(pos, b.FootprintW, b.FootprintH)
	for _, a := range areas {
		if footprint.Overlaps(a.CollisionArea()) {
			return true
		}
	}
	return false
}

// Move applies each direction in order, checking every partial step on its
// own. A blocked direction is skipped; the others still apply.
func Move(from geom.Point, dirs []Direction, step float64, b Bounds, areas []area.Area) geom.Point {
	pos := from
	for _, d := range dirs {
		off := d.Step(step)
		next := geom.Point{X: pos.X + off.X, Y: pos.Y + off.Y}
		if !Collides(next, b, areas) {
			pos = next
		}
	}
	return pos
}
