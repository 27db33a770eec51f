package engine

import (
	"github.com/redhaven/colony/internal/domain/rules"
	"github.com/redhaven/colony/internal/platform/config"
	"github.com/redhaven/colony/internal/screen"
)

// MovementSystem moves the colonist by the held direction keys.
type MovementSystem struct {
	bounds rules.Bounds
	step   float64
}

// NewMovementSystem creates a movement manager for the given map.
func NewMovementSystem(world config.World) *MovementSystem {
	return &MovementSystem{
		bounds: world.Bounds(),
		step:   world.MoveStep,
	}
}

var directionKeys = [...]struct {
	key screen.Key
	dir rules.Direction
}{
	{screen.KeyUp, rules.DirUp},
	{screen.KeyDown, rules.DirDown},
	{screen.KeyLeft, rules.DirLeft},
	{screen.KeyRight, rules.DirRight},
}

// Directions lists the held directions in a fixed order.
func Directions(in screen.Input) []rules.Direction {
	var dirs []rules.Direction
	for _, dk := range directionKeys {
		if in.Has(dk.key) {
			dirs = append(dirs, dk.dir)
		}
	}
	return dirs
}

// OnFrame applies one frame of movement. It reports whether the colonist moved.
func (ms *MovementSystem) OnFrame(gs *GameState, in screen.Input) bool {
	dirs := Directions(in)
	if len(dirs) == 0 {
		return false
	}
	from := gs.Player.Position
	gs.Player.Position = rules.Move(from, dirs, ms.step, ms.bounds, gs.Areas)
	return gs.Player.Position != from
}
