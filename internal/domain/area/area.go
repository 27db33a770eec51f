// Package area defines the capability every placed map entity exposes to the
// simulation: something you can bump into, stand next to, poke, and draw.
// This package is PURE and must NOT import any infrastructure packages.
package area

import (
	"errors"

	"github.com/redhaven/colony/internal/domain/geom"
	"github.com/redhaven/colony/internal/domain/player"
)

// Kind tags the closed set of area variants. Snapshots use it to decode.
type Kind string

const (
	KindMachine Kind = "MACHINE"
	KindRock    Kind = "ROCK"
)

// ErrAssetMissing is returned when a sprite cannot be resolved during Attach.
var ErrAssetMissing = errors.New("asset missing")

// Assets resolves a logical sprite key to a loaded asset reference.
type Assets interface {
	Lookup(key string) (string, bool)
}

// Drawable is what the rendering service needs for one entity.
type Drawable struct {
	Position geom.Point `json:"position"`
	Sprite   string     `json:"sprite"`            // resolved asset reference, empty until attached
	Variant  string     `json:"variant,omitempty"` // state selector, e.g. "RUNNING"
}

// Outcome describes what an interaction did.
type Outcome struct {
	Action string `json:"action"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// Area is implemented by every placed entity.
type Area interface {
	Kind() Kind
	Name() string
	CollisionArea() geom.Rect
	InteractionArea() geom.Rect
	// Interact runs the entity's reaction to the player. Callers check
	// InteractionArea first; Interact does not.
	Interact(p *player.Player) (Outcome, error)
	Render() Drawable
	// Attach rehydrates transient sprite references after a load.
	Attach(assets Assets) error
}
