// Package player defines the colonist controlled by the user.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package player

import (
	"github.com/redhaven/colony/internal/domain/geom"
	"github.com/redhaven/colony/internal/domain/item"
	"github.com/redhaven/colony/internal/domain/resources"
)

// Player represents the colonist's vitals, position and belongings.
type Player struct {
	Position geom.Point `json:"position" yaml:"position"`

	// Vitals
	Resources       resources.Levels `json:"resources" yaml:"resources"`               // absolute, saturating
	ResourcesChange resources.Deltas `json:"resources_change" yaml:"resources_change"` // applied once per tick

	Inventory item.Inventory `json:"inventory" yaml:"inventory"`
}

// NewPlayer creates a colonist at pos with the given starting vitals and kit.
func NewPlayer(pos geom.Point, levels resources.Levels, change resources.Deltas, kit ...item.Stack) *Player {
	return &Player{
		Position:        pos,
		Resources:       levels,
		ResourcesChange: change,
		Inventory:       item.NewInventory(kit...),
	}
}

// Footprint returns the w×h collision rectangle anchored at the player's position.
func (p *Player) Footprint(w, h float64) geom.Rect {
	return geom.RectAt(p.Position, w, h)
}

// IsDead reports whether life has run out.
func (p *Player) IsDead() bool {
	return p.Resources.Life == 0
}

// Clone returns a deep copy so callers can stage changes.
func (p *Player) Clone() *Player {
	c := *p
	c.Inventory = p.Inventory.Clone()
	return &c
}

// Equal compares every persisted field.
func (p *Player) Equal(o *Player) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Position == o.Position &&
		p.Resources == o.Resources &&
		p.ResourcesChange == o.ResourcesChange &&
		p.Inventory.Equal(o.Inventory)
}
