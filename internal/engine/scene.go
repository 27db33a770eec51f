package engine

import (
	"github.com/redhaven/colony/internal/domain/area"
	"github.com/redhaven/colony/internal/domain/item"
	"github.com/redhaven/colony/internal/domain/resources"
)

// PlayerSpriteKey is the asset key of the colonist.
const PlayerSpriteKey = "player"

// Bar is one resource gauge.
type Bar struct {
	Kind  resources.Kind `json:"kind"`
	Level uint8          `json:"level"`
	Rate  int16          `json:"rate"`
}

// Scene is what the rendering service draws for one frame of the game screen.
type Scene struct {
	Player    area.Drawable   `json:"player"`
	Areas     []area.Drawable `json:"areas"`
	Bars      []Bar           `json:"bars"` // oxygen, energy, life
	Inventory []item.Stack    `json:"inventory"`
	Milestone int             `json:"milestone"`
	Objective string          `json:"objective,omitempty"`
	Tick      int64           `json:"tick"`
}

// Scene renders the current state.
func (e *Engine) Scene() Scene {
	gs := e.state
	p := gs.Player

	sc := Scene{
		Player:    area.Drawable{Position: p.Position},
		Areas:     make([]area.Drawable, 0, len(gs.Areas)),
		Bars:      make([]Bar, 0, len(resources.Order)),
		Inventory: p.Inventory.Clone().Stacks,
		Milestone: gs.Milestone,
		Tick:      e.tick,
	}
	if assets := gs.Assets(); assets != nil {
		sc.Player.Sprite, _ = assets.Lookup(PlayerSpriteKey)
	}
	for _, a := range gs.Areas {
		sc.Areas = append(sc.Areas, a.Render())
	}
	for _, k := range resources.Order {
		sc.Bars = append(sc.Bars, Bar{Kind: k, Level: p.Resources.Get(k), Rate: p.ResourcesChange.Get(k)})
	}
	if obj, ok := e.milestones.Current(gs); ok {
		sc.Objective = obj.Name
	}
	return sc
}
