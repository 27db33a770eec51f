package engine

import (
	"github.com/redhaven/colony/internal/platform/config"
)

// MilestonePayload is recorded when an objective is met.
type MilestonePayload struct {
	Milestone int    `json:"milestone"`
	Name      string `json:"name"`
	Final     bool   `json:"final"`
}

// MilestoneSystem tracks progress through the ordered objectives.
type MilestoneSystem struct {
	objectives []config.Objective
}

// NewMilestoneSystem creates a tracker for objectives, in order.
func NewMilestoneSystem(objectives []config.Objective) *MilestoneSystem {
	return &MilestoneSystem{objectives: objectives}
}

// Current returns the objective the colonist is working on.
func (ms *MilestoneSystem) Current(gs *GameState) (config.Objective, bool) {
	if gs.Milestone < 0 || gs.Milestone >= len(ms.objectives) {
		return config.Objective{}, false
	}
	return ms.objectives[gs.Milestone], true
}

// Check advances the milestone counter by at most one objective. It returns
// the objective met, and whether it was the last one.
func (ms *MilestoneSystem) Check(gs *GameState) (config.Objective, bool, bool) {
	obj, ok := ms.Current(gs)
	if !ok || gs.Player.Inventory.Quantity(obj.Item) < obj.Amount {
		return config.Objective{}, false, false
	}
	gs.Milestone++
	return obj, true, gs.Milestone == len(ms.objectives)
}
