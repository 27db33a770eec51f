package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redhaven/colony/internal/domain/area"
	"github.com/redhaven/colony/internal/domain/machine"
	"github.com/redhaven/colony/internal/domain/player"
	"github.com/redhaven/colony/internal/domain/resources"
	"github.com/redhaven/colony/internal/infra/storage"
	"github.com/redhaven/colony/internal/platform/config"
)

// GameState is everything a run needs: the colonist, the milestone counter
// and the placed areas. Asset references are transient and rebuilt by
// AttachAssets after a load.
type GameState struct {
	RunID     string
	Player    *player.Player
	Milestone int
	Areas     []area.Area

	assets   area.Assets
	depleted resources.DeathReason // vitals seen at zero this life, not persisted
}

// NewGameState starts a fresh run from the configured kit and the catalog's
// layout. Every machine starts Broken.
func NewGameState(cfg *config.Config, catalog *machine.Catalog) *GameState {
	sim := cfg.Simulation
	return &GameState{
		RunID:  uuid.NewString(),
		Player: player.NewPlayer(cfg.World.Spawn, sim.StartingLevels, sim.StartingChange, cfg.Kit()...),
		Areas:  catalog.Build(cfg.World.InteractionRadius),
	}
}

// Machines returns the machine areas in map order.
func (gs *GameState) Machines() []*machine.Machine {
	var out []*machine.Machine
	for _, a := range gs.Areas {
		if m, ok := a.(*machine.Machine); ok {
			out = append(out, m)
		}
	}
	return out
}

// AttachAssets resolves sprites for every area. A missing sprite is fatal
// for the caller: the area would have nothing to draw.
func (gs *GameState) AttachAssets(assets area.Assets) error {
	for _, a := range gs.Areas {
		if err := a.Attach(assets); err != nil {
			return fmt.Errorf("failed to attach assets to %s: %w", a.Name(), err)
		}
	}
	gs.assets = assets
	return nil
}

// Assets returns the catalog attached last, or nil.
func (gs *GameState) Assets() area.Assets {
	return gs.assets
}

// ToSnapshot captures the persisted part of the state. The snapshot shares
// pointers with the live state; Clone it before keeping it around.
func (gs *GameState) ToSnapshot() (storage.Snapshot, error) {
	snap := storage.Snapshot{
		RunID:     gs.RunID,
		SavedAt:   time.Now().UTC(),
		Player:    *gs.Player,
		Milestone: gs.Milestone,
		Machines:  make([]storage.AreaRecord, 0, len(gs.Areas)),
	}
	for _, a := range gs.Areas {
		rec, err := storage.RecordArea(a)
		if err != nil {
			return storage.Snapshot{}, err
		}
		snap.Machines = append(snap.Machines, rec)
	}
	return snap, nil
}

// FromSnapshot rebuilds a state from a decoded snapshot. Assets must be
// attached again before the state is rendered.
func FromSnapshot(snap storage.Snapshot) *GameState {
	p := snap.Player
	gs := &GameState{
		RunID:     snap.RunID,
		Player:    &p,
		Milestone: snap.Milestone,
		Areas:     make([]area.Area, 0, len(snap.Machines)),
	}
	if gs.RunID == "" {
		gs.RunID = uuid.NewString()
	}
	for _, rec := range snap.Machines {
		gs.Areas = append(gs.Areas, rec.Area())
	}
	return gs
}

// Equal compares the persisted fields of two states. Run IDs and assets are
// not compared.
func (gs *GameState) Equal(o *GameState) bool {
	if gs.Milestone != o.Milestone || !gs.Player.Equal(o.Player) || len(gs.Areas) != len(o.Areas) {
		return false
	}
	for i, a := range gs.Areas {
		if !areaEqual(a, o.Areas[i]) {
			return false
		}
	}
	return true
}

func areaEqual(a, b area.Area) bool {
	switch x := a.(type) {
	case *machine.Machine:
		y, ok := b.(*machine.Machine)
		return ok && x.Equal(y)
	case *area.Rock:
		y, ok := b.(*area.Rock)
		return ok && x.Equal(y)
	}
	return false
}
