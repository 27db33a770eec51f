package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redhaven/colony/internal/domain/area"
	"github.com/redhaven/colony/internal/domain/machine"
	"github.com/redhaven/colony/internal/domain/resources"
	"github.com/redhaven/colony/internal/events"
	"github.com/redhaven/colony/internal/infra/storage"
	"github.com/redhaven/colony/internal/platform/config"
	"github.com/redhaven/colony/internal/platform/logger"
	"github.com/redhaven/colony/internal/platform/metrics"
	"github.com/redhaven/colony/internal/screen"
)

const (
	actorPlayer = "PLAYER"
	actorSystem = "SYSTEM"
)

type haltReason int

const (
	running haltReason = iota
	haltDeath
	haltWin
)

// SavePayload is recorded for every slot write and load.
type SavePayload struct {
	Slot      storage.Slot `json:"slot"`
	Milestone int          `json:"milestone"`
}

// Engine is the game screen: the root of the screen stack and the owner of
// the running GameState. It wires the sub-systems together and persists the
// run at the points the game defines (escape, milestones, death).
type Engine struct {
	cfg      *config.Config
	catalog  *machine.Catalog
	store    storage.SaveStore
	eventLog *events.EventLog
	logger   *logger.Logger
	metrics  *metrics.Collector
	assets   area.Assets

	// Sub-systems
	movement   *MovementSystem
	trades     *TradeSystem
	machines   *MachineSystem
	metabolism *MetabolismSystem
	milestones *MilestoneSystem

	// State
	state        *GameState
	lastAutosave *storage.Snapshot // what the autosave slot holds, never a dead colonist
	frame        int64
	tick         int64
	halt         haltReason
}

// NewEngine initializes the sub-systems. Call NewGame or Resume before the
// first Update.
func NewEngine(cfg *config.Config, catalog *machine.Catalog, store storage.SaveStore, eventLog *events.EventLog, log *logger.Logger, m *metrics.Collector) *Engine {
	sim := cfg.Simulation
	return &Engine{
		cfg:      cfg,
		catalog:  catalog,
		store:    store,
		eventLog: eventLog,
		logger:   log,
		metrics:  m,

		movement:   NewMovementSystem(cfg.World),
		trades:     NewTradeSystem(eventLog, log, m, sim.ForceLifeDrainOnInteract, sim.DeathDrain, sim.PopupDuration),
		machines:   NewMachineSystem(eventLog, log),
		metabolism: NewMetabolismSystem(eventLog, log, sim.DeathDrain),
		milestones: NewMilestoneSystem(sim.Objectives),
	}
}

// SetAssets registers the sprite catalog. It is attached to the current
// state and to every state created or loaded afterwards.
func (e *Engine) SetAssets(assets area.Assets) error {
	e.assets = assets
	if e.state == nil {
		return nil
	}
	return e.state.AttachAssets(assets)
}

// NewGame replaces the current run with a fresh one.
func (e *Engine) NewGame() error {
	return e.install(NewGameState(e.cfg, e.catalog), nil)
}

// Resume loads slot into a new run. On error the current run is untouched;
// the caller decides on a fallback.
func (e *Engine) Resume(ctx context.Context, slot storage.Slot) error {
	snap, err := e.store.Load(ctx, slot)
	if err != nil {
		return err
	}
	kept, err := snap.Clone()
	if err != nil {
		return err
	}
	var autosave *storage.Snapshot
	if slot == storage.SlotAutosave {
		autosave = &kept
	}
	if err := e.install(FromSnapshot(snap), autosave); err != nil {
		return err
	}
	e.logger.Info(fmt.Sprintf("[ENGINE] Resumed run %s from %s (milestone %d)", e.state.RunID, slot, e.state.Milestone))
	e.record(events.EventTypeGameLoaded, actorSystem, string(slot), SavePayload{Slot: slot, Milestone: e.state.Milestone})
	return nil
}

func (e *Engine) install(gs *GameState, autosave *storage.Snapshot) error {
	if e.assets != nil {
		if err := gs.AttachAssets(e.assets); err != nil {
			return err
		}
	}
	e.state = gs
	e.lastAutosave = autosave
	e.frame = 0
	e.tick = 0
	e.halt = running
	return nil
}

// State returns the running state.
func (e *Engine) State() *GameState {
	return e.state
}

// Tick returns the number of simulation ticks since the run was installed.
func (e *Engine) Tick() int64 {
	return e.tick
}

// Halted reports whether the run ended and waits for a restart.
func (e *Engine) Halted() bool {
	return e.halt != running
}

// Save writes the current state to slot. A failed save leaves the previous
// slot content in place.
func (e *Engine) Save(ctx context.Context, slot storage.Slot) error {
	snap, err := e.state.ToSnapshot()
	if err != nil {
		return err
	}
	kept, err := snap.Clone()
	if err != nil {
		return err
	}

	start := time.Now()
	err = e.store.Save(ctx, slot, kept)
	e.metrics.RecordSave(time.Since(start), err)
	if err != nil {
		return err
	}
	if slot == storage.SlotAutosave {
		e.lastAutosave = &kept
	}
	e.record(events.EventTypeGameSaved, actorSystem, string(slot), SavePayload{Slot: slot, Milestone: e.state.Milestone})
	return nil
}

func (e *Engine) ID() screen.ID { return screen.IDGame }

// Update runs one frame:
//  1. escape saves the run and pauses;
//  2. movement, then an interaction on a fresh Interact press;
//  3. milestone check;
//  4. every FramesPerTick frames, machine timers then metabolism.
//
// Only a failed command send is returned; it means the stack is broken.
func (e *Engine) Update(ctx context.Context, in screen.Input, out chan<- screen.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.halt != running {
		return e.restart(ctx)
	}
	start := time.Now()
	defer func() { e.metrics.RecordTick(time.Since(start)) }()

	if in.JustPressed(screen.KeyEscape) {
		if err := e.Save(ctx, storage.SlotAutosave); err != nil {
			e.logger.Error("[ENGINE] Autosave failed: " + err.Error())
			if err := screen.Send(out, screen.ShowPopup(ColorWarning, "Autosave failed", e.cfg.Simulation.PopupDuration)); err != nil {
				return err
			}
		}
		return screen.Send(out, screen.PushScreen(screen.IDPause, nil))
	}

	e.frame++
	e.movement.OnFrame(e.state, in)
	if in.JustPressed(screen.KeyInteract) {
		if err := e.trades.Interact(e.state, e.tick, out); err != nil {
			return err
		}
	}

	if err := e.checkMilestone(ctx, out); err != nil || e.halt != running {
		return err
	}

	if e.frame%int64(e.cfg.Simulation.FramesPerTick) != 0 {
		return nil
	}
	e.tick++
	e.machines.OnTick(e.state, e.tick)
	if reason, dead := e.metabolism.OnTick(e.state, e.tick); dead {
		return e.die(ctx, reason, out)
	}
	return nil
}

func (e *Engine) checkMilestone(ctx context.Context, out chan<- screen.Command) error {
	obj, met, final := e.milestones.Check(e.state)
	if !met {
		return nil
	}
	gs := e.state
	e.metrics.RecordMilestone()
	e.logger.Info(fmt.Sprintf("[ENGINE] Milestone %d reached: %s", gs.Milestone, obj.Name))
	e.record(events.EventTypeMilestone, actorPlayer, obj.Name, MilestonePayload{Milestone: gs.Milestone, Name: obj.Name, Final: final})

	for _, slot := range []storage.Slot{storage.SlotMilestone, storage.SlotAutosave} {
		if err := e.Save(ctx, slot); err != nil {
			e.logger.Error(fmt.Sprintf("[ENGINE] Failed to save %s: %v", slot, err))
			if err := screen.Send(out, screen.ShowPopup(ColorWarning, fmt.Sprintf("Saving %s failed", slot), e.cfg.Simulation.PopupDuration)); err != nil {
				return err
			}
		}
	}
	if err := screen.Send(out, screen.ShowPopup(ColorSuccess, "Milestone reached: "+obj.Name, e.cfg.Simulation.PopupDuration)); err != nil {
		return err
	}
	if final {
		e.halt = haltWin
		return screen.Send(out, screen.PushScreen(screen.IDWin, gs.Milestone))
	}
	return nil
}

// die persists the last autosave again so the slot never holds a dead
// colonist, then hands over to the death screen.
func (e *Engine) die(ctx context.Context, reason resources.DeathReason, out chan<- screen.Command) error {
	e.halt = haltDeath
	e.metrics.RecordDeath()
	e.logger.Warn(fmt.Sprintf("[ENGINE] Colonist died (%s) at tick %d", reason, e.tick))
	e.record(events.EventTypePlayerDied, actorPlayer, "", DeathPayload{Reason: reason, Milestone: e.state.Milestone})

	if e.lastAutosave != nil {
		start := time.Now()
		err := e.store.Save(ctx, storage.SlotAutosave, *e.lastAutosave)
		e.metrics.RecordSave(time.Since(start), err)
		if err != nil {
			e.logger.Error("[ENGINE] Failed to restore autosave: " + err.Error())
		}
	}
	return screen.Send(out, screen.PushScreen(screen.IDDeath, reason))
}

// restart runs once the death or win screen has been dismissed. A death
// resumes from the run's last milestone when there is one.
func (e *Engine) restart(ctx context.Context) error {
	prev, runID := e.halt, e.state.RunID
	if prev == haltDeath {
		snap, err := e.store.Load(ctx, storage.SlotMilestone)
		switch {
		case err == nil && snap.RunID == runID:
			if err := e.Resume(ctx, storage.SlotMilestone); err == nil {
				return nil
			}
		case err != nil && !errors.Is(err, storage.ErrSlotNotFound):
			e.logger.Warn("[ENGINE] Milestone save unreadable: " + err.Error())
		}
	}
	if err := e.NewGame(); err != nil {
		return err
	}
	e.logger.Info("[ENGINE] Started new run " + e.state.RunID)
	return nil
}

func (e *Engine) record(t events.EventType, actor, target string, payload interface{}) {
	appendEvent(e.eventLog, e.logger, events.GameEvent{
		RunID:    e.state.RunID,
		Type:     t,
		ActorID:  actor,
		TargetID: target,
		Payload:  payload,
		Tick:     e.tick,
	})
}

func appendEvent(el *events.EventLog, log *logger.Logger, event events.GameEvent) {
	if el == nil {
		return
	}
	if err := el.Append(event); err != nil {
		log.Error("[EVENTS] " + err.Error())
	}
}

var _ screen.Screen = (*Engine)(nil)
