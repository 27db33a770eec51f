package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redhaven/colony/internal/domain/area"
	"github.com/redhaven/colony/internal/domain/geom"
	"github.com/redhaven/colony/internal/domain/item"
	"github.com/redhaven/colony/internal/domain/machine"
	"github.com/redhaven/colony/internal/domain/resources"
	"github.com/redhaven/colony/internal/events"
	"github.com/redhaven/colony/internal/infra/assets"
	"github.com/redhaven/colony/internal/infra/storage"
	"github.com/redhaven/colony/internal/platform/config"
	"github.com/redhaven/colony/internal/platform/logger"
	"github.com/redhaven/colony/internal/platform/metrics"
	"github.com/redhaven/colony/internal/screen"
)

type rig struct {
	eng     *Engine
	stack   *screen.Stack
	el      *events.EventLog
	store   *storage.FileStore
	metrics *metrics.Collector
	catalog *machine.Catalog
}

// newRig builds an engine ticking once per frame on a temp save directory.
func newRig(t *testing.T, tune func(*config.Config)) *rig {
	t.Helper()
	cfg := config.TestConfig()
	if tune != nil {
		tune(cfg)
	}
	catalog, err := machine.ParseCatalog(machine.DefaultCatalog())
	if err != nil {
		t.Fatalf("Failed to parse catalog: %v", err)
	}
	log := logger.NewDiscardLogger()
	el := events.NewEventLog(nil)
	store := storage.NewFileStore(t.TempDir(), log)
	m := metrics.New()

	eng := NewEngine(cfg, catalog, store, el, log, m)
	if err := eng.NewGame(); err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	stack := screen.NewStack(eng, screen.DefaultFactory, cfg.Simulation.CommandBuffer, log)
	return &rig{eng: eng, stack: stack, el: el, store: store, metrics: m, catalog: catalog}
}

// hold runs n frames with keys held.
func (r *rig) hold(t *testing.T, n int, keys ...screen.Key) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := r.stack.Update(context.Background(), screen.Pressed(keys...)); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
}

// press runs one frame with key held and one with nothing held.
func (r *rig) press(t *testing.T, key screen.Key) {
	t.Helper()
	r.hold(t, 1, key)
	r.hold(t, 1)
}

func (r *rig) machine(t *testing.T, name string) *machine.Machine {
	t.Helper()
	for _, m := range r.eng.State().Machines() {
		if m.Name() == name {
			return m
		}
	}
	t.Fatalf("No machine named %s", name)
	return nil
}

// standAt puts the colonist just left of the machine, inside its reach.
func (r *rig) standAt(t *testing.T, name string) {
	t.Helper()
	hb := r.machine(t, name).CollisionArea()
	r.eng.State().Player.Position = geom.Point{X: hb.X - 10, Y: hb.Y + hb.H/2}
}

func (r *rig) give(key string, n uint32) {
	r.eng.State().Player.Inventory.Add(item.Registry[key], n)
}

func TestSuffocationKillsWithBothReason(t *testing.T) {
	r := newRig(t, nil)
	p := r.eng.State().Player
	p.Resources = resources.Levels{Oxygen: 1, Energy: 1, Life: resources.MaxLevel}

	// Tick 1 empties both vitals and forces the drain; life goes 255 -> 155 -> 55 -> 0.
	r.hold(t, 3)
	if r.stack.Top().ID() != screen.IDGame {
		t.Fatalf("Expected the colonist alive after 3 ticks, life %d", p.Resources.Life)
	}
	if p.ResourcesChange.Life != -100 {
		t.Errorf("Expected life rate -100, got %d", p.ResourcesChange.Life)
	}

	r.hold(t, 1)
	death, ok := r.stack.Top().(*screen.Death)
	if !ok {
		t.Fatalf("Expected the death screen, got %s", r.stack.Top().ID())
	}
	if death.Reason != resources.ReasonBoth {
		t.Errorf("Expected reason BOTH, got %s", death.Reason)
	}
	if !r.eng.Halted() {
		t.Errorf("Expected the run to be halted")
	}
	if n := len(r.el.GetByType(events.EventTypeResourceDepleted)); n != 1 {
		t.Errorf("Expected one depletion event, got %d", n)
	}
	if n := len(r.el.GetByType(events.EventTypePlayerDied)); n != 1 {
		t.Errorf("Expected one death event, got %d", n)
	}
	if r.metrics.Deaths != 1 {
		t.Errorf("Expected one death in metrics, got %d", r.metrics.Deaths)
	}
}

func TestOxygenOnlyDeathReason(t *testing.T) {
	r := newRig(t, nil)
	p := r.eng.State().Player
	p.Resources = resources.Levels{Oxygen: 1, Energy: 200, Life: 100}

	r.hold(t, 2)
	death, ok := r.stack.Top().(*screen.Death)
	if !ok || death.Reason != resources.ReasonOxygen {
		t.Fatalf("Expected an oxygen death, got %#v", r.stack.Top())
	}
}

func TestDrainIsNotRestoredWhenVitalsRecover(t *testing.T) {
	r := newRig(t, nil)
	p := r.eng.State().Player
	p.Resources = resources.Levels{Oxygen: 1, Energy: 200, Life: 250}

	r.hold(t, 1)
	p.Resources.Oxygen = 100
	r.hold(t, 1)
	if p.ResourcesChange.Life != -100 {
		t.Errorf("Expected the drain to persist, got %d", p.ResourcesChange.Life)
	}
}

func TestDeathRestoresLastAutosave(t *testing.T) {
	r := newRig(t, nil)
	ctx := context.Background()
	if err := r.eng.Save(ctx, storage.SlotAutosave); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Something else clobbers the slot.
	stale, err := r.store.Load(ctx, storage.SlotAutosave)
	if err != nil {
		t.Fatal(err)
	}
	stale.Milestone = 7
	if err := r.store.Save(ctx, storage.SlotAutosave, stale); err != nil {
		t.Fatal(err)
	}

	r.eng.State().Player.Resources = resources.Levels{Oxygen: 1, Energy: 1, Life: 1}
	r.hold(t, 2)
	if r.stack.Top().ID() != screen.IDDeath {
		t.Fatalf("Expected death, got %s", r.stack.Top().ID())
	}

	got, err := r.store.Load(ctx, storage.SlotAutosave)
	if err != nil {
		t.Fatal(err)
	}
	if got.Milestone != 0 || got.Player.Resources != resources.Full() {
		t.Errorf("Expected the last autosave to be written back, got milestone %d levels %+v", got.Milestone, got.Player.Resources)
	}
}

func TestRestartAfterDeathStartsNewRun(t *testing.T) {
	r := newRig(t, nil)
	firstRun := r.eng.State().RunID
	r.eng.State().Player.Resources = resources.Levels{Oxygen: 1, Energy: 1, Life: 1}
	r.hold(t, 2)

	r.press(t, screen.KeyConfirm)

	if r.eng.Halted() {
		t.Fatalf("Expected the run to restart")
	}
	if r.eng.State().RunID == firstRun {
		t.Errorf("Expected a new run ID")
	}
	if r.eng.State().Player.Resources != resources.Full() {
		t.Errorf("Expected fresh vitals, got %+v", r.eng.State().Player.Resources)
	}
	if r.stack.Depth() != 1 {
		t.Errorf("Expected only the game screen, got depth %d", r.stack.Depth())
	}
}

func TestRestartAfterDeathResumesMilestone(t *testing.T) {
	r := newRig(t, nil)
	runID := r.eng.State().RunID
	r.give(item.KeyFood, 2)

	r.hold(t, 1)
	if r.eng.State().Milestone != 1 {
		t.Fatalf("Expected milestone 1, got %d", r.eng.State().Milestone)
	}
	if len(r.stack.Popups()) != 1 {
		t.Errorf("Expected a milestone popup")
	}

	r.eng.State().Player.Resources = resources.Levels{Oxygen: 1, Energy: 1, Life: 1}
	r.hold(t, 2)
	if r.stack.Top().ID() != screen.IDDeath {
		t.Fatalf("Expected death, got %s", r.stack.Top().ID())
	}
	r.press(t, screen.KeyConfirm)

	gs := r.eng.State()
	if gs.RunID != runID || gs.Milestone != 1 {
		t.Errorf("Expected to resume run %s at milestone 1, got %s at %d", runID, gs.RunID, gs.Milestone)
	}
	if gs.Player.Resources != resources.Full() {
		t.Errorf("Expected the vitals saved with the milestone, got %+v", gs.Player.Resources)
	}
	if n := len(r.el.GetByType(events.EventTypeGameLoaded)); n != 1 {
		t.Errorf("Expected one load event, got %d", n)
	}
}

func TestMilestoneSaveFailureShowsPopup(t *testing.T) {
	r := newRig(t, nil)
	blocker := filepath.Join(t.TempDir(), "saves")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatal(err)
	}
	r.eng.store = storage.NewFileStore(blocker, logger.NewDiscardLogger())
	r.give(item.KeyFood, 2)

	r.hold(t, 1)
	if r.eng.State().Milestone != 1 {
		t.Fatalf("Expected milestone 1 despite the failed saves, got %d", r.eng.State().Milestone)
	}
	popups := r.stack.Popups()
	if len(popups) != 3 {
		t.Fatalf("Expected two warnings and the milestone popup, got %+v", popups)
	}
	if popups[0].Text != "Saving milestone failed" || popups[0].Color != ColorWarning {
		t.Errorf("Unexpected first popup %+v", popups[0])
	}
	if popups[1].Text != "Saving autosave failed" || popups[1].Color != ColorWarning {
		t.Errorf("Unexpected second popup %+v", popups[1])
	}
	if popups[2].Color != ColorSuccess {
		t.Errorf("Expected the milestone popup last, got %+v", popups[2])
	}
	if r.metrics.SaveErrors != 2 {
		t.Errorf("Expected two save errors, got %d", r.metrics.SaveErrors)
	}
}

func TestFinalObjectiveWins(t *testing.T) {
	r := newRig(t, nil)
	r.give(item.KeyFood, 2)
	r.give(item.KeyRocketPart, 1)

	r.hold(t, 1)
	if r.stack.Top().ID() != screen.IDGame {
		t.Fatalf("Expected one milestone per frame, got %s", r.stack.Top().ID())
	}
	r.hold(t, 1)

	win, ok := r.stack.Top().(*screen.Win)
	if !ok || win.Milestone != 2 {
		t.Fatalf("Expected the win screen at milestone 2, got %#v", r.stack.Top())
	}
	snap, err := r.store.Load(context.Background(), storage.SlotMilestone)
	if err != nil || snap.Milestone != 2 {
		t.Errorf("Expected the milestone slot at 2, got %d (%v)", snap.Milestone, err)
	}
	if r.metrics.Milestones != 2 {
		t.Errorf("Expected 2 milestones in metrics, got %d", r.metrics.Milestones)
	}

	runID := r.eng.State().RunID
	r.press(t, screen.KeyConfirm)
	if r.eng.State().RunID == runID || r.eng.State().Milestone != 0 {
		t.Errorf("Expected a new game after winning")
	}
}

func TestRepairAndRunGenerator(t *testing.T) {
	r := newRig(t, nil)
	r.standAt(t, "oxygen_generator")

	r.press(t, screen.KeyInteract)
	gen := r.machine(t, "oxygen_generator")
	if gen.State != machine.StateIdle {
		t.Fatalf("Expected repair to leave the generator IDLE, got %s", gen.State)
	}
	if q := r.eng.State().Player.Inventory.Quantity(item.KeyScrap); q != 3 {
		t.Errorf("Expected 3 scrap left, got %d", q)
	}

	r.press(t, screen.KeyInteract)
	if gen.State != machine.StateRunning {
		t.Fatalf("Expected RUNNING, got %s", gen.State)
	}
	if rate := r.eng.State().Player.ResourcesChange; rate != (resources.Deltas{Oxygen: 2, Energy: -2}) {
		t.Errorf("Expected rates {2 -2 0}, got %+v", rate)
	}
	if n := len(r.el.GetByType(events.EventTypeTradeApplied)); n != 2 {
		t.Errorf("Expected 2 applied trades, got %d", n)
	}
	if r.metrics.TradesApplied != 2 {
		t.Errorf("Expected 2 applied trades in metrics, got %d", r.metrics.TradesApplied)
	}
}

func TestHeldInteractFiresOnce(t *testing.T) {
	r := newRig(t, nil)
	r.standAt(t, "oxygen_generator")

	r.hold(t, 5, screen.KeyInteract)
	if gen := r.machine(t, "oxygen_generator"); gen.State != machine.StateIdle {
		t.Errorf("Expected one trade for a held key, got state %s", gen.State)
	}
}

func TestMissingItemsShowPopup(t *testing.T) {
	r := newRig(t, nil)
	r.standAt(t, "workshop")

	r.press(t, screen.KeyInteract)

	if s := r.machine(t, "workshop").State; s != machine.StateBroken {
		t.Errorf("Expected the workshop to stay BROKEN, got %s", s)
	}
	if q := r.eng.State().Player.Inventory.Quantity(item.KeyScrap); q != 5 {
		t.Errorf("Expected scrap untouched, got %d", q)
	}
	popups := r.stack.Popups()
	if len(popups) != 1 {
		t.Fatalf("Expected one popup, got %d", len(popups))
	}
	if popups[0].Text != "Missing 1 battery" || popups[0].Color != ColorWarning {
		t.Errorf("Unexpected popup %+v", popups[0])
	}
	if n := len(r.el.GetByType(events.EventTypeTradeRejected)); n != 1 {
		t.Errorf("Expected one rejected trade, got %d", n)
	}
}

func TestForcedDrainOnInteract(t *testing.T) {
	r := newRig(t, func(c *config.Config) { c.Simulation.ForceLifeDrainOnInteract = true })
	r.standAt(t, "workshop")

	r.press(t, screen.KeyInteract)
	if rate := r.eng.State().Player.ResourcesChange.Life; rate != -100 {
		t.Errorf("Expected the drain forced even on a refused trade, got %d", rate)
	}
}

func TestInteractOutOfReachDoesNothing(t *testing.T) {
	r := newRig(t, nil)
	r.press(t, screen.KeyInteract)

	if r.el.Len() != 0 || len(r.stack.Popups()) != 0 {
		t.Errorf("Expected no events or popups away from machines")
	}
}

func TestRockInspectShowsName(t *testing.T) {
	r := newRig(t, nil)
	r.eng.State().Player.Position = geom.Point{X: 955, Y: 500}

	r.press(t, screen.KeyInteract)
	popups := r.stack.Popups()
	if len(popups) != 1 || popups[0].Text != "boulder" || popups[0].Color != ColorInfo {
		t.Errorf("Expected an info popup naming the boulder, got %+v", popups)
	}
	if r.el.Len() != 0 {
		t.Errorf("Expected inspecting a rock not to be recorded")
	}
}

func TestTimerExpiryRestoresRates(t *testing.T) {
	r := newRig(t, nil)
	gen := r.machine(t, "oxygen_generator")
	p := r.eng.State().Player

	gen.State = machine.StateRunning
	gen.TimeRemaining = 1
	gen.TimeChange = 1
	p.ResourcesChange = p.ResourcesChange.Add(gen.RunningResources)

	r.hold(t, 1)
	if gen.State != machine.StateIdle || gen.TimeChange != 0 {
		t.Errorf("Expected the generator idle with a halted timer, got %s %d", gen.State, gen.TimeChange)
	}
	if p.ResourcesChange != (resources.Deltas{Oxygen: -1, Energy: -1}) {
		t.Errorf("Expected the base rates back, got %+v", p.ResourcesChange)
	}
	if n := len(r.el.GetByType(events.EventTypeMachineExpired)); n != 1 {
		t.Errorf("Expected one expiry event, got %d", n)
	}
}

func TestEscapeSavesAndPauses(t *testing.T) {
	r := newRig(t, nil)
	r.hold(t, 3, screen.KeyRight)
	r.press(t, screen.KeyEscape)

	if r.stack.Top().ID() != screen.IDPause {
		t.Fatalf("Expected the pause screen, got %s", r.stack.Top().ID())
	}
	snap, err := r.store.Load(context.Background(), storage.SlotAutosave)
	if err != nil {
		t.Fatalf("Expected an autosave: %v", err)
	}
	if snap.Player.Position != (geom.Point{X: 75, Y: 60}) {
		t.Errorf("Expected the saved position (75, 60), got %+v", snap.Player.Position)
	}

	tick := r.eng.Tick()
	r.hold(t, 10)
	if r.eng.Tick() != tick {
		t.Errorf("Expected the simulation frozen while paused")
	}

	r.press(t, screen.KeyEscape)
	if r.stack.Top().ID() != screen.IDGame {
		t.Errorf("Expected escape to resume, got %s", r.stack.Top().ID())
	}
}

func TestResumeRestoresState(t *testing.T) {
	r := newRig(t, nil)
	r.standAt(t, "oxygen_generator")
	r.press(t, screen.KeyInteract)
	if err := r.eng.Save(context.Background(), storage.SlotAutosave); err != nil {
		t.Fatal(err)
	}

	log := logger.NewDiscardLogger()
	other := NewEngine(config.TestConfig(), r.catalog, r.store, events.NewEventLog(nil), log, metrics.New())
	if err := other.Resume(context.Background(), storage.SlotAutosave); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if !other.State().Equal(r.eng.State()) {
		t.Errorf("Expected the resumed state to match the saved one")
	}
	if other.State().RunID != r.eng.State().RunID {
		t.Errorf("Expected the run ID to survive a resume")
	}
}

func TestResumeMissingSlot(t *testing.T) {
	r := newRig(t, nil)
	before := r.eng.State()

	err := r.eng.Resume(context.Background(), storage.SlotMilestone)
	if !errors.Is(err, storage.ErrSlotNotFound) {
		t.Fatalf("Expected ErrSlotNotFound, got %v", err)
	}
	if r.eng.State() != before {
		t.Errorf("Expected a failed resume to keep the current run")
	}
}

func TestSceneRendersAssets(t *testing.T) {
	r := newRig(t, nil)
	keys := append(r.catalog.SpriteKeys(), PlayerSpriteKey)
	if err := r.eng.SetAssets(assets.NewCatalog("assets", keys, nil)); err != nil {
		t.Fatalf("SetAssets failed: %v", err)
	}

	sc := r.eng.Scene()
	if sc.Player.Sprite != "assets/player.png" {
		t.Errorf("Unexpected player sprite %q", sc.Player.Sprite)
	}
	if len(sc.Areas) != len(r.eng.State().Areas) {
		t.Fatalf("Expected one drawable per area, got %d", len(sc.Areas))
	}
	if sc.Areas[0].Sprite != "assets/machines/oxygen_generator/BROKEN.png" {
		t.Errorf("Unexpected machine sprite %q", sc.Areas[0].Sprite)
	}
	if len(sc.Bars) != 3 || sc.Bars[0].Kind != resources.KindOxygen || sc.Bars[2].Kind != resources.KindLife {
		t.Errorf("Expected bars in oxygen, energy, life order, got %+v", sc.Bars)
	}
	if sc.Objective != "First harvest" {
		t.Errorf("Expected the first objective, got %q", sc.Objective)
	}
}

func TestSetAssetsRejectsMissingSprite(t *testing.T) {
	r := newRig(t, nil)
	err := r.eng.SetAssets(assets.NewCatalog("assets", []string{PlayerSpriteKey}, nil))
	if !errors.Is(err, area.ErrAssetMissing) {
		t.Errorf("Expected ErrAssetMissing, got %v", err)
	}
}
