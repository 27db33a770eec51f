// Package machine defines colony machines: their Broken/Idle/Running
// lifecycle, timers, resource rates, geometry and the trades that move them
// between states.
// This package is PURE and must NOT import any infrastructure packages.
package machine

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/redhaven/colony/internal/domain/area"
	"github.com/redhaven/colony/internal/domain/geom"
	"github.com/redhaven/colony/internal/domain/player"
	"github.com/redhaven/colony/internal/domain/resources"
)

// State is a machine lifecycle state. There is no terminal state.
type State string

const (
	StateBroken  State = "BROKEN"
	StateIdle    State = "IDLE"
	StateRunning State = "RUNNING"
)

// Machine is a stateful map entity the player trades with.
//
// State only changes through Apply (a successful trade) or Advance (timer expiry).
type Machine struct {
	Label            string           `json:"name" yaml:"name"`
	State            State            `json:"state" yaml:"state"`
	HitBox           geom.Rect        `json:"hit_box" yaml:"hit_box"`
	Radius           float64          `json:"interaction_radius" yaml:"interaction_radius"`
	Trades           []Trade          `json:"trades" yaml:"trades"`
	RunningResources resources.Deltas `json:"running_resources" yaml:"running_resources"`
	TimeRemaining    uint32           `json:"time_remaining" yaml:"time_remaining"`
	TimeChange       uint32           `json:"time_change" yaml:"time_change"`

	interaction geom.Rect
	sprites     map[State]string
}

// New creates a Broken machine. The interaction area is the hit box padded
// by radius on every side.
func New(name string, hitBox geom.Rect, radius float64, running resources.Deltas, trades ...Trade) *Machine {
	m := &Machine{
		Label:            name,
		State:            StateBroken,
		HitBox:           hitBox,
		Radius:           radius,
		Trades:           trades,
		RunningResources: running,
	}
	m.interaction = hitBox.Pad(radius)
	return m
}

// Restore recomputes derived geometry after the exported fields were
// populated by a decoder.
func (m *Machine) Restore() {
	m.interaction = m.HitBox.Pad(m.Radius)
}

func (m *Machine) Kind() area.Kind            { return area.KindMachine }
func (m *Machine) Name() string               { return m.Label }
func (m *Machine) CollisionArea() geom.Rect   { return m.HitBox }
func (m *Machine) InteractionArea() geom.Rect { return m.interaction }

// IsInteractable reports whether pos lies within the interaction area.
func (m *Machine) IsInteractable(pos geom.Point) bool {
	return m.interaction.Contains(pos)
}

// Interact applies the trade selected for the current state.
func (m *Machine) Interact(p *player.Player) (area.Outcome, error) {
	t := m.CurrentTrade()
	from := m.State
	if err := m.Apply(t, p); err != nil {
		return area.Outcome{}, err
	}
	return area.Outcome{Action: t.Name, From: string(from), To: string(m.State)}, nil
}

// Expiry reports a timer that ran out during Advance.
type Expiry struct {
	Expired bool
	From    State // state before the forced switch to Idle
}

// Advance runs the timer for delta ticks. When the remaining time reaches
// zero the timer halts and the machine is forced to Idle whatever its state.
// The caller owns the consequences for the player (see Expiry.From).
func (m *Machine) Advance(delta uint32) Expiry {
	if m.TimeChange == 0 {
		return Expiry{}
	}
	step := uint64(m.TimeChange) * uint64(delta)
	if step < uint64(m.TimeRemaining) {
		m.TimeRemaining -= uint32(step)
		return Expiry{}
	}
	from := m.State
	m.TimeRemaining = 0
	m.TimeChange = 0
	m.State = StateIdle
	return Expiry{Expired: true, From: from}
}

// SpriteKey is the logical asset key for the machine in its current state.
func (m *Machine) SpriteKey() string {
	return spriteKey(m.Label, m.State)
}

func spriteKey(name string, s State) string {
	return fmt.Sprintf("machines/%s/%s", name, s)
}

func (m *Machine) Render() area.Drawable {
	return area.Drawable{
		Position: m.HitBox.Origin(),
		Sprite:   m.sprites[m.State],
		Variant:  string(m.State),
	}
}

// Attach resolves one sprite per state so a state change mid-run never
// lands on a missing asset.
func (m *Machine) Attach(assets area.Assets) error {
	sprites := make(map[State]string, 3)
	for _, s := range []State{StateBroken, StateIdle, StateRunning} {
		key := spriteKey(m.Label, s)
		ref, ok := assets.Lookup(key)
		if !ok {
			return fmt.Errorf("%w: %s", area.ErrAssetMissing, key)
		}
		sprites[s] = ref
	}
	m.sprites = sprites
	return nil
}

// Equal compares persisted fields; sprites are ignored.
func (m *Machine) Equal(o *Machine) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Label == o.Label &&
		m.State == o.State &&
		m.HitBox == o.HitBox &&
		m.Radius == o.Radius &&
		m.RunningResources == o.RunningResources &&
		m.TimeRemaining == o.TimeRemaining &&
		m.TimeChange == o.TimeChange &&
		slices.EqualFunc(m.Trades, o.Trades, Trade.Equal)
}
