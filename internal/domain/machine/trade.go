package machine

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/redhaven/colony/internal/domain/item"
	"github.com/redhaven/colony/internal/domain/player"
	"github.com/redhaven/colony/internal/domain/resources"
)

// Cost is one required input of a trade.
type Cost struct {
	Item   item.Item `json:"item" yaml:"item"`
	Amount uint32    `json:"amount" yaml:"amount"`
}

// Trade describes one legal transition of a machine, conditioned on the
// player holding every cost item. Trades are read-only after construction.
type Trade struct {
	Name           string           `json:"name" yaml:"name"`
	Duration       uint32           `json:"duration" yaml:"duration"` // ticks; 0 leaves the timer alone
	InitialState   State            `json:"initial_state" yaml:"initial_state"`
	ResultingState State            `json:"resulting_state" yaml:"resulting_state"`
	Cost           []Cost           `json:"cost" yaml:"cost"`
	ResourceDelta  resources.Deltas `json:"resource_delta" yaml:"resource_delta"`
	ProducedItem   item.Item        `json:"produced_item" yaml:"produced_item"`
	ProducedAmount uint32           `json:"produced_amount" yaml:"produced_amount"`
}

// NoOpName names the trade returned when nothing is declared for a state.
const NoOpName = "none"

// NoOpTrade is returned when nothing is declared for the current state.
// Applying it changes nothing.
func NoOpTrade(s State) Trade {
	return Trade{Name: NoOpName, InitialState: s, ResultingState: s}
}

// Equal compares every field; nil and empty cost lists are equal.
func (t Trade) Equal(o Trade) bool {
	return t.Name == o.Name &&
		t.Duration == o.Duration &&
		t.InitialState == o.InitialState &&
		t.ResultingState == o.ResultingState &&
		t.ResourceDelta == o.ResourceDelta &&
		t.ProducedItem == o.ProducedItem &&
		t.ProducedAmount == o.ProducedAmount &&
		slices.Equal(t.Cost, o.Cost)
}

// CurrentTrade returns the first declared trade whose initial state matches
// the machine's state. Later trades from the same state are unreachable.
func (m *Machine) CurrentTrade() Trade {
	for _, t := range m.Trades {
		if t.InitialState == m.State {
			return t
		}
	}
	return NoOpTrade(m.State)
}

// Shortfall is a cost item the player does not hold enough of.
type Shortfall struct {
	Item    item.Item `json:"item"`
	Missing uint32    `json:"missing"`
}

// Shortfalls lists, in cost order, every cost item with a deficit.
// Repeated cost entries for one item are summed.
func Shortfalls(t Trade, inv item.Inventory) []Shortfall {
	var out []Shortfall
	for _, c := range requiredCost(t) {
		have := inv.Quantity(c.Item.Name)
		if have < c.Amount {
			out = append(out, Shortfall{Item: c.Item, Missing: c.Amount - have})
		}
	}
	return out
}

// requiredCost merges cost entries by item name, keeping first-seen order.
func requiredCost(t Trade) []Cost {
	out := make([]Cost, 0, len(t.Cost))
	for _, c := range t.Cost {
		i := slices.IndexFunc(out, func(o Cost) bool { return o.Item.Name == c.Item.Name })
		if i < 0 {
			out = append(out, c)
			continue
		}
		out[i].Amount += c.Amount
	}
	return out
}

// IsAffordable reports whether inv covers every cost of t.
func IsAffordable(t Trade, inv item.Inventory) bool {
	return len(Shortfalls(t, inv)) == 0
}

// InsufficientItemsError is returned by Apply when the player cannot pay.
// Nothing has been mutated when it is returned.
type InsufficientItemsError struct {
	Machine string
	Trade   string
	Missing []Shortfall
}

func (e *InsufficientItemsError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, s := range e.Missing {
		parts = append(parts, fmt.Sprintf("%d %s", s.Missing, s.Item.Name))
	}
	return fmt.Sprintf("insufficient items for %s/%s: missing %s", e.Machine, e.Trade, strings.Join(parts, ", "))
}

// Apply performs t against p:
//  1. any shortfall aborts with *InsufficientItemsError and no mutation;
//  2. cost items are deducted together or not at all (stacks may reach zero);
//  3. on a state change, running resources are added to the player's rates
//     when entering Running and subtracted when leaving it;
//  4. produced items, the resource delta and the timer are applied.
func (m *Machine) Apply(t Trade, p *player.Player) error {
	if missing := Shortfalls(t, p.Inventory); len(missing) > 0 {
		return &InsufficientItemsError{Machine: m.Label, Trade: t.Name, Missing: missing}
	}

	inv := p.Inventory.Clone()
	for _, c := range t.Cost {
		if !inv.Remove(c.Item.Name, c.Amount) {
			return &InsufficientItemsError{Machine: m.Label, Trade: t.Name, Missing: Shortfalls(t, p.Inventory)}
		}
	}
	p.Inventory = inv

	if t.ResultingState != m.State {
		switch {
		case t.ResultingState == StateRunning:
			p.ResourcesChange = p.ResourcesChange.Add(m.RunningResources)
		case m.State == StateRunning:
			p.ResourcesChange = p.ResourcesChange.Sub(m.RunningResources)
		}
		m.State = t.ResultingState
	}

	if t.ProducedAmount > 0 {
		p.Inventory.Add(t.ProducedItem, t.ProducedAmount)
	}
	p.Resources = resources.Apply(p.Resources, t.ResourceDelta)

	if t.Duration > 0 {
		m.TimeRemaining = t.Duration
		m.TimeChange = 1
	}
	return nil
}
