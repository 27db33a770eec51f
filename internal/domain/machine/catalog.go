package machine

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/redhaven/colony/internal/domain/area"
	"github.com/redhaven/colony/internal/domain/geom"
	"github.com/redhaven/colony/internal/domain/item"
	"github.com/redhaven/colony/internal/domain/resources"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// DefaultCatalog returns the embedded colony layout.
func DefaultCatalog() []byte {
	return defaultCatalog
}

type costSpec struct {
	Item   string `yaml:"item"`
	Amount uint32 `yaml:"amount"`
}

type tradeSpec struct {
	Name           string           `yaml:"name"`
	Duration       uint32           `yaml:"duration"`
	InitialState   State            `yaml:"initial_state"`
	ResultingState State            `yaml:"resulting_state"`
	Cost           []costSpec       `yaml:"cost"`
	Produces       *costSpec        `yaml:"produces"`
	ResourceDelta  resources.Deltas `yaml:"resource_delta"`
}

type machineSpec struct {
	Name             string           `yaml:"name"`
	HitBox           geom.Rect        `yaml:"hit_box"`
	RunningResources resources.Deltas `yaml:"running_resources"`
	Trades           []tradeSpec      `yaml:"trades"`
}

type rockSpec struct {
	Name   string    `yaml:"name"`
	HitBox geom.Rect `yaml:"hit_box"`
}

// Catalog is the parsed layout file.
type Catalog struct {
	Machines []machineSpec `yaml:"machines"`
	Rocks    []rockSpec    `yaml:"rocks"`
}

// ParseCatalog decodes a layout file and checks every item and state it names.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse machine catalog: %w", err)
	}
	for _, ms := range c.Machines {
		for _, ts := range ms.Trades {
			if err := ts.validate(); err != nil {
				return nil, fmt.Errorf("machine %s trade %s: %w", ms.Name, ts.Name, err)
			}
		}
	}
	return &c, nil
}

func validState(s State) bool {
	return s == StateBroken || s == StateIdle || s == StateRunning
}

func (ts tradeSpec) validate() error {
	if !validState(ts.InitialState) || !validState(ts.ResultingState) {
		return fmt.Errorf("unknown state %q -> %q", ts.InitialState, ts.ResultingState)
	}
	seen := make(map[string]bool, len(ts.Cost))
	for _, c := range ts.Cost {
		if _, ok := item.GetItem(c.Item); !ok {
			return fmt.Errorf("unknown cost item %q", c.Item)
		}
		if seen[c.Item] {
			return fmt.Errorf("duplicate cost item %q", c.Item)
		}
		seen[c.Item] = true
	}
	if ts.Produces != nil {
		if _, ok := item.GetItem(ts.Produces.Item); !ok {
			return fmt.Errorf("unknown produced item %q", ts.Produces.Item)
		}
	}
	return nil
}

func (ts tradeSpec) build() Trade {
	t := Trade{
		Name:           ts.Name,
		Duration:       ts.Duration,
		InitialState:   ts.InitialState,
		ResultingState: ts.ResultingState,
		ResourceDelta:  ts.ResourceDelta,
	}
	for _, c := range ts.Cost {
		it, _ := item.GetItem(c.Item)
		t.Cost = append(t.Cost, Cost{Item: it, Amount: c.Amount})
	}
	if ts.Produces != nil {
		t.ProducedItem, _ = item.GetItem(ts.Produces.Item)
		t.ProducedAmount = ts.Produces.Amount
	}
	return t
}

// Build creates fresh areas from the catalog: Broken machines first, in
// declaration order, then rocks.
func (c *Catalog) Build(radius float64) []area.Area {
	out := make([]area.Area, 0, len(c.Machines)+len(c.Rocks))
	for _, ms := range c.Machines {
		trades := make([]Trade, 0, len(ms.Trades))
		for _, ts := range ms.Trades {
			trades = append(trades, ts.build())
		}
		out = append(out, New(ms.Name, ms.HitBox, radius, ms.RunningResources, trades...))
	}
	for _, rs := range c.Rocks {
		out = append(out, area.NewRock(rs.Name, rs.HitBox, radius))
	}
	return out
}

// SpriteKeys lists every asset key the catalog's areas will ask for.
func (c *Catalog) SpriteKeys() []string {
	var keys []string
	for _, ms := range c.Machines {
		for _, s := range []State{StateBroken, StateIdle, StateRunning} {
			keys = append(keys, spriteKey(ms.Name, s))
		}
	}
	for _, rs := range c.Rocks {
		keys = append(keys, "rocks/"+rs.Name)
	}
	return keys
}
