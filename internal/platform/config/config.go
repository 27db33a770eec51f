// Package config holds the immutable tuning of a colony run: map geometry,
// simulation rates, storage locations and the network listener.
// A *Config is built once at startup and passed by reference; nothing
// mutates it afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/redhaven/colony/internal/domain/geom"
	"github.com/redhaven/colony/internal/domain/item"
	"github.com/redhaven/colony/internal/domain/resources"
	"github.com/redhaven/colony/internal/domain/rules"
)

// World is the fixed map geometry used by collision and interaction checks.
type World struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"` // a position with X > MaxX is off the map
	MaxY float64 `yaml:"max_y"`

	FootprintW float64 `yaml:"footprint_w"` // player collision box, anchored at the position
	FootprintH float64 `yaml:"footprint_h"`

	InteractionRadius float64    `yaml:"interaction_radius"`
	MoveStep          float64    `yaml:"move_step"` // pixels per pressed direction per frame
	Spawn             geom.Point `yaml:"spawn"`
}

// Bounds projects the geometry collision checks need.
func (w World) Bounds() rules.Bounds {
	return rules.Bounds{
		MinX: w.MinX, MinY: w.MinY, MaxX: w.MaxX, MaxY: w.MaxY,
		FootprintW: w.FootprintW, FootprintH: w.FootprintH,
	}
}

// KitEntry is one stack of the starting inventory.
type KitEntry struct {
	Item   string `yaml:"item"`
	Amount uint32 `yaml:"amount"`
}

// Objective is one milestone: hold Amount of Item.
type Objective struct {
	Name   string `yaml:"name"`
	Item   string `yaml:"item"`
	Amount uint32 `yaml:"amount"`
}

// Simulation controls the tick loop.
type Simulation struct {
	FrameRate      int              `yaml:"frame_rate"`      // updates per second
	FramesPerTick  int              `yaml:"frames_per_tick"` // resource decay and timers run every N frames
	DeathDrain     int16            `yaml:"death_drain"`     // life rate forced once oxygen or energy is gone
	StartingLevels resources.Levels `yaml:"starting_levels"`
	StartingChange resources.Deltas `yaml:"starting_change"`
	StartingKit    []KitEntry       `yaml:"starting_kit"`
	Objectives     []Objective      `yaml:"objectives"`

	// ForceLifeDrainOnInteract sets the life rate to DeathDrain at the start
	// of every interaction attempt, successful or not. Off by default.
	ForceLifeDrainOnInteract bool `yaml:"force_life_drain_on_interact"`

	PopupDuration time.Duration `yaml:"popup_duration"`
	CommandBuffer int           `yaml:"command_buffer"` // screen command channel capacity
}

// Storage locates the save slots and the event ledger.
type Storage struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	SaveDir string `yaml:"save_dir"`
	DBPath  string `yaml:"db_path"`
}

// Network configures the render/input websocket listener.
type Network struct {
	Addr             string `yaml:"addr"`
	ClientSendBuffer int    `yaml:"client_send_buffer"`
}

// Config is the root configuration, mapping to the whole colony.yaml file.
type Config struct {
	World      World             `yaml:"world"`
	Simulation Simulation        `yaml:"simulation"`
	Storage    Storage           `yaml:"storage"`
	Network    Network           `yaml:"network"`
	Assets     map[string]string `yaml:"assets"` // sprite key -> asset path overrides
	LogLevel   string            `yaml:"log_level"`
}

// DefaultConfig returns the shipped tuning.
func DefaultConfig() *Config {
	return &Config{
		World: World{
			MinX:              0,
			MinY:              0,
			MaxX:              1879,
			MaxY:              1030,
			FootprintW:        41,
			FootprintH:        50,
			InteractionRadius: 30,
			MoveStep:          5,
			Spawn:             geom.Point{X: 60, Y: 60},
		},
		Simulation: Simulation{
			FrameRate:      60,
			FramesPerTick:  60, // one tick per second
			DeathDrain:     -100,
			StartingLevels: resources.Full(),
			StartingChange: resources.Deltas{Oxygen: -1, Energy: -1, Life: 0},
			StartingKit: []KitEntry{
				{Item: item.KeyScrap, Amount: 5},
				{Item: item.KeyIce, Amount: 2},
				{Item: item.KeySeeds, Amount: 2},
			},
			Objectives: []Objective{
				{Name: "First harvest", Item: item.KeyFood, Amount: 2},
				{Name: "Ascent vehicle", Item: item.KeyRocketPart, Amount: 1},
			},
			PopupDuration: 3 * time.Second,
			CommandBuffer: 16,
		},
		Storage: Storage{
			Backend: "file",
			SaveDir: "./saves",
			DBPath:  "./saves/colony.db",
		},
		Network: Network{
			Addr:             ":8080",
			ClientSendBuffer: 64,
		},
		LogLevel: "info",
	}
}

// TestConfig returns defaults with one tick per frame, which keeps
// simulation tests short.
func TestConfig() *Config {
	c := DefaultConfig()
	c.Simulation.FramesPerTick = 1
	c.Storage.Backend = "file"
	return c
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.World.MaxX <= c.World.MinX || c.World.MaxY <= c.World.MinY {
		errs = append(errs, errors.New("world borders are empty"))
	}
	if c.World.FootprintW <= 0 || c.World.FootprintH <= 0 {
		errs = append(errs, errors.New("player footprint must be positive"))
	}
	if c.World.InteractionRadius < 0 {
		errs = append(errs, errors.New("interaction radius must not be negative"))
	}
	if c.Simulation.FrameRate <= 0 || c.Simulation.FramesPerTick <= 0 {
		errs = append(errs, errors.New("frame rate and frames per tick must be positive"))
	}
	if c.Simulation.DeathDrain >= 0 {
		errs = append(errs, errors.New("death drain must be negative"))
	}
	if c.Simulation.CommandBuffer <= 0 {
		errs = append(errs, errors.New("command buffer must be positive"))
	}
	for _, k := range c.Simulation.StartingKit {
		if _, ok := item.GetItem(k.Item); !ok {
			errs = append(errs, fmt.Errorf("starting kit names unknown item %q", k.Item))
		}
	}
	for _, o := range c.Simulation.Objectives {
		if _, ok := item.GetItem(o.Item); !ok {
			errs = append(errs, fmt.Errorf("objective %q names unknown item %q", o.Name, o.Item))
		}
	}
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// FrameInterval is the wall-clock time between updates.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Simulation.FrameRate)
}

// Kit resolves the starting inventory against the item registry.
func (c *Config) Kit() []item.Stack {
	out := make([]item.Stack, 0, len(c.Simulation.StartingKit))
	for _, k := range c.Simulation.StartingKit {
		if it, ok := item.GetItem(k.Item); ok {
			out = append(out, item.Stack{Item: it, Count: k.Amount})
		}
	}
	return out
}
