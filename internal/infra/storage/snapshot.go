package storage

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/redhaven/colony/internal/domain/area"
	"github.com/redhaven/colony/internal/domain/machine"
	"github.com/redhaven/colony/internal/domain/player"
)

// SnapshotVersion is written into every snapshot.
const SnapshotVersion = 1

// AreaRecord is the tagged form of one area. Exactly one variant field is set.
type AreaRecord struct {
	Kind    area.Kind        `yaml:"kind"`
	Machine *machine.Machine `yaml:"machine,omitempty"`
	Rock    *area.Rock       `yaml:"rock,omitempty"`
}

// Snapshot is the persisted form of a game. Sprites and other asset
// references are not part of it.
type Snapshot struct {
	Version   int           `yaml:"version"`
	RunID     string        `yaml:"run_id"`
	SavedAt   time.Time     `yaml:"saved_at"`
	Player    player.Player `yaml:"player"`
	Milestone int           `yaml:"milestone"`
	Machines  []AreaRecord  `yaml:"machines"`
}

// EncodeSnapshot renders a snapshot as YAML.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	s.Version = SnapshotVersion
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses YAML produced by EncodeSnapshot and checks that
// every area record carries the variant its kind names.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	for i, rec := range s.Machines {
		switch rec.Kind {
		case area.KindMachine:
			if rec.Machine == nil {
				return Snapshot{}, fmt.Errorf("area %d: machine record without machine", i)
			}
			rec.Machine.Restore()
		case area.KindRock:
			if rec.Rock == nil {
				return Snapshot{}, fmt.Errorf("area %d: rock record without rock", i)
			}
		default:
			return Snapshot{}, fmt.Errorf("area %d: unknown kind %q", i, rec.Kind)
		}
	}
	return s, nil
}

// RecordArea converts a live area into its tagged record.
func RecordArea(a area.Area) (AreaRecord, error) {
	switch v := a.(type) {
	case *machine.Machine:
		return AreaRecord{Kind: area.KindMachine, Machine: v}, nil
	case *area.Rock:
		return AreaRecord{Kind: area.KindRock, Rock: v}, nil
	}
	return AreaRecord{}, fmt.Errorf("cannot record area %s of kind %s", a.Name(), a.Kind())
}

// Area returns the live area held by the record.
func (r AreaRecord) Area() area.Area {
	if r.Machine != nil {
		return r.Machine
	}
	return r.Rock
}

// Clone returns a deep copy that shares nothing with live game objects.
func (s Snapshot) Clone() (Snapshot, error) {
	data, err := EncodeSnapshot(s)
	if err != nil {
		return Snapshot{}, err
	}
	return DecodeSnapshot(data)
}
