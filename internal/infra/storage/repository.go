// Package storage provides the persistence layer for the colony: the two
// save slots and the event ledger.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Slot names a save. Each slot is fully overwritten on write.
type Slot string

const (
	SlotAutosave  Slot = "autosave"
	SlotMilestone Slot = "milestone"
)

// ErrSlotNotFound is returned when loading a slot that was never written.
var ErrSlotNotFound = errors.New("save slot not found")

// PersistenceError wraps a failed read, write or decode of a slot.
type PersistenceError struct {
	Op   string // "load", "save" or "decode"
	Slot Slot
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s slot %s: %v", e.Op, e.Slot, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SaveStore defines how snapshots are durably stored.
type SaveStore interface {
	// Save atomically replaces the slot's content.
	Save(ctx context.Context, slot Slot, snap Snapshot) error

	// Load returns the slot's content, or an error wrapping ErrSlotNotFound.
	Load(ctx context.Context, slot Slot) (Snapshot, error)
}

// GameEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type GameEvent struct {
	ID        string                 `json:"id" db:"id"`
	RunID     string                 `json:"run_id" db:"run_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	TargetID  string                 `json:"target_id" db:"target_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
	Tick      int64                  `json:"tick" db:"tick"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event GameEvent) error

	// GetByRunID retrieves all events for one run, oldest first.
	GetByRunID(ctx context.Context, runID string) ([]GameEvent, error)

	// GetByEventType retrieves all events of a specific type within a run.
	GetByEventType(ctx context.Context, runID string, eventType string) ([]GameEvent, error)
}
