// Package events provides the append-only ledger of a colony run.
// Trades, depletions, deaths, milestones and saves are recorded here.
package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeTradeApplied     EventType = "TRADE_APPLIED"
	EventTypeTradeRejected    EventType = "TRADE_REJECTED"
	EventTypeMachineExpired   EventType = "MACHINE_EXPIRED"
	EventTypeResourceDepleted EventType = "RESOURCE_DEPLETED"
	EventTypePlayerDied       EventType = "PLAYER_DIED"
	EventTypeMilestone        EventType = "MILESTONE_REACHED"
	EventTypeGameSaved        EventType = "GAME_SAVED"
	EventTypeGameLoaded       EventType = "GAME_LOADED"
)

// GameEvent represents an immutable record of something that happened.
type GameEvent struct {
	ID        string      `json:"id"`
	RunID     string      `json:"run_id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`  // who performed the action
	TargetID  string      `json:"target_id"` // what was affected (optional)
	Payload   interface{} `json:"payload"`   // event-specific data
	Tick      int64       `json:"tick"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of game events.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log, filling ID and Timestamp when unset.
// The event stays in memory even if the persister fails; the error is returned
// so the caller can log it.
func (el *EventLog) Append(event GameEvent) error {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		if err := el.persister.Append(event); err != nil {
			return fmt.Errorf("failed to persist event %s: %w", event.ID, err)
		}
	}
	return nil
}

// GetByType returns all events of one type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// GetByActor returns all events performed by a specific actor.
func (el *EventLog) GetByActor(actorID string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]GameEvent, len(el.events))
	copy(out, el.events)
	return out
}

// Len returns the number of recorded events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
