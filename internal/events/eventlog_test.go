package events

import (
	"errors"
	"testing"
)

type failingPersister struct{ calls int }

func (f *failingPersister) Append(GameEvent) error {
	f.calls++
	return errors.New("disk full")
}

func TestAppendFillsIdentity(t *testing.T) {
	el := NewEventLog(nil)
	if err := el.Append(GameEvent{Type: EventTypeTradeApplied, ActorID: "PLAYER", Tick: 4}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got := el.Replay()
	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}
	if got[0].ID == "" || got[0].Timestamp.IsZero() {
		t.Errorf("Expected ID and timestamp to be filled, got %+v", got[0])
	}
}

func TestQueriesFilter(t *testing.T) {
	el := NewEventLog(nil)
	_ = el.Append(GameEvent{Type: EventTypeTradeApplied, ActorID: "PLAYER"})
	_ = el.Append(GameEvent{Type: EventTypeMachineExpired, ActorID: "SYSTEM"})
	_ = el.Append(GameEvent{Type: EventTypeTradeApplied, ActorID: "PLAYER"})

	if n := len(el.GetByType(EventTypeTradeApplied)); n != 2 {
		t.Errorf("Expected 2 applied trades, got %d", n)
	}
	if n := len(el.GetByActor("SYSTEM")); n != 1 {
		t.Errorf("Expected 1 system event, got %d", n)
	}
	if el.Len() != 3 {
		t.Errorf("Expected 3 events, got %d", el.Len())
	}
}

func TestPersisterFailureKeepsEvent(t *testing.T) {
	p := &failingPersister{}
	el := NewEventLog(p)

	if err := el.Append(GameEvent{Type: EventTypePlayerDied}); err == nil {
		t.Errorf("Expected the persister error to surface")
	}
	if p.calls != 1 || el.Len() != 1 {
		t.Errorf("Expected the event to stay in memory, got %d events", el.Len())
	}
}
