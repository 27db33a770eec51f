package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/redhaven/colony/internal/events"
	"github.com/redhaven/colony/internal/infra/storage"
	"github.com/redhaven/colony/internal/platform/metrics"
)

func newPersister(t *testing.T) (*SQLitePersisterAdapter, *storage.SQLiteEventRepository, *metrics.Collector) {
	t.Helper()
	db, err := storage.InitSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := storage.NewSQLiteEventRepository(db)
	m := metrics.New()
	return &SQLitePersisterAdapter{repo: repo, metrics: m}, repo, m
}

func TestPersisterWritesObjectPayloads(t *testing.T) {
	a, repo, m := newPersister(t)

	err := a.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		RunID:     "run-1",
		Timestamp: time.Now().UTC(),
		Type:      events.EventTypeTradeApplied,
		ActorID:   "PLAYER",
		Payload:   map[string]interface{}{"trade": "repair"},
		Tick:      4,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	stored, err := repo.GetByRunID(context.Background(), "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Payload["trade"] != "repair" {
		t.Errorf("Expected the repair payload to be stored, got %+v", stored)
	}
	if m.EventErrors != 0 {
		t.Errorf("Expected no event errors, got %d", m.EventErrors)
	}
}

func TestPersisterRejectsNonObjectPayloads(t *testing.T) {
	a, repo, m := newPersister(t)

	err := a.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		RunID:     "run-1",
		Timestamp: time.Now().UTC(),
		Type:      events.EventTypeTradeApplied,
		Payload:   "repair",
	})
	if err == nil {
		t.Fatal("Expected a string payload to be refused")
	}
	if m.EventErrors != 1 {
		t.Errorf("Expected one event error, got %d", m.EventErrors)
	}

	stored, _ := repo.GetByRunID(context.Background(), "run-1")
	if len(stored) != 0 {
		t.Errorf("Expected nothing stored, got %d events", len(stored))
	}
}
