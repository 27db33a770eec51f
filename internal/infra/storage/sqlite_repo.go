package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/redhaven/colony/internal/platform/logger"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event GameEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, run_id, timestamp, event_type, actor_id, target_id, payload, tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.RunID, event.Timestamp, event.EventType, event.ActorID,
		event.TargetID, string(payloadBytes), event.Tick,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]GameEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []GameEvent
	for rows.Next() {
		var e GameEvent
		var payloadStr string
		err := rows.Scan(
			&e.ID, &e.RunID, &e.Timestamp, &e.EventType, &e.ActorID,
			&e.TargetID, &payloadStr, &e.Tick,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetByRunID(ctx context.Context, runID string) ([]GameEvent, error) {
	query := `SELECT id, run_id, timestamp, event_type, actor_id, target_id, payload, tick FROM events WHERE run_id = ? ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, runID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, runID string, eventType string) ([]GameEvent, error) {
	query := `SELECT id, run_id, timestamp, event_type, actor_id, target_id, payload, tick FROM events WHERE run_id = ? AND event_type = ? ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, runID, eventType)
}

var _ EventRepository = (*SQLiteEventRepository)(nil)

// ---------------------------------------------------------
// SQLiteSaveStore
// ---------------------------------------------------------

// SQLiteSaveStore keeps each slot as one YAML row. The upsert runs in a
// transaction, so a failed save leaves the previous row in place.
type SQLiteSaveStore struct {
	db     *sql.DB
	logger *logger.Logger
}

func NewSQLiteSaveStore(db *sql.DB, log *logger.Logger) *SQLiteSaveStore {
	return &SQLiteSaveStore{db: db, logger: log}
}

func (r *SQLiteSaveStore) Save(ctx context.Context, slot Slot, snap Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	defer tx.Rollback()

	query := `
		INSERT INTO save_slots (slot, run_id, milestone, payload, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			run_id=excluded.run_id,
			milestone=excluded.milestone,
			payload=excluded.payload,
			saved_at=excluded.saved_at
	`
	if _, err := tx.ExecContext(ctx, query, string(slot), snap.RunID, snap.Milestone, string(data), time.Now()); err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	r.logger.Info(fmt.Sprintf("[STORAGE] Wrote %s to sqlite (%s)", slot, humanize.Bytes(uint64(len(data)))))
	return nil
}

func (r *SQLiteSaveStore) Load(ctx context.Context, slot Slot) (Snapshot, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM save_slots WHERE slot = ?`, string(slot)).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, &PersistenceError{Op: "load", Slot: slot, Err: ErrSlotNotFound}
		}
		return Snapshot{}, &PersistenceError{Op: "load", Slot: slot, Err: err}
	}
	snap, err := DecodeSnapshot([]byte(payload))
	if err != nil {
		return Snapshot{}, &PersistenceError{Op: "decode", Slot: slot, Err: err}
	}
	return snap, nil
}

var _ SaveStore = (*SQLiteSaveStore)(nil)
