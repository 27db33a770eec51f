package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/redhaven/colony/internal/platform/logger"
)

// FileStore keeps each slot as a YAML file in one directory.
// Writes go to a temp file in the same directory and are renamed over the
// slot, so a failed save never leaves a partial file behind.
type FileStore struct {
	dir    string
	logger *logger.Logger
}

// NewFileStore creates a file store rooted at dir. The directory is created
// on first save.
func NewFileStore(dir string, log *logger.Logger) *FileStore {
	return &FileStore{dir: dir, logger: log}
}

// Path returns the file backing slot.
func (s *FileStore) Path(slot Slot) string {
	return filepath.Join(s.dir, string(slot)+".yaml")
}

func (s *FileStore) Save(ctx context.Context, slot Slot, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	if err := s.writeAtomic(s.Path(slot), data); err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	s.logger.Info(fmt.Sprintf("[STORAGE] Wrote %s (%s)", slot, humanize.Bytes(uint64(len(data)))))
	return nil
}

func (s *FileStore) writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true
	return nil
}

func (s *FileStore) Load(ctx context.Context, slot Slot) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, &PersistenceError{Op: "load", Slot: slot, Err: err}
	}
	data, err := os.ReadFile(s.Path(slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, &PersistenceError{Op: "load", Slot: slot, Err: ErrSlotNotFound}
		}
		return Snapshot{}, &PersistenceError{Op: "load", Slot: slot, Err: err}
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return Snapshot{}, &PersistenceError{Op: "decode", Slot: slot, Err: err}
	}
	s.logger.Debug(fmt.Sprintf("[STORAGE] Read %s (%s)", slot, humanize.Bytes(uint64(len(data)))))
	return snap, nil
}

var _ SaveStore = (*FileStore)(nil)
