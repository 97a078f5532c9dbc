// Package snapshot persists the running-timer snapshot to disk so the
// countdown survives client restarts.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
)

// fileStore is the concrete SnapshotStore backed by a single JSON file.
type fileStore struct {
	path string
}

// NewFileStore returns a SnapshotStore writing to the given file path,
// creating the parent directory if needed.
func NewFileStore(path string) (ports.SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &fileStore{path: path}, nil
}

// Save marshals the snapshot to JSON and writes it atomically via a temp
// file + os.Rename, replacing any previous snapshot.
func (f *fileStore) Save(snap domain.TimerSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to persist timer snapshot: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(f.path), "timer-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist timer snapshot: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist timer snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist timer snapshot: %w", err)
	}

	if err = os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to persist timer snapshot: %w", err)
	}
	return nil
}

// Load reads and unmarshals the snapshot file.
// Returns ports.ErrNoSnapshot if the file does not exist.
func (f *fileStore) Load() (domain.TimerSnapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.TimerSnapshot{}, ports.ErrNoSnapshot
		}
		return domain.TimerSnapshot{}, fmt.Errorf("failed to read timer snapshot: %w", err)
	}

	var snap domain.TimerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.TimerSnapshot{}, fmt.Errorf("failed to parse timer snapshot: %w", err)
	}
	return snap, nil
}

// Clear removes the snapshot file from disk. Clearing an empty store is
// not an error.
func (f *fileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete timer snapshot: %w", err)
	}
	return nil
}
