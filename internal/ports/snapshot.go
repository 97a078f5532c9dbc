package ports

import (
	"errors"

	"github.com/calegria/focus-cli/internal/domain"
)

// ErrNoSnapshot is returned by SnapshotStore.Load when no timer snapshot
// is persisted.
var ErrNoSnapshot = errors.New("no timer snapshot")

// SnapshotStore persists the single running-timer snapshot. The store holds
// at most one snapshot; Save replaces any previous one.
type SnapshotStore interface {
	Save(snapshot domain.TimerSnapshot) error
	Load() (domain.TimerSnapshot, error)
	Clear() error
}
