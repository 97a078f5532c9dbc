// Package services contains the client-side use cases that tie the
// backend, the snapshot store and the timer lifecycle together.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
)

// TimerService handles the session timer use cases. It owns the rule that
// the snapshot file mirrors the timer exactly: written on start, cleared on
// every exit path.
type TimerService struct {
	backend   ports.BackendClient
	snapshots ports.SnapshotStore
}

// NewTimerService creates a new timer service.
func NewTimerService(backend ports.BackendClient, snapshots ports.SnapshotStore) *TimerService {
	return &TimerService{
		backend:   backend,
		snapshots: snapshots,
	}
}

// Start records a new session on the backend and persists its snapshot.
// If the backend call fails nothing is persisted and no timer starts.
func (s *TimerService) Start(ctx context.Context, title string, durationMinutes float64) (domain.TimerSnapshot, error) {
	session, err := s.backend.CreateSession(ctx, title, durationMinutes)
	if err != nil {
		return domain.TimerSnapshot{}, fmt.Errorf("failed to start session: %w", err)
	}

	total := time.Duration(durationMinutes * float64(time.Minute))
	snap := domain.TimerSnapshot{
		ID:            session.ID,
		Title:         session.Title,
		EndTime:       session.StartTime.Add(total),
		TotalDuration: total,
	}
	if err := s.snapshots.Save(snap); err != nil {
		return domain.TimerSnapshot{}, fmt.Errorf("session started but not persisted locally: %w", err)
	}

	return snap, nil
}

// Resume loads the persisted snapshot, if any.
// Returns ports.ErrNoSnapshot when no timer was running.
func (s *TimerService) Resume() (domain.TimerSnapshot, error) {
	return s.snapshots.Load()
}

// Complete closes the running session on the backend. The snapshot is
// cleared regardless of the backend outcome so a failed completion never
// resurrects the timer on the next start; the error still propagates so
// the caller can surface it.
func (s *TimerService) Complete(ctx context.Context, id string, payload domain.CompletionPayload) (*domain.Session, error) {
	session, err := s.backend.CompleteSession(ctx, id, payload)

	if clearErr := s.snapshots.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	return session, nil
}

// Cancel abandons the running session: the backend record is deleted
// best-effort and the snapshot is always cleared. A backend failure does
// not keep the timer alive; the orphaned record can be deleted from
// history later.
func (s *TimerService) Cancel(ctx context.Context, id string) error {
	backendErr := s.backend.DeleteSession(ctx, id)

	if err := s.snapshots.Clear(); err != nil {
		return err
	}
	return backendErr
}

// SessionsByDate returns the sessions recorded on the given date.
func (s *TimerService) SessionsByDate(ctx context.Context, date string) ([]*domain.Session, error) {
	return s.backend.SessionsByDate(ctx, date)
}

// DayAggregates returns the per-day summaries, newest first.
func (s *TimerService) DayAggregates(ctx context.Context) ([]domain.DayAggregate, error) {
	return s.backend.DayAggregates(ctx)
}

// DeleteSession removes a recorded session from history.
func (s *TimerService) DeleteSession(ctx context.Context, id string) error {
	return s.backend.DeleteSession(ctx, id)
}

// ShutdownServer asks the backend process to stop gracefully.
func (s *TimerService) ShutdownServer(ctx context.Context) error {
	return s.backend.Shutdown(ctx)
}

// HasRunningTimer reports whether a snapshot is persisted.
func (s *TimerService) HasRunningTimer() (bool, error) {
	_, err := s.snapshots.Load()
	if errors.Is(err, ports.ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
