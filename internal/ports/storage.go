package ports

import (
	"context"
	"errors"

	"github.com/calegria/focus-cli/internal/domain"
)

// ErrSessionNotFound is returned when a session id has no matching record.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists focus sessions.
type SessionRepository interface {
	// Create inserts a new session record.
	Create(ctx context.Context, session *domain.Session) error

	// FindByID returns the session with the given id, or an error if it
	// does not exist.
	FindByID(ctx context.Context, id string) (*domain.Session, error)

	// FindByDate returns all sessions recorded on the given local date
	// (YYYY-MM-DD), newest first.
	FindByDate(ctx context.Context, date string) ([]*domain.Session, error)

	// FindAll returns every session, newest first.
	FindAll(ctx context.Context) ([]*domain.Session, error)

	// Update rewrites the mutable fields of an existing session.
	Update(ctx context.Context, session *domain.Session) error

	// Delete removes the session with the given id. Deleting an unknown
	// id is an error.
	Delete(ctx context.Context, id string) error

	// DayAggregates returns per-day summaries of completed sessions,
	// newest day first.
	DayAggregates(ctx context.Context) ([]domain.DayAggregate, error)
}

// Storage is the persistence backend owned by the server process.
type Storage interface {
	Sessions() SessionRepository
	Close() error
}
