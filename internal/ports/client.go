package ports

import (
	"context"

	"github.com/calegria/focus-cli/internal/domain"
)

// BackendClient is the client-side view of the session backend. All calls
// are synchronous request/response; the caller decides what a failure means
// for the timer lifecycle.
type BackendClient interface {
	// CreateSession records a new planned session and returns it with its
	// server-assigned fields populated.
	CreateSession(ctx context.Context, title string, durationMinutes float64) (*domain.Session, error)

	// CompleteSession closes the session with the given id using the
	// completion payload. An all-empty payload is a valid skip.
	CompleteSession(ctx context.Context, id string, payload domain.CompletionPayload) (*domain.Session, error)

	// DeleteSession removes the session with the given id.
	DeleteSession(ctx context.Context, id string) error

	// SessionsByDate returns the sessions recorded on the given date.
	SessionsByDate(ctx context.Context, date string) ([]*domain.Session, error)

	// DayAggregates returns the per-day summaries, newest first.
	DayAggregates(ctx context.Context) ([]domain.DayAggregate, error)

	// Shutdown asks the backend process to stop gracefully.
	Shutdown(ctx context.Context) error
}
