package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
)

// sessionRepository implements ports.SessionRepository using SQLite.
type sessionRepository struct {
	db *sql.DB
}

// newSessionRepository creates a new session repository.
func newSessionRepository(db *sql.DB) ports.SessionRepository {
	return &sessionRepository{db: db}
}

// Create inserts a new session record.
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, date, title, duration_minutes, start_time, end_time, rating, notes, learnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.Date,
		session.Title,
		session.DurationMinutes,
		session.StartTime,
		session.EndTime,
		session.Rating,
		session.Notes,
		session.Learnings,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// FindByID retrieves a session by its unique identifier.
func (r *sessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, date, title, duration_minutes, start_time, end_time, rating, notes, learnings
		FROM sessions
		WHERE id = ?
	`

	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

// FindByDate retrieves all sessions recorded on a local date, newest first.
func (r *sessionRepository) FindByDate(ctx context.Context, date string) ([]*domain.Session, error) {
	query := `
		SELECT id, date, title, duration_minutes, start_time, end_time, rating, notes, learnings
		FROM sessions
		WHERE date = ?
		ORDER BY start_time DESC
	`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions by date: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanSessions(rows)
}

// FindAll retrieves every session, newest first.
func (r *sessionRepository) FindAll(ctx context.Context) ([]*domain.Session, error) {
	query := `
		SELECT id, date, title, duration_minutes, start_time, end_time, rating, notes, learnings
		FROM sessions
		ORDER BY start_time DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanSessions(rows)
}

// Update rewrites the mutable fields of an existing session.
func (r *sessionRepository) Update(ctx context.Context, session *domain.Session) error {
	query := `
		UPDATE sessions
		SET date = ?, title = ?, duration_minutes = ?, start_time = ?,
		    end_time = ?, rating = ?, notes = ?, learnings = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		session.Date,
		session.Title,
		session.DurationMinutes,
		session.StartTime,
		session.EndTime,
		session.Rating,
		session.Notes,
		session.Learnings,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ports.ErrSessionNotFound
	}

	return nil
}

// Delete removes the session with the given id.
func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ports.ErrSessionNotFound
	}

	return nil
}

// DayAggregates returns per-day summaries of completed sessions, newest
// day first. Open sessions are excluded from counts and totals; a day
// whose sessions are all open does not appear at all.
func (r *sessionRepository) DayAggregates(ctx context.Context) ([]domain.DayAggregate, error) {
	query := `
		SELECT date, COUNT(*), COALESCE(SUM(duration_minutes), 0)
		FROM sessions
		WHERE end_time IS NOT NULL
		GROUP BY date
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query day aggregates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var aggregates []domain.DayAggregate
	for rows.Next() {
		var agg domain.DayAggregate
		if err := rows.Scan(&agg.Date, &agg.SessionCount, &agg.TotalMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan day aggregate: %w", err)
		}
		aggregates = append(aggregates, agg)
	}

	return aggregates, rows.Err()
}

// scanSession scans a single session row.
func (r *sessionRepository) scanSession(row *sql.Row) (*domain.Session, error) {
	var session domain.Session
	var endTime sql.NullTime
	var rating sql.NullInt64
	var notes sql.NullString
	var learnings sql.NullString

	err := row.Scan(
		&session.ID,
		&session.Date,
		&session.Title,
		&session.DurationMinutes,
		&session.StartTime,
		&endTime,
		&rating,
		&notes,
		&learnings,
	)
	if err == sql.ErrNoRows {
		return nil, ports.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	if endTime.Valid {
		session.EndTime = &endTime.Time
	}
	if rating.Valid {
		r := int(rating.Int64)
		session.Rating = &r
	}
	if notes.Valid {
		session.Notes = notes.String
	}
	if learnings.Valid {
		session.Learnings = learnings.String
	}

	return &session, nil
}

// scanSessions scans multiple session rows.
func (r *sessionRepository) scanSessions(rows *sql.Rows) ([]*domain.Session, error) {
	var sessions []*domain.Session

	for rows.Next() {
		var session domain.Session
		var endTime sql.NullTime
		var rating sql.NullInt64
		var notes sql.NullString
		var learnings sql.NullString

		err := rows.Scan(
			&session.ID,
			&session.Date,
			&session.Title,
			&session.DurationMinutes,
			&session.StartTime,
			&endTime,
			&rating,
			&notes,
			&learnings,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if endTime.Valid {
			session.EndTime = &endTime.Time
		}
		if rating.Valid {
			r := int(rating.Int64)
			session.Rating = &r
		}
		if notes.Valid {
			session.Notes = notes.String
		}
		if learnings.Valid {
			session.Learnings = learnings.String
		}

		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}
