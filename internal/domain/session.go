// Package domain holds the core focus-session types and the timer
// state machine. It has no dependencies on transport or storage.
package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-day key format used across the API and storage.
const DateLayout = "2006-01-02"

var (
	// ErrEmptyTitle is returned when a session title is blank after trimming.
	ErrEmptyTitle = errors.New("session title must not be empty")

	// ErrInvalidDuration is returned when a session duration is not positive.
	ErrInvalidDuration = errors.New("session duration must be positive")

	// ErrInvalidRating is returned when a completion rating is outside 1-10.
	ErrInvalidRating = errors.New("rating must be between 1 and 10")
)

// RatingBand groups ratings for visual styling only.
type RatingBand string

const (
	RatingBandNone   RatingBand = "none"
	RatingBandLow    RatingBand = "low"    // rating <= 3
	RatingBandMedium RatingBand = "medium" // rating 4-6
	RatingBandHigh   RatingBand = "high"   // rating 7-10
)

// Session is a single focus-work interval, owned by the backend.
// A session with no EndTime is "open"; that is accepted state, not an error.
type Session struct {
	ID              string     `json:"id"`
	Date            string     `json:"date"`
	Title           string     `json:"title"`
	DurationMinutes float64    `json:"duration_minutes"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Rating          *int       `json:"rating"`
	Notes           string     `json:"notes"`
	Learnings       string     `json:"learnings"`
}

// CompletionPayload carries the optional feedback collected when a session
// ends. The zero value is the "skip" payload.
type CompletionPayload struct {
	Rating    *int   `json:"rating,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Learnings string `json:"learnings,omitempty"`
}

// IsSkip reports whether the payload carries no feedback at all.
func (p CompletionPayload) IsSkip() bool {
	return p.Rating == nil && p.Notes == "" && p.Learnings == ""
}

// Validate checks the rating range. Notes and learnings are free text.
func (p CompletionPayload) Validate() error {
	if p.Rating != nil && (*p.Rating < 1 || *p.Rating > 10) {
		return ErrInvalidRating
	}
	return nil
}

// NewSession creates an open session starting now. The title is trimmed;
// a blank title or non-positive duration is rejected.
func NewSession(title string, durationMinutes float64, now time.Time) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	return &Session{
		ID:              generateID(),
		Date:            now.Format(DateLayout),
		Title:           title,
		DurationMinutes: durationMinutes,
		StartTime:       now,
	}, nil
}

// Complete finalizes the session with the given feedback. The stored
// duration is rewritten to the actual whole minutes worked, never below 1.
func (s *Session) Complete(p CompletionPayload, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}

	actual := math.Round(now.Sub(s.StartTime).Seconds() / 60)
	if actual < 1 {
		actual = 1
	}

	end := now
	s.EndTime = &end
	s.DurationMinutes = actual
	s.Rating = p.Rating
	s.Notes = p.Notes
	s.Learnings = p.Learnings
	return nil
}

// IsCompleted reports whether the session has been finalized.
func (s *Session) IsCompleted() bool {
	return s.EndTime != nil
}

// Band returns the rating band used for styling session rows.
func (s *Session) Band() RatingBand {
	if s.Rating == nil {
		return RatingBandNone
	}
	switch {
	case *s.Rating <= 3:
		return RatingBandLow
	case *s.Rating <= 6:
		return RatingBandMedium
	default:
		return RatingBandHigh
	}
}
