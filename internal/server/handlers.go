package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
)

var validate = validator.New()

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	Title           string  `json:"title" validate:"required"`
	DurationMinutes float64 `json:"duration_minutes" validate:"required,gt=0"`
}

// CompleteSessionRequest is the body of POST /api/sessions/:id/complete.
// All fields are optional; an empty body records a skipped reflection.
type CompleteSessionRequest struct {
	Rating    *int   `json:"rating,omitempty" validate:"omitempty,gte=1,lte=10"`
	Notes     string `json:"notes,omitempty"`
	Learnings string `json:"learnings,omitempty"`
}

func handleError(c *gin.Context, logger Logger, err error, status int, msg string) {
	logger.Errorf("%s: %v", msg, err)
	c.JSON(status, gin.H{"error": msg + ": " + err.Error(), "code": status})
}

// PostSession records a new planned session and returns it with 201.
func PostSession(repo ports.SessionRepository, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body CreateSessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			handleError(c, logger, err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := validate.Struct(&body); err != nil {
			handleError(c, logger, err, http.StatusBadRequest, "Validation failed")
			return
		}

		session, err := domain.NewSession(body.Title, body.DurationMinutes, time.Now())
		if err != nil {
			handleError(c, logger, err, http.StatusBadRequest, "Invalid session")
			return
		}

		if err := repo.Create(c.Request.Context(), session); err != nil {
			handleError(c, logger, err, http.StatusInternalServerError, "Failed to save session")
			return
		}

		logger.Infof("created session %s (%q, %.1fm)", session.ID, session.Title, session.DurationMinutes)
		c.JSON(http.StatusCreated, session)
	}
}

// GetSessions lists sessions, optionally filtered by ?date=YYYY-MM-DD.
func GetSessions(repo ports.SessionRepository, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")
		if date != "" {
			if _, err := time.Parse(domain.DateLayout, date); err != nil {
				handleError(c, logger, err, http.StatusBadRequest, "Invalid date")
				return
			}
		}

		var (
			sessions []*domain.Session
			err      error
		)
		if date == "" {
			sessions, err = repo.FindAll(c.Request.Context())
		} else {
			sessions, err = repo.FindByDate(c.Request.Context(), date)
		}
		if err != nil {
			handleError(c, logger, err, http.StatusInternalServerError, "Failed to fetch sessions")
			return
		}

		if sessions == nil {
			sessions = []*domain.Session{}
		}
		c.JSON(http.StatusOK, sessions)
	}
}

// CompleteSession closes a session, recomputing its actual duration.
func CompleteSession(repo ports.SessionRepository, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var body CompleteSessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			handleError(c, logger, err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := validate.Struct(&body); err != nil {
			handleError(c, logger, err, http.StatusBadRequest, "Validation failed")
			return
		}

		session, err := repo.FindByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, ports.ErrSessionNotFound) {
				handleError(c, logger, err, http.StatusNotFound, "Session not found")
				return
			}
			handleError(c, logger, err, http.StatusInternalServerError, "Failed to fetch session")
			return
		}

		payload := domain.CompletionPayload{
			Rating:    body.Rating,
			Notes:     body.Notes,
			Learnings: body.Learnings,
		}
		if err := session.Complete(payload, time.Now()); err != nil {
			handleError(c, logger, err, http.StatusBadRequest, "Invalid completion")
			return
		}

		if err := repo.Update(c.Request.Context(), session); err != nil {
			handleError(c, logger, err, http.StatusInternalServerError, "Failed to save session")
			return
		}

		logger.Infof("completed session %s (%.0fm actual)", session.ID, session.DurationMinutes)
		c.JSON(http.StatusOK, session)
	}
}

// DeleteSession removes a session.
func DeleteSession(repo ports.SessionRepository, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if err := repo.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, ports.ErrSessionNotFound) {
				handleError(c, logger, err, http.StatusNotFound, "Session not found")
				return
			}
			handleError(c, logger, err, http.StatusInternalServerError, "Failed to delete session")
			return
		}

		logger.Infof("deleted session %s", id)
		c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
	}
}

// GetDates returns the per-day aggregates of completed sessions.
func GetDates(repo ports.SessionRepository, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		aggregates, err := repo.DayAggregates(c.Request.Context())
		if err != nil {
			handleError(c, logger, err, http.StatusInternalServerError, "Failed to fetch dates")
			return
		}

		if aggregates == nil {
			aggregates = []domain.DayAggregate{}
		}
		c.JSON(http.StatusOK, aggregates)
	}
}

// PostShutdown acknowledges the request, then signals the server to stop.
func PostShutdown(shutdown chan<- struct{}, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Info("shutdown requested")
		c.String(http.StatusOK, "Server shutting down...")

		// Signal after the response is written; the listener drains
		// in-flight requests before exiting.
		go func() { shutdown <- struct{}{} }()
	}
}
