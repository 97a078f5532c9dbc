package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calegria/focus-cli/internal/adapters/storage"
	"github.com/calegria/focus-cli/internal/domain"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New("127.0.0.1:0", store, NewZapLogger(zap.NewNop().Sugar()))
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, srv *Server, title string, minutes float64) domain.Session {
	t.Helper()
	rec := doJSON(t, srv, "POST", "/api/sessions",
		`{"title":"`+title+`","duration_minutes":`+jsonNumber(minutes)+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func TestPostSession(t *testing.T) {
	srv := setupServer(t)

	session := createSession(t, srv, "Deep work", 25.5)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "Deep work", session.Title)
	assert.Equal(t, 25.5, session.DurationMinutes)
	assert.Nil(t, session.EndTime)
	assert.Nil(t, session.Rating)
}

func TestPostSession_Invalid(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"duration_minutes":25}`},
		{"blank title", `{"title":"   ","duration_minutes":25}`},
		{"missing duration", `{"title":"Work"}`},
		{"zero duration", `{"title":"Work","duration_minutes":0}`},
		{"negative duration", `{"title":"Work","duration_minutes":-5}`},
		{"malformed json", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, "POST", "/api/sessions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestGetSessions_ByDate(t *testing.T) {
	srv := setupServer(t)

	created := createSession(t, srv, "Today", 25)

	rec := doJSON(t, srv, "GET", "/api/sessions?date="+created.Date, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions []domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, created.ID, sessions[0].ID)

	// Empty day returns an empty array, not null.
	rec = doJSON(t, srv, "GET", "/api/sessions?date=1999-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = doJSON(t, srv, "GET", "/api/sessions?date=not-a-date", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSessions_All(t *testing.T) {
	srv := setupServer(t)

	createSession(t, srv, "One", 25)
	createSession(t, srv, "Two", 50)

	rec := doJSON(t, srv, "GET", "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions []domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	assert.Len(t, sessions, 2)
}

func TestCompleteSession(t *testing.T) {
	srv := setupServer(t)

	created := createSession(t, srv, "Work", 25)

	rec := doJSON(t, srv, "POST", "/api/sessions/"+created.ID+"/complete",
		`{"rating":8,"notes":"good","learnings":"breaks help"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotNil(t, session.EndTime)
	require.NotNil(t, session.Rating)
	assert.Equal(t, 8, *session.Rating)
	assert.Equal(t, "good", session.Notes)
	assert.Equal(t, "breaks help", session.Learnings)
	// Completed immediately, so the actual duration collapses to the minimum.
	assert.Equal(t, float64(1), session.DurationMinutes)
}

func TestCompleteSession_Skip(t *testing.T) {
	srv := setupServer(t)

	created := createSession(t, srv, "Work", 25)

	rec := doJSON(t, srv, "POST", "/api/sessions/"+created.ID+"/complete", `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotNil(t, session.EndTime)
	assert.Nil(t, session.Rating)
	assert.Empty(t, session.Notes)
}

func TestCompleteSession_Errors(t *testing.T) {
	srv := setupServer(t)

	created := createSession(t, srv, "Work", 25)

	rec := doJSON(t, srv, "POST", "/api/sessions/missing/complete", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, "POST", "/api/sessions/"+created.ID+"/complete", `{"rating":11}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, "POST", "/api/sessions/"+created.ID+"/complete", `{"rating":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	srv := setupServer(t)

	created := createSession(t, srv, "Work", 25)

	rec := doJSON(t, srv, "DELETE", "/api/sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, "DELETE", "/api/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDates(t *testing.T) {
	srv := setupServer(t)

	// An open session never reaches the aggregates.
	createSession(t, srv, "Open", 25)

	rec := doJSON(t, srv, "GET", "/api/dates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	done := createSession(t, srv, "Done", 25)
	rec = doJSON(t, srv, "POST", "/api/sessions/"+done.ID+"/complete", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, "GET", "/api/dates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var aggregates []domain.DayAggregate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &aggregates))
	require.Len(t, aggregates, 1)
	assert.Equal(t, done.Date, aggregates[0].Date)
	assert.Equal(t, 1, aggregates[0].SessionCount)
	assert.Equal(t, float64(1), aggregates[0].TotalMinutes)
}

func TestPostShutdown(t *testing.T) {
	srv := setupServer(t)

	rec := doJSON(t, srv, "POST", "/api/shutdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shutting down")

	// The signal is sent from a goroutine after the response is written.
	<-srv.shutdown
}
