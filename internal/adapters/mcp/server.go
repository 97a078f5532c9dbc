// Package mcp exposes the focus timer over the Model Context Protocol so
// assistants can drive sessions through the same client-side service the
// TUI uses.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
	"github.com/calegria/focus-cli/internal/services"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server  *server.MCPServer
	service *services.TimerService
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewServer creates a new MCP server instance.
func NewServer(service *services.TimerService) *Server {
	s := &Server{
		service: service,
	}

	s.server = server.NewMCPServer(
		"focus-cli",
		"1.0.0",
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_timer_state",
			mcp.WithDescription("Get the state of the focus timer: whether a session is running, its title, deadline and remaining time"),
		),
		s.handleGetTimerState,
	)

	startTool := mcp.NewTool(
		"start_session",
		mcp.WithDescription("Start a new focus session with a title and a planned duration"),
		mcp.WithString(
			"title",
			mcp.Required(),
			mcp.Description("What the session is about"),
		),
		mcp.WithNumber(
			"duration_minutes",
			mcp.Description("Planned duration in minutes, up to 480 (default: 25)"),
		),
	)
	s.server.AddTool(startTool, s.handleStartSession)

	completeTool := mcp.NewTool(
		"complete_session",
		mcp.WithDescription("Complete the running focus session, optionally recording a rating, notes and learnings"),
		mcp.WithNumber(
			"rating",
			mcp.Description("How the session went, from 1 (poor) to 10 (excellent)"),
		),
		mcp.WithString(
			"notes",
			mcp.Description("Free-form notes about the session"),
		),
		mcp.WithString(
			"learnings",
			mcp.Description("What was learned during the session"),
		),
	)
	s.server.AddTool(completeTool, s.handleCompleteSession)

	s.server.AddTool(
		mcp.NewTool(
			"cancel_session",
			mcp.WithDescription("Cancel the running focus session and delete its record"),
		),
		s.handleCancelSession,
	)

	s.server.AddTool(
		mcp.NewTool(
			"list_dates",
			mcp.WithDescription("List the days that have completed sessions, with per-day counts and total focused minutes"),
		),
		s.handleListDates,
	)

	sessionsTool := mcp.NewTool(
		"list_sessions",
		mcp.WithDescription("List the sessions recorded on a given day"),
		mcp.WithString(
			"date",
			mcp.Required(),
			mcp.Description("The day to list, formatted as YYYY-MM-DD"),
		),
	)
	s.server.AddTool(sessionsTool, s.handleListSessions)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// handleGetTimerState handles the get_timer_state tool.
func (s *Server) handleGetTimerState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.service.Resume()
	if errors.Is(err, ports.ErrNoSnapshot) {
		return jsonResult(map[string]interface{}{
			"running": false,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timer state: %w", err)
	}

	now := time.Now()
	return jsonResult(map[string]interface{}{
		"running":        true,
		"session_id":     snap.ID,
		"title":          snap.Title,
		"end_time":       snap.EndTime.Format(time.RFC3339),
		"remaining":      domain.FormatRemaining(snap.Remaining(now)),
		"progress":       snap.Progress(now),
		"total_duration": snap.TotalDuration.String(),
		"overdue":        snap.Expired(now),
	})
}

// handleStartSession handles the start_session tool.
func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required: " + err.Error()), nil
	}

	minutes := request.GetFloat("duration_minutes", domain.DefaultDurationMinutes)
	if minutes <= 0 || minutes > domain.MaxDurationMinutes {
		return mcp.NewToolResultError(fmt.Sprintf("duration_minutes must be in (0, %d]", domain.MaxDurationMinutes)), nil
	}

	// One session at a time; the running one must be completed or cancelled
	// first.
	running, err := s.service.HasRunningTimer()
	if err != nil {
		return nil, fmt.Errorf("failed to read timer state: %w", err)
	}
	if running {
		return mcp.NewToolResultError("a session is already running; complete or cancel it first"), nil
	}

	snap, err := s.service.Start(ctx, title, minutes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start session: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"session_id": snap.ID,
		"title":      snap.Title,
		"end_time":   snap.EndTime.Format(time.RFC3339),
		"duration":   snap.TotalDuration.String(),
	})
}

// handleCompleteSession handles the complete_session tool.
func (s *Server) handleCompleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.service.Resume()
	if errors.Is(err, ports.ErrNoSnapshot) {
		return mcp.NewToolResultError("no session is running"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timer state: %w", err)
	}

	var payload domain.CompletionPayload
	if raw := request.GetFloat("rating", 0); raw != 0 {
		rating := int(raw)
		if rating < 1 || rating > 10 {
			return mcp.NewToolResultError("rating must be between 1 and 10"), nil
		}
		payload.Rating = &rating
	}
	payload.Notes = request.GetString("notes", "")
	payload.Learnings = request.GetString("learnings", "")

	session, err := s.service.Complete(ctx, snap.ID, payload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete session: %v", err)), nil
	}

	return jsonResult(sessionData(session))
}

// handleCancelSession handles the cancel_session tool.
func (s *Server) handleCancelSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.service.Resume()
	if errors.Is(err, ports.ErrNoSnapshot) {
		return mcp.NewToolResultError("no session is running"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timer state: %w", err)
	}

	if err := s.service.Cancel(ctx, snap.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to cancel session: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"session_id": snap.ID,
		"cancelled":  true,
	})
}

// handleListDates handles the list_dates tool.
func (s *Server) handleListDates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	aggregates, err := s.service.DayAggregates(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list dates: %v", err)), nil
	}

	days := make([]map[string]interface{}, 0, len(aggregates))
	for _, agg := range aggregates {
		days = append(days, map[string]interface{}{
			"date":          agg.Date,
			"weekday":       agg.Weekday(),
			"session_count": agg.SessionCount,
			"total_minutes": agg.TotalMinutes,
			"total":         domain.FormatTotalMinutes(agg.TotalMinutes),
		})
	}

	return jsonResult(map[string]interface{}{
		"days":        days,
		"total_count": len(days),
	})
}

// handleListSessions handles the list_sessions tool.
func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date is required: " + err.Error()), nil
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return mcp.NewToolResultError("date must be formatted as YYYY-MM-DD"), nil
	}

	sessions, err := s.service.SessionsByDate(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}

	list := make([]map[string]interface{}, 0, len(sessions))
	for _, session := range sessions {
		list = append(list, sessionData(session))
	}

	return jsonResult(map[string]interface{}{
		"date":        date,
		"sessions":    list,
		"total_count": len(list),
	})
}

// sessionData renders a session for tool output.
func sessionData(session *domain.Session) map[string]interface{} {
	data := map[string]interface{}{
		"id":               session.ID,
		"date":             session.Date,
		"title":            session.Title,
		"duration_minutes": session.DurationMinutes,
		"start_time":       session.StartTime.Format(time.RFC3339),
		"completed":        session.IsCompleted(),
	}
	if session.EndTime != nil {
		data["end_time"] = session.EndTime.Format(time.RFC3339)
	}
	if session.Rating != nil {
		data["rating"] = *session.Rating
	}
	if session.Notes != "" {
		data["notes"] = session.Notes
	}
	if session.Learnings != "" {
		data["learnings"] = session.Learnings
	}
	return data
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
