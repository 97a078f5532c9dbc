package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/calegria/focus-cli/internal/config"
	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/services"
)

// datesLoadedMsg carries the fetched day aggregates.
type datesLoadedMsg struct {
	aggregates []domain.DayAggregate
	err        error
}

// sessionsLoadedMsg carries one day's fetched sessions.
type sessionsLoadedMsg struct {
	date     string
	sessions []*domain.Session
	err      error
}

// sessionDeletedMsg reports a history deletion; both the day's list and the
// aggregates are refetched afterwards.
type sessionDeletedMsg struct {
	date string
	err  error
}

// HistoryModel is the read-only day-by-day session browser.
type HistoryModel struct {
	service *services.TimerService

	aggregates []domain.DayAggregate
	cursor     int

	// day detail
	detail        bool
	detailDate    string
	sessions      []*domain.Session
	sessionCursor int
	confirmDelete bool

	filterInput textinput.Model
	filtering   bool

	err   error
	theme config.ThemeConfig
	width int
}

// NewHistoryModel builds the history view.
func NewHistoryModel(service *services.TimerService, theme config.ThemeConfig) HistoryModel {
	filter := textinput.New()
	filter.Placeholder = "filter titles"
	filter.CharLimit = 100
	filter.Width = 30

	return HistoryModel{
		service:     service,
		filterInput: filter,
		theme:       theme,
	}
}

// LoadCmd fetches the day aggregates. The shell issues it every time the
// history view is activated so totals are always server-derived.
func (m HistoryModel) LoadCmd() tea.Cmd {
	return func() tea.Msg {
		aggregates, err := m.service.DayAggregates(context.Background())
		return datesLoadedMsg{aggregates: aggregates, err: err}
	}
}

func (m HistoryModel) loadSessionsCmd(date string) tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.service.SessionsByDate(context.Background(), date)
		return sessionsLoadedMsg{date: date, sessions: sessions, err: err}
	}
}

func (m HistoryModel) deleteCmd(id, date string) tea.Cmd {
	return func() tea.Msg {
		return sessionDeletedMsg{date: date, err: m.service.DeleteSession(context.Background(), id)}
	}
}

// visibleSessions applies the fuzzy title filter to the day's sessions.
func (m HistoryModel) visibleSessions() []*domain.Session {
	pattern := strings.TrimSpace(m.filterInput.Value())
	if pattern == "" {
		return m.sessions
	}

	titles := make([]string, len(m.sessions))
	for i, s := range m.sessions {
		titles[i] = s.Title
	}

	matches := fuzzy.Find(pattern, titles)
	filtered := make([]*domain.Session, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, m.sessions[match.Index])
	}
	return filtered
}

// Update handles messages for the history view.
func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case datesLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.aggregates = msg.aggregates
			if m.cursor >= len(m.aggregates) {
				m.cursor = max(0, len(m.aggregates)-1)
			}
		}
		return m, nil

	case sessionsLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.detail = true
			m.detailDate = msg.date
			m.sessions = msg.sessions
			if m.sessionCursor >= len(m.sessions) {
				m.sessionCursor = max(0, len(m.sessions)-1)
			}
		}
		return m, nil

	case sessionDeletedMsg:
		m.err = msg.err
		// Re-derive both lists from the server; no client-side summation.
		return m, tea.Batch(m.loadSessionsCmd(msg.date), m.LoadCmd())

	case tea.KeyMsg:
		if m.detail {
			return m.handleDetailKey(msg)
		}
		return m.handleListKey(msg)
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m HistoryModel) handleListKey(msg tea.KeyMsg) (HistoryModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.aggregates)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.aggregates) > 0 {
			m.sessionCursor = 0
			return m, m.loadSessionsCmd(m.aggregates[m.cursor].Date)
		}
	case "r":
		return m, m.LoadCmd()
	}
	return m, nil
}

func (m HistoryModel) handleDetailKey(msg tea.KeyMsg) (HistoryModel, tea.Cmd) {
	visible := m.visibleSessions()

	if m.filtering {
		switch msg.String() {
		case "enter":
			m.filtering = false
			m.filterInput.Blur()
		case "esc":
			m.filtering = false
			m.filterInput.Blur()
			m.filterInput.Reset()
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			if m.sessionCursor >= len(m.visibleSessions()) {
				m.sessionCursor = 0
			}
			return m, cmd
		}
		return m, nil
	}

	if m.confirmDelete {
		switch msg.String() {
		case "y", "d":
			m.confirmDelete = false
			if m.sessionCursor < len(visible) {
				return m, m.deleteCmd(visible[m.sessionCursor].ID, m.detailDate)
			}
		default:
			m.confirmDelete = false
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
	case "down", "j":
		if m.sessionCursor < len(visible)-1 {
			m.sessionCursor++
		}
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case "d":
		if len(visible) > 0 {
			m.confirmDelete = true
		}
	case "esc", "backspace":
		m.detail = false
		m.filterInput.Reset()
		// Totals come from a fresh aggregate fetch, never carried over.
		return m, m.LoadCmd()
	}
	return m, nil
}

// View renders the history view sections.
func (m HistoryModel) View(sections []string) []string {
	if m.detail {
		return m.viewDetail(sections)
	}
	return m.viewList(sections)
}

func (m HistoryModel) viewList(sections []string) []string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorAccent))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorRatingLow))

	if m.err != nil {
		sections = append(sections, errorStyle.Render("Error: "+m.err.Error()))
		sections = append(sections, dimStyle.Render("[r]efresh"))
		return sections
	}

	if len(m.aggregates) == 0 {
		sections = append(sections, dimStyle.Render("No completed sessions yet."))
		sections = append(sections, "")
		sections = append(sections, dimStyle.Render("[r]efresh · tab timer"))
		return sections
	}

	for i, agg := range m.aggregates {
		line := fmt.Sprintf("%-10s %-9s %2d sessions  %s",
			agg.Date, agg.Weekday(), agg.SessionCount, domain.FormatTotalMinutes(agg.TotalMinutes))
		if i == m.cursor {
			sections = append(sections, activeStyle.Render("▸ "+line))
		} else {
			sections = append(sections, dimStyle.Render("  "+line))
		}
	}

	sections = append(sections, "")
	sections = append(sections, dimStyle.Render("↑/↓ navigate · enter open · [r]efresh · tab timer"))
	return sections
}

func (m HistoryModel) viewDetail(sections []string) []string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	activeStyle := lipgloss.NewStyle().Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorRatingLow))

	sections = append(sections, titleStyle.Render(m.detailDate))

	if m.err != nil {
		sections = append(sections, errorStyle.Render("Error: "+m.err.Error()))
	}

	if m.filtering || m.filterInput.Value() != "" {
		sections = append(sections, dimStyle.Render("Filter: ")+m.filterInput.View())
	}

	visible := m.visibleSessions()
	if len(visible) == 0 {
		sections = append(sections, dimStyle.Render("No sessions."))
	}

	for i, session := range visible {
		rating := "  —"
		if session.Rating != nil {
			rating = fmt.Sprintf("%2d ", *session.Rating)
		}
		ratingStyled := lipgloss.NewStyle().
			Foreground(ratingColor(m.theme, session.Band())).
			Render(rating)

		line := fmt.Sprintf("%s  %-30s %s",
			session.StartTime.Local().Format("15:04"),
			truncate(session.Title, 30),
			domain.FormatTotalMinutes(session.DurationMinutes))

		if i == m.sessionCursor {
			sections = append(sections, activeStyle.Render("▸ "+line+"  ")+ratingStyled)
		} else {
			sections = append(sections, dimStyle.Render("  "+line+"  ")+ratingStyled)
		}

		if i == m.sessionCursor && (session.Notes != "" || session.Learnings != "") {
			if session.Notes != "" {
				sections = append(sections, dimStyle.Render("    notes: "+session.Notes))
			}
			if session.Learnings != "" {
				sections = append(sections, dimStyle.Render("    learned: "+session.Learnings))
			}
		}
	}

	sections = append(sections, "")
	if m.confirmDelete {
		sections = append(sections, dimStyle.Render("Delete this session? [y] confirm · any key cancel"))
	} else {
		sections = append(sections, dimStyle.Render("↑/↓ navigate · / filter · [d]elete · esc back"))
	}
	return sections
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
