package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calegria/focus-cli/internal/config"
	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
	"github.com/calegria/focus-cli/internal/services"
)

// view identifies the active top-level view.
type view int

const (
	viewTimer view = iota
	viewHistory
)

// shutdownResultMsg reports the backend shutdown request outcome.
type shutdownResultMsg struct {
	err error
}

// Shell is the root model. It owns the view switch, global key bindings and
// the server-shutdown confirmation.
type Shell struct {
	service *services.TimerService

	timer   TimerModel
	history HistoryModel

	active          view
	confirmShutdown bool
	quitting        bool

	theme config.ThemeConfig
	width int
}

// NewShell builds the root model. A non-nil resumed snapshot reattaches the
// timer to an interrupted session.
func NewShell(service *services.TimerService, notifier ports.Notifier, theme config.ThemeConfig, resumed *domain.TimerSnapshot) Shell {
	theme = resolveTheme(&theme)
	return Shell{
		service: service,
		timer:   NewTimerModel(service, notifier, theme, resumed),
		history: NewHistoryModel(service, theme),
		theme:   theme,
	}
}

// Init starts the display tick and the title-bar countdown.
func (m Shell) Init() tea.Cmd {
	return tea.Batch(tickCmd(), textinput.Blink, tea.SetWindowTitle("focus"))
}

func (m Shell) shutdownCmd() tea.Cmd {
	return func() tea.Msg {
		return shutdownResultMsg{err: m.service.ShutdownServer(context.Background())}
	}
}

// Update routes messages to the active view and handles global bindings.
func (m Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		var timerCmd, historyCmd tea.Cmd
		m.timer, timerCmd = m.timer.Update(msg)
		m.history, historyCmd = m.history.Update(msg)
		return m, tea.Batch(timerCmd, historyCmd)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case shutdownResultMsg:
		if msg.err != nil {
			m.timer.lastError = fmt.Errorf("shutdown request failed: %w", msg.err)
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case completionResultMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		if msg.err == nil {
			// A saved session lands the user on its day in history.
			m.active = viewHistory
			return m, tea.Batch(cmd, m.history.LoadCmd())
		}
		return m, cmd

	case datesLoadedMsg, sessionsLoadedMsg, sessionDeletedMsg:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}

	// Everything else (ticks, start/cancel results, blink) belongs to the
	// timer, which keeps counting even while history is on screen.
	var cmd tea.Cmd
	m.timer, cmd = m.timer.Update(msg)
	return m, cmd
}

func (m Shell) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmShutdown {
		switch msg.String() {
		case "y":
			m.confirmShutdown = false
			return m, m.shutdownCmd()
		default:
			m.confirmShutdown = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "ctrl+q":
		m.confirmShutdown = true
		return m, nil

	case "tab":
		// The completion dialog and the history filter own tab themselves.
		if m.active == viewTimer && m.timer.machine.Phase() == domain.PhaseAwaitingCompletion {
			break
		}
		if m.active == viewHistory && m.history.filtering {
			break
		}
		if m.active == viewTimer {
			m.active = viewHistory
			return m, m.history.LoadCmd()
		}
		m.active = viewTimer
		return m, nil
	}

	if m.active == viewHistory {
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.timer, cmd = m.timer.Update(msg)
	return m, cmd
}

// View renders the header, the active view and the global footer.
func (m Shell) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorAccent))
	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	activeTabStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	timerTab := tabStyle.Render("Timer")
	historyTab := tabStyle.Render("History")
	if m.active == viewTimer {
		timerTab = activeTabStyle.Render("Timer")
	} else {
		historyTab = activeTabStyle.Render("History")
	}

	sections := []string{
		headerStyle.Render(m.theme.IconApp+" focus") + "   " + timerTab + " · " + historyTab,
		"",
	}

	if m.active == viewHistory {
		sections = m.history.View(sections)
	} else {
		sections = m.timer.View(sections)
	}

	sections = append(sections, "")
	if m.confirmShutdown {
		sections = append(sections, dimStyle.Render("Shut down the server? [y] confirm · any key cancel"))
	} else {
		sections = append(sections, dimStyle.Render("tab switch view · ctrl+q stop server · ctrl+c quit"))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(sections, "\n"))
}

// Run starts the interactive program in the alternate screen.
func Run(service *services.TimerService, notifier ports.Notifier, theme config.ThemeConfig, resumed *domain.TimerSnapshot) error {
	program := tea.NewProgram(NewShell(service, notifier, theme, resumed), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
