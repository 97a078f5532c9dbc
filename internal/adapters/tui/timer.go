package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calegria/focus-cli/internal/config"
	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
	"github.com/calegria/focus-cli/internal/services"
)

// tickMsg drives the countdown display refresh.
type tickMsg time.Time

// sessionStartedMsg reports a successful backend start.
type sessionStartedMsg struct {
	snap domain.TimerSnapshot
}

// startFailedMsg reports that the backend rejected a start.
type startFailedMsg struct {
	err error
}

// completionResultMsg reports the outcome of the completion request. The
// shell switches to the history view when err is nil.
type completionResultMsg struct {
	err error
}

// cancelDoneMsg reports that a cancellation finished (best-effort).
type cancelDoneMsg struct {
	err error
}

// tickCmd schedules the next display refresh. The cadence is cosmetic; the
// absolute deadline in the snapshot is authoritative.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// TimerModel drives the timer view: the start form while idle, the big
// countdown while running, the completion dialog afterwards.
type TimerModel struct {
	service  *services.TimerService
	notifier ports.Notifier
	machine  *domain.TimerMachine

	titleInput      textinput.Model
	picker          domain.DurationPicker
	durationFocused bool
	starting        bool

	confirmCancel bool
	completion    completionModel
	progress      progress.Model

	lastError error
	theme     config.ThemeConfig
	width     int
}

// NewTimerModel builds the timer view. A non-nil resumed snapshot puts the
// machine straight into Running, skipping the form.
func NewTimerModel(service *services.TimerService, notifier ports.Notifier, theme config.ThemeConfig, resumed *domain.TimerSnapshot) TimerModel {
	titleInput := textinput.New()
	titleInput.Placeholder = "What are you working on?"
	titleInput.CharLimit = 200
	titleInput.Width = 44
	titleInput.Focus()

	machine := domain.NewTimerMachine(nil)
	if resumed != nil {
		machine.Resume(*resumed)
	}

	return TimerModel{
		service:    service,
		notifier:   notifier,
		machine:    machine,
		titleInput: titleInput,
		picker:     domain.NewDurationPicker(),
		progress:   progress.New(progress.WithGradient(theme.TimerGradientStart, theme.TimerGradientEnd)),
		theme:      theme,
	}
}

// Running reports whether a session is active (running or awaiting its
// completion dialog).
func (m TimerModel) Running() bool {
	return m.machine.Phase() != domain.PhaseIdle
}

func (m TimerModel) startCmd(title string, minutes float64) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.service.Start(context.Background(), title, minutes)
		if err != nil {
			return startFailedMsg{err: err}
		}
		return sessionStartedMsg{snap: snap}
	}
}

func (m TimerModel) completeCmd(id string, payload domain.CompletionPayload) tea.Cmd {
	return func() tea.Msg {
		_, err := m.service.Complete(context.Background(), id, payload)
		return completionResultMsg{err: err}
	}
}

func (m TimerModel) cancelCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return cancelDoneMsg{err: m.service.Cancel(context.Background(), id)}
	}
}

// alarmCmd fires the desktop notification. Failures degrade to a stderr
// warning; the in-TUI alert is the fallback signal.
func (m TimerModel) alarmCmd(title string) tea.Cmd {
	return func() tea.Msg {
		if err := m.notifier.SessionEnded(title); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to send notification: %v\n", err)
		}
		return nil
	}
}

// Update handles messages for the timer view.
func (m TimerModel) Update(msg tea.Msg) (TimerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(msg.Width-8, 50)
		return m, nil

	case tickMsg:
		return m.handleTick()

	case sessionStartedMsg:
		m.starting = false
		m.lastError = nil
		m.machine.Resume(msg.snap)
		return m, tea.SetWindowTitle(m.windowTitle())

	case startFailedMsg:
		// Stay idle; the user can retry manually.
		m.starting = false
		m.lastError = msg.err
		return m, nil

	case completionResultMsg:
		m.machine.Complete()
		m.titleInput.Reset()
		m.titleInput.Focus()
		m.durationFocused = false
		m.lastError = msg.err
		return m, tea.SetWindowTitle("focus")

	case cancelDoneMsg:
		if msg.err != nil {
			// Local state is already clean; the orphan can be removed
			// from history later.
			fmt.Fprintf(os.Stderr, "Warning: failed to delete session: %v\n", msg.err)
		}
		return m, tea.SetWindowTitle("focus")

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateChildren(msg)
}

func (m TimerModel) handleTick() (TimerModel, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd()}

	switch m.machine.Phase() {
	case domain.PhaseRunning:
		if m.machine.Tick() {
			// Deadline crossed: alarm fires exactly once.
			snap := m.machine.Snapshot()
			m.completion = newCompletionModel(snap.Title, m.theme)
			cmds = append(cmds,
				m.alarmCmd(snap.Title),
				tea.SetWindowTitle("⏰ TIME IS UP!"),
				textinput.Blink,
			)
		} else {
			cmds = append(cmds, tea.SetWindowTitle(m.windowTitle()))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m TimerModel) handleKey(msg tea.KeyMsg) (TimerModel, tea.Cmd) {
	switch m.machine.Phase() {
	case domain.PhaseIdle:
		return m.handleIdleKey(msg)
	case domain.PhaseRunning:
		return m.handleRunningKey(msg)
	case domain.PhaseAwaitingCompletion:
		return m.handleCompletionKey(msg)
	}
	return m, nil
}

func (m TimerModel) handleIdleKey(msg tea.KeyMsg) (TimerModel, tea.Cmd) {
	switch msg.String() {
	case "up", "down":
		m.durationFocused = !m.durationFocused
		if m.durationFocused {
			m.titleInput.Blur()
		} else {
			m.titleInput.Focus()
		}
		return m, textinput.Blink

	case "enter":
		if m.starting {
			return m, nil
		}
		title := m.titleInput.Value()
		if _, err := domain.NewSession(title, m.picker.Minutes(), time.Now()); err != nil {
			m.lastError = err
			return m, nil
		}
		m.starting = true
		m.lastError = nil
		return m, m.startCmd(title, m.picker.Minutes())
	}

	if m.durationFocused {
		switch msg.String() {
		case "1", "2", "3", "4", "5":
			m.picker.SetPreset(int(msg.String()[0] - '1'))
			return m, nil
		case "a":
			m.picker.AddIncrement(0)
			return m, nil
		case "s":
			m.picker.AddIncrement(1)
			return m, nil
		case "d":
			m.picker.AddIncrement(2)
			return m, nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m TimerModel) handleRunningKey(msg tea.KeyMsg) (TimerModel, tea.Cmd) {
	snap := m.machine.Snapshot()

	if m.confirmCancel {
		switch msg.String() {
		case "y", "c":
			m.confirmCancel = false
			m.machine.Cancel()
			return m, m.cancelCmd(snap.ID)
		default:
			m.confirmCancel = false
		}
		return m, nil
	}

	switch msg.String() {
	case "f":
		// Early finish behaves like expiry, minus the alarm.
		if m.machine.FinishEarly() {
			m.completion = newCompletionModel(snap.Title, m.theme)
			return m, tea.Batch(tea.SetWindowTitle("⏰ TIME IS UP!"), textinput.Blink)
		}
	case "c", "esc":
		m.confirmCancel = true
	}
	return m, nil
}

func (m TimerModel) handleCompletionKey(msg tea.KeyMsg) (TimerModel, tea.Cmd) {
	snap := m.machine.Snapshot()

	completion, cmd, payload := m.completion.Update(msg)
	m.completion = completion
	if payload != nil {
		return m, m.completeCmd(snap.ID, *payload)
	}
	return m, cmd
}

func (m TimerModel) updateChildren(msg tea.Msg) (TimerModel, tea.Cmd) {
	var cmds []tea.Cmd

	if m.machine.Phase() == domain.PhaseAwaitingCompletion {
		completion, cmd, _ := m.completion.Update(msg)
		m.completion = completion
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	newProgress, cmd := m.progress.Update(msg)
	if p, ok := newProgress.(progress.Model); ok {
		m.progress = p
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// windowTitle is the ambient countdown shown in the terminal title bar.
func (m TimerModel) windowTitle() string {
	snap := m.machine.Snapshot()
	if snap == nil {
		return "focus"
	}
	return fmt.Sprintf("%s - %s", domain.FormatRemaining(m.machine.Remaining()), snap.Title)
}

// View renders the timer view sections.
func (m TimerModel) View(sections []string) []string {
	switch m.machine.Phase() {
	case domain.PhaseRunning:
		return m.viewRunning(sections)
	case domain.PhaseAwaitingCompletion:
		return m.completion.View(sections)
	default:
		return m.viewIdle(sections)
	}
}

func (m TimerModel) viewIdle(sections []string) []string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorTitle))
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorAccent))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorRatingLow))

	sections = append(sections, labelStyle.Render("Title: ")+m.titleInput.View())
	sections = append(sections, "")

	durationLabel := "Duration: "
	if m.durationFocused {
		durationLabel = "Duration» "
	}
	sections = append(sections, labelStyle.Render(durationLabel)+activeStyle.Render(domain.FormatMinutes(m.picker.Minutes())))

	// Preset and increment rows, numbered to match their hotkeys.
	var presets string
	for i, p := range domain.DurationPresets {
		presets += fmt.Sprintf("[%d] %s  ", i+1, domain.FormatMinutes(p))
	}
	sections = append(sections, dimStyle.Render(presets))

	increments := ""
	for i, inc := range domain.DurationIncrements {
		key := []string{"a", "s", "d"}[i]
		increments += fmt.Sprintf("[%s] %s  ", key, domain.FormatIncrement(inc))
	}
	sections = append(sections, dimStyle.Render(increments))

	sections = append(sections, "")
	if m.starting {
		sections = append(sections, dimStyle.Render("Starting..."))
	} else if m.lastError != nil {
		sections = append(sections, errorStyle.Render("Error: "+m.lastError.Error()))
	}
	sections = append(sections, dimStyle.Render("↑/↓ switch field · enter start"))
	return sections
}

func (m TimerModel) viewRunning(sections []string) []string {
	snap := m.machine.Snapshot()
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorTitle))
	captionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorAccent))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	sections = append(sections, titleStyle.Render(snap.Title))
	sections = append(sections, "")
	sections = append(sections, renderBigTime(
		domain.FormatRemaining(m.machine.Remaining()),
		lipgloss.Color(m.theme.ColorAccent),
		m.width,
	))

	sections = append(sections, "")
	sections = append(sections, m.progress.ViewAs(m.machine.Progress()))
	sections = append(sections, captionStyle.Render(domain.ProgressCaption(m.machine.Progress())))

	sections = append(sections, "")
	if m.confirmCancel {
		sections = append(sections, dimStyle.Render("Cancel session? The record will be deleted. [y] confirm · any key keep going"))
	} else {
		sections = append(sections, dimStyle.Render("[f]inish early  [c]ancel"))
	}
	return sections
}
