package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calegria/focus-cli/internal/config"
	"github.com/calegria/focus-cli/internal/domain"
)

// completion dialog focus targets, top to bottom.
const (
	completionFocusRating = iota
	completionFocusNotes
	completionFocusLearnings
)

// completionModel collects the post-session reflection: a 1-10 rating,
// notes and learnings. It holds no persistence of its own; Update hands a
// CompletionPayload back to the timer when the user saves or skips.
type completionModel struct {
	sessionTitle string
	rating       int // 0 = none selected, 1..10
	focus        int
	notes        textinput.Model
	learnings    textinput.Model
	theme        config.ThemeConfig
}

func newCompletionModel(sessionTitle string, theme config.ThemeConfig) completionModel {
	notes := textinput.New()
	notes.Placeholder = "What did you work on?"
	notes.CharLimit = 500
	notes.Width = 44

	learnings := textinput.New()
	learnings.Placeholder = "What did you learn?"
	learnings.CharLimit = 500
	learnings.Width = 44

	return completionModel{
		sessionTitle: sessionTitle,
		focus:        completionFocusRating,
		notes:        notes,
		learnings:    learnings,
		theme:        theme,
	}
}

// payload packages the current form state.
func (c completionModel) payload() domain.CompletionPayload {
	p := domain.CompletionPayload{
		Notes:     strings.TrimSpace(c.notes.Value()),
		Learnings: strings.TrimSpace(c.learnings.Value()),
	}
	if c.rating >= 1 && c.rating <= 10 {
		r := c.rating
		p.Rating = &r
	}
	return p
}

// Update handles a message. A non-nil third return value is the payload to
// submit: the form state on enter, the empty payload on esc (skip).
func (c completionModel) Update(msg tea.Msg) (completionModel, tea.Cmd, *domain.CompletionPayload) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c.updateInputs(msg)
	}

	switch keyMsg.String() {
	case "enter":
		p := c.payload()
		return c, nil, &p
	case "esc":
		return c, nil, &domain.CompletionPayload{}
	case "tab", "down":
		return c.setFocus(c.focus + 1), nil, nil
	case "shift+tab", "up":
		return c.setFocus(c.focus - 1), nil, nil
	}

	if c.focus == completionFocusRating {
		switch keyMsg.String() {
		case "left", "h":
			if c.rating > 1 {
				c.rating--
			} else if c.rating == 0 {
				c.rating = 1
			}
			return c, nil, nil
		case "right", "l":
			if c.rating == 0 {
				c.rating = 1
			} else if c.rating < 10 {
				c.rating++
			}
			return c, nil, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			c.rating = int(keyMsg.String()[0] - '0')
			return c, nil, nil
		case "0":
			c.rating = 10
			return c, nil, nil
		}
		return c, nil, nil
	}

	return c.updateInputs(msg)
}

func (c completionModel) updateInputs(msg tea.Msg) (completionModel, tea.Cmd, *domain.CompletionPayload) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	c.notes, cmd = c.notes.Update(msg)
	cmds = append(cmds, cmd)
	c.learnings, cmd = c.learnings.Update(msg)
	cmds = append(cmds, cmd)
	return c, tea.Batch(cmds...), nil
}

func (c completionModel) setFocus(focus int) completionModel {
	if focus < completionFocusRating {
		focus = completionFocusLearnings
	}
	if focus > completionFocusLearnings {
		focus = completionFocusRating
	}
	c.focus = focus

	c.notes.Blur()
	c.learnings.Blur()
	switch focus {
	case completionFocusNotes:
		c.notes.Focus()
	case completionFocusLearnings:
		c.learnings.Focus()
	}
	return c
}

// View renders the completion dialog sections.
func (c completionModel) View(sections []string) []string {
	statusStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.theme.ColorAccent))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(c.theme.ColorHelp))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(c.theme.ColorTitle))

	sections = append(sections, statusStyle.Render("⏰ Time is up!"))
	sections = append(sections, helpStyle.Render(fmt.Sprintf("How did %q go?", c.sessionTitle)))
	sections = append(sections, "")

	// Rating row: ten buttons, colored by band once selected.
	var row strings.Builder
	for i := 1; i <= 10; i++ {
		label := fmt.Sprintf(" %d ", i)
		if i == c.rating {
			rated := domain.Session{Rating: &i}
			band := rated.Band()
			row.WriteString(lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(ratingColor(c.theme, band)).
				Render(label))
		} else {
			row.WriteString(helpStyle.Render(label))
		}
	}
	ratingLabel := "Rating: "
	if c.focus == completionFocusRating {
		ratingLabel = "Rating» "
	}
	sections = append(sections, labelStyle.Render(ratingLabel)+row.String())

	sections = append(sections, labelStyle.Render("Notes: ")+c.notes.View())
	sections = append(sections, labelStyle.Render("Learnings: ")+c.learnings.View())

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render("←/→ or 1-0 rate · tab next field · enter save · esc skip"))
	return sections
}
