// Package onboarding renders the birth date prompt shown before a profile
// has a birth date.
package onboarding

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/lifedots/pkg/tui/theme"
	"tableflip.dev/lifedots/pkg/tui/ui"
)

var _ ui.Component = (*Model)(nil)

// Model tracks the onboarding overlay state. The input itself belongs to the
// parent, which passes its rendering in through SetInputView.
type Model struct {
	Active     bool
	Submitting bool
	Err        string

	width     int
	height    int
	inputView string

	theme theme.Theme
}

// New constructs an inactive onboarding view.
func New(th theme.Theme) *Model {
	return &Model{theme: th}
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.Component.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) { return m, nil }

// SetSize stores the available viewport size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetInputView updates the rendered input line.
func (m *Model) SetInputView(view string) {
	m.inputView = strings.TrimSuffix(view, "\n")
}

// View renders the prompt centered in the available space.
func (m *Model) View() string {
	if !m.Active {
		return ""
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height
	if height <= 0 {
		height = 24
	}

	body := m.theme.Modal.Body
	lines := []string{
		m.theme.Modal.Title.Render("Your life in weeks"),
		"",
		body.Render("Each dot is one week of a ninety year life."),
		body.Render("When were you born? (YYYY-MM-DD)"),
		"",
		body.Render(m.inputView),
	}
	switch {
	case m.Submitting:
		lines = append(lines, "", m.theme.Panel.Muted.Render("Saving…"))
	case m.Err != "":
		lines = append(lines, "", m.theme.Footer.Error.Render(m.Err))
	}

	frame := m.theme.Modal.Frame.Width(modalWidth(width))
	panel := frame.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}

func modalWidth(width int) int {
	w := width - 8
	if w > 56 {
		w = 56
	}
	if w < 24 {
		w = max(width-4, 20)
	}
	return w
}
