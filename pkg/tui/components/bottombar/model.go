// Package bottombar renders the footer with key hints and the latest status.
package bottombar

import (
	"strings"

	"tableflip.dev/lifedots/pkg/tui/theme"
)

// Mode selects the key hints shown.
type Mode int

const (
	ModeGrid Mode = iota
	ModeDetail
	ModeEditing
	ModeOnboarding
	ModeHelp
)

// Tone styles the status message.
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneError
)

var hints = map[Mode][]string{
	ModeGrid:       {"←↓↑→/hjkl move", "enter open", "t today", "? help", "x hide hints", "q quit"},
	ModeDetail:     {"j journal", "r reminders", "←→ previous/next week", "? help", "esc close", "q quit"},
	ModeEditing:    {"enter save", "esc cancel"},
	ModeOnboarding: {"enter continue", "ctrl+c quit"},
	ModeHelp:       {"↑↓ scroll", "esc close"},
}

// Model tracks footer state.
type Model struct {
	theme theme.FooterTheme

	mode       Mode
	hideHints  bool
	status     string
	statusTone Tone
}

// New returns a footer in grid mode.
func New(th theme.FooterTheme) Model {
	return Model{theme: th}
}

// SetMode updates the visual mode.
func (m *Model) SetMode(mode Mode) { m.mode = mode }

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// ToggleHints shows or hides the grid usage hint.
func (m *Model) ToggleHints() { m.hideHints = !m.hideHints }

// HintsHidden reports whether the grid usage hint was dismissed.
func (m Model) HintsHidden() bool { return m.hideHints }

// SetStatus sets the status message to display.
func (m *Model) SetStatus(status string, tone Tone) {
	m.status = status
	m.statusTone = tone
}

// Status returns the current status message.
func (m Model) Status() string { return m.status }

// ClearStatus drops the status message.
func (m *Model) ClearStatus() { m.status = "" }

// Height reports the number of lines consumed by the footer.
func (m Model) Height() int { return 1 }

// View renders the footer line.
func (m Model) View() string {
	var segments []string
	if m.status != "" {
		segments = append(segments, m.statusStyle(m.status))
	}
	if help := m.helpLine(); help != "" {
		segments = append(segments, m.theme.Help.Render(help))
	}
	if len(segments) == 0 {
		return " "
	}
	return strings.Join(segments, " │ ")
}

func (m Model) helpLine() string {
	if m.mode == ModeGrid && m.hideHints {
		return m.theme.Key.Render("?") + m.theme.Help.Render(" help")
	}
	return strings.Join(hints[m.mode], " · ")
}

func (m Model) statusStyle(s string) string {
	switch m.statusTone {
	case ToneSuccess:
		return m.theme.Success.Render(s)
	case ToneError:
		return m.theme.Error.Render(s)
	default:
		return m.theme.Status.Render(s)
	}
}
