// Package help renders the key reference overlay.
package help

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/lifedots/pkg/tui/theme"
	"tableflip.dev/lifedots/pkg/tui/ui"
)

//go:embed help.md
var helpMarkdown string

var _ ui.Component = (*Model)(nil)

// Model renders the markdown help inside a bordered, scrollable viewport.
type Model struct {
	Active bool

	viewport viewport.Model
	width    int
	height   int

	frame lipgloss.Style
	err   error
}

// New constructs a help overlay sized to the provided bounds.
func New(th theme.PanelTheme, width, height int) *Model {
	vp := viewport.New(
		viewport.WithWidth(max(width, 1)),
		viewport.WithHeight(max(height, 1)),
	)
	vp.MouseWheelEnabled = true
	m := &Model{
		viewport: vp,
		frame:    th.Frame,
	}
	m.SetSize(width, height)
	return m
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update forwards scrolling to the viewport.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	return m, cmd
}

// Open shows the overlay scrolled to the top.
func (m *Model) Open() {
	m.Active = true
	m.viewport.SetYOffset(0)
}

// Close hides the overlay.
func (m *Model) Close() { m.Active = false }

// View renders the help content inside the frame.
func (m *Model) View() string {
	body := m.viewport.View()
	if body == "" && m.err != nil {
		body = "help unavailable: " + m.err.Error()
	}
	return m.frame.Width(m.width).Height(m.height).Render(body)
}

// SetSize re-renders the markdown to fit the new bounds.
func (m *Model) SetSize(width, height int) {
	width = max(width, 32)
	height = max(height, 8)
	if m.width == width && m.height == height {
		return
	}

	m.width = width
	m.height = height

	innerWidth := max(width-m.frame.GetHorizontalFrameSize(), 1)
	innerHeight := max(height-m.frame.GetVerticalFrameSize(), 1)

	m.viewport.SetWidth(innerWidth)
	m.viewport.SetHeight(innerHeight)

	m.render(innerWidth)
}

func (m *Model) render(wrap int) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(wrap, 10)),
	)
	if err != nil {
		m.fail(err)
		return
	}
	content, err := renderer.Render(strings.TrimSpace(helpMarkdown))
	if err != nil {
		m.fail(err)
		return
	}
	m.err = nil
	m.viewport.SetContent(content)
	m.viewport.SetYOffset(0)
}

func (m *Model) fail(err error) {
	m.err = err
	m.viewport.SetContent("help unavailable: " + err.Error())
}
