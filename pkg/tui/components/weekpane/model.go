// Package weekpane renders the detail pane of the selected week and hosts
// the text input used to edit its fields.
package weekpane

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/session"
	"tableflip.dev/lifedots/pkg/tui/theme"
	"tableflip.dev/lifedots/pkg/tui/ui"
	"tableflip.dev/lifedots/pkg/week"
)

var _ ui.Component = (*Model)(nil)

const (
	minWidth  = 28
	charLimit = 4000
)

// Model draws a session. It owns no week state besides the input widget;
// everything else is read from the session on each render.
type Model struct {
	theme   theme.Theme
	session *session.Session

	input   textinput.Model
	editing week.Field

	width  int
	height int
}

// New returns a pane bound to s.
func New(th theme.Theme, s *session.Session) *Model {
	ti := textinput.New()
	ti.CharLimit = charLimit
	ti.Prompt = "> "
	ti.VirtualCursor = true
	ti.Styles.Cursor.Color = lipgloss.Color("212")
	ti.Styles.Cursor.Shape = tea.CursorBlock
	ti.Styles.Cursor.Blink = true
	return &Model{
		theme:   th,
		session: s,
		input:   ti,
	}
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update forwards messages to the input while a field is being edited and
// mirrors its value into the session draft.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	if m.editing == "" {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	_ = m.session.SetDraft(m.editing, m.input.Value())
	return m, cmd
}

// SetSize stores the available viewport size.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, minWidth)
	m.height = height
	m.input.SetWidth(m.innerWidth() - lipgloss.Width(m.input.Prompt) - 1)
}

func (m *Model) innerWidth() int {
	w := m.width - m.theme.Panel.Frame.GetHorizontalFrameSize()
	return max(w, 1)
}

// Editing returns the field being edited, or "" when none is.
func (m *Model) Editing() week.Field { return m.editing }

// StartEditing begins editing f in the session and focuses the input with
// the field's last known value.
func (m *Model) StartEditing(f week.Field) (tea.Cmd, error) {
	if err := m.session.BeginEdit(f); err != nil {
		return nil, err
	}
	m.editing = f
	m.input.Placeholder = placeholder(f)
	m.input.SetValue(m.session.Draft(f))
	m.input.CursorEnd()
	return tea.Batch(m.input.Focus(), textinput.Blink), nil
}

// Save submits the draft being edited.
func (m *Model) Save() (tea.Cmd, error) {
	if m.editing == "" {
		return nil, session.ErrNotEditing
	}
	_ = m.session.SetDraft(m.editing, m.input.Value())
	cmd, err := m.session.Save(m.editing)
	if err != nil {
		return nil, err
	}
	m.stop()
	return cmd, nil
}

// Cancel abandons the edit in progress.
func (m *Model) Cancel() {
	if m.editing == "" {
		return
	}
	_ = m.session.CancelEdit(m.editing)
	m.stop()
}

// Reset drops input state after the session switched weeks or closed.
func (m *Model) Reset() { m.stop() }

func (m *Model) stop() {
	m.editing = ""
	m.input.Blur()
	m.input.SetValue("")
}

// View renders the selected week.
func (m *Model) View() string {
	v, ok := m.session.View()
	if !ok {
		return ""
	}
	th := m.theme.Panel
	width := m.innerWidth()

	lines := []string{
		th.Title.Render(fmt.Sprintf("Week %d", v.WeekNumber)),
		th.Body.Render(fmt.Sprintf("Year %d, week %d", v.Year, v.WeekInYear)),
		th.Muted.Render(formatRange(v)),
		th.Body.Render(fmt.Sprintf("Age %d · day %d", v.Age, v.DaysIn)),
	}
	if v.Birthday {
		lines = append(lines, th.Accent.Render("Birthday week"))
	}
	lines = append(lines, "", th.Body.Render(wordwrap.String(v.Prompt(), width)))

	switch {
	case m.session.Phase() == session.Selected:
		lines = append(lines, "", th.Muted.Render("Loading…"))
	case m.session.FetchFailed():
		lines = append(lines, "", th.Muted.Render("Could not load this week"))
	}

	for _, f := range week.Fields {
		lines = append(lines, "", m.fieldHeader(f))
		lines = append(lines, m.fieldBody(f, v.Record, width))
	}

	lines = append(lines, "", th.Muted.Render(m.hint()))
	content := strings.Join(lines, "\n")

	frame := th.Frame.Width(m.width - th.Frame.GetHorizontalBorderSize())
	if m.height > 0 {
		frame = frame.MaxHeight(m.height)
	}
	return frame.Render(content)
}

func (m *Model) fieldHeader(f week.Field) string {
	label := m.theme.Panel.Label.Render(f.Label())
	switch m.session.Mode(f) {
	case session.Saving:
		return label + m.theme.Panel.Muted.Render(" saving…")
	case session.Editing:
		return label + m.theme.Panel.Muted.Render(" editing")
	}
	return label
}

func (m *Model) fieldBody(f week.Field, r *week.Record, width int) string {
	if m.editing == f {
		return m.input.View()
	}
	text := strings.TrimSpace(r.Get(f))
	if text == "" {
		return m.theme.Panel.Muted.Render("Nothing yet")
	}
	return m.theme.Panel.Body.Render(wordwrap.String(text, width))
}

func (m *Model) hint() string {
	if m.editing != "" {
		return "enter save · esc cancel"
	}
	return "j journal · r reminders · esc close"
}

func placeholder(f week.Field) string {
	if f == week.Reminders {
		return "What should you remember?"
	}
	return "Write about this week"
}

func formatRange(v app.WeekView) string {
	const layout = "Jan 2, 2006"
	return v.Start.Format(layout) + " to " + v.End.Format(layout)
}
