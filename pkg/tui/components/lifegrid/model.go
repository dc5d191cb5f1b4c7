// Package lifegrid renders the ninety year week grid and tracks the hovered
// dot.
package lifegrid

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"

	"tableflip.dev/lifedots/pkg/grid"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/tui/theme"
	"tableflip.dev/lifedots/pkg/tui/ui"
)

var (
	_ ui.Component = (*Model)(nil)
	_ ui.Hit       = (*Model)(nil)
)

const (
	// LabelWidth is the width of the year column left of the dots.
	LabelWidth = 4

	livedGlyph    = "●"
	currentGlyph  = "◉"
	futureGlyph   = "○"
	birthdayGlyph = "◆"
)

// Model is the grid widget. The cursor is the keyboard position; the hovered
// index follows the mouse and falls back to the cursor when keys move it.
type Model struct {
	theme   theme.GridTheme
	cells   []grid.Cell
	written map[int]bool

	cursor  int
	hovered int

	width  int
	height int
	offset int
}

// New returns an empty grid.
func New(th theme.GridTheme) *Model {
	return &Model{
		theme:   th,
		written: map[int]bool{},
		hovered: grid.NoHover,
	}
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.Component. Mouse handling lives in the parent, which
// knows where the grid is drawn.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) { return m, nil }

// SetSize stores the available viewport size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.scrollToCursor()
}

// SetCells replaces the cells. The cursor moves to the current week the
// first time cells arrive.
func (m *Model) SetCells(cells []grid.Cell) {
	first := len(m.cells) == 0
	m.cells = cells
	if first {
		m.JumpToCurrent()
	}
}

// Cells returns the rendered cells.
func (m *Model) Cells() []grid.Cell { return m.cells }

// SetWritten marks weeks carrying a journal entry or reminders.
func (m *Model) SetWritten(written map[int]bool) {
	if written == nil {
		written = map[int]bool{}
	}
	m.written = written
}

// MarkWritten flags or clears a single week number.
func (m *Model) MarkWritten(number int, on bool) {
	if on {
		m.written[number] = true
		return
	}
	delete(m.written, number)
}

// IsWritten reports whether a week number is marked as written.
func (m *Model) IsWritten(number int) bool { return m.written[number] }

// Cursor returns the keyboard selected index.
func (m *Model) Cursor() int { return m.cursor }

// Hovered returns the hovered index or grid.NoHover.
func (m *Model) Hovered() int { return m.hovered }

// Hover sets the hovered index; anything off the grid clears it.
func (m *Model) Hover(index int) {
	if !lifecal.ValidIndex(index) {
		m.hovered = grid.NoHover
		return
	}
	m.hovered = index
}

// SetCursor moves the cursor and the hover to index.
func (m *Model) SetCursor(index int) {
	if !lifecal.ValidIndex(index) {
		return
	}
	m.cursor = index
	m.hovered = index
	m.scrollToCursor()
}

// Move shifts the cursor by rows and columns, clamped to the grid.
func (m *Model) Move(rows, cols int) {
	row := clamp(m.cursor/lifecal.WeeksPerYear+rows, 0, lifecal.YearsInLife-1)
	col := clamp(m.cursor%lifecal.WeeksPerYear+cols, 0, lifecal.WeeksPerYear-1)
	m.SetCursor(row*lifecal.WeeksPerYear + col)
}

// JumpToCurrent places the cursor on the current week, if it is on the grid.
func (m *Model) JumpToCurrent() {
	for _, c := range m.cells {
		if c.IsCurrent() {
			m.SetCursor(c.Index)
			return
		}
	}
}

// Width is the number of columns the grid needs.
func (m *Model) Width() int {
	return LabelWidth + lifecal.WeeksPerYear*m.step()
}

// step is the horizontal distance between dots: spaced when room allows.
func (m *Model) step() int {
	if m.width == 0 || m.width >= LabelWidth+lifecal.WeeksPerYear*2 {
		return 2
	}
	return 1
}

func (m *Model) visibleRows() int {
	if m.height <= 0 || m.height > lifecal.YearsInLife {
		return lifecal.YearsInLife
	}
	return m.height
}

func (m *Model) scrollToCursor() {
	rows := m.visibleRows()
	row := m.cursor / lifecal.WeeksPerYear
	if row < m.offset {
		m.offset = row
	}
	if row >= m.offset+rows {
		m.offset = row - rows + 1
	}
	m.offset = clamp(m.offset, 0, lifecal.YearsInLife-rows)
}

// IndexAt maps a position relative to the top left corner of the grid view
// onto a dot index. The gap right of a spaced dot belongs to that dot.
func (m *Model) IndexAt(x, y int) (int, bool) {
	if x < LabelWidth || y < 0 || y >= m.visibleRows() {
		return grid.NoHover, false
	}
	col := (x - LabelWidth) / m.step()
	row := m.offset + y
	if col >= lifecal.WeeksPerYear || row >= lifecal.YearsInLife {
		return grid.NoHover, false
	}
	return row*lifecal.WeeksPerYear + col, true
}

// View renders the visible rows. Labels mark every fifth life year.
func (m *Model) View() string {
	if len(m.cells) == 0 {
		return ""
	}
	weights := grid.Weights(len(m.cells), m.hovered)
	gap := strings.Repeat(" ", m.step()-1)

	var b strings.Builder
	rows := m.visibleRows()
	for r := m.offset; r < m.offset+rows; r++ {
		if r > m.offset {
			b.WriteByte('\n')
		}
		label := strings.Repeat(" ", LabelWidth)
		if r%5 == 0 {
			label = fmt.Sprintf("%3d ", r)
		}
		b.WriteString(m.theme.Label.Render(label))
		for c := 0; c < lifecal.WeeksPerYear; c++ {
			i := r*lifecal.WeeksPerYear + c
			if i >= len(m.cells) {
				break
			}
			b.WriteString(m.renderDot(m.cells[i], weights[i]))
			if c < lifecal.WeeksPerYear-1 {
				b.WriteString(gap)
			}
		}
	}
	return b.String()
}

func (m *Model) renderDot(c grid.Cell, weight float64) string {
	glyph, base := m.appearance(c)
	style := lipgloss.NewStyle().Foreground(m.theme.Emphasize(base, weight))
	if weight > 1.4 {
		style = style.Bold(true)
	}
	if c.Index == m.cursor {
		style = style.Inherit(m.theme.Cursor)
	}
	return style.Render(glyph)
}

// appearance picks the glyph and base color of a dot. Birthday weeks keep
// their marker whether lived or not.
func (m *Model) appearance(c grid.Cell) (string, colorful.Color) {
	glyph, base := futureGlyph, m.theme.Future
	switch c.State {
	case grid.Current:
		glyph, base = currentGlyph, m.theme.Current
	case grid.Lived:
		glyph, base = livedGlyph, m.theme.Lived
	}
	if c.Birthday && c.State != grid.Current {
		glyph, base = birthdayGlyph, m.theme.Birthday
	}
	if m.written[c.Index+1] {
		base = m.theme.Written
	}
	return glyph, base
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
