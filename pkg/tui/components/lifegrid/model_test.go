package lifegrid

import (
	"strings"
	"testing"
	"time"

	"tableflip.dev/lifedots/pkg/grid"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/tui/theme"
)

func newGrid(t *testing.T, width, height int) *Model {
	t.Helper()
	cal := lifecal.New(time.Date(1998, time.October, 2, 0, 0, 0, 0, time.UTC))
	m := New(theme.Default().Grid)
	m.SetSize(width, height)
	m.SetCells(grid.Build(cal, time.Date(2024, time.October, 2, 9, 0, 0, 0, time.UTC)))
	return m
}

func TestSetCellsJumpsToCurrent(t *testing.T) {
	m := newGrid(t, 200, 90)
	if m.Cursor() != 1357 || m.Hovered() != 1357 {
		t.Fatalf("cursor=%d hovered=%d, want 1357", m.Cursor(), m.Hovered())
	}
}

func TestIndexAt(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		x, y   int
		want   int
		wantOK bool
	}{
		{name: "label column", width: 200, x: 2, y: 0, want: grid.NoHover},
		{name: "first dot", width: 200, x: LabelWidth, y: 0, want: 0, wantOK: true},
		{name: "gap belongs to dot", width: 200, x: LabelWidth + 1, y: 0, want: 0, wantOK: true},
		{name: "spaced column", width: 200, x: LabelWidth + 2*10, y: 3, want: 3*52 + 10, wantOK: true},
		{name: "dense column", width: 60, x: LabelWidth + 10, y: 3, want: 3*52 + 10, wantOK: true},
		{name: "past last column", width: 200, x: LabelWidth + 2*52, y: 0, want: grid.NoHover},
		{name: "above grid", width: 200, x: LabelWidth, y: -1, want: grid.NoHover},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newGrid(t, tt.width, 90)
			m.offset = 0
			got, ok := m.IndexAt(tt.x, tt.y)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("IndexAt(%d, %d) = %d, %v; want %d, %v", tt.x, tt.y, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	m := newGrid(t, 200, 10)
	row := 1357 / lifecal.WeeksPerYear
	if m.offset > row || row >= m.offset+10 {
		t.Fatalf("cursor row %d not within offset %d", row, m.offset)
	}
	got, ok := m.IndexAt(LabelWidth, row-m.offset)
	if !ok || got != row*lifecal.WeeksPerYear {
		t.Fatalf("IndexAt on cursor row = %d, %v", got, ok)
	}

	m.SetCursor(0)
	if m.offset != 0 {
		t.Fatalf("offset = %d after moving to top", m.offset)
	}
}

func TestMoveClamps(t *testing.T) {
	m := newGrid(t, 200, 90)
	m.SetCursor(0)
	m.Move(-1, -1)
	if m.Cursor() != 0 {
		t.Fatalf("cursor = %d, want 0", m.Cursor())
	}
	m.Move(200, 200)
	if m.Cursor() != lifecal.TotalWeeks-1 {
		t.Fatalf("cursor = %d, want last", m.Cursor())
	}
	m.Move(0, -1)
	if m.Cursor() != lifecal.TotalWeeks-2 {
		t.Fatalf("cursor = %d", m.Cursor())
	}
}

func TestHoverOffGridClears(t *testing.T) {
	m := newGrid(t, 200, 90)
	m.Hover(5)
	if m.Hovered() != 5 {
		t.Fatalf("hovered = %d", m.Hovered())
	}
	m.Hover(lifecal.TotalWeeks)
	if m.Hovered() != grid.NoHover {
		t.Fatalf("hovered = %d, want none", m.Hovered())
	}
}

func TestViewRows(t *testing.T) {
	m := newGrid(t, 200, 90)
	lines := strings.Split(m.View(), "\n")
	if len(lines) != lifecal.YearsInLife {
		t.Fatalf("rendered %d rows, want %d", len(lines), lifecal.YearsInLife)
	}
	if !strings.Contains(lines[0], "  0 ") || !strings.Contains(lines[5], "  5 ") {
		t.Fatalf("expected year labels on rows 0 and 5")
	}
	if !strings.Contains(lines[26], currentGlyph) {
		t.Fatalf("expected current week marker on row 26")
	}
	if strings.Contains(lines[30], livedGlyph) {
		t.Fatalf("row 30 is in the future")
	}
}

func TestWrittenMarks(t *testing.T) {
	m := newGrid(t, 200, 90)
	m.MarkWritten(12, true)
	if !m.IsWritten(12) {
		t.Fatalf("expected week 12 written")
	}
	m.SetWritten(map[int]bool{3: true})
	if m.IsWritten(12) || !m.IsWritten(3) {
		t.Fatalf("SetWritten should replace marks")
	}
	m.MarkWritten(3, false)
	if m.IsWritten(3) {
		t.Fatalf("expected week 3 cleared")
	}
}

func TestEmphasizeScalesWithWeight(t *testing.T) {
	th := theme.Default().Grid
	base := th.Lived
	far := th.Emphasize(base, 1.0)
	near := th.Emphasize(base, grid.Weight(10, 10))
	fr, fg, fb, _ := far.RGBA()
	nr, ng, nb, _ := near.RGBA()
	if nr+ng+nb <= fr+fg+fb {
		t.Fatalf("hovered dot should be brighter: far=%v near=%v", far, near)
	}
}
