package bottombar

import (
	"strings"
	"testing"

	"tableflip.dev/lifedots/pkg/tui/theme"
)

func TestHintsFollowMode(t *testing.T) {
	m := New(theme.Default().Footer)
	if !strings.Contains(m.View(), "enter open") {
		t.Fatalf("grid hint missing: %q", m.View())
	}
	m.SetMode(ModeEditing)
	if !strings.Contains(m.View(), "enter save") {
		t.Fatalf("editing hint missing: %q", m.View())
	}
}

func TestToggleHints(t *testing.T) {
	m := New(theme.Default().Footer)
	m.ToggleHints()
	if strings.Contains(m.View(), "enter open") {
		t.Fatalf("hint should be hidden")
	}
	m.SetMode(ModeDetail)
	if !strings.Contains(m.View(), "esc close") {
		t.Fatalf("dismissing the grid hint must not hide detail keys")
	}
	m.SetMode(ModeGrid)
	m.ToggleHints()
	if !strings.Contains(m.View(), "enter open") {
		t.Fatalf("hint should be back")
	}
}

func TestStatus(t *testing.T) {
	m := New(theme.Default().Footer)
	m.SetStatus("Reminders saved", ToneSuccess)
	if m.Status() != "Reminders saved" || !strings.Contains(m.View(), "Reminders saved") {
		t.Fatalf("status not rendered: %q", m.View())
	}
	m.ClearStatus()
	if m.Status() != "" {
		t.Fatalf("status not cleared")
	}
}
