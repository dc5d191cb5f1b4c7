package help

import (
	"regexp"
	"strings"
	"testing"

	"tableflip.dev/lifedots/pkg/tui/theme"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;:]*[A-Za-z~]`)

func plain(s string) string { return ansiPattern.ReplaceAllString(s, "") }

func TestRendersMarkdown(t *testing.T) {
	m := New(theme.Default().Panel, 80, 200)
	if m.err != nil {
		t.Fatalf("render failed: %v", m.err)
	}
	got := plain(m.View())
	for _, want := range []string{"Your life in weeks", "jump to this week", "previous or next week"} {
		if !strings.Contains(got, want) {
			t.Errorf("help is missing %q", want)
		}
	}
}

func TestMinimumSize(t *testing.T) {
	m := New(theme.Default().Panel, 4, 2)
	if m.width != 32 || m.height != 8 {
		t.Fatalf("size = %dx%d, want 32x8", m.width, m.height)
	}
}

func TestOpenClose(t *testing.T) {
	m := New(theme.Default().Panel, 80, 20)
	m.Open()
	if !m.Active {
		t.Fatalf("expected overlay open")
	}
	m.Close()
	if m.Active {
		t.Fatalf("expected overlay closed")
	}
}
