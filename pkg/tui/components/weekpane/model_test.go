package weekpane

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/session"
	"tableflip.dev/lifedots/pkg/store"
	"tableflip.dev/lifedots/pkg/tui/theme"
	"tableflip.dev/lifedots/pkg/week"
)

var fixedNow = time.Date(2024, time.October, 2, 9, 0, 0, 0, time.UTC)

func newPane(t *testing.T) (*Model, *session.Session, *app.Service) {
	t.Helper()
	clock := lifecal.ClockFunc(func() time.Time { return fixedNow })
	svc := &app.Service{Persistence: store.NewMemory(), UserID: "alex", Clock: clock}
	s := session.New(session.Options{
		API:      svc,
		Calendar: lifecal.New(time.Date(1998, time.October, 2, 0, 0, 0, 0, time.UTC)),
		Clock:    clock,
	})
	m := New(theme.Default(), s)
	m.SetSize(60, 40)
	return m, s, svc
}

func open(t *testing.T, s *session.Session, index int) {
	t.Helper()
	cmd, err := s.Open(index)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Update(cmd())
}

func TestViewClosed(t *testing.T) {
	m, _, _ := newPane(t)
	if got := m.View(); got != "" {
		t.Fatalf("closed pane rendered %q", got)
	}
}

func TestViewLoading(t *testing.T) {
	m, s, _ := newPane(t)
	if _, err := s.Open(100); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !strings.Contains(m.View(), "Loading…") {
		t.Fatalf("expected loading state")
	}
}

func TestViewBirthdayWeek(t *testing.T) {
	m, s, svc := newPane(t)
	if _, err := svc.UpsertJournalEntry(context.Background(), 53, "first birthday cake"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	open(t, s, 52)
	view := m.View()
	for _, want := range []string{"Week 53", "Year 2, week 1", "Birthday week", "first birthday cake", "Nothing yet"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestEditingLifecycle(t *testing.T) {
	m, s, _ := newPane(t)
	if _, err := m.StartEditing(week.Journal); err == nil {
		t.Fatalf("editing a closed week should fail")
	}
	open(t, s, 1400)

	if _, err := m.StartEditing(week.Reminders); err != nil {
		t.Fatalf("StartEditing: %v", err)
	}
	if m.Editing() != week.Reminders || s.Mode(week.Reminders) != session.Editing {
		t.Fatalf("expected reminders editing")
	}
	if !strings.Contains(m.View(), "enter save") {
		t.Fatalf("expected editing hint")
	}
	m.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if got := s.Draft(week.Reminders); got != "x" {
		t.Fatalf("draft = %q", got)
	}

	m.Cancel()
	if m.Editing() != "" || s.Mode(week.Reminders) != session.Viewing {
		t.Fatalf("cancel should return to viewing")
	}

	if _, err := m.StartEditing(week.Journal); err != nil {
		t.Fatalf("StartEditing: %v", err)
	}
	m.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	cmd, err := m.Save()
	if err != nil || cmd == nil {
		t.Fatalf("Save = %v, %v", cmd, err)
	}
	if s.Mode(week.Journal) != session.Saving {
		t.Fatalf("mode = %s, want saving", s.Mode(week.Journal))
	}
	if !strings.Contains(m.View(), "saving…") {
		t.Fatalf("expected saving marker")
	}
	if _, err := m.Save(); err == nil {
		t.Fatalf("Save without an edit should fail")
	}
}
