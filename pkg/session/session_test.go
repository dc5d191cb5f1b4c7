package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/store"
	"tableflip.dev/lifedots/pkg/week"
)

var (
	fixedNow   = time.Date(2024, time.October, 2, 9, 0, 0, 0, time.UTC)
	fixedBirth = time.Date(1998, time.October, 2, 0, 0, 0, 0, time.UTC)
	errBoom    = errors.New("store unavailable")
)

// flakyAPI wraps a real service and fails saves or fetches on demand.
type flakyAPI struct {
	*app.Service

	mu         sync.Mutex
	failSaves  bool
	failFetch  bool
	fetchCalls int
}

func (f *flakyAPI) setFailSaves(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSaves = v
}

func (f *flakyAPI) GetWeek(ctx context.Context, n int) (*week.Record, error) {
	f.mu.Lock()
	f.fetchCalls++
	fail := f.failFetch
	f.mu.Unlock()
	if fail {
		return nil, errBoom
	}
	return f.Service.GetWeek(ctx, n)
}

func (f *flakyAPI) UpsertJournalEntry(ctx context.Context, n int, text string) (*week.Record, error) {
	f.mu.Lock()
	fail := f.failSaves
	f.mu.Unlock()
	if fail {
		return nil, errBoom
	}
	return f.Service.UpsertJournalEntry(ctx, n, text)
}

func (f *flakyAPI) UpdateReminders(ctx context.Context, n int, text string) (*week.Record, error) {
	f.mu.Lock()
	fail := f.failSaves
	f.mu.Unlock()
	if fail {
		return nil, errBoom
	}
	return f.Service.UpdateReminders(ctx, n, text)
}

func newSession(t *testing.T) (*Session, *flakyAPI, *Recorder) {
	t.Helper()
	api := &flakyAPI{Service: &app.Service{
		Persistence: store.NewMemory(),
		UserID:      "alex",
		Clock:       lifecal.ClockFunc(func() time.Time { return fixedNow }),
	}}
	rec := &Recorder{}
	s := New(Options{
		API:      api,
		Calendar: lifecal.New(fixedBirth),
		Clock:    lifecal.ClockFunc(func() time.Time { return fixedNow }),
		Notifier: rec,
	})
	return s, api, rec
}

func drain(s *Session, cmds ...tea.Cmd) {
	queue := append([]tea.Cmd(nil), cmds...)
	for len(queue) > 0 {
		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}
		switch v := cmd().(type) {
		case tea.BatchMsg:
			queue = append(queue, []tea.Cmd(v)...)
		default:
			if next := s.Update(v); next != nil {
				queue = append(queue, next)
			}
		}
	}
}

func openLoaded(t *testing.T, s *Session, index int) {
	t.Helper()
	cmd, err := s.Open(index)
	if err != nil {
		t.Fatalf("Open(%d): %v", index, err)
	}
	if s.Phase() != Selected {
		t.Fatalf("expected selected before fetch, got %s", s.Phase())
	}
	drain(s, cmd)
	if s.Phase() != Loaded {
		t.Fatalf("expected loaded after fetch, got %s", s.Phase())
	}
}

func cachedText(s *Session, number int, f week.Field) string {
	r, _ := s.Cache().Week(number)
	return r.Get(f)
}

func TestOpenLoadsEmptyWeek(t *testing.T) {
	s, _, _ := newSession(t)
	openLoaded(t, s, 0)

	if s.WeekNumber() != 1 {
		t.Fatalf("expected week 1, got %d", s.WeekNumber())
	}
	if s.Record() != nil {
		t.Fatalf("expected no record, got %+v", s.Record())
	}
	v, ok := s.View()
	if !ok || v.WeekNumber != 1 || !v.Birthday {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestOpenRejectsOutOfRange(t *testing.T) {
	s, _, _ := newSession(t)
	if _, err := s.Open(lifecal.TotalWeeks); err == nil {
		t.Fatalf("expected error for index past the grid")
	}
	if s.IsOpen() {
		t.Fatalf("session should stay closed")
	}
}

func TestSaveSuccess(t *testing.T) {
	s, api, rec := newSession(t)
	openLoaded(t, s, 1357)

	if err := s.BeginEdit(week.Journal); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if s.Draft(week.Journal) != "" {
		t.Fatalf("expected empty draft, got %q", s.Draft(week.Journal))
	}
	if err := s.SetDraft(week.Journal, "hello"); err != nil {
		t.Fatalf("SetDraft: %v", err)
	}
	cmd, err := s.Save(week.Journal)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := cachedText(s, 1358, week.Journal); got != "hello" {
		t.Fatalf("expected optimistic text before dispatch, got %q", got)
	}
	if s.Mode(week.Journal) != Saving {
		t.Fatalf("expected saving, got %s", s.Mode(week.Journal))
	}

	drain(s, cmd)

	if s.Mode(week.Journal) != Viewing {
		t.Fatalf("expected viewing after save, got %s", s.Mode(week.Journal))
	}
	all := rec.All()
	if len(all) != 1 || all[0].Kind != Success || all[0].Text != "Journal entry saved" {
		t.Fatalf("unexpected notifications %+v", all)
	}
	r, err := api.Service.GetWeek(context.Background(), 1358)
	if err != nil || r.Get(week.Journal) != "hello" {
		t.Fatalf("store not updated: %+v %v", r, err)
	}
	if got := s.Record(); got == nil || got.ID == 0 {
		t.Fatalf("expected confirmed record in cache, got %+v", got)
	}
	if _, valid := s.Cache().All(); !valid {
		t.Fatalf("expected all-weeks listing refreshed")
	}
}

func TestSaveFailureRollsBack(t *testing.T) {
	s, api, rec := newSession(t)
	if _, err := api.Service.UpsertJournalEntry(context.Background(), 10, "old"); err != nil {
		t.Fatal(err)
	}
	openLoaded(t, s, 9)

	if err := s.BeginEdit(week.Journal); err != nil {
		t.Fatal(err)
	}
	if s.Draft(week.Journal) != "old" {
		t.Fatalf("expected server value in draft, got %q", s.Draft(week.Journal))
	}
	_ = s.SetDraft(week.Journal, "new")
	api.setFailSaves(true)

	cmd, err := s.Save(week.Journal)
	if err != nil {
		t.Fatal(err)
	}
	if got := cachedText(s, 10, week.Journal); got != "new" {
		t.Fatalf("expected optimistic value, got %q", got)
	}

	drain(s, cmd)

	if got := cachedText(s, 10, week.Journal); got != "old" {
		t.Fatalf("expected rollback to old, got %q", got)
	}
	if s.Mode(week.Journal) != Viewing || s.Draft(week.Journal) != "" {
		t.Fatalf("expected view mode without draft, got %s %q", s.Mode(week.Journal), s.Draft(week.Journal))
	}
	if n := rec.Count(Error); n != 1 {
		t.Fatalf("expected exactly one error notification, got %d", n)
	}
	if n := rec.Count(Success); n != 0 {
		t.Fatalf("expected no success notification, got %d", n)
	}
	if rec.All()[0].Text != "Failed to save journal entry" {
		t.Fatalf("unexpected text %q", rec.All()[0].Text)
	}
}

func TestRemindersFailureText(t *testing.T) {
	s, api, rec := newSession(t)
	openLoaded(t, s, 3)
	api.setFailSaves(true)

	_ = s.BeginEdit(week.Reminders)
	_ = s.SetDraft(week.Reminders, "call mom")
	cmd, _ := s.Save(week.Reminders)
	drain(s, cmd)

	if s.Record() != nil {
		t.Fatalf("expected placeholder to be rolled back to nothing, got %+v", s.Record())
	}
	all := rec.All()
	if len(all) != 1 || all[0].Text != "Failed to save reminders" {
		t.Fatalf("unexpected notifications %+v", all)
	}
}

func TestSaveKeepsOtherField(t *testing.T) {
	s, api, _ := newSession(t)
	if _, err := api.Service.UpdateReminders(context.Background(), 5, "dentist"); err != nil {
		t.Fatal(err)
	}
	openLoaded(t, s, 4)

	_ = s.BeginEdit(week.Journal)
	_ = s.SetDraft(week.Journal, "quiet week")
	cmd, _ := s.Save(week.Journal)
	if got := cachedText(s, 5, week.Reminders); got != "dentist" {
		t.Fatalf("optimistic write dropped reminders: %q", got)
	}
	drain(s, cmd)
	if got := cachedText(s, 5, week.Reminders); got != "dentist" {
		t.Fatalf("confirmed write dropped reminders: %q", got)
	}
}

func TestStaleFetchDiscarded(t *testing.T) {
	s, api, _ := newSession(t)
	if _, err := api.Service.UpsertJournalEntry(context.Background(), 1, "first"); err != nil {
		t.Fatal(err)
	}

	first, _ := s.Open(0)
	second, _ := s.Open(1)

	staleMsg := first()
	drain(s, second)
	if s.WeekNumber() != 2 || s.Phase() != Loaded {
		t.Fatalf("expected week 2 loaded, got week %d %s", s.WeekNumber(), s.Phase())
	}

	s.Update(staleMsg)
	if s.WeekNumber() != 2 {
		t.Fatalf("stale fetch changed the selection to %d", s.WeekNumber())
	}
	if s.Record() != nil {
		t.Fatalf("week 2 shows data from week 1: %+v", s.Record())
	}
	if _, ok := s.Cache().Week(1); ok {
		t.Fatalf("stale fetch should not populate the cache")
	}
}

func TestStaleFetchBeforeNewResult(t *testing.T) {
	s, _, _ := newSession(t)
	first, _ := s.Open(0)
	_, _ = s.Open(1)

	s.Update(first())
	if s.Phase() != Selected {
		t.Fatalf("stale fetch must not mark week 2 loaded, got %s", s.Phase())
	}
}

func TestCloseDiscardsFetch(t *testing.T) {
	s, _, _ := newSession(t)
	cmd, _ := s.Open(0)
	s.Close()
	drain(s, cmd)
	if s.IsOpen() || s.Phase() != Closed {
		t.Fatalf("expected closed, got %s", s.Phase())
	}
}

func TestFetchFailureLoadsEmpty(t *testing.T) {
	s, api, _ := newSession(t)
	api.failFetch = true
	openLoaded(t, s, 0)
	if !s.FetchFailed() {
		t.Fatalf("expected fetch failure to be reported")
	}
	if s.Record() != nil {
		t.Fatalf("expected empty state")
	}
	if api.fetchCalls != 1 {
		t.Fatalf("expected no retry, got %d calls", api.fetchCalls)
	}
}

func TestFetchFailureDropsCachedWeek(t *testing.T) {
	s, api, _ := newSession(t)
	openLoaded(t, s, 5)
	_ = s.BeginEdit(week.Journal)
	_ = s.SetDraft(week.Journal, "old text")
	save, _ := s.Save(week.Journal)
	drain(s, save)
	if got := cachedText(s, 6, week.Journal); got != "old text" {
		t.Fatalf("expected cached text, got %q", got)
	}
	s.Close()

	api.failFetch = true
	openLoaded(t, s, 5)
	if !s.FetchFailed() {
		t.Fatalf("expected fetch failure to be reported")
	}
	if r := s.Record(); r != nil {
		t.Fatalf("expected no cached data after failed fetch, got %+v", r)
	}
	if v, _ := s.View(); v.Record != nil {
		t.Fatalf("view should carry no record, got %+v", v.Record)
	}
	if err := s.BeginEdit(week.Journal); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if d := s.Draft(week.Journal); d != "" {
		t.Fatalf("draft seeded from stale data: %q", d)
	}
}

func TestFetchFailureKeepsPendingSave(t *testing.T) {
	s, api, rec := newSession(t)
	openLoaded(t, s, 0)
	_ = s.BeginEdit(week.Reminders)
	_ = s.SetDraft(week.Reminders, "call mum")
	save, _ := s.Save(week.Reminders)

	api.failFetch = true
	openLoaded(t, s, 0)
	if !s.FetchFailed() {
		t.Fatalf("expected fetch failure to be reported")
	}
	if got := s.Record().Get(week.Reminders); got != "call mum" {
		t.Fatalf("pending save should stay visible, got %q", got)
	}

	api.failFetch = false
	drain(s, save)
	if got := cachedText(s, 1, week.Reminders); got != "call mum" {
		t.Fatalf("expected committed reminders, got %q", got)
	}
	if all := rec.All(); len(all) != 1 || all[0].Kind != Success {
		t.Fatalf("unexpected notifications %+v", all)
	}
}

func TestEditGuards(t *testing.T) {
	s, _, _ := newSession(t)
	if err := s.BeginEdit(week.Journal); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	openLoaded(t, s, 0)
	if _, err := s.Save(week.Journal); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
	if err := s.SetDraft(week.Reminders, "x"); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
	_ = s.BeginEdit(week.Journal)
	_ = s.SetDraft(week.Journal, "never sent")
	if err := s.CancelEdit(week.Journal); err != nil {
		t.Fatal(err)
	}
	if s.Mode(week.Journal) != Viewing || s.Record() != nil {
		t.Fatalf("cancel should leave nothing behind")
	}
}

func TestQueuedSaveSendsLatestDraft(t *testing.T) {
	s, api, rec := newSession(t)
	openLoaded(t, s, 20)

	_ = s.BeginEdit(week.Journal)
	_ = s.SetDraft(week.Journal, "a")
	first, _ := s.Save(week.Journal)

	if err := s.BeginEdit(week.Journal); err != nil {
		t.Fatalf("re-edit while saving: %v", err)
	}
	if s.Draft(week.Journal) != "a" {
		t.Fatalf("expected draft from optimistic value, got %q", s.Draft(week.Journal))
	}
	_ = s.SetDraft(week.Journal, "b")
	queued, err := s.Save(week.Journal)
	if err != nil {
		t.Fatal(err)
	}
	if queued != nil {
		t.Fatalf("second save should wait for the first")
	}

	next := s.Update(first())
	if got := cachedText(s, 21, week.Journal); got != "b" {
		t.Fatalf("expected queued draft applied once the first save resolved, got %q", got)
	}
	drain(s, next)

	r, _ := api.Service.GetWeek(context.Background(), 21)
	if r.Get(week.Journal) != "b" {
		t.Fatalf("expected last draft stored, got %q", r.Get(week.Journal))
	}
	if got := cachedText(s, 21, week.Journal); got != "b" {
		t.Fatalf("expected cache to settle on b, got %q", got)
	}
	if n := rec.Count(Success); n != 2 {
		t.Fatalf("expected two success notifications, got %d", n)
	}
	if s.Mode(week.Journal) != Viewing {
		t.Fatalf("expected viewing, got %s", s.Mode(week.Journal))
	}
}

func TestSaveResolvesAfterSwitchingWeeks(t *testing.T) {
	s, api, rec := newSession(t)
	openLoaded(t, s, 0)
	_ = s.BeginEdit(week.Journal)
	_ = s.SetDraft(week.Journal, "born")
	save, _ := s.Save(week.Journal)
	api.setFailSaves(true)

	openLoaded(t, s, 1)
	if s.Mode(week.Journal) != Viewing {
		t.Fatalf("week 2 should not inherit week 1 save state")
	}

	drain(s, save)

	if got := cachedText(s, 1, week.Journal); got != "" {
		t.Fatalf("expected week 1 rolled back, got %q", got)
	}
	if s.WeekNumber() != 2 {
		t.Fatalf("selection moved to %d", s.WeekNumber())
	}
	all := rec.All()
	if len(all) != 1 || all[0].WeekNumber != 1 || all[0].Kind != Error {
		t.Fatalf("unexpected notifications %+v", all)
	}
}

func TestReopenShowsPendingSave(t *testing.T) {
	s, _, _ := newSession(t)
	openLoaded(t, s, 0)
	_ = s.BeginEdit(week.Reminders)
	_ = s.SetDraft(week.Reminders, "x")
	save, _ := s.Save(week.Reminders)

	openLoaded(t, s, 1)
	openLoaded(t, s, 0)
	if s.Mode(week.Reminders) != Saving {
		t.Fatalf("expected saving while request in flight, got %s", s.Mode(week.Reminders))
	}
	drain(s, save)
	if s.Mode(week.Reminders) != Viewing {
		t.Fatalf("expected viewing, got %s", s.Mode(week.Reminders))
	}
}
