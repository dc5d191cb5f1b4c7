// Package session drives the detail view opened when a week is selected:
// loading the stored record, editing journal and reminders, and saving them
// optimistically with rollback on failure.
package session

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/cache"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/week"
)

// Phase is the lifecycle state of the session.
type Phase int

const (
	// Closed means no week is selected.
	Closed Phase = iota
	// Selected means a week was opened and its record is being fetched.
	Selected
	// Loaded means the fetch finished, with or without a record.
	Loaded
)

func (p Phase) String() string {
	switch p {
	case Selected:
		return "selected"
	case Loaded:
		return "loaded"
	default:
		return "closed"
	}
}

// Mode is the edit state of one field.
type Mode int

const (
	// Viewing shows the stored text.
	Viewing Mode = iota
	// Editing holds a local draft.
	Editing
	// Saving waits for the store to confirm the draft.
	Saving
)

func (m Mode) String() string {
	switch m {
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return "viewing"
	}
}

var (
	// ErrNotLoaded is returned when editing before the week finished loading.
	ErrNotLoaded = errors.New("session: week not loaded")
	// ErrNotEditing is returned when saving or cancelling a field that is not
	// being edited.
	ErrNotEditing = errors.New("session: field not in edit mode")
)

type fieldState struct {
	mode  Mode
	draft string
}

type saveKey struct {
	week  int
	field week.Field
}

type pendingSave struct {
	seq      uint64
	mutation *cache.WeekMutation
	// next holds the latest draft submitted while this save was in flight.
	next *string
}

// Session is the explicit view model of the week detail pane. It is not safe
// for concurrent use; drive it from a single event loop.
type Session struct {
	api      app.API
	cache    *cache.Weeks
	cal      lifecal.Calendar
	clock    lifecal.Clock
	notifier Notifier
	log      *zap.Logger
	ctx      context.Context

	phase    Phase
	view     app.WeekView
	gen      uint64
	fetchErr error
	fields   map[week.Field]*fieldState

	seq      uint64
	inflight map[saveKey]*pendingSave
}

// Options configures a Session.
type Options struct {
	API      app.API
	Cache    *cache.Weeks
	Calendar lifecal.Calendar
	Clock    lifecal.Clock
	Notifier Notifier
	Log      *zap.Logger
	Context  context.Context
}

// New builds a closed session.
func New(opts Options) *Session {
	s := &Session{
		api:      opts.API,
		cache:    opts.Cache,
		cal:      opts.Calendar,
		clock:    opts.Clock,
		notifier: opts.Notifier,
		log:      opts.Log,
		ctx:      opts.Context,
		inflight: make(map[saveKey]*pendingSave),
	}
	if s.cache == nil {
		s.cache = cache.NewWeeks()
	}
	if s.clock == nil {
		s.clock = lifecal.RealClock{}
	}
	if s.notifier == nil {
		s.notifier = Discard{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	s.resetFields()
	return s
}

func (s *Session) resetFields() {
	s.fields = make(map[week.Field]*fieldState, len(week.Fields))
	for _, f := range week.Fields {
		s.fields[f] = &fieldState{}
	}
}

// SetCalendar replaces the calendar used to resolve indexes, for example
// after the birth date changed.
func (s *Session) SetCalendar(cal lifecal.Calendar) { s.cal = cal }

// Cache returns the week cache shared with the grid.
func (s *Session) Cache() *cache.Weeks { return s.cache }

// Phase returns the lifecycle state.
func (s *Session) Phase() Phase { return s.phase }

// IsOpen reports whether a week is selected.
func (s *Session) IsOpen() bool { return s.phase != Closed }

// View returns details of the selected week with its cached record.
func (s *Session) View() (app.WeekView, bool) {
	if s.phase == Closed {
		return app.WeekView{}, false
	}
	v := s.view
	v.Record = s.Record()
	return v, true
}

// WeekNumber returns the selected week number, or 0 when closed.
func (s *Session) WeekNumber() int {
	if s.phase == Closed {
		return 0
	}
	return s.view.WeekNumber
}

// Record returns the cached record of the selected week, which may be an
// optimistic value. Nil means nothing is stored.
func (s *Session) Record() *week.Record {
	if s.phase == Closed {
		return nil
	}
	r, _ := s.cache.Week(s.view.WeekNumber)
	return r
}

// FetchFailed reports whether loading the selected week failed.
func (s *Session) FetchFailed() bool { return s.fetchErr != nil }

// Mode returns the edit state of f.
func (s *Session) Mode(f week.Field) Mode {
	if st, ok := s.fields[f]; ok {
		return st.mode
	}
	return Viewing
}

// Draft returns the local draft of f.
func (s *Session) Draft(f week.Field) string {
	if st, ok := s.fields[f]; ok {
		return st.draft
	}
	return ""
}

// Open selects the week at index, discarding any earlier selection, and
// returns the command fetching its record.
func (s *Session) Open(index int) (tea.Cmd, error) {
	view, err := app.Describe(s.cal, index, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.gen++
	s.phase = Selected
	s.view = view
	s.fetchErr = nil
	s.resetFields()
	for _, f := range week.Fields {
		if _, busy := s.inflight[saveKey{view.WeekNumber, f}]; busy {
			s.fields[f].mode = Saving
		}
	}
	s.log.Debug("week opened", zap.Int("week", view.WeekNumber))
	return s.fetch(s.gen, view.WeekNumber), nil
}

// Close deselects the week. Results of in-flight fetches are discarded when
// they arrive; in-flight saves still resolve.
func (s *Session) Close() {
	s.gen++
	s.phase = Closed
	s.view = app.WeekView{}
	s.fetchErr = nil
	s.resetFields()
}

// BeginEdit copies the last known value of f into a draft.
func (s *Session) BeginEdit(f week.Field) error {
	if s.phase != Loaded {
		return ErrNotLoaded
	}
	st, ok := s.fields[f]
	if !ok {
		return week.NewValidationError("field", "unknown field "+f.String())
	}
	st.mode = Editing
	st.draft = s.Record().Get(f)
	return nil
}

// SetDraft replaces the draft of a field being edited.
func (s *Session) SetDraft(f week.Field, text string) error {
	st, ok := s.fields[f]
	if !ok || st.mode != Editing {
		return ErrNotEditing
	}
	st.draft = text
	return nil
}

// CancelEdit drops the draft and returns f to view mode.
func (s *Session) CancelEdit(f week.Field) error {
	st, ok := s.fields[f]
	if !ok || st.mode != Editing {
		return ErrNotEditing
	}
	s.restoreMode(f)
	st.draft = ""
	return nil
}

// restoreMode puts f back to Saving when a save of it is still in flight.
func (s *Session) restoreMode(f week.Field) {
	if _, busy := s.inflight[saveKey{s.view.WeekNumber, f}]; busy {
		s.fields[f].mode = Saving
		return
	}
	s.fields[f].mode = Viewing
}

// Save writes the draft of f into the cache immediately and returns the
// command sending it to the store. While an earlier save of the same week
// and field is in flight the draft is queued and sent once it resolves.
func (s *Session) Save(f week.Field) (tea.Cmd, error) {
	st, ok := s.fields[f]
	if !ok || st.mode != Editing {
		return nil, ErrNotEditing
	}
	text := st.draft
	st.mode = Saving
	key := saveKey{s.view.WeekNumber, f}

	if p, busy := s.inflight[key]; busy {
		p.next = &text
		s.log.Debug("save queued", zap.Int("week", key.week), zap.String("field", f.String()))
		return nil, nil
	}
	return s.dispatch(key, text), nil
}

func (s *Session) dispatch(key saveKey, text string) tea.Cmd {
	s.seq++
	p := &pendingSave{
		seq:      s.seq,
		mutation: s.cache.ApplyField(key.week, key.field, text, s.clock.Now()),
	}
	s.inflight[key] = p
	return s.upsert(key, p.seq, text)
}

// Update applies the result messages produced by the session's commands and
// returns follow-up commands. Unknown messages are ignored.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case FetchedMsg:
		return s.onFetched(msg)
	case SavedMsg:
		return s.onSaved(msg)
	case RefreshedMsg:
		if msg.Err != nil {
			s.log.Warn("week refresh failed", zap.Int("week", msg.WeekNumber), zap.Error(msg.Err))
			return nil
		}
		s.cache.SetWeek(msg.WeekNumber, msg.Record)
	case AllWeeksMsg:
		if msg.Err != nil {
			s.log.Warn("weeks refresh failed", zap.Error(msg.Err))
			s.cache.InvalidateAll()
			return nil
		}
		s.cache.SetAll(msg.Weeks)
	}
	return nil
}

func (s *Session) onFetched(msg FetchedMsg) tea.Cmd {
	if msg.gen != s.gen || s.phase == Closed {
		s.log.Debug("stale fetch discarded", zap.Int("week", msg.WeekNumber))
		return nil
	}
	s.phase = Loaded
	if msg.Err != nil {
		s.fetchErr = msg.Err
		s.log.Warn("week fetch failed", zap.Int("week", msg.WeekNumber), zap.Error(msg.Err))
		// Drop whatever was cached earlier; a pending save keeps its value.
		if !s.saving(msg.WeekNumber) {
			s.cache.Forget(msg.WeekNumber)
		}
		return nil
	}
	s.fetchErr = nil
	s.cache.SetWeek(msg.WeekNumber, msg.Record)
	return nil
}

func (s *Session) saving(number int) bool {
	for _, f := range week.Fields {
		if _, busy := s.inflight[saveKey{number, f}]; busy {
			return true
		}
	}
	return false
}

func (s *Session) onSaved(msg SavedMsg) tea.Cmd {
	key := saveKey{msg.WeekNumber, msg.Field}
	p, ok := s.inflight[key]
	if !ok || p.seq != msg.seq {
		return nil
	}
	delete(s.inflight, key)

	if msg.Err != nil {
		p.mutation.Revert()
		s.log.Warn("save failed",
			zap.Int("week", msg.WeekNumber), zap.String("field", msg.Field.String()), zap.Error(msg.Err))
		s.notifier.Notify(Notification{
			Kind: Error, WeekNumber: msg.WeekNumber, Field: msg.Field, Text: failureText(msg.Field), Err: msg.Err,
		})
	} else {
		p.mutation.Commit(msg.Record)
		s.notifier.Notify(Notification{
			Kind: Success, WeekNumber: msg.WeekNumber, Field: msg.Field, Text: successText(msg.Field),
		})
	}

	cmds := []tea.Cmd{s.refreshWeek(msg.WeekNumber), s.refreshAll()}
	if p.next != nil {
		cmds = append(cmds, s.dispatch(key, *p.next))
	} else if s.phase != Closed && s.view.WeekNumber == msg.WeekNumber {
		if st := s.fields[msg.Field]; st.mode == Saving {
			st.mode = Viewing
			st.draft = ""
		}
	}
	return tea.Batch(cmds...)
}

// RefreshAll returns the command reloading the all-weeks listing.
func (s *Session) RefreshAll() tea.Cmd { return s.refreshAll() }

// Reload re-fetches the selected week without changing the selection.
func (s *Session) Reload() tea.Cmd {
	if s.phase == Closed {
		return nil
	}
	return s.refreshWeek(s.view.WeekNumber)
}

func successText(f week.Field) string {
	if f == week.Journal {
		return "Journal entry saved"
	}
	return "Reminders saved"
}

func failureText(f week.Field) string {
	if f == week.Journal {
		return "Failed to save journal entry"
	}
	return "Failed to save reminders"
}

// FetchedMsg carries the result of the fetch issued by Open.
type FetchedMsg struct {
	gen        uint64
	WeekNumber int
	Record     *week.Record
	Err        error
}

// SavedMsg carries the store's answer to one field save.
type SavedMsg struct {
	seq        uint64
	WeekNumber int
	Field      week.Field
	Record     *week.Record
	Err        error
}

// RefreshedMsg carries a background reload of one week.
type RefreshedMsg struct {
	WeekNumber int
	Record     *week.Record
	Err        error
}

// AllWeeksMsg carries a background reload of the all-weeks listing.
type AllWeeksMsg struct {
	Weeks []week.Summary
	Err   error
}

func (s *Session) fetch(gen uint64, number int) tea.Cmd {
	api, ctx := s.api, s.ctx
	return func() tea.Msg {
		r, err := api.GetWeek(ctx, number)
		return FetchedMsg{gen: gen, WeekNumber: number, Record: r, Err: err}
	}
}

func (s *Session) upsert(key saveKey, seq uint64, text string) tea.Cmd {
	api, ctx := s.api, s.ctx
	return func() tea.Msg {
		var (
			r   *week.Record
			err error
		)
		switch key.field {
		case week.Journal:
			r, err = api.UpsertJournalEntry(ctx, key.week, text)
		default:
			r, err = api.UpdateReminders(ctx, key.week, text)
		}
		return SavedMsg{seq: seq, WeekNumber: key.week, Field: key.field, Record: r, Err: err}
	}
}

func (s *Session) refreshWeek(number int) tea.Cmd {
	api, ctx := s.api, s.ctx
	return func() tea.Msg {
		r, err := api.GetWeek(ctx, number)
		return RefreshedMsg{WeekNumber: number, Record: r, Err: err}
	}
}

func (s *Session) refreshAll() tea.Cmd {
	api, ctx := s.api, s.ctx
	return func() tea.Msg {
		all, err := api.GetAllWeeks(ctx)
		return AllWeeksMsg{Weeks: all, Err: err}
	}
}

// Now exposes the session clock to views.
func (s *Session) Now() time.Time { return s.clock.Now() }
