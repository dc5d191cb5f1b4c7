package teaui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/cache"
	"tableflip.dev/lifedots/pkg/grid"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/session"
	"tableflip.dev/lifedots/pkg/store"
	"tableflip.dev/lifedots/pkg/tui/components/bottombar"
	"tableflip.dev/lifedots/pkg/tui/components/help"
	"tableflip.dev/lifedots/pkg/tui/components/lifegrid"
	"tableflip.dev/lifedots/pkg/tui/components/weekpane"
	"tableflip.dev/lifedots/pkg/tui/theme"
	"tableflip.dev/lifedots/pkg/tui/views/onboarding"
	"tableflip.dev/lifedots/pkg/week"
)

const (
	headerHeight = 2
	minPaneWidth = 36
	dateLayout   = "Jan 2, 2006"
)

// Watcher streams storage change events. *app.Service satisfies it; remote
// clients do not and fall back to periodic refresh.
type Watcher interface {
	Watch(ctx context.Context) (<-chan store.Event, error)
}

// Options configures the UI.
type Options struct {
	API       app.API
	Watcher   Watcher
	Refresh   time.Duration
	Location  *time.Location
	WeekStart time.Weekday
	Clock     lifecal.Clock
	Log       *zap.Logger
	// Theme defaults to theme.Default.
	Theme *theme.Theme
}

// Model is the root Bubble Tea model: the grid, the detail pane of the
// selected week and the onboarding prompt.
type Model struct {
	api       app.API
	watcher   Watcher
	refresh   time.Duration
	loc       *time.Location
	weekStart time.Weekday
	clock     lifecal.Clock
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	theme      theme.Theme
	cache      *cache.Weeks
	session    *session.Session
	gridView   *lifegrid.Model
	pane       *weekpane.Model
	bottom     bottombar.Model
	onboarding *onboarding.Model
	help       *help.Model
	input      textinput.Model

	user  *week.User
	cal   lifecal.Calendar
	ready bool

	termWidth  int
	termHeight int

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc
}

type userLoadedMsg struct {
	cal  lifecal.Calendar
	user *week.User
	err  error
}

type birthdateSavedMsg struct {
	user *week.User
	err  error
}

type refreshTickMsg struct{}

// New creates the root model.
func New(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	th := theme.Default()
	if opts.Theme != nil {
		th = *opts.Theme
	}

	ti := textinput.New()
	ti.Placeholder = "1990-01-31"
	ti.CharLimit = 10
	ti.Prompt = ""
	ti.VirtualCursor = true
	ti.Styles.Cursor.Color = lipgloss.Color("212")
	ti.Styles.Cursor.Shape = tea.CursorBlock
	ti.Styles.Cursor.Blink = true

	m := &Model{
		api:        opts.API,
		watcher:    opts.Watcher,
		refresh:    opts.Refresh,
		loc:        opts.Location,
		weekStart:  opts.WeekStart,
		clock:      opts.Clock,
		log:        opts.Log,
		ctx:        ctx,
		cancel:     cancel,
		theme:      th,
		cache:      cache.NewWeeks(),
		gridView:   lifegrid.New(th.Grid),
		bottom:     bottombar.New(th.Footer),
		onboarding: onboarding.New(th),
		help:       help.New(th.Panel, 0, 0),
		input:      ti,
	}
	if m.clock == nil {
		m.clock = lifecal.RealClock{}
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	m.session = session.New(session.Options{
		API:      opts.API,
		Cache:    m.cache,
		Clock:    m.clock,
		Notifier: session.NotifierFunc(m.notify),
		Log:      m.log.Named("session"),
		Context:  ctx,
	})
	m.pane = weekpane.New(th, m.session)
	return m
}

// Init loads the profile and starts background refresh.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadUser(),
		startWatchCmd(m.ctx, m.watcher),
		m.waitForCache(),
		m.scheduleRefresh(),
	)
}

// Close stops background work started by the model.
func (m *Model) Close() {
	m.stopWatch()
	m.cancel()
}

func (m *Model) notify(n session.Notification) {
	tone := bottombar.ToneSuccess
	if n.Kind == session.Error {
		tone = bottombar.ToneError
	}
	m.bottom.SetStatus(fmt.Sprintf("%s (week %d)", n.Text, n.WeekNumber), tone)
}

func (m *Model) loadUser() tea.Cmd {
	api, ctx, loc, ws := m.api, m.ctx, m.loc, m.weekStart
	return func() tea.Msg {
		cal, u, err := app.Calendar(ctx, api, loc, ws)
		return userLoadedMsg{cal: cal, user: u, err: err}
	}
}

func (m *Model) saveBirthdate(value string) tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		u, err := api.UpdateBirthdate(ctx, value)
		return birthdateSavedMsg{user: u, err: err}
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func (m *Model) waitForCache() tea.Cmd {
	ch := m.cache.Events()
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

// setCalendar rebuilds the grid for cal at the current time.
func (m *Model) setCalendar(cal lifecal.Calendar) {
	m.cal = cal
	m.ready = true
	m.session.SetCalendar(cal)
	m.gridView.SetCells(grid.Build(cal, m.clock.Now()))
}

// Update handles messages and keybindings.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.applySizes()
	case userLoadedMsg:
		m.handleUserLoaded(msg, &cmds)
	case birthdateSavedMsg:
		m.handleBirthdateSaved(msg, &cmds)
	case session.FetchedMsg, session.SavedMsg, session.RefreshedMsg, session.AllWeeksMsg:
		cmds = append(cmds, m.session.Update(msg))
		m.syncMode()
	case cache.WeekChangedMsg:
		m.markWritten(msg.WeekNumber)
		cmds = append(cmds, m.waitForCache())
	case cache.WeeksInvalidatedMsg:
		m.gridView.SetWritten(m.cache.Written())
		cmds = append(cmds, m.waitForCache())
	case refreshTickMsg:
		if m.ready {
			m.gridView.SetCells(grid.Build(m.cal, m.clock.Now()))
			cmds = append(cmds, m.session.RefreshAll(), m.session.Reload())
		}
		cmds = append(cmds, m.scheduleRefresh())
	case watchStartedMsg:
		if msg.err != nil {
			m.log.Warn("watch unavailable", zap.Error(msg.err))
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		cmds = append(cmds, m.waitForWatch())
	case watchEventMsg:
		m.handleWatchEvent(msg.event, &cmds)
		cmds = append(cmds, m.waitForWatch())
	case watchStoppedMsg:
		m.stopWatch()
	case tea.MouseMotionMsg:
		m.handleMouse(msg.Mouse(), false, &cmds)
	case tea.MouseClickMsg:
		m.handleMouse(msg.Mouse(), true, &cmds)
	case tea.KeyPressMsg:
		if m.handleKeyPress(msg, &cmds) {
			return m, tea.Batch(append(cmds, tea.Quit)...)
		}
	default:
		m.forwardToInputs(msg, &cmds)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleUserLoaded(msg userLoadedMsg, cmds *[]tea.Cmd) {
	m.user = msg.user
	switch {
	case errors.Is(msg.err, week.ErrNoBirthDate):
		m.startOnboarding(cmds)
	case msg.err != nil:
		m.log.Error("load profile", zap.Error(msg.err))
		m.bottom.SetStatus("Could not load profile: "+msg.err.Error(), bottombar.ToneError)
	default:
		m.setCalendar(msg.cal)
		*cmds = append(*cmds, m.session.RefreshAll())
		m.syncMode()
	}
}

func (m *Model) startOnboarding(cmds *[]tea.Cmd) {
	m.onboarding.Active = true
	m.onboarding.Err = ""
	m.input.SetValue("")
	m.bottom.SetMode(bottombar.ModeOnboarding)
	if cmd := m.input.Focus(); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
	*cmds = append(*cmds, textinput.Blink)
}

func (m *Model) handleBirthdateSaved(msg birthdateSavedMsg, cmds *[]tea.Cmd) {
	m.onboarding.Submitting = false
	if msg.err != nil {
		var verr *week.ValidationError
		if errors.As(msg.err, &verr) {
			m.onboarding.Err = verr.Message
		} else {
			m.onboarding.Err = "Could not save birth date: " + msg.err.Error()
		}
		return
	}
	m.onboarding.Active = false
	m.input.Blur()
	m.user = msg.user
	cal, err := msg.user.Calendar(m.loc, m.weekStart)
	if err != nil {
		m.onboarding.Active = true
		m.onboarding.Err = err.Error()
		return
	}
	m.setCalendar(cal)
	m.bottom.SetStatus("Birth date saved", bottombar.ToneSuccess)
	m.syncMode()
	*cmds = append(*cmds, m.session.RefreshAll())
}

// markWritten updates the written marker of one week from the cache,
// falling back to the listing when the record is not cached.
func (m *Model) markWritten(number int) {
	r, ok := m.cache.Week(number)
	if !ok {
		m.gridView.MarkWritten(number, m.cache.Written()[number])
		return
	}
	m.gridView.MarkWritten(number, r.Get(week.Journal) != "" || r.Get(week.Reminders) != "")
}

func (m *Model) handleWatchEvent(ev store.Event, cmds *[]tea.Cmd) {
	if m.user != nil && ev.UserID != "" && ev.UserID != m.user.ID {
		return
	}
	switch ev.Type {
	case store.EventUserChanged:
		*cmds = append(*cmds, m.loadUser())
	case store.EventWeekChanged:
		if ev.WeekNumber == m.session.WeekNumber() {
			*cmds = append(*cmds, m.session.Reload())
		}
		*cmds = append(*cmds, m.session.RefreshAll())
	default:
		*cmds = append(*cmds, m.session.Reload(), m.session.RefreshAll())
	}
}

func (m *Model) handleMouse(mouse tea.Mouse, click bool, cmds *[]tea.Cmd) {
	if !m.ready || m.onboarding.Active || m.help.Active || !m.gridVisible() {
		return
	}
	index, ok := m.gridView.IndexAt(mouse.X, mouse.Y-headerHeight)
	if !ok {
		m.gridView.Hover(grid.NoHover)
		return
	}
	m.gridView.Hover(index)
	if click && mouse.Button == tea.MouseLeft && m.pane.Editing() == "" {
		m.gridView.SetCursor(index)
		m.open(index, cmds)
	}
}

// handleKeyPress applies a key and reports whether the program should quit.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg, cmds *[]tea.Cmd) bool {
	key := msg.String()
	if key == "ctrl+c" {
		return true
	}
	switch {
	case m.onboarding.Active:
		m.handleOnboardingKey(msg, cmds)
		return false
	case !m.ready:
		return key == "q"
	case m.help.Active:
		m.handleHelpKey(msg, cmds)
		return false
	case m.pane.Editing() != "":
		m.handleEditingKey(msg, cmds)
		return false
	case m.session.IsOpen():
		return m.handleDetailKey(key, cmds)
	default:
		return m.handleGridKey(key, cmds)
	}
}

func (m *Model) handleOnboardingKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		*cmds = append(*cmds, cmd)
		return
	}
	if m.onboarding.Submitting {
		return
	}
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		m.onboarding.Err = "Enter a date like 1990-01-31"
		return
	}
	m.onboarding.Err = ""
	m.onboarding.Submitting = true
	*cmds = append(*cmds, m.saveBirthdate(value))
}

func (m *Model) handleHelpKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q":
		m.help.Close()
		m.syncMode()
	default:
		_, cmd := m.help.Update(msg)
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) handleEditingKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd, err := m.pane.Save()
		if err != nil {
			m.bottom.SetStatus(err.Error(), bottombar.ToneError)
		}
		*cmds = append(*cmds, cmd)
	case "esc":
		m.pane.Cancel()
	default:
		_, cmd := m.pane.Update(msg)
		*cmds = append(*cmds, cmd)
	}
	m.syncMode()
}

func (m *Model) handleDetailKey(key string, cmds *[]tea.Cmd) bool {
	switch key {
	case "q":
		return true
	case "esc":
		m.session.Close()
		m.pane.Reset()
	case "j", "r":
		field := week.Journal
		if key == "r" {
			field = week.Reminders
		}
		cmd, err := m.pane.StartEditing(field)
		switch {
		case errors.Is(err, session.ErrNotLoaded):
			m.bottom.SetStatus("Still loading this week", bottombar.ToneInfo)
		case err != nil:
			m.bottom.SetStatus(err.Error(), bottombar.ToneError)
		}
		*cmds = append(*cmds, cmd)
	case "left", "h":
		m.step(-1, cmds)
	case "right", "l":
		m.step(1, cmds)
	case "?":
		m.help.Open()
	}
	m.syncMode()
	return false
}

func (m *Model) handleGridKey(key string, cmds *[]tea.Cmd) bool {
	switch key {
	case "q":
		return true
	case "up", "k":
		m.gridView.Move(-1, 0)
	case "down", "j":
		m.gridView.Move(1, 0)
	case "left", "h":
		m.gridView.Move(0, -1)
	case "right", "l":
		m.gridView.Move(0, 1)
	case "pgup":
		m.gridView.Move(-10, 0)
	case "pgdown":
		m.gridView.Move(10, 0)
	case "t":
		m.gridView.JumpToCurrent()
	case "?":
		m.help.Open()
		m.syncMode()
	case "x":
		m.bottom.ToggleHints()
	case "esc":
		m.gridView.Hover(grid.NoHover)
	case "enter", "space", " ":
		m.open(m.gridView.Cursor(), cmds)
	}
	return false
}

// step opens the week before or after the selected one.
func (m *Model) step(delta int, cmds *[]tea.Cmd) {
	index := week.IndexFromNumber(m.session.WeekNumber()) + delta
	if !lifecal.ValidIndex(index) {
		return
	}
	m.gridView.SetCursor(index)
	m.open(index, cmds)
}

func (m *Model) open(index int, cmds *[]tea.Cmd) {
	m.pane.Reset()
	cmd, err := m.session.Open(index)
	if err != nil {
		m.bottom.SetStatus(err.Error(), bottombar.ToneError)
		return
	}
	m.bottom.ClearStatus()
	m.syncMode()
	m.applySizes()
	*cmds = append(*cmds, cmd)
}

func (m *Model) forwardToInputs(msg tea.Msg, cmds *[]tea.Cmd) {
	switch {
	case m.onboarding.Active:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		*cmds = append(*cmds, cmd)
	case m.help.Active:
		_, cmd := m.help.Update(msg)
		*cmds = append(*cmds, cmd)
	case m.pane.Editing() != "":
		_, cmd := m.pane.Update(msg)
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) syncMode() {
	switch {
	case m.onboarding.Active:
		m.bottom.SetMode(bottombar.ModeOnboarding)
	case m.help.Active:
		m.bottom.SetMode(bottombar.ModeHelp)
	case m.pane.Editing() != "":
		m.bottom.SetMode(bottombar.ModeEditing)
	case m.session.IsOpen():
		m.bottom.SetMode(bottombar.ModeDetail)
	default:
		m.bottom.SetMode(bottombar.ModeGrid)
	}
}

// gridVisible is false when the detail pane needs the whole width.
func (m *Model) gridVisible() bool {
	if !m.session.IsOpen() || m.termWidth == 0 {
		return true
	}
	return m.termWidth >= m.gridView.Width()+1+minPaneWidth
}

func (m *Model) bodyHeight() int {
	h := m.termHeight - headerHeight - m.bottom.Height()
	return max(h, 1)
}

// applySizes recalculates component sizes based on current terminal size.
func (m *Model) applySizes() {
	if m.termWidth == 0 || m.termHeight == 0 {
		return
	}
	body := m.bodyHeight()
	m.gridView.SetSize(m.termWidth, body)
	m.onboarding.SetSize(m.termWidth, m.termHeight)
	m.help.SetSize(min(m.termWidth-4, 84), body)
	paneWidth := m.termWidth
	if m.gridVisible() {
		paneWidth = m.termWidth - m.gridView.Width() - 1
	}
	m.pane.SetSize(paneWidth, body)
	m.input.SetWidth(min(m.termWidth-12, 24))
}

// View renders the current screen.
func (m *Model) View() string {
	if m.onboarding.Active {
		m.onboarding.SetInputView(m.input.View())
		return m.onboarding.View()
	}
	if !m.ready {
		return strings.Join([]string{"Loading your weeks…", m.bottom.View()}, "\n")
	}

	var body string
	switch {
	case m.help.Active:
		body = lipgloss.Place(m.termWidth, m.bodyHeight(), lipgloss.Center, lipgloss.Top, m.help.View())
	case !m.session.IsOpen():
		body = m.gridView.View()
	case m.gridVisible():
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.gridView.View(), " ", m.pane.View())
	default:
		body = m.pane.View()
	}

	return strings.Join([]string{m.headerLine(), m.hoverLine(), body, m.bottom.View()}, "\n")
}

func (m *Model) headerLine() string {
	now := m.clock.Now()
	s := grid.Summarize(m.cal, m.gridView.Cells(), now)
	parts := []string{
		m.theme.Panel.Title.Render("lifedots"),
		fmt.Sprintf("weeks lived %d", s.WeeksLived),
		fmt.Sprintf("remaining %d", s.WeeksRemaining),
		fmt.Sprintf("age %d", m.cal.AgeAt(now)),
	}
	return strings.Join(parts, " · ")
}

// hoverLine describes the week under the pointer or cursor.
func (m *Model) hoverLine() string {
	index := m.gridView.Hovered()
	if index == grid.NoHover {
		index = m.gridView.Cursor()
	}
	d, err := m.cal.Details(index)
	if err != nil {
		return ""
	}
	return m.theme.Panel.Muted.Render(fmt.Sprintf("Week %d · year %d, week %d · %s to %s",
		d.WeekNumber, d.Year, d.WeekInYear, d.Start.Format(dateLayout), d.End.Format(dateLayout)))
}

// Run launches the interactive TUI program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
