package cache

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/lifedots/pkg/week"
)

// WeekChangedMsg is emitted when the cached record of a week changes.
type WeekChangedMsg struct {
	WeekNumber int
}

// WeeksInvalidatedMsg is emitted when the all-weeks listing goes stale.
type WeeksInvalidatedMsg struct{}

// Weeks caches single week records and the all-weeks listing, and emits
// Bubble Tea messages on mutation so views can redraw.
type Weeks struct {
	records *Optimistic[int, *week.Record]

	mu       sync.RWMutex
	all      []week.Summary
	allValid bool

	eventCh chan tea.Msg
}

// NewWeeks creates an empty week cache.
func NewWeeks() *Weeks {
	return &Weeks{
		records: NewOptimistic[int, *week.Record]((*week.Record).Clone),
		eventCh: make(chan tea.Msg, 64),
	}
}

// Events exposes the cache event channel for Bubble Tea subscriptions.
func (w *Weeks) Events() <-chan tea.Msg {
	return w.eventCh
}

func (w *Weeks) emit(msg tea.Msg) {
	select {
	case w.eventCh <- msg:
	default:
	}
}

// Week returns the cached record. A nil record with ok true means the store
// confirmed the week was never written.
func (w *Weeks) Week(number int) (*week.Record, bool) {
	return w.records.Get(number)
}

// SetWeek stores the store's answer for a week. r may be nil.
func (w *Weeks) SetWeek(number int, r *week.Record) {
	w.records.Set(number, r)
	w.emit(WeekChangedMsg{WeekNumber: number})
}

// Forget drops a week so the next read goes to the store.
func (w *Weeks) Forget(number int) {
	w.records.Delete(number)
	w.emit(WeekChangedMsg{WeekNumber: number})
}

// ApplyField optimistically writes text into field of a week, keeping the
// other field and falling back to a placeholder record.
func (w *Weeks) ApplyField(number int, field week.Field, text string, now time.Time) *WeekMutation {
	m := w.records.Apply(number, func(current *week.Record, _ bool) *week.Record {
		return week.Merge(current, number, field, text, now)
	})
	w.emit(WeekChangedMsg{WeekNumber: number})
	return &WeekMutation{weeks: w, m: m}
}

// WeekMutation resolves an ApplyField write.
type WeekMutation struct {
	weeks *Weeks
	m     *Mutation[int, *week.Record]
}

// Snapshot returns the record captured before the optimistic write.
func (wm *WeekMutation) Snapshot() *week.Record {
	r, _ := wm.m.Snapshot()
	return r
}

// Commit stores the record confirmed by the store.
func (wm *WeekMutation) Commit(r *week.Record) bool {
	ok := wm.m.Commit(r)
	if ok {
		wm.weeks.emit(WeekChangedMsg{WeekNumber: wm.m.Key()})
	}
	return ok
}

// Revert restores the snapshot taken before the optimistic write.
func (wm *WeekMutation) Revert() bool {
	ok := wm.m.Revert()
	if ok {
		wm.weeks.emit(WeekChangedMsg{WeekNumber: wm.m.Key()})
	}
	return ok
}

// All returns the cached listing and whether it is still valid.
func (w *Weeks) All() ([]week.Summary, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]week.Summary, len(w.all))
	copy(out, w.all)
	return out, w.allValid
}

// SetAll stores the store's listing.
func (w *Weeks) SetAll(all []week.Summary) {
	w.mu.Lock()
	w.all = append([]week.Summary(nil), all...)
	w.allValid = true
	w.mu.Unlock()
	w.emit(WeeksInvalidatedMsg{})
}

// InvalidateAll marks the listing stale without dropping it.
func (w *Weeks) InvalidateAll() {
	w.mu.Lock()
	w.allValid = false
	w.mu.Unlock()
	w.emit(WeeksInvalidatedMsg{})
}

// Written returns the week numbers that carry any text, from the listing.
func (w *Weeks) Written() map[int]bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[int]bool, len(w.all))
	for _, s := range w.all {
		if (s.JournalText != nil && *s.JournalText != "") || (s.Reminders != nil && *s.Reminders != "") {
			out[s.WeekNumber] = true
		}
	}
	return out
}
