package session

import (
	"sync"

	"tableflip.dev/lifedots/pkg/week"
)

// Kind classifies a notification.
type Kind int

const (
	// Success reports a confirmed save.
	Success Kind = iota
	// Error reports a failed save.
	Error
)

// Notification is a user visible message about a save.
type Notification struct {
	Kind       Kind
	WeekNumber int
	Field      week.Field
	Text       string
	Err        error
}

// Notifier receives notifications.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(Notification) {}

// Recorder keeps every notification in order.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}
