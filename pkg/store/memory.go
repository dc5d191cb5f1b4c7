package store

import (
	"context"
	"errors"
	"sync"

	"tableflip.dev/lifedots/pkg/week"
)

type memoryKey struct {
	user   string
	number int
}

// Memory is a process local Persistence used for demos and tests.
type Memory struct {
	mu      sync.Mutex
	counter int64
	weeks   map[memoryKey]*week.Record
	users   map[string]*week.User
	subs    []chan Event
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		weeks: make(map[memoryKey]*week.Record),
		users: make(map[string]*week.User),
	}
}

func (m *Memory) GetWeek(_ context.Context, userID string, number int) (*week.Record, error) {
	if userID == "" {
		return nil, errors.New("store: user id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weeks[memoryKey{userID, number}].Clone(), nil
}

func (m *Memory) SaveWeek(_ context.Context, r *week.Record) (*week.Record, error) {
	if r == nil || r.UserID == "" {
		return nil, errors.New("store: user id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey{r.UserID, r.WeekNumber}
	next := r.Clone()
	if existing, ok := m.weeks[key]; ok {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
	} else {
		m.counter++
		next.ID = m.counter
	}
	m.weeks[key] = next
	m.notify(Event{Type: EventWeekChanged, UserID: r.UserID, WeekNumber: r.WeekNumber})
	return next.Clone(), nil
}

func (m *Memory) ListWeeks(_ context.Context, userID string) ([]*week.Record, error) {
	if userID == "" {
		return nil, errors.New("store: user id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*week.Record, 0)
	for key, r := range m.weeks {
		if key.user == userID {
			all = append(all, r.Clone())
		}
	}
	sortRecords(all)
	return all, nil
}

func (m *Memory) GetUser(_ context.Context, userID string) (*week.User, error) {
	if userID == "" {
		return nil, errors.New("store: user id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID].Clone(), nil
}

func (m *Memory) SaveUser(_ context.Context, u *week.User) (*week.User, error) {
	if u == nil || u.ID == "" {
		return nil, errors.New("store: user id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := u.Clone()
	if existing, ok := m.users[u.ID]; ok && !existing.CreatedAt.IsZero() {
		next.CreatedAt = existing.CreatedAt
	}
	m.users[u.ID] = next
	m.notify(Event{Type: EventUserChanged, UserID: u.ID})
	return next.Clone(), nil
}

// Watch delivers an event for every save made through m.
func (m *Memory) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 64)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subs {
			if sub == ch {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (m *Memory) Close() error { return nil }

// notify is called with m.mu held.
func (m *Memory) notify(ev Event) {
	for _, sub := range m.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}
