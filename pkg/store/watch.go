package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	return watchTree(ctx, p.basePath, p.log, p.eventForPath)
}

// eventForPath derives the logical change from a diskv path.
func (p *persistence) eventForPath(path string) (Event, bool) {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return Event{}, false
	}
	if strings.HasPrefix(filepath.Base(rel), ".") || strings.HasSuffix(rel, ".tmp") {
		return Event{}, false
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	switch {
	case len(parts) == 3 && parts[0] == weeksBucket:
		number, err := strconv.Atoi(parts[2])
		if err != nil {
			return Event{Type: EventWeeksInvalidated}, true
		}
		return Event{Type: EventWeekChanged, UserID: decodeUser(parts[1]), WeekNumber: number}, true
	case len(parts) == 2 && parts[0] == usersBucket:
		return Event{Type: EventUserChanged, UserID: decodeUser(parts[1])}, true
	default:
		return Event{Type: EventWeeksInvalidated}, true
	}
}

// watchTree watches base and every directory below it, translating file
// activity through classify.
func watchTree(ctx context.Context, base string, log *zap.Logger, classify func(string) (Event, bool)) (<-chan Event, error) {
	if base == "" {
		return nil, errors.New("store: persistence base path unknown")
	}

	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				log.Warn("watcher close", zap.Error(err))
			}
		})
	}

	dirs, err := collectDirs(base)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	var (
		sendMu sync.Mutex
		closed bool
	)

	go func() {
		defer func() {
			sendMu.Lock()
			closed = true
			close(events)
			sendMu.Unlock()
		}()
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func(ev Event) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if closed {
				return
			}
			select {
			case events <- ev:
			default:
				// Drop events if the consumer is not ready; the next
				// refresh picks up the change anyway.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(Event{Type: EventWeeksInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						// Watch new user directories so their first files are seen.
						for _, dir := range mustCollectDirs(evt.Name) {
							if _, found := watched[dir]; found {
								continue
							}
							if err := watcher.Add(dir); err == nil {
								watched[dir] = struct{}{}
							}
						}
						throttle.Enqueue(Event{Type: EventWeeksInvalidated}, send)
						continue
					}
				}

				if ev, ok := classify(evt.Name); ok {
					throttle.Enqueue(ev, send)
				}
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{filepath.Clean(base)}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, filepath.Clean(path))
		}
		return nil
	})
	return dirs, err
}

func mustCollectDirs(base string) []string {
	dirs, _ := collectDirs(base)
	return dirs
}

// eventThrottle coalesces rapid change notifications so the UI can redraw once
// per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Event]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Event]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending[ev] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[Event]struct{})
	t.timer = nil
	t.mu.Unlock()

	for ev := range pending {
		send(ev)
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
