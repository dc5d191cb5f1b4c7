// Package store persists week records and user profiles.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/config"
	"tableflip.dev/lifedots/pkg/week"
)

// Persistence defines the persistence contract for week records. Every
// operation is keyed by an explicit user id; scoping to the caller happens
// one layer up.
type Persistence interface {
	// GetWeek returns nil, nil when the week was never written.
	GetWeek(ctx context.Context, userID string, number int) (*week.Record, error)
	// SaveWeek creates or replaces the record for (UserID, WeekNumber). The
	// id and creation time of an existing record are kept.
	SaveWeek(ctx context.Context, r *week.Record) (*week.Record, error)
	// ListWeeks returns every record of the user ordered by week number.
	ListWeeks(ctx context.Context, userID string) ([]*week.Record, error)
	// GetUser returns nil, nil for unknown users.
	GetUser(ctx context.Context, userID string) (*week.User, error)
	SaveUser(ctx context.Context, u *week.User) (*week.User, error)
	Watch(ctx context.Context) (<-chan Event, error)
	Close() error
}

// Config selects and locates the storage engine.
type Config interface {
	BasePath() string
	StoreDriver() string
}

// Option tunes an engine opened by Load.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger routes engine diagnostics, such as unreadable records, to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// Load opens the engine named by cfg. A nil cfg reads the configuration
// from disk and the environment.
func Load(cfg Config, opts ...Option) (Persistence, error) {
	if cfg == nil {
		c, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	switch driver := cfg.StoreDriver(); driver {
	case "", config.DriverDiskv:
		return OpenDiskv(cfg.BasePath(), opts...)
	case config.DriverSQLite:
		return OpenSQLite(cfg.BasePath(), opts...)
	case config.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventWeekChanged indicates a single week record of a user changed.
	EventWeekChanged EventType = iota

	// EventWeeksInvalidated signals that any record may have changed and
	// callers should reload everything they show.
	EventWeeksInvalidated

	// EventUserChanged indicates a user profile changed.
	EventUserChanged
)

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type       EventType
	UserID     string
	WeekNumber int
}
