package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/store"
	"tableflip.dev/lifedots/pkg/week"
)

var (
	// ErrUnauthenticated is returned when no caller identity is available.
	ErrUnauthenticated = errors.New("app: unauthenticated")
	// ErrNoPersistence is returned when the service was built without storage.
	ErrNoPersistence = errors.New("app: no persistence configured")
)

// API is the week store as seen by its callers. Every operation is scoped to
// the calling user, which never appears in the signatures.
type API interface {
	GetWeek(ctx context.Context, weekNumber int) (*week.Record, error)
	UpsertJournalEntry(ctx context.Context, weekNumber int, journalText string) (*week.Record, error)
	UpdateReminders(ctx context.Context, weekNumber int, reminders string) (*week.Record, error)
	UpsertWeekData(ctx context.Context, weekNumber int, journalText, reminders *string) (*week.Record, error)
	GetAllWeeks(ctx context.Context) ([]week.Summary, error)
	GetUser(ctx context.Context) (*week.User, error)
	UpdateBirthdate(ctx context.Context, birthdate string) (*week.User, error)
}

// Service provides the week store operations on top of a Persistence.
// The caller is taken from the context (see WithUser) and falls back to
// UserID; with neither every operation fails with ErrUnauthenticated.
type Service struct {
	Persistence store.Persistence
	UserID      string
	Clock       lifecal.Clock
	Log         *zap.Logger

	locks keyedMutex
}

var _ API = (*Service)(nil)

type userKey struct{}

// WithUser returns a context carrying the authenticated user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the user id stored by WithUser.
func UserFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}

func (s *Service) caller(ctx context.Context) (string, error) {
	if s.Persistence == nil {
		return "", ErrNoPersistence
	}
	if id, ok := UserFrom(ctx); ok {
		return id, nil
	}
	if s.UserID != "" {
		return s.UserID, nil
	}
	return "", ErrUnauthenticated
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// GetWeek returns the record for weekNumber or nil when it was never written.
func (s *Service) GetWeek(ctx context.Context, weekNumber int) (*week.Record, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := week.ValidateNumber(weekNumber); err != nil {
		return nil, err
	}
	r, err := s.Persistence.GetWeek(ctx, userID, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("app: get week %d: %w", weekNumber, err)
	}
	return r, nil
}

// UpsertJournalEntry creates the week record if needed and replaces only its
// journal text.
func (s *Service) UpsertJournalEntry(ctx context.Context, weekNumber int, journalText string) (*week.Record, error) {
	return s.upsertField(ctx, weekNumber, week.Journal, journalText)
}

// UpdateReminders creates the week record if needed and replaces only its
// reminders.
func (s *Service) UpdateReminders(ctx context.Context, weekNumber int, reminders string) (*week.Record, error) {
	return s.upsertField(ctx, weekNumber, week.Reminders, reminders)
}

// UpsertField dispatches to the single field upsert for f.
func (s *Service) UpsertField(ctx context.Context, weekNumber int, f week.Field, text string) (*week.Record, error) {
	return s.upsertField(ctx, weekNumber, f, text)
}

func (s *Service) upsertField(ctx context.Context, weekNumber int, f week.Field, text string) (*week.Record, error) {
	var journal, reminders *string
	switch f {
	case week.Journal:
		journal = &text
	case week.Reminders:
		reminders = &text
	default:
		return nil, week.NewValidationError("field", fmt.Sprintf("unknown field %q", f))
	}
	return s.save(ctx, weekNumber, journal, reminders, false)
}

// UpsertWeekData updates whichever fields are provided. A new record gets
// empty reminders when none are given.
func (s *Service) UpsertWeekData(ctx context.Context, weekNumber int, journalText, reminders *string) (*week.Record, error) {
	if journalText == nil && reminders == nil {
		return nil, week.NewValidationError("week", "nothing to update")
	}
	return s.save(ctx, weekNumber, journalText, reminders, true)
}

func (s *Service) save(ctx context.Context, weekNumber int, journal, reminders *string, defaultReminders bool) (*week.Record, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := week.ValidateNumber(weekNumber); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(fmt.Sprintf("%s/%d", userID, weekNumber))
	defer unlock()

	existing, err := s.Persistence.GetWeek(ctx, userID, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("app: load week %d: %w", weekNumber, err)
	}

	now := s.now()
	next := existing.Clone()
	if next == nil {
		next = &week.Record{UserID: userID, WeekNumber: weekNumber, CreatedAt: now}
		if defaultReminders && reminders == nil {
			empty := ""
			next.Reminders = &empty
		}
	}
	if journal != nil {
		next.Set(week.Journal, *journal)
	}
	if reminders != nil {
		next.Set(week.Reminders, *reminders)
	}
	next.UpdatedAt = now

	saved, err := s.Persistence.SaveWeek(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("app: save week %d: %w", weekNumber, err)
	}
	s.log().Debug("week saved",
		zap.String("user", userID),
		zap.Int("week", weekNumber),
		zap.Bool("journal", journal != nil),
		zap.Bool("reminders", reminders != nil),
		zap.Bool("created", existing == nil))
	return saved, nil
}

// GetAllWeeks lists every written week of the caller by ascending number.
func (s *Service) GetAllWeeks(ctx context.Context) ([]week.Summary, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.Persistence.ListWeeks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("app: list weeks: %w", err)
	}
	out := make([]week.Summary, 0, len(records))
	for _, r := range records {
		out = append(out, r.Summary())
	}
	return out, nil
}

// GetUser returns the caller's profile or nil when onboarding never ran.
func (s *Service) GetUser(ctx context.Context) (*week.User, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.Persistence.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("app: get user: %w", err)
	}
	return u, nil
}

// UpdateBirthdate validates a YYYY-MM-DD birth date and stores it on the
// caller's profile, creating the profile when absent.
func (s *Service) UpdateBirthdate(ctx context.Context, birthdate string) (*week.User, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if _, err := lifecal.ParseBirthDate(birthdate, now); err != nil {
		return nil, &week.ValidationError{Field: "birthdate", Message: err.Error()}
	}

	u, err := s.Persistence.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("app: get user: %w", err)
	}
	if u == nil {
		u = &week.User{ID: userID, CreatedAt: now}
	}
	u.BirthDate = birthdate
	u.UpdatedAt = now

	saved, err := s.Persistence.SaveUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("app: save user: %w", err)
	}
	s.log().Info("birth date updated", zap.String("user", userID))
	return saved, nil
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Watch(ctx)
}
