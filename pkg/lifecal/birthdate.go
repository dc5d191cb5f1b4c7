package lifecal

import (
	"errors"
	"regexp"
	"time"
)

const (
	// DateLayout is the wire format of a birth date.
	DateLayout = "2006-01-02"

	// MinAge and MaxAge bound the accepted birth dates.
	MinAge = 13
	MaxAge = 120
)

var (
	// ErrDateFormat is returned when a birth date is not YYYY-MM-DD.
	ErrDateFormat = errors.New("Invalid date format. Use YYYY-MM-DD")
	// ErrBirthInFuture is returned for birth dates after today.
	ErrBirthInFuture = errors.New("birth date cannot be in the future")
	// ErrTooYoung is returned when the birth date is less than MinAge years ago.
	ErrTooYoung = errors.New("you must be at least 13 years old")
	// ErrTooOld is returned when the birth date is more than MaxAge years ago.
	ErrTooOld = errors.New("birth date must be within the last 120 years")

	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ParseDate parses s as YYYY-MM-DD in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrDateFormat
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	return t, nil
}

// ValidateBirthDate checks birth against the accepted age range at now.
func ValidateBirthDate(birth, now time.Time) error {
	today := dateOf(now, birth.Location())
	birth = dateOf(birth, birth.Location())
	switch {
	case birth.After(today):
		return ErrBirthInFuture
	case birth.After(today.AddDate(-MinAge, 0, 0)):
		return ErrTooYoung
	case birth.Before(today.AddDate(-MaxAge, 0, 0)):
		return ErrTooOld
	}
	return nil
}

// ParseBirthDate parses and validates a birth date in one step.
func ParseBirthDate(s string, now time.Time) (time.Time, error) {
	birth, err := ParseDate(s, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	if err := ValidateBirthDate(birth, now); err != nil {
		return time.Time{}, err
	}
	return birth, nil
}
