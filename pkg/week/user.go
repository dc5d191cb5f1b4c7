package week

import (
	"time"

	"tableflip.dev/lifedots/pkg/lifecal"
)

// User is the profile owning a set of week records. BirthDate is kept in
// its YYYY-MM-DD wire form so it never shifts between time zones.
type User struct {
	ID        string    `json:"id"`
	BirthDate string    `json:"birthDate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasBirthDate reports whether onboarding has completed.
func (u *User) HasBirthDate() bool {
	return u != nil && u.BirthDate != ""
}

// Birth returns the birth date at midnight in loc.
func (u *User) Birth(loc *time.Location) (time.Time, error) {
	if !u.HasBirthDate() {
		return time.Time{}, ErrNoBirthDate
	}
	return lifecal.ParseDate(u.BirthDate, loc)
}

// Calendar returns the life calendar for the user's birth date in loc.
func (u *User) Calendar(loc *time.Location, weekStart time.Weekday) (lifecal.Calendar, error) {
	birth, err := u.Birth(loc)
	if err != nil {
		return lifecal.Calendar{}, err
	}
	return lifecal.NewWithWeekStart(birth, weekStart), nil
}

// Clone returns a copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
