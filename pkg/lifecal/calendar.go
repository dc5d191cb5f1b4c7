// Package lifecal converts a birth date and a point in time into week
// indexes on a fixed ninety year grid.
package lifecal

import (
	"fmt"
	"time"
)

const (
	// YearsInLife is the assumed lifespan rendered by the grid.
	YearsInLife = 90
	// WeeksPerYear is the number of dots per grid row.
	WeeksPerYear = 52
	// TotalWeeks is the number of dots in the grid.
	TotalWeeks = YearsInLife * WeeksPerYear

	day = 24 * time.Hour
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// RealClock reads the wall clock.
type RealClock struct{}

// Now implements Clock.
func (RealClock) Now() time.Time { return time.Now() }

// Interval is the calendar week covered by one dot. Start and End are
// midnight of the first and last day of the week.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on any day of the interval.
func (iv Interval) Contains(t time.Time) bool {
	d := dateOf(t, iv.Start.Location())
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Details describes a selected week.
type Details struct {
	WeekNumber int       `json:"weekNumber"`
	Year       int       `json:"year"`
	WeekInYear int       `json:"weekInYear"`
	Start      time.Time `json:"startDate"`
	End        time.Time `json:"endDate"`
}

// Calendar maps week indexes to calendar weeks for one birth date.
type Calendar struct {
	birth     time.Time
	weekStart time.Weekday
}

// New returns a Calendar for birth with weeks beginning on Sunday.
func New(birth time.Time) Calendar {
	return NewWithWeekStart(birth, time.Sunday)
}

// NewWithWeekStart returns a Calendar whose weeks begin on weekStart.
func NewWithWeekStart(birth time.Time, weekStart time.Weekday) Calendar {
	return Calendar{
		birth:     dateOf(birth, birth.Location()),
		weekStart: weekStart,
	}
}

// Birth returns the birth date at midnight.
func (c Calendar) Birth() time.Time { return c.birth }

// WeekStart returns the first day of each calendar week.
func (c Calendar) WeekStart() time.Weekday { return c.weekStart }

// WeeksLived counts every week up to and including the current one, so the
// current week is always index WeeksLived-1.
func (c Calendar) WeeksLived(now time.Time) int {
	return c.CurrentIndex(now) + 1
}

// WeeksRemaining is negative once now passes the ninetieth birthday.
func (c Calendar) WeeksRemaining(now time.Time) int {
	return WeeksBetween(now, c.birth.AddDate(YearsInLife, 0, 0))
}

// RemainingDots clamps WeeksRemaining at zero for rendering.
func (c Calendar) RemainingDots(now time.Time) int {
	if r := c.WeeksRemaining(now); r > 0 {
		return r
	}
	return 0
}

// Interval returns the calendar week containing birth + index weeks.
func (c Calendar) Interval(index int) Interval {
	start := c.startOfWeek(c.birth.AddDate(0, 0, 7*index))
	return Interval{Start: start, End: start.AddDate(0, 0, 6)}
}

// IndexOf returns the index whose interval contains t. The result may fall
// outside [0, TotalWeeks).
func (c Calendar) IndexOf(t time.Time) int {
	days := daysBetween(c.startOfWeek(c.birth), c.startOfWeek(dateOf(t, c.birth.Location())))
	if days < 0 {
		return -((-days + 6) / 7)
	}
	return days / 7
}

// CurrentIndex is the index whose interval contains now.
func (c Calendar) CurrentIndex(now time.Time) int {
	return c.IndexOf(now)
}

// IsBirthdayWeek reports whether a birthday anniversary falls inside iv.
// Both the start and end years are checked so weeks spanning New Year are
// handled. A Feb 29 birthday is observed on Mar 1 in non-leap years.
func (c Calendar) IsBirthdayWeek(iv Interval) bool {
	for _, year := range []int{iv.Start.Year(), iv.End.Year()} {
		if iv.Contains(c.BirthdayIn(year)) {
			return true
		}
	}
	return false
}

// BirthdayIn returns the anniversary of the birth date in year.
func (c Calendar) BirthdayIn(year int) time.Time {
	// time.Date normalizes Feb 29 to Mar 1 when year is not a leap year.
	return time.Date(year, c.birth.Month(), c.birth.Day(), 0, 0, 0, 0, c.birth.Location())
}

// Details resolves index into the record shown when a dot is selected.
func (c Calendar) Details(index int) (Details, error) {
	if !ValidIndex(index) {
		return Details{}, fmt.Errorf("lifecal: week index %d out of range [0, %d)", index, TotalWeeks)
	}
	iv := c.Interval(index)
	return Details{
		WeekNumber: index + 1,
		Year:       index/WeeksPerYear + 1,
		WeekInYear: index%WeeksPerYear + 1,
		Start:      iv.Start,
		End:        iv.End,
	}, nil
}

// AgeAt returns completed years of life at t.
func (c Calendar) AgeAt(t time.Time) int {
	d := dateOf(t, c.birth.Location())
	years := d.Year() - c.birth.Year()
	if d.Before(c.BirthdayIn(d.Year())) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// DaysAt returns the number of calendar days from birth to t.
func (c Calendar) DaysAt(t time.Time) int {
	return daysBetween(c.birth, t)
}

// ValidIndex reports whether index is rendered on the grid.
func ValidIndex(index int) bool {
	return index >= 0 && index < TotalWeeks
}

// WeeksBetween returns whole weeks from a to b, truncated toward zero.
func WeeksBetween(a, b time.Time) int {
	return daysBetween(a, b) / 7
}

func (c Calendar) startOfWeek(t time.Time) time.Time {
	d := dateOf(t, c.birth.Location())
	offset := (int(d.Weekday()) - int(c.weekStart) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// daysBetween counts calendar days so DST shifts never round a day away.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / day)
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
