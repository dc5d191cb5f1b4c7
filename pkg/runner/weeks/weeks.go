// Package weeks reads and writes individual week records from the command
// line.
package weeks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/printers"
	"tableflip.dev/lifedots/pkg/week"
)

// Target holds what every weeks runner needs.
type Target struct {
	API       app.API
	Location  *time.Location
	WeekStart time.Weekday
	Clock     lifecal.Clock
	Out       io.Writer
	JSON      bool
}

func (t *Target) check() error {
	if t.API == nil {
		return errors.New("weeks: no week store configured")
	}
	return nil
}

func (t *Target) now() time.Time {
	if t.Clock == nil {
		return time.Now()
	}
	return t.Clock.Now()
}

func (t *Target) out() io.Writer {
	if t.Out == nil {
		return os.Stdout
	}
	return t.Out
}

func (t *Target) printer() printers.PrettyPrint {
	return printers.PrettyPrint{Out: t.Out}
}

func (t *Target) encode(v any) error {
	enc := json.NewEncoder(t.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// view describes a week using the caller's calendar.
func (t *Target) view(ctx context.Context, number int) (app.WeekView, error) {
	cal, _, err := app.Calendar(ctx, t.API, t.Location, t.WeekStart)
	if err != nil {
		return app.WeekView{}, err
	}
	return app.Describe(cal, week.IndexFromNumber(number), t.now())
}

// Show prints one week.
type Show struct {
	Target
	Number int
}

// Do prints the week with its stored record.
func (s *Show) Do(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := week.ValidateNumber(s.Number); err != nil {
		return err
	}
	v, err := s.view(ctx, s.Number)
	if err != nil {
		return err
	}
	if v.Record, err = s.API.GetWeek(ctx, s.Number); err != nil {
		return err
	}
	if s.JSON {
		return s.encode(v)
	}
	pp := s.printer()
	pp.Week(v)
	return nil
}

// Write replaces one field of a week.
type Write struct {
	Target
	Number int
	Field  week.Field
	Text   string
}

// Do stores the text and prints the resulting record.
func (w *Write) Do(ctx context.Context) error {
	if err := w.check(); err != nil {
		return err
	}
	var (
		r   *week.Record
		err error
	)
	switch w.Field {
	case week.Journal:
		r, err = w.API.UpsertJournalEntry(ctx, w.Number, w.Text)
	case week.Reminders:
		r, err = w.API.UpdateReminders(ctx, w.Number, w.Text)
	default:
		return week.NewValidationError("field", fmt.Sprintf("unknown field %q", w.Field))
	}
	if err != nil {
		return err
	}
	if w.JSON {
		return w.encode(r)
	}
	_, _ = color.New(color.FgGreen).Fprintf(w.out(), "%s saved for week %d\n", w.Field.Label(), r.WeekNumber)
	return nil
}

// List prints every written week.
type List struct {
	Target
}

// Do prints the table of written weeks.
func (l *List) Do(ctx context.Context) error {
	if err := l.check(); err != nil {
		return err
	}
	all, err := l.API.GetAllWeeks(ctx)
	if err != nil {
		return err
	}
	if l.JSON {
		if all == nil {
			all = []week.Summary{}
		}
		return l.encode(all)
	}

	var cal *lifecal.Calendar
	if c, _, err := app.Calendar(ctx, l.API, l.Location, l.WeekStart); err == nil {
		cal = &c
	} else if !errors.Is(err, week.ErrNoBirthDate) {
		return err
	}
	pp := l.printer()
	pp.TitleWithCount("Written weeks", len(all))
	pp.Weeks(cal, all)
	return nil
}

// Profile prints the caller's profile, setting the birth date first when
// BirthDate is not empty.
type Profile struct {
	Target
	BirthDate string
}

// Do prints or updates the profile.
func (p *Profile) Do(ctx context.Context) error {
	if err := p.check(); err != nil {
		return err
	}
	var (
		u   *week.User
		err error
	)
	if p.BirthDate != "" {
		u, err = p.API.UpdateBirthdate(ctx, p.BirthDate)
	} else {
		u, err = p.API.GetUser(ctx)
	}
	if err != nil {
		return err
	}
	if p.JSON {
		return p.encode(u)
	}
	if !u.HasBirthDate() {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(p.out(),
			"No birth date yet, set one with: lifedots birthdate YYYY-MM-DD")
		return nil
	}
	cal, err := u.Calendar(p.Location, p.WeekStart)
	if err != nil {
		return err
	}
	now := p.now()
	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(p.out(), "User %s\n", u.ID)
	_, _ = fmt.Fprintf(p.out(), "Born %s, age %d\n", u.BirthDate, cal.AgeAt(now))
	_, _ = fmt.Fprintf(p.out(), "Week %d of %d, %d weeks remaining\n",
		week.NumberFromIndex(cal.CurrentIndex(now)), lifecal.TotalWeeks, cal.RemainingDots(now))
	return nil
}
