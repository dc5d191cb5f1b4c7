// Package export writes the caller's weeks to a file or stdout.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"tableflip.dev/lifedots/pkg/app"
	format "tableflip.dev/lifedots/pkg/export"
	"tableflip.dev/lifedots/pkg/lifecal"
)

// Export renders every written week in Format.
type Export struct {
	API       app.API
	Format    format.Format
	Location  *time.Location
	WeekStart time.Weekday
	Clock     lifecal.Clock

	Birthdays      bool
	RemindersAlarm bool

	// Path is the output file; empty or "-" writes to Out.
	Path string
	Out  io.Writer
}

// Do writes the export.
func (e *Export) Do(ctx context.Context) (err error) {
	if e.API == nil {
		return errors.New("export: no week store configured")
	}
	now := time.Now()
	if e.Clock != nil {
		now = e.Clock.Now()
	}

	weeks, err := e.API.GetAllWeeks(ctx)
	if err != nil {
		return err
	}

	w := e.Out
	if w == nil {
		w = os.Stdout
	}
	if e.Path != "" && e.Path != "-" {
		f, err := os.Create(e.Path)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	switch e.Format {
	case format.FormatJSON:
		u, err := e.API.GetUser(ctx)
		if err != nil {
			return err
		}
		return format.JSON(w, u, weeks, now)
	case "", format.FormatICS:
		cal, _, err := app.Calendar(ctx, e.API, e.Location, e.WeekStart)
		if err != nil {
			return err
		}
		return format.ICS(w, cal, weeks, format.Options{
			Now:            now,
			Birthdays:      e.Birthdays,
			RemindersAlarm: e.RemindersAlarm,
		})
	default:
		return fmt.Errorf("export: unknown format %q", e.Format)
	}
}
