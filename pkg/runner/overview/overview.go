// Package overview prints the life grid, or a single year of it.
package overview

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/grid"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/printers"
	"tableflip.dev/lifedots/pkg/week"
)

// Overview prints the caller's grid.
type Overview struct {
	API       app.API
	Location  *time.Location
	WeekStart time.Weekday
	Clock     lifecal.Clock
	Out       io.Writer

	// Year limits the output to one year of life, 1 based. Zero prints the
	// whole grid.
	Year int
	JSON bool
}

// Document is the JSON form of the overview.
type Document struct {
	BirthDate string         `json:"birthDate"`
	Summary   grid.Summary   `json:"summary"`
	Written   []int          `json:"written"`
	Cells     []grid.Cell    `json:"cells,omitempty"`
	Weeks     []week.Summary `json:"weeks,omitempty"`
}

// Do prints the overview.
func (o *Overview) Do(ctx context.Context) error {
	if o.API == nil {
		return errors.New("overview: no week store configured")
	}
	cal, u, err := app.Calendar(ctx, o.API, o.Location, o.WeekStart)
	if err != nil {
		return err
	}
	weeks, err := o.API.GetAllWeeks(ctx)
	if err != nil {
		return err
	}

	now := o.now()
	cells := grid.Build(cal, now)
	summary := grid.Summarize(cal, cells, now)
	written := writtenSet(weeks)

	if o.JSON {
		doc := Document{BirthDate: u.BirthDate, Summary: summary, Written: sortedKeys(written)}
		if o.Year > 0 {
			doc.Weeks = inYear(weeks, o.Year)
		} else {
			doc.Cells = cells
		}
		enc := json.NewEncoder(o.out())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	pp := printers.PrettyPrint{Out: o.Out}
	if o.Year > 0 {
		byNumber := make(map[int]week.Summary, len(weeks))
		for _, s := range weeks {
			byNumber[s.WeekNumber] = s
		}
		return pp.Year(cal, o.Year, now, byNumber)
	}
	pp.Summary(u.BirthDate, summary, len(written))
	pp.Grid(cells, written)
	pp.Legend()
	return nil
}

func (o *Overview) now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}
	return o.Clock.Now()
}

func (o *Overview) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func writtenSet(weeks []week.Summary) map[int]bool {
	out := make(map[int]bool, len(weeks))
	for _, s := range weeks {
		if (s.JournalText != nil && *s.JournalText != "") || (s.Reminders != nil && *s.Reminders != "") {
			out[s.WeekNumber] = true
		}
	}
	return out
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for n := 1; n <= lifecal.TotalWeeks; n++ {
		if set[n] {
			out = append(out, n)
		}
	}
	return out
}

func inYear(weeks []week.Summary, year int) []week.Summary {
	first := (year-1)*lifecal.WeeksPerYear + 1
	last := first + lifecal.WeeksPerYear - 1
	var out []week.Summary
	for _, s := range weeks {
		if s.WeekNumber >= first && s.WeekNumber <= last {
			out = append(out, s)
		}
	}
	return out
}
