package printers

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/lifedots/pkg/grid"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/week"
)

// Year prints the 52 weeks of one year of life, one per line, with the start
// date and the first line of any journal entry. year is 1 based.
func (pp *PrettyPrint) Year(cal lifecal.Calendar, year int, now time.Time, records map[int]week.Summary) error {
	if year < 1 || year > lifecal.YearsInLife {
		return week.NewValidationError("year", fmt.Sprintf("year %d out of range [1, %d]", year, lifecal.YearsInLife))
	}
	p := color.New()
	b := color.New(color.Bold)
	u := color.New(color.Underline)
	f := color.New(color.Faint)

	pp.TitleWithCount(fmt.Sprintf("Year %d", year), lifecal.WeeksPerYear)
	current := cal.CurrentIndex(now)
	first := (year - 1) * lifecal.WeeksPerYear
	for index := first; index < first+lifecal.WeeksPerYear; index++ {
		cell := grid.At(cal, index, now)
		printer := p
		switch {
		case index == current:
			printer = b
		case cell.Birthday:
			printer = u
		case cell.State == grid.Future:
			printer = f
		}
		_, _ = printer.Fprintf(pp.out(), "%2d %s", index-first+1, cell.Interval.Start.Format("Jan 02 2006"))

		if s, ok := records[week.NumberFromIndex(index)]; ok {
			if j := firstLine(s.JournalText); j != "" {
				_, _ = p.Fprintf(pp.out(), "  %s", j)
			}
			if r := firstLine(s.Reminders); r != "" {
				_, _ = f.Fprintf(pp.out(), "  [%s]", r)
			}
		}
		_, _ = fmt.Fprintln(pp.out(), "")
	}
	pp.NewLine()
	return nil
}
