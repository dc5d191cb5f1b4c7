// Package printers renders the life grid and week records for the terminal.
package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/grid"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/week"
)

const (
	glyphLived   = "●"
	glyphCurrent = "◉"
	glyphFuture  = "○"
	dateLayout   = "Jan 2, 2006"
)

// PrettyPrint writes colored output, to color.Output unless Out is set.
type PrettyPrint struct {
	Out io.Writer
	// Width caps the text columns of tables. Zero means 60.
	Width uint
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) width() uint {
	if pp.Width == 0 {
		return 60
	}
	return pp.Width
}

// NewLine prints an empty line.
func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Title prints a bold underlined heading.
func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

// TitleWithCount prints a heading followed by a faint count of weeks.
func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " week")
	default:
		_, _ = c.Fprintln(pp.out(), " weeks")
	}
}

// Grid prints one row of 52 dots per year of life. Weeks in written are
// highlighted, birthday weeks are yellow.
func (pp *PrettyPrint) Grid(cells []grid.Cell, written map[int]bool) {
	lived := color.New(color.FgHiWhite)
	current := color.New(color.Bold, color.FgHiGreen)
	future := color.New(color.Faint)
	birthday := color.New(color.FgYellow)
	note := color.New(color.FgCyan)
	label := color.New(color.Faint)

	out := pp.out()
	for _, c := range cells {
		if c.Col() == 0 {
			if row := c.Row(); row%5 == 0 {
				_, _ = label.Fprintf(out, "%3d ", row)
			} else {
				_, _ = fmt.Fprint(out, "    ")
			}
		}

		glyph, printer := glyphFuture, future
		switch c.State {
		case grid.Lived:
			glyph, printer = glyphLived, lived
		case grid.Current:
			glyph, printer = glyphCurrent, current
		}
		if c.State != grid.Current {
			if written[week.NumberFromIndex(c.Index)] {
				printer = note
			} else if c.Birthday {
				printer = birthday
			}
		}
		_, _ = printer.Fprint(out, glyph)

		if c.Col() == lifecal.WeeksPerYear-1 {
			_, _ = fmt.Fprintln(out, "")
		}
	}
}

// Legend explains the grid glyphs.
func (pp *PrettyPrint) Legend() {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Dot"), bold.Sprint("Meaning"))
	tbl.AddRow(color.New(color.FgHiWhite).Sprint(glyphLived), "week lived")
	tbl.AddRow(color.New(color.Bold, color.FgHiGreen).Sprint(glyphCurrent), "this week")
	tbl.AddRow(color.New(color.Faint).Sprint(glyphFuture), "week ahead")
	tbl.AddRow(color.New(color.FgYellow).Sprint(glyphLived), "birthday week")
	tbl.AddRow(color.New(color.FgCyan).Sprint(glyphLived), "week with notes")
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Summary prints the headline numbers of the grid.
func (pp *PrettyPrint) Summary(birthDate string, s grid.Summary, written int) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Born"), birthDate)
	tbl.AddRow(bold.Sprint("Weeks lived"), s.WeeksLived)
	tbl.AddRow(bold.Sprint("Weeks remaining"), s.WeeksRemaining)
	tbl.AddRow(bold.Sprint("Current week"), week.NumberFromIndex(s.CurrentIndex))
	tbl.AddRow(bold.Sprint("Weeks written"), written)
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Weeks prints a table of written weeks. Dates are resolved through cal when
// it is not nil.
func (pp *PrettyPrint) Weeks(cal *lifecal.Calendar, weeks []week.Summary) {
	if len(weeks) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = pp.width()
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("Week"), bold.Sprint("Starts"), bold.Sprint("Journal"), bold.Sprint("Reminders"))
	for _, s := range weeks {
		starts := ""
		if cal != nil && lifecal.ValidIndex(week.IndexFromNumber(s.WeekNumber)) {
			starts = cal.Interval(week.IndexFromNumber(s.WeekNumber)).Start.Format(dateLayout)
		}
		tbl.AddRow(s.WeekNumber, starts, firstLine(s.JournalText), firstLine(s.Reminders))
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Week prints everything known about one week.
func (pp *PrettyPrint) Week(v app.WeekView) {
	faint := color.New(color.Faint)
	italic := color.New(color.Italic, color.Faint)

	pp.Title(fmt.Sprintf("Week %d", v.WeekNumber))
	_, _ = faint.Fprintf(pp.out(), "Year %d, week %d of %d\n", v.Year, v.WeekInYear, lifecal.WeeksPerYear)
	_, _ = faint.Fprintf(pp.out(), "%s - %s\n", v.Start.Format(dateLayout), v.End.Format(dateLayout))
	_, _ = faint.Fprintf(pp.out(), "Age %d, day %d of the journey\n", v.Age, v.DaysIn)
	if v.Birthday {
		_, _ = color.New(color.FgYellow).Fprintln(pp.out(), "Birthday week")
	}
	pp.NewLine()

	_, _ = italic.Fprintln(pp.out(), v.Prompt())
	for _, f := range week.Fields {
		text := v.Record.Get(f)
		_, _ = color.New(color.Bold).Fprintln(pp.out(), f.Label())
		if text == "" {
			_, _ = italic.Fprintln(pp.out(), " none")
		} else {
			_, _ = fmt.Fprintln(pp.out(), text)
		}
	}
	pp.NewLine()
}

func firstLine(p *string) string {
	if p == nil {
		return ""
	}
	s := strings.TrimSpace(*p)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
