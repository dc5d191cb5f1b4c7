// Package export writes written weeks out as iCalendar or JSON.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/week"
)

const (
	icalVersion = "2.0"
	icalProdID  = "-//lifedots//Weeks//EN"
	icalName    = "Life in Weeks"
	icalDomain  = "lifedots"

	propUID         = "UID"
	propSummary     = "SUMMARY"
	propDescription = "DESCRIPTION"
	propDTStart     = "DTSTART"
	propDTEnd       = "DTEND"
	propDTStamp     = "DTSTAMP"
	propVersion     = "VERSION"
	propProdID      = "PRODID"
	propCalName     = "X-WR-CALNAME"
	propCategories  = "CATEGORIES"
	propAction      = "ACTION"
	propTrigger     = "TRIGGER"

	compAlarm = "VALARM"
)

// stubCalendar is the smallest valid calendar, written when nothing matches.
const stubCalendar = "BEGIN:VCALENDAR\r\nVERSION:" + icalVersion + "\r\nPRODID:" + icalProdID + "\r\nEND:VCALENDAR\r\n"

// Format is an export encoding.
type Format string

const (
	// FormatICS is an iCalendar feed with one all-day event per week.
	FormatICS Format = "ics"
	// FormatJSON is the profile with every written week.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatICS, FormatJSON:
		return f, nil
	case "":
		return FormatICS, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Options tunes the iCalendar export.
type Options struct {
	// Now stamps every event.
	Now time.Time
	// Birthdays adds an event for each birthday week.
	Birthdays bool
	// RemindersAlarm attaches a display alarm to future weeks with reminders.
	RemindersAlarm bool
}

// ICS writes every written week of cal as an all-day event spanning the week.
func ICS(w io.Writer, cal lifecal.Calendar, weeks []week.Summary, opts Options) error {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	c := ical.NewCalendar()
	c.Props.SetText(propVersion, icalVersion)
	c.Props.SetText(propProdID, icalProdID)
	c.Props.SetText(propCalName, icalName)

	stamp := ical.NewProp(propDTStamp)
	stamp.SetDateTime(opts.Now.UTC())
	current := cal.CurrentIndex(opts.Now)

	for _, s := range weeks {
		if err := week.ValidateNumber(s.WeekNumber); err != nil {
			return err
		}
		journal, reminders := deref(s.JournalText), deref(s.Reminders)
		if journal == "" && reminders == "" {
			continue
		}
		index := week.IndexFromNumber(s.WeekNumber)
		d, err := cal.Details(index)
		if err != nil {
			return err
		}
		ev := newWeekEvent(d, fmt.Sprintf("week-%d", s.WeekNumber), stamp)
		ev.Props.SetText(propSummary, fmt.Sprintf("Week %d (year %d, week %d)", d.WeekNumber, d.Year, d.WeekInYear))
		ev.Props.SetText(propDescription, describe(journal, reminders))
		if opts.RemindersAlarm && reminders != "" && index > current {
			addAlarm(ev, reminders)
		}
		c.Children = append(c.Children, ev.Component)
	}

	if opts.Birthdays {
		for index := 0; index < lifecal.TotalWeeks; index++ {
			if !cal.IsBirthdayWeek(cal.Interval(index)) {
				continue
			}
			d, _ := cal.Details(index)
			ev := newWeekEvent(d, fmt.Sprintf("birthday-%d", d.Year), stamp)
			summary := fmt.Sprintf("Birthday week, turning %d", d.Year-1)
			if index == 0 {
				summary = "Week of birth"
			}
			ev.Props.SetText(propSummary, summary)
			ev.Props.SetText(propCategories, "BIRTHDAY")
			c.Children = append(c.Children, ev.Component)
		}
	}

	if len(c.Children) == 0 {
		_, err := io.WriteString(w, stubCalendar)
		return err
	}
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("export: encode calendar: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func newWeekEvent(d lifecal.Details, uid string, stamp *ical.Prop) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(propUID, uid+"@"+icalDomain)
	ev.Props.Set(stamp)

	start := ical.NewProp(propDTStart)
	start.SetDate(d.Start)
	ev.Props.Set(start)

	end := ical.NewProp(propDTEnd)
	end.SetDate(d.End.AddDate(0, 0, 1))
	ev.Props.Set(end)
	return ev
}

func addAlarm(ev *ical.Event, description string) {
	alarm := ical.NewComponent(compAlarm)
	alarm.Props.SetText(propAction, "DISPLAY")
	alarm.Props.SetText(propDescription, description)
	trigger := ical.NewProp(propTrigger)
	trigger.Value = "PT9H"
	alarm.Props.Set(trigger)
	ev.Children = append(ev.Children, alarm)
}

func describe(journal, reminders string) string {
	var b strings.Builder
	b.WriteString(journal)
	if reminders != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Reminders: ")
		b.WriteString(reminders)
	}
	return b.String()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Document is the JSON export body.
type Document struct {
	User       *week.User     `json:"user"`
	ExportedAt time.Time      `json:"exportedAt"`
	Weeks      []week.Summary `json:"weeks"`
}

// JSON writes the profile and its weeks as indented JSON.
func JSON(w io.Writer, u *week.User, weeks []week.Summary, now time.Time) error {
	if weeks == nil {
		weeks = []week.Summary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{User: u, ExportedAt: now.UTC(), Weeks: weeks})
}
